package game

import (
	"sort"
	"strings"

	crerr "github.com/cockroachdb/errors"
)

var ErrMalformedGameLog = crerr.New("malformed game log")

// Issue explains why a single game id was rejected.
type Issue struct {
	GameID string
	Reason string
}

// MalformedGameLogError lists every game id that could not be merged into a
// canonical record. It matches ErrMalformedGameLog with errors.Is.
type MalformedGameLogError struct {
	Issues []Issue
}

func (e *MalformedGameLogError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return ErrMalformedGameLog.Error()
	}

	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.GameID+" ("+issue.Reason+")")
	}
	return ErrMalformedGameLog.Error() + ": " + strings.Join(parts, "; ")
}

func (e *MalformedGameLogError) Is(target error) bool {
	return target == ErrMalformedGameLog
}

// GameIDs returns the distinct offending ids in lexical order.
func (e *MalformedGameLogError) GameIDs() []string {
	if e == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(e.Issues))
	out := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if _, ok := seen[issue.GameID]; ok {
			continue
		}
		seen[issue.GameID] = struct{}{}
		out = append(out, issue.GameID)
	}
	sort.Strings(out)
	return out
}

// Add records one issue for gameID.
func (e *MalformedGameLogError) Add(gameID, reason string) {
	e.Issues = append(e.Issues, Issue{GameID: gameID, Reason: reason})
}

// Empty reports whether no issue was recorded.
func (e *MalformedGameLogError) Empty() bool {
	return e == nil || len(e.Issues) == 0
}

// Sort orders issues by game id, keeping insertion order per id.
func (e *MalformedGameLogError) Sort() {
	sort.SliceStable(e.Issues, func(i, j int) bool {
		return e.Issues[i].GameID < e.Issues[j].GameID
	})
}
