package game

import (
	"time"

	"github.com/riskibarqy/game-features/internal/domain/gamelog"
)

// Record is the canonical one-row-per-game representation.
type Record struct {
	GameID     string
	SeasonID   string
	GameDate   time.Time
	HomeTeamID string
	AwayTeamID string
	HomePoints int
	AwayPoints int
	HomeResult gamelog.Outcome
}

// HomeWon reports the training label for the game.
func (r Record) HomeWon() bool {
	return r.HomeResult == gamelog.OutcomeWin
}

// Involves reports whether teamID played in the game.
func (r Record) Involves(teamID string) bool {
	return r.HomeTeamID == teamID || r.AwayTeamID == teamID
}

// Before orders records by date, then game id.
func Before(a, b Record) bool {
	if !a.GameDate.Equal(b.GameDate) {
		return a.GameDate.Before(b.GameDate)
	}
	return a.GameID < b.GameID
}

// Filter narrows which stored records are read back.
type Filter struct {
	From      time.Time
	To        time.Time
	SeasonIDs []string
}

// Match reports whether the record passes the filter. Zero bounds are open.
func (f Filter) Match(r Record) bool {
	if !f.From.IsZero() && r.GameDate.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && r.GameDate.After(f.To) {
		return false
	}
	if len(f.SeasonIDs) == 0 {
		return true
	}
	for _, id := range f.SeasonIDs {
		if id == r.SeasonID {
			return true
		}
	}
	return false
}
