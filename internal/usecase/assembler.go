package usecase

import (
	"sort"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/game-features/internal/domain/feature"
	"github.com/riskibarqy/game-features/internal/domain/game"
)

// AssembleOptions bounds how many games may be lost to one-sided features.
// MaxDropRate is a fraction in [0, 1]; 1 disables the check.
type AssembleOptions struct {
	MaxDropRate float64
}

type AssembleResult struct {
	Rows           []feature.GameRow
	Dropped        int
	DroppedGameIDs []string
	DropRate       float64
}

type streamKey struct {
	gameID string
	teamID string
}

// AssembleGameFeatures hash-joins both sides' rolling rows onto each game.
// A game is emitted only when home and away rows both exist; otherwise it is
// counted as dropped. Streams are keyed by team id.
func AssembleGameFeatures(records []game.Record, streams map[string][]feature.RollingRow, opts AssembleOptions) (AssembleResult, error) {
	if opts.MaxDropRate < 0 || opts.MaxDropRate > 1 {
		return AssembleResult{}, crerr.Wrapf(ErrInvalidInput, "max drop rate must be within [0, 1], got %v", opts.MaxDropRate)
	}

	index := make(map[streamKey]feature.RollingRow)
	for teamID, rows := range streams {
		for _, row := range rows {
			if row.TeamID != teamID {
				return AssembleResult{}, crerr.Wrapf(ErrInvalidInput, "stream %s carries row for team %s", teamID, row.TeamID)
			}
			key := streamKey{gameID: row.GameID, teamID: row.TeamID}
			if _, exists := index[key]; exists {
				return AssembleResult{}, crerr.Wrapf(feature.ErrDuplicateFeatureStream, "game %s team %s", row.GameID, row.TeamID)
			}
			index[key] = row
		}
	}

	ordered := make([]game.Record, len(records))
	copy(ordered, records)
	sort.Slice(ordered, func(i, j int) bool {
		return game.Before(ordered[i], ordered[j])
	})

	result := AssembleResult{Rows: make([]feature.GameRow, 0, len(ordered))}
	seen := make(map[string]struct{}, len(ordered))
	for _, record := range ordered {
		if _, dup := seen[record.GameID]; dup {
			return AssembleResult{}, crerr.Wrapf(ErrInvalidInput, "game %s appears more than once", record.GameID)
		}
		seen[record.GameID] = struct{}{}

		home, okHome := index[streamKey{gameID: record.GameID, teamID: record.HomeTeamID}]
		away, okAway := index[streamKey{gameID: record.GameID, teamID: record.AwayTeamID}]
		if !okHome || !okAway {
			result.Dropped++
			result.DroppedGameIDs = append(result.DroppedGameIDs, record.GameID)
			continue
		}

		label := 0
		if record.HomeWon() {
			label = 1
		}
		result.Rows = append(result.Rows, feature.GameRow{
			GameID:     record.GameID,
			GameDate:   record.GameDate,
			SeasonID:   record.SeasonID,
			HomeTeamID: record.HomeTeamID,
			AwayTeamID: record.AwayTeamID,
			Home:       home.SideFeatures(),
			Away:       away.SideFeatures(),
			Label:      label,
		})
	}

	if len(ordered) > 0 {
		result.DropRate = float64(result.Dropped) / float64(len(ordered))
	}
	if result.DropRate > opts.MaxDropRate {
		return AssembleResult{}, crerr.Wrapf(feature.ErrJoinDropRateExceeded,
			"dropped %d of %d games (%.2f%%) for missing side features, limit %.2f%%",
			result.Dropped, len(ordered), result.DropRate*100, opts.MaxDropRate*100,
		)
	}

	return result, nil
}
