package usecase

import (
	"fmt"
	"sort"

	"github.com/riskibarqy/game-features/internal/domain/feature"
	"github.com/riskibarqy/game-features/internal/domain/game"
	"github.com/riskibarqy/game-features/internal/domain/gamelog"
)

// seasonGames is a regular season per team, used to size per-team slices.
const seasonGames = 82

// DeriveTeamPerspective projects one game onto one of its teams. The win flag
// assumes a binary outcome: the away team won exactly when the home team lost.
func DeriveTeamPerspective(record game.Record, teamID string) (feature.TeamGameView, error) {
	view := feature.TeamGameView{
		TeamID:   teamID,
		GameID:   record.GameID,
		GameDate: record.GameDate,
	}

	switch teamID {
	case record.HomeTeamID:
		view.PointsFor = record.HomePoints
		view.PointsAgainst = record.AwayPoints
		if record.HomeResult == gamelog.OutcomeWin {
			view.WinFlag = 1
		}
	case record.AwayTeamID:
		view.PointsFor = record.AwayPoints
		view.PointsAgainst = record.HomePoints
		if record.HomeResult == gamelog.OutcomeLoss {
			view.WinFlag = 1
		}
	default:
		return feature.TeamGameView{}, fmt.Errorf("%w: team %s did not play game %s", ErrInvalidInput, teamID, record.GameID)
	}

	return view, nil
}

// BuildTeamViews returns teamID's games in (date, game id) order.
func BuildTeamViews(records []game.Record, teamID string) []feature.TeamGameView {
	out := make([]feature.TeamGameView, 0, seasonGames)
	for _, record := range records {
		if !record.Involves(teamID) {
			continue
		}
		view, err := DeriveTeamPerspective(record, teamID)
		if err != nil {
			continue
		}
		out = append(out, view)
	}
	sortTeamViews(out)
	return out
}

// IndexTeamViews builds every team's ordered view sequence in one pass over
// the records.
func IndexTeamViews(records []game.Record) map[string][]feature.TeamGameView {
	index := make(map[string][]feature.TeamGameView)
	for _, record := range records {
		for _, teamID := range [2]string{record.HomeTeamID, record.AwayTeamID} {
			view, err := DeriveTeamPerspective(record, teamID)
			if err != nil {
				continue
			}
			index[teamID] = append(index[teamID], view)
		}
	}
	for teamID := range index {
		sortTeamViews(index[teamID])
	}
	return index
}

// TeamIDs lists every team appearing in records, sorted.
func TeamIDs(records []game.Record) []string {
	seen := make(map[string]struct{})
	for _, record := range records {
		seen[record.HomeTeamID] = struct{}{}
		seen[record.AwayTeamID] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func sortTeamViews(views []feature.TeamGameView) {
	sort.SliceStable(views, func(i, j int) bool {
		if !views[i].GameDate.Equal(views[j].GameDate) {
			return views[i].GameDate.Before(views[j].GameDate)
		}
		return views[i].GameID < views[j].GameID
	})
}
