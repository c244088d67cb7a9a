package usecase

import (
	"fmt"
	"time"

	"github.com/riskibarqy/game-features/internal/domain/feature"
	"github.com/riskibarqy/game-features/internal/domain/game"
	"github.com/riskibarqy/game-features/internal/domain/gamelog"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// gameRows returns the home and away log lines of one game.
func gameRows(gameID string, date time.Time, home, away string, homePts, awayPts int) []gamelog.Row {
	homeWL, awayWL := "W", "L"
	if homePts < awayPts {
		homeWL, awayWL = "L", "W"
	}
	return []gamelog.Row{
		{
			GameID:           gameID,
			SeasonID:         "22023",
			GameDate:         date,
			TeamID:           home,
			TeamAbbreviation: home,
			Points:           homePts,
			WL:               homeWL,
			Matchup:          home + " vs. " + away,
		},
		{
			GameID:           gameID,
			SeasonID:         "22023",
			GameDate:         date,
			TeamID:           away,
			TeamAbbreviation: away,
			Points:           awayPts,
			WL:               awayWL,
			Matchup:          away + " @ " + home,
		},
	}
}

func record(gameID string, date time.Time, home, away string, homePts, awayPts int) game.Record {
	result := gamelog.OutcomeWin
	if homePts < awayPts {
		result = gamelog.OutcomeLoss
	}
	return game.Record{
		GameID:     gameID,
		SeasonID:   "22023",
		GameDate:   date,
		HomeTeamID: home,
		AwayTeamID: away,
		HomePoints: homePts,
		AwayPoints: awayPts,
		HomeResult: result,
	}
}

// roundRobinLogs plays every pair of teams once per round, one game per day,
// alternating home advantage between rounds.
func roundRobinLogs(teams []string, rounds int) []gamelog.Row {
	var rows []gamelog.Row
	seq := 0
	for r := 0; r < rounds; r++ {
		for i := 0; i < len(teams); i++ {
			for j := i + 1; j < len(teams); j++ {
				seq++
				date := day(2024, 1, 1).AddDate(0, 0, seq)
				home, away := teams[i], teams[j]
				if r%2 == 1 {
					home, away = away, home
				}
				homePts := 95 + (seq*7)%20
				awayPts := 95 + (seq*11)%20
				if homePts == awayPts {
					awayPts++
				}
				gameID := fmt.Sprintf("G%04d", seq)
				rows = append(rows, gameRows(gameID, date, home, away, homePts, awayPts)...)
			}
		}
	}
	return rows
}

func teamViews(teamID string, dates []time.Time, pointsFor, wins []int) []feature.TeamGameView {
	views := make([]feature.TeamGameView, len(dates))
	for i := range dates {
		views[i] = feature.TeamGameView{
			TeamID:        teamID,
			GameID:        fmt.Sprintf("%s-%d", teamID, i),
			GameDate:      dates[i],
			PointsFor:     pointsFor[i],
			PointsAgainst: 100,
			WinFlag:       wins[i],
		}
	}
	return views
}
