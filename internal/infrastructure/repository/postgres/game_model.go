package postgres

import (
	"time"

	"github.com/riskibarqy/game-features/internal/domain/game"
	"github.com/riskibarqy/game-features/internal/domain/gamelog"
)

const gamesTable = "games"

type gameTableModel struct {
	GameID     string    `db:"game_id"`
	SeasonID   string    `db:"season_id"`
	GameDate   time.Time `db:"game_date"`
	HomeTeamID string    `db:"home_team_id"`
	AwayTeamID string    `db:"away_team_id"`
	HomePoints int       `db:"home_points"`
	AwayPoints int       `db:"away_points"`
	HomeResult string    `db:"home_result"`
}

func gameModelFromRecord(r game.Record) gameTableModel {
	return gameTableModel{
		GameID:     r.GameID,
		SeasonID:   r.SeasonID,
		GameDate:   civilDate(r.GameDate),
		HomeTeamID: r.HomeTeamID,
		AwayTeamID: r.AwayTeamID,
		HomePoints: r.HomePoints,
		AwayPoints: r.AwayPoints,
		HomeResult: string(r.HomeResult),
	}
}

func (m gameTableModel) toRecord() (game.Record, error) {
	outcome, err := gamelog.ParseOutcome(m.HomeResult)
	if err != nil {
		return game.Record{}, err
	}
	return game.Record{
		GameID:     m.GameID,
		SeasonID:   m.SeasonID,
		GameDate:   civilDate(m.GameDate),
		HomeTeamID: m.HomeTeamID,
		AwayTeamID: m.AwayTeamID,
		HomePoints: m.HomePoints,
		AwayPoints: m.AwayPoints,
		HomeResult: outcome,
	}, nil
}
