package postgres

import (
	"time"

	"github.com/riskibarqy/game-features/internal/domain/feature"
)

const gameFeaturesTable = "game_features"

type gameFeatureTableModel struct {
	GameID                   string    `db:"game_id"`
	GameDate                 time.Time `db:"game_date"`
	SeasonID                 string    `db:"season_id"`
	HomeTeamID               string    `db:"home_team_id"`
	AwayTeamID               string    `db:"away_team_id"`
	RollingPointsForHome     float64   `db:"rolling_ppg_home"`
	RollingPointsAgainstHome float64   `db:"rolling_opp_ppg_home"`
	RollingWinPctHome        float64   `db:"rolling_win_pct_home"`
	RestDaysHome             int       `db:"rest_days_home"`
	RollingPointsForAway     float64   `db:"rolling_ppg_away"`
	RollingPointsAgainstAway float64   `db:"rolling_opp_ppg_away"`
	RollingWinPctAway        float64   `db:"rolling_win_pct_away"`
	RestDaysAway             int       `db:"rest_days_away"`
	Label                    int       `db:"label"`
}

func featureModelFromRow(r feature.GameRow) gameFeatureTableModel {
	return gameFeatureTableModel{
		GameID:                   r.GameID,
		GameDate:                 civilDate(r.GameDate),
		SeasonID:                 r.SeasonID,
		HomeTeamID:               r.HomeTeamID,
		AwayTeamID:               r.AwayTeamID,
		RollingPointsForHome:     r.Home.RollingPointsFor,
		RollingPointsAgainstHome: r.Home.RollingPointsAgainst,
		RollingWinPctHome:        r.Home.RollingWinPct,
		RestDaysHome:             r.Home.RestDays,
		RollingPointsForAway:     r.Away.RollingPointsFor,
		RollingPointsAgainstAway: r.Away.RollingPointsAgainst,
		RollingWinPctAway:        r.Away.RollingWinPct,
		RestDaysAway:             r.Away.RestDays,
		Label:                    r.Label,
	}
}

func (m gameFeatureTableModel) toRow() feature.GameRow {
	return feature.GameRow{
		GameID:     m.GameID,
		GameDate:   civilDate(m.GameDate),
		SeasonID:   m.SeasonID,
		HomeTeamID: m.HomeTeamID,
		AwayTeamID: m.AwayTeamID,
		Home: feature.SideFeatures{
			RollingPointsFor:     m.RollingPointsForHome,
			RollingPointsAgainst: m.RollingPointsAgainstHome,
			RollingWinPct:        m.RollingWinPctHome,
			RestDays:             m.RestDaysHome,
		},
		Away: feature.SideFeatures{
			RollingPointsFor:     m.RollingPointsForAway,
			RollingPointsAgainst: m.RollingPointsAgainstAway,
			RollingWinPct:        m.RollingWinPctAway,
			RestDays:             m.RestDaysAway,
		},
		Label: m.Label,
	}
}
