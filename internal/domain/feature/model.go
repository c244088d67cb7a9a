package feature

import (
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
)

const dateLayout = "2006-01-02"

// TeamGameView is one game seen from one participating team.
type TeamGameView struct {
	TeamID        string
	GameID        string
	GameDate      time.Time
	PointsFor     int
	PointsAgainst int
	WinFlag       int
}

// RollingRow holds trailing statistics for a team going into a game. Only
// games strictly before GameDate contribute.
type RollingRow struct {
	TeamID               string
	GameID               string
	GameDate             time.Time
	RollingPointsFor     float64
	RollingPointsAgainst float64
	RollingWinPct        float64
	RestDays             int
	WindowGames          int
}

// SideFeatures returns the four model inputs carried into a game row.
func (r RollingRow) SideFeatures() SideFeatures {
	return SideFeatures{
		RollingPointsFor:     r.RollingPointsFor,
		RollingPointsAgainst: r.RollingPointsAgainst,
		RollingWinPct:        r.RollingWinPct,
		RestDays:             r.RestDays,
	}
}

type SideFeatures struct {
	RollingPointsFor     float64
	RollingPointsAgainst float64
	RollingWinPct        float64
	RestDays             int
}

// GameRow is the training unit: both sides' features plus the home-win label.
type GameRow struct {
	GameID     string
	GameDate   time.Time
	SeasonID   string
	HomeTeamID string
	AwayTeamID string
	Home       SideFeatures
	Away       SideFeatures
	Label      int
}

// Columns is the stable column order of the exported feature table.
func Columns() []string {
	return []string{
		"game_id",
		"game_date",
		"season_id",
		"home_team_id",
		"away_team_id",
		"rolling_ppg_home",
		"rolling_opp_ppg_home",
		"rolling_win_pct_home",
		"rest_days_home",
		"rolling_ppg_away",
		"rolling_opp_ppg_away",
		"rolling_win_pct_away",
		"rest_days_away",
		"label",
	}
}

// Record renders the row in Columns order.
func (r GameRow) Record() []string {
	return []string{
		r.GameID,
		r.GameDate.Format(dateLayout),
		r.SeasonID,
		r.HomeTeamID,
		r.AwayTeamID,
		formatFloat(r.Home.RollingPointsFor),
		formatFloat(r.Home.RollingPointsAgainst),
		formatFloat(r.Home.RollingWinPct),
		strconv.Itoa(r.Home.RestDays),
		formatFloat(r.Away.RollingPointsFor),
		formatFloat(r.Away.RollingPointsAgainst),
		formatFloat(r.Away.RollingWinPct),
		strconv.Itoa(r.Away.RestDays),
		strconv.Itoa(r.Label),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Before orders game rows by date, then game id.
func Before(a, b GameRow) bool {
	if !a.GameDate.Equal(b.GameDate) {
		return a.GameDate.Before(b.GameDate)
	}
	return a.GameID < b.GameID
}

// Split is a chronological train/test partition.
type Split struct {
	Train             []GameRow
	Test              []GameRow
	BoundaryDate      time.Time
	BoundaryStraddles bool
}

// HistoryPolicy decides what happens to games with fewer than W prior games.
type HistoryPolicy string

const (
	HistoryDrop     HistoryPolicy = "drop"
	HistoryPartial  HistoryPolicy = "partial"
	HistoryZeroFill HistoryPolicy = "zero_fill"
)

func ParseHistoryPolicy(value string) (HistoryPolicy, error) {
	switch HistoryPolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", HistoryDrop:
		return HistoryDrop, nil
	case HistoryPartial:
		return HistoryPartial, nil
	case HistoryZeroFill, "zerofill", "zero-fill":
		return HistoryZeroFill, nil
	default:
		return "", crerr.Wrapf(ErrUnknownHistoryPolicy, "value %q", value)
	}
}

// WindowStrategy selects how window means are maintained.
type WindowStrategy string

const (
	WindowIncremental WindowStrategy = "incremental"
	WindowRecompute   WindowStrategy = "recompute"
)

func ParseWindowStrategy(value string) (WindowStrategy, error) {
	switch WindowStrategy(strings.ToLower(strings.TrimSpace(value))) {
	case "", WindowIncremental:
		return WindowIncremental, nil
	case WindowRecompute:
		return WindowRecompute, nil
	default:
		return "", crerr.Wrapf(ErrUnknownWindowStrategy, "value %q", value)
	}
}
