package usecase

import (
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/game-features/internal/domain/feature"
	"gonum.org/v1/gonum/stat"
)

const hoursPerDay = 24

// RollingOptions configures the trailing window computation.
type RollingOptions struct {
	Window   int
	Policy   feature.HistoryPolicy
	Strategy feature.WindowStrategy
}

// DefaultRollingOptions averages the last ten games, incrementally, and drops
// games with a shorter history.
func DefaultRollingOptions() RollingOptions {
	return RollingOptions{
		Window:   10,
		Policy:   feature.HistoryDrop,
		Strategy: feature.WindowIncremental,
	}
}

func (o RollingOptions) validate() error {
	if o.Window <= 0 {
		return crerr.Wrapf(feature.ErrInvalidWindow, "window must be > 0, got %d", o.Window)
	}
	switch o.Policy {
	case feature.HistoryDrop, feature.HistoryPartial, feature.HistoryZeroFill:
	default:
		return crerr.Wrapf(feature.ErrUnknownHistoryPolicy, "policy %q", o.Policy)
	}
	switch o.Strategy {
	case feature.WindowIncremental, feature.WindowRecompute:
	default:
		return crerr.Wrapf(feature.ErrUnknownWindowStrategy, "strategy %q", o.Strategy)
	}
	return nil
}

// RollingResult carries the emitted rows and how many games were skipped for
// insufficient history.
type RollingResult struct {
	Rows    []feature.RollingRow
	Skipped int
}

// ComputeRollingFeatures derives trailing window statistics for one team's
// ordered games. Game i only sees games [max(0, i-W), i-1]. Views must be one
// team's games in strictly increasing date order; anything else fails with
// feature.ErrNonMonotonicSchedule.
func ComputeRollingFeatures(views []feature.TeamGameView, opts RollingOptions) (RollingResult, error) {
	if err := opts.validate(); err != nil {
		return RollingResult{}, err
	}
	if err := checkSchedule(views); err != nil {
		return RollingResult{}, err
	}

	if opts.Strategy == feature.WindowRecompute {
		return rollingRecompute(views, opts), nil
	}
	return rollingIncremental(views, opts), nil
}

func checkSchedule(views []feature.TeamGameView) error {
	for i := 1; i < len(views); i++ {
		prev, cur := views[i-1], views[i]
		if cur.TeamID != views[0].TeamID {
			return crerr.Wrapf(ErrInvalidInput, "views mix teams %s and %s", views[0].TeamID, cur.TeamID)
		}
		// a zero gap would let a same-day game leak into the window
		if gap := restDays(prev.GameDate, cur.GameDate); gap <= 0 {
			return crerr.Wrapf(feature.ErrNonMonotonicSchedule,
				"team %s: game %s on %s follows game %s on %s (rest days %d)",
				cur.TeamID,
				cur.GameID, cur.GameDate.Format(time.DateOnly),
				prev.GameID, prev.GameDate.Format(time.DateOnly),
				gap,
			)
		}
	}
	return nil
}

func rollingIncremental(views []feature.TeamGameView, opts RollingOptions) RollingResult {
	result := RollingResult{Rows: make([]feature.RollingRow, 0, len(views))}

	var sumFor, sumAgainst, sumWin float64
	for i, view := range views {
		n := min(i, opts.Window)
		row, ok := windowRow(views, i, n, opts.Window, opts.Policy, func() (float64, float64, float64) {
			return sumFor / float64(n), sumAgainst / float64(n), sumWin / float64(n)
		})
		if ok {
			result.Rows = append(result.Rows, row)
		} else {
			result.Skipped++
		}

		sumFor += float64(view.PointsFor)
		sumAgainst += float64(view.PointsAgainst)
		sumWin += float64(view.WinFlag)
		if i >= opts.Window {
			old := views[i-opts.Window]
			sumFor -= float64(old.PointsFor)
			sumAgainst -= float64(old.PointsAgainst)
			sumWin -= float64(old.WinFlag)
		}
	}
	return result
}

func rollingRecompute(views []feature.TeamGameView, opts RollingOptions) RollingResult {
	result := RollingResult{Rows: make([]feature.RollingRow, 0, len(views))}

	pointsFor := make([]float64, 0, opts.Window)
	pointsAgainst := make([]float64, 0, opts.Window)
	wins := make([]float64, 0, opts.Window)
	for i := range views {
		n := min(i, opts.Window)
		row, ok := windowRow(views, i, n, opts.Window, opts.Policy, func() (float64, float64, float64) {
			pointsFor, pointsAgainst, wins = pointsFor[:0], pointsAgainst[:0], wins[:0]
			for _, prior := range views[i-n : i] {
				pointsFor = append(pointsFor, float64(prior.PointsFor))
				pointsAgainst = append(pointsAgainst, float64(prior.PointsAgainst))
				wins = append(wins, float64(prior.WinFlag))
			}
			return stat.Mean(pointsFor, nil), stat.Mean(pointsAgainst, nil), stat.Mean(wins, nil)
		})
		if ok {
			result.Rows = append(result.Rows, row)
		} else {
			result.Skipped++
		}
	}
	return result
}

// windowRow applies the history policy to game i with n prior games in its
// window. means is only called when n > 0 and the policy wants averages.
func windowRow(views []feature.TeamGameView, i, n, window int, policy feature.HistoryPolicy, means func() (float64, float64, float64)) (feature.RollingRow, bool) {
	cur := views[i]
	row := feature.RollingRow{
		TeamID:      cur.TeamID,
		GameID:      cur.GameID,
		GameDate:    cur.GameDate,
		WindowGames: n,
	}
	if i > 0 {
		row.RestDays = restDays(views[i-1].GameDate, cur.GameDate)
	}

	switch {
	case n == window:
	case policy == feature.HistoryPartial && n > 0:
	case policy == feature.HistoryZeroFill:
		return row, true
	default:
		return feature.RollingRow{}, false
	}

	row.RollingPointsFor, row.RollingPointsAgainst, row.RollingWinPct = means()
	return row, true
}

func restDays(prev, cur time.Time) int {
	return int(cur.Sub(prev).Hours() / hoursPerDay)
}
