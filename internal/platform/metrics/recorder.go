// Package metrics records pipeline counters on a private Prometheus registry.
// A batch run has no scrape endpoint, so the registry is flushed to a
// node-exporter textfile at the end of a run.
package metrics

import (
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "game_features"

// Stage names used for the duration histogram.
const (
	StageNormalize = "normalize"
	StageRolling   = "rolling"
	StageAssemble  = "assemble"
	StageSplit     = "split"
	StagePersist   = "persist"
	StageExport    = "export"
)

// Recorder is nil-safe: every method is a no-op on a nil receiver.
type Recorder struct {
	registry *prometheus.Registry

	rawRows             prometheus.Counter
	gamesNormalized     prometheus.Counter
	malformedGames      prometheus.Counter
	insufficientHistory prometheus.Counter
	joinDropped         prometheus.Counter
	featureRows         prometheus.Counter

	joinDropRatio prometheus.Gauge
	splitRows     *prometheus.GaugeVec
	lastSuccess   prometheus.Gauge

	stageDuration *prometheus.HistogramVec
}

func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		rawRows: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "raw_rows_total",
			Help:      "Raw team game log rows read.",
		}),
		gamesNormalized: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_normalized_total",
			Help:      "Games merged from home and away rows.",
		}),
		malformedGames: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_games_total",
			Help:      "Game ids rejected during normalization.",
		}),
		insufficientHistory: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "insufficient_history_total",
			Help:      "Team games skipped for lacking a full window.",
		}),
		joinDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "join_dropped_games_total",
			Help:      "Games dropped because one side had no rolling row.",
		}),
		featureRows: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feature_rows_total",
			Help:      "Game feature rows assembled.",
		}),
		joinDropRatio: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "join_drop_ratio",
			Help:      "Fraction of games dropped by the last join.",
		}),
		splitRows: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "split_rows",
			Help:      "Rows per partition in the last split.",
		}, []string{"partition"}),
		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful build.",
		}),
		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time per pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"stage"}),
	}
}

func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) RawRows(n int) {
	if r == nil {
		return
	}
	r.rawRows.Add(float64(n))
}

func (r *Recorder) Normalized(games, malformed int) {
	if r == nil {
		return
	}
	r.gamesNormalized.Add(float64(games))
	r.malformedGames.Add(float64(malformed))
}

func (r *Recorder) InsufficientHistory(n int) {
	if r == nil {
		return
	}
	r.insufficientHistory.Add(float64(n))
}

func (r *Recorder) Joined(rows, dropped int, ratio float64) {
	if r == nil {
		return
	}
	r.featureRows.Add(float64(rows))
	r.joinDropped.Add(float64(dropped))
	r.joinDropRatio.Set(ratio)
}

func (r *Recorder) Split(train, test int) {
	if r == nil {
		return
	}
	r.splitRows.WithLabelValues("train").Set(float64(train))
	r.splitRows.WithLabelValues("test").Set(float64(test))
}

func (r *Recorder) Succeeded(at time.Time) {
	if r == nil {
		return
	}
	r.lastSuccess.Set(float64(at.Unix()))
}

// ObserveStage returns a func that records the elapsed time for stage.
//
//	defer recorder.ObserveStage(metrics.StageRolling)()
func (r *Recorder) ObserveStage(stage string) func() {
	if r == nil {
		return func() {}
	}
	timer := prometheus.NewTimer(r.stageDuration.WithLabelValues(stage))
	return func() { timer.ObserveDuration() }
}

// WriteTextfile writes the registry in text exposition format, atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return crerr.Wrapf(err, "write metrics textfile %s", path)
	}
	return nil
}
