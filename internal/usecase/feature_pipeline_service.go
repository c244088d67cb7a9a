package usecase

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/game-features/internal/domain/feature"
	"github.com/riskibarqy/game-features/internal/domain/game"
	"github.com/riskibarqy/game-features/internal/domain/gamelog"
	"github.com/riskibarqy/game-features/internal/platform/logging"
	"github.com/riskibarqy/game-features/internal/platform/metrics"
	"go.opentelemetry.io/otel/attribute"
	"gonum.org/v1/gonum/stat"
)

type PipelineOptions struct {
	Rolling         RollingOptions
	SplitFraction   float64
	MaxJoinDropRate float64
	MaxWorkers      int
}

// DefaultPipelineOptions uses the default rolling window and split with one
// worker per CPU.
func DefaultPipelineOptions() PipelineOptions {
	return PipelineOptions{
		Rolling:         DefaultRollingOptions(),
		SplitFraction:   DefaultSplitFraction,
		MaxJoinDropRate: 0.5,
		MaxWorkers:      runtime.NumCPU(),
	}
}

// RunReport summarises one build. It is exported next to the split tables.
type RunReport struct {
	RawRows             int       `json:"raw_rows"`
	GamesIngested       int       `json:"games_ingested"`
	GamesStored         int       `json:"games_stored"`
	Teams               int       `json:"teams"`
	TeamGames           int       `json:"team_games"`
	InsufficientHistory int       `json:"insufficient_history"`
	JoinDropped         int       `json:"join_dropped"`
	JoinDropRate        float64   `json:"join_drop_rate"`
	FeatureRows         int       `json:"feature_rows"`
	TrainRows           int       `json:"train_rows"`
	TestRows            int       `json:"test_rows"`
	BoundaryDate        string    `json:"boundary_date,omitempty"`
	BoundaryStraddles   bool      `json:"boundary_straddles"`
	TrainHomeWinRate    float64   `json:"train_home_win_rate"`
	TestHomeWinRate     float64   `json:"test_home_win_rate"`
	WindowSize          int       `json:"window_size"`
	HistoryPolicy       string    `json:"history_policy"`
	WindowStrategy      string    `json:"window_strategy"`
	SplitFraction       float64   `json:"split_fraction"`
	GeneratedAt         time.Time `json:"generated_at"`
}

type PipelineResult struct {
	Split  feature.Split
	Report RunReport
}

// FeaturePipelineService sequences normalization, persistence, rolling
// features, assembly and splitting. Build always reads the full stored game
// set back, so a run over all logs at once and a run resumed over logs
// ingested in several batches produce the same table.
type FeaturePipelineService struct {
	gameRepo    game.Repository
	featureRepo feature.Repository
	recorder    *metrics.Recorder
	logger      *logging.Logger
	opts        PipelineOptions
	now         func() time.Time
}

func NewFeaturePipelineService(
	gameRepo game.Repository,
	featureRepo feature.Repository,
	recorder *metrics.Recorder,
	logger *logging.Logger,
	opts PipelineOptions,
) (*FeaturePipelineService, error) {
	if gameRepo == nil || featureRepo == nil {
		return nil, fmt.Errorf("%w: game and feature repositories are required", ErrDependencyUnavailable)
	}
	if err := opts.Rolling.validate(); err != nil {
		return nil, err
	}
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = runtime.NumCPU()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &FeaturePipelineService{
		gameRepo:    gameRepo,
		featureRepo: featureRepo,
		recorder:    recorder,
		logger:      logger.Named("pipeline"),
		opts:        opts,
		now:         time.Now,
	}, nil
}

// Ingest normalizes raw rows and upserts the resulting games. A malformed log
// rejects the whole batch before anything is written.
func (s *FeaturePipelineService) Ingest(ctx context.Context, rows []gamelog.Row) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FeaturePipelineService.Ingest",
		attribute.Int("raw_rows", len(rows)),
	)
	defer span.End()

	s.recorder.RawRows(len(rows))

	done := s.recorder.ObserveStage(metrics.StageNormalize)
	records, err := NormalizeGameLogs(rows)
	done()
	if err != nil {
		var malformed *game.MalformedGameLogError
		if errors.As(err, &malformed) {
			s.recorder.Normalized(0, len(malformed.GameIDs()))
			s.logger.ErrorContext(ctx, "malformed game log", "game_ids", malformed.GameIDs(), "error", err)
		}
		span.RecordError(err)
		return 0, fmt.Errorf("normalize game logs: %w", err)
	}
	s.recorder.Normalized(len(records), 0)

	if len(records) == 0 {
		return 0, nil
	}

	done = s.recorder.ObserveStage(metrics.StagePersist)
	err = s.gameRepo.Upsert(ctx, records)
	done()
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("upsert games: %w", err)
	}

	s.logger.InfoContext(ctx, "games ingested", "raw_rows", len(rows), "games", len(records))
	return len(records), nil
}

// Build recomputes the feature table from every stored game.
func (s *FeaturePipelineService) Build(ctx context.Context) (PipelineResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FeaturePipelineService.Build",
		attribute.Int("window", s.opts.Rolling.Window),
		attribute.String("history_policy", string(s.opts.Rolling.Policy)),
	)
	defer span.End()

	records, err := s.gameRepo.List(ctx, game.Filter{})
	if err != nil {
		span.RecordError(err)
		return PipelineResult{}, fmt.Errorf("list stored games: %w", err)
	}

	report := RunReport{
		GamesStored:    len(records),
		WindowSize:     s.opts.Rolling.Window,
		HistoryPolicy:  string(s.opts.Rolling.Policy),
		WindowStrategy: string(s.opts.Rolling.Strategy),
		SplitFraction:  s.opts.SplitFraction,
	}

	views := IndexTeamViews(records)
	report.Teams = len(views)
	for _, teamViews := range views {
		report.TeamGames += len(teamViews)
	}

	done := s.recorder.ObserveStage(metrics.StageRolling)
	streams, skipped, err := s.computeStreams(ctx, views)
	done()
	if err != nil {
		span.RecordError(err)
		return PipelineResult{}, err
	}
	report.InsufficientHistory = skipped
	s.recorder.InsufficientHistory(skipped)
	s.logger.InfoContext(ctx, "rolling features computed",
		"teams", report.Teams,
		"team_games", report.TeamGames,
		"insufficient_history", skipped,
	)

	done = s.recorder.ObserveStage(metrics.StageAssemble)
	assembled, err := AssembleGameFeatures(records, streams, AssembleOptions{MaxDropRate: s.opts.MaxJoinDropRate})
	done()
	if err != nil {
		span.RecordError(err)
		return PipelineResult{}, fmt.Errorf("assemble game features: %w", err)
	}
	report.JoinDropped = assembled.Dropped
	report.JoinDropRate = assembled.DropRate
	report.FeatureRows = len(assembled.Rows)
	s.recorder.Joined(len(assembled.Rows), assembled.Dropped, assembled.DropRate)
	if assembled.Dropped > 0 {
		s.logger.WarnContext(ctx, "games dropped for missing side features",
			"dropped", assembled.Dropped,
			"drop_rate", assembled.DropRate,
		)
	}

	done = s.recorder.ObserveStage(metrics.StageSplit)
	split, err := SplitChronological(assembled.Rows, s.opts.SplitFraction)
	done()
	if err != nil {
		span.RecordError(err)
		return PipelineResult{}, fmt.Errorf("split features: %w", err)
	}
	report.TrainRows = len(split.Train)
	report.TestRows = len(split.Test)
	report.BoundaryStraddles = split.BoundaryStraddles
	if !split.BoundaryDate.IsZero() {
		report.BoundaryDate = split.BoundaryDate.Format(time.DateOnly)
	}
	report.TrainHomeWinRate = homeWinRate(split.Train)
	report.TestHomeWinRate = homeWinRate(split.Test)
	s.recorder.Split(len(split.Train), len(split.Test))

	done = s.recorder.ObserveStage(metrics.StagePersist)
	err = s.featureRepo.ReplaceAll(ctx, assembled.Rows)
	done()
	if err != nil {
		span.RecordError(err)
		return PipelineResult{}, fmt.Errorf("replace feature table: %w", err)
	}

	report.GeneratedAt = s.now().UTC()
	s.recorder.Succeeded(report.GeneratedAt)
	s.logger.InfoContext(ctx, "feature table built",
		"rows", report.FeatureRows,
		"train", report.TrainRows,
		"test", report.TestRows,
		"boundary_date", report.BoundaryDate,
		"boundary_straddles", report.BoundaryStraddles,
	)

	return PipelineResult{Split: split, Report: report}, nil
}

// Run ingests rows (which may be empty when resuming from the store) and
// rebuilds the feature table.
func (s *FeaturePipelineService) Run(ctx context.Context, rows []gamelog.Row) (PipelineResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FeaturePipelineService.Run")
	defer span.End()

	ingested, err := s.Ingest(ctx, rows)
	if err != nil {
		return PipelineResult{}, err
	}

	result, err := s.Build(ctx)
	if err != nil {
		return PipelineResult{}, err
	}
	result.Report.RawRows = len(rows)
	result.Report.GamesIngested = ingested
	return result, nil
}

type teamStream struct {
	teamID string
	rows   []feature.RollingRow
}

// computeStreams runs one rolling computation per team on a bounded pool.
// Teams share no state, so results are written into disjoint slots.
func (s *FeaturePipelineService) computeStreams(ctx context.Context, views map[string][]feature.TeamGameView) (map[string][]feature.RollingRow, int, error) {
	teamIDs := make([]string, 0, len(views))
	for teamID := range views {
		teamIDs = append(teamIDs, teamID)
	}

	streams := make(map[string][]feature.RollingRow, len(teamIDs))
	if len(teamIDs) == 0 {
		return streams, 0, nil
	}

	workerCount := s.opts.MaxWorkers
	if workerCount > len(teamIDs) {
		workerCount = len(teamIDs)
	}
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, 0, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	results := make([]teamStream, len(teamIDs))
	errs := make([]error, len(teamIDs))
	var skipped atomic.Int64

	var workers sync.WaitGroup
	for i, teamID := range teamIDs {
		i, teamID := i, teamID
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			if ctx.Err() != nil {
				errs[i] = ctx.Err()
				return
			}

			out, err := ComputeRollingFeatures(views[teamID], s.opts.Rolling)
			if err != nil {
				errs[i] = fmt.Errorf("rolling features for team %s: %w", teamID, err)
				return
			}
			skipped.Add(int64(out.Skipped))
			results[i] = teamStream{teamID: teamID, rows: out.Rows}
		}); err != nil {
			workers.Done()
			workers.Wait()
			return nil, 0, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}
	workers.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, 0, err
	}
	for _, result := range results {
		streams[result.teamID] = result.rows
	}
	return streams, int(skipped.Load()), nil
}

func homeWinRate(rows []feature.GameRow) float64 {
	if len(rows) == 0 {
		return 0
	}
	labels := make([]float64, len(rows))
	for i, row := range rows {
		labels[i] = float64(row.Label)
	}
	return stat.Mean(labels, nil)
}
