package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/game-features/internal/config"
	"github.com/riskibarqy/game-features/internal/domain/feature"
	"github.com/riskibarqy/game-features/internal/domain/game"
	"github.com/riskibarqy/game-features/internal/infrastructure/export"
	"github.com/riskibarqy/game-features/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/game-features/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/game-features/internal/platform/logging"
	"github.com/riskibarqy/game-features/internal/platform/metrics"
	"github.com/riskibarqy/game-features/internal/usecase"
)

// App holds the wired pipeline for one process.
type App struct {
	Pipeline *usecase.FeaturePipelineService
	Exporter *export.Writer
	Metrics  *metrics.Recorder

	db *sqlx.DB
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	gameRepo, featureRepo, db, err := newStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	recorder := metrics.NewRecorder()
	pipeline, err := usecase.NewFeaturePipelineService(gameRepo, featureRepo, recorder, logger, PipelineOptions(cfg))
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	logger.Info("pipeline wired",
		"store_mode", cfg.StoreMode,
		"window_size", cfg.Profile.WindowSize,
		"history_policy", cfg.Profile.HistoryPolicy,
		"window_strategy", cfg.Profile.WindowStrategy,
		"max_workers", cfg.MaxWorkers,
	)

	return &App{
		Pipeline: pipeline,
		Exporter: export.NewWriter(cfg.OutputDir, logger),
		Metrics:  recorder,
		db:       db,
	}, nil
}

// PipelineOptions maps config onto the engine's explicit options.
func PipelineOptions(cfg config.Config) usecase.PipelineOptions {
	return usecase.PipelineOptions{
		Rolling: usecase.RollingOptions{
			Window:   cfg.Profile.WindowSize,
			Policy:   cfg.Profile.HistoryPolicy,
			Strategy: cfg.Profile.WindowStrategy,
		},
		SplitFraction:   cfg.Profile.SplitFraction,
		MaxJoinDropRate: cfg.Profile.MaxJoinDropRate,
		MaxWorkers:      cfg.MaxWorkers,
	}
}

func (a *App) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

func newStores(ctx context.Context, cfg config.Config) (game.Repository, feature.Repository, *sqlx.DB, error) {
	switch cfg.StoreMode {
	case config.StoreMemory:
		return memory.NewGameRepository(nil), memory.NewFeatureRepository(), nil, nil
	case config.StorePostgres:
		db, err := OpenDatabase(ctx, cfg.DBURL, cfg.DBDisablePreparedBinary)
		if err != nil {
			return nil, nil, nil, errors.Join(usecase.ErrDependencyUnavailable, err)
		}
		return postgres.NewGameRepository(db), postgres.NewFeatureRepository(db), db, nil
	default:
		return nil, nil, nil, fmt.Errorf("%w: unknown store mode %q", usecase.ErrInvalidInput, cfg.StoreMode)
	}
}
