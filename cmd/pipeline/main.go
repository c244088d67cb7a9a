package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/riskibarqy/game-features/external/nbastats"
	"github.com/riskibarqy/game-features/internal/app"
	"github.com/riskibarqy/game-features/internal/config"
	"github.com/riskibarqy/game-features/internal/domain/gamelog"
	"github.com/riskibarqy/game-features/internal/observability"
	"github.com/riskibarqy/game-features/internal/platform/logging"
	"github.com/riskibarqy/game-features/internal/platform/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const shutdownTimeout = 10 * time.Second

const (
	modeRun   = "run"
	modeBuild = "build"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(2)
	}

	logger := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Name:   cfg.ServiceName,
	}).With("env", cfg.AppEnv, "version", cfg.ServiceVersion)
	logging.SetDefault(logger)
	defer func() {
		_ = logger.Sync()
	}()

	mode := modeRun
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}
	if mode != modeRun && mode != modeBuild {
		fmt.Fprintf(os.Stderr, "usage: %s [run|build]\n", os.Args[0])
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, mode, logger); err != nil {
		logger.Error("pipeline failed", "mode", mode, "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, mode string, logger *logging.Logger) (err error) {
	shutdown, err := observability.Start(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if shutdownErr := shutdown(shutdownCtx); shutdownErr != nil {
			logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}()

	ctx, span := otel.Tracer("game-features/cmd/pipeline").Start(ctx, "pipeline."+mode)
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	defer func() {
		err = errors.Join(err, a.Close())
	}()

	var rows []gamelog.Row
	if mode == modeRun {
		rows, err = nbastats.ReadFile(ctx, cfg.RawLogPath)
		if err != nil {
			return fmt.Errorf("read raw game logs: %w", err)
		}
		span.SetAttributes(attribute.String("raw_log_path", cfg.RawLogPath), attribute.Int("raw_rows", len(rows)))
		logger.InfoContext(ctx, "raw game logs loaded", "path", cfg.RawLogPath, "rows", len(rows))
	}

	result, err := a.Pipeline.Run(ctx, rows)
	if err != nil {
		return err
	}

	done := a.Metrics.ObserveStage(metrics.StageExport)
	paths, err := a.Exporter.WriteAll(ctx, result.Split, result.Report)
	done()
	if err != nil {
		return fmt.Errorf("export feature tables: %w", err)
	}

	if err := a.Metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
		logger.WarnContext(ctx, "metrics textfile not written", "error", err)
	}

	logger.InfoContext(ctx, "pipeline finished",
		"train", paths.Train,
		"test", paths.Test,
		"report", paths.Report,
		"feature_rows", result.Report.FeatureRows,
	)
	return nil
}
