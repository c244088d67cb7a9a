package observability

import (
	"context"
	"strings"

	"github.com/riskibarqy/game-features/internal/config"
	"github.com/riskibarqy/game-features/internal/platform/logging"
	"github.com/uptrace/uptrace-go/uptrace"
	"go.opentelemetry.io/otel/attribute"
)

// InitUptrace configures global OpenTelemetry providers for Uptrace. The
// returned func flushes pending spans; call it before the process exits.
func InitUptrace(cfg config.Config, logger *logging.Logger) (func(context.Context) error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	if !cfg.UptraceEnabled {
		logger.Debug("uptrace disabled", "reason", "UPTRACE_ENABLED=false")
		return noopShutdown, nil
	}
	if strings.TrimSpace(cfg.UptraceDSN) == "" {
		logger.Warn("uptrace disabled", "reason", "UPTRACE_DSN empty")
		return noopShutdown, nil
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		uptrace.WithResourceAttributes(
			attribute.String("pipeline.store_mode", cfg.StoreMode),
			attribute.Int("pipeline.window_size", cfg.Profile.WindowSize),
		),
	)

	logger.Info("uptrace enabled",
		"service_name", cfg.ServiceName,
		"service_version", cfg.ServiceVersion,
		"environment", cfg.AppEnv,
	)

	return uptrace.Shutdown, nil
}

func noopShutdown(context.Context) error { return nil }
