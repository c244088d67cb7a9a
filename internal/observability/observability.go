package observability

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/game-features/internal/config"
	"github.com/riskibarqy/game-features/internal/platform/logging"
)

// Start initialises tracing and profiling and returns one shutdown func that
// stops both in reverse order.
func Start(cfg config.Config, logger *logging.Logger) (func(context.Context) error, error) {
	shutdownTracing, err := InitUptrace(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init uptrace: %w", err)
	}

	stopProfiling, err := InitPyroscope(cfg, logger)
	if err != nil {
		_ = shutdownTracing(context.Background())
		return nil, fmt.Errorf("init pyroscope: %w", err)
	}

	return func(ctx context.Context) error {
		return errors.Join(stopProfiling(), shutdownTracing(ctx))
	}, nil
}
