package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/riskibarqy/game-features/internal/domain/feature"
	"github.com/riskibarqy/game-features/internal/platform/logging"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StoreMode != StoreMemory {
		t.Fatalf("unexpected StoreMode: %q", cfg.StoreMode)
	}
	if cfg.LogFormat != logging.FormatJSON {
		t.Fatalf("expected json log format in prod, got %q", cfg.LogFormat)
	}
	if cfg.Profile != DefaultProfile() {
		t.Fatalf("unexpected profile: %+v", cfg.Profile)
	}
	if cfg.MaxWorkers <= 0 {
		t.Fatalf("expected positive MaxWorkers, got %d", cfg.MaxWorkers)
	}
	if cfg.PyroscopeAppName != cfg.ServiceName {
		t.Fatalf("expected pyroscope app name to default to service name")
	}
}

func TestLoad_StoreModeValidation(t *testing.T) {
	t.Setenv("STORE_MODE", "sqlite")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown STORE_MODE")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", `uptrace-dsn="https://token@api.uptrace.dev?grpc=4317"`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected UptraceDSN: %q", cfg.UptraceDSN)
	}
}

func TestLoad_PyroscopeParsing(t *testing.T) {
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_UPLOAD_RATE", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeUploadRate != 5*time.Second {
		t.Fatalf("unexpected PyroscopeUploadRate: %s", cfg.PyroscopeUploadRate)
	}
}

func TestLoad_MaxWorkersMustBePositive(t *testing.T) {
	t.Setenv("PIPELINE_MAX_WORKERS", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for PIPELINE_MAX_WORKERS=0")
	}
}

func TestLoadProfile_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	body := []byte("window_size: 5\nhistory_policy: partial\nsplit_fraction: 0.75\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	t.Setenv("FEATURE_WINDOW_SIZE", "7")
	t.Setenv("FEATURE_WINDOW_STRATEGY", "recompute")

	profile, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if profile.WindowSize != 7 {
		t.Fatalf("expected env to override window_size, got %d", profile.WindowSize)
	}
	if profile.HistoryPolicy != feature.HistoryPartial {
		t.Fatalf("unexpected history policy: %q", profile.HistoryPolicy)
	}
	if profile.WindowStrategy != feature.WindowRecompute {
		t.Fatalf("unexpected window strategy: %q", profile.WindowStrategy)
	}
	if profile.SplitFraction != 0.75 {
		t.Fatalf("unexpected split fraction: %v", profile.SplitFraction)
	}
	if profile.MaxJoinDropRate != DefaultProfile().MaxJoinDropRate {
		t.Fatalf("expected default max join drop rate, got %v", profile.MaxJoinDropRate)
	}
}

func TestLoadProfile_Validation(t *testing.T) {
	cases := map[string]string{
		"FEATURE_WINDOW_SIZE":        "0",
		"FEATURE_SPLIT_FRACTION":     "1",
		"FEATURE_MAX_JOIN_DROP_RATE": "1.5",
		"FEATURE_HISTORY_POLICY":     "impute",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := LoadProfile(""); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}

func TestLoadProfile_UnknownStrategyIsTyped(t *testing.T) {
	t.Setenv("FEATURE_WINDOW_STRATEGY", "ewma")

	_, err := LoadProfile("")
	if !errors.Is(err, feature.ErrUnknownWindowStrategy) {
		t.Fatalf("expected ErrUnknownWindowStrategy, got %v", err)
	}
}

func TestLoadProfile_MissingFile(t *testing.T) {
	if _, err := LoadProfile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing profile file")
	}
}
