package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/riskibarqy/game-features/internal/domain/feature"
)

const profileEnvPrefix = "FEATURE_"

// Profile holds the feature engineering knobs that shape the training table.
type Profile struct {
	WindowSize      int                    `koanf:"window_size"`
	SplitFraction   float64                `koanf:"split_fraction"`
	HistoryPolicy   feature.HistoryPolicy  `koanf:"history_policy"`
	WindowStrategy  feature.WindowStrategy `koanf:"window_strategy"`
	MaxJoinDropRate float64                `koanf:"max_join_drop_rate"`
}

func DefaultProfile() Profile {
	return Profile{
		WindowSize:      10,
		SplitFraction:   0.8,
		HistoryPolicy:   feature.HistoryDrop,
		WindowStrategy:  feature.WindowIncremental,
		MaxJoinDropRate: 0.5,
	}
}

// LoadProfile layers defaults, then the YAML file at path (if any), then
// FEATURE_* env vars (FEATURE_WINDOW_SIZE -> window_size).
func LoadProfile(path string) (Profile, error) {
	k := koanf.New(".")

	if path = strings.TrimSpace(path); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Profile{}, fmt.Errorf("load feature profile %s: %w", path, err)
		}
	}

	envProvider := env.Provider(profileEnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, profileEnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Profile{}, fmt.Errorf("load feature profile env: %w", err)
	}

	profile := DefaultProfile()
	if err := k.UnmarshalWithConf("", &profile, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Profile{}, fmt.Errorf("decode feature profile: %w", err)
	}

	return profile.normalize()
}

func (p Profile) normalize() (Profile, error) {
	if p.WindowSize <= 0 {
		return Profile{}, fmt.Errorf("window_size must be > 0, got %d", p.WindowSize)
	}
	if p.SplitFraction <= 0 || p.SplitFraction >= 1 {
		return Profile{}, fmt.Errorf("split_fraction must be within (0, 1), got %v", p.SplitFraction)
	}
	if p.MaxJoinDropRate < 0 || p.MaxJoinDropRate > 1 {
		return Profile{}, fmt.Errorf("max_join_drop_rate must be within [0, 1], got %v", p.MaxJoinDropRate)
	}

	policy, err := feature.ParseHistoryPolicy(string(p.HistoryPolicy))
	if err != nil {
		return Profile{}, fmt.Errorf("parse history_policy: %w", err)
	}
	strategy, err := feature.ParseWindowStrategy(string(p.WindowStrategy))
	if err != nil {
		return Profile{}, fmt.Errorf("parse window_strategy: %w", err)
	}
	p.HistoryPolicy = policy
	p.WindowStrategy = strategy
	return p, nil
}
