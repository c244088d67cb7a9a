package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/game-features/internal/domain/feature"
)

type FeatureRepository struct {
	mu   sync.RWMutex
	rows []feature.GameRow
}

func NewFeatureRepository() *FeatureRepository {
	return &FeatureRepository{}
}

// ReplaceAll swaps the whole table, like a drop-and-recreate.
func (r *FeatureRepository) ReplaceAll(_ context.Context, rows []feature.GameRow) error {
	next := make([]feature.GameRow, len(rows))
	copy(next, rows)
	sort.SliceStable(next, func(i, j int) bool {
		return feature.Before(next[i], next[j])
	})

	r.mu.Lock()
	r.rows = next
	r.mu.Unlock()

	return nil
}

func (r *FeatureRepository) List(_ context.Context) ([]feature.GameRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]feature.GameRow, 0, len(r.rows))
	out = append(out, r.rows...)

	return out, nil
}
