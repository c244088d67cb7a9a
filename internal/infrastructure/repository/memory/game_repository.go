package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/riskibarqy/game-features/internal/domain/game"
)

type GameRepository struct {
	mu    sync.RWMutex
	games map[string]game.Record
}

func NewGameRepository(records []game.Record) *GameRepository {
	games := make(map[string]game.Record, len(records))
	for _, item := range records {
		games[item.GameID] = item
	}

	return &GameRepository{games: games}
}

// Upsert replaces stored games by game id.
func (r *GameRepository) Upsert(_ context.Context, items []game.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		if strings.TrimSpace(item.GameID) == "" {
			continue
		}
		r.games[item.GameID] = item
	}

	return nil
}

func (r *GameRepository) List(_ context.Context, filter game.Filter) ([]game.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game.Record, 0, len(r.games))
	for _, item := range r.games {
		if filter.Match(item) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return game.Before(out[i], out[j])
	})

	return out, nil
}

func (r *GameRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.games), nil
}
