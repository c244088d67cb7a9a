package postgres

import (
	"time"

	qb "github.com/riskibarqy/game-features/internal/platform/querybuilder"
)

// batchSizeFor is the most rows of model that fit in one insert statement.
func batchSizeFor(model any) int {
	columns, err := qb.ModelColumns(model)
	if err != nil {
		return 0
	}
	return qb.ChunkSize(len(columns))
}

func chunks[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 || size >= len(items) {
		return [][]T{items}
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end])
	}
	return out
}

// civilDate drops the clock and zone; DATE columns come back as UTC midnight.
func civilDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
