package game

import "context"

// Repository persists canonical game records between pipeline runs.
type Repository interface {
	Upsert(ctx context.Context, records []Record) error
	List(ctx context.Context, filter Filter) ([]Record, error)
	Count(ctx context.Context) (int, error)
}
