package feature

import "context"

// Repository stores the assembled feature table. ReplaceAll swaps the whole
// table so a rebuilt run never mixes with a previous one.
type Repository interface {
	ReplaceAll(ctx context.Context, rows []GameRow) error
	List(ctx context.Context) ([]GameRow, error)
}
