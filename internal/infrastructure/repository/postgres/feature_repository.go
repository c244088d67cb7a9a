package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/game-features/internal/domain/feature"
	qb "github.com/riskibarqy/game-features/internal/platform/querybuilder"
)

type FeatureRepository struct {
	db        *sqlx.DB
	batchSize int
}

func NewFeatureRepository(db *sqlx.DB) *FeatureRepository {
	return &FeatureRepository{db: db, batchSize: batchSizeFor(gameFeatureTableModel{})}
}

// ReplaceAll clears game_features and writes rows in one transaction, so
// readers never see a half-built table.
func (r *FeatureRepository) ReplaceAll(ctx context.Context, rows []feature.GameRow) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace game features: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	deleteQuery, deleteArgs, err := qb.DeleteFrom(gameFeaturesTable).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete game features query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("delete game features: %w", err)
	}

	models := make([]gameFeatureTableModel, 0, len(rows))
	for _, row := range rows {
		models = append(models, featureModelFromRow(row))
	}
	for _, batch := range chunks(models, r.batchSize) {
		query, args, err := qb.InsertModels(gameFeaturesTable, batch, "")
		if err != nil {
			return fmt.Errorf("build insert game features query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert game features: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace game features: %w", err)
	}
	return nil
}

func (r *FeatureRepository) List(ctx context.Context) ([]feature.GameRow, error) {
	query, args, err := buildListFeaturesQuery()
	if err != nil {
		return nil, fmt.Errorf("build select game features query: %w", err)
	}

	var rows []gameFeatureTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select game features: %w", err)
	}

	out := make([]feature.GameRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toRow())
	}
	return out, nil
}

func buildListFeaturesQuery() (string, []any, error) {
	columns, err := qb.ModelColumns(gameFeatureTableModel{})
	if err != nil {
		return "", nil, err
	}
	return qb.Select(columns...).
		From(gameFeaturesTable).
		OrderBy("game_date", "game_id").
		ToSQL()
}
