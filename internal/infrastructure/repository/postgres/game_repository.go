package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/game-features/internal/domain/game"
	qb "github.com/riskibarqy/game-features/internal/platform/querybuilder"
)

const upsertGamesSuffix = `ON CONFLICT (game_id) DO UPDATE SET
    season_id = EXCLUDED.season_id,
    game_date = EXCLUDED.game_date,
    home_team_id = EXCLUDED.home_team_id,
    away_team_id = EXCLUDED.away_team_id,
    home_points = EXCLUDED.home_points,
    away_points = EXCLUDED.away_points,
    home_result = EXCLUDED.home_result,
    updated_at = NOW()`

type GameRepository struct {
	db        *sqlx.DB
	batchSize int
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db, batchSize: batchSizeFor(gameTableModel{})}
}

// Upsert merges games by game id inside one transaction.
func (r *GameRepository) Upsert(ctx context.Context, items []game.Record) error {
	models := dedupeGameModels(items)
	if len(models) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert games: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, batch := range chunks(models, r.batchSize) {
		query, args, err := buildUpsertGamesQuery(batch)
		if err != nil {
			return fmt.Errorf("build upsert games query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert games: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert games: %w", err)
	}
	return nil
}

func (r *GameRepository) List(ctx context.Context, filter game.Filter) ([]game.Record, error) {
	query, args, err := buildListGamesQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("build select games query: %w", err)
	}

	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select games: %w", err)
	}

	out := make([]game.Record, 0, len(rows))
	for _, row := range rows {
		record, err := row.toRecord()
		if err != nil {
			return nil, fmt.Errorf("decode game %s: %w", row.GameID, err)
		}
		out = append(out, record)
	}
	return out, nil
}

func (r *GameRepository) Count(ctx context.Context) (int, error) {
	query, args, err := qb.Select("COUNT(*)").From(gamesTable).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count games query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count games: %w", err)
	}
	return count, nil
}

func buildUpsertGamesQuery(models []gameTableModel) (string, []any, error) {
	return qb.InsertModels(gamesTable, models, upsertGamesSuffix)
}

func buildListGamesQuery(filter game.Filter) (string, []any, error) {
	columns, err := qb.ModelColumns(gameTableModel{})
	if err != nil {
		return "", nil, err
	}

	conditions := make([]qb.Condition, 0, 3)
	if !filter.From.IsZero() {
		conditions = append(conditions, qb.Gte("game_date", civilDate(filter.From)))
	}
	if !filter.To.IsZero() {
		conditions = append(conditions, qb.Lte("game_date", civilDate(filter.To)))
	}
	if len(filter.SeasonIDs) > 0 {
		conditions = append(conditions, qb.Expr("season_id = ANY(?)", pq.Array(filter.SeasonIDs)))
	}

	return qb.Select(columns...).
		From(gamesTable).
		Where(conditions...).
		OrderBy("game_date", "game_id").
		ToSQL()
}

// dedupeGameModels keeps the last record per game id; Postgres rejects an
// ON CONFLICT statement that touches the same row twice.
func dedupeGameModels(items []game.Record) []gameTableModel {
	index := make(map[string]int, len(items))
	out := make([]gameTableModel, 0, len(items))
	for _, item := range items {
		if item.GameID == "" {
			continue
		}
		model := gameModelFromRecord(item)
		if pos, ok := index[item.GameID]; ok {
			out[pos] = model
			continue
		}
		index[item.GameID] = len(out)
		out = append(out, model)
	}
	return out
}
