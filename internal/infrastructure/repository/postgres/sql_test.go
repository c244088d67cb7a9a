package postgres

import (
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/riskibarqy/game-features/internal/domain/feature"
	"github.com/riskibarqy/game-features/internal/domain/game"
	"github.com/riskibarqy/game-features/internal/domain/gamelog"
	qb "github.com/riskibarqy/game-features/internal/platform/querybuilder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunks(t *testing.T) {
	t.Parallel()

	got := chunks([]int{1, 2, 3, 4, 5}, 2)
	require.Len(t, got, 3)
	assert.Equal(t, []int{5}, got[2])

	assert.Nil(t, chunks([]int{}, 2))
	assert.Len(t, chunks([]int{1, 2}, 0), 1)
}

func TestBatchSizeFitsBindParameterLimit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, qb.MaxParams/8, NewGameRepository(nil).batchSize)
	assert.Equal(t, qb.MaxParams/len(feature.Columns()), NewFeatureRepository(nil).batchSize)
	assert.Zero(t, batchSizeFor(42))

	size := NewFeatureRepository(nil).batchSize
	models := make([]gameFeatureTableModel, size)
	_, args, err := qb.InsertModels(gameFeaturesTable, models, "")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(args), qb.MaxParams)

	_, _, err = qb.InsertModels(gameFeaturesTable, append(models, gameFeatureTableModel{}), "")
	require.Error(t, err)
}

func TestCivilDate(t *testing.T) {
	t.Parallel()

	in := time.Date(2024, 1, 3, 23, 30, 0, 0, time.FixedZone("PST", -8*3600))
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), civilDate(in))
	assert.True(t, civilDate(time.Time{}).IsZero())
}

func TestBuildUpsertGamesQuery(t *testing.T) {
	t.Parallel()

	models := dedupeGameModels([]game.Record{
		{GameID: "G1", HomeTeamID: "1", AwayTeamID: "2", HomePoints: 100, HomeResult: gamelog.OutcomeWin},
		{GameID: "G2", HomeTeamID: "3", AwayTeamID: "4", HomeResult: gamelog.OutcomeLoss},
		{GameID: "G1", HomeTeamID: "1", AwayTeamID: "2", HomePoints: 101, HomeResult: gamelog.OutcomeWin},
	})
	require.Len(t, models, 2)
	assert.Equal(t, 101, models[0].HomePoints)

	query, args, err := buildUpsertGamesQuery(models)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(query, "INSERT INTO games (game_id, season_id, game_date, home_team_id, away_team_id, home_points, away_points, home_result) VALUES ($1,"))
	assert.Contains(t, query, "($9, $10, $11, $12, $13, $14, $15, $16)")
	assert.Contains(t, query, "ON CONFLICT (game_id) DO UPDATE SET")
	assert.Len(t, args, 16)
	assert.Equal(t, "L", args[15])
}

func TestBuildListGamesQuery(t *testing.T) {
	t.Parallel()

	query, args, err := buildListGamesQuery(game.Filter{})
	require.NoError(t, err)
	assert.Equal(t, "SELECT game_id, season_id, game_date, home_team_id, away_team_id, home_points, away_points, home_result FROM games ORDER BY game_date, game_id", query)
	assert.Empty(t, args)

	from := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	query, args, err = buildListGamesQuery(game.Filter{From: from, SeasonIDs: []string{"22023"}})
	require.NoError(t, err)
	assert.Contains(t, query, "WHERE game_date >= $1 AND season_id = ANY($2)")
	require.Len(t, args, 2)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), args[0])
	assert.Equal(t, pq.Array([]string{"22023"}), args[1])
}

func TestGameModelRoundTrip(t *testing.T) {
	t.Parallel()

	record := game.Record{
		GameID:     "0022300001",
		SeasonID:   "22023",
		GameDate:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		HomeTeamID: "1610612747",
		AwayTeamID: "1610612738",
		HomePoints: 110,
		AwayPoints: 104,
		HomeResult: gamelog.OutcomeWin,
	}
	got, err := gameModelFromRecord(record).toRecord()
	require.NoError(t, err)
	assert.Equal(t, record, got)

	_, err = gameTableModel{HomeResult: "T"}.toRecord()
	require.Error(t, err)
}

func TestFeatureModelColumnsMatchExport(t *testing.T) {
	t.Parallel()

	query, _, err := buildListFeaturesQuery()
	require.NoError(t, err)

	exported := feature.Columns()
	assert.Equal(t, "SELECT "+strings.Join(exported, ", ")+" FROM game_features ORDER BY game_date, game_id", query)

	row := feature.GameRow{
		GameID:   "G1",
		GameDate: time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC),
		Home:     feature.SideFeatures{RollingPointsFor: 105, RollingWinPct: 0.5, RestDays: 3},
		Away:     feature.SideFeatures{RollingPointsAgainst: 99.5, RestDays: 1},
		Label:    1,
	}
	assert.Equal(t, row, featureModelFromRow(row).toRow())
}
