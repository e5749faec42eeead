package seed

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/o.frames/internal/catalog"
	"github.com/Simplici0/o.frames/internal/db"
	"github.com/Simplici0/o.frames/internal/migrations"
	"github.com/Simplici0/o.frames/internal/pricing"
)

func TestRunIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "seed-test.db")
	database, err := db.Open(dbPath)
	require.NoError(t, err, "open sqlite database")
	defer database.Close()

	require.NoError(t, migrations.Up(database, "../../migrations"), "run migrations")

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		stats, err := Run(ctx, database)
		require.NoError(t, err, "run seed (iteration=%d)", i)
		if i == 0 {
			assert.Equal(t, 9, stats.Inserts, "inserts in first run")
			continue
		}
		assert.Zero(t, stats.Inserts, "inserts in iteration %d", i)
	}

	assertCount(t, database, `SELECT COUNT(*) FROM frames WHERE key = ?`, []any{defaultFrameKey}, 1)
	assertCount(t, database, `SELECT COUNT(*) FROM frame_purchase_options WHERE frame_key = ?`, []any{defaultFrameKey}, 5)
	assertCount(t, database, `SELECT COUNT(*) FROM sheet_materials`, nil, 3)
}

func TestSeededCatalogPricesWithoutFallbacks(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "seed-snapshot.db"))
	require.NoError(t, err)
	defer database.Close()
	require.NoError(t, migrations.Up(database, "../../migrations"))

	ctx := context.Background()
	_, err = Run(ctx, database)
	require.NoError(t, err)

	snap, err := catalog.NewStore(database, 0).Snapshot(ctx)
	require.NoError(t, err)

	rates, fallbacks, err := snap.ResolveRates(pricing.Selection{
		FrameKey:   defaultFrameKey,
		MatKey:     defaultMatKey,
		GlassKey:   defaultGlassKey,
		BackingKey: defaultBackingKey,
	})
	require.NoError(t, err)
	assert.Empty(t, fallbacks)
	assert.Equal(t, 1.50, rates.FramePerFoot)

	res, err := pricing.OptimizePurchase(12, snap.Frames[defaultFrameKey].Options)
	require.NoError(t, err)
	assert.Len(t, res.Options, 5)
}

func assertCount(t *testing.T, database *sql.DB, query string, args []any, expected int) {
	t.Helper()

	var count int
	require.NoError(t, database.QueryRow(query, args...).Scan(&count), "count query")
	assert.Equal(t, expected, count, query)
}
