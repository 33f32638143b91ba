package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/stockroom/pkg/config"
	"github.com/angelmondragon/stockroom/pkg/db"
	"github.com/angelmondragon/stockroom/pkg/db/models"
	"github.com/angelmondragon/stockroom/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsDirIsValid(t *testing.T) {
	files, err := ValidateDir("migrations")
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.True(t, strings.HasSuffix(files[0], "_create_users.sql"))
}

func TestMigrationsContainSchemas(t *testing.T) {
	cases := map[string][]string{
		"*_create_users.sql": {
			"CREATE TABLE IF NOT EXISTS users",
			"CREATE UNIQUE INDEX IF NOT EXISTS idx_users_login ON users (login)",
			"CHECK (position IN ('trader', 'buyer'))",
			"DROP TABLE IF EXISTS users",
		},
		"*_create_products.sql": {
			"CREATE TABLE IF NOT EXISTS products",
			"DROP TABLE IF EXISTS products",
		},
		"*_create_log_event.sql": {
			"CREATE TABLE IF NOT EXISTS log_event",
			"timestamp TIMESTAMPTZ NOT NULL",
			"DROP TABLE IF EXISTS log_event",
		},
	}

	for pattern, checks := range cases {
		matches, err := filepath.Glob(filepath.Join("migrations", pattern))
		require.NoError(t, err)
		require.Len(t, matches, 1, pattern)

		data, err := os.ReadFile(matches[0])
		require.NoError(t, err)
		for _, sub := range checks {
			assert.Contains(t, string(data), sub, pattern)
		}
	}
}

func TestValidateDirRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad-name.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	_, err := ValidateDir(dir)
	require.Error(t, err)

	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20250101000000_no_down.sql"), []byte("-- +goose Up\n"), 0o644))
	_, err = ValidateDir(dir)
	require.ErrorContains(t, err, "-- +goose Down")

	_, err = ValidateDir("")
	require.Error(t, err)
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Product SKU!")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_add_product_sku.sql"))

	files, err := ValidateDir(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)

	_, err = CreateSQLMigration(dir, "!!!")
	require.Error(t, err)
}

func TestCreateSQLMigrationSortsAfterNewestVersion(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20300101000000_future.sql"),
		[]byte("-- +goose Up\n-- +goose Down\n"), 0o644))

	stale := func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	path, err := createSQLMigration(dir, "add sku", stale)
	require.NoError(t, err)
	assert.Equal(t, "20300101000001_add_sku.sql", filepath.Base(path))

	// Same clock again lands one second later rather than colliding.
	path, err = createSQLMigration(dir, "add sku", stale)
	require.NoError(t, err)
	assert.Equal(t, "20300101000002_add_sku.sql", filepath.Base(path))

	files, err := ValidateDir(dir)
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestCreateSQLMigrationUsesClockWhenAhead(t *testing.T) {
	dir := t.TempDir()
	at := func() time.Time { return time.Date(2026, 10, 16, 9, 30, 0, 0, time.FixedZone("x", 3600)) }
	path, err := createSQLMigration(dir, "Index Products", at)
	require.NoError(t, err)
	assert.Equal(t, "20261016083000_index_products.sql", filepath.Base(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "-- +goose Up")
	assert.Contains(t, string(raw), "-- revert index_products")
}

func TestMaybeRunDevAutoMigratesSQLite(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{
		App: config.AppConfig{Env: config.AppEnvProd},
		DB:  config.DBConfig{Driver: config.DBDriverSQLite, DSN: "file:automigrate?mode=memory&cache=shared"},
	}
	client, err := db.New(ctx, cfg.DB, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, MaybeRunDev(ctx, cfg, logger.Nop(), client))

	for _, table := range []string{"users", "products", "log_event"} {
		assert.True(t, client.DB().Migrator().HasTable(table), table)
	}
	require.NoError(t, client.DB().Create(&models.InventoryItem{Name: "crate"}).Error)
}

func TestRunRequiresDB(t *testing.T) {
	require.Error(t, Run(context.Background(), nil, DefaultDir, "up"))
	require.Error(t, MigrateToVersion(context.Background(), nil, DefaultDir, ""))
}
