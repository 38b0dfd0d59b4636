package migration

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanner_Scan(t *testing.T) {
	tests := []struct {
		name          string
		files         fstest.MapFS
		expectedOrder []string
		expectError   error
	}{
		{
			name: "orders by numeric version and ignores other files",
			files: fstest.MapFS{
				"010_indexes.sql":       {Data: []byte("CREATE INDEX idx_a ON a(id);")},
				"002_second.sql":        {Data: []byte("CREATE TABLE b (id TEXT);")},
				"001_initial.sql":       {Data: []byte("-- Description: first table\nCREATE TABLE a (id TEXT);")},
				"README.md":             {Data: []byte("# notes")},
				"nested/003_nested.sql": {Data: []byte("CREATE TABLE c (id TEXT);")},
			},
			expectedOrder: []string{"001", "002", "010"},
		},
		{
			name:          "empty directory",
			files:         fstest.MapFS{"keep.txt": {Data: []byte("")}},
			expectedOrder: nil,
		},
		{
			name: "duplicate versions are rejected",
			files: fstest.MapFS{
				"001_a.sql": {Data: []byte("CREATE TABLE a (id TEXT);")},
				"001_b.sql": {Data: []byte("CREATE TABLE b (id TEXT);")},
			},
			expectError: ErrDuplicateVersion,
		},
		{
			name:        "bad file name is rejected",
			files:       fstest.MapFS{"initial.sql": {Data: []byte("CREATE TABLE a (id TEXT);")}},
			expectError: ErrInvalidMigrationFile,
		},
		{
			name:        "comment-only file is rejected",
			files:       fstest.MapFS{"001_empty.sql": {Data: []byte("-- nothing here\n")}},
			expectError: ErrInvalidMigrationFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			migrations, err := NewScanner(tt.files, ".").Scan()
			if tt.expectError != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.expectError), "got %v", err)
				return
			}
			require.NoError(t, err)

			var order []string
			for _, m := range migrations {
				order = append(order, m.Version)
				assert.NotEmpty(t, m.Checksum)
			}
			assert.Equal(t, tt.expectedOrder, order)
		})
	}

	t.Run("description prefers the header comment", func(t *testing.T) {
		files := fstest.MapFS{
			"001_initial_schema.sql": {Data: []byte("-- Description: first table\nCREATE TABLE a (id TEXT);")},
			"002_add_rooms.sql":      {Data: []byte("CREATE TABLE b (id TEXT);")},
		}
		migrations, err := NewScanner(files, ".").Scan()
		require.NoError(t, err)
		require.Len(t, migrations, 2)
		assert.Equal(t, "first table", migrations[0].Description)
		assert.Equal(t, "add rooms", migrations[1].Description)
	})
}

func TestManager_Run(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, DefaultSQLiteConfig(filepath.Join(t.TempDir(), "nested", "test.db")))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	files := fstest.MapFS{
		"001_kv.sql":    {Data: []byte("CREATE TABLE kv (key TEXT PRIMARY KEY, value TEXT NOT NULL);")},
		"002_index.sql": {Data: []byte("CREATE INDEX idx_kv_value ON kv(value);")},
	}
	executor := NewSQLiteExecutor(db)
	manager := NewManager(NewScanner(files, "."), executor, nil)

	t.Run("applies pending migrations once", func(t *testing.T) {
		require.NoError(t, manager.Run(ctx))
		require.NoError(t, manager.Run(ctx))

		applied, err := executor.GetAppliedVersions(ctx)
		require.NoError(t, err)
		require.Len(t, applied, 2)
		assert.Equal(t, "001", applied[0].Version)
		assert.Equal(t, "002", applied[1].Version)

		status, err := manager.Status(ctx)
		require.NoError(t, err)
		assert.Equal(t, "002", status.CurrentVersion)
		assert.Empty(t, status.PendingMigrations)
	})

	t.Run("failed migration is not recorded", func(t *testing.T) {
		files["003_broken.sql"] = &fstest.MapFile{Data: []byte("CREATE TABLE kv (key TEXT);")}
		t.Cleanup(func() { delete(files, "003_broken.sql") })

		err := manager.Run(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMigrationFailed)

		status, err := manager.Status(ctx)
		require.NoError(t, err)
		require.Len(t, status.PendingMigrations, 1)
		assert.Equal(t, "003", status.PendingMigrations[0].Version)
	})

	t.Run("unknown applied version is a conflict", func(t *testing.T) {
		other := NewManager(NewScanner(fstest.MapFS{"001_kv.sql": files["001_kv.sql"]}, "."), executor, nil)
		_, err := other.Status(ctx)
		assert.ErrorIs(t, err, ErrVersionConflict)
	})
}

func TestSQLiteConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultSQLiteConfig("file:x.db").Validate())
	assert.NoError(t, InMemoryTestSQLiteConfig().Validate())

	bad := DefaultSQLiteConfig("x.db")
	bad.JournalMode = "SIDEWAYS"
	assert.Error(t, bad.Validate())

	assert.Error(t, DefaultSQLiteConfig(" ").Validate())
}
