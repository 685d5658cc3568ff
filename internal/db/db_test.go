package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpen_SQLiteMigrates(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db")
	gdb, err := Open("sqlite", dsn, 2, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(gdb) })

	for _, table := range []string{"user_names", "user_messages", "sequential_words"} {
		assert.True(t, gdb.Migrator().HasTable(table), table)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("oracle", "x", 1, nil)
	assert.ErrorContains(t, err, "unsupported")
}

func TestWithTableOptions_MySQLUsesBinaryCollation(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db")
	gdb, err := Open("sqlite", dsn, 1, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(gdb) })

	opts, ok := withTableOptions(gdb, "mysql").Get("gorm:table_options")
	require.True(t, ok)
	assert.Contains(t, opts, "COLLATE=utf8mb4_bin")

	_, ok = withTableOptions(gdb, "sqlite").Get("gorm:table_options")
	assert.False(t, ok)
}
