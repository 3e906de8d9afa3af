package commands

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationSource(t *testing.T) {
	t.Run("postgres", func(t *testing.T) {
		src, dsn, err := migrationSource("postgres", "postgres://u:p@localhost/db")
		require.NoError(t, err)
		assert.Equal(t, "file://migrations/postgresql", src)
		assert.Equal(t, "postgres://u:p@localhost/db", dsn)
	})

	t.Run("mysql adds scheme", func(t *testing.T) {
		src, dsn, err := migrationSource("mysql", "u:p@tcp(localhost:3306)/db?parseTime=true")
		require.NoError(t, err)
		assert.Equal(t, "file://migrations/mysql", src)
		assert.Equal(t, "mysql://u:p@tcp(localhost:3306)/db?parseTime=true", dsn)
	})

	t.Run("mysql keeps scheme", func(t *testing.T) {
		_, dsn, err := migrationSource("mysql", "mysql://u:p@tcp(localhost:3306)/db")
		require.NoError(t, err)
		assert.Equal(t, "mysql://u:p@tcp(localhost:3306)/db", dsn)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, _, err := migrationSource("sqlite", "file.db")
		assert.ErrorContains(t, err, "unsupported database driver")
	})
}

func TestRunMigrations(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("invalid-driver", func(t *testing.T) {
		err := RunMigrations(logger, "invalid", "postgres://localhost")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create migrate instance")
	})

	t.Run("invalid-connection-string", func(t *testing.T) {
		err := RunMigrations(logger, "postgres", "invalid-connection-string")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create migrate instance")
	})
}
