package db

import (
	"bytes"
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(migrations, migrationsDir+"/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, name := range files {
		body, err := fs.ReadFile(migrations, name)
		require.NoError(t, err)
		text := string(body)
		assert.True(t, strings.Contains(text, "-- +goose Up"), "%s lacks an up section", name)
		assert.True(t, strings.Contains(text, "-- +goose Down"), "%s lacks a down section", name)
	}
}

func TestRecordsMigrationMatchesQueries(t *testing.T) {
	body, err := fs.ReadFile(migrations, migrationsDir+"/00001_records.sql")
	require.NoError(t, err)
	for _, column := range []string{"position", "prompt", "reference_image_url", "style_id", "generation_status", "generated_urls", "updated_at"} {
		assert.Contains(t, string(body), column)
	}
}

func TestMigrateRejectsBadInput(t *testing.T) {
	err := Migrate(context.Background(), "postgres://localhost/x", "sideways", nil)
	require.ErrorIs(t, err, ErrUnknownCommand)

	err = Migrate(context.Background(), " ", CommandUp, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database url is empty")
}

func TestGooseLogger(t *testing.T) {
	var buf bytes.Buffer
	l := gooseLogger{log: zerolog.New(&buf)}

	l.Printf("OK   %s\n", "00001_records.sql")
	l.Fatalf("failed %d", 2)

	out := buf.String()
	assert.Contains(t, out, `"message":"OK   00001_records.sql"`)
	assert.Contains(t, out, `"level":"error"`)
	assert.Contains(t, out, `"message":"failed 2"`)
}
