package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recliq/go-backoffice/components/backoffice"
	"github.com/recliq/go-backoffice/pkg/config"
)

func TestParseCommands(t *testing.T) {
	var app cli
	parser, err := kong.New(&app, kong.Name("backofficectl"))
	require.NoError(t, err)

	kctx, err := parser.Parse([]string{"page", "--table", "payments", "--filter", "status=failed", "--page-size", "5", "-o", "yaml"})
	require.NoError(t, err)
	assert.Equal(t, "page", kctx.Command())
	assert.Equal(t, "payments", app.Page.Table)
	assert.Equal(t, map[string]string{"status": "failed"}, app.Page.Filter)
	assert.Equal(t, 5, app.Page.PageSize)
	assert.Equal(t, 1, app.Page.Page)

	_, err = parser.Parse([]string{"export", "--table", "payments", "--format", "xlsx"})
	assert.Error(t, err)

	kctx, err = parser.Parse([]string{"seed-db", "--sqlite", "backoffice.db"})
	require.NoError(t, err)
	assert.Equal(t, "seed-db", kctx.Command())
}

func TestPageCommandWritesYAML(t *testing.T) {
	var out bytes.Buffer
	cmd := &pageCmd{
		Table:  backoffice.TablePayments,
		Filter: map[string]string{"status": "failed"},
		Page:   1,
		Output: "yaml",
		out:    &out,
	}
	require.NoError(t, cmd.Run(context.Background(), &Globals{}))
	assert.Contains(t, out.String(), "total_count: 4")
	assert.Contains(t, out.String(), "PAY-1004")
}

func TestPageCommandRejectsUnknownSort(t *testing.T) {
	cmd := &pageCmd{Table: backoffice.TablePayments, Sort: "colour", Page: 1, Output: "json", out: &bytes.Buffer{}}
	err := cmd.Run(context.Background(), &Globals{})
	require.Error(t, err)
	assert.True(t, backoffice.IsValidation(err))
}

func TestExportCommandWritesFile(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	cmd := &exportCmd{Table: backoffice.TableReferrals, Format: "csv", Out: dir, out: &out}
	require.NoError(t, cmd.Run(context.Background(), &Globals{}))

	matches, err := filepath.Glob(filepath.Join(dir, "referrals-*.csv"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Equal(t, 17, strings.Count(string(data), "\n"))
	assert.Contains(t, out.String(), "Exported 16 referrals rows")
}

func TestTablesCommandListsAndWritesManifest(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, (&tablesCmd{out: &out}).Run(context.Background(), &Globals{}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 8)
	assert.True(t, strings.HasPrefix(lines[0], "payments"))

	path := filepath.Join(t.TempDir(), "tables.yaml")
	out.Reset()
	require.NoError(t, (&tablesCmd{Manifest: path, out: &out}).Run(context.Background(), &Globals{}))
	doc, err := backoffice.ReadManifest(path)
	require.NoError(t, err)
	assert.Len(t, doc.Tables, 8)
}

func TestSeedDBThenPageFromSQLite(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "backoffice.db")
	var out bytes.Buffer
	require.NoError(t, (&seedDBCmd{SQLite: dbPath, out: &out}).Run(context.Background(), &Globals{}))
	assert.Contains(t, out.String(), "Seeded")

	configPath := filepath.Join(dir, "backoffice.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("source:\n  driver: sqlite\n  sqlite_path: "+dbPath+"\n"), 0o600))

	out.Reset()
	cmd := &pageCmd{Table: backoffice.TableUsers, Page: 1, PageSize: 5, Output: "json", out: &out}
	require.NoError(t, cmd.Run(context.Background(), &Globals{Config: configPath}))
	assert.Contains(t, out.String(), `"total_count": 24`)
}

func TestSQLiteSourceClosedWhenMigrationFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conflict.db")
	db, err := openSQLite(path)
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE VIEW payments AS SELECT 1 AS id").Error)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	cfg := config.Default()
	cfg.Source.Driver = config.SourceSQLite
	cfg.Source.SQLitePath = path
	a := &app{cfg: cfg, log: backoffice.NewActionLog()}

	_, err = a.sources(context.Background())
	require.Error(t, err)
	require.Len(t, a.closers, 1, "sqlite handle must be registered for closing")
	require.NoError(t, a.Close())
	assert.Empty(t, a.closers)

	_, err = newApp(context.Background(), cfg, &bytes.Buffer{})
	assert.Error(t, err)
}
