package verify

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmkang/pgsetup/internal/logging"
	"github.com/hmkang/pgsetup/internal/testinfra"
)

func TestResult_Ok(t *testing.T) {
	r := &Result{Schema: "public"}
	assert.True(t, r.Ok())

	r.Errors = append(r.Errors, "public.broken: boom")
	assert.False(t, r.Ok())
}

func TestWriteReport(t *testing.T) {
	results := []*Result{
		{
			Schema: "public",
			Tables: 2, Sequences: 1, Indexes: 3, Views: 1,
			TableRows: map[string]int64{
				"orders":    42,
				"customers": 7,
				"broken":    -1,
			},
			Errors: []string{"public.broken: permission denied"},
		},
		{Schema: "audit", Tables: 1},
	}

	var b strings.Builder
	require.NoError(t, WriteReport(&b, results))
	report := b.String()

	assert.Contains(t, report, "Schema: public")
	assert.Contains(t, report, "Tables:    2")
	assert.Contains(t, report, "Sequences: 1")
	assert.Contains(t, report, "orders")
	assert.Contains(t, report, "42")
	assert.Contains(t, report, "(count failed)")
	assert.Contains(t, report, "- public.broken: permission denied")
	assert.Contains(t, report, "Schema: audit")

	// Row counts are sorted by table name.
	assert.Less(t, strings.Index(report, "broken"), strings.Index(report, "customers"))
	assert.Less(t, strings.Index(report, "customers"), strings.Index(report, "orders"))
}

func TestSchema_Integration(t *testing.T) {
	connString := testinfra.RequireDatabase(t)
	pool := testinfra.GetTestPool(t, connString)
	ctx := context.Background()

	setup := []string{
		`DROP SCHEMA IF EXISTS verify_test CASCADE`,
		`CREATE SCHEMA verify_test`,
		`CREATE TABLE verify_test.items (id serial PRIMARY KEY, name text)`,
		`CREATE TABLE verify_test.tags (id serial PRIMARY KEY)`,
		`CREATE INDEX items_name_idx ON verify_test.items (name)`,
		`CREATE VIEW verify_test.named_items AS SELECT * FROM verify_test.items WHERE name IS NOT NULL`,
		`INSERT INTO verify_test.items (name) VALUES ('a'), ('b'), ('c')`,
	}
	for _, sql := range setup {
		_, err := pool.Exec(ctx, sql)
		require.NoError(t, err, "setup: %s", sql)
	}
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DROP SCHEMA verify_test CASCADE`)
	})

	result, err := Schema(ctx, pool, "verify_test", logging.NewNullLogger())
	require.NoError(t, err)

	assert.True(t, result.Ok())
	assert.Equal(t, 2, result.Tables)
	// serial columns create one sequence per table
	assert.Equal(t, 2, result.Sequences)
	// two primary keys plus the explicit index
	assert.Equal(t, 3, result.Indexes)
	assert.Equal(t, 1, result.Views)
	assert.Equal(t, int64(3), result.TableRows["items"])
	assert.Equal(t, int64(0), result.TableRows["tags"])
}
