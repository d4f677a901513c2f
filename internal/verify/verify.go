// Package verify checks a provisioned database against expectations:
// object counts per schema plus a row count for every table.
package verify

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/hmkang/pgsetup/pkg/pgsetup"
)

// Result holds the verification outcome for one schema.
type Result struct {
	Schema    string
	Tables    int
	Sequences int
	Indexes   int
	Views     int

	// TableRows maps table name to its row count. A count of -1 means
	// the count query failed for that table; the failure is also
	// recorded in Errors.
	TableRows map[string]int64

	Errors []string
}

// Ok reports whether verification completed without errors.
func (r *Result) Ok() bool {
	return len(r.Errors) == 0
}

// Schema verifies one schema. Per-table row count failures are recorded
// and verification continues; only catalog query failures abort.
func Schema(ctx context.Context, q pgsetup.Querier, schema string, logger pgsetup.Logger) (*Result, error) {
	result := &Result{
		Schema:    schema,
		TableRows: make(map[string]int64),
	}

	logger.Info("verifying schema %q", schema)

	var err error
	if result.Tables, err = countObjects(ctx, q,
		`SELECT count(*) FROM pg_tables WHERE schemaname = $1`, schema); err != nil {
		return nil, fmt.Errorf("failed to count tables: %w", err)
	}
	logger.Info("tables: %d", result.Tables)

	if result.Sequences, err = countObjects(ctx, q, `
		SELECT count(*)
		FROM   pg_class c
		JOIN   pg_namespace n ON n.oid = c.relnamespace
		WHERE  c.relkind = 'S' AND n.nspname = $1`, schema); err != nil {
		return nil, fmt.Errorf("failed to count sequences: %w", err)
	}
	logger.Info("sequences: %d", result.Sequences)

	if result.Indexes, err = countObjects(ctx, q,
		`SELECT count(*) FROM pg_indexes WHERE schemaname = $1`, schema); err != nil {
		return nil, fmt.Errorf("failed to count indexes: %w", err)
	}
	logger.Info("indexes: %d", result.Indexes)

	if result.Views, err = countObjects(ctx, q,
		`SELECT count(*) FROM pg_views WHERE schemaname = $1`, schema); err != nil {
		return nil, fmt.Errorf("failed to count views: %w", err)
	}
	logger.Info("views: %d", result.Views)

	if err := countRows(ctx, q, schema, result, logger); err != nil {
		return nil, err
	}

	if result.Ok() {
		logger.Ok("schema %q verified", schema)
	} else {
		logger.Warn("schema %q verified with %d error(s)", schema, len(result.Errors))
	}
	return result, nil
}

func countObjects(ctx context.Context, q pgsetup.Querier, sql, schema string) (int, error) {
	var count int
	err := q.QueryRow(ctx, sql, schema).Scan(&count)
	return count, err
}

// countRows runs SELECT count(*) per table. A failing table is recorded
// as -1 and the sweep continues: one broken table must not hide the row
// counts of the rest.
func countRows(ctx context.Context, q pgsetup.Querier, schema string, result *Result, logger pgsetup.Logger) error {
	rows, err := q.Query(ctx,
		`SELECT tablename FROM pg_tables WHERE schemaname = $1 ORDER BY tablename`, schema)
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}
	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return err
		}
		tables = append(tables, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, table := range tables {
		var count int64
		err := q.QueryRow(ctx,
			fmt.Sprintf("SELECT count(*) FROM %q.%q", schema, table)).Scan(&count)
		if err != nil {
			result.TableRows[table] = -1
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s.%s: %v", schema, table, err))
			logger.Error("  %s: count failed: %v", table, err)
			continue
		}
		result.TableRows[table] = count
		logger.Info("  %s: %d row(s)", table, count)
	}
	return nil
}

// WriteReport renders results as a plain-text report.
func WriteReport(w io.Writer, results []*Result) error {
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "Schema: %s\n", r.Schema)
		fmt.Fprintf(w, "%s\n", strings.Repeat("-", 40))
		fmt.Fprintf(w, "Tables:    %d\n", r.Tables)
		fmt.Fprintf(w, "Sequences: %d\n", r.Sequences)
		fmt.Fprintf(w, "Indexes:   %d\n", r.Indexes)
		fmt.Fprintf(w, "Views:     %d\n", r.Views)

		if len(r.TableRows) > 0 {
			fmt.Fprintln(w)
			fmt.Fprintln(w, "Row counts:")
			names := make([]string, 0, len(r.TableRows))
			for name := range r.TableRows {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				count := r.TableRows[name]
				if count < 0 {
					fmt.Fprintf(w, "  %-30s (count failed)\n", name)
					continue
				}
				fmt.Fprintf(w, "  %-30s %d\n", name, count)
			}
		}

		if len(r.Errors) > 0 {
			fmt.Fprintln(w)
			fmt.Fprintln(w, "Errors:")
			for _, e := range r.Errors {
				fmt.Fprintf(w, "  - %s\n", e)
			}
		}
	}
	return nil
}
