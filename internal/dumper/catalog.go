package dumper

import (
	"context"
	"fmt"
	"strings"

	"github.com/hmkang/pgsetup/pkg/pgsetup"
)

// catalog queries reconstruct object definitions from pg_catalog. The
// queries mirror what psql's \d family runs, trimmed to what the emitted
// DDL needs.

// UserSchemas lists schemas excluding pg_* and information_schema,
// with public first and the rest alphabetical.
func UserSchemas(ctx context.Context, q pgsetup.Querier) ([]string, error) {
	rows, err := q.Query(ctx, `
		SELECT nspname
		FROM   pg_namespace
		WHERE  nspname NOT LIKE 'pg\_%'
		AND    nspname != 'information_schema'
		ORDER  BY nspname = 'public' DESC, nspname`)
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	defer rows.Close()

	var schemas []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		schemas = append(schemas, name)
	}
	return schemas, rows.Err()
}

// SchemaTables lists all table names in a schema, alphabetical.
func SchemaTables(ctx context.Context, q pgsetup.Querier, schema string) ([]string, error) {
	rows, err := q.Query(ctx, `
		SELECT tablename
		FROM   pg_tables
		WHERE  schemaname = $1
		ORDER  BY tablename`, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables in %q: %w", schema, err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// Extensions lists installed extensions, excluding the built-in plpgsql.
func Extensions(ctx context.Context, q pgsetup.Querier) ([]Extension, error) {
	rows, err := q.Query(ctx, `
		SELECT extname
		FROM   pg_extension
		WHERE  extname != 'plpgsql'
		ORDER  BY extname`)
	if err != nil {
		return nil, fmt.Errorf("failed to list extensions: %w", err)
	}
	defer rows.Close()

	var exts []Extension
	for rows.Next() {
		var ext Extension
		if err := rows.Scan(&ext.Name); err != nil {
			return nil, err
		}
		exts = append(exts, ext)
	}
	return exts, rows.Err()
}

// EnumTypes lists enum types in a schema with labels in sort order.
func EnumTypes(ctx context.Context, q pgsetup.Querier, schema string) ([]EnumType, error) {
	rows, err := q.Query(ctx, `
		SELECT t.typname,
		       array_agg(e.enumlabel ORDER BY e.enumsortorder)
		FROM   pg_type t
		JOIN   pg_enum e      ON e.enumtypid = t.oid
		JOIN   pg_namespace n ON n.oid = t.typnamespace
		WHERE  n.nspname = $1
		GROUP  BY t.typname
		ORDER  BY t.typname`, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to list enum types: %w", err)
	}
	defer rows.Close()

	var enums []EnumType
	for rows.Next() {
		e := EnumType{Schema: schema}
		if err := rows.Scan(&e.Name, &e.Labels); err != nil {
			return nil, err
		}
		enums = append(enums, e)
	}
	return enums, rows.Err()
}

// Sequences lists sequence definitions in a schema.
func Sequences(ctx context.Context, q pgsetup.Querier, schema string) ([]Sequence, error) {
	rows, err := q.Query(ctx, `
		SELECT s.relname,
		       pg_sequence.seqstart,
		       pg_sequence.seqincrement,
		       pg_sequence.seqmin,
		       pg_sequence.seqmax,
		       pg_sequence.seqcycle
		FROM   pg_class s
		JOIN   pg_namespace n ON n.oid = s.relnamespace
		JOIN   pg_sequence    ON pg_sequence.seqrelid = s.oid
		WHERE  s.relkind = 'S'
		AND    n.nspname = $1
		ORDER  BY s.relname`, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to list sequences: %w", err)
	}
	defer rows.Close()

	var seqs []Sequence
	for rows.Next() {
		s := Sequence{Schema: schema}
		if err := rows.Scan(&s.Name, &s.Start, &s.Increment, &s.Min, &s.Max, &s.Cycle); err != nil {
			return nil, err
		}
		seqs = append(seqs, s)
	}
	return seqs, rows.Err()
}

// TableDefinition assembles the full Table object for one table: columns
// in attnum order plus PK, UNIQUE, and CHECK constraints.
func TableDefinition(ctx context.Context, q pgsetup.Querier, schema, table string) (Table, error) {
	t := Table{Schema: schema, Name: table}

	cols, err := tableColumns(ctx, q, schema, table)
	if err != nil {
		return t, err
	}
	t.Columns = cols

	pk, err := keyConstraints(ctx, q, schema, table, "p")
	if err != nil {
		return t, err
	}
	if len(pk) > 0 {
		t.PrimaryKey = &pk[0]
	}

	t.Uniques, err = keyConstraints(ctx, q, schema, table, "u")
	if err != nil {
		return t, err
	}

	t.Checks, err = checkConstraints(ctx, q, schema, table)
	if err != nil {
		return t, err
	}

	return t, nil
}

func tableColumns(ctx context.Context, q pgsetup.Querier, schema, table string) ([]Column, error) {
	rows, err := q.Query(ctx, `
		SELECT a.attname,
		       pg_catalog.format_type(a.atttypid, a.atttypmod),
		       a.attnotnull,
		       pg_get_expr(d.adbin, d.adrelid)
		FROM   pg_attribute a
		JOIN   pg_class c     ON c.oid = a.attrelid
		JOIN   pg_namespace n ON n.oid = c.relnamespace
		LEFT JOIN pg_attrdef d ON d.adrelid = a.attrelid AND d.adnum = a.attnum
		WHERE  n.nspname = $1
		AND    c.relname = $2
		AND    a.attnum  > 0
		AND    NOT a.attisdropped
		ORDER  BY a.attnum`, schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s.%s: %w", schema, table, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var col Column
		var def *string
		if err := rows.Scan(&col.Name, &col.Type, &col.NotNull, &def); err != nil {
			return nil, err
		}
		if def != nil {
			col.Default = *def
		}
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

// keyConstraints reads PRIMARY KEY (contype 'p') or UNIQUE (contype 'u')
// constraints, preserving the column order of composite keys.
func keyConstraints(ctx context.Context, q pgsetup.Querier, schema, table, contype string) ([]KeyConstraint, error) {
	rows, err := q.Query(ctx, `
		SELECT c.conname,
		       array_agg(a.attname ORDER BY x.n)
		FROM   pg_constraint c
		JOIN   pg_class t     ON t.oid = c.conrelid
		JOIN   pg_namespace s ON s.oid = t.relnamespace
		CROSS JOIN LATERAL unnest(c.conkey) WITH ORDINALITY AS x(attnum, n)
		JOIN   pg_attribute a ON a.attrelid = t.oid AND a.attnum = x.attnum
		WHERE  c.contype = $3
		AND    s.nspname = $1
		AND    t.relname = $2
		GROUP  BY c.conname
		ORDER  BY c.conname`, schema, table, contype)
	if err != nil {
		return nil, fmt.Errorf("failed to read constraints of %s.%s: %w", schema, table, err)
	}
	defer rows.Close()

	var keys []KeyConstraint
	for rows.Next() {
		var k KeyConstraint
		if err := rows.Scan(&k.Name, &k.Columns); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func checkConstraints(ctx context.Context, q pgsetup.Querier, schema, table string) ([]CheckConstraint, error) {
	rows, err := q.Query(ctx, `
		SELECT c.conname,
		       pg_get_constraintdef(c.oid)
		FROM   pg_constraint c
		JOIN   pg_class t     ON t.oid = c.conrelid
		JOIN   pg_namespace s ON s.oid = t.relnamespace
		WHERE  c.contype = 'c'
		AND    s.nspname = $1
		AND    t.relname = $2
		ORDER  BY c.conname`, schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read check constraints: %w", err)
	}
	defer rows.Close()

	var checks []CheckConstraint
	for rows.Next() {
		var ck CheckConstraint
		var def string
		if err := rows.Scan(&ck.Name, &def); err != nil {
			return nil, err
		}
		ck.Condition = stripCheckWrapper(def)
		checks = append(checks, ck)
	}
	return checks, rows.Err()
}

// stripCheckWrapper removes the "CHECK (...)" wrapper pg_get_constraintdef
// adds, since the table template re-wraps the condition.
func stripCheckWrapper(def string) string {
	trimmed := strings.TrimSpace(def)
	if len(trimmed) >= 6 && strings.EqualFold(trimmed[:6], "CHECK ") {
		trimmed = strings.TrimSpace(trimmed[6:])
		if strings.HasPrefix(trimmed, "(") && strings.HasSuffix(trimmed, ")") {
			trimmed = trimmed[1 : len(trimmed)-1]
		}
	}
	return trimmed
}

// ForeignKeys lists FK constraints for the given tables (nil = all tables
// in the schema).
func ForeignKeys(ctx context.Context, q pgsetup.Querier, schema string, tables []string) ([]ForeignKey, error) {
	rows, err := q.Query(ctx, `
		SELECT c.conname,
		       t.relname,
		       pg_get_constraintdef(c.oid)
		FROM   pg_constraint c
		JOIN   pg_class t     ON t.oid = c.conrelid
		JOIN   pg_namespace s ON s.oid = t.relnamespace
		WHERE  c.contype = 'f'
		AND    s.nspname = $1
		ORDER  BY t.relname, c.conname`, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to list foreign keys: %w", err)
	}
	defer rows.Close()

	keep := tableSet(tables)
	var fks []ForeignKey
	for rows.Next() {
		fk := ForeignKey{Schema: schema}
		if err := rows.Scan(&fk.Name, &fk.Table, &fk.Definition); err != nil {
			return nil, err
		}
		if keep != nil && !keep[fk.Table] {
			continue
		}
		fks = append(fks, fk)
	}
	return fks, rows.Err()
}

// Indexes lists non-constraint indexes for the given tables. Indexes backed
// by PRIMARY KEY or UNIQUE constraints are excluded since the table DDL
// already declares them.
func Indexes(ctx context.Context, q pgsetup.Querier, schema string, tables []string) ([]Index, error) {
	rows, err := q.Query(ctx, `
		SELECT i.tablename, i.indexname, i.indexdef
		FROM   pg_indexes i
		WHERE  i.schemaname = $1
		AND    i.indexname NOT IN (
		    SELECT c.conname
		    FROM   pg_constraint c
		    JOIN   pg_class t     ON t.oid = c.conrelid
		    JOIN   pg_namespace s ON s.oid = t.relnamespace
		    WHERE  s.nspname = $1
		    AND    c.contype IN ('p', 'u')
		)
		ORDER  BY i.tablename, i.indexname`, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to list indexes: %w", err)
	}
	defer rows.Close()

	keep := tableSet(tables)
	var idxs []Index
	for rows.Next() {
		var idx Index
		if err := rows.Scan(&idx.Table, &idx.Name, &idx.Definition); err != nil {
			return nil, err
		}
		if keep != nil && !keep[idx.Table] {
			continue
		}
		idxs = append(idxs, idx)
	}
	return idxs, rows.Err()
}

// Views lists view definitions in a schema.
func Views(ctx context.Context, q pgsetup.Querier, schema string) ([]View, error) {
	rows, err := q.Query(ctx, `
		SELECT viewname, definition
		FROM   pg_views
		WHERE  schemaname = $1
		ORDER  BY viewname`, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to list views: %w", err)
	}
	defer rows.Close()

	var views []View
	for rows.Next() {
		v := View{Schema: schema}
		if err := rows.Scan(&v.Name, &v.Definition); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

// Functions lists user-defined functions and procedures in a schema via
// pg_get_functiondef. Aggregates and window functions are skipped, as are
// functions owned by extensions.
func Functions(ctx context.Context, q pgsetup.Querier, schema string) ([]Function, error) {
	rows, err := q.Query(ctx, `
		SELECT p.proname,
		       pg_get_functiondef(p.oid)
		FROM   pg_proc p
		JOIN   pg_namespace n ON n.oid = p.pronamespace
		WHERE  n.nspname = $1
		AND    p.prokind IN ('f', 'p')
		AND    NOT EXISTS (
		    SELECT 1 FROM pg_depend d
		    WHERE  d.objid = p.oid AND d.deptype = 'e'
		)
		ORDER  BY p.proname`, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to list functions: %w", err)
	}
	defer rows.Close()

	var fns []Function
	for rows.Next() {
		f := Function{Schema: schema}
		if err := rows.Scan(&f.Name, &f.Definition); err != nil {
			return nil, err
		}
		fns = append(fns, f)
	}
	return fns, rows.Err()
}

// Triggers lists user triggers on the given tables via pg_get_triggerdef.
func Triggers(ctx context.Context, q pgsetup.Querier, schema string, tables []string) ([]Trigger, error) {
	rows, err := q.Query(ctx, `
		SELECT t.relname,
		       g.tgname,
		       pg_get_triggerdef(g.oid)
		FROM   pg_trigger g
		JOIN   pg_class t     ON t.oid = g.tgrelid
		JOIN   pg_namespace s ON s.oid = t.relnamespace
		WHERE  s.nspname = $1
		AND    NOT g.tgisinternal
		ORDER  BY t.relname, g.tgname`, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to list triggers: %w", err)
	}
	defer rows.Close()

	keep := tableSet(tables)
	var trgs []Trigger
	for rows.Next() {
		var tr Trigger
		if err := rows.Scan(&tr.Table, &tr.Name, &tr.Definition); err != nil {
			return nil, err
		}
		if keep != nil && !keep[tr.Table] {
			continue
		}
		trgs = append(trgs, tr)
	}
	return trgs, rows.Err()
}

// columnNames lists the live column names of a table in attnum order,
// used to build INSERT column lists for data dumps.
func columnNames(ctx context.Context, q pgsetup.Querier, schema, table string) ([]string, error) {
	rows, err := q.Query(ctx, `
		SELECT a.attname
		FROM   pg_attribute a
		JOIN   pg_class c     ON c.oid = a.attrelid
		JOIN   pg_namespace n ON n.oid = c.relnamespace
		WHERE  n.nspname = $1
		AND    c.relname = $2
		AND    a.attnum  > 0
		AND    NOT a.attisdropped
		ORDER  BY a.attnum`, schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read column names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func tableSet(tables []string) map[string]bool {
	if tables == nil {
		return nil
	}
	set := make(map[string]bool, len(tables))
	for _, t := range tables {
		set[t] = true
	}
	return set
}
