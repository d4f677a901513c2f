// Package dumper reconstructs database DDL from the system catalogs and
// emits it as executable SQL. It deliberately avoids the pg_dump binary:
// target hosts often ship without client tools, and everything needed for
// DDL reconstruction is reachable over the existing connection.
package dumper

import (
	"fmt"
	"strings"
)

// Object is a schema object ready for emission. The set of implementations
// is closed: every variant knows how to render itself, so emission never
// dispatches on a kind string.
type Object interface {
	// SQL renders the object as one or more complete SQL statements.
	SQL() string

	isObject()
}

// Extension is an installed extension. plpgsql is built in and never dumped.
type Extension struct {
	Name string
}

func (e Extension) isObject() {}

func (e Extension) SQL() string {
	return fmt.Sprintf("CREATE EXTENSION IF NOT EXISTS %q;", e.Name)
}

// EnumType is a user-defined enum with its labels in sort order.
type EnumType struct {
	Schema string
	Name   string
	Labels []string
}

func (e EnumType) isObject() {}

func (e EnumType) SQL() string {
	quoted := make([]string, len(e.Labels))
	for i, label := range e.Labels {
		quoted[i] = quoteText(label)
	}
	return fmt.Sprintf("CREATE TYPE %q.%q AS ENUM (%s);",
		e.Schema, e.Name, strings.Join(quoted, ", "))
}

// Sequence carries the settings needed to recreate a sequence.
type Sequence struct {
	Schema    string
	Name      string
	Start     int64
	Increment int64
	Min       int64
	Max       int64
	Cycle     bool
}

func (s Sequence) isObject() {}

func (s Sequence) SQL() string {
	cycle := "NO CYCLE"
	if s.Cycle {
		cycle = "CYCLE"
	}
	return fmt.Sprintf(
		"CREATE SEQUENCE IF NOT EXISTS %q.%q START %d INCREMENT %d MINVALUE %d MAXVALUE %d %s;",
		s.Schema, s.Name, s.Start, s.Increment, s.Min, s.Max, cycle)
}

// Column is one column definition inside a Table.
type Column struct {
	Name    string
	Type    string
	NotNull bool
	Default string // empty when the column has no default
}

func (c Column) definition() string {
	parts := []string{fmt.Sprintf("%q", c.Name), c.Type}
	if c.Default != "" {
		parts = append(parts, "DEFAULT "+c.Default)
	}
	if c.NotNull {
		parts = append(parts, "NOT NULL")
	}
	return strings.Join(parts, " ")
}

// KeyConstraint is a PRIMARY KEY or UNIQUE constraint over named columns.
type KeyConstraint struct {
	Name    string
	Columns []string
}

// CheckConstraint is a CHECK constraint with its bare condition expression.
type CheckConstraint struct {
	Name      string
	Condition string
}

// Table renders as CREATE TABLE with columns and PK/UNIQUE/CHECK constraints
// inline. Foreign keys are emitted separately after all tables exist, so
// reference cycles between tables cannot break the dump.
type Table struct {
	Schema     string
	Name       string
	Columns    []Column
	PrimaryKey *KeyConstraint
	Uniques    []KeyConstraint
	Checks     []CheckConstraint
}

func (t Table) isObject() {}

func (t Table) SQL() string {
	var defs []string
	for _, col := range t.Columns {
		defs = append(defs, "    "+col.definition())
	}
	if t.PrimaryKey != nil {
		defs = append(defs, fmt.Sprintf("    CONSTRAINT %q PRIMARY KEY (%s)",
			t.PrimaryKey.Name, quoteIdents(t.PrimaryKey.Columns)))
	}
	for _, uq := range t.Uniques {
		defs = append(defs, fmt.Sprintf("    CONSTRAINT %q UNIQUE (%s)",
			uq.Name, quoteIdents(uq.Columns)))
	}
	for _, ck := range t.Checks {
		defs = append(defs, fmt.Sprintf("    CONSTRAINT %q CHECK (%s)", ck.Name, ck.Condition))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "-- Table: %s.%s\n", t.Schema, t.Name)
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %q.%q (\n", t.Schema, t.Name)
	b.WriteString(strings.Join(defs, ",\n"))
	b.WriteString("\n);")
	return b.String()
}

// ForeignKey is emitted as ALTER TABLE ADD CONSTRAINT after table creation.
// Definition is the full pg_get_constraintdef output.
type ForeignKey struct {
	Schema     string
	Table      string
	Name       string
	Definition string
}

func (f ForeignKey) isObject() {}

func (f ForeignKey) SQL() string {
	return fmt.Sprintf("ALTER TABLE %q.%q ADD CONSTRAINT %q %s;",
		f.Schema, f.Table, f.Name, f.Definition)
}

// Index is a non-constraint index. Definition is the full CREATE INDEX
// statement from pg_indexes; constraint-backed indexes are filtered out
// at query time since the table already declares them.
type Index struct {
	Table      string
	Name       string
	Definition string
}

func (i Index) isObject() {}

func (i Index) SQL() string {
	return strings.TrimSuffix(i.Definition, ";") + ";"
}

// View renders as CREATE OR REPLACE VIEW with the stored definition.
type View struct {
	Schema     string
	Name       string
	Definition string
}

func (v View) isObject() {}

func (v View) SQL() string {
	return fmt.Sprintf("CREATE OR REPLACE VIEW %q.%q AS\n%s;",
		v.Schema, v.Name, strings.TrimRight(strings.TrimSpace(v.Definition), ";"))
}

// Function carries the complete pg_get_functiondef output. The body is
// dollar-quoted by the server, so the emitted text re-splits into exactly
// one statement.
type Function struct {
	Schema     string
	Name       string
	Definition string
}

func (f Function) isObject() {}

func (f Function) SQL() string {
	return strings.TrimSuffix(strings.TrimSpace(f.Definition), ";") + ";"
}

// Trigger carries the complete pg_get_triggerdef output.
type Trigger struct {
	Table      string
	Name       string
	Definition string
}

func (t Trigger) isObject() {}

func (t Trigger) SQL() string {
	return strings.TrimSuffix(strings.TrimSpace(t.Definition), ";") + ";"
}

func quoteIdents(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return strings.Join(quoted, ", ")
}
