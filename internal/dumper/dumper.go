package dumper

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hmkang/pgsetup/internal/logging"
	"github.com/hmkang/pgsetup/pkg/pgsetup"
)

// Options controls what a dump covers.
type Options struct {
	// Schema is the target schema. Ignored when AllSchemas is set.
	Schema string

	// Tables restricts the dump to the named tables. nil dumps every
	// table in the schema.
	Tables []string

	// AllSchemas dumps every user schema, public first.
	AllSchemas bool

	// IncludeData emits INSERT statements after the DDL.
	IncludeData bool

	// BatchSize is the number of data rows flushed per write.
	// Zero means pgsetup.DefaultDataBatchSize.
	BatchSize int

	Logger pgsetup.Logger
}

func (o Options) batchSize() int {
	if o.BatchSize > 0 {
		return o.BatchSize
	}
	return pgsetup.DefaultDataBatchSize
}

func (o Options) logger() pgsetup.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return logging.NewNullLogger()
}

// Dump writes a SQL dump to w. Objects are emitted in dependency order so
// the output replays cleanly on an empty database: extensions, enum types,
// sequences, tables, foreign keys, indexes, functions, views, triggers,
// then data. Output is always UTF-8.
func Dump(ctx context.Context, q pgsetup.Querier, opts Options, w io.Writer) error {
	log := opts.logger()
	bw := bufio.NewWriter(w)

	schemas := []string{opts.Schema}
	if opts.AllSchemas {
		var err error
		schemas, err = UserSchemas(ctx, q)
		if err != nil {
			return err
		}
		log.Info("dumping %d schema(s): %s", len(schemas), strings.Join(schemas, ", "))
	} else if opts.Schema == "" {
		schemas = []string{"public"}
	}

	fmt.Fprintf(bw, "-- PostgreSQL dump\n-- Generated: %s\n-- Schemas: %s\n\n",
		time.Now().Format("2006-01-02 15:04:05"), strings.Join(schemas, ", "))

	// Extensions are database-level, emitted once.
	exts, err := Extensions(ctx, q)
	if err != nil {
		return err
	}
	if len(exts) > 0 {
		bw.WriteString(sectionHeader("EXTENSIONS"))
		bw.WriteByte('\n')
		for _, ext := range exts {
			fmt.Fprintln(bw, ext.SQL())
		}
		bw.WriteByte('\n')
	}

	for _, schema := range schemas {
		if err := dumpSchema(ctx, q, opts, schema, bw); err != nil {
			return err
		}
	}

	return bw.Flush()
}

func dumpSchema(ctx context.Context, q pgsetup.Querier, opts Options, schema string, bw *bufio.Writer) error {
	log := opts.logger()

	tables := opts.Tables
	if tables == nil || opts.AllSchemas {
		var err error
		tables, err = SchemaTables(ctx, q, schema)
		if err != nil {
			return err
		}
	}
	log.Info("[%s] %d table(s) selected", schema, len(tables))

	if opts.AllSchemas {
		fmt.Fprintf(bw, "-- ###########################################################\n")
		fmt.Fprintf(bw, "-- SCHEMA: %s\n", schema)
		fmt.Fprintf(bw, "-- ###########################################################\n\n")
		// public exists on every database; everything else needs creating.
		if schema != "public" {
			fmt.Fprintf(bw, "CREATE SCHEMA IF NOT EXISTS %q;\n\n", schema)
		}
	}

	enums, err := EnumTypes(ctx, q, schema)
	if err != nil {
		return err
	}
	writeSection(bw, "ENUM TYPES", objectSQL(enums))

	seqs, err := Sequences(ctx, q, schema)
	if err != nil {
		return err
	}
	writeSection(bw, "SEQUENCES", objectSQL(seqs))

	for _, name := range tables {
		log.Verbose("dumping table %s.%s", schema, name)
		table, err := TableDefinition(ctx, q, schema, name)
		if err != nil {
			return err
		}
		fmt.Fprintln(bw, table.SQL())
		bw.WriteByte('\n')
	}

	fks, err := ForeignKeys(ctx, q, schema, tables)
	if err != nil {
		return err
	}
	writeSection(bw, "FOREIGN KEYS", objectSQL(fks))

	idxs, err := Indexes(ctx, q, schema, tables)
	if err != nil {
		return err
	}
	writeSection(bw, "INDEXES", objectSQL(idxs))

	// Functions come before views: a view body may call one.
	fns, err := Functions(ctx, q, schema)
	if err != nil {
		return err
	}
	writeSection(bw, "FUNCTIONS", objectSQL(fns))

	views, err := Views(ctx, q, schema)
	if err != nil {
		return err
	}
	writeSection(bw, "VIEWS", objectSQL(views))

	trgs, err := Triggers(ctx, q, schema, tables)
	if err != nil {
		return err
	}
	writeSection(bw, "TRIGGERS", objectSQL(trgs))

	if opts.IncludeData {
		bw.WriteString(sectionHeader("DATA"))
		bw.WriteByte('\n')
		for _, name := range tables {
			count, err := dumpData(ctx, q, opts, schema, name, bw)
			if err != nil {
				return err
			}
			log.Ok("%s.%s: %d row(s)", schema, name, count)
		}
	}

	return nil
}

// dumpData streams table rows as INSERT statements, flushing every
// batchSize rows so arbitrarily large tables stay out of memory.
func dumpData(ctx context.Context, q pgsetup.Querier, opts Options, schema, table string, bw *bufio.Writer) (int64, error) {
	columns, err := columnNames(ctx, q, schema, table)
	if err != nil {
		return 0, err
	}
	if len(columns) == 0 {
		return 0, nil
	}

	rows, err := q.Query(ctx, fmt.Sprintf("SELECT * FROM %q.%q", schema, table))
	if err != nil {
		return 0, fmt.Errorf("failed to read data from %s.%s: %w", schema, table, err)
	}
	defer rows.Close()

	var count int64
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return count, err
		}
		fmt.Fprintln(bw, insertStatement(schema, table, columns, values))
		count++
		if count%int64(opts.batchSize()) == 0 {
			if err := bw.Flush(); err != nil {
				return count, err
			}
		}
	}
	if count > 0 {
		bw.WriteByte('\n')
	}
	return count, rows.Err()
}

func objectSQL[T Object](objects []T) []string {
	out := make([]string, len(objects))
	for i, obj := range objects {
		out[i] = obj.SQL()
	}
	return out
}

func writeSection(bw *bufio.Writer, title string, statements []string) {
	if len(statements) == 0 {
		return
	}
	bw.WriteString(sectionHeader(title))
	bw.WriteByte('\n')
	for _, stmt := range statements {
		bw.WriteString(stmt)
		bw.WriteString("\n")
	}
	bw.WriteByte('\n')
}
