package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hmkang/pgsetup/internal/config"
	"github.com/hmkang/pgsetup/internal/db"
	"github.com/hmkang/pgsetup/internal/dumper"
	"github.com/hmkang/pgsetup/pkg/pgsetup"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump database schema (and optionally data) as SQL",
	Long: `Dump reconstructs DDL from the system catalogs and writes it as a SQL
script that replays cleanly on an empty database. It does not require the
pg_dump binary.

Objects are emitted in dependency order: extensions, enum types, sequences,
tables, foreign keys, indexes, functions, views, triggers, then data.
Output is always UTF-8.

Examples:
  # Dump the public schema's DDL to a file
  pgsetup dump -d mydb -o schema.sql

  # Dump schema and data for two tables
  pgsetup dump -d mydb --table users --table orders --data -o backup.sql

  # Dump every user schema
  pgsetup dump -d mydb --all-schemas --data -o full.sql`,
	Args: cobra.NoArgs,
	RunE: runDump,
}

type dumpFlagValues struct {
	conn       connFlagValues
	output     string
	schema     string
	tables     []string
	allSchemas bool
	data       bool
}

var dumpFlags dumpFlagValues

func init() {
	rootCmd.AddCommand(dumpCmd)
	registerConnectionFlags(dumpCmd, &dumpFlags.conn)

	dumpCmd.Flags().StringVarP(&dumpFlags.output, "output", "o", "",
		"Output file (default: stdout)")
	dumpCmd.Flags().StringVar(&dumpFlags.schema, "schema", "public",
		"Schema to dump")
	dumpCmd.Flags().StringSliceVar(&dumpFlags.tables, "table", nil,
		"Restrict the dump to the named table (can be specified multiple times)")
	dumpCmd.Flags().BoolVar(&dumpFlags.allSchemas, "all-schemas", false,
		"Dump every user schema, public first")
	dumpCmd.Flags().BoolVar(&dumpFlags.data, "data", false,
		"Include table data as INSERT statements")
}

func runDump(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)

	projectCfg, err := config.LoadOrDefault(".")
	if err != nil {
		return fmt.Errorf("%w: %v", pgsetup.ErrInvalidConfig, err)
	}

	connCfg, err := resolveConnection(&dumpFlags.conn, projectCfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewConnector(connCfg, logger).Connect(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", pgsetup.ErrConnectionFailed, err)
	}
	defer pool.Close()

	out := os.Stdout
	if dumpFlags.output != "" {
		f, err := os.Create(dumpFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	opts := dumper.Options{
		Schema:      dumpFlags.schema,
		Tables:      dumpFlags.tables,
		AllSchemas:  dumpFlags.allSchemas,
		IncludeData: dumpFlags.data,
		BatchSize:   projectCfg.DumpBatchSize,
		Logger:      logger,
	}

	if err := dumper.Dump(ctx, pool, opts, out); err != nil {
		return fmt.Errorf("dump failed: %w", err)
	}

	if dumpFlags.output != "" {
		logger.Ok("dump written to %s", dumpFlags.output)
	}
	return nil
}
