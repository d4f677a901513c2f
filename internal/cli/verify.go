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
	"github.com/hmkang/pgsetup/internal/verify"
	"github.com/hmkang/pgsetup/pkg/pgsetup"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a provisioned database",
	Long: `Verify counts the tables, sequences, indexes, and views of a schema and
runs a row count for every table. A table whose count query fails is reported
and the sweep continues.

Examples:
  # Verify the public schema
  pgsetup verify -d mydb

  # Verify every user schema and save the report
  pgsetup verify -d mydb --all-schemas -o report.txt`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

type verifyFlagValues struct {
	conn       connFlagValues
	schema     string
	allSchemas bool
	output     string
}

var verifyFlags verifyFlagValues

func init() {
	rootCmd.AddCommand(verifyCmd)
	registerConnectionFlags(verifyCmd, &verifyFlags.conn)

	verifyCmd.Flags().StringVar(&verifyFlags.schema, "schema", "public",
		"Schema to verify")
	verifyCmd.Flags().BoolVar(&verifyFlags.allSchemas, "all-schemas", false,
		"Verify every user schema")
	verifyCmd.Flags().StringVarP(&verifyFlags.output, "output", "o", "",
		"Write the plain-text report to a file (default: stdout)")
}

func runVerify(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)

	projectCfg, err := config.LoadOrDefault(".")
	if err != nil {
		return fmt.Errorf("%w: %v", pgsetup.ErrInvalidConfig, err)
	}

	connCfg, err := resolveConnection(&verifyFlags.conn, projectCfg)
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

	schemas := []string{verifyFlags.schema}
	if verifyFlags.allSchemas {
		schemas, err = dumper.UserSchemas(ctx, pool)
		if err != nil {
			return err
		}
	}

	var results []*verify.Result
	failed := false
	for _, schema := range schemas {
		result, err := verify.Schema(ctx, pool, schema, logger)
		if err != nil {
			return err
		}
		if !result.Ok() {
			failed = true
		}
		results = append(results, result)
	}

	out := os.Stdout
	if verifyFlags.output != "" {
		f, err := os.Create(verifyFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		out = f
	}
	if err := verify.WriteReport(out, results); err != nil {
		return err
	}
	if verifyFlags.output != "" {
		logger.Ok("report written to %s", verifyFlags.output)
	}

	if failed {
		return fmt.Errorf("verification found errors")
	}
	return nil
}
