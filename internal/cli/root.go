// Package cli wires the commands, flags, and environment handling for the
// pgsetup binary.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hmkang/pgsetup/internal/logging"
	"github.com/hmkang/pgsetup/pkg/pgsetup"
)

var rootCmd = &cobra.Command{
	Use:   "pgsetup",
	Short: "PostgreSQL field provisioning tool",
	Long: `pgsetup provisions PostgreSQL databases on delivery sites: it decodes
SQL scripts saved in legacy encodings, splits them into statements, executes
them per-statement or in a single transaction, verifies the result, and dumps
schemas back out as portable SQL.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or parameters
  11 - Database connection failed
  12 - SQL script could not be split into statements
  13 - SQL execution failed`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	// Registering --help without a shorthand frees -h for --host,
	// matching psql.
	rootCmd.PersistentFlags().Bool("help", false, "Help for pgsetup")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", pgsetup.ErrUsage, err)
	})
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}

func newLogger(cmd *cobra.Command) pgsetup.Logger {
	return logging.NewConsoleLogger(getVerboseFlag(cmd))
}
