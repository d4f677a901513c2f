package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hmkang/pgsetup/internal/config"
	"github.com/hmkang/pgsetup/internal/db"
	"github.com/hmkang/pgsetup/pkg/pgsetup"
)

var databasesCmd = &cobra.Command{
	Use:   "databases",
	Short: "List databases on the server",
	Long: `Databases connects to the maintenance database and lists every
non-template database on the server.`,
	Args: cobra.NoArgs,
	RunE: runDatabases,
}

var databasesFlags connFlagValues

func init() {
	rootCmd.AddCommand(databasesCmd)
	registerConnectionFlags(databasesCmd, &databasesFlags)
}

func runDatabases(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)

	projectCfg, err := config.LoadOrDefault(".")
	if err != nil {
		return fmt.Errorf("%w: %v", pgsetup.ErrInvalidConfig, err)
	}

	connCfg, err := resolveConnection(&databasesFlags, projectCfg)
	if err != nil {
		return err
	}
	// Server-level listing goes through the maintenance DB unless the
	// user pointed at a specific one.
	if databasesFlags.database == "" {
		connCfg.Database = pgsetup.DefaultMaintenanceDB
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewConnector(connCfg, logger).Connect(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", pgsetup.ErrConnectionFailed, err)
	}
	defer pool.Close()

	names, err := db.ListDatabases(ctx, pool)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}
