package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hmkang/pgsetup/internal/config"
	"github.com/hmkang/pgsetup/internal/db"
	"github.com/hmkang/pgsetup/pkg/pgsetup"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Test a database connection",
	Long: `Ping connects, runs a round trip, and reports the server version.
Useful for checking credentials and network reachability before a run.`,
	Args: cobra.NoArgs,
	RunE: runPing,
}

var pingFlags connFlagValues

func init() {
	rootCmd.AddCommand(pingCmd)
	registerConnectionFlags(pingCmd, &pingFlags)
}

func runPing(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)

	projectCfg, err := config.LoadOrDefault(".")
	if err != nil {
		return fmt.Errorf("%w: %v", pgsetup.ErrInvalidConfig, err)
	}

	connCfg, err := resolveConnection(&pingFlags, projectCfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	pool, err := db.NewConnector(connCfg, logger).Connect(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", pgsetup.ErrConnectionFailed, err)
	}
	defer pool.Close()

	version, err := db.ServerVersion(ctx, pool)
	if err != nil {
		return err
	}

	logger.Ok("connected to %s:%d/%s as %s (server %s, %s)",
		connCfg.Host, connCfg.Port, connCfg.Database, connCfg.Username,
		version, time.Since(start).Round(time.Millisecond))
	return nil
}
