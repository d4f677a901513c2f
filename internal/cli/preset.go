package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hmkang/pgsetup/internal/preset"
	"github.com/hmkang/pgsetup/internal/tui"
	"github.com/hmkang/pgsetup/pkg/pgsetup"
)

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Manage saved connection presets",
	Long: `Presets store connection details (including the password, in plain
text) in presets.json next to the pgsetup executable. They are meant for
isolated delivery networks where the file never leaves the operator machine.

Use a preset with any command via --preset <name>.`,
}

var presetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := preset.DefaultStore()
		presets, err := store.LoadAll()
		if err != nil {
			return err
		}
		if len(presets) == 0 {
			fmt.Printf("no presets saved (%s)\n", store.Path())
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tHOST\tPORT\tUSER\tDATABASE")
		for _, p := range presets {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
				p.DisplayName(), p.Host, p.Port, p.Username, p.Database)
		}
		return w.Flush()
	},
}

type presetSaveFlagValues struct {
	host     string
	port     int
	username string
	password string
	database string
}

var presetSaveFlags presetSaveFlagValues

var presetSaveCmd = &cobra.Command{
	Use:   "save [name]",
	Short: "Save a connection preset",
	Long: `Save stores a preset under the given name, overwriting any existing
preset with that name. Without flags, an interactive form is shown.

Examples:
  # Interactive entry
  pgsetup preset save

  # Non-interactive entry (password from $PGPASSWORD)
  pgsetup preset save prod -h 10.0.0.1 -U admin -d mydb`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPresetSave,
}

var presetDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)
		if err := preset.DefaultStore().Delete(args[0]); err != nil {
			return err
		}
		logger.Ok("preset %q deleted", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(presetCmd)
	presetCmd.AddCommand(presetListCmd)
	presetCmd.AddCommand(presetSaveCmd)
	presetCmd.AddCommand(presetDeleteCmd)

	presetSaveCmd.Flags().StringVarP(&presetSaveFlags.host, "host", "h", "",
		"PostgreSQL server host")
	presetSaveCmd.Flags().IntVarP(&presetSaveFlags.port, "port", "p", 0,
		"PostgreSQL server port")
	presetSaveCmd.Flags().StringVarP(&presetSaveFlags.username, "username", "U", "",
		"PostgreSQL user")
	presetSaveCmd.Flags().StringVarP(&presetSaveFlags.database, "database", "d", "",
		"Database name")
}

func runPresetSave(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)
	store := preset.DefaultStore()

	var p preset.Preset
	if len(args) > 0 {
		p.Name = args[0]
	}

	flagsGiven := presetSaveFlags.host != "" || presetSaveFlags.port != 0 ||
		presetSaveFlags.username != "" || presetSaveFlags.database != ""

	if flagsGiven || !tui.IsInteractive() {
		if p.Name == "" {
			return fmt.Errorf("%w: preset name is required in non-interactive mode", pgsetup.ErrInvalidConfig)
		}
		p.Host = orDefault(presetSaveFlags.host, pgsetup.DefaultHost)
		p.Port = presetSaveFlags.port
		if p.Port == 0 {
			p.Port = pgsetup.DefaultPort
		}
		p.Username = orDefault(presetSaveFlags.username, pgsetup.DefaultUser)
		p.Database = orDefault(presetSaveFlags.database, pgsetup.DefaultDatabase)
		p.Password = os.Getenv("PGPASSWORD")
	} else {
		// Pre-fill the form when editing an existing preset.
		if p.Name != "" {
			if existing, err := store.Get(p.Name); err == nil {
				p = existing
			}
		}
		result, err := tui.RunPresetForm(p)
		if err != nil {
			return err
		}
		if result.Cancelled {
			logger.Info("cancelled")
			return nil
		}
		p = result.Preset
	}

	if err := store.Save(p); err != nil {
		return err
	}
	logger.Ok("preset %q saved to %s", p.Name, store.Path())
	return nil
}

func orDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
