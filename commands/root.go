package commands

import (
	"fmt"

	"fintrack/config"
	"fintrack/database"

	"github.com/spf13/cobra"
)

// Version of the finance tracker
const Version = "1.0.0"

type rootOptions struct {
	configFile string
	cfg        *config.Config
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "fintrack",
		Short:   "Personal finance tracker",
		Version: Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(opts.configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			opts.cfg = cfg
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "external config file (optional)")

	rootCmd.AddCommand(newServeCommand(opts))
	rootCmd.AddCommand(newReportCommand(opts))
	rootCmd.AddCommand(newExportCommand(opts))

	return rootCmd
}

// openStore opens the configured database file.
func (o *rootOptions) openStore() (*database.Store, error) {
	store, err := database.Open(o.cfg.Database.Path, database.WithLogMode(o.cfg.Database.LogMode))
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", o.cfg.Database.Path, err)
	}
	return store, nil
}
