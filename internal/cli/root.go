// Package cli wires configuration, the mail stores and the batch runner into
// the positions command line.
package cli

import (
	"errors"
	"io/fs"

	"position-report-extractor/internal/config"
	"position-report-extractor/internal/extract"
	"position-report-extractor/internal/logging"
	"position-report-extractor/internal/models"

	"github.com/spf13/cobra"
)

const defaultConfig = "config.yaml"

type options struct {
	configPath string
	logLevel   string
	brokers    []string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "positions",
		Short: "Extract vessel position lists from broker emails",
		Long: `positions mirrors broker folders from an IMAP mailbox into an .eml
archive and turns the position lists found in those emails into one
spreadsheet per broker.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfig, "configuration file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level, overrides run.logLevel")
	root.PersistentFlags().StringSliceVar(&opts.brokers, "broker", nil, "only process these brokers (repeatable)")

	root.AddCommand(extractCmd(opts))
	root.AddCommand(fetchCmd(opts))
	root.AddCommand(brokersCmd(opts))
	return root
}

// Execute runs the command line.
func Execute() error {
	return NewRootCmd().Execute()
}

// load reads the configuration and applies the log level. A missing default
// file falls back to the built-in configuration, a missing explicit one is an
// error.
func (o *options) load(cmd *cobra.Command) (*models.Config, error) {
	cfg, err := config.Load(o.configPath)
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		logging.Log.Infof("No %s found, using built-in configuration", o.configPath)
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return nil, err
	}

	level := cfg.Run.LogLevel
	if o.logLevel != "" {
		level = o.logLevel
	}
	if err := logging.SetLevel(level); err != nil {
		return nil, err
	}
	return cfg, nil
}

// sources compiles the configured brokers, restricted by --broker.
func (o *options) sources(cfg *models.Config) ([]*extract.Source, error) {
	all, err := config.Sources(cfg)
	if err != nil {
		return nil, err
	}
	return config.Select(all, o.brokers)
}
