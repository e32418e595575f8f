package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/mahasiswa/internal/config"
	"github.com/roach88/mahasiswa/internal/failure"
	"github.com/roach88/mahasiswa/internal/logging"
	"github.com/roach88/mahasiswa/internal/metrics"
)

// RootOptions holds global flags for all commands, plus the collaborators
// built from them before any subcommand runs.
type RootOptions struct {
	Verbose     bool
	Format      string // "json" | "text"
	ConfigPath  string
	Database    string
	Driver      string
	MetricsFile string

	// LogWriter receives structured logs. Defaults to the command's stderr.
	LogWriter io.Writer

	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the mahasiswa CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "mahasiswa",
		Short: "Student record store with CSV and paged document export",
		Long: `Manage student records (nama, npm, kelas) in a local SQLite file and
export them as CSV or as a paginated HTML document.

Settings come from an optional YAML file (--config), MAHASISWA_* environment
variables and the flags below, in increasing order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.finish()
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "SQLite driver: sqlite3 or sqlite (default from config)")
	cmd.PersistentFlags().StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus metrics to this file after the command")

	// Add subcommands
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewUpdateCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}

// setup validates global flags and builds config, logger and metrics.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	if o.Database != "" {
		cfg.Database.Path = o.Database
	}
	if o.Driver != "" {
		cfg.Database.Driver = o.Driver
	}
	if o.MetricsFile != "" {
		cfg.Metrics.Textfile = o.MetricsFile
	}
	if err := config.Validate(cfg); err != nil {
		return invalidFlags(err)
	}
	o.Config = cfg

	level := cfg.Logging.Level
	if o.Verbose {
		level = "debug"
	}
	w := o.LogWriter
	if w == nil {
		w = cmd.ErrOrStderr()
	}
	o.Logger = logging.New(level, cfg.Logging.Format, w)
	o.Metrics = metrics.New(metrics.Config{Namespace: cfg.Metrics.Namespace}, nil)

	o.Logger.Debug("configuration loaded",
		"db", cfg.Database.Path,
		"driver", cfg.Database.Driver,
		"table", cfg.Database.Table,
	)
	return nil
}

// finish dumps metrics when a textfile is configured.
func (o *RootOptions) finish() error {
	if o.Config == nil || o.Config.Metrics.Textfile == "" {
		return nil
	}
	if err := o.Metrics.WriteTextfile(o.Config.Metrics.Textfile); err != nil {
		return WrapExitError(ExitCommandError, "failed to write metrics file", err)
	}
	return nil
}

// invalidFlags reports flag overrides that left the configuration invalid.
func invalidFlags(err error) *ExitError {
	return WrapExitError(ExitCommandError, "invalid flags",
		failure.Wrap(failure.KindConfigError, "flags", "flag override failed validation", err))
}

// formatter builds an OutputFormatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
