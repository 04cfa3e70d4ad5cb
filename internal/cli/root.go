package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/elementq/internal/config"
)

// RootOptions holds global flags for all commands. Empty values fall back
// to the config file.
type RootOptions struct {
	ConfigPath string
	Database   string
	Driver     string
	Format     string // "json" | "text"
	Verbose    bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the elementq CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "elementq",
		Short: "elementq - deferred element queries",
		Long: `Build and run element queries against an asset library.

Criteria are given as name=value pairs and compiled into one parameterized
SQL statement. Nothing touches the database until a result is requested.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Format != "" && !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default $"+config.EnvVar+", ./elementq.yaml, ~/.config/elementq/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "SQLite driver: sqlite3 (cgo) or sqlite (pure Go)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output and debug logging")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "", "output format (json|text, default from config)")

	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewExplainCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewFieldGroupCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))

	return cmd
}

// Settings loads the config file and applies flag overrides.
func (o *RootOptions) Settings() (config.Config, error) {
	path, err := config.Find(o.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	if o.Database != "" {
		cfg.Database.Path = o.Database
	}
	if o.Driver != "" {
		cfg.Database.Driver = o.Driver
	}
	if o.Format != "" {
		cfg.Output.Format = o.Format
	}
	if o.Verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, cfg.Validate()
}

// session is the per-invocation state shared by commands.
type session struct {
	cfg    config.Config
	out    *OutputFormatter
	logger *slog.Logger
}

func newSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	cfg, err := opts.Settings()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: cfg.LogLevel(),
	}))

	return &session{
		cfg: cfg,
		out: &OutputFormatter{
			Format:    cfg.Output.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
			Verbose:   opts.Verbose,
		},
		logger: logger,
	}, nil
}

// fail reports err through the formatter and returns it with an exit code.
func (s *session) fail(exit int, message string, err error) error {
	_ = s.out.Error(ErrorCode(err), fmt.Sprintf("%s: %v", message, err), nil)
	return WrapExitError(exit, message, err)
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
