package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/jobtrack/internal/config"
	"github.com/roach88/jobtrack/internal/logging"
	"github.com/roach88/jobtrack/internal/store"
)

// Clock supplies the current time. Used for defaults such as today's date.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// TraceIDGenerator produces one id per invocation.
type TraceIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 trace ids.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// RootOptions holds global flags for all commands, plus the state resolved
// once per invocation and shared by every subcommand.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	Database   string
	ConfigFile string

	// Clock and TraceIDs default to the system clock and UUIDv7 ids.
	Clock    Clock
	TraceIDs TraceIDGenerator

	// LogOutput receives diagnostic logs. Defaults to the command's stderr.
	LogOutput io.Writer

	Config  config.Config
	Logger  *zap.Logger
	Stores  *store.Stores
	TraceID string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the jobtrack CLI.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWithOptions(&RootOptions{})
}

// NewRootCommandWithOptions creates the root command around opts, so
// callers can inject a clock or trace id generator. Call opts.Close after
// the command has run.
func NewRootCommandWithOptions(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobtrack",
		Short: "jobtrack - track job applications",
		Long: `Track job applications, the companies they were filed with and the tags
that classify them, in a local SQLite database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", config.DefaultFormat, "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", config.DefaultDBPath, "path to SQLite database")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default: ./jobtrack.yaml or ~/.config/jobtrack/jobtrack.yaml)")

	// Add subcommands
	cmd.AddCommand(NewDBCommand(opts))
	cmd.AddCommand(NewCompanyCommand(opts))
	cmd.AddCommand(NewJobCommand(opts))
	cmd.AddCommand(NewTagCommand(opts))

	return cmd
}

// setup resolves configuration, builds the logger and opens the database.
// The schema is created if it does not exist yet.
func (opts *RootOptions) setup(cmd *cobra.Command) error {
	if opts.Clock == nil {
		opts.Clock = systemClock{}
	}
	if opts.TraceIDs == nil {
		opts.TraceIDs = UUIDv7Generator{}
	}
	opts.TraceID = opts.TraceIDs.Generate()

	// Errors before the config is known are reported in the format the
	// flag asked for, if it is a valid one.
	if !isValidFormat(opts.Format) {
		return opts.formatter(cmd).Fail(&UsageError{
			Message: fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats),
		})
	}

	cfg, err := config.Load(cmd.Root().PersistentFlags(), opts.ConfigFile)
	if err != nil {
		return opts.formatter(cmd).Fail(&configError{err: err})
	}
	opts.Config = cfg
	opts.Format = cfg.Format
	opts.Database = cfg.DBPath

	level := cfg.LogLevel
	if opts.Verbose {
		level = "debug"
	}
	logOut := opts.LogOutput
	if logOut == nil {
		logOut = cmd.ErrOrStderr()
	}
	opts.Logger = logging.New(level, logOut).With(zap.String("trace_id", opts.TraceID))
	opts.Logger.Debug("command started",
		zap.String("command", cmd.CommandPath()),
		zap.String("db", cfg.DBPath),
		zap.String("config_file", cfg.File),
	)

	db, err := store.Open(cfg.DBPath, store.WithLogger(opts.Logger))
	if err != nil {
		return opts.formatter(cmd).Fail(&store.StorageError{Op: "open " + cfg.DBPath, Err: err})
	}
	opts.Stores = store.NewStores(db)

	if err := opts.Stores.CreateTables(cmd.Context()); err != nil {
		return opts.formatter(cmd).Fail(err)
	}
	return nil
}

// formatter builds the output formatter for cmd.
func (opts *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	format := opts.Format
	if !isValidFormat(format) {
		format = "text"
	}
	return &OutputFormatter{
		Format:    format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
		TraceID:   opts.TraceID,
	}
}

// Close releases the database and flushes the logger.
func (opts *RootOptions) Close() error {
	if opts.Logger != nil {
		_ = opts.Logger.Sync()
	}
	if opts.Stores == nil {
		return nil
	}
	err := opts.Stores.DB.Close()
	opts.Stores = nil
	return err
}

// Execute runs the CLI with args and returns the process exit code.
// Errors that were not already written by a command are printed to stderr.
func Execute(args []string, stdout, stderr io.Writer) int {
	return ExecuteWithOptions(&RootOptions{}, args, stdout, stderr)
}

// ExecuteWithOptions is Execute around caller-supplied options. The
// database is closed before it returns.
func ExecuteWithOptions(opts *RootOptions, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommandWithOptions(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if cerr := opts.Close(); cerr != nil && err == nil {
		err = WrapExitError(ExitCommandError, "failed to close database", cerr)
	}
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if !exitErr.Reported {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return exitErr.Code
	}

	// Cobra usage errors: unknown command, bad flag, wrong argument count.
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return ExitCommandError
}

// Main is the entry point used by cmd/jobtrack.
func Main() {
	os.Exit(Execute(os.Args[1:], os.Stdout, os.Stderr))
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
