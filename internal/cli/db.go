package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/jobtrack/internal/seed"
)

// SeedOptions holds flags for the db seed command.
type SeedOptions struct {
	*RootOptions
	File  string
	Reset bool
}

// NewDBCommand creates the db command group.
func NewDBCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Create, drop and seed the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "init",
		Short:         "Create every table that does not exist yet",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBInit(rootOpts, cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "drop",
		Short:         "Drop every table and all data",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBDrop(rootOpts, cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "reset",
		Short:         "Drop and recreate every table",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBReset(rootOpts, cmd)
		},
	})
	cmd.AddCommand(newSeedCommand(rootOpts))

	return cmd
}

func newSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load sample data or a fixture file",
		Long: `Load data into the database.

Without --file the built-in sample data set is loaded. Fixture files are
YAML (.yaml, .yml) or CUE (.cue); jobs name their company and tags instead
of using ids.

Examples:
  jobtrack db seed
  jobtrack db seed --reset
  jobtrack db seed --file fixtures/demo.cue`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBSeed(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "fixture file to load instead of the sample data")
	cmd.Flags().BoolVar(&opts.Reset, "reset", false, "drop and recreate every table first")

	return cmd
}

func runDBInit(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	// setup already created any missing table.
	data := map[string]string{"database": opts.Database}
	return formatter.Success(data, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Database ready at %s\n", opts.Database)
		return err
	})
}

func runDBDrop(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if err := seed.DropTables(cmd.Context(), opts.Stores); err != nil {
		return formatter.Fail(err)
	}
	opts.Logger.Info("dropped all tables")

	return formatter.Success(map[string]bool{"dropped": true}, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, "Dropped all tables")
		return err
	})
}

func runDBReset(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if err := seed.Reset(cmd.Context(), opts.Stores); err != nil {
		return formatter.Fail(err)
	}
	opts.Logger.Info("reset database")

	return formatter.Success(map[string]bool{"reset": true}, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, "Reset database")
		return err
	})
}

func runDBSeed(opts *SeedOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()

	var (
		fixture seed.Fixture
		err     error
	)
	if opts.File != "" {
		fixture, err = seed.LoadFixture(opts.File)
		if err != nil {
			return formatter.Fail(&FixtureError{Err: err})
		}
		formatter.VerboseLog("Loaded fixture %s", opts.File)
	} else {
		fixture, err = seed.Sample()
		if err != nil {
			return formatter.Fail(&FixtureError{Err: err})
		}
	}

	if opts.Reset {
		if err := seed.Reset(ctx, opts.Stores); err != nil {
			return formatter.Fail(err)
		}
	}

	sum, err := seed.Apply(ctx, opts.Stores, fixture)
	if err != nil {
		return formatter.Fail(err)
	}
	opts.Logger.Info("seeded database",
		zap.Int("companies", sum.Companies),
		zap.Int("tags", sum.Tags),
		zap.Int("jobs", sum.Jobs),
		zap.Int("job_tags", sum.JobTags),
	)

	return formatter.Success(sum, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Seeded %d companies, %d tags, %d job applications, %d tag assignments\n",
			sum.Companies, sum.Tags, sum.Jobs, sum.JobTags)
		return err
	})
}
