package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/jobtrack/internal/domain"
)

// TagCreateOptions holds flags for tag create.
type TagCreateOptions struct {
	*RootOptions
	Name string
	Type string
}

// NewTagCommand creates the tag command group.
func NewTagCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage tags and attach them to job applications",
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "list",
		Short:         "List every tag",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTagList(rootOpts, cmd)
		},
	})
	cmd.AddCommand(newTagCreateCommand(rootOpts))
	cmd.AddCommand(&cobra.Command{
		Use:           "delete <tag-id>",
		Short:         "Delete a tag and detach it from every job application",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTagDelete(rootOpts, args[0], cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "assign <job-id> <tag-id>",
		Short:         "Attach a tag to a job application",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTagAssign(rootOpts, args[0], args[1], cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "remove <job-id> <tag-id>",
		Short:         "Detach a tag from a job application",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTagRemove(rootOpts, args[0], args[1], cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "jobs <tag-id>",
		Short:         "List the job applications carrying a tag",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTagJobs(rootOpts, args[0], cmd)
		},
	})

	return cmd
}

func newTagCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TagCreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a tag",
		Long: `Create a tag. Names are unique regardless of letter case.

Examples:
  jobtrack tag create --name remote --type location
  jobtrack tag create --name contract --type length`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTagCreate(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "tag name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&opts.Type, "type", "", "location or length (required)")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func runTagList(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	tags, err := opts.Stores.Tags.GetAll(cmd.Context())
	if err != nil {
		return formatter.Fail(err)
	}

	return formatter.Success(tags, func(w io.Writer) error {
		if len(tags) == 0 {
			_, err := fmt.Fprintln(w, "No tags found.")
			return err
		}
		return writeTags(w, tags)
	})
}

func runTagCreate(opts *TagCreateOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	t, err := domain.NewTag(opts.Name, opts.Type)
	if err != nil {
		return formatter.Fail(err)
	}
	if err := opts.Stores.Tags.Save(cmd.Context(), &t); err != nil {
		return formatter.Fail(err)
	}
	opts.Logger.Info("created tag", zap.Int64("id", t.ID), zap.String("name", t.Name))

	return formatter.Success(t, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Created tag %d: %s (%s)\n", t.ID, t.Name, t.TagType)
		return err
	})
}

func runTagDelete(opts *RootOptions, arg string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	id, err := parseID("tag", arg)
	if err != nil {
		return formatter.Fail(err)
	}
	found, err := opts.Stores.Tags.Delete(cmd.Context(), id)
	if err != nil {
		return formatter.Fail(err)
	}
	if !found {
		return formatter.Fail(&NotFoundError{Entity: "tag", ID: id})
	}
	opts.Logger.Info("deleted tag", zap.Int64("id", id))

	return formatter.Success(map[string]interface{}{"id": id, "deleted": true}, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Deleted tag %d\n", id)
		return err
	})
}

func runTagAssign(opts *RootOptions, jobArg, tagArg string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	jobID, err := parseID("job application", jobArg)
	if err != nil {
		return formatter.Fail(err)
	}
	tagID, err := parseID("tag", tagArg)
	if err != nil {
		return formatter.Fail(err)
	}

	link, err := opts.Stores.JobTags.Create(cmd.Context(), jobID, tagID)
	if err != nil {
		return formatter.Fail(err)
	}
	opts.Logger.Info("assigned tag", zap.Int64("job_id", jobID), zap.Int64("tag_id", tagID))

	return formatter.Success(link, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Assigned tag %d to job application %d\n", tagID, jobID)
		return err
	})
}

func runTagRemove(opts *RootOptions, jobArg, tagArg string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	jobID, err := parseID("job application", jobArg)
	if err != nil {
		return formatter.Fail(err)
	}
	tagID, err := parseID("tag", tagArg)
	if err != nil {
		return formatter.Fail(err)
	}

	removed, err := opts.Stores.JobTags.DeleteTagFromJob(cmd.Context(), jobID, tagID)
	if err != nil {
		return formatter.Fail(err)
	}
	opts.Logger.Info("removed tag",
		zap.Int64("job_id", jobID), zap.Int64("tag_id", tagID), zap.Bool("removed", removed))

	data := map[string]interface{}{"job_id": jobID, "tag_id": tagID, "removed": removed}
	return formatter.Success(data, func(w io.Writer) error {
		if !removed {
			_, err := fmt.Fprintf(w, "Tag %d was not assigned to job application %d\n", tagID, jobID)
			return err
		}
		_, err := fmt.Fprintf(w, "Removed tag %d from job application %d\n", tagID, jobID)
		return err
	})
}

func runTagJobs(opts *RootOptions, arg string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()

	id, err := parseID("tag", arg)
	if err != nil {
		return formatter.Fail(err)
	}
	t, found, err := opts.Stores.Tags.FindByID(ctx, id)
	if err != nil {
		return formatter.Fail(err)
	}
	if !found {
		return formatter.Fail(&NotFoundError{Entity: "tag", ID: id})
	}
	jobs, err := opts.Stores.Tags.Jobs(ctx, id)
	if err != nil {
		return formatter.Fail(err)
	}

	return formatter.Success(jobs, func(w io.Writer) error {
		if len(jobs) == 0 {
			_, err := fmt.Fprintln(w, "No job applications found with this tag.")
			return err
		}
		fmt.Fprintf(w, "Job applications tagged %s:\n", t.Name)
		tw := newTable(w)
		fmt.Fprintln(tw, "ID\tTITLE")
		for _, j := range jobs {
			fmt.Fprintf(tw, "%d\t%s\n", j.ID, j.JobTitle)
		}
		return tw.Flush()
	})
}

func writeTags(w io.Writer, tags []domain.Tag) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE")
	for _, t := range tags {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", t.ID, t.Name, t.TagType)
	}
	return tw.Flush()
}
