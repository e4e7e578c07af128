package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/jobtrack/internal/domain"
	"github.com/roach88/jobtrack/internal/store"
)

// JobListOptions holds flags for job list.
type JobListOptions struct {
	*RootOptions
	Status    string
	CompanyID int64
	TagID     int64
}

// JobCreateOptions holds flags for job create.
type JobCreateOptions struct {
	*RootOptions
	Title         string
	Company       string
	CompanyID     int64
	CreateCompany bool
	Description   string
	Applied       string
	FollowUp      string
	Status        string
}

// JobUpdateOptions holds flags for job update.
type JobUpdateOptions struct {
	*RootOptions
	Set []string
}

// JobRow is a job application with its company name, as listed.
type JobRow struct {
	domain.JobApplication
	Company string `json:"company"`
}

// JobDetail is a job application with its company name and tags.
type JobDetail struct {
	domain.JobApplication
	Company string       `json:"company"`
	Tags    []domain.Tag `json:"tags"`
}

// NewJobCommand creates the job command group.
func NewJobCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "job",
		Short: "Manage job applications",
	}

	cmd.AddCommand(newJobListCommand(rootOpts))
	cmd.AddCommand(&cobra.Command{
		Use:           "show <id>",
		Short:         "Show one job application with its tags",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJobShow(rootOpts, args[0], cmd)
		},
	})
	cmd.AddCommand(newJobCreateCommand(rootOpts))
	cmd.AddCommand(newJobUpdateCommand(rootOpts))
	cmd.AddCommand(&cobra.Command{
		Use:           "delete <id>",
		Short:         "Delete a job application",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJobDelete(rootOpts, args[0], cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "tags <id>",
		Short:         "List the tags attached to a job application",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJobTags(rootOpts, args[0], cmd)
		},
	})

	return cmd
}

func newJobListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JobListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List job applications",
		Long: `List job applications, optionally filtered. Filters combine.

Examples:
  jobtrack job list
  jobtrack job list --status pending
  jobtrack job list --company-id 2 --tag-id 1`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJobList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Status, "status", "", "only applications with this status")
	cmd.Flags().Int64Var(&opts.CompanyID, "company-id", 0, "only applications filed with this company")
	cmd.Flags().Int64Var(&opts.TagID, "tag-id", 0, "only applications carrying this tag")

	return cmd
}

func newJobCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JobCreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Record a new job application",
		Long: `Record a new job application.

The company is given by name (--company) or id (--company-id). With
--create-company a company that does not exist yet is created first.
--applied defaults to today.

Examples:
  jobtrack job create --title Engineer --company Acme
  jobtrack job create --title Engineer --company-id 2 --applied 2025-03-01 --status pending
  jobtrack job create --title Analyst --company Initech --create-company`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJobCreate(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "job title (required)")
	_ = cmd.MarkFlagRequired("title")
	cmd.Flags().StringVar(&opts.Company, "company", "", "company name")
	cmd.Flags().Int64Var(&opts.CompanyID, "company-id", 0, "company id")
	cmd.MarkFlagsMutuallyExclusive("company", "company-id")
	cmd.Flags().BoolVar(&opts.CreateCompany, "create-company", false, "create the company named by --company if it does not exist")
	cmd.Flags().StringVar(&opts.Description, "description", "", "job description")
	cmd.Flags().StringVar(&opts.Applied, "applied", "", "date applied, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&opts.FollowUp, "follow-up", "", "date of the last follow-up, YYYY-MM-DD")
	cmd.Flags().StringVar(&opts.Status, "status", string(domain.StatusApplied), "applied, pending, rejected or offer")

	return cmd
}

func newJobUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JobUpdateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a job application",
		Long: `Change fields of a job application. Fields that are not named keep
their value. An empty value clears description or last_follow_up.

Fields: job_title, company_id, description, date_applied, last_follow_up, status

Examples:
  jobtrack job update 4 --set status=offer
  jobtrack job update 4 --set last_follow_up=2025-03-10 --set status=pending`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJobUpdate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Set, "set", nil, "field=value to change (repeatable)")

	return cmd
}

func runJobList(opts *JobListOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()

	filter := store.JobFilter{CompanyID: opts.CompanyID, TagID: opts.TagID}
	if opts.Status != "" {
		st, err := domain.ParseStatus(opts.Status)
		if err != nil {
			return formatter.Fail(err)
		}
		filter.Status = st
	}

	jobs, err := opts.Stores.Jobs.List(ctx, filter)
	if err != nil {
		return formatter.Fail(err)
	}
	names, err := companyNames(ctx, opts.RootOptions)
	if err != nil {
		return formatter.Fail(err)
	}

	rows := make([]JobRow, 0, len(jobs))
	for _, j := range jobs {
		rows = append(rows, JobRow{JobApplication: j, Company: names[j.CompanyID]})
	}

	return formatter.Success(rows, func(w io.Writer) error {
		if len(rows) == 0 {
			_, err := fmt.Fprintln(w, "No job applications found.")
			return err
		}
		tw := newTable(w)
		fmt.Fprintln(tw, "ID\tTITLE\tCOMPANY\tSTATUS\tAPPLIED\tFOLLOW-UP")
		for _, r := range rows {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
				r.ID, r.JobTitle, r.Company, r.Status, r.DateApplied, followUp(r.JobApplication))
		}
		return tw.Flush()
	})
}

func runJobShow(opts *RootOptions, arg string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()

	id, err := parseID("job application", arg)
	if err != nil {
		return formatter.Fail(err)
	}
	j, found, err := opts.Stores.Jobs.FindByID(ctx, id)
	if err != nil {
		return formatter.Fail(err)
	}
	if !found {
		return formatter.Fail(&NotFoundError{Entity: "job application", ID: id})
	}
	c, _, err := opts.Stores.Companies.FindByID(ctx, j.CompanyID)
	if err != nil {
		return formatter.Fail(err)
	}
	tags, err := opts.Stores.JobTags.GetTagsForJob(ctx, id)
	if err != nil {
		return formatter.Fail(err)
	}

	detail := JobDetail{JobApplication: j, Company: c.Name, Tags: tags}
	return formatter.Success(detail, func(w io.Writer) error {
		names := make([]string, 0, len(tags))
		for _, t := range tags {
			names = append(names, t.Name)
		}
		tw := newTable(w)
		fmt.Fprintf(tw, "ID:\t%d\n", j.ID)
		fmt.Fprintf(tw, "Title:\t%s\n", j.JobTitle)
		fmt.Fprintf(tw, "Company:\t%s (%d)\n", c.Name, j.CompanyID)
		fmt.Fprintf(tw, "Status:\t%s\n", j.Status)
		fmt.Fprintf(tw, "Applied:\t%s\n", j.DateApplied)
		fmt.Fprintf(tw, "Follow-up:\t%s\n", followUp(j))
		fmt.Fprintf(tw, "Description:\t%s\n", orDash(j.Description))
		fmt.Fprintf(tw, "Tags:\t%s\n", orDash(strings.Join(names, ", ")))
		return tw.Flush()
	})
}

func runJobCreate(opts *JobCreateOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()

	company, err := resolveJobCompany(ctx, opts, formatter)
	if err != nil {
		return formatter.Fail(err)
	}

	applied := opts.Applied
	if strings.TrimSpace(applied) == "" {
		applied = opts.Clock.Now().Format(domain.DateLayout)
	}

	j, err := domain.NewJobApplication(opts.Title, company.ID, opts.Description, applied, opts.FollowUp, opts.Status)
	if err != nil {
		return formatter.Fail(err)
	}
	if err := opts.Stores.Jobs.Save(ctx, &j); err != nil {
		return formatter.Fail(err)
	}
	opts.Logger.Info("created job application",
		zap.Int64("id", j.ID),
		zap.Int64("company_id", j.CompanyID),
		zap.String("status", string(j.Status)),
	)

	row := JobRow{JobApplication: j, Company: company.Name}
	return formatter.Success(row, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Created job application %d: %s at %s\n", j.ID, j.JobTitle, company.Name)
		return err
	})
}

// resolveJobCompany finds the company named by --company or --company-id,
// creating it when --create-company allows.
func resolveJobCompany(ctx context.Context, opts *JobCreateOptions, formatter *OutputFormatter) (domain.Company, error) {
	s := opts.Stores

	if opts.CompanyID != 0 {
		c, found, err := s.Companies.FindByID(ctx, opts.CompanyID)
		if err != nil {
			return domain.Company{}, err
		}
		if !found {
			return domain.Company{}, &store.ReferentialError{Entity: "company", Field: "company_id", ID: opts.CompanyID}
		}
		return c, nil
	}

	if strings.TrimSpace(opts.Company) == "" {
		return domain.Company{}, &UsageError{Message: "one of --company or --company-id is required"}
	}

	c, found, err := s.Companies.FindByName(ctx, opts.Company)
	if err != nil {
		return domain.Company{}, err
	}
	if found {
		return c, nil
	}
	if !opts.CreateCompany {
		return domain.Company{}, &domain.ValidationError{
			Entity:  "job_application",
			Field:   "company",
			Message: fmt.Sprintf("no company named %q (use --create-company to create it)", domain.CleanText(opts.Company)),
		}
	}

	c, err = domain.NewCompany(opts.Company, "", "")
	if err != nil {
		return domain.Company{}, err
	}
	if err := s.Companies.Save(ctx, &c); err != nil {
		return domain.Company{}, err
	}
	formatter.VerboseLog("Created company %d: %s", c.ID, c.Name)
	opts.Logger.Info("created company", zap.Int64("id", c.ID), zap.String("name", c.Name))
	return c, nil
}

func runJobUpdate(opts *JobUpdateOptions, arg string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	id, err := parseID("job application", arg)
	if err != nil {
		return formatter.Fail(err)
	}
	if len(opts.Set) == 0 {
		return formatter.Fail(&UsageError{Message: "nothing to update: pass --set field=value"})
	}

	changes := make(map[string]string, len(opts.Set))
	for _, kv := range opts.Set {
		field, value, ok := strings.Cut(kv, "=")
		if !ok {
			return formatter.Fail(&UsageError{Message: fmt.Sprintf("invalid --set %q: want field=value", kv)})
		}
		changes[field] = value
	}
	patch, err := domain.ParseJobPatch(changes)
	if err != nil {
		return formatter.Fail(err)
	}

	updated, found, err := opts.Stores.Jobs.Update(cmd.Context(), id, patch)
	if err != nil {
		return formatter.Fail(err)
	}
	if !found {
		return formatter.Fail(&NotFoundError{Entity: "job application", ID: id})
	}

	fields := make([]string, 0, len(patch))
	for _, f := range patch.Fields() {
		fields = append(fields, string(f))
	}
	opts.Logger.Info("updated job application", zap.Int64("id", id), zap.Strings("fields", fields))

	return formatter.Success(updated, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Updated job application %d (%s)\n", id, strings.Join(fields, ", "))
		return err
	})
}

func runJobDelete(opts *RootOptions, arg string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	id, err := parseID("job application", arg)
	if err != nil {
		return formatter.Fail(err)
	}
	found, err := opts.Stores.Jobs.Delete(cmd.Context(), id)
	if err != nil {
		return formatter.Fail(err)
	}
	if !found {
		return formatter.Fail(&NotFoundError{Entity: "job application", ID: id})
	}
	opts.Logger.Info("deleted job application", zap.Int64("id", id))

	return formatter.Success(map[string]interface{}{"id": id, "deleted": true}, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Deleted job application %d\n", id)
		return err
	})
}

func runJobTags(opts *RootOptions, arg string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()

	id, err := parseID("job application", arg)
	if err != nil {
		return formatter.Fail(err)
	}
	_, found, err := opts.Stores.Jobs.FindByID(ctx, id)
	if err != nil {
		return formatter.Fail(err)
	}
	if !found {
		return formatter.Fail(&NotFoundError{Entity: "job application", ID: id})
	}
	tags, err := opts.Stores.JobTags.GetTagsForJob(ctx, id)
	if err != nil {
		return formatter.Fail(err)
	}

	return formatter.Success(tags, func(w io.Writer) error {
		if len(tags) == 0 {
			_, err := fmt.Fprintf(w, "No tags on job application %d.\n", id)
			return err
		}
		return writeTags(w, tags)
	})
}

func companyNames(ctx context.Context, opts *RootOptions) (map[int64]string, error) {
	companies, err := opts.Stores.Companies.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(companies))
	for _, c := range companies {
		names[c.ID] = c.Name
	}
	return names, nil
}

func followUp(j domain.JobApplication) string {
	if j.LastFollowUp == nil {
		return "-"
	}
	return j.LastFollowUp.String()
}
