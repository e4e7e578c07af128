package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/jobtrack/internal/domain"
)

// CompanyOptions holds flags for company create and update.
type CompanyOptions struct {
	*RootOptions
	Name    string
	Website string
	Contact string
}

// CompanyDetail is a company with the number of job applications filed
// with it.
type CompanyDetail struct {
	domain.Company
	Jobs int `json:"jobs"`
}

// NewCompanyCommand creates the company command group.
func NewCompanyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "company",
		Short: "Manage companies",
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "list",
		Short:         "List every company",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompanyList(rootOpts, cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "show <id>",
		Short:         "Show one company",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompanyShow(rootOpts, args[0], cmd)
		},
	})
	cmd.AddCommand(newCompanyCreateCommand(rootOpts))
	cmd.AddCommand(newCompanyUpdateCommand(rootOpts))
	cmd.AddCommand(&cobra.Command{
		Use:           "delete <id>",
		Short:         "Delete a company and every job application filed with it",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompanyDelete(rootOpts, args[0], cmd)
		},
	})

	return cmd
}

func newCompanyCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompanyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a company",
		Long: `Create a company.

Examples:
  jobtrack company create --name Acme
  jobtrack company create --name Acme --website https://acme.example --contact jobs@acme.example`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompanyCreate(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "company name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&opts.Website, "website", "", "company website")
	cmd.Flags().StringVar(&opts.Contact, "contact", "", "contact information")

	return cmd
}

func newCompanyUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompanyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the name, website or contact of a company",
		Long: `Change a company. Only the flags that are given are changed; pass an
empty value to clear the website or contact.

Examples:
  jobtrack company update 3 --name "Acme Corp"
  jobtrack company update 3 --contact ""`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompanyUpdate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "new company name")
	cmd.Flags().StringVar(&opts.Website, "website", "", "new website")
	cmd.Flags().StringVar(&opts.Contact, "contact", "", "new contact information")

	return cmd
}

func runCompanyList(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	companies, err := opts.Stores.Companies.GetAll(cmd.Context())
	if err != nil {
		return formatter.Fail(err)
	}

	return formatter.Success(companies, func(w io.Writer) error {
		if len(companies) == 0 {
			_, err := fmt.Fprintln(w, "No companies found.")
			return err
		}
		tw := newTable(w)
		fmt.Fprintln(tw, "ID\tNAME\tWEBSITE\tCONTACT")
		for _, c := range companies {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.ID, c.Name, orDash(c.Website), orDash(c.ContactInfo))
		}
		return tw.Flush()
	})
}

func runCompanyShow(opts *RootOptions, arg string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()

	id, err := parseID("company", arg)
	if err != nil {
		return formatter.Fail(err)
	}
	c, found, err := opts.Stores.Companies.FindByID(ctx, id)
	if err != nil {
		return formatter.Fail(err)
	}
	if !found {
		return formatter.Fail(&NotFoundError{Entity: "company", ID: id})
	}
	n, err := opts.Stores.Companies.CountJobs(ctx, id)
	if err != nil {
		return formatter.Fail(err)
	}

	detail := CompanyDetail{Company: c, Jobs: n}
	return formatter.Success(detail, func(w io.Writer) error {
		tw := newTable(w)
		fmt.Fprintf(tw, "ID:\t%d\n", c.ID)
		fmt.Fprintf(tw, "Name:\t%s\n", c.Name)
		fmt.Fprintf(tw, "Website:\t%s\n", orDash(c.Website))
		fmt.Fprintf(tw, "Contact:\t%s\n", orDash(c.ContactInfo))
		fmt.Fprintf(tw, "Applications:\t%d\n", n)
		return tw.Flush()
	})
}

func runCompanyCreate(opts *CompanyOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	c, err := domain.NewCompany(opts.Name, opts.Website, opts.Contact)
	if err != nil {
		return formatter.Fail(err)
	}
	if err := opts.Stores.Companies.Save(cmd.Context(), &c); err != nil {
		return formatter.Fail(err)
	}
	opts.Logger.Info("created company", zap.Int64("id", c.ID), zap.String("name", c.Name))

	return formatter.Success(c, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Created company %d: %s\n", c.ID, c.Name)
		return err
	})
}

func runCompanyUpdate(opts *CompanyOptions, arg string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()

	id, err := parseID("company", arg)
	if err != nil {
		return formatter.Fail(err)
	}

	flags := cmd.Flags()
	if !flags.Changed("name") && !flags.Changed("website") && !flags.Changed("contact") {
		return formatter.Fail(&UsageError{Message: "nothing to update: pass --name, --website or --contact"})
	}

	c, found, err := opts.Stores.Companies.FindByID(ctx, id)
	if err != nil {
		return formatter.Fail(err)
	}
	if !found {
		return formatter.Fail(&NotFoundError{Entity: "company", ID: id})
	}

	if flags.Changed("name") {
		c.Name = opts.Name
	}
	if flags.Changed("website") {
		c.Website = opts.Website
	}
	if flags.Changed("contact") {
		c.ContactInfo = opts.Contact
	}

	found, err = opts.Stores.Companies.Update(ctx, c)
	if err != nil {
		return formatter.Fail(err)
	}
	if !found {
		return formatter.Fail(&NotFoundError{Entity: "company", ID: id})
	}
	updated, _, err := opts.Stores.Companies.FindByID(ctx, id)
	if err != nil {
		return formatter.Fail(err)
	}
	opts.Logger.Info("updated company", zap.Int64("id", id))

	return formatter.Success(updated, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Updated company %d: %s\n", updated.ID, updated.Name)
		return err
	})
}

func runCompanyDelete(opts *RootOptions, arg string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()

	id, err := parseID("company", arg)
	if err != nil {
		return formatter.Fail(err)
	}
	c, found, err := opts.Stores.Companies.FindByID(ctx, id)
	if err != nil {
		return formatter.Fail(err)
	}
	if !found {
		return formatter.Fail(&NotFoundError{Entity: "company", ID: id})
	}
	jobs, err := opts.Stores.Companies.CountJobs(ctx, id)
	if err != nil {
		return formatter.Fail(err)
	}

	if _, err := opts.Stores.Companies.Delete(ctx, id); err != nil {
		return formatter.Fail(err)
	}
	opts.Logger.Info("deleted company", zap.Int64("id", id), zap.Int("cascaded_jobs", jobs))

	data := map[string]interface{}{"id": id, "deleted": true, "jobs_deleted": jobs}
	return formatter.Success(data, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Deleted company %d (%s) and %d job application(s)\n", id, c.Name, jobs)
		return err
	})
}
