package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/roach88/jobtrack/internal/domain"
)

const jobsDDL = `
CREATE TABLE IF NOT EXISTS job_applications (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	job_title      TEXT NOT NULL CHECK (length(job_title) > 0),
	company_id     INTEGER NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
	description    TEXT,
	date_applied   DATE NOT NULL,
	last_follow_up DATE,
	status         TEXT NOT NULL CHECK (status IN ('applied', 'pending', 'rejected', 'offer'))
);
CREATE INDEX IF NOT EXISTS idx_job_applications_company ON job_applications(company_id)`

// Columns are qualified and aliased so the same select works with the tag
// join, whose table also has an id column.
var jobColumns = []string{
	"job_applications.id AS id",
	"job_applications.job_title AS job_title",
	"job_applications.company_id AS company_id",
	"job_applications.description AS description",
	"job_applications.date_applied AS date_applied",
	"job_applications.last_follow_up AS last_follow_up",
	"job_applications.status AS status",
}

type jobRow struct {
	ID           int64          `db:"id"`
	JobTitle     string         `db:"job_title"`
	CompanyID    int64          `db:"company_id"`
	Description  sql.NullString `db:"description"`
	DateApplied  domain.Date    `db:"date_applied"`
	LastFollowUp domain.Date    `db:"last_follow_up"`
	Status       string         `db:"status"`
}

func (r jobRow) toDomain() domain.JobApplication {
	j := domain.JobApplication{
		ID:          r.ID,
		JobTitle:    r.JobTitle,
		CompanyID:   r.CompanyID,
		Description: r.Description.String,
		DateApplied: r.DateApplied,
		Status:      domain.Status(r.Status),
	}
	if !r.LastFollowUp.IsZero() {
		d := r.LastFollowUp
		j.LastFollowUp = &d
	}
	return j
}

// JobFilter narrows List. Zero fields do not filter.
type JobFilter struct {
	Status    domain.Status
	CompanyID int64
	TagID     int64
}

// Jobs persists domain.JobApplication values.
type Jobs struct {
	db        *DB
	companies *Companies
}

// NewJobs creates a job application store over db. companies resolves
// company_id references.
func NewJobs(db *DB, companies *Companies) *Jobs {
	return &Jobs{db: db, companies: companies}
}

// CreateTable creates the job_applications table if it does not exist.
func (s *Jobs) CreateTable(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, jobsDDL); err != nil {
		return fmt.Errorf("create job_applications table: %w", err)
	}
	return nil
}

// DropTable drops the job_applications table if it exists.
func (s *Jobs) DropTable(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS job_applications`); err != nil {
		return fmt.Errorf("drop job_applications table: %w", err)
	}
	return nil
}

// Save validates j, checks that j.CompanyID names an existing company,
// inserts it and assigns the generated id to j.ID.
func (s *Jobs) Save(ctx context.Context, j *domain.JobApplication) error {
	clean := j.Normalize()
	if err := clean.Validate(); err != nil {
		return err
	}

	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.checkCompany(ctx, tx, clean.CompanyID); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO job_applications
			(job_title, company_id, description, date_applied, last_follow_up, status)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			clean.Column(domain.FieldJobTitle),
			clean.Column(domain.FieldCompanyID),
			clean.Column(domain.FieldDescription),
			clean.Column(domain.FieldDateApplied),
			clean.Column(domain.FieldLastFollowUp),
			clean.Column(domain.FieldStatus),
		)
		if err != nil {
			return classify("save job application", "job_application", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return &StorageError{Op: "save job application: last insert id", Err: err}
		}
		clean.ID = id
		return nil
	})
	if err != nil {
		return err
	}

	*j = clean
	return nil
}

// FindByID returns the job application with the given id.
func (s *Jobs) FindByID(ctx context.Context, id int64) (domain.JobApplication, bool, error) {
	return s.findIn(ctx, s.db.db, id)
}

// GetAll returns every job application ordered by id.
func (s *Jobs) GetAll(ctx context.Context) ([]domain.JobApplication, error) {
	return s.List(ctx, JobFilter{})
}

// List returns the job applications matching f, ordered by id.
func (s *Jobs) List(ctx context.Context, f JobFilter) ([]domain.JobApplication, error) {
	q := sq.Select(jobColumns...).From("job_applications")
	if f.TagID != 0 {
		q = q.Join("job_application_tags ON job_application_tags.job_id = job_applications.id").
			Where(sq.Eq{"job_application_tags.tag_id": f.TagID})
	}
	if f.Status != "" {
		q = q.Where(sq.Eq{"job_applications.status": string(f.Status)})
	}
	if f.CompanyID != 0 {
		q = q.Where(sq.Eq{"job_applications.company_id": f.CompanyID})
	}

	query, args, err := q.OrderBy("job_applications.id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build job query: %w", err)
	}

	var rows []jobRow
	if err := s.db.Fetch(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list job applications: %w", err)
	}

	jobs := make([]domain.JobApplication, 0, len(rows))
	for _, r := range rows {
		jobs = append(jobs, r.toDomain())
	}
	return jobs, nil
}

// Update applies a partial change set to the job application with the given
// id. Only patched fields are validated and written; the rest keep their
// stored value. Returns the updated application, or found=false when no
// application has that id.
func (s *Jobs) Update(ctx context.Context, id int64, p domain.JobPatch) (domain.JobApplication, bool, error) {
	if err := p.Validate(); err != nil {
		return domain.JobApplication{}, false, err
	}

	var (
		updated domain.JobApplication
		found   bool
	)
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		current, ok, err := s.findIn(ctx, tx, id)
		if err != nil || !ok {
			return err
		}
		found = true

		next, err := current.Apply(p)
		if err != nil {
			return err
		}
		if p.Has(domain.FieldCompanyID) {
			if err := s.checkCompany(ctx, tx, next.CompanyID); err != nil {
				return err
			}
		}

		set := make(map[string]any, len(p))
		for _, f := range p.Fields() {
			set[string(f)] = next.Column(f)
		}
		query, args, err := sq.Update("job_applications").
			SetMap(set).
			Where(sq.Eq{"id": id}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build job update: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return classify("update job application", "job_application", err)
		}

		updated = next
		return nil
	})
	if err != nil {
		return domain.JobApplication{}, false, err
	}
	return updated, found, nil
}

// Delete removes the job application with the given id. Its tag
// associations are removed by cascade.
func (s *Jobs) Delete(ctx context.Context, id int64) (bool, error) {
	var found bool
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM job_applications WHERE id = ?`, id)
		if err != nil {
			return classify("delete job application", "job_application", err)
		}
		found, err = affected("delete job application", res)
		return err
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

func (s *Jobs) checkCompany(ctx context.Context, q sqlx.QueryerContext, companyID int64) error {
	ok, err := s.companies.existsIn(ctx, q, companyID)
	if err != nil {
		return err
	}
	if !ok {
		return &ReferentialError{Entity: "company", Field: "company_id", ID: companyID}
	}
	return nil
}

func (s *Jobs) existsIn(ctx context.Context, q sqlx.QueryerContext, id int64) (bool, error) {
	return exists(ctx, q, "job_applications", id)
}

func (s *Jobs) findIn(ctx context.Context, q sqlx.QueryerContext, id int64) (domain.JobApplication, bool, error) {
	query, args, err := sq.Select(jobColumns...).
		From("job_applications").
		Where(sq.Eq{"job_applications.id": id}).
		ToSql()
	if err != nil {
		return domain.JobApplication{}, false, fmt.Errorf("build job query: %w", err)
	}

	var row jobRow
	err = sqlx.GetContext(ctx, q, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.JobApplication{}, false, nil
	}
	if err != nil {
		return domain.JobApplication{}, false, classify("find job application", "job_application", err)
	}
	return row.toDomain(), true, nil
}
