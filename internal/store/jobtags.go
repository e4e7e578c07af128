package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/roach88/jobtrack/internal/domain"
)

const jobTagsDDL = `
CREATE TABLE IF NOT EXISTS job_application_tags (
	id     INTEGER PRIMARY KEY AUTOINCREMENT,
	job_id INTEGER NOT NULL REFERENCES job_applications(id) ON DELETE CASCADE,
	tag_id INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
	UNIQUE (job_id, tag_id)
);
CREATE INDEX IF NOT EXISTS idx_job_application_tags_tag ON job_application_tags(tag_id)`

type jobTagRow struct {
	ID    int64 `db:"id"`
	JobID int64 `db:"job_id"`
	TagID int64 `db:"tag_id"`
}

type jobSummaryRow struct {
	ID       int64  `db:"id"`
	JobTitle string `db:"job_title"`
}

// JobTags persists the many-to-many link between job applications and tags.
type JobTags struct {
	db   *DB
	jobs *Jobs
	tags *Tags
}

// NewJobTags creates an association store over db. jobs and tags resolve
// the two sides of each link.
func NewJobTags(db *DB, jobs *Jobs, tags *Tags) *JobTags {
	return &JobTags{db: db, jobs: jobs, tags: tags}
}

// CreateTable creates the job_application_tags table if it does not exist.
func (s *JobTags) CreateTable(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, jobTagsDDL); err != nil {
		return fmt.Errorf("create job_application_tags table: %w", err)
	}
	return nil
}

// DropTable drops the job_application_tags table if it exists.
func (s *JobTags) DropTable(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS job_application_tags`); err != nil {
		return fmt.Errorf("drop job_application_tags table: %w", err)
	}
	return nil
}

// Create attaches a tag to a job. Both must exist (*ReferentialError
// otherwise) and the tag must not already be attached (*ConflictError).
func (s *JobTags) Create(ctx context.Context, jobID, tagID int64) (domain.JobApplicationTag, error) {
	link := domain.JobApplicationTag{JobID: jobID, TagID: tagID}

	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		ok, err := s.jobs.existsIn(ctx, tx, jobID)
		if err != nil {
			return err
		}
		if !ok {
			return &ReferentialError{Entity: "job_application", Field: "job_id", ID: jobID}
		}

		ok, err = s.tags.existsIn(ctx, tx, tagID)
		if err != nil {
			return err
		}
		if !ok {
			return &ReferentialError{Entity: "tag", Field: "tag_id", ID: tagID}
		}

		var n int
		if err := sqlx.GetContext(ctx, tx, &n,
			`SELECT COUNT(*) FROM job_application_tags WHERE job_id = ? AND tag_id = ?`,
			jobID, tagID,
		); err != nil {
			return classify("check job tag", "job_application_tag", err)
		}
		if n > 0 {
			return &ConflictError{
				Entity:  "job_application_tag",
				Message: fmt.Sprintf("tag %d is already attached to job %d", tagID, jobID),
			}
		}

		link.ID, err = insertJobTag(ctx, tx, jobID, tagID)
		return err
	})
	if err != nil {
		return domain.JobApplicationTag{}, err
	}
	return link, nil
}

// Save inserts link as is and assigns the generated id. It skips the
// existence checks Create performs, but the schema still rejects duplicates
// (*ConflictError) and dangling ids (*ReferentialError).
func (s *JobTags) Save(ctx context.Context, link *domain.JobApplicationTag) error {
	var id int64
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		id, err = insertJobTag(ctx, tx, link.JobID, link.TagID)
		return err
	})
	if err != nil {
		return err
	}
	link.ID = id
	return nil
}

// GetAll returns every association row ordered by id.
func (s *JobTags) GetAll(ctx context.Context) ([]domain.JobApplicationTag, error) {
	var rows []jobTagRow
	if err := s.db.Fetch(ctx, &rows, `SELECT id, job_id, tag_id FROM job_application_tags ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list job tags: %w", err)
	}
	links := make([]domain.JobApplicationTag, 0, len(rows))
	for _, r := range rows {
		links = append(links, domain.JobApplicationTag(r))
	}
	return links, nil
}

// GetTagsForJob returns every tag attached to the job, ordered by tag id.
func (s *JobTags) GetTagsForJob(ctx context.Context, jobID int64) ([]domain.Tag, error) {
	var rows []tagRow
	err := s.db.Fetch(ctx, &rows, `
		SELECT tags.id AS id, tags.name AS name, tags.tag_type AS tag_type
		FROM job_application_tags
		JOIN tags ON job_application_tags.tag_id = tags.id
		WHERE job_application_tags.job_id = ?
		ORDER BY tags.id
	`, jobID)
	if err != nil {
		return nil, fmt.Errorf("tags for job %d: %w", jobID, err)
	}
	return tagsFromRows(rows), nil
}

// GetJobsByTag returns the id and title of every job carrying the tag,
// ordered by job id.
func (s *JobTags) GetJobsByTag(ctx context.Context, tagID int64) ([]domain.JobSummary, error) {
	return jobsByTag(ctx, s.db, tagID)
}

// DeleteTagFromJob detaches a tag from a job. Detaching a pair that is not
// attached is a no-op; removed reports whether a row was deleted.
func (s *JobTags) DeleteTagFromJob(ctx context.Context, jobID, tagID int64) (bool, error) {
	var removed bool
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM job_application_tags WHERE job_id = ? AND tag_id = ?`,
			jobID, tagID,
		)
		if err != nil {
			return classify("delete job tag", "job_application_tag", err)
		}
		removed, err = affected("delete job tag", res)
		return err
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

func insertJobTag(ctx context.Context, tx *sqlx.Tx, jobID, tagID int64) (int64, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO job_application_tags (job_id, tag_id) VALUES (?, ?)`,
		jobID, tagID,
	)
	if err != nil {
		return 0, classify("save job tag", "job_application_tag", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, &StorageError{Op: "save job tag: last insert id", Err: err}
	}
	return id, nil
}

func jobsByTag(ctx context.Context, db *DB, tagID int64) ([]domain.JobSummary, error) {
	var rows []jobSummaryRow
	err := db.Fetch(ctx, &rows, `
		SELECT job_applications.id AS id, job_applications.job_title AS job_title
		FROM job_application_tags
		JOIN job_applications ON job_application_tags.job_id = job_applications.id
		WHERE job_application_tags.tag_id = ?
		ORDER BY job_applications.id
	`, tagID)
	if err != nil {
		return nil, fmt.Errorf("jobs for tag %d: %w", tagID, err)
	}
	jobs := make([]domain.JobSummary, 0, len(rows))
	for _, r := range rows {
		jobs = append(jobs, domain.JobSummary(r))
	}
	return jobs, nil
}
