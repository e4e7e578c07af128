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

const companiesDDL = `
CREATE TABLE IF NOT EXISTS companies (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	name         TEXT NOT NULL CHECK (length(name) > 0),
	website      TEXT,
	contact_info TEXT
)`

const selectCompany = `SELECT id, name, website, contact_info FROM companies`

type companyRow struct {
	ID          int64          `db:"id"`
	Name        string         `db:"name"`
	Website     sql.NullString `db:"website"`
	ContactInfo sql.NullString `db:"contact_info"`
}

func (r companyRow) toDomain() domain.Company {
	return domain.Company{
		ID:          r.ID,
		Name:        r.Name,
		Website:     r.Website.String,
		ContactInfo: r.ContactInfo.String,
	}
}

// Companies persists domain.Company values.
type Companies struct {
	db *DB
}

// NewCompanies creates a company store over db.
func NewCompanies(db *DB) *Companies {
	return &Companies{db: db}
}

// CreateTable creates the companies table if it does not exist.
func (s *Companies) CreateTable(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, companiesDDL); err != nil {
		return fmt.Errorf("create companies table: %w", err)
	}
	return nil
}

// DropTable drops the companies table if it exists.
func (s *Companies) DropTable(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS companies`); err != nil {
		return fmt.Errorf("drop companies table: %w", err)
	}
	return nil
}

// Save validates c, inserts it and assigns the generated id to c.ID.
func (s *Companies) Save(ctx context.Context, c *domain.Company) error {
	clean := c.Normalize()
	if err := clean.Validate(); err != nil {
		return err
	}

	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO companies (name, website, contact_info) VALUES (?, ?, ?)`,
			clean.Name, nullString(clean.Website), nullString(clean.ContactInfo),
		)
		if err != nil {
			return classify("save company", "company", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return &StorageError{Op: "save company: last insert id", Err: err}
		}
		clean.ID = id
		return nil
	})
	if err != nil {
		return err
	}

	*c = clean
	return nil
}

// FindByID returns the company with the given id.
func (s *Companies) FindByID(ctx context.Context, id int64) (domain.Company, bool, error) {
	return getCompany(ctx, s.db.db, selectCompany+` WHERE id = ?`, id)
}

// FindByName returns the company whose name matches exactly (after the same
// normalization Save applies). With several matches the oldest one wins.
func (s *Companies) FindByName(ctx context.Context, name string) (domain.Company, bool, error) {
	return getCompany(ctx, s.db.db, selectCompany+` WHERE name = ? ORDER BY id LIMIT 1`, domain.CleanText(name))
}

// GetAll returns every company ordered by id.
func (s *Companies) GetAll(ctx context.Context) ([]domain.Company, error) {
	var rows []companyRow
	if err := s.db.Fetch(ctx, &rows, selectCompany+` ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}

	companies := make([]domain.Company, 0, len(rows))
	for _, r := range rows {
		companies = append(companies, r.toDomain())
	}
	return companies, nil
}

// Update overwrites name, website and contact_info of the company with
// c.ID. Every field is written, including empty optional ones. Returns
// found=false when no company has that id.
func (s *Companies) Update(ctx context.Context, c domain.Company) (bool, error) {
	if c.ID == 0 {
		return false, &domain.ValidationError{Entity: "company", Field: "id", Message: "is required for update"}
	}
	clean := c.Normalize()
	if err := clean.Validate(); err != nil {
		return false, err
	}

	query, args, err := sq.Update("companies").
		SetMap(map[string]any{
			"name":         clean.Name,
			"website":      nullString(clean.Website),
			"contact_info": nullString(clean.ContactInfo),
		}).
		Where(sq.Eq{"id": clean.ID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build company update: %w", err)
	}

	var found bool
	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return classify("update company", "company", err)
		}
		found, err = affected("update company", res)
		return err
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// Delete removes the company with the given id. Its job applications, and
// their tag associations, are removed by cascade.
func (s *Companies) Delete(ctx context.Context, id int64) (bool, error) {
	var found bool
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM companies WHERE id = ?`, id)
		if err != nil {
			return classify("delete company", "company", err)
		}
		found, err = affected("delete company", res)
		return err
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// CountJobs returns how many job applications reference the company, i.e.
// how many rows a Delete would cascade to.
func (s *Companies) CountJobs(ctx context.Context, id int64) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, s.db.db, &n,
		`SELECT COUNT(*) FROM job_applications WHERE company_id = ?`, id); err != nil {
		return 0, classify("count company jobs", "company", err)
	}
	return n, nil
}

// existsIn reports whether a company with id exists, using q so the check
// can join the caller's transaction.
func (s *Companies) existsIn(ctx context.Context, q sqlx.QueryerContext, id int64) (bool, error) {
	return exists(ctx, q, "companies", id)
}

func getCompany(ctx context.Context, q sqlx.QueryerContext, query string, args ...any) (domain.Company, bool, error) {
	var row companyRow
	err := sqlx.GetContext(ctx, q, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Company{}, false, nil
	}
	if err != nil {
		return domain.Company{}, false, classify("find company", "company", err)
	}
	return row.toDomain(), true, nil
}
