package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/roach88/jobtrack/internal/domain"
)

// Tag names are unique regardless of letter case, so "Remote" and "remote"
// cannot both exist.
const tagsDDL = `
CREATE TABLE IF NOT EXISTS tags (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	name     TEXT NOT NULL UNIQUE COLLATE NOCASE CHECK (length(name) > 0),
	tag_type TEXT NOT NULL CHECK (tag_type IN ('location', 'length'))
)`

const selectTag = `SELECT id, name, tag_type FROM tags`

type tagRow struct {
	ID      int64  `db:"id"`
	Name    string `db:"name"`
	TagType string `db:"tag_type"`
}

func (r tagRow) toDomain() domain.Tag {
	return domain.Tag{ID: r.ID, Name: r.Name, TagType: domain.TagType(r.TagType)}
}

func tagsFromRows(rows []tagRow) []domain.Tag {
	tags := make([]domain.Tag, 0, len(rows))
	for _, r := range rows {
		tags = append(tags, r.toDomain())
	}
	return tags
}

// Tags persists domain.Tag values.
type Tags struct {
	db *DB
}

// NewTags creates a tag store over db.
func NewTags(db *DB) *Tags {
	return &Tags{db: db}
}

// CreateTable creates the tags table if it does not exist.
func (s *Tags) CreateTable(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, tagsDDL); err != nil {
		return fmt.Errorf("create tags table: %w", err)
	}
	return nil
}

// DropTable drops the tags table if it exists.
func (s *Tags) DropTable(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS tags`); err != nil {
		return fmt.Errorf("drop tags table: %w", err)
	}
	return nil
}

// Save validates t, inserts it and assigns the generated id to t.ID.
// A name already in use fails with a *ConflictError.
func (s *Tags) Save(ctx context.Context, t *domain.Tag) error {
	clean := t.Normalize()
	if err := clean.Validate(); err != nil {
		return err
	}

	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, taken, err := getTag(ctx, tx, selectTag+` WHERE name = ?`, clean.Name)
		if err != nil {
			return err
		}
		if taken {
			return &ConflictError{Entity: "tag", Message: fmt.Sprintf("tag %q already exists", clean.Name)}
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO tags (name, tag_type) VALUES (?, ?)`,
			clean.Name, string(clean.TagType),
		)
		if err != nil {
			return classify("save tag", "tag", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return &StorageError{Op: "save tag: last insert id", Err: err}
		}
		clean.ID = id
		return nil
	})
	if err != nil {
		return err
	}

	*t = clean
	return nil
}

// GetAll returns every tag ordered by id.
func (s *Tags) GetAll(ctx context.Context) ([]domain.Tag, error) {
	var rows []tagRow
	if err := s.db.Fetch(ctx, &rows, selectTag+` ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tagsFromRows(rows), nil
}

// FindByID returns the tag with the given id.
func (s *Tags) FindByID(ctx context.Context, id int64) (domain.Tag, bool, error) {
	return getTag(ctx, s.db.db, selectTag+` WHERE id = ?`, id)
}

// FindByName returns the tag with the given name, ignoring letter case.
func (s *Tags) FindByName(ctx context.Context, name string) (domain.Tag, bool, error) {
	return getTag(ctx, s.db.db, selectTag+` WHERE name = ?`, domain.CleanText(name))
}

// Delete removes the tag with the given id. Association rows that reference
// it are removed by cascade.
func (s *Tags) Delete(ctx context.Context, id int64) (bool, error) {
	var found bool
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
		if err != nil {
			return classify("delete tag", "tag", err)
		}
		found, err = affected("delete tag", res)
		return err
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// Jobs returns the id and title of every job application carrying the tag.
func (s *Tags) Jobs(ctx context.Context, tagID int64) ([]domain.JobSummary, error) {
	return jobsByTag(ctx, s.db, tagID)
}

func (s *Tags) existsIn(ctx context.Context, q sqlx.QueryerContext, id int64) (bool, error) {
	return exists(ctx, q, "tags", id)
}

func getTag(ctx context.Context, q sqlx.QueryerContext, query string, args ...any) (domain.Tag, bool, error) {
	var row tagRow
	err := sqlx.GetContext(ctx, q, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Tag{}, false, nil
	}
	if err != nil {
		return domain.Tag{}, false, classify("find tag", "tag", err)
	}
	return row.toDomain(), true, nil
}
