package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/jobtrack/internal/domain"
)

// createTestStores opens a fresh database file with every table created.
func createTestStores(t *testing.T) *Stores {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	s := NewStores(db)
	if err := s.CreateTables(context.Background()); err != nil {
		t.Fatalf("CreateTables() failed: %v", err)
	}
	return s
}

// createTestCompany saves a company with the given name.
func createTestCompany(t *testing.T, s *Stores, name string) domain.Company {
	t.Helper()
	c, err := domain.NewCompany(name, "", "")
	if err != nil {
		t.Fatalf("NewCompany(%q) failed: %v", name, err)
	}
	if err := s.Companies.Save(context.Background(), &c); err != nil {
		t.Fatalf("Save company %q failed: %v", name, err)
	}
	return c
}

// createTestJob saves an "applied" job for companyID.
func createTestJob(t *testing.T, s *Stores, title string, companyID int64) domain.JobApplication {
	t.Helper()
	j, err := domain.NewJobApplication(title, companyID, "", "2025-01-10", "", "applied")
	if err != nil {
		t.Fatalf("NewJobApplication(%q) failed: %v", title, err)
	}
	if err := s.Jobs.Save(context.Background(), &j); err != nil {
		t.Fatalf("Save job %q failed: %v", title, err)
	}
	return j
}

// createTestTag saves a tag.
func createTestTag(t *testing.T, s *Stores, name string, tagType domain.TagType) domain.Tag {
	t.Helper()
	tag, err := domain.NewTag(name, string(tagType))
	if err != nil {
		t.Fatalf("NewTag(%q) failed: %v", name, err)
	}
	if err := s.Tags.Save(context.Background(), &tag); err != nil {
		t.Fatalf("Save tag %q failed: %v", name, err)
	}
	return tag
}

// countRows returns the number of rows in table.
func countRows(t *testing.T, s *Stores, table string) int {
	t.Helper()
	var n int
	if err := s.DB.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s failed: %v", table, err)
	}
	return n
}
