package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/jobtrack/internal/domain"
)

func newMockStores(t *testing.T) (*Stores, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewStores(NewDB(sqlx.NewDb(db, DriverName))), mock
}

func TestCompanies_SaveStorageFailureRollsBack(t *testing.T) {
	s, mock := newMockStores(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO companies (name, website, contact_info)")).
		WithArgs("Acme", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	c := domain.Company{Name: "Acme"}
	err := s.Companies.Save(context.Background(), &c)
	require.Error(t, err)
	assert.True(t, IsStorage(err), "got %T: %v", err, err)
	assert.Zero(t, c.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanies_SaveCommitFailure(t *testing.T) {
	s, mock := newMockStores(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO companies")).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectCommit().WillReturnError(errors.New("database is locked"))

	c := domain.Company{Name: "Acme"}
	err := s.Companies.Save(context.Background(), &c)

	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "commit", se.Op)
	assert.Zero(t, c.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollbackFailureKeepsCause(t *testing.T) {
	s, mock := newMockStores(t)
	cause := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback().WillReturnError(errors.New("connection reset"))

	err := s.DB.WithTx(context.Background(), func(*sqlx.Tx) error { return cause })
	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "rollback failed: connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_BeginFailure(t *testing.T) {
	s, mock := newMockStores(t)
	mock.ExpectBegin().WillReturnError(errors.New("database is locked"))

	called := false
	err := s.DB.WithTx(context.Background(), func(*sqlx.Tx) error {
		called = true
		return nil
	})
	assert.True(t, IsStorage(err))
	assert.False(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobs_SaveChecksCompanyInsideTransaction(t *testing.T) {
	s, mock := newMockStores(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM companies WHERE id = ?)")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	j, err := domain.NewJobApplication("Engineer", 3, "", "2025-01-10", "", "applied")
	require.NoError(t, err)

	err = s.Jobs.Save(context.Background(), &j)
	assert.True(t, IsReferential(err), "got %T: %v", err, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTags_GetAllQueryFailure(t *testing.T) {
	s, mock := newMockStores(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, tag_type FROM tags ORDER BY id")).
		WillReturnError(errors.New("no such table: tags"))

	_, err := s.Tags.GetAll(context.Background())
	assert.True(t, IsStorage(err), "got %T: %v", err, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobs_UpdateWritesOnlyPatchedColumns(t *testing.T) {
	s, mock := newMockStores(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM job_applications WHERE job_applications.id = ?")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "job_title", "company_id", "description", "date_applied", "last_follow_up", "status",
		}).AddRow(1, "Engineer", 2, nil, "2025-01-10", nil, "applied"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE job_applications SET status = ? WHERE id = ?")).
		WithArgs("offer", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	updated, found, err := s.Jobs.Update(context.Background(), 1, domain.JobPatch{domain.FieldStatus: "offer"})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, domain.StatusOffer, updated.Status)
	assert.Equal(t, "Engineer", updated.JobTitle)
	assert.NoError(t, mock.ExpectationsWereMet())
}
