package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/jobtrack/internal/domain"
)

func TestJobTags_CreateAndQuery(t *testing.T) {
	s := createTestStores(t)
	ctx := context.Background()
	c := createTestCompany(t, s, "Acme")
	j1 := createTestJob(t, s, "Engineer", c.ID)
	j2 := createTestJob(t, s, "Manager", c.ID)
	remote := createTestTag(t, s, "remote", domain.TagTypeLocation)
	full := createTestTag(t, s, "full-time", domain.TagTypeLength)

	link, err := s.JobTags.Create(ctx, j1.ID, full.ID)
	require.NoError(t, err)
	assert.NotZero(t, link.ID)
	assert.Equal(t, j1.ID, link.JobID)
	assert.Equal(t, full.ID, link.TagID)

	_, err = s.JobTags.Create(ctx, j1.ID, remote.ID)
	require.NoError(t, err)
	_, err = s.JobTags.Create(ctx, j2.ID, remote.ID)
	require.NoError(t, err)

	tags, err := s.JobTags.GetTagsForJob(ctx, j1.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.Tag{remote, full}, tags)

	jobs, err := s.JobTags.GetJobsByTag(ctx, remote.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.JobSummary{
		{ID: j1.ID, JobTitle: "Engineer"},
		{ID: j2.ID, JobTitle: "Manager"},
	}, jobs)

	all, err := s.JobTags.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestJobTags_EmptyResults(t *testing.T) {
	s := createTestStores(t)
	ctx := context.Background()

	tags, err := s.JobTags.GetTagsForJob(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, tags)

	jobs, err := s.JobTags.GetJobsByTag(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestJobTags_DuplicateConflicts(t *testing.T) {
	s := createTestStores(t)
	ctx := context.Background()
	c := createTestCompany(t, s, "Acme")
	j := createTestJob(t, s, "Engineer", c.ID)
	tag := createTestTag(t, s, "remote", domain.TagTypeLocation)

	_, err := s.JobTags.Create(ctx, j.ID, tag.ID)
	require.NoError(t, err)

	_, err = s.JobTags.Create(ctx, j.ID, tag.ID)
	require.Error(t, err)
	assert.True(t, IsConflict(err), "got %T: %v", err, err)
	assert.True(t, errors.Is(err, ErrAlreadyExists))

	tags, err := s.JobTags.GetTagsForJob(ctx, j.ID)
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestJobTags_SaveDuplicateConflicts(t *testing.T) {
	s := createTestStores(t)
	ctx := context.Background()
	c := createTestCompany(t, s, "Acme")
	j := createTestJob(t, s, "Engineer", c.ID)
	tag := createTestTag(t, s, "remote", domain.TagTypeLocation)

	first := domain.JobApplicationTag{JobID: j.ID, TagID: tag.ID}
	require.NoError(t, s.JobTags.Save(ctx, &first))
	assert.NotZero(t, first.ID)

	second := domain.JobApplicationTag{JobID: j.ID, TagID: tag.ID}
	err := s.JobTags.Save(ctx, &second)
	assert.True(t, IsConflict(err), "got %T: %v", err, err)
	assert.Zero(t, second.ID)
	assert.Equal(t, 1, countRows(t, s, "job_application_tags"))
}

func TestJobTags_SaveDanglingIsReferential(t *testing.T) {
	s := createTestStores(t)

	link := domain.JobApplicationTag{JobID: 10, TagID: 20}
	err := s.JobTags.Save(context.Background(), &link)
	assert.True(t, IsReferential(err), "got %T: %v", err, err)
	assert.Equal(t, 0, countRows(t, s, "job_application_tags"))
}

func TestJobTags_CreateUnknownSides(t *testing.T) {
	s := createTestStores(t)
	ctx := context.Background()
	c := createTestCompany(t, s, "Acme")
	j := createTestJob(t, s, "Engineer", c.ID)
	tag := createTestTag(t, s, "remote", domain.TagTypeLocation)

	tests := []struct {
		name  string
		jobID int64
		tagID int64
		field string
	}{
		{"unknown job", 99, tag.ID, "job_id"},
		{"unknown tag", j.ID, 99, "tag_id"},
		{"both unknown", 98, 99, "job_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.JobTags.Create(ctx, tt.jobID, tt.tagID)
			var re *ReferentialError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.field, re.Field)
		})
	}
	assert.Equal(t, 0, countRows(t, s, "job_application_tags"))
}

func TestJobTags_DeleteTagFromJob(t *testing.T) {
	s := createTestStores(t)
	ctx := context.Background()
	c := createTestCompany(t, s, "Acme")
	j := createTestJob(t, s, "Engineer", c.ID)
	remote := createTestTag(t, s, "remote", domain.TagTypeLocation)
	full := createTestTag(t, s, "full-time", domain.TagTypeLength)

	_, err := s.JobTags.Create(ctx, j.ID, remote.ID)
	require.NoError(t, err)

	// Detaching a tag that was never attached changes nothing.
	removed, err := s.JobTags.DeleteTagFromJob(ctx, j.ID, full.ID)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 1, countRows(t, s, "job_application_tags"))

	removed, err = s.JobTags.DeleteTagFromJob(ctx, j.ID, remote.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	tags, err := s.JobTags.GetTagsForJob(ctx, j.ID)
	require.NoError(t, err)
	assert.Empty(t, tags)

	// Both sides of the link survive.
	assert.Equal(t, 1, countRows(t, s, "job_applications"))
	assert.Equal(t, 2, countRows(t, s, "tags"))
}
