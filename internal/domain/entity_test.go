package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCompany(t *testing.T) {
	c, err := NewCompany("  Acme ", " acme.io", "hr@acme.io ")
	require.NoError(t, err)
	assert.Equal(t, "Acme", c.Name)
	assert.Equal(t, "acme.io", c.Website)
	assert.Equal(t, "hr@acme.io", c.ContactInfo)
	assert.Zero(t, c.ID)

	_, err = NewCompany("   ", "", "")
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "company", ve.Entity)
	assert.Equal(t, "name", ve.Field)
}

func TestNewCompany_NormalizesUnicode(t *testing.T) {
	decomposed := "Cafe\u0301"
	c, err := NewCompany(decomposed, "", "")
	require.NoError(t, err)
	assert.Equal(t, "Caf\u00e9", c.Name)
}

func TestNewTag(t *testing.T) {
	tag, err := NewTag("remote", "Location")
	require.NoError(t, err)
	assert.Equal(t, "remote", tag.Name)
	assert.Equal(t, TagTypeLocation, tag.TagType)

	_, err = NewTag("remote", "salary")
	assert.True(t, IsValidationError(err))

	_, err = NewTag("", "length")
	assert.True(t, IsValidationError(err))
}

func TestTag_ValidateCatchesStructLiterals(t *testing.T) {
	assert.Error(t, Tag{Name: "x", TagType: "other"}.Validate())
	assert.NoError(t, Tag{Name: "x", TagType: TagTypeLength}.Validate())
}

func TestNewJobApplication(t *testing.T) {
	j, err := NewJobApplication("Engineer", 1, "build stuff", "2025-01-10", "", "applied")
	require.NoError(t, err)
	assert.Equal(t, "Engineer", j.JobTitle)
	assert.Equal(t, int64(1), j.CompanyID)
	assert.Equal(t, "2025-01-10", j.DateApplied.String())
	assert.Nil(t, j.LastFollowUp)
	assert.Equal(t, StatusApplied, j.Status)
}

func TestNewJobApplication_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		applied  string
		followUp string
		status   string
		field    string
	}{
		{"empty title", " ", "2025-01-10", "", "applied", "job_title"},
		{"bad applied date", "Engineer", "10-01-2025", "", "applied", "date_applied"},
		{"bad follow-up date", "Engineer", "2025-01-10", "soon", "applied", "last_follow_up"},
		{"follow-up before applied", "Engineer", "2025-01-10", "2025-01-09", "applied", "last_follow_up"},
		{"unknown status", "Engineer", "2025-01-10", "", "ghosted", "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewJobApplication(tt.title, 1, "", tt.applied, tt.followUp, tt.status)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestNewJobApplication_FollowUpSameDayAllowed(t *testing.T) {
	j, err := NewJobApplication("Engineer", 1, "", "2025-01-10", "2025-01-10", "pending")
	require.NoError(t, err)
	require.NotNil(t, j.LastFollowUp)
	assert.Equal(t, "2025-01-10", j.LastFollowUp.String())
}
