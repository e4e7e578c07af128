package domain

import (
	"strings"
)

// Status is the stage a job application has reached.
type Status string

const (
	StatusApplied  Status = "applied"
	StatusPending  Status = "pending"
	StatusRejected Status = "rejected"
	StatusOffer    Status = "offer"
)

// Statuses lists every valid Status.
var Statuses = []Status{StatusApplied, StatusPending, StatusRejected, StatusOffer}

// ParseStatus accepts a status in any letter case.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", invalid("job_application", "status", "%q must be one of %v", s, Statuses)
	}
	return st, nil
}

// Valid reports whether s is one of Statuses.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// JobApplication is a single application filed with a Company.
type JobApplication struct {
	ID           int64  `json:"id"`
	JobTitle     string `json:"job_title"`
	CompanyID    int64  `json:"company_id"`
	Description  string `json:"description,omitempty"`
	DateApplied  Date   `json:"date_applied"`
	LastFollowUp *Date  `json:"last_follow_up,omitempty"`
	Status       Status `json:"status"`
}

// NewJobApplication builds a validated JobApplication with no id assigned.
// Dates use YYYY-MM-DD; an empty lastFollowUp means no follow-up yet.
//
// Whether companyID refers to an existing company can only be answered by the
// store, so it is not checked here.
func NewJobApplication(jobTitle string, companyID int64, description, dateApplied, lastFollowUp, status string) (JobApplication, error) {
	applied, err := ParseDate(dateApplied)
	if err != nil {
		return JobApplication{}, invalid("job_application", "date_applied", "%v", err)
	}

	var followUp *Date
	if strings.TrimSpace(lastFollowUp) != "" {
		d, err := ParseDate(lastFollowUp)
		if err != nil {
			return JobApplication{}, invalid("job_application", "last_follow_up", "%v", err)
		}
		followUp = &d
	}

	st, err := ParseStatus(status)
	if err != nil {
		return JobApplication{}, err
	}

	j := JobApplication{
		JobTitle:     jobTitle,
		CompanyID:    companyID,
		Description:  description,
		DateApplied:  applied,
		LastFollowUp: followUp,
		Status:       st,
	}.Normalize()
	if err := j.Validate(); err != nil {
		return JobApplication{}, err
	}
	return j, nil
}

// Normalize returns a copy of j with text fields cleaned and the status
// lowercased. A zero LastFollowUp is folded into nil.
func (j JobApplication) Normalize() JobApplication {
	j.JobTitle = CleanText(j.JobTitle)
	j.Description = CleanText(j.Description)
	j.Status = Status(strings.ToLower(strings.TrimSpace(string(j.Status))))
	if j.LastFollowUp != nil {
		if j.LastFollowUp.IsZero() {
			j.LastFollowUp = nil
		} else {
			d := *j.LastFollowUp
			j.LastFollowUp = &d
		}
	}
	return j
}

// Validate checks every JobApplication invariant except company existence.
func (j JobApplication) Validate() error {
	if CleanText(j.JobTitle) == "" {
		return invalid("job_application", "job_title", "must not be empty")
	}
	if j.DateApplied.IsZero() {
		return invalid("job_application", "date_applied", "is required")
	}
	if !j.Status.Valid() {
		return invalid("job_application", "status", "%q must be one of %v", string(j.Status), Statuses)
	}
	return j.validateDates()
}

func (j JobApplication) validateDates() error {
	if j.LastFollowUp != nil && !j.LastFollowUp.IsZero() && j.LastFollowUp.Before(j.DateApplied) {
		return invalid("job_application", "last_follow_up",
			"%s is earlier than date_applied %s", j.LastFollowUp, j.DateApplied)
	}
	return nil
}
