package domain

// JobApplicationTag links one JobApplication to one Tag.
// The pair (JobID, TagID) is unique.
type JobApplicationTag struct {
	ID    int64 `json:"id"`
	JobID int64 `json:"job_id"`
	TagID int64 `json:"tag_id"`
}

// JobSummary is the id and title of a job application, as returned by
// tag-side relationship queries.
type JobSummary struct {
	ID       int64  `json:"id"`
	JobTitle string `json:"job_title"`
}
