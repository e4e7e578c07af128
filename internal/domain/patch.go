package domain

import (
	"sort"
	"strconv"
	"strings"
)

// JobField names a JobApplication field that can be changed by a JobPatch.
// Values match the column names.
type JobField string

const (
	FieldJobTitle     JobField = "job_title"
	FieldCompanyID    JobField = "company_id"
	FieldDescription  JobField = "description"
	FieldDateApplied  JobField = "date_applied"
	FieldLastFollowUp JobField = "last_follow_up"
	FieldStatus       JobField = "status"
)

// JobFields is the allow-list of patchable fields.
var JobFields = []JobField{
	FieldJobTitle,
	FieldCompanyID,
	FieldDescription,
	FieldDateApplied,
	FieldLastFollowUp,
	FieldStatus,
}

func (f JobField) valid() bool {
	for _, v := range JobFields {
		if f == v {
			return true
		}
	}
	return false
}

// JobPatch is a sparse set of field changes for a JobApplication.
// Fields absent from the patch keep their stored value. An empty value
// clears an optional field (description, last_follow_up).
type JobPatch map[JobField]string

// ParseJobPatch builds a JobPatch from raw field names, rejecting any name
// that is not in JobFields.
func ParseJobPatch(changes map[string]string) (JobPatch, error) {
	p := make(JobPatch, len(changes))
	for k, v := range changes {
		f := JobField(strings.ToLower(strings.TrimSpace(k)))
		if !f.valid() {
			return nil, invalid("job_application", k, "unknown field, expected one of %v", JobFields)
		}
		p[f] = v
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate rejects empty patches and unknown fields.
func (p JobPatch) Validate() error {
	if len(p) == 0 {
		return invalid("job_application", "", "no fields to update")
	}
	for f := range p {
		if !f.valid() {
			return invalid("job_application", string(f), "unknown field, expected one of %v", JobFields)
		}
	}
	return nil
}

// Fields returns the patched fields in a stable order.
func (p JobPatch) Fields() []JobField {
	fields := make([]JobField, 0, len(p))
	for f := range p {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}

// Has reports whether f is part of the patch.
func (p JobPatch) Has(f JobField) bool {
	_, ok := p[f]
	return ok
}

// Apply returns a copy of j with the patch applied. Only the patched fields
// are validated, plus date ordering whenever either date changes. j itself is
// never modified.
func (j JobApplication) Apply(p JobPatch) (JobApplication, error) {
	if err := p.Validate(); err != nil {
		return JobApplication{}, err
	}

	out := j
	for _, f := range p.Fields() {
		raw := p[f]
		switch f {
		case FieldJobTitle:
			title := CleanText(raw)
			if title == "" {
				return JobApplication{}, invalid("job_application", string(f), "must not be empty")
			}
			out.JobTitle = title

		case FieldCompanyID:
			id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
			if err != nil {
				return JobApplication{}, invalid("job_application", string(f), "%q is not an integer id", raw)
			}
			out.CompanyID = id

		case FieldDescription:
			out.Description = CleanText(raw)

		case FieldDateApplied:
			d, err := ParseDate(raw)
			if err != nil {
				return JobApplication{}, invalid("job_application", string(f), "%v", err)
			}
			out.DateApplied = d

		case FieldLastFollowUp:
			if strings.TrimSpace(raw) == "" {
				out.LastFollowUp = nil
				continue
			}
			d, err := ParseDate(raw)
			if err != nil {
				return JobApplication{}, invalid("job_application", string(f), "%v", err)
			}
			out.LastFollowUp = &d

		case FieldStatus:
			st, err := ParseStatus(raw)
			if err != nil {
				return JobApplication{}, err
			}
			out.Status = st
		}
	}

	if p.Has(FieldDateApplied) || p.Has(FieldLastFollowUp) {
		if err := out.validateDates(); err != nil {
			return JobApplication{}, err
		}
	}
	return out, nil
}

// Column returns the storage value of field f on j.
func (j JobApplication) Column(f JobField) any {
	switch f {
	case FieldJobTitle:
		return j.JobTitle
	case FieldCompanyID:
		return j.CompanyID
	case FieldDescription:
		if j.Description == "" {
			return nil
		}
		return j.Description
	case FieldDateApplied:
		return j.DateApplied.String()
	case FieldLastFollowUp:
		if j.LastFollowUp == nil || j.LastFollowUp.IsZero() {
			return nil
		}
		return j.LastFollowUp.String()
	case FieldStatus:
		return string(j.Status)
	default:
		return nil
	}
}
