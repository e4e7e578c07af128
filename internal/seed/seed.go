package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/jobtrack/internal/domain"
	"github.com/roach88/jobtrack/internal/store"
)

// CreateTables creates every table in dependency order.
func CreateTables(ctx context.Context, s *store.Stores) error {
	if err := s.CreateTables(ctx); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

// DropTables drops every table in reverse dependency order.
func DropTables(ctx context.Context, s *store.Stores) error {
	if err := s.DropTables(ctx); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	return nil
}

// Reset drops and recreates every table, leaving an empty schema.
func Reset(ctx context.Context, s *store.Stores) error {
	if err := DropTables(ctx, s); err != nil {
		return err
	}
	return CreateTables(ctx, s)
}

// Summary counts the rows Apply wrote.
type Summary struct {
	Companies int `json:"companies"`
	Tags      int `json:"tags"`
	Jobs      int `json:"jobs"`
	JobTags   int `json:"job_tags"`
}

// Apply writes f through the entity stores.
//
// The whole fixture is validated before the first write. Every entity must
// satisfy its invariants and no fixture tag may already be stored. Every
// company or tag a job names must be defined in the fixture or already
// present in the database.
func Apply(ctx context.Context, s *store.Stores, f Fixture) (Summary, error) {
	var sum Summary

	p, err := f.plan()
	if err != nil {
		return sum, err
	}
	if err := checkReferences(ctx, s, f, p); err != nil {
		return sum, err
	}

	companyIDs := make(map[string]int64, len(p.companies))
	for i := range p.companies {
		c := p.companies[i]
		if err := s.Companies.Save(ctx, &c); err != nil {
			return sum, fmt.Errorf("companies[%d]: %w", i, err)
		}
		companyIDs[c.Name] = c.ID
		sum.Companies++
	}

	tagIDs := make(map[string]int64, len(p.tags))
	for i := range p.tags {
		t := p.tags[i]
		if err := s.Tags.Save(ctx, &t); err != nil {
			return sum, fmt.Errorf("tags[%d]: %w", i, err)
		}
		tagIDs[tagKey(t.Name)] = t.ID
		sum.Tags++
	}

	for i, jf := range f.Jobs {
		j := p.jobs[i]
		j.CompanyID, err = resolveCompany(ctx, s, companyIDs, jf.Company)
		if err != nil {
			return sum, fmt.Errorf("jobs[%d]: %w", i, err)
		}
		if err := s.Jobs.Save(ctx, &j); err != nil {
			return sum, fmt.Errorf("jobs[%d]: %w", i, err)
		}
		sum.Jobs++

		for _, name := range jf.Tags {
			tagID, err := resolveTag(ctx, s, tagIDs, name)
			if err != nil {
				return sum, fmt.Errorf("jobs[%d]: %w", i, err)
			}
			if _, err := s.JobTags.Create(ctx, j.ID, tagID); err != nil {
				return sum, fmt.Errorf("jobs[%d] tag %q: %w", i, name, err)
			}
			sum.JobTags++
		}
	}

	return sum, nil
}

// checkReferences verifies that no fixture tag is already stored and that
// every company and tag named by a job can be resolved, without writing
// anything.
func checkReferences(ctx context.Context, s *store.Stores, f Fixture, p plan) error {
	companies := make(map[string]bool, len(p.companies))
	for _, c := range p.companies {
		companies[c.Name] = true
	}
	tags := make(map[string]bool, len(p.tags))
	for i, t := range p.tags {
		_, exists, err := s.Tags.FindByName(ctx, t.Name)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("tags[%d]: %w", i, &store.ConflictError{
				Entity:  "tag",
				Message: fmt.Sprintf("tag %q already exists", t.Name),
			})
		}
		tags[tagKey(t.Name)] = true
	}

	for i, jf := range f.Jobs {
		name := domain.CleanText(jf.Company)
		if !companies[name] {
			_, found, err := s.Companies.FindByName(ctx, name)
			if err != nil {
				return err
			}
			if !found {
				return unresolved(fmt.Sprintf("jobs[%d].company", i), "company", jf.Company)
			}
		}

		for k, tag := range jf.Tags {
			if tags[tagKey(tag)] {
				continue
			}
			_, found, err := s.Tags.FindByName(ctx, tag)
			if err != nil {
				return err
			}
			if !found {
				return unresolved(fmt.Sprintf("jobs[%d].tags[%d]", i, k), "tag", tag)
			}
		}
	}
	return nil
}

func resolveCompany(ctx context.Context, s *store.Stores, ids map[string]int64, name string) (int64, error) {
	name = domain.CleanText(name)
	if id, ok := ids[name]; ok {
		return id, nil
	}
	c, found, err := s.Companies.FindByName(ctx, name)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, unresolved("company", "company", name)
	}
	return c.ID, nil
}

func resolveTag(ctx context.Context, s *store.Stores, ids map[string]int64, name string) (int64, error) {
	if id, ok := ids[tagKey(name)]; ok {
		return id, nil
	}
	t, found, err := s.Tags.FindByName(ctx, name)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, unresolved("tag", "tag", name)
	}
	return t.ID, nil
}

// tagKey folds a tag name the way the tags table compares names.
func tagKey(name string) string {
	return strings.ToLower(domain.CleanText(name))
}

func unresolved(field, entity, name string) error {
	return &domain.ValidationError{
		Entity:  "fixture",
		Field:   field,
		Message: fmt.Sprintf("%s %q is not defined", entity, name),
	}
}
