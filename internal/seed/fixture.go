package seed

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/jobtrack/internal/domain"
)

//go:embed sample.yaml
var sampleYAML []byte

//go:embed schema.cue
var schemaCUE string

// Fixture is a data set to load into an empty or existing database.
type Fixture struct {
	Companies []CompanyFixture `yaml:"companies" json:"companies"`
	Tags      []TagFixture     `yaml:"tags" json:"tags"`
	Jobs      []JobFixture     `yaml:"jobs" json:"jobs"`
}

// CompanyFixture describes one company.
type CompanyFixture struct {
	Name        string `yaml:"name" json:"name"`
	Website     string `yaml:"website,omitempty" json:"website,omitempty"`
	ContactInfo string `yaml:"contact_info,omitempty" json:"contact_info,omitempty"`
}

// TagFixture describes one tag.
type TagFixture struct {
	Name    string `yaml:"name" json:"name"`
	TagType string `yaml:"tag_type" json:"tag_type"`
}

// JobFixture describes one job application. Company and Tags are names, not
// ids. Dates use YYYY-MM-DD; Status defaults to "applied".
type JobFixture struct {
	JobTitle     string   `yaml:"job_title" json:"job_title"`
	Company      string   `yaml:"company" json:"company"`
	Description  string   `yaml:"description,omitempty" json:"description,omitempty"`
	DateApplied  string   `yaml:"date_applied" json:"date_applied"`
	LastFollowUp string   `yaml:"last_follow_up,omitempty" json:"last_follow_up,omitempty"`
	Status       string   `yaml:"status,omitempty" json:"status,omitempty"`
	Tags         []string `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// Sample returns the built-in sample data set.
func Sample() (Fixture, error) {
	f, err := decodeYAML(sampleYAML)
	if err != nil {
		return Fixture{}, fmt.Errorf("sample fixture: %w", err)
	}
	return f, nil
}

// LoadFixture reads a fixture from path. The format is chosen by extension:
// .yaml and .yml are decoded strictly, so misspelled keys are rejected;
// .cue files are checked against the fixture schema before decoding.
func LoadFixture(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("failed to read fixture file: %w", err)
	}

	var f Fixture
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		f, err = decodeYAML(data)
	case ".cue":
		f, err = decodeCUE(data, path)
	default:
		return Fixture{}, fmt.Errorf("unsupported fixture format %q (want .yaml, .yml or .cue)", ext)
	}
	if err != nil {
		return Fixture{}, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

func decodeYAML(data []byte) (Fixture, error) {
	var f Fixture
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return Fixture{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return f, nil
}

func decodeCUE(data []byte, filename string) (Fixture, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Fixture{}, fmt.Errorf("compiling fixture schema: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return Fixture{}, fmt.Errorf("building CUE value: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Fixture")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return Fixture{}, fmt.Errorf("fixture does not match schema: %w", err)
	}

	var f Fixture
	if err := unified.Decode(&f); err != nil {
		return Fixture{}, fmt.Errorf("decoding fixture: %w", err)
	}
	return f, nil
}

// plan holds the validated domain values of a fixture, index-aligned with
// the fixture slices. Job company ids are resolved at write time.
type plan struct {
	companies []domain.Company
	tags      []domain.Tag
	jobs      []domain.JobApplication
}

func (f Fixture) plan() (plan, error) {
	var p plan

	seen := make(map[string]bool, len(f.Companies))
	for i, cf := range f.Companies {
		c, err := domain.NewCompany(cf.Name, cf.Website, cf.ContactInfo)
		if err != nil {
			return plan{}, fmt.Errorf("companies[%d]: %w", i, err)
		}
		if seen[c.Name] {
			return plan{}, duplicate(fmt.Sprintf("companies[%d].name", i), "company", c.Name)
		}
		seen[c.Name] = true
		p.companies = append(p.companies, c)
	}

	seen = make(map[string]bool, len(f.Tags))
	for i, tf := range f.Tags {
		t, err := domain.NewTag(tf.Name, tf.TagType)
		if err != nil {
			return plan{}, fmt.Errorf("tags[%d]: %w", i, err)
		}
		if seen[tagKey(t.Name)] {
			return plan{}, duplicate(fmt.Sprintf("tags[%d].name", i), "tag", t.Name)
		}
		seen[tagKey(t.Name)] = true
		p.tags = append(p.tags, t)
	}

	for i, jf := range f.Jobs {
		status := jf.Status
		if strings.TrimSpace(status) == "" {
			status = string(domain.StatusApplied)
		}
		// Company id 0 is a placeholder; Apply resolves it by name.
		j, err := domain.NewJobApplication(jf.JobTitle, 0, jf.Description, jf.DateApplied, jf.LastFollowUp, status)
		if err != nil {
			return plan{}, fmt.Errorf("jobs[%d]: %w", i, err)
		}
		if domain.CleanText(jf.Company) == "" {
			return plan{}, &domain.ValidationError{
				Entity: "fixture", Field: fmt.Sprintf("jobs[%d].company", i), Message: "must not be empty",
			}
		}
		p.jobs = append(p.jobs, j)
	}

	return p, nil
}

func duplicate(field, entity, name string) error {
	return &domain.ValidationError{
		Entity:  "fixture",
		Field:   field,
		Message: fmt.Sprintf("%s %q is defined more than once", entity, name),
	}
}
