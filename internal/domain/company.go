package domain

// Company is an employer that job applications are filed against.
type Company struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Website     string `json:"website,omitempty"`
	ContactInfo string `json:"contact_info,omitempty"`
}

// NewCompany builds a validated Company with no id assigned.
func NewCompany(name, website, contactInfo string) (Company, error) {
	c := Company{
		Name:        name,
		Website:     website,
		ContactInfo: contactInfo,
	}.Normalize()
	if err := c.Validate(); err != nil {
		return Company{}, err
	}
	return c, nil
}

// Normalize returns a copy of c with every text field cleaned.
func (c Company) Normalize() Company {
	c.Name = CleanText(c.Name)
	c.Website = CleanText(c.Website)
	c.ContactInfo = CleanText(c.ContactInfo)
	return c
}

// Validate checks the Company invariants.
func (c Company) Validate() error {
	if CleanText(c.Name) == "" {
		return invalid("company", "name", "must not be empty")
	}
	return nil
}
