package model

// LegalPage is a static page such as the terms of service or privacy policy.
type LegalPage struct {
	ID        ID     `json:"id"`
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	Body      string `json:"body,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
	Published bool   `json:"is_published"`
}

func (p LegalPage) Key() string   { return string(p.ID) }
func (p LegalPage) Label() string { return first(p.Title, p.Slug, string(p.ID)) }

func (p LegalPage) Text(field string) (string, bool) {
	switch field {
	case "slug":
		return p.Slug, true
	case "title":
		return p.Title, true
	case "body":
		return p.Body, true
	}
	return "", false
}

func (p LegalPage) Flag(field string) (bool, bool) {
	if field == "is_published" {
		return p.Published, true
	}
	return false, false
}

func (p LegalPage) WithFlag(field string, value bool) (LegalPage, bool) {
	if field != "is_published" {
		return p, false
	}
	p.Published = value
	return p, true
}

func (LegalPage) TextFields() []string { return []string{"slug", "title"} }
func (LegalPage) FlagFields() []string { return []string{"is_published"} }
