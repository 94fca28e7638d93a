package model

// Restaurant is a partner restaurant listed on the platform.
type Restaurant struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	City     string `json:"city,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Active   bool   `json:"is_active"`
	Featured bool   `json:"is_featured"`
}

func (r Restaurant) Key() string   { return string(r.ID) }
func (r Restaurant) Label() string { return first(r.Name, string(r.ID)) }

func (r Restaurant) Text(field string) (string, bool) {
	switch field {
	case "name":
		return r.Name, true
	case "address":
		return r.Address, true
	case "city":
		return r.City, true
	case "phone":
		return r.Phone, true
	}
	return "", false
}

func (r Restaurant) Flag(field string) (bool, bool) {
	switch field {
	case "is_active":
		return r.Active, true
	case "is_featured":
		return r.Featured, true
	}
	return false, false
}

func (r Restaurant) WithFlag(field string, value bool) (Restaurant, bool) {
	switch field {
	case "is_active":
		r.Active = value
	case "is_featured":
		r.Featured = value
	default:
		return r, false
	}
	return r, true
}

func (Restaurant) TextFields() []string { return []string{"name", "address", "city", "phone"} }
func (Restaurant) FlagFields() []string { return []string{"is_active", "is_featured"} }
