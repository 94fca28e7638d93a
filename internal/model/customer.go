package model

// Customer is an end user account. The API calls these "users".
type Customer struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Blocked  bool   `json:"is_blocked"`
	Verified bool   `json:"is_verified"`
}

func (c Customer) Key() string   { return string(c.ID) }
func (c Customer) Label() string { return first(c.Name, c.Email, string(c.ID)) }

func (c Customer) Text(field string) (string, bool) {
	switch field {
	case "name":
		return c.Name, true
	case "email":
		return c.Email, true
	case "phone":
		return c.Phone, true
	}
	return "", false
}

func (c Customer) Flag(field string) (bool, bool) {
	switch field {
	case "is_blocked":
		return c.Blocked, true
	case "is_verified":
		return c.Verified, true
	}
	return false, false
}

func (c Customer) WithFlag(field string, value bool) (Customer, bool) {
	switch field {
	case "is_blocked":
		c.Blocked = value
	case "is_verified":
		c.Verified = value
	default:
		return c, false
	}
	return c, true
}

func (Customer) TextFields() []string { return []string{"name", "email", "phone"} }
func (Customer) FlagFields() []string { return []string{"is_blocked", "is_verified"} }
