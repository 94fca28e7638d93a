package model

import "strconv"

// MenuItem is a dish on a restaurant menu.
type MenuItem struct {
	ID           ID      `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	Category     string  `json:"category,omitempty"`
	Price        float64 `json:"price"`
	RestaurantID ID      `json:"restaurant_id,omitempty"`
	OnHomePage   bool    `json:"on_homePage"`
	Available    bool    `json:"is_available"`
	Popular      bool    `json:"is_popular"`
}

func (m MenuItem) Key() string   { return string(m.ID) }
func (m MenuItem) Label() string { return first(m.Name, string(m.ID)) }

func (m MenuItem) Text(field string) (string, bool) {
	switch field {
	case "name":
		return m.Name, true
	case "description":
		return m.Description, true
	case "category":
		return m.Category, true
	case "price":
		return strconv.FormatFloat(m.Price, 'f', 2, 64), true
	}
	return "", false
}

func (m MenuItem) Flag(field string) (bool, bool) {
	switch field {
	case "on_homePage":
		return m.OnHomePage, true
	case "is_available":
		return m.Available, true
	case "is_popular":
		return m.Popular, true
	}
	return false, false
}

func (m MenuItem) WithFlag(field string, value bool) (MenuItem, bool) {
	switch field {
	case "on_homePage":
		m.OnHomePage = value
	case "is_available":
		m.Available = value
	case "is_popular":
		m.Popular = value
	default:
		return m, false
	}
	return m, true
}

func (MenuItem) TextFields() []string { return []string{"name", "description", "category"} }
func (MenuItem) FlagFields() []string { return []string{"on_homePage", "is_available", "is_popular"} }
