package model

import "strconv"

// Coupon is a discount code. Discount is a percentage.
type Coupon struct {
	ID          ID      `json:"id"`
	Code        string  `json:"code"`
	Description string  `json:"description,omitempty"`
	Discount    float64 `json:"discount"`
	ExpiresAt   string  `json:"expires_at,omitempty"`
	Active      bool    `json:"is_active"`
}

func (c Coupon) Key() string   { return string(c.ID) }
func (c Coupon) Label() string { return first(c.Code, string(c.ID)) }

func (c Coupon) Text(field string) (string, bool) {
	switch field {
	case "code":
		return c.Code, true
	case "description":
		return c.Description, true
	case "discount":
		return strconv.FormatFloat(c.Discount, 'f', -1, 64), true
	case "expires_at":
		return c.ExpiresAt, true
	}
	return "", false
}

func (c Coupon) Flag(field string) (bool, bool) {
	if field == "is_active" {
		return c.Active, true
	}
	return false, false
}

func (c Coupon) WithFlag(field string, value bool) (Coupon, bool) {
	if field != "is_active" {
		return c, false
	}
	c.Active = value
	return c, true
}

func (Coupon) TextFields() []string { return []string{"code", "description"} }
func (Coupon) FlagFields() []string { return []string{"is_active"} }
