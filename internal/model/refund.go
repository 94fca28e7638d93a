package model

import "strconv"

// Refund is a customer refund request against an order.
type Refund struct {
	ID           ID      `json:"id"`
	OrderID      ID      `json:"order_id"`
	CustomerName string  `json:"customer_name,omitempty"`
	Amount       float64 `json:"amount"`
	Reason       string  `json:"reason,omitempty"`
	Status       string  `json:"status,omitempty"`
	Approved     bool    `json:"is_approved"`
	Processed    bool    `json:"is_processed"`
}

func (r Refund) Key() string { return string(r.ID) }

func (r Refund) Label() string {
	if r.OrderID != "" {
		return "order #" + string(r.OrderID)
	}
	return string(r.ID)
}

func (r Refund) Text(field string) (string, bool) {
	switch field {
	case "order_id":
		return string(r.OrderID), true
	case "customer_name":
		return r.CustomerName, true
	case "reason":
		return r.Reason, true
	case "status":
		return r.Status, true
	case "amount":
		return strconv.FormatFloat(r.Amount, 'f', 2, 64), true
	}
	return "", false
}

func (r Refund) Flag(field string) (bool, bool) {
	switch field {
	case "is_approved":
		return r.Approved, true
	case "is_processed":
		return r.Processed, true
	}
	return false, false
}

func (r Refund) WithFlag(field string, value bool) (Refund, bool) {
	switch field {
	case "is_approved":
		r.Approved = value
	case "is_processed":
		r.Processed = value
	default:
		return r, false
	}
	return r, true
}

func (Refund) TextFields() []string { return []string{"order_id", "customer_name", "reason", "status"} }
func (Refund) FlagFields() []string { return []string{"is_approved", "is_processed"} }
