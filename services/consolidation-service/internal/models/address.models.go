package models

// DeliveryAddress comes from the address book service. The engine only
// reads Country; the rest rides along for logging and the order payload.
type DeliveryAddress struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country"`
}
