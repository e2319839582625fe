package models

// Product is an item an exhibitor announced for the fair, keyed back to
// its exhibitor by CompanyID.
type Product struct {
	Title     string         `json:"title"`
	CompanyID string         `json:"company_id"`
	Subtitle  string         `json:"subtitle,omitempty"`
	Info      string         `json:"info,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}
