package catalog

// createKPIRequest is the body for POST /api/kpis.
type createKPIRequest struct {
	ID          string `json:"id,omitempty"`
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Target      string `json:"target,omitempty"`
	Unit        string `json:"unit,omitempty"`
}

// createStandardRequest is the body for POST /api/standards.
type createStandardRequest struct {
	ID          string `json:"id,omitempty"`
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Reference   string `json:"reference,omitempty"`
	Description string `json:"description,omitempty"`
}
