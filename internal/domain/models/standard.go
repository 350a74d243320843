package models

import "time"

// Standard is a compliance standard (e.g. an ISO clause) that file nodes can
// reference via selected_standards. Like KPIs, standards carry a reverse
// list of the processes that selected them.
type Standard struct {
	ID          string `bson:"_id"                   json:"id"`
	UserID      string `bson:"user_id"               json:"user_id"`
	Name        string `bson:"name"                  json:"name"`
	NameCI      string `bson:"name_ci"               json:"-"`
	Reference   string `bson:"reference,omitempty"   json:"reference,omitempty"` // e.g. "ISO 9001:2015 8.5.1"
	Description string `bson:"description,omitempty" json:"description,omitempty"`

	AssociatedProcesses []string `bson:"associated_bpmn_processes,omitempty" json:"associated_bpmn_processes,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
