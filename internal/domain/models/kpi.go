package models

import "time"

// KPI is a Key Performance Indicator record. KPIs are authored outside the
// node tree; this service only reads them for selection lists and keeps
// AssociatedProcesses in sync with each file node's selected_kpis list.
type KPI struct {
	ID          string `bson:"_id"                   json:"id"`
	UserID      string `bson:"user_id"               json:"user_id"`
	Name        string `bson:"name"                  json:"name"`
	NameCI      string `bson:"name_ci"               json:"-"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Target      string `bson:"target,omitempty"      json:"target,omitempty"`
	Unit        string `bson:"unit,omitempty"        json:"unit,omitempty"`

	// AssociatedProcesses lists the ids of file nodes that selected this KPI.
	AssociatedProcesses []string `bson:"associated_bpmn_processes,omitempty" json:"associated_bpmn_processes,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
