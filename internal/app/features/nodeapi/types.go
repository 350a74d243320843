package nodeapi

import "github.com/dalemusser/procdoc/internal/domain/models"

// createRequest is the body for POST /api/nodes.
//
// ID is optional: the tree widget generates ids client-side for optimistic
// rendering, and imports carry their original ids; the server generates one
// otherwise.
type createRequest struct {
	ID       string  `json:"id,omitempty"`
	UserID   string  `json:"user_id"`
	Type     string  `json:"type"`
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id,omitempty"`

	Content           string                  `json:"content,omitempty"`
	Process           *models.ProcessDetails  `json:"process,omitempty"`
	SignOff           *models.SignOffBlock    `json:"sign_off,omitempty"`
	History           *models.HistoryBlock    `json:"history,omitempty"`
	Trigger           *models.TriggerBlock    `json:"trigger,omitempty"`
	Advanced          *models.AdvancedDetails `json:"advanced,omitempty"`
	SelectedStandards []string                `json:"selected_standards,omitempty"`
	SelectedKPIs      []string                `json:"selected_kpis,omitempty"`
	CreatedBy         string                  `json:"created_by,omitempty"`
}

// updateRequest is the body for PUT /api/nodes/{nodeID}. Absent fields
// leave the stored value untouched; selection lists distinguish "absent"
// (nil) from "cleared" (empty array).
type updateRequest struct {
	UserID string `json:"user_id"`

	Name    *string `json:"name,omitempty"`
	Content *string `json:"content,omitempty"`

	Process  *models.ProcessDetails  `json:"process,omitempty"`
	SignOff  *models.SignOffBlock    `json:"sign_off,omitempty"`
	History  *models.HistoryBlock    `json:"history,omitempty"`
	Trigger  *models.TriggerBlock    `json:"trigger,omitempty"`
	Advanced *models.AdvancedDetails `json:"advanced,omitempty"`

	SelectedStandards []string `json:"selected_standards,omitempty"`
	SelectedKPIs      []string `json:"selected_kpis,omitempty"`

	ParentID   *string `json:"parent_id,omitempty"`
	MoveToRoot bool    `json:"move_to_root,omitempty"`
}

// deleteResponse is the body for DELETE /api/nodes/{nodeID}.
type deleteResponse struct {
	Success bool `json:"success"`
	Deleted int  `json:"deleted"`
}
