package docgen

import "github.com/dalemusser/procdoc/internal/domain/models"

// Document is the metadata payload the generators work from. It mirrors the
// file-node payload, except that standards and KPIs arrive as display names:
// the generators produce human-readable documents and know nothing about
// catalog ids.
type Document struct {
	Title     string                  `json:"title"`
	Process   *models.ProcessDetails  `json:"process,omitempty"`
	SignOff   *models.SignOffBlock    `json:"sign_off,omitempty"`
	History   *models.HistoryBlock    `json:"history,omitempty"`
	Trigger   *models.TriggerBlock    `json:"trigger,omitempty"`
	Advanced  *models.AdvancedDetails `json:"advanced,omitempty"`
	Standards []string                `json:"standards,omitempty"`
	KPIs      []string                `json:"kpis,omitempty"`
}

// generateResponse wraps generator output. Content holds BPMN XML, LaTeX
// source, or HTML depending on the endpoint.
type generateResponse struct {
	Content string `json:"content"`
}

// htmlRequest is the body for POST /api/docgen/html.
type htmlRequest struct {
	Latex string `json:"latex"`
}

// parseRequest is the body for POST /api/docgen/parse.
type parseRequest struct {
	Latex string `json:"latex"`
}
