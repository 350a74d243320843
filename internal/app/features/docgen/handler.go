// Package docgen exposes the stateless document generators. Each endpoint
// takes a payload and returns generated text; nothing here touches the
// database, so the editor can regenerate freely while a document is being
// authored.
package docgen

import (
	"net/http"

	"github.com/dalemusser/procdoc/internal/app/system/jsonutil"
	"go.uber.org/zap"
)

// Handler handles document generation requests.
type Handler struct {
	logger *zap.Logger
}

// NewHandler creates a new docgen handler.
func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{logger: logger}
}

// BPMN handles POST /api/docgen/bpmn: metadata in, BPMN 2.0 XML out.
func (h *Handler) BPMN(w http.ResponseWriter, r *http.Request) {
	var doc Document
	if err := jsonutil.Decode(r, &doc); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}

	xmlOut, err := GenerateBPMN(doc)
	if err != nil {
		h.logger.Error("bpmn generation failed", zap.Error(err))
		jsonutil.InternalError(w, "failed to generate BPMN")
		return
	}
	jsonutil.OK(w, generateResponse{Content: xmlOut})
}

// LaTeX handles POST /api/docgen/latex: metadata in, LaTeX source out.
func (h *Handler) LaTeX(w http.ResponseWriter, r *http.Request) {
	var doc Document
	if err := jsonutil.Decode(r, &doc); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	jsonutil.OK(w, generateResponse{Content: GenerateLaTeX(doc)})
}

// HTML handles POST /api/docgen/html: LaTeX source in, sanitized HTML out.
func (h *Handler) HTML(w http.ResponseWriter, r *http.Request) {
	var in htmlRequest
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if in.Latex == "" {
		jsonutil.BadRequest(w, "latex is required")
		return
	}
	jsonutil.OK(w, generateResponse{Content: LaTeXToHTML(in.Latex)})
}

// Parse handles POST /api/docgen/parse: edited LaTeX in, recovered
// metadata out. Extraction is best-effort; unknown content is ignored.
func (h *Handler) Parse(w http.ResponseWriter, r *http.Request) {
	var in parseRequest
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if in.Latex == "" {
		jsonutil.BadRequest(w, "latex is required")
		return
	}
	jsonutil.OK(w, ParseLaTeX(in.Latex))
}
