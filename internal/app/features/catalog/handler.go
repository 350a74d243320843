// Package catalog serves the KPI and standard records the process editor
// offers in its selection pickers. Records are owned per user like nodes;
// only list, get, and create are exposed here, and the reverse-reference
// lists on each record are maintained elsewhere (system/refsync).
package catalog

import (
	"errors"
	"net/http"

	"github.com/dalemusser/procdoc/internal/app/store/kpi"
	"github.com/dalemusser/procdoc/internal/app/store/standard"
	"github.com/dalemusser/procdoc/internal/app/system/jsonutil"
	"github.com/dalemusser/procdoc/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler handles KPI and standard catalog requests.
type Handler struct {
	kpis      *kpi.Store
	standards *standard.Store
	logger    *zap.Logger
}

// NewHandler creates a new catalog handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		kpis:      kpi.New(db),
		standards: standard.New(db),
		logger:    logger,
	}
}

// ListKPIs handles GET /api/kpis?user_id=.
func (h *Handler) ListKPIs(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		jsonutil.BadRequest(w, "user_id is required")
		return
	}

	kpis, err := h.kpis.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list kpis",
			zap.String("user_id", userID), zap.Error(err))
		jsonutil.InternalError(w, "failed to list kpis")
		return
	}
	if kpis == nil {
		kpis = []models.KPI{}
	}
	jsonutil.OK(w, kpis)
}

// GetKPI handles GET /api/kpis/{kpiID}?user_id=.
func (h *Handler) GetKPI(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		jsonutil.BadRequest(w, "user_id is required")
		return
	}

	k, err := h.kpis.GetByID(r.Context(), userID, chi.URLParam(r, "kpiID"))
	if errors.Is(err, kpi.ErrNotFound) {
		jsonutil.NotFound(w, "kpi not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to load kpi",
			zap.String("user_id", userID), zap.Error(err))
		jsonutil.InternalError(w, "failed to load kpi")
		return
	}
	jsonutil.OK(w, k)
}

// CreateKPI handles POST /api/kpis.
func (h *Handler) CreateKPI(w http.ResponseWriter, r *http.Request) {
	var in createKPIRequest
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if in.UserID == "" || in.Name == "" {
		jsonutil.BadRequest(w, "user_id and name are required")
		return
	}

	k, err := h.kpis.Create(r.Context(), kpi.CreateInput{
		ID:          in.ID,
		UserID:      in.UserID,
		Name:        in.Name,
		Description: in.Description,
		Target:      in.Target,
		Unit:        in.Unit,
	})
	if err != nil {
		h.logger.Error("failed to create kpi",
			zap.String("user_id", in.UserID), zap.Error(err))
		jsonutil.InternalError(w, "failed to create kpi")
		return
	}
	jsonutil.Created(w, k)
}

// ListStandards handles GET /api/standards?user_id=.
func (h *Handler) ListStandards(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		jsonutil.BadRequest(w, "user_id is required")
		return
	}

	standards, err := h.standards.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list standards",
			zap.String("user_id", userID), zap.Error(err))
		jsonutil.InternalError(w, "failed to list standards")
		return
	}
	if standards == nil {
		standards = []models.Standard{}
	}
	jsonutil.OK(w, standards)
}

// GetStandard handles GET /api/standards/{standardID}?user_id=.
func (h *Handler) GetStandard(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		jsonutil.BadRequest(w, "user_id is required")
		return
	}

	std, err := h.standards.GetByID(r.Context(), userID, chi.URLParam(r, "standardID"))
	if errors.Is(err, standard.ErrNotFound) {
		jsonutil.NotFound(w, "standard not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to load standard",
			zap.String("user_id", userID), zap.Error(err))
		jsonutil.InternalError(w, "failed to load standard")
		return
	}
	jsonutil.OK(w, std)
}

// CreateStandard handles POST /api/standards.
func (h *Handler) CreateStandard(w http.ResponseWriter, r *http.Request) {
	var in createStandardRequest
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if in.UserID == "" || in.Name == "" {
		jsonutil.BadRequest(w, "user_id and name are required")
		return
	}

	std, err := h.standards.Create(r.Context(), standard.CreateInput{
		ID:          in.ID,
		UserID:      in.UserID,
		Name:        in.Name,
		Reference:   in.Reference,
		Description: in.Description,
	})
	if err != nil {
		h.logger.Error("failed to create standard",
			zap.String("user_id", in.UserID), zap.Error(err))
		jsonutil.InternalError(w, "failed to create standard")
		return
	}
	jsonutil.Created(w, std)
}
