// Package nodeapi provides the CRUD API for the per-user process hierarchy.
//
// Endpoints (mounted at /api/nodes):
//   - GET    /?user_id=&node_id=  - full nested tree, or one node
//   - POST   /                    - create a folder or file node
//   - PUT    /{nodeID}            - partial update, including reparenting
//   - DELETE /{nodeID}?user_id=   - cascading delete
package nodeapi

import (
	"errors"
	"net/http"

	nodestore "github.com/dalemusser/procdoc/internal/app/store/node"
	userstore "github.com/dalemusser/procdoc/internal/app/store/users"
	"github.com/dalemusser/procdoc/internal/app/system/jsonutil"
	"github.com/dalemusser/procdoc/internal/app/system/refsync"
	"github.com/dalemusser/procdoc/internal/app/system/tree"
	"github.com/dalemusser/procdoc/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler handles node CRUD requests.
type Handler struct {
	nodes  *nodestore.Store
	users  *userstore.Store
	syncer *refsync.Syncer
	logger *zap.Logger
}

// NewHandler creates a new nodeapi handler.
func NewHandler(db *mongo.Database, syncer *refsync.Syncer, logger *zap.Logger) *Handler {
	return &Handler{
		nodes:  nodestore.New(db, logger),
		users:  userstore.New(db),
		syncer: syncer,
		logger: logger,
	}
}

// GetTree handles GET /api/nodes.
//
// Without node_id it loads every node the user owns and returns the nested
// tree. With node_id it returns that single node's raw record, un-nested.
func (h *Handler) GetTree(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		jsonutil.BadRequest(w, "user_id is required")
		return
	}

	if nodeID := r.URL.Query().Get("node_id"); nodeID != "" {
		n, err := h.nodes.GetByID(r.Context(), userID, nodeID)
		if errors.Is(err, nodestore.ErrNotFound) {
			jsonutil.NotFound(w, "node not found")
			return
		}
		if err != nil {
			h.logger.Error("failed to load node",
				zap.String("user_id", userID),
				zap.String("node_id", nodeID),
				zap.Error(err))
			jsonutil.InternalError(w, "failed to load node")
			return
		}
		jsonutil.OK(w, n)
		return
	}

	nodes, err := h.nodes.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to load node tree",
			zap.String("user_id", userID),
			zap.Error(err))
		jsonutil.InternalError(w, "failed to load nodes")
		return
	}

	entries := tree.Build(nodes, nil)
	if entries == nil {
		entries = []tree.Entry{}
	}
	jsonutil.OK(w, entries)
}

// Create handles POST /api/nodes.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in createRequest
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if in.UserID == "" || in.Name == "" {
		jsonutil.BadRequest(w, "user_id and name are required")
		return
	}
	if in.Type != models.NodeTypeFolder && in.Type != models.NodeTypeFile {
		jsonutil.BadRequest(w, "type must be 'folder' or 'file'")
		return
	}
	if in.Type == models.NodeTypeFile && in.Content == "" {
		jsonutil.BadRequest(w, "content is required for file nodes")
		return
	}

	createdBy := ""
	if in.Type == models.NodeTypeFile {
		createdBy = h.resolveCreatedBy(r, in.UserID, in.CreatedBy)
	}

	n, err := h.nodes.Create(r.Context(), nodestore.CreateInput{
		ID:                in.ID,
		UserID:            in.UserID,
		Type:              in.Type,
		Name:              in.Name,
		ParentID:          in.ParentID,
		Content:           in.Content,
		Process:           in.Process,
		SignOff:           in.SignOff,
		History:           in.History,
		Trigger:           in.Trigger,
		Advanced:          in.Advanced,
		SelectedStandards: in.SelectedStandards,
		SelectedKPIs:      in.SelectedKPIs,
		CreatedBy:         createdBy,
	})
	if errors.Is(err, nodestore.ErrParentNotFound) {
		jsonutil.NotFound(w, "parent node not found")
		return
	}
	if errors.Is(err, nodestore.ErrParentNotFolder) {
		jsonutil.BadRequest(w, "parent node is not a folder")
		return
	}
	if err != nil {
		h.logger.Error("failed to create node",
			zap.String("user_id", in.UserID),
			zap.String("type", in.Type),
			zap.Error(err))
		jsonutil.InternalError(w, "failed to create node")
		return
	}

	if n.Type == models.NodeTypeFile {
		h.syncer.SyncKPIs(r.Context(), n.ID, nil, n.SelectedKPIs)
		h.syncer.SyncStandards(r.Context(), n.ID, nil, n.SelectedStandards)
	}

	h.logger.Debug("node created",
		zap.String("user_id", n.UserID),
		zap.String("node_id", n.ID),
		zap.String("type", n.Type))
	jsonutil.Created(w, n)
}

// Update handles PUT /api/nodes/{nodeID}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")

	var in updateRequest
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if in.UserID == "" {
		jsonutil.BadRequest(w, "user_id is required")
		return
	}

	// Load the current node first so selection diffs compare against the
	// pre-update state.
	current, err := h.nodes.GetByID(r.Context(), in.UserID, nodeID)
	if errors.Is(err, nodestore.ErrNotFound) {
		jsonutil.NotFound(w, "node not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to load node for update",
			zap.String("user_id", in.UserID),
			zap.String("node_id", nodeID),
			zap.Error(err))
		jsonutil.InternalError(w, "failed to update node")
		return
	}

	updated, err := h.nodes.Update(r.Context(), in.UserID, nodeID, nodestore.UpdateInput{
		Name:              in.Name,
		Content:           in.Content,
		Process:           in.Process,
		SignOff:           in.SignOff,
		History:           in.History,
		Trigger:           in.Trigger,
		Advanced:          in.Advanced,
		SelectedStandards: in.SelectedStandards,
		SelectedKPIs:      in.SelectedKPIs,
		ParentID:          in.ParentID,
		MoveToRoot:        in.MoveToRoot,
	})
	if errors.Is(err, nodestore.ErrNotFound) {
		jsonutil.NotFound(w, "node not found")
		return
	}
	if errors.Is(err, nodestore.ErrParentNotFound) {
		jsonutil.NotFound(w, "parent node not found")
		return
	}
	if errors.Is(err, nodestore.ErrParentNotFolder) {
		jsonutil.BadRequest(w, "parent node is not a folder")
		return
	}
	if errors.Is(err, nodestore.ErrParentInSubtree) {
		jsonutil.BadRequest(w, "cannot move a node inside its own subtree")
		return
	}
	if err != nil {
		h.logger.Error("failed to update node",
			zap.String("user_id", in.UserID),
			zap.String("node_id", nodeID),
			zap.Error(err))
		jsonutil.InternalError(w, "failed to update node")
		return
	}

	if updated.Type == models.NodeTypeFile {
		if in.SelectedKPIs != nil {
			h.syncer.SyncKPIs(r.Context(), nodeID, current.SelectedKPIs, in.SelectedKPIs)
		}
		if in.SelectedStandards != nil {
			h.syncer.SyncStandards(r.Context(), nodeID, current.SelectedStandards, in.SelectedStandards)
		}
	}

	jsonutil.OK(w, updated)
}

// Delete handles DELETE /api/nodes/{nodeID}. Folders cascade depth-first;
// back-references held by deleted files are pruned best-effort afterwards.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		jsonutil.BadRequest(w, "user_id is required")
		return
	}

	deleted, err := h.nodes.Delete(r.Context(), userID, nodeID)
	if errors.Is(err, nodestore.ErrNotFound) {
		jsonutil.NotFound(w, "node not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to delete node",
			zap.String("user_id", userID),
			zap.String("node_id", nodeID),
			zap.Error(err))
		jsonutil.InternalError(w, "failed to delete node")
		return
	}

	for _, n := range deleted {
		h.syncer.RemoveNode(r.Context(), n)
	}

	h.logger.Debug("node deleted",
		zap.String("user_id", userID),
		zap.String("node_id", nodeID),
		zap.Int("cascade_count", len(deleted)))
	jsonutil.OK(w, deleteResponse{Success: true, Deleted: len(deleted)})
}

// resolveCreatedBy picks the created_by display value: the explicit request
// value wins, then the user's display name, then the raw user id.
func (h *Handler) resolveCreatedBy(r *http.Request, userID, explicit string) string {
	if explicit != "" {
		return explicit
	}
	name, err := h.users.DisplayName(r.Context(), userID)
	if err != nil {
		h.logger.Warn("created_by lookup failed, using raw user id",
			zap.String("user_id", userID),
			zap.Error(err))
		return userID
	}
	if name == "" {
		return userID
	}
	return name
}
