// Package refsync keeps KPI and standard reverse-reference lists consistent
// with each file node's selections.
//
// Syncing is deliberately best-effort: a failure here is logged and dropped,
// never surfaced to the node write that triggered it, so KPI bookkeeping can
// drift but a flaky kpis collection cannot block saving a process. Each
// individual update is retried a bounded number of times with backoff before
// it is given up, and the periodic reconcile job (system/tasks) repairs any
// drift that survives the retries.
package refsync

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/procdoc/internal/app/store/kpi"
	"github.com/dalemusser/procdoc/internal/app/store/standard"
	"github.com/dalemusser/procdoc/internal/domain/models"
	"go.uber.org/zap"
)

const (
	defaultAttempts = 3
	defaultBackoff  = 200 * time.Millisecond
)

// Syncer applies selection changes to the reverse-reference lists.
type Syncer struct {
	kpis      *kpi.Store
	standards *standard.Store
	logger    *zap.Logger

	attempts int
	backoff  time.Duration
}

// New creates a syncer with the default retry policy.
func New(kpis *kpi.Store, standards *standard.Store, logger *zap.Logger) *Syncer {
	return &Syncer{
		kpis:      kpis,
		standards: standards,
		logger:    logger,
		attempts:  defaultAttempts,
		backoff:   defaultBackoff,
	}
}

// SetRetryPolicy overrides the per-update retry attempts and backoff.
func (s *Syncer) SetRetryPolicy(attempts int, backoff time.Duration) {
	if attempts > 0 {
		s.attempts = attempts
	}
	if backoff > 0 {
		s.backoff = backoff
	}
}

// SyncKPIs reconciles KPI back-references after a file node's selected_kpis
// changed from old to new. Never returns an error.
func (s *Syncer) SyncKPIs(ctx context.Context, nodeID string, old, new []string) {
	added, removed := diff(old, new)
	for _, id := range added {
		s.attempt(ctx, "kpi add", id, nodeID, func(ctx context.Context) error {
			return s.kpis.AddProcessRef(ctx, id, nodeID)
		}, kpi.ErrNotFound)
	}
	for _, id := range removed {
		s.attempt(ctx, "kpi remove", id, nodeID, func(ctx context.Context) error {
			return s.kpis.RemoveProcessRef(ctx, id, nodeID)
		}, kpi.ErrNotFound)
	}
}

// SyncStandards reconciles standard back-references after a file node's
// selected_standards changed from old to new. Never returns an error.
func (s *Syncer) SyncStandards(ctx context.Context, nodeID string, old, new []string) {
	added, removed := diff(old, new)
	for _, id := range added {
		s.attempt(ctx, "standard add", id, nodeID, func(ctx context.Context) error {
			return s.standards.AddProcessRef(ctx, id, nodeID)
		}, standard.ErrNotFound)
	}
	for _, id := range removed {
		s.attempt(ctx, "standard remove", id, nodeID, func(ctx context.Context) error {
			return s.standards.RemoveProcessRef(ctx, id, nodeID)
		}, standard.ErrNotFound)
	}
}

// RemoveNode prunes every back-reference held by a deleted file node.
func (s *Syncer) RemoveNode(ctx context.Context, n models.Node) {
	if n.Type != models.NodeTypeFile {
		return
	}
	s.SyncKPIs(ctx, n.ID, n.SelectedKPIs, nil)
	s.SyncStandards(ctx, n.ID, n.SelectedStandards, nil)
}

// attempt runs one reverse-reference update with retries. A not-found error
// means the referenced record was deleted externally; that is not retried
// and not treated as drift.
func (s *Syncer) attempt(ctx context.Context, op, refID, nodeID string, fn func(ctx context.Context) error, notFound error) {
	var err error
	for i := 0; i < s.attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				s.logger.Warn("reference sync abandoned",
					zap.String("op", op),
					zap.String("ref_id", refID),
					zap.String("node_id", nodeID),
					zap.Error(ctx.Err()))
				return
			case <-time.After(s.backoff * time.Duration(i)):
			}
		}
		err = fn(ctx)
		if err == nil {
			return
		}
		if errors.Is(err, notFound) {
			s.logger.Debug("reference sync target missing",
				zap.String("op", op),
				zap.String("ref_id", refID),
				zap.String("node_id", nodeID))
			return
		}
	}
	s.logger.Error("reference sync failed, leaving drift for reconcile job",
		zap.String("op", op),
		zap.String("ref_id", refID),
		zap.String("node_id", nodeID),
		zap.Int("attempts", s.attempts),
		zap.Error(err))
}

// diff returns the ids present only in new (added) and only in old
// (removed). Order follows the input slices; duplicates collapse.
func diff(old, new []string) (added, removed []string) {
	oldSet := make(map[string]struct{}, len(old))
	for _, id := range old {
		oldSet[id] = struct{}{}
	}
	newSet := make(map[string]struct{}, len(new))
	for _, id := range new {
		newSet[id] = struct{}{}
	}

	seen := make(map[string]struct{})
	for _, id := range new {
		if _, ok := oldSet[id]; !ok {
			if _, dup := seen[id]; !dup {
				added = append(added, id)
				seen[id] = struct{}{}
			}
		}
	}
	seen = make(map[string]struct{})
	for _, id := range old {
		if _, ok := newSet[id]; !ok {
			if _, dup := seen[id]; !dup {
				removed = append(removed, id)
				seen[id] = struct{}{}
			}
		}
	}
	return added, removed
}
