// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"sort"
	"time"

	"github.com/dalemusser/procdoc/internal/app/store/kpi"
	nodestore "github.com/dalemusser/procdoc/internal/app/store/node"
	"github.com/dalemusser/procdoc/internal/app/store/standard"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ReconcileRefsJob rebuilds every KPI's and standard's
// associated_bpmn_processes list from the nodes collection.
//
// The selections stored on file nodes are the authoritative source; the
// reverse lists are a best-effort cache that can drift when a sync update
// exhausts its retries or the process dies between the node write and the
// sync. Running this periodically bounds how long such drift survives.
func ReconcileRefsJob(db *mongo.Database, logger *zap.Logger, interval time.Duration) Job {
	return Job{
		Name:     "reconcile_process_refs",
		Interval: interval,
		Run: func(ctx context.Context) error {
			nodes := nodestore.New(db, logger)
			kpis := kpi.New(db)
			standards := standard.New(db)

			files, err := nodes.ListFilesWithSelections(ctx)
			if err != nil {
				return err
			}

			kpiRefs := make(map[string][]string)
			stdRefs := make(map[string][]string)
			for _, f := range files {
				for _, id := range f.SelectedKPIs {
					kpiRefs[id] = append(kpiRefs[id], f.ID)
				}
				for _, id := range f.SelectedStandards {
					stdRefs[id] = append(stdRefs[id], f.ID)
				}
			}

			repaired := 0

			allKPIs, err := kpis.ListAll(ctx)
			if err != nil {
				return err
			}
			for _, k := range allKPIs {
				want := kpiRefs[k.ID]
				if sameSet(k.AssociatedProcesses, want) {
					continue
				}
				if err := kpis.ReplaceProcessRefs(ctx, k.ID, want); err != nil {
					logger.Warn("kpi reference repair failed",
						zap.String("kpi_id", k.ID), zap.Error(err))
					continue
				}
				repaired++
			}

			allStandards, err := standards.ListAll(ctx)
			if err != nil {
				return err
			}
			for _, s := range allStandards {
				want := stdRefs[s.ID]
				if sameSet(s.AssociatedProcesses, want) {
					continue
				}
				if err := standards.ReplaceProcessRefs(ctx, s.ID, want); err != nil {
					logger.Warn("standard reference repair failed",
						zap.String("standard_id", s.ID), zap.Error(err))
					continue
				}
				repaired++
			}

			if repaired > 0 {
				logger.Info("reference reconcile repaired drift",
					zap.Int("records_repaired", repaired))
			}
			return nil
		},
	}
}

// sameSet compares two id lists ignoring order and duplicates.
func sameSet(a, b []string) bool {
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	as = dedupSorted(as)
	bs = dedupSorted(bs)
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func dedupSorted(ids []string) []string {
	out := ids[:0]
	for i, id := range ids {
		if i == 0 || ids[i-1] != id {
			out = append(out, id)
		}
	}
	return out
}
