package tasks

import (
	"testing"
	"time"

	"github.com/dalemusser/procdoc/internal/app/store/kpi"
	nodestore "github.com/dalemusser/procdoc/internal/app/store/node"
	"github.com/dalemusser/procdoc/internal/app/store/standard"
	"github.com/dalemusser/procdoc/internal/domain/models"
	"github.com/dalemusser/procdoc/internal/testutil"
	"go.uber.org/zap"
)

func TestReconcileRefsJob_RepairsDrift(t *testing.T) {
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	nodes := nodestore.New(db, logger)
	kpis := kpi.New(db)
	standards := standard.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	kpis.Create(ctx, kpi.CreateInput{ID: "k1", UserID: "u", Name: "k1"})
	kpis.Create(ctx, kpi.CreateInput{ID: "k2", UserID: "u", Name: "k2"})
	standards.Create(ctx, standard.CreateInput{ID: "s1", UserID: "u", Name: "s1"})

	file, err := nodes.Create(ctx, nodestore.CreateInput{
		UserID: "u", Type: models.NodeTypeFile, Name: "Doc", Content: "<x/>",
		SelectedKPIs:      []string{"k1"},
		SelectedStandards: []string{"s1"},
	})
	if err != nil {
		t.Fatalf("create node: %v", err)
	}

	// Manufacture drift: k1 lost its ref, k2 gained a stale one, s1 holds a
	// ref to a node that no longer exists.
	kpis.ReplaceProcessRefs(ctx, "k1", nil)
	kpis.ReplaceProcessRefs(ctx, "k2", []string{"ghost-node"})
	standards.ReplaceProcessRefs(ctx, "s1", []string{file.ID, "ghost-node"})

	job := ReconcileRefsJob(db, logger, time.Hour)
	if err := job.Run(ctx); err != nil {
		t.Fatalf("reconcile run: %v", err)
	}

	k1, _ := kpis.GetByID(ctx, "u", "k1")
	if len(k1.AssociatedProcesses) != 1 || k1.AssociatedProcesses[0] != file.ID {
		t.Errorf("k1 refs = %v, want [%s]", k1.AssociatedProcesses, file.ID)
	}
	k2, _ := kpis.GetByID(ctx, "u", "k2")
	if len(k2.AssociatedProcesses) != 0 {
		t.Errorf("k2 refs = %v, want empty", k2.AssociatedProcesses)
	}
	s1, _ := standards.GetByID(ctx, "u", "s1")
	if len(s1.AssociatedProcesses) != 1 || s1.AssociatedProcesses[0] != file.ID {
		t.Errorf("s1 refs = %v, want [%s]", s1.AssociatedProcesses, file.ID)
	}
}

func TestReconcileRefsJob_NoopWhenConsistent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	nodes := nodestore.New(db, logger)
	kpis := kpi.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	kpis.Create(ctx, kpi.CreateInput{ID: "k1", UserID: "u", Name: "k1"})
	file, _ := nodes.Create(ctx, nodestore.CreateInput{
		UserID: "u", Type: models.NodeTypeFile, Name: "Doc", Content: "<x/>",
		SelectedKPIs: []string{"k1"},
	})
	kpis.AddProcessRef(ctx, "k1", file.ID)

	job := ReconcileRefsJob(db, logger, time.Hour)
	if err := job.Run(ctx); err != nil {
		t.Fatalf("reconcile run: %v", err)
	}

	k1, _ := kpis.GetByID(ctx, "u", "k1")
	if len(k1.AssociatedProcesses) != 1 || k1.AssociatedProcesses[0] != file.ID {
		t.Errorf("k1 refs = %v, want unchanged [%s]", k1.AssociatedProcesses, file.ID)
	}
}

func TestSameSet(t *testing.T) {
	tests := []struct {
		a, b []string
		want bool
	}{
		{[]string{"x", "y"}, []string{"y", "x"}, true},
		{[]string{"x", "x"}, []string{"x"}, true},
		{[]string{"x"}, []string{"y"}, false},
		{nil, nil, true},
		{nil, []string{"x"}, false},
	}
	for _, tt := range tests {
		if got := sameSet(tt.a, tt.b); got != tt.want {
			t.Errorf("sameSet(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
