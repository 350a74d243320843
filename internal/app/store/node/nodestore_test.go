package node

import (
	"errors"
	"testing"

	"github.com/dalemusser/procdoc/internal/domain/models"
	"github.com/dalemusser/procdoc/internal/testutil"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(testutil.SetupTestDB(t), zap.NewNop())
}

func TestStore_CreateFolder(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	folder, err := store.Create(ctx, CreateInput{
		UserID: "user-1",
		Type:   models.NodeTypeFolder,
		Name:   "Operations",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if folder.ID == "" {
		t.Error("ID should be generated when not supplied")
	}
	if folder.ParentID != nil {
		t.Error("ParentID should be nil for a root folder")
	}
	if !folder.IsFolder() {
		t.Errorf("Type = %v, want folder", folder.Type)
	}
}

func TestStore_CreateFile_ContentRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	content := `<bpmn:definitions id="Definitions_1"></bpmn:definitions>`
	file, err := store.Create(ctx, CreateInput{
		ID:      "file-1",
		UserID:  "user-1",
		Type:    models.NodeTypeFile,
		Name:    "Onboarding",
		Content: content,
		Process: &models.ProcessDetails{Owner: "Alice", Manager: "Bob"},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if file.ID != "file-1" {
		t.Errorf("ID = %v, want supplied id file-1", file.ID)
	}

	got, err := store.GetByID(ctx, "user-1", "file-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Content != content {
		t.Errorf("Content = %q, want %q", got.Content, content)
	}
	if got.Process == nil || got.Process.Owner != "Alice" {
		t.Errorf("Process not persisted: %+v", got.Process)
	}
}

func TestStore_Create_ParentChildConsistency(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	parent, err := store.Create(ctx, CreateInput{
		UserID: "user-1", Type: models.NodeTypeFolder, Name: "Parent",
	})
	if err != nil {
		t.Fatalf("Create() parent error = %v", err)
	}

	child, err := store.Create(ctx, CreateInput{
		UserID: "user-1", Type: models.NodeTypeFile, Name: "Child",
		ParentID: &parent.ID, Content: "<x/>",
	})
	if err != nil {
		t.Fatalf("Create() child error = %v", err)
	}

	got, err := store.GetByID(ctx, "user-1", parent.ID)
	if err != nil {
		t.Fatalf("GetByID() parent error = %v", err)
	}
	if len(got.Children) != 1 || got.Children[0] != child.ID {
		t.Errorf("parent Children = %v, want [%s]", got.Children, child.ID)
	}
	if child.ParentID == nil || *child.ParentID != parent.ID {
		t.Errorf("child ParentID = %v, want %s", child.ParentID, parent.ID)
	}
}

func TestStore_Create_ParentValidation(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	missing := "no-such-folder"
	_, err := store.Create(ctx, CreateInput{
		UserID: "user-1", Type: models.NodeTypeFolder, Name: "Orphan", ParentID: &missing,
	})
	if !errors.Is(err, ErrParentNotFound) {
		t.Errorf("missing parent: err = %v, want ErrParentNotFound", err)
	}

	file, err := store.Create(ctx, CreateInput{
		UserID: "user-1", Type: models.NodeTypeFile, Name: "Doc", Content: "<x/>",
	})
	if err != nil {
		t.Fatalf("Create() file error = %v", err)
	}
	_, err = store.Create(ctx, CreateInput{
		UserID: "user-1", Type: models.NodeTypeFolder, Name: "Nested", ParentID: &file.ID,
	})
	if !errors.Is(err, ErrParentNotFolder) {
		t.Errorf("file parent: err = %v, want ErrParentNotFolder", err)
	}
}

func TestStore_GetByID_OtherUser(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	n, err := store.Create(ctx, CreateInput{
		UserID: "user-1", Type: models.NodeTypeFolder, Name: "Private",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := store.GetByID(ctx, "user-2", n.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-user GetByID: err = %v, want ErrNotFound", err)
	}
}

func TestStore_Update_Reparent(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	folderA, _ := store.Create(ctx, CreateInput{UserID: "u", Type: models.NodeTypeFolder, Name: "A"})
	folderB, _ := store.Create(ctx, CreateInput{UserID: "u", Type: models.NodeTypeFolder, Name: "B"})
	file, err := store.Create(ctx, CreateInput{
		UserID: "u", Type: models.NodeTypeFile, Name: "Doc",
		ParentID: &folderA.ID, Content: "<x/>",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	moved, err := store.Update(ctx, "u", file.ID, UpdateInput{ParentID: &folderB.ID})
	if err != nil {
		t.Fatalf("Update() reparent error = %v", err)
	}
	if moved.ParentID == nil || *moved.ParentID != folderB.ID {
		t.Errorf("ParentID = %v, want %s", moved.ParentID, folderB.ID)
	}

	a, _ := store.GetByID(ctx, "u", folderA.ID)
	if len(a.Children) != 0 {
		t.Errorf("old parent Children = %v, want empty", a.Children)
	}
	b, _ := store.GetByID(ctx, "u", folderB.ID)
	if len(b.Children) != 1 || b.Children[0] != file.ID {
		t.Errorf("new parent Children = %v, want [%s]", b.Children, file.ID)
	}

	// Move to root: parent pointer cleared, pulled from B's cache.
	rooted, err := store.Update(ctx, "u", file.ID, UpdateInput{MoveToRoot: true})
	if err != nil {
		t.Fatalf("Update() move-to-root error = %v", err)
	}
	if rooted.ParentID != nil {
		t.Errorf("ParentID = %v, want nil after move to root", rooted.ParentID)
	}
	b, _ = store.GetByID(ctx, "u", folderB.ID)
	if len(b.Children) != 0 {
		t.Errorf("former parent Children = %v, want empty", b.Children)
	}
}

func TestStore_Update_RejectsCyclicReparent(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	top, _ := store.Create(ctx, CreateInput{UserID: "u", Type: models.NodeTypeFolder, Name: "Top"})
	mid, _ := store.Create(ctx, CreateInput{UserID: "u", Type: models.NodeTypeFolder, Name: "Mid", ParentID: &top.ID})
	leaf, _ := store.Create(ctx, CreateInput{UserID: "u", Type: models.NodeTypeFolder, Name: "Leaf", ParentID: &mid.ID})

	// A folder cannot become its own parent.
	if _, err := store.Update(ctx, "u", top.ID, UpdateInput{ParentID: &top.ID}); !errors.Is(err, ErrParentInSubtree) {
		t.Errorf("self-parent: err = %v, want ErrParentInSubtree", err)
	}

	// Nor can it move under one of its own descendants.
	if _, err := store.Update(ctx, "u", top.ID, UpdateInput{ParentID: &leaf.ID}); !errors.Is(err, ErrParentInSubtree) {
		t.Errorf("move under descendant: err = %v, want ErrParentInSubtree", err)
	}

	// The rejected moves left pointers and caches untouched.
	got, err := store.GetByID(ctx, "u", top.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.ParentID != nil {
		t.Errorf("ParentID = %v, want nil after rejected moves", got.ParentID)
	}
	leafNode, _ := store.GetByID(ctx, "u", leaf.ID)
	if len(leafNode.Children) != 0 {
		t.Errorf("descendant Children = %v, want empty", leafNode.Children)
	}

	// The subtree still deletes cleanly, bottoming out at the leaves.
	deleted, err := store.Delete(ctx, "u", top.ID)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(deleted) != 3 {
		t.Errorf("deleted %d nodes, want 3", len(deleted))
	}
}

func TestStore_Update_AdvancedBumpsPatchVersion(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	file, err := store.Create(ctx, CreateInput{
		UserID: "u", Type: models.NodeTypeFile, Name: "Doc", Content: "<x/>",
		Advanced: &models.AdvancedDetails{Version: "1.0.0", Status: "draft"},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := store.Update(ctx, "u", file.ID, UpdateInput{
		Advanced: &models.AdvancedDetails{Version: "1.0.0", Status: "approved"},
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Advanced.Version != "1.0.1" {
		t.Errorf("Version = %v, want 1.0.1", updated.Advanced.Version)
	}
	if updated.Advanced.Status != "approved" {
		t.Errorf("Status = %v, want approved", updated.Advanced.Status)
	}
	if updated.Advanced.ModifiedAt.IsZero() {
		t.Error("ModifiedAt should be stamped on advanced update")
	}

	// A second advanced update bumps again, from the stored version.
	updated, err = store.Update(ctx, "u", file.ID, UpdateInput{
		Advanced: &models.AdvancedDetails{Version: "9.9.9"},
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Advanced.Version != "1.0.2" {
		t.Errorf("Version = %v, want 1.0.2 (bump from stored, not submitted)", updated.Advanced.Version)
	}
}

func TestStore_Delete_Cascades(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	root, _ := store.Create(ctx, CreateInput{UserID: "u", Type: models.NodeTypeFolder, Name: "Root"})
	top, _ := store.Create(ctx, CreateInput{UserID: "u", Type: models.NodeTypeFolder, Name: "Top", ParentID: &root.ID})
	sub, _ := store.Create(ctx, CreateInput{UserID: "u", Type: models.NodeTypeFolder, Name: "Sub", ParentID: &top.ID})
	store.Create(ctx, CreateInput{UserID: "u", Type: models.NodeTypeFile, Name: "Doc1", ParentID: &top.ID, Content: "<x/>"})
	store.Create(ctx, CreateInput{UserID: "u", Type: models.NodeTypeFile, Name: "Doc2", ParentID: &sub.ID, Content: "<x/>"})
	keep, _ := store.Create(ctx, CreateInput{UserID: "u", Type: models.NodeTypeFile, Name: "Keep", ParentID: &root.ID, Content: "<x/>"})

	deleted, err := store.Delete(ctx, "u", top.ID)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(deleted) != 4 {
		t.Errorf("deleted %d nodes, want 4 (folder, subfolder, two files)", len(deleted))
	}

	for _, n := range deleted {
		if _, err := store.GetByID(ctx, "u", n.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("node %s still present after cascade", n.ID)
		}
	}

	if _, err := store.GetByID(ctx, "u", keep.ID); err != nil {
		t.Errorf("sibling outside subtree was deleted: %v", err)
	}

	r, _ := store.GetByID(ctx, "u", root.ID)
	for _, id := range r.Children {
		if id == top.ID {
			t.Error("deleted node still cached in former parent's children")
		}
	}
}

func TestStore_Delete_NotFound(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Delete(ctx, "u", "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestBumpPatch(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.0.0", "1.0.1"},
		{"2.3.9", "2.3.10"},
		{"", "1.0.1"},
		{"garbage", "1.0.1"},
		{"2.x.5", "2.0.6"},
		{"3.1", "3.1.1"},
		{" 1 . 2 . 3 ", "1.2.4"},
	}
	for _, tt := range tests {
		if got := BumpPatch(tt.in); got != tt.want {
			t.Errorf("BumpPatch(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
