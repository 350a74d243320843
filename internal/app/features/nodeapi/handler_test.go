package nodeapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/procdoc/internal/app/store/kpi"
	"github.com/dalemusser/procdoc/internal/app/store/standard"
	"github.com/dalemusser/procdoc/internal/app/system/refsync"
	"github.com/dalemusser/procdoc/internal/app/system/tree"
	"github.com/dalemusser/procdoc/internal/domain/models"
	"github.com/dalemusser/procdoc/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type testAPI struct {
	srv  *httptest.Server
	db   *mongo.Database
	kpis *kpi.Store
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	kpis := kpi.New(db)
	syncer := refsync.New(kpis, standard.New(db), logger)
	h := NewHandler(db, syncer, logger)

	srv := httptest.NewServer(Routes(h))
	t.Cleanup(srv.Close)
	return &testAPI{srv: srv, db: db, kpis: kpis}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req, err := http.NewRequest(method, a.srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var out bytes.Buffer
	out.ReadFrom(resp.Body)
	return resp, out.Bytes()
}

func decodeNode(t *testing.T, body []byte) models.Node {
	t.Helper()
	var n models.Node
	if err := json.Unmarshal(body, &n); err != nil {
		t.Fatalf("decode node: %v (%s)", err, body)
	}
	return n
}

func TestCreate_Validation(t *testing.T) {
	api := newTestAPI(t)

	cases := []struct {
		name string
		body map[string]any
	}{
		{"missing user_id", map[string]any{"type": "folder", "name": "X"}},
		{"missing name", map[string]any{"user_id": "u", "type": "folder"}},
		{"bad type", map[string]any{"user_id": "u", "type": "link", "name": "X"}},
		{"file without content", map[string]any{"user_id": "u", "type": "file", "name": "X"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, _ := api.do(t, http.MethodPost, "/", tc.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestCreate_MissingParentIs404(t *testing.T) {
	api := newTestAPI(t)

	resp, _ := api.do(t, http.MethodPost, "/", map[string]any{
		"user_id": "u", "type": "folder", "name": "X", "parent_id": "ghost",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestGetTree_RequiresUserID(t *testing.T) {
	api := newTestAPI(t)
	resp, _ := api.do(t, http.MethodGet, "/", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGetTree_SingleNode(t *testing.T) {
	api := newTestAPI(t)

	resp, body := api.do(t, http.MethodPost, "/", map[string]any{
		"user_id": "u", "type": "file", "name": "Doc", "content": "<x/>",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201 (%s)", resp.StatusCode, body)
	}
	created := decodeNode(t, body)

	resp, body = api.do(t, http.MethodGet, "/?user_id=u&node_id="+created.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d (%s)", resp.StatusCode, body)
	}
	got := decodeNode(t, body)
	if got.Content != "<x/>" {
		t.Errorf("Content = %q, want stored content", got.Content)
	}

	resp, _ = api.do(t, http.MethodGet, "/?user_id=u&node_id=ghost", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing node status = %d, want 404", resp.StatusCode)
	}
}

// TestLifecycle walks the full scenario: build a small hierarchy, verify the
// nested tree, change KPI selections, move a node, then cascade-delete and
// verify the back-references are pruned.
func TestLifecycle(t *testing.T) {
	api := newTestAPI(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, id := range []string{"kpi-a", "kpi-b", "kpi-c"} {
		if _, err := api.kpis.Create(ctx, kpi.CreateInput{ID: id, UserID: "u", Name: id}); err != nil {
			t.Fatalf("seed kpi: %v", err)
		}
	}

	// Folder with a file inside, selections [kpi-a kpi-b].
	_, body := api.do(t, http.MethodPost, "/", map[string]any{
		"user_id": "u", "type": "folder", "name": "Ops",
	})
	folder := decodeNode(t, body)

	resp, body := api.do(t, http.MethodPost, "/", map[string]any{
		"user_id": "u", "type": "file", "name": "Onboarding", "content": "<bpmn/>",
		"parent_id": folder.ID, "selected_kpis": []string{"kpi-a", "kpi-b"},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create file status = %d (%s)", resp.StatusCode, body)
	}
	file := decodeNode(t, body)

	// Initial selections must be reflected in the reverse refs.
	for _, id := range []string{"kpi-a", "kpi-b"} {
		k, _ := api.kpis.GetByID(ctx, "u", id)
		if len(k.AssociatedProcesses) != 1 || k.AssociatedProcesses[0] != file.ID {
			t.Errorf("%s refs = %v, want [%s]", id, k.AssociatedProcesses, file.ID)
		}
	}

	// Nested tree comes back with the file under the folder.
	resp, body = api.do(t, http.MethodGet, "/?user_id=u", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("tree status = %d", resp.StatusCode)
	}
	var entries []tree.Entry
	if err := json.Unmarshal(body, &entries); err != nil {
		t.Fatalf("decode tree: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != folder.ID {
		t.Fatalf("tree roots = %+v, want just the folder", entries)
	}
	if len(entries[0].Children) != 1 || entries[0].Children[0].ID != file.ID {
		t.Fatalf("folder children = %+v, want the file nested", entries[0].Children)
	}

	// Selection change [a b] -> [b c] moves the reverse refs.
	resp, body = api.do(t, http.MethodPut, "/"+file.ID, map[string]any{
		"user_id": "u", "selected_kpis": []string{"kpi-b", "kpi-c"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d (%s)", resp.StatusCode, body)
	}
	kA, _ := api.kpis.GetByID(ctx, "u", "kpi-a")
	if len(kA.AssociatedProcesses) != 0 {
		t.Errorf("kpi-a refs = %v, want empty", kA.AssociatedProcesses)
	}
	for _, id := range []string{"kpi-b", "kpi-c"} {
		k, _ := api.kpis.GetByID(ctx, "u", id)
		if len(k.AssociatedProcesses) != 1 {
			t.Errorf("%s refs = %v, want [%s]", id, k.AssociatedProcesses, file.ID)
		}
	}

	// Rename via the same endpoint.
	resp, body = api.do(t, http.MethodPut, "/"+file.ID, map[string]any{
		"user_id": "u", "name": "Onboarding v2",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("rename status = %d", resp.StatusCode)
	}
	if n := decodeNode(t, body); n.Name != "Onboarding v2" {
		t.Errorf("Name = %q after rename", n.Name)
	}

	// Cascade delete the folder: both nodes go, and the deleted file's
	// remaining refs (kpi-b, kpi-c) are pruned.
	resp, body = api.do(t, http.MethodDelete, fmt.Sprintf("/%s?user_id=u", folder.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d (%s)", resp.StatusCode, body)
	}
	var del deleteResponse
	if err := json.Unmarshal(body, &del); err != nil {
		t.Fatalf("decode delete response: %v", err)
	}
	if !del.Success || del.Deleted != 2 {
		t.Errorf("delete response = %+v, want success with 2 deleted", del)
	}

	for _, id := range []string{"kpi-b", "kpi-c"} {
		k, _ := api.kpis.GetByID(ctx, "u", id)
		if len(k.AssociatedProcesses) != 0 {
			t.Errorf("%s refs = %v, want empty after delete", id, k.AssociatedProcesses)
		}
	}

	resp, _ = api.do(t, http.MethodGet, "/?user_id=u&node_id="+file.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("deleted file fetch status = %d, want 404", resp.StatusCode)
	}
}

func TestUpdate_MoveIntoOwnSubtreeIs400(t *testing.T) {
	api := newTestAPI(t)

	_, body := api.do(t, http.MethodPost, "/", map[string]any{
		"user_id": "u", "type": "folder", "name": "Top",
	})
	top := decodeNode(t, body)
	_, body = api.do(t, http.MethodPost, "/", map[string]any{
		"user_id": "u", "type": "folder", "name": "Sub", "parent_id": top.ID,
	})
	sub := decodeNode(t, body)

	resp, _ := api.do(t, http.MethodPut, "/"+top.ID, map[string]any{
		"user_id": "u", "parent_id": top.ID,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("self-parent status = %d, want 400", resp.StatusCode)
	}

	resp, _ = api.do(t, http.MethodPut, "/"+top.ID, map[string]any{
		"user_id": "u", "parent_id": sub.ID,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("move under descendant status = %d, want 400", resp.StatusCode)
	}

	// The hierarchy is intact and still deletable.
	resp, body = api.do(t, http.MethodDelete, "/"+top.ID+"?user_id=u", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d (%s)", resp.StatusCode, body)
	}
	var del deleteResponse
	if err := json.Unmarshal(body, &del); err != nil {
		t.Fatalf("decode delete response: %v", err)
	}
	if del.Deleted != 2 {
		t.Errorf("delete response = %+v, want 2 deleted", del)
	}
}

func TestDelete_OtherUsersNodeIs404(t *testing.T) {
	api := newTestAPI(t)

	_, body := api.do(t, http.MethodPost, "/", map[string]any{
		"user_id": "u", "type": "folder", "name": "Mine",
	})
	n := decodeNode(t, body)

	resp, _ := api.do(t, http.MethodDelete, "/"+n.ID+"?user_id=intruder", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}

	resp, _ = api.do(t, http.MethodGet, "/?user_id=u&node_id="+n.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("node should survive a cross-user delete, got %d", resp.StatusCode)
	}
}
