package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/utxoscope/pkg/entity"
	"github.com/matzehuels/utxoscope/pkg/pipeline"
	"github.com/matzehuels/utxoscope/pkg/store"
)

func testServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	s := NewServer(pipeline.NewRunner(nil, nil, logger), store.NewMemoryStore(), logger)
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return s, ts
}

func testRecords() []entity.Record {
	received := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	return []entity.Record{
		{TxID: "aa11", Vout: 0, Address: "bc1qdest1", Amount: 1.5, Received: received},
		{TxID: "bb22", Vout: 0, Address: "bc1qdest2", Amount: 0.25, Received: received.AddDate(0, 1, 0)},
	}
}

func postLayout(t *testing.T, ts *httptest.Server, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(ts.URL+"/v1/layouts", "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST /v1/layouts: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthz(t *testing.T) {
	_, ts := testServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if id := resp.Header.Get("X-Request-ID"); id == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestCreateLayout(t *testing.T) {
	_, ts := testServer(t)

	resp := postLayout(t, ts, map[string]any{
		"records":  testRecords(),
		"viz_type": "treemap",
		"formats":  []string{"svg", "json"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var got layoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.VizType != "treemap" {
		t.Errorf("viz_type = %q, want treemap", got.VizType)
	}
	if got.Stats.RecordCount != 2 {
		t.Errorf("record_count = %d, want 2", got.Stats.RecordCount)
	}
	if got.GraphHash == "" {
		t.Error("graph_hash should be set")
	}
	if !strings.Contains(string(got.Artifacts["svg"]), "<svg") {
		t.Error("svg artifact missing <svg element")
	}
	if got.RunID != "" {
		t.Error("run should not be saved without save flag")
	}
}

func TestCreateLayoutSaveAndFetchRun(t *testing.T) {
	_, ts := testServer(t)

	resp := postLayout(t, ts, map[string]any{
		"records":  testRecords(),
		"viz_type": "force",
		"save":     true,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var created layoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.RunID == "" {
		t.Fatal("save should assign a run id")
	}

	getResp, err := http.Get(fmt.Sprintf("%s/v1/runs/%s", ts.URL, created.RunID))
	if err != nil {
		t.Fatalf("GET run: %v", err)
	}
	defer getResp.Body.Close()
	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("get run status = %d, want 200", getResp.StatusCode)
	}

	var run store.Run
	if err := json.NewDecoder(getResp.Body).Decode(&run); err != nil {
		t.Fatalf("decode run: %v", err)
	}
	if run.VizType != "force" {
		t.Errorf("run viz_type = %q, want force", run.VizType)
	}
	if len(run.Layout.Nodes) == 0 {
		t.Error("saved run should carry the layout")
	}
}

func TestListRuns(t *testing.T) {
	_, ts := testServer(t)

	for range 3 {
		resp := postLayout(t, ts, map[string]any{
			"records": testRecords(),
			"save":    true,
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
	}

	resp, err := http.Get(ts.URL + "/v1/runs/?limit=2")
	if err != nil {
		t.Fatalf("GET runs: %v", err)
	}
	defer resp.Body.Close()

	var got struct {
		Runs []store.Run `json:"runs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode runs: %v", err)
	}
	if len(got.Runs) != 2 {
		t.Errorf("got %d runs, want 2", len(got.Runs))
	}
}

func TestDeleteRun(t *testing.T) {
	_, ts := testServer(t)

	resp := postLayout(t, ts, map[string]any{"records": testRecords(), "save": true})
	var created layoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/v1/runs/%s", ts.URL, created.RunID), nil)
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE run: %v", err)
	}
	defer delResp.Body.Close()
	if delResp.StatusCode != http.StatusOK {
		t.Errorf("delete status = %d, want 200", delResp.StatusCode)
	}

	getResp, err := http.Get(fmt.Sprintf("%s/v1/runs/%s", ts.URL, created.RunID))
	if err != nil {
		t.Fatalf("GET run: %v", err)
	}
	defer getResp.Body.Close()
	if getResp.StatusCode != http.StatusNotFound {
		t.Errorf("deleted run status = %d, want 404", getResp.StatusCode)
	}
}

func TestErrorStatuses(t *testing.T) {
	_, ts := testServer(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"malformed json", "{not json", http.StatusBadRequest},
		{"no source", "{}", http.StatusBadRequest},
		{"bad viz type", `{"address":"bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq","viz_type":"pie"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/v1/layouts", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("POST: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestUnknownRun(t *testing.T) {
	_, ts := testServer(t)

	resp, err := http.Get(ts.URL + "/v1/runs/no-such-run")
	if err != nil {
		t.Fatalf("GET run: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
