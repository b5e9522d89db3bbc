package adapthttp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	adapthttp "scaletrack/internal/adapter/http"
	"scaletrack/internal/adapter/memory"
	"scaletrack/internal/app"
)

// The HTTP tests run the full stack against the in-memory store with auth
// disabled; the middleware injects user 1.

func newTestServer(t *testing.T) (*httptest.Server, *memory.DB) {
	t.Helper()

	db := memory.New()
	if _, err := db.Create(context.Background(), "test", "hash"); err != nil {
		t.Fatal(err)
	}

	tracker := app.NewGoalTracker(db, db)
	entrySvc := app.NewEntryService(db, db, tracker)
	goalSvc := app.NewGoalService(db, db)
	trendSvc := app.NewTrendService(db, db)
	authSvc := app.NewAuthService(db, db.NewSessionRepo())

	webDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(webDir, "index.html"), []byte("<html></html>"), 0o600); err != nil {
		t.Fatal(err)
	}

	srv := adapthttp.New(entrySvc, goalSvc, trendSvc, authSvc, nil, webDir).WithoutAuth()
	return httptest.NewServer(srv.Handler()), db
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return m
}

func doJSON(t *testing.T, method, url string, payload any) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["ok"] != true {
		t.Fatalf("expected ok=true, got %v", body["ok"])
	}
}

func TestEntryCreateAndList(t *testing.T) {
	ts, _ := newTestServer(t)
	defer ts.Close()

	tests := []struct {
		name       string
		payload    map[string]any
		wantStatus int
	}{
		{"valid", map[string]any{"weight": 82.5}, http.StatusCreated},
		{"with timestamp", map[string]any{"weight": 81.0, "recordedAt": "2026-02-08T07:00:00Z"}, http.StatusCreated},
		{"zero weight", map[string]any{"weight": 0}, http.StatusBadRequest},
		{"negative weight", map[string]any{"weight": -5.0}, http.StatusBadRequest},
		{"unknown field", map[string]any{"weight": 80.0, "wat": 1}, http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, ts.URL+"/api/entries", tc.payload)
			defer resp.Body.Close() //nolint:errcheck

			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, resp.StatusCode)
			}
			if tc.wantStatus == http.StatusCreated {
				body := decodeBody(t, resp)
				if _, ok := body["id"]; !ok {
					t.Fatal("response missing 'id' field")
				}
			}
		})
	}

	resp, err := http.Get(ts.URL + "/api/entries?limit=10")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var items []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(items))
	}
}

func TestEntryUpdateAndDelete(t *testing.T) {
	ts, _ := newTestServer(t)
	defer ts.Close()

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/entries", map[string]any{"weight": 90.0})
	body := decodeBody(t, resp)
	resp.Body.Close() //nolint:errcheck
	id, _ := body["id"].(string)
	if id == "" {
		t.Fatal("create returned no id")
	}

	resp = doJSON(t, http.MethodPut, ts.URL+"/api/entries/"+id, map[string]any{
		"weight":     88.0,
		"recordedAt": time.Now().UTC().Format(time.RFC3339),
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", resp.StatusCode)
	}
	updated := decodeBody(t, resp)
	resp.Body.Close() //nolint:errcheck
	if updated["weight"] != 88.0 {
		t.Fatalf("expected weight 88, got %v", updated["weight"])
	}

	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/entries/"+id, nil)
	resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/entries/"+id, nil)
	resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", resp.StatusCode)
	}
}

func TestEntryBadID(t *testing.T) {
	ts, _ := newTestServer(t)
	defer ts.Close()

	resp := doJSON(t, http.MethodDelete, ts.URL+"/api/entries/not-a-uuid", nil)
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGoalLifecycleOverHTTP(t *testing.T) {
	ts, _ := newTestServer(t)
	defer ts.Close()

	// No goal can exist before the first entry.
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/goal", map[string]any{"targetWeight": 80.0})
	resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("goal without entries: expected 400, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/entries", map[string]any{"weight": 90.0})
	resp.Body.Close() //nolint:errcheck

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/goal", map[string]any{"targetWeight": 85.0})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create goal: expected 201, got %d", resp.StatusCode)
	}
	goal := decodeBody(t, resp)
	resp.Body.Close() //nolint:errcheck
	if goal["startWeight"] != 90.0 {
		t.Fatalf("expected startWeight 90, got %v", goal["startWeight"])
	}

	// Only one active goal at a time.
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/goal", map[string]any{"targetWeight": 70.0})
	resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second goal: expected 409, got %d", resp.StatusCode)
	}

	// Recording a weight at or under target completes the goal.
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/entries", map[string]any{"weight": 84.5})
	resp.Body.Close() //nolint:errcheck

	resp, err := http.Get(ts.URL + "/api/goal")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("active goal after completion: expected 404, got %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/api/achievements")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("achievements: expected 200, got %d", resp.StatusCode)
	}
	var achievements []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&achievements); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close() //nolint:errcheck
	if len(achievements) != 1 {
		t.Fatalf("expected 1 achievement, got %d", len(achievements))
	}
	if achievements[0]["completedWeight"] != 84.5 {
		t.Fatalf("expected completedWeight 84.5, got %v", achievements[0]["completedWeight"])
	}
	if achievements[0]["overAchieved"] != true {
		t.Fatalf("expected overAchieved=true, got %v", achievements[0]["overAchieved"])
	}
}

func TestGoalDelete(t *testing.T) {
	ts, _ := newTestServer(t)
	defer ts.Close()

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/entries", map[string]any{"weight": 90.0})
	resp.Body.Close() //nolint:errcheck

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/goal", map[string]any{"targetWeight": 85.0})
	goal := decodeBody(t, resp)
	resp.Body.Close() //nolint:errcheck
	id, _ := goal["id"].(string)

	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/goal/"+id, nil)
	resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete goal: expected 204, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/goal/"+id, nil)
	resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", resp.StatusCode)
	}
}

func TestTrendDaily(t *testing.T) {
	ts, _ := newTestServer(t)
	defer ts.Close()

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/entries", map[string]any{"weight": 90.0})
	resp.Body.Close() //nolint:errcheck
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/goal", map[string]any{"targetWeight": 85.0})
	resp.Body.Close() //nolint:errcheck

	resp, err := http.Get(ts.URL + "/api/trend/daily?days=7")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	points, ok := body["points"].([]any)
	if !ok {
		t.Fatal("response missing 'points' array")
	}
	if len(points) != 7 {
		t.Fatalf("expected 7 points, got %d", len(points))
	}
	target, ok := body["target"].(map[string]any)
	if !ok {
		t.Fatal("response missing 'target'")
	}
	if target["value"] != 85.0 {
		t.Fatalf("expected target 85, got %v", target["value"])
	}
}

func TestTrendBadUnit(t *testing.T) {
	ts, _ := newTestServer(t)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/trend/daily?unit=stone")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestWeightUnitUpdate(t *testing.T) {
	ts, db := newTestServer(t)
	defer ts.Close()

	resp := doJSON(t, http.MethodPut, ts.URL+"/api/profile/unit", map[string]any{"unit": "lb"})
	resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	user, err := db.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if user.WeightUnit != "lb" {
		t.Fatalf("expected unit lb, got %q", user.WeightUnit)
	}

	resp = doJSON(t, http.MethodPut, ts.URL+"/api/profile/unit", map[string]any{"unit": "stone"})
	resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid unit: expected 400, got %d", resp.StatusCode)
	}
}

func TestConfigEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/config")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body := decodeBody(t, resp)
	if body["sso_enabled"] != false {
		t.Fatalf("expected sso_enabled=false, got %v", body["sso_enabled"])
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ts, _ := newTestServer(t)
	defer ts.Close()

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodDelete, "/api/entries"},
		{http.MethodPost, "/api/entries/3e0f4a9e-8f53-4f05-9c3a-6d5d0f9d9e11"},
		{http.MethodPut, "/api/goal"},
		{http.MethodGet, "/api/goal/3e0f4a9e-8f53-4f05-9c3a-6d5d0f9d9e11"},
		{http.MethodPost, "/api/achievements"},
		{http.MethodPost, "/api/trend/daily"},
		{http.MethodGet, "/api/auth/login"},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("%s %s", tc.method, tc.path), func(t *testing.T) {
			req, err := http.NewRequest(tc.method, ts.URL+tc.path, nil)
			if err != nil {
				t.Fatalf("new request: %v", err)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close() //nolint:errcheck

			if resp.StatusCode != http.StatusMethodNotAllowed {
				t.Fatalf("expected 405, got %d", resp.StatusCode)
			}
		})
	}
}
