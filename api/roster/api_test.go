package roster

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rosterd/core/demand"
	"rosterd/core/model"
	engine "rosterd/core/roster"
	rosterlog "rosterd/core/roster/logging"
)

func testEngine(t *testing.T) *engine.Engine {
	t.Helper()
	var dem demand.Table
	for i := range dem {
		dem[i] = []int{0, 0, 0}
	}
	dem[0] = []int{1, 0, 0}
	cfg := engine.Config{
		Bands: model.BandTable{
			{Index: 0, Label: "10-14", StartHour: 10, EndHour: 14},
			{Index: 1, Label: "14-18", StartHour: 14, EndHour: 18},
			{Index: 2, Label: "18-22", StartHour: 18, EndHour: 22},
		},
		Demand: dem,
		Policy: engine.Policy{
			PermanentDailyMin: 3, PermanentDailyMax: 12,
			OnCallDailyMin: 3, OnCallDailyMax: 12,
			PermanentWeekTarget: 4, PermanentWeekCeiling: 48,
			OnCallWeekMax:    40,
			ThinBandMaxHours: 2,
			ShortfallCap:     10,
		},
		Solver: engine.SolverConfig{TimeoutSeconds: 20},
	}
	e, err := engine.New(cfg, nil, nil, nil)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	return e
}

func TestPlanHandlerSolves(t *testing.T) {
	h := NewPlanHandler(testEngine(t))
	body := `{
		"horizon": {"start": "2026-03-02", "weeks": 1},
		"workers": [{"name": "ana", "role": "on_call", "max_week_hours": 40}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/roster/plan", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	var out struct {
		SolveID  string `json:"solve_id"`
		Outcome  string `json:"outcome"`
		Schedule *struct {
			TotalShortfall int `json:"total_shortfall"`
			Weeks          []struct {
				Days []struct {
					Shifts []struct {
						Workers []string `json:"workers"`
					} `json:"shifts"`
				} `json:"days"`
			} `json:"weeks"`
		} `json:"schedule"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Outcome != "scheduled" || out.SolveID == "" {
		t.Fatalf("response %+v", out)
	}
	if out.Schedule == nil || out.Schedule.TotalShortfall != 0 {
		t.Fatalf("schedule missing or short: %+v", out.Schedule)
	}
	got := out.Schedule.Weeks[0].Days[0].Shifts[0].Workers
	if len(got) != 1 || got[0] != "ana" {
		t.Fatalf("monday opening shift %v", got)
	}
}

func TestPlanHandlerRejectsBadPayloads(t *testing.T) {
	h := NewPlanHandler(testEngine(t))

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"horizon": `},
		{"bad role", `{"horizon": {"start": "2026-03-02", "weeks": 1}, "workers": [{"name": "a", "role": "ghost"}]}`},
		{"bad date", `{"horizon": {"start": "yesterday", "weeks": 1}}`},
		{"empty horizon", `{"workers": [{"name": "a", "role": "on_call"}]}`},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/roster/plan", strings.NewReader(c.body))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: status %d", c.name, rr.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/roster/plan", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET: status %d", rr.Code)
	}
}

func TestParseRequestDefaultsHighImportance(t *testing.T) {
	body := `{
		"horizon": {"start": "2026-03-02", "weeks": 1},
		"workers": [{"name": "ana", "role": "on_call"}],
		"events": [
			{"kind": "high_attendance", "date": "2026-03-04", "kickoff_hour": 21},
			{"kind": "high_attendance", "date": "2026-03-05", "kickoff_hour": 21, "high_importance": false}
		]
	}`
	req, err := ParseRequest([]byte(body))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(req.Events) != 2 {
		t.Fatalf("events %d, want 2", len(req.Events))
	}
	if !req.Events[0].HighImportance {
		t.Fatalf("omitted high_importance must default to true")
	}
	if req.Events[1].HighImportance {
		t.Fatalf("explicit false must be kept")
	}
}

type memStore struct{ recs []rosterlog.Record }

func (m *memStore) Append(ctx context.Context, r rosterlog.Record) error {
	m.recs = append(m.recs, r)
	return nil
}

func (m *memStore) Query(ctx context.Context, q rosterlog.Query) ([]rosterlog.Record, error) {
	var res []rosterlog.Record
	for _, r := range m.recs {
		if q.Outcome != "" && r.Outcome != q.Outcome {
			continue
		}
		res = append(res, r)
	}
	return res, nil
}

func (m *memStore) Close() error { return nil }

func TestLogHandlerAuthAndFilters(t *testing.T) {
	store := &memStore{}
	if err := store.Append(context.Background(), rosterlog.Record{
		SolveID:   "s1",
		Timestamp: time.Now(),
		Outcome:   "scheduled",
	}); err != nil {
		t.Fatalf("append: %v", err)
	}
	h := NewLogHandler(store, "tok")

	req := httptest.NewRequest(http.MethodGet, "/api/roster/logs?outcome=scheduled", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out []rosterlog.Record
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 1 || out[0].SolveID != "s1" {
		t.Fatalf("records %+v", out)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/roster/logs", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
}
