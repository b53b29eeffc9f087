package sandbox

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ehr/recipients/internal/domain/recipient"
)

func newTestServer(t *testing.T) (*echo.Echo, *SeedHandler) {
	t.Helper()
	e := echo.New()
	h := NewSeedHandler(testCatalog(t), zerolog.Nop())
	h.RegisterRoutes(e.Group("/api/v1/sandbox"))
	return e, h
}

func doRequest(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSeedHandler_Seed(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doRequest(e, http.MethodPost, "/api/v1/sandbox/seed", `{"count": 15, "seed": 42, "shape": "short"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result SeedResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Count != 15 || result.Seed != 42 || result.Shape != "short" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestSeedHandler_SeedDefaultsCount(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doRequest(e, http.MethodPost, "/api/v1/sandbox/seed", `{"seed": 1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var result SeedResult
	json.Unmarshal(rec.Body.Bytes(), &result)
	if result.Count != 10 {
		t.Fatalf("expected default count 10, got %d", result.Count)
	}
}

func TestSeedHandler_SeedBadInput(t *testing.T) {
	e, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"count": `},
		{"negative count", `{"count": -3}`},
		{"unknown shape", `{"count": 2, "shape": "huge"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(e, http.MethodPost, "/api/v1/sandbox/seed", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestSeedHandler_ListRecipients(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doRequest(e, http.MethodGet, "/api/v1/sandbox/recipients", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 before seeding, got %d", rec.Code)
	}

	doRequest(e, http.MethodPost, "/api/v1/sandbox/seed", `{"count": 30, "seed": 9}`)
	rec = doRequest(e, http.MethodGet, "/api/v1/sandbox/recipients?_count=10&_offset=5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var page struct {
		Data    []recipient.Recipient `json:"data"`
		Total   int                   `json:"total"`
		HasMore bool                  `json:"has_more"`
		Links   []struct {
			Relation string `json:"relation"`
			URL      string `json:"url"`
		} `json:"links"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if len(page.Data) != 10 || page.Total != 30 || !page.HasMore {
		t.Fatalf("unexpected page: %d items, total %d, has_more %v", len(page.Data), page.Total, page.HasMore)
	}
	if len(page.Links) != 3 {
		t.Fatalf("expected self/next/previous links, got %+v", page.Links)
	}
	if page.Links[1].URL != "/api/v1/sandbox/recipients?_offset=15&_count=10" {
		t.Fatalf("unexpected next link %q", page.Links[1].URL)
	}
}

func TestSeedHandler_Sample(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doRequest(e, http.MethodGet, "/api/v1/sandbox/recipients/sample?shape=short&seed=5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var r map[string]map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &r); err != nil {
		t.Fatalf("decode sample: %v", err)
	}
	if len(r["dados"]) != 4 {
		t.Fatalf("expected 4 short fields, got %v", r["dados"])
	}
	if r["necessidade"]["centro_transplante"] == "" {
		t.Fatal("expected transplant center")
	}

	again := doRequest(e, http.MethodGet, "/api/v1/sandbox/recipients/sample?shape=short&seed=5", "")
	if again.Body.String() != rec.Body.String() {
		t.Fatal("expected identical samples for identical seeds")
	}
}

func TestSeedHandler_SampleBadParams(t *testing.T) {
	e, _ := newTestServer(t)

	for _, q := range []string{"?shape=huge", "?seed=abc"} {
		rec := doRequest(e, http.MethodGet, "/api/v1/sandbox/recipients/sample"+q, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", q, rec.Code)
		}
	}
}

func TestSeedHandler_ExportJSON(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doRequest(e, http.MethodGet, "/api/v1/sandbox/export/json", "")
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("expected empty array before seeding, got %q", rec.Body.String())
	}

	doRequest(e, http.MethodPost, "/api/v1/sandbox/seed", `{"count": 10, "seed": 4}`)
	rec = doRequest(e, http.MethodGet, "/api/v1/sandbox/export/json", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if len(items) != 10 {
		t.Fatalf("expected 10 items, got %d", len(items))
	}
}

func TestSeedHandler_ExportNDJSON(t *testing.T) {
	e, _ := newTestServer(t)

	doRequest(e, http.MethodPost, "/api/v1/sandbox/seed", `{"count": 3, "seed": 4}`)
	rec := doRequest(e, http.MethodGet, "/api/v1/sandbox/export/ndjson", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "application/x-ndjson" {
		t.Fatalf("unexpected content type %q", ct)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
}

func TestSeedHandler_Reset(t *testing.T) {
	e, h := newTestServer(t)

	doRequest(e, http.MethodPost, "/api/v1/sandbox/seed", `{"count": 3, "seed": 4}`)
	rec := doRequest(e, http.MethodPost, "/api/v1/sandbox/reset", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if n := len(h.seeder.Recipients()); n != 0 {
		t.Fatalf("expected empty batch after reset, got %d", n)
	}
}

func TestBindStatus(t *testing.T) {
	tooLarge := echo.NewHTTPError(http.StatusRequestEntityTooLarge, "request body too large")
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"body limit", tooLarge, http.StatusRequestEntityTooLarge},
		{"wrapped body limit", echo.NewHTTPError(http.StatusBadRequest, "bind").SetInternal(tooLarge), http.StatusRequestEntityTooLarge},
		{"malformed json", echo.NewHTTPError(http.StatusBadRequest, "syntax error"), http.StatusBadRequest},
		{"other", errors.New("boom"), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bindStatus(tt.err); got != tt.want {
				t.Fatalf("bindStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}
