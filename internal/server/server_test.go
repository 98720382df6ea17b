package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/zonemap/pkg/cache"
	"github.com/matzehuels/zonemap/pkg/observability"
	"github.com/matzehuels/zonemap/pkg/observability/prom"
	"github.com/matzehuels/zonemap/pkg/pipeline"
	"github.com/matzehuels/zonemap/pkg/render/sink"
)

const sampleCSV = `Country/Market,Certainty_1to9,Alignment_1to9,MarketSize_Units
Germany,3,4,120
France,8,8,80
Spain,8,8,40
Italy,abc,5,60
`

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.Runner == nil {
		fc, err := cache.NewFileCache(t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		cfg.Runner = pipeline.NewRunner(fc, nil, cfg.Logger)
	}
	ts := httptest.NewServer(New(cfg).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "text/csv", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return e
}

func TestRenderSVG(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp := post(t, ts.URL+"/v1/render?format=svg&title=EMEA", sampleCSV)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != pipeline.ContentTypes[pipeline.FormatSVG] {
		t.Errorf("content type = %q", ct)
	}
	if resp.Header.Get("X-Render-ID") == "" {
		t.Error("missing X-Render-ID")
	}
	if got := resp.Header.Get("X-Points"); got != "3" {
		t.Errorf("X-Points = %q, want 3", got)
	}
	if got := resp.Header.Get("X-Skipped-Rows"); got != "1" {
		t.Errorf("X-Skipped-Rows = %q, want 1", got)
	}
	if resp.Header.Get("X-Scene-Hash") == "" {
		t.Error("missing X-Scene-Hash")
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "<svg") || !strings.Contains(string(body), "EMEA") {
		t.Errorf("body is not the titled chart: %.120s", body)
	}
}

func TestRenderJSONAndCache(t *testing.T) {
	ts := newTestServer(t, Config{})

	first := post(t, ts.URL+"/v1/render?format=json", sampleCSV)
	if first.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", first.StatusCode)
	}
	if got := first.Header.Get("X-Cache"); got != "miss" {
		t.Errorf("first X-Cache = %q, want miss", got)
	}
	data, _ := io.ReadAll(first.Body)
	s, err := sink.ReadJSON(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Points) != 3 {
		t.Errorf("scene points = %d, want 3", len(s.Points))
	}

	second := post(t, ts.URL+"/v1/render?format=json", sampleCSV)
	if got := second.Header.Get("X-Cache"); got != "hit" {
		t.Errorf("second X-Cache = %q, want hit", got)
	}
	if first.Header.Get("X-Scene-Hash") != second.Header.Get("X-Scene-Hash") {
		t.Error("identical requests should produce the same scene hash")
	}
}

func TestRenderErrors(t *testing.T) {
	ts := newTestServer(t, Config{MaxBody: 64})

	tests := []struct {
		name   string
		query  string
		body   string
		status int
		code   string
	}{
		{"bad format", "?format=gif", sampleCSV, http.StatusBadRequest, "INVALID_FORMAT"},
		{"two formats", "?format=svg,png", sampleCSV, http.StatusBadRequest, "INVALID_FORMAT"},
		{"blank format", "?format=,", sampleCSV, http.StatusBadRequest, "INVALID_FORMAT"},
		{"bad number", "?size_scale=big", sampleCSV, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad bool", "?hide_grid=maybe", sampleCSV, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad scale", "?scale=100", sampleCSV, http.StatusBadRequest, "INVALID_OPTIONS"},
		{"unknown preset", "?preset=nope", sampleCSV, http.StatusBadRequest, "INVALID_OPTIONS"},
		{"empty body", "", "", http.StatusBadRequest, "INVALID_FORMAT"},
		{"missing columns", "", "Country/Market,Certainty_1to9,Alignment_1to9\nA,1,2\n", http.StatusUnprocessableEntity, "MISSING_COLUMNS"},
		{"too large", "", sampleCSV + strings.Repeat("Extra,1,1,1\n", 20), http.StatusRequestEntityTooLarge, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL+"/v1/render"+tt.query, tt.body)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if e := decodeError(t, resp); e.Code != tt.code {
				t.Errorf("code = %q (%s), want %s", e.Code, e.Message, tt.code)
			}
		})
	}
}

func TestMissingColumnsListed(t *testing.T) {
	ts := newTestServer(t, Config{})
	resp := post(t, ts.URL+"/v1/render", "Country/Market,Certainty_1to9,Alignment_1to9\nA,1,2\n")
	e := decodeError(t, resp)
	if len(e.Missing) != 1 || e.Missing[0] != "magnitude" {
		t.Errorf("missing = %v, want [magnitude]", e.Missing)
	}
}

func TestCheck(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp := post(t, ts.URL+"/v1/check", sampleCSV+"Peru,12,5,10\n")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got CheckResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Rows != 5 || got.Points != 4 {
		t.Errorf("rows/points = %d/%d, want 5/4", got.Rows, got.Points)
	}
	if len(got.Skipped) != 1 || got.Skipped[0].Row != 3 {
		t.Errorf("skipped = %+v", got.Skipped)
	}
	if len(got.Violations) != 1 || got.Violations[0].Value != 12 {
		t.Errorf("violations = %+v", got.Violations)
	}

	resp = post(t, ts.URL+"/v1/check", "Country/Market,Certainty_1to9\nA,1\n")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("missing columns should still report 200, got %d", resp.StatusCode)
	}
	got = CheckResponse{}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got.Missing) != 2 {
		t.Errorf("missing = %v, want y and magnitude", got.Missing)
	}
}

func TestZones(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp, err := http.Get(ts.URL + "/v1/zones")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var sets []RuleSetResponse
	if err := json.NewDecoder(resp.Body).Decode(&sets); err != nil {
		t.Fatal(err)
	}
	if len(sets) < 2 {
		t.Fatalf("got %d rule sets, want the presets", len(sets))
	}
	for _, rs := range sets {
		if !rs.Total {
			t.Errorf("preset %s should cover the whole axis: %s", rs.Name, rs.Error)
		}
	}

	resp2, err := http.Get(ts.URL + "/v1/zones?preset=nope")
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Errorf("unknown preset status = %d, want 404", resp2.StatusCode)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	t.Cleanup(observability.Reset)
	m := prom.New("zonemap_test")
	observability.SetHTTPHooks(m)

	h := New(Config{Logger: log.New(io.Discard), Metrics: m.Handler(), Version: "v1.2.3"}).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	var health map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatal(err)
	}
	if health["status"] != "ok" || health["version"] != "v1.2.3" {
		t.Errorf("health = %v", health)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	want := `zonemap_test_http_requests_total{code="200",method="GET",route="/healthz"} 1`
	if !strings.Contains(rec.Body.String(), want) {
		t.Errorf("metrics missing %s:\n%s", want, rec.Body.String())
	}
}

func TestUnmatchedRouteLabel(t *testing.T) {
	t.Cleanup(observability.Reset)
	m := prom.New("zonemap_test")
	observability.SetHTTPHooks(m)

	h := New(Config{Logger: log.New(io.Discard), Metrics: m.Handler()}).Handler()

	for _, path := range []string{"/nope", "/random/123"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	want := `zonemap_test_http_requests_total{code="404",method="GET",route="unmatched"} 2`
	if !strings.Contains(body, want) {
		t.Errorf("metrics missing %s:\n%s", want, body)
	}
	for _, path := range []string{"/nope", "/random/123"} {
		if strings.Contains(body, `route="`+path+`"`) {
			t.Errorf("metrics carry raw path %s as a route label", path)
		}
	}
}

func TestStatusFor(t *testing.T) {
	if got := statusFor(io.ErrUnexpectedEOF); got != http.StatusInternalServerError {
		t.Errorf("uncoded error status = %d, want 500", got)
	}
	if got := statusFor(&http.MaxBytesError{Limit: 1}); got != http.StatusRequestEntityTooLarge {
		t.Errorf("max bytes status = %d, want 413", got)
	}
}
