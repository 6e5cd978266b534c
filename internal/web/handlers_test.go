package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/paleoclim/noaapaleo/internal/config"
	"github.com/paleoclim/noaapaleo/internal/dataset"
	"github.com/paleoclim/noaapaleo/internal/noaa"
)

// fakeBuilder satisfies Builder with canned results.
type fakeBuilder struct {
	study      *noaa.Study
	ds         *dataset.DataSet
	report     *dataset.BuildReport
	cached     *dataset.DataSet
	buildCalls int
}

func (f *fakeBuilder) Metadata(ctx context.Context, studyID string) (*noaa.Study, error) {
	if f.study == nil {
		return nil, fmt.Errorf("study %s not found", studyID)
	}
	return f.study, nil
}

func (f *fakeBuilder) Build(ctx context.Context, studyID string) (*dataset.DataSet, *dataset.BuildReport, error) {
	f.buildCalls++
	if f.ds == nil {
		return nil, nil, errors.New("study metadata missing required fields: doi")
	}
	return f.ds, f.report, nil
}

func (f *fakeBuilder) LoadCached(studyID, datasetID string) (*dataset.DataSet, error) {
	if f.cached == nil {
		return nil, errors.New("cache miss")
	}
	return f.cached, nil
}

func testServer(t *testing.T, b Builder) *Server {
	t.Helper()
	cfg := &config.Config{}
	cfg.Server.RequestTimeout = time.Minute
	cfg.Server.RateLimitEnabled = false
	return NewServer(b, cfg)
}

func builtDataSet(t *testing.T) *dataset.DataSet {
	t.Helper()
	event := dataset.NewEvent("Site A", -69.5, -15.8)
	table, err := dataset.ParseTable("## depth\tdepth,,,cm,,,,,\n## age\tage,,,cal ka BP,,,,,\n1\t0.5\n", event)
	if err != nil {
		t.Fatal(err)
	}
	ds := dataset.NewDataSet("12345")
	ds.Title = "Example Study"
	ds.DOI = "10.25921/example"
	ds.AddEvent(event)
	ds.AppendTable(table)
	return ds
}

func TestHandleDataset_BuildsOnCacheMiss(t *testing.T) {
	b := &fakeBuilder{
		ds:     builtDataSet(t),
		report: &dataset.BuildReport{ID: "r1", StudyID: "12345"},
	}
	srv := testServer(t, b)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/studies/12345/dataset", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp datasetResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Dataset.Title != "Example Study" {
		t.Errorf("Title = %q", resp.Dataset.Title)
	}
	if resp.Report == nil || resp.Report.ID != "r1" {
		t.Errorf("Report = %+v, want build report", resp.Report)
	}
	if b.buildCalls != 1 {
		t.Errorf("buildCalls = %d, want 1", b.buildCalls)
	}
}

func TestHandleDataset_ServesCache(t *testing.T) {
	b := &fakeBuilder{cached: builtDataSet(t)}
	srv := testServer(t, b)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/studies/12345/dataset", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp datasetResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Report != nil {
		t.Errorf("Report = %+v, want nil for cached dataset", resp.Report)
	}
	if b.buildCalls != 0 {
		t.Errorf("buildCalls = %d, want 0", b.buildCalls)
	}

	// rebuild=1 bypasses the cache.
	b.ds = builtDataSet(t)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/studies/12345/dataset?rebuild=1", nil))
	if b.buildCalls != 1 {
		t.Errorf("buildCalls after rebuild=1 = %d, want 1", b.buildCalls)
	}
}

func TestHandleDataset_ErrorMapping(t *testing.T) {
	srv := testServer(t, &fakeBuilder{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/studies/12345/dataset", nil))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Code != "MD001" {
		t.Errorf("Code = %q, want MD001", resp.Code)
	}
}

func TestHandleMetadata(t *testing.T) {
	b := &fakeBuilder{study: &noaa.Study{
		StudyName:          "Example Study",
		DOI:                "10.25921/example",
		OnlineResourceLink: "https://example.org",
		Site:               []noaa.Site{{SiteName: "Site A"}},
	}}
	srv := testServer(t, b)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/studies/12345/metadata", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var study noaa.Study
	if err := json.Unmarshal(rec.Body.Bytes(), &study); err != nil {
		t.Fatal(err)
	}
	if study.StudyName != "Example Study" {
		t.Errorf("StudyName = %q", study.StudyName)
	}
}

func TestHandleMetadata_NotFound(t *testing.T) {
	srv := testServer(t, &fakeBuilder{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/studies/99999/metadata", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleExport_CSV(t *testing.T) {
	b := &fakeBuilder{cached: builtDataSet(t)}
	srv := testServer(t, b)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/studies/12345/dataset/export?format=csv", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "depth,age,Event,Latitude,Longitude") {
		t.Errorf("csv body = %q", body)
	}
}

func TestHandleExport_UnsupportedFormat(t *testing.T) {
	b := &fakeBuilder{cached: builtDataSet(t)}
	srv := testServer(t, b)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/studies/12345/dataset/export?format=pdf", nil))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{errors.New("study metadata missing required fields: doi"), "MD001"},
		{errors.New("study 99999 not found"), "MD002"},
		{errors.New("cache miss: /tmp/x.json"), "CA001"},
		{errors.New("file is not tabular data: no parameter declarations"), "FF003"},
		{errors.New("something exploded"), "GEN001"},
	}
	for _, tt := range tests {
		if got := MapError(tt.err); got.Code != tt.code {
			t.Errorf("MapError(%v).Code = %q, want %q", tt.err, got.Code, tt.code)
		}
	}
}
