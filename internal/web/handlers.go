package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/paleoclim/noaapaleo/internal/dataset"
	"github.com/paleoclim/noaapaleo/internal/export"
	"github.com/paleoclim/noaapaleo/internal/logging"
)

// datasetResponse pairs an assembled dataset with its build report. The
// report is absent when the dataset was served from cache.
type datasetResponse struct {
	Dataset *dataset.DataSet     `json:"dataset"`
	Report  *dataset.BuildReport `json:"report,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleMetadata returns the study's metadata document, fetching and
// caching it on first access.
func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	studyID := chi.URLParam(r, "studyID")

	study, err := s.builder.Metadata(r.Context(), studyID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, study)
}

// handleDataset serves the assembled dataset for a study. A cached
// dataset is returned when present; pass rebuild=1 to force a rebuild.
func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	studyID := chi.URLParam(r, "studyID")

	ds, report, err := s.datasetFor(r, studyID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, datasetResponse{Dataset: ds, Report: report})
}

// handleExport streams the dataset as csv (default) or xlsx.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	studyID := chi.URLParam(r, "studyID")

	ds, _, err := s.datasetFor(r, studyID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	format := r.URL.Query().Get("format")
	switch format {
	case "", "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", studyID+".csv"))
		if err := export.WriteCSV(w, ds); err != nil {
			logging.FromContext(r.Context()).Error("csv export failed", "error", err)
		}
	case "xlsx":
		blob, err := export.WriteXLSX(ds)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", studyID+".xlsx"))
		w.Write(blob)
	default:
		s.respondError(w, r, fmt.Errorf("unsupported file format %q", format))
	}
}

// datasetFor loads the cached full-study dataset or builds it.
func (s *Server) datasetFor(r *http.Request, studyID string) (*dataset.DataSet, *dataset.BuildReport, error) {
	if r.URL.Query().Get("rebuild") != "1" {
		if ds, err := s.builder.LoadCached(studyID, dataset.DatasetIDAll); err == nil {
			logging.FromContext(r.Context()).Info("serving cached dataset", "study_id", studyID)
			return ds, nil, nil
		}
	}
	return s.builder.Build(r.Context(), studyID)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
