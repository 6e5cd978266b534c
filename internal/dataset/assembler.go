package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/paleoclim/noaapaleo/internal/cache"
	"github.com/paleoclim/noaapaleo/internal/noaa"
)

// DatasetIDAll is the dataset id under which a full-study build is cached.
// Single-file builds are cached under the selected file's index instead.
const DatasetIDAll = "all"

// ArchiveClient is the remote archive surface the assembler needs:
// metadata lookup by study id and bulk file download.
type ArchiveClient interface {
	StudyMetadata(ctx context.Context, studyID string) (*noaa.Study, error)
	DownloadFile(ctx context.Context, url, path string) error
}

// Sink receives assembled datasets for persistence beyond the file cache,
// e.g. a database-backed store.
type Sink interface {
	SaveDataset(ctx context.Context, ds *DataSet, datasetID string) error
}

// FileOutcome records how one data file fared during a build.
type FileOutcome struct {
	URL    string `json:"url"`
	Site   string `json:"site"`
	Rows   int    `json:"rows,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// BuildReport aggregates per-file outcomes of one build, so partial
// results are observable rather than only logged.
type BuildReport struct {
	ID        string        `json:"id"`
	StudyID   string        `json:"study_id"`
	Succeeded []FileOutcome `json:"succeeded"`
	Skipped   []FileOutcome `json:"skipped"`
}

func newBuildReport(studyID string) *BuildReport {
	return &BuildReport{
		ID:      uuid.NewString(),
		StudyID: studyID,
	}
}

// Assembler builds a study's DataSet: metadata via cache-then-client,
// data files downloaded if missing, each file parsed into a Table and
// merged into one DataSet.
//
// Processing is sequential and best-effort: a file that fails to parse is
// recorded in the BuildReport and skipped, never aborting the build.
type Assembler struct {
	client   ArchiveClient
	cache    *cache.Store
	logger   *slog.Logger
	selector SelectionStrategy
	sink     Sink
}

// NewAssembler creates an Assembler. The selection strategy defaults to
// PickFirst; override it with SetSelector.
func NewAssembler(client ArchiveClient, store *cache.Store, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		client:   client,
		cache:    store,
		logger:   logger,
		selector: PickFirst{},
	}
}

// SetSelector overrides the strategy used to pick among multiple
// candidate files in the single-file path.
func (a *Assembler) SetSelector(s SelectionStrategy) {
	if s != nil {
		a.selector = s
	}
}

// SetSink registers an additional persistence target for assembled
// datasets. Sink failures are logged, not fatal.
func (a *Assembler) SetSink(s Sink) {
	a.sink = s
}

// Metadata resolves a study's metadata document: cache first, remote
// lookup on miss, persisting the fetched document before returning.
// A document missing required fields is a fatal error.
func (a *Assembler) Metadata(ctx context.Context, studyID string) (*noaa.Study, error) {
	logger := a.logger.With("study_id", studyID)

	if blob, err := a.cache.LoadMetadata(studyID); err == nil {
		var study noaa.Study
		if err := json.Unmarshal(blob, &study); err != nil {
			logger.Warn("cached metadata is unreadable, refetching", "error", err)
		} else {
			logger.Info("loaded cached metadata")
			if err := study.Validate(); err != nil {
				return nil, err
			}
			return &study, nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		logger.Warn("metadata cache read failed, refetching", "error", err)
	}

	study, err := a.client.StudyMetadata(ctx, studyID)
	if err != nil {
		return nil, err
	}

	blob, err := json.Marshal(study)
	if err != nil {
		return nil, fmt.Errorf("encoding metadata for study %s: %w", studyID, err)
	}
	if err := a.cache.SaveMetadata(studyID, blob); err != nil {
		return nil, err
	}
	logger.Info("cached metadata")

	if err := study.Validate(); err != nil {
		return nil, err
	}
	return study, nil
}

// Build assembles the full-study DataSet: every data file of every site,
// merged with column-union semantics. The returned BuildReport lists
// which files contributed rows and which were skipped, with reasons.
func (a *Assembler) Build(ctx context.Context, studyID string) (*DataSet, *BuildReport, error) {
	study, err := a.Metadata(ctx, studyID)
	if err != nil {
		return nil, nil, err
	}

	ds := a.newDataSet(studyID, study)
	report := newBuildReport(studyID)
	logger := a.logger.With("study_id", studyID, "title", ds.Title)

	for _, site := range study.Site {
		if !site.HasCoordinates() {
			for _, ref := range siteFiles(site) {
				report.skip(ref, "site has no coordinates")
			}
			logger.Warn("skipping site without coordinates", "site", site.SiteName)
			continue
		}

		event := NewEvent(site.SiteName, site.Longitude(), site.Latitude())
		ds.AddEvent(event)

		for _, ref := range siteFiles(site) {
			a.processFile(ctx, ds, report, event, ref)
		}
	}

	a.persist(ctx, ds, DatasetIDAll, logger)
	logger.Info("build finished",
		"report_id", report.ID,
		"rows", len(ds.Rows),
		"files_ok", len(report.Succeeded),
		"files_skipped", len(report.Skipped),
	)
	return ds, report, nil
}

// BuildFile assembles a DataSet from a single data file of the study,
// chosen by the configured selection strategy among all candidates. The
// dataset is cached under the selected file's index.
func (a *Assembler) BuildFile(ctx context.Context, studyID string) (*DataSet, *BuildReport, error) {
	study, err := a.Metadata(ctx, studyID)
	if err != nil {
		return nil, nil, err
	}

	var candidates []FileRef
	events := make(map[string]Event)
	for _, site := range study.Site {
		if !site.HasCoordinates() {
			continue
		}
		events[site.SiteName] = NewEvent(site.SiteName, site.Longitude(), site.Latitude())
		candidates = append(candidates, siteFiles(site)...)
	}

	idx, err := a.selector.Select(candidates)
	if err != nil {
		return nil, nil, fmt.Errorf("selecting data file for study %s: %w", studyID, err)
	}
	ref := candidates[idx]
	event := events[ref.SiteName]

	ds := a.newDataSet(studyID, study)
	ds.AddEvent(event)
	report := newBuildReport(studyID)
	logger := a.logger.With("study_id", studyID, "title", ds.Title)

	a.processFile(ctx, ds, report, event, ref)
	a.persist(ctx, ds, strconv.Itoa(idx), logger)
	return ds, report, nil
}

// LoadCached reads a previously assembled dataset from the data cache.
func (a *Assembler) LoadCached(studyID, datasetID string) (*DataSet, error) {
	blob, err := a.cache.LoadDataset(studyID, datasetID)
	if err != nil {
		return nil, err
	}
	var ds DataSet
	if err := json.Unmarshal(blob, &ds); err != nil {
		return nil, fmt.Errorf("decoding cached dataset %s/%s: %w", studyID, datasetID, err)
	}
	return &ds, nil
}

func (a *Assembler) newDataSet(studyID string, study *noaa.Study) *DataSet {
	ds := NewDataSet(studyID)
	ds.Title = study.StudyName
	ds.DOI = study.DOI
	ds.Link = study.OnlineResourceLink
	return ds
}

// processFile ensures the file is locally present, parses it by
// extension, and merges the result. Every failure path records a skip
// outcome instead of propagating.
func (a *Assembler) processFile(ctx context.Context, ds *DataSet, report *BuildReport, event Event, ref FileRef) {
	logger := a.logger.With("study_id", ds.StudyID, "url", ref.URL)

	local := a.cache.DataFilePath(ds.StudyID, ref.URL)
	if _, err := os.Stat(local); errors.Is(err, os.ErrNotExist) {
		if err := a.client.DownloadFile(ctx, ref.URL, local); err != nil {
			logger.Error("download failed", "error", err)
			report.skip(ref, fmt.Sprintf("download failed: %v", err))
			return
		}
	}

	if info, err := os.Stat(local); err != nil {
		logger.Error("cannot stat local file", "path", local, "error", err)
		report.skip(ref, fmt.Sprintf("cannot stat %s: %v", local, err))
		return
	} else if info.IsDir() {
		logger.Warn("local path is a directory, skipping", "path", local)
		report.skip(ref, "local path is a directory")
		return
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(local), "."))
	var parse func(string, Event) (*Table, error)
	switch ext {
	case "txt":
		parse = ParseTable
	case "csv":
		parse = ParseCSVTable
	default:
		logger.Warn("unsupported file format", "extension", ext)
		report.skip(ref, fmt.Sprintf("unsupported file format %q", ext))
		return
	}

	content, err := os.ReadFile(local)
	if err != nil {
		logger.Error("cannot read local file", "path", local, "error", err)
		report.skip(ref, fmt.Sprintf("cannot read %s: %v", local, err))
		return
	}

	table, err := parse(string(content), event)
	if err != nil {
		logger.Warn("could not parse data file, skipping", "error", err)
		report.skip(ref, fmt.Sprintf("parse failed: %v", err))
		return
	}

	ds.AppendTable(table)
	report.Succeeded = append(report.Succeeded, FileOutcome{
		URL:  ref.URL,
		Site: ref.SiteName,
		Rows: len(table.Rows),
	})
	logger.Info("parsed data file", "rows", len(table.Rows), "params", table.Params.Len())
}

// persist writes the dataset to the data cache and, when configured, the
// sink. Persistence failures do not fail the build; the assembled data is
// still returned to the caller.
func (a *Assembler) persist(ctx context.Context, ds *DataSet, datasetID string, logger *slog.Logger) {
	blob, err := json.Marshal(ds)
	if err != nil {
		logger.Error("encoding dataset failed", "error", err)
		return
	}
	if err := a.cache.SaveDataset(ds.StudyID, datasetID, blob); err != nil {
		logger.Error("caching dataset failed", "error", err)
	}
	if a.sink != nil {
		if err := a.sink.SaveDataset(ctx, ds, datasetID); err != nil {
			logger.Error("dataset sink save failed", "error", err)
		}
	}
}

func (r *BuildReport) skip(ref FileRef, reason string) {
	r.Skipped = append(r.Skipped, FileOutcome{
		URL:    ref.URL,
		Site:   ref.SiteName,
		Reason: reason,
	})
}

func siteFiles(site noaa.Site) []FileRef {
	var refs []FileRef
	for _, pd := range site.PaleoData {
		for _, df := range pd.DataFile {
			if df.FileURL == "" {
				continue
			}
			refs = append(refs, FileRef{SiteName: site.SiteName, URL: df.FileURL})
		}
	}
	return refs
}
