// Package noaa is the client for the NOAA Paleoclimatology archive: study
// metadata lookup via the search endpoint and bulk download of the raw
// measurement files referenced by a study.
package noaa

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-resty/resty/v2"
	"github.com/paleoclim/noaapaleo/internal/config"
)

// searchPath is the study search endpoint, relative to the archive host.
const searchPath = "/paleo-search/study/search.json"

// Client talks to the NOAA archive.
//
// Two underlying HTTP clients are kept: one bound to the archive host for
// metadata lookups, and one without a base URL for data-file downloads,
// whose URLs in the metadata document are absolute and may point at a
// different host. Both retry transient failures with backoff.
type Client struct {
	search   *resty.Client
	download *resty.Client
	logger   *slog.Logger
}

// NewClient creates a Client from configuration.
func NewClient(cfg config.NOAAConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	search := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(cfg.RetryMaxWait).
		SetHeader("Accept", "application/json")

	download := resty.New().
		SetTimeout(cfg.DownloadTimeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(cfg.RetryMaxWait)

	return &Client{
		search:   search,
		download: download,
		logger:   logger,
	}
}

// StudyMetadata resolves a study id to its metadata document.
//
// The search endpoint returns an array under "study"; the first element is
// the document for the requested id.
func (c *Client) StudyMetadata(ctx context.Context, studyID string) (*Study, error) {
	c.logger.Info("fetching study metadata", "study_id", studyID)

	var result searchResponse
	resp, err := c.search.R().
		SetContext(ctx).
		SetQueryParam("NOAAStudyId", studyID).
		SetResult(&result).
		Get(searchPath)
	if err != nil {
		return nil, fmt.Errorf("study search for %s: %w", studyID, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("study search for %s: unexpected status %s", studyID, resp.Status())
	}
	if len(result.Study) == 0 {
		return nil, fmt.Errorf("study %s not found", studyID)
	}

	return &result.Study[0], nil
}

// DownloadFile fetches url and writes the body byte-for-byte to path,
// creating parent directories as needed.
func (c *Client) DownloadFile(ctx context.Context, url, path string) error {
	c.logger.Info("downloading data file", "url", url, "path", path)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating download dir for %s: %w", path, err)
	}

	resp, err := c.download.R().
		SetContext(ctx).
		SetOutput(path).
		Get(url)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", url, err)
	}
	if resp.IsError() {
		return fmt.Errorf("downloading %s: unexpected status %s", url, resp.Status())
	}

	return nil
}
