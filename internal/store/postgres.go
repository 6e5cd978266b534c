// Package store persists assembled datasets in PostgreSQL as an optional
// complement to the file cache.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paleoclim/noaapaleo/internal/dataset"
)

// ErrNotFound is returned when no dataset row exists for the given keys.
var ErrNotFound = errors.New("dataset not found")

const schema = `
CREATE TABLE IF NOT EXISTS paleo_datasets (
	study_id   TEXT        NOT NULL,
	dataset_id TEXT        NOT NULL,
	title      TEXT        NOT NULL DEFAULT '',
	doi        TEXT        NOT NULL DEFAULT '',
	payload    JSONB       NOT NULL,
	built_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (study_id, dataset_id)
)`

// PostgresStore writes assembled datasets to a paleo_datasets table, one
// JSONB payload per (study id, dataset id). It satisfies
// dataset.Sink.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// New creates a PostgresStore on an existing connection pool.
func New(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Init creates the backing table if it does not exist.
func (s *PostgresStore) Init(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("creating paleo_datasets table: %w", err)
	}
	return nil
}

// SaveDataset upserts the dataset under (study id, dataset id).
func (s *PostgresStore) SaveDataset(ctx context.Context, ds *dataset.DataSet, datasetID string) error {
	payload, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("encoding dataset %s/%s: %w", ds.StudyID, datasetID, err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO paleo_datasets (study_id, dataset_id, title, doi, payload, built_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (study_id, dataset_id)
		DO UPDATE SET title = EXCLUDED.title, doi = EXCLUDED.doi,
		              payload = EXCLUDED.payload, built_at = now()`,
		ds.StudyID, datasetID, ds.Title, ds.DOI, payload)
	if err != nil {
		return fmt.Errorf("saving dataset %s/%s: %w", ds.StudyID, datasetID, err)
	}
	return nil
}

// LoadDataset reads a dataset back by its keys.
func (s *PostgresStore) LoadDataset(ctx context.Context, studyID, datasetID string) (*dataset.DataSet, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `
		SELECT payload FROM paleo_datasets
		WHERE study_id = $1 AND dataset_id = $2`,
		studyID, datasetID).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, studyID, datasetID)
	}
	if err != nil {
		return nil, fmt.Errorf("loading dataset %s/%s: %w", studyID, datasetID, err)
	}

	var ds dataset.DataSet
	if err := json.Unmarshal(payload, &ds); err != nil {
		return nil, fmt.Errorf("decoding dataset %s/%s: %w", studyID, datasetID, err)
	}
	return &ds, nil
}
