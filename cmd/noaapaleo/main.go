package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/paleoclim/noaapaleo/internal/cache"
	"github.com/paleoclim/noaapaleo/internal/config"
	"github.com/paleoclim/noaapaleo/internal/dataset"
	"github.com/paleoclim/noaapaleo/internal/export"
	"github.com/paleoclim/noaapaleo/internal/logging"
	"github.com/paleoclim/noaapaleo/internal/noaa"
	"github.com/paleoclim/noaapaleo/internal/store"
	"github.com/paleoclim/noaapaleo/internal/web"
)

func main() {
	studyID := flag.String("study", "", "NOAA study id to build")
	datasetIdx := flag.Int("dataset", -1, "build only the data file at this index instead of the whole study")
	exportPath := flag.String("export", "", "write the assembled dataset to this path (.csv or .xlsx)")
	serve := flag.Bool("serve", false, "run the HTTP API server")
	flag.Parse()

	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"cache_dir", cfg.Cache.Dir,
		"noaa_base_url", cfg.NOAA.BaseURL,
		"database_configured", cfg.Database.URL != "",
	)

	blobs, err := cache.New(cfg.Cache.Dir)
	if err != nil {
		slog.Error("failed to open cache", "error", err)
		os.Exit(1)
	}

	client := noaa.NewClient(cfg.NOAA, slog.Default())
	asm := dataset.NewAssembler(client, blobs, slog.Default())
	if *datasetIdx >= 0 {
		asm.SetSelector(dataset.PickIndex(*datasetIdx))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional Postgres sink for assembled datasets
	if cfg.Database.URL != "" {
		pool, err := newPool(ctx, cfg)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		pg := store.New(pool)
		if err := pg.Init(ctx); err != nil {
			slog.Error("failed to initialize dataset table", "error", err)
			os.Exit(1)
		}
		asm.SetSink(pg)
		slog.Info("postgres dataset store enabled")
	}

	if *serve {
		server := web.NewServer(asm, cfg)
		if err := server.Start(ctx); err != nil {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	if *studyID == "" {
		fmt.Fprintln(os.Stderr, "usage: noaapaleo -study <id> [-dataset <n>] [-export <path>] | -serve")
		os.Exit(2)
	}

	if err := runBuild(ctx, asm, *studyID, *datasetIdx, *exportPath); err != nil {
		slog.Error("build failed", "study_id", *studyID, "error", err)
		os.Exit(1)
	}
}

func newPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func runBuild(ctx context.Context, asm *dataset.Assembler, studyID string, datasetIdx int, exportPath string) error {
	var (
		ds     *dataset.DataSet
		report *dataset.BuildReport
		err    error
	)
	if datasetIdx >= 0 {
		ds, report, err = asm.BuildFile(ctx, studyID)
	} else {
		ds, report, err = asm.Build(ctx, studyID)
	}
	if err != nil {
		return err
	}

	slog.Info("dataset assembled",
		"study_id", ds.StudyID,
		"title", ds.Title,
		"doi", ds.DOI,
		"rows", len(ds.Rows),
		"params", ds.Params.Len(),
		"files_ok", len(report.Succeeded),
		"files_skipped", len(report.Skipped),
	)
	for _, skipped := range report.Skipped {
		slog.Warn("file skipped", "url", skipped.URL, "reason", skipped.Reason)
	}

	if exportPath == "" {
		return nil
	}
	return writeExport(ds, exportPath)
}

func writeExport(ds *dataset.DataSet, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := export.WriteCSV(f, ds); err != nil {
			return err
		}
	case ".xlsx":
		blob, err := export.WriteXLSX(ds)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, blob, 0o644); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported export format %q", filepath.Ext(path))
	}
	slog.Info("dataset exported", "path", path)
	return nil
}
