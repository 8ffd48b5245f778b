/*
Package importer runs the feed import: parse each located file, upsert each
record, accumulate counts for the final report.
*/
package importer

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/vseclab/nvdimport/internal/cve"
	"github.com/vseclab/nvdimport/internal/db"
)

// progressEvery is how often per-file progress is logged, in records.
const progressEvery = 1000

// Importer ties the parser and the persistence layer together.
type Importer struct {
	DB     db.Manager
	Logger *slog.Logger
}

// New instantiates an importer.
func New(dbase db.Manager, logger *slog.Logger) *Importer {
	return &Importer{
		DB:     dbase,
		Logger: logger,
	}
}

// Result holds the counters of one import run.
type Result struct {
	FilesProcessed int
	FilesFailed    int
	Inserted       int
	Updated        int
	Skipped        int
	Errors         int
}

// Clean reports whether the run finished without file-level failures.
// Record-level skips and storage errors do not make a run unclean.
func (r *Result) Clean() bool {
	return r.FilesFailed == 0
}

// Log emits the final summary line.
func (r *Result) Log(logger *slog.Logger) {
	logger.Info("import finished",
		"files", r.FilesProcessed,
		"failed", r.FilesFailed,
		"inserted", r.Inserted,
		"updated", r.Updated,
		"skipped", r.Skipped,
		"errors", r.Errors,
	)
}

// Run imports files sequentially. A file that cannot be parsed is logged,
// counted as failed and skipped; the run continues with the remaining
// files. Only storage unavailability aborts the run.
func (im *Importer) Run(files []string) (*Result, error) {
	result := new(Result)

	for _, path := range files {
		im.Logger.Info("importing", "file", path)

		if err := im.importFile(path, result); err != nil {
			if errors.Is(err, db.ErrStorageUnavailable) {
				return result, err
			}

			im.Logger.Error("file skipped", "file", path, "err", err)
			result.FilesFailed++

			continue
		}

		result.FilesProcessed++
	}

	return result, nil
}

func (im *Importer) importFile(path string, result *Result) error {
	logger := im.Logger.With("file", path)

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	schema, items, err := cve.Parse(f)
	if err != nil {
		return err
	}
	defer func() {
		// unblock the parser goroutine when returning mid-stream.
		for range items {
		}
	}()

	logger.Debug("detected schema", "schema", schema)

	var processed int
	for item := range items {
		if item.Err != nil {
			if errors.Is(item.Err, cve.ErrMalformedFeed) {
				return item.Err
			}

			logger.Warn("record skipped", "err", item.Err)
			result.Skipped++

			continue
		}

		inserted, err := im.DB.Upsert(item.Model)
		if err != nil {
			if pingErr := im.DB.Ping(); pingErr != nil {
				return fmt.Errorf("%w: %s", db.ErrStorageUnavailable, pingErr)
			}

			logger.Error("upsert failed", "cve", item.Model.CVEID, "err", err)
			result.Errors++

			continue
		}

		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}

		processed++
		if processed%progressEvery == 0 {
			logger.Info("progress", "records", processed)
		}
	}

	return nil
}
