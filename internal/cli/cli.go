/*
Package cli implements the shared command-line surface of the import
binaries: flag set, argument validation and exit-code mapping.
*/
package cli

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"

	"github.com/vseclab/nvdimport/internal/db"
	"github.com/vseclab/nvdimport/internal/feed"
	"github.com/vseclab/nvdimport/internal/importer"
	"github.com/vseclab/nvdimport/internal/tlog"
)

// process exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// sentinel errors.
var (
	ErrUsage = errors.New("usage error")
)

// Options holds the flags shared by all import binaries.
type Options struct {
	Dir         string
	File        string
	InitDB      bool
	LogLevel    string
	LogNoColor  bool
	ShowVersion bool
}

// RegisterFlags binds the shared flags to fs.
func RegisterFlags(fs *flag.FlagSet, opts *Options) {
	fs.StringVar(&opts.Dir, "dir", "", "directory containing NVD feed json files")
	fs.StringVar(&opts.File, "file", "", "single NVD feed json file")
	fs.BoolVar(&opts.InitDB, "init-db", false, "initialize database schema before import")
	fs.StringVar(&opts.LogLevel, "loglevel", tlog.DefaultLevel, "log level")
	fs.BoolVar(&opts.LogNoColor, "lognocolor", false, "disable log colors")
	fs.BoolVar(&opts.ShowVersion, "version", false, "display version information")
}

// Validate enforces that exactly one input mode is selected. It is called
// before any storage handle is opened.
func (o *Options) Validate() error {
	if (o.Dir == "") == (o.File == "") {
		return fmt.Errorf("%w: exactly one of -dir or -file must be given", ErrUsage)
	}

	return nil
}

// Run performs one import run against dbase and returns the process exit
// code: 0 for a clean run, 1 when any file failed or the store became
// unreachable, 2 for unusable input paths.
func Run(opts *Options, dbase db.Manager, logger *slog.Logger) int {
	if opts.InitDB {
		if err := dbase.InitDB(); err != nil {
			logger.Error("init db", "err", err)

			return ExitFailure
		}

		logger.Info("database initialized")
	}

	var (
		files []string
		err   error
	)

	if opts.Dir != "" {
		files, err = feed.Locate(opts.Dir)
	} else {
		var path string
		if path, err = feed.LocateFile(opts.File); err == nil {
			files = []string{path}
		}
	}

	if err != nil {
		logger.Error("resolve input", "err", err)

		return ExitUsage
	}

	result, err := importer.New(dbase, logger).Run(files)
	result.Log(logger)

	if err != nil {
		logger.Error("import aborted", "err", err)

		return ExitFailure
	}

	if !result.Clean() {
		return ExitFailure
	}

	return ExitOK
}
