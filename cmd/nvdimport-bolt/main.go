/*
Package main implements command-line functionality.
*/
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/vseclab/nvdimport/internal/cli"
	"github.com/vseclab/nvdimport/internal/db/bolt"
	"github.com/vseclab/nvdimport/internal/tlog"
	"github.com/vseclab/nvdimport/internal/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := new(cli.Options)
	cli.RegisterFlags(flag.CommandLine, opts)
	dbFile := flag.String("db", bolt.DefaultFilename, "bolt database file")
	flag.Parse()

	if opts.ShowVersion {
		fmt.Fprintf(flag.CommandLine.Output(), "%s\n", version.Version)
		return cli.ExitOK
	}

	if err := opts.Validate(); err != nil {
		fmt.Fprintln(flag.CommandLine.Output(), err)
		flag.Usage()

		return cli.ExitUsage
	}

	logger := tlog.New(opts.LogLevel, !opts.LogNoColor)

	dbase, err := bolt.New(bolt.WithFilename(*dbFile))
	if err != nil {
		logger.Error("instantiate db", "err", err)

		return cli.ExitFailure
	}

	defer func() {
		_ = dbase.Close()
	}()

	return cli.Run(opts, dbase, logger)
}
