/*
Package main implements command-line functionality.
*/
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/vseclab/nvdimport/internal/cli"
	"github.com/vseclab/nvdimport/internal/db/postgresql"
	"github.com/vseclab/nvdimport/internal/tlog"
	"github.com/vseclab/nvdimport/internal/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := new(cli.Options)
	cli.RegisterFlags(flag.CommandLine, opts)
	dsn := flag.String("dsn", "", "PostgreSQL DSN, falls back to DATABASE_URL")
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

	var options []postgresql.Option
	if *dsn != "" {
		options = append(options, postgresql.WithDSN(*dsn))
	}

	dbase, err := postgresql.New(options...)
	if err != nil {
		logger.Error("instantiate db", "err", err)

		return cli.ExitFailure
	}

	defer func() {
		_ = dbase.Close()
	}()

	return cli.Run(opts, dbase, logger)
}
