package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
)

func runImport(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	var (
		configPath = fs.String("config", "", "Path to config file")
		dir        = fs.String("dir", "", "Directory of certificate files (.pem, .crt, .cer, .der)")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: certdesc import --dir <directory> [options]

Describe every certificate file in a directory and store the descriptions.
Files that fail to parse are reported and skipped.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	if *dir == "" {
		fmt.Fprintf(os.Stderr, "Error: --dir is required\n\n")
		fs.Usage()
		os.Exit(1)
	}

	a, err := newApp(*configPath, true, os.Stderr)
	if err != nil {
		fail(err)
	}

	err = executeImport(ctx, a, *dir, os.Stdout)
	a.close()
	if err != nil {
		fail(err)
	}
}

func executeImport(ctx context.Context, a *app, dir string, stdout io.Writer) error {
	summary, err := a.orch.ImportDir(ctx, dir)
	if summary != nil {
		fmt.Fprintln(stdout, summary.GetSummary())

		failed := make([]string, 0, len(summary.Failed))
		for file := range summary.Failed {
			failed = append(failed, file)
		}
		sort.Strings(failed)
		for _, file := range failed {
			fmt.Fprintf(stdout, "  ❌ %s: %v\n", file, summary.Failed[file])
		}
	}
	return err
}
