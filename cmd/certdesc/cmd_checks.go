package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ochairo/certdesc/internal/domain/services/checks"
)

func runChecks(_ context.Context, args []string) {
	fs := flag.NewFlagSet("checks", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	a, err := newApp(*configPath, false, os.Stderr)
	if err != nil {
		fail(err)
	}
	executeChecks(a, os.Stdout)
}

func executeChecks(a *app, stdout io.Writer) {
	enabled := make(map[string]bool)
	for _, name := range a.orch.Checks() {
		enabled[name] = true
	}

	for _, name := range checks.Names(checks.Default()) {
		status := "disabled"
		if enabled[name] {
			status = "enabled"
		}
		fmt.Fprintf(stdout, "%-20s %s\n", name, status)
	}
}
