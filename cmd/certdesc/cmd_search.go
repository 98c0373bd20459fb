package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ochairo/certdesc/internal/domain/entities"
	"github.com/ochairo/certdesc/internal/domain/services"
)

func runSearch(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	var (
		configPath = fs.String("config", "", "Path to config file")
		prefix     = fs.String("prefix", "", "Reversed name prefix (e.g. com.google)")
		name       = fs.String("name", "", "Host name to search for with its subdomains (e.g. google.com)")
		field      = fs.String("field", "", "Restrict to subject, issuer or san")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: certdesc search --prefix <prefix> [--field subject|issuer|san]

Find stored certificates by name. Names are stored reversed, so a prefix
groups certificates by domain suffix.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  certdesc search --prefix com.google
  certdesc search --name example.com --field san
`)
	}

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	if (*prefix == "") == (*name == "") {
		fmt.Fprintf(os.Stderr, "Error: exactly one of --prefix or --name is required\n\n")
		fs.Usage()
		os.Exit(1)
	}

	query := searchQuery{prefix: *prefix, field: entities.NameField(*field)}
	if *name != "" {
		query.host = services.JoinName(*name)
	}

	a, err := newApp(*configPath, true, os.Stderr)
	if err != nil {
		fail(err)
	}

	err = executeSearch(ctx, a, query, os.Stdout)
	a.close()
	if err != nil {
		fail(err)
	}
}

// searchQuery selects stored names either by raw prefix or by processed host
// name, where a host match stops at a label boundary
type searchQuery struct {
	prefix string
	host   string
	field  entities.NameField
}

func executeSearch(ctx context.Context, a *app, query searchQuery, stdout io.Writer) error {
	if query.field != "" && !query.field.Valid() {
		return fmt.Errorf("unknown field %q (want subject, issuer or san)", query.field)
	}

	var (
		fps []string
		err error
	)
	if query.host != "" {
		fps, err = a.store.FindByHost(ctx, query.host, query.field)
	} else {
		fps, err = a.store.FindByName(ctx, query.prefix, query.field)
	}
	if err != nil {
		return err
	}

	for _, fp := range fps {
		desc, err := a.store.Get(ctx, fp)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s  serial=%s  %s\n", fp, desc.SerialNumber, formatNames(desc.Subject))
	}
	return nil
}

func formatNames(names []entities.NameAttribute) string {
	parts := make([]string, 0, len(names))
	for _, n := range names {
		parts = append(parts, n.Type+"="+n.Value)
	}
	return strings.Join(parts, ",")
}
