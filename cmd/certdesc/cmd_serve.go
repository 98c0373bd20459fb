package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ochairo/certdesc/internal/external-adapters/httpapi"
)

func runServe(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	var (
		configPath = fs.String("config", "", "Path to config file")
		addr       = fs.String("addr", "", "Listen address (default from config)")
		noStore    = fs.Bool("no-store", false, "Run without a database")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: certdesc serve [options]

Run the HTTP API:
  POST /v1/describe[?store=true&format=yaml]
  GET  /v1/descriptions/{fingerprint}
  GET  /v1/search?prefix=|name=&field=
  GET  /v1/metrics
  GET  /healthz

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	a, err := newApp(*configPath, !*noStore, os.Stderr)
	if err != nil {
		fail(err)
	}

	listen := *addr
	if listen == "" {
		listen = a.config.Server.Addr
	}

	var server *httpapi.Server
	if a.store != nil {
		server = httpapi.NewServer(a.orch, a.store, a.registry, a.logger)
	} else {
		server = httpapi.NewServer(a.orch, nil, a.registry, a.logger)
	}

	err = server.ListenAndServe(ctx, listen)
	a.close()
	if err != nil {
		fail(err)
	}
}
