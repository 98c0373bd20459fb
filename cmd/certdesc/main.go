package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := os.Args[1]

	// Dispatch to subcommand
	switch command {
	case "describe":
		runDescribe(ctx, os.Args[2:])
	case "import":
		runImport(ctx, os.Args[2:])
	case "search":
		runSearch(ctx, os.Args[2:])
	case "sign":
		runSign(ctx, os.Args[2:])
	case "verify":
		runVerify(ctx, os.Args[2:])
	case "serve":
		runServe(ctx, os.Args[2:])
	case "checks":
		runChecks(ctx, os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`certdesc - Canonical X.509 certificate descriptions

Usage:
  certdesc <command> [options]

Commands:
  describe  Describe a certificate file (JSON or YAML)
  import    Describe and store every certificate in a directory
  search    Find stored certificates by reversed name prefix
  sign      Write a detached OpenPGP signature for an exported record
  verify    Verify a detached OpenPGP signature
  serve     Run the HTTP API
  checks    List the certificate checks and whether they are enabled

Every command accepts --config FILE (default: $CERTDESC_CONFIG).

Use "certdesc <command> --help" for more information about a command.`)
}

// fail prints err and exits with status 1
func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
