package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ochairo/certdesc/internal/external-adapters/gpg"
)

func runVerify(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	var (
		file = fs.String("file", "", "Exported record")
		sig  = fs.String("sig", "", "Detached signature (default: <file>.asc)")
		key  = fs.String("key", "", "Public key file (armored or binary)")
	)
	_ = fs.String("config", "", "Path to config file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: certdesc verify --file <record> --key <public key> [--sig <signature>]

Verify a detached OpenPGP signature over an exported record.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	if *file == "" || *key == "" {
		fmt.Fprintf(os.Stderr, "Error: --file and --key are required\n\n")
		fs.Usage()
		os.Exit(1)
	}

	keys, err := executeVerify(ctx, *file, *sig, *key)
	if err != nil {
		fmt.Printf("❌ Signature verification FAILED: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Signature verified for %s (%d keys in keyring)\n", filepath.Base(*file), keys)
}

// executeVerify checks the signature and returns the number of keys it was checked against
func executeVerify(ctx context.Context, file, sig, key string) (int, error) {
	if sig == "" {
		sig = file + ".asc"
	}

	verifier := gpg.NewVerifier()
	if err := verifier.ImportKeyFromFile(key); err != nil {
		return 0, err
	}
	if err := verifier.VerifyFile(ctx, file, sig); err != nil {
		return 0, err
	}
	return verifier.GetKeyringSize(), nil
}
