package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ochairo/certdesc/internal/domain/interfaces"
)

func runSign(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("sign", flag.ExitOnError)
	var (
		configPath = fs.String("config", "", "Path to config file")
		file       = fs.String("file", "", "Exported record to sign")
		key        = fs.String("key", "", "Armored secret key (default from config)")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: certdesc sign --file <record> [--key <secret key>]

Write an armored detached OpenPGP signature to <record>.asc. The key
passphrase is read from the environment variable named by
signing.passphrase_env.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	if *file == "" {
		fmt.Fprintf(os.Stderr, "Error: --file is required\n\n")
		fs.Usage()
		os.Exit(1)
	}

	a, err := newApp(*configPath, false, os.Stderr)
	if err != nil {
		fail(err)
	}

	if err := executeSign(ctx, a, *file, *key); err != nil {
		fail(err)
	}
	fmt.Printf("Signature written to %s.asc\n", *file)
}

func executeSign(ctx context.Context, a *app, file, key string) error {
	//nolint:gosec // G304: file is user-provided
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read record: %w", err)
	}
	return signRecord(ctx, a, key, file, bytes.NewReader(data))
}

// signRecord writes the detached signature of record to path + ".asc"
func signRecord(ctx context.Context, a *app, key, path string, record io.Reader) error {
	signer, err := a.signer(key)
	if err != nil {
		return err
	}

	var sig bytes.Buffer
	if err := signer.SignDetached(ctx, record, &sig); err != nil {
		return err
	}

	sigPath := path + ".asc"
	if err := os.WriteFile(sigPath, sig.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write signature: %w", err)
	}

	a.logger.Info("Record signed",
		interfaces.F("file", path),
		interfaces.F("signature", sigPath),
		interfaces.F("key", signer.Fingerprint()))
	return nil
}
