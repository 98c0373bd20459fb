package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ochairo/certdesc/internal/domain/entities"
	"github.com/ochairo/certdesc/internal/domain/interfaces"
	"github.com/ochairo/certdesc/internal/external-adapters/yaml"
)

type describeOptions struct {
	certPath string
	format   string
	store    bool
	signKey  string
	out      string
}

func runDescribe(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("describe", flag.ExitOnError)
	var (
		configPath = fs.String("config", "", "Path to config file")
		certPath   = fs.String("cert", "", "Certificate file (PEM or DER)")
		format     = fs.String("format", "", "Output format: json or yaml (default from config)")
		store      = fs.Bool("store", false, "Save the description to the database")
		signKey    = fs.String("sign-key", "", "Armored secret key used to sign the record (requires --out)")
		out        = fs.String("out", "", "Write the record to this file instead of stdout")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: certdesc describe --cert <file> [options]

Describe a certificate: names are normalized to reversed-dotted form and the
enabled checks are recorded as observations.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  certdesc describe --cert leaf.pem
  certdesc describe --cert leaf.der --format yaml
  certdesc describe --cert leaf.pem --store
  certdesc describe --cert leaf.pem --out leaf.json --sign-key signing.asc
`)
	}

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	if *certPath == "" && fs.NArg() > 0 {
		*certPath = fs.Arg(0)
	}
	if *certPath == "" {
		fmt.Fprintf(os.Stderr, "Error: --cert is required\n\n")
		fs.Usage()
		os.Exit(1)
	}

	a, err := newApp(*configPath, *store, os.Stderr)
	if err != nil {
		fail(err)
	}
	defer a.close()

	opts := describeOptions{
		certPath: *certPath,
		format:   *format,
		store:    *store,
		signKey:  *signKey,
		out:      *out,
	}
	if err := executeDescribe(ctx, a, opts, os.Stdout); err != nil {
		a.close()
		fail(err)
	}
}

func executeDescribe(ctx context.Context, a *app, opts describeOptions, stdout io.Writer) error {
	if opts.signKey != "" && opts.out == "" {
		return fmt.Errorf("--sign-key requires --out")
	}

	format := opts.format
	if format == "" {
		format = a.config.Output
	}

	//nolint:gosec // G304: certPath is user-provided
	data, err := os.ReadFile(opts.certPath)
	if err != nil {
		return fmt.Errorf("failed to read certificate: %w", err)
	}

	var desc *entities.CertificateDescription
	if opts.store {
		var fp string
		desc, fp, err = a.orch.DescribeAndStore(ctx, data)
		if err == nil {
			a.logger.Info("Description stored", interfaces.F("fingerprint", fp))
		}
	} else {
		desc, err = a.orch.Describe(ctx, data)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", opts.certPath, err)
	}

	body, err := yaml.RenderRecord(desc, format)
	if err != nil {
		return err
	}

	if opts.out == "" {
		_, err = stdout.Write(body)
		return err
	}

	if err := os.WriteFile(opts.out, body, 0o600); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}

	if opts.signKey != "" {
		if err := signRecord(ctx, a, opts.signKey, opts.out, bytes.NewReader(body)); err != nil {
			return err
		}
	}
	return nil
}
