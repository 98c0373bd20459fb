// Package x509cert adapts certificate-transparency-go's X.509 parser to the
// ParsedCertificate view used by the description builder.
package x509cert

import (
	"bytes"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ctx509 "github.com/google/certificate-transparency-go/x509"

	"github.com/ochairo/certdesc/internal/domain/interfaces"
)

// ErrNoCertificate is returned for PEM input without a CERTIFICATE block
var ErrNoCertificate = errors.New("no certificate found in PEM data")

// certificateExtensions are the file suffixes ListFiles picks up
var certificateExtensions = map[string]bool{
	".pem": true,
	".crt": true,
	".cer": true,
	".der": true,
}

// Parser decodes DER or PEM certificates. Non-fatal parse errors (common in
// certificates logged to CT) are logged and tolerated.
type Parser struct {
	logger interfaces.Logger
}

// NewParser creates a parser. A nil logger discards warnings.
func NewParser(logger interfaces.Logger) *Parser {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &Parser{logger: logger}
}

// Parse implements gateways.CertificateParser
func (p *Parser) Parse(data []byte) (interfaces.ParsedCertificate, error) {
	return p.ParseCertificate(data)
}

// ParseCertificate decodes data, which may be DER or PEM
func (p *Parser) ParseCertificate(data []byte) (*Certificate, error) {
	der, err := toDER(data)
	if err != nil {
		return nil, err
	}

	cert, err := ctx509.ParseCertificate(der)
	if err != nil {
		if ctx509.IsFatal(err) {
			return nil, fmt.Errorf("failed to parse certificate: %w", err)
		}
		p.logger.Warn("Certificate parsed with non-fatal errors", interfaces.Err(err))
	}

	return &Certificate{cert: cert}, nil
}

// ParseFile reads and decodes a certificate file
func (p *Parser) ParseFile(path string) (*Certificate, error) {
	//nolint:gosec // G304: path is a user-provided certificate file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	cert, err := p.ParseCertificate(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cert, nil
}

// ListFiles returns the certificate files in dir, sorted by name
func (p *Parser) ListFiles(dir string) ([]string, error) {
	return ListFiles(dir)
}

// ListFiles returns the certificate files in dir, sorted by name
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if certificateExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func toDER(data []byte) ([]byte, error) {
	if !bytes.Contains(data, []byte("-----BEGIN")) {
		return data, nil
	}

	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			return nil, ErrNoCertificate
		}
		if block.Type == "CERTIFICATE" {
			return block.Bytes, nil
		}
	}
}
