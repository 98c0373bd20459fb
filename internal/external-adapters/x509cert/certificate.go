package x509cert

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	ctx509 "github.com/google/certificate-transparency-go/x509"
	"github.com/google/certificate-transparency-go/x509/pkix"

	"github.com/ochairo/certdesc/internal/domain/entities"
)

// Certificate implements interfaces.ParsedCertificate on top of the
// certificate-transparency-go X.509 parser. Fields the parser does not keep
// in raw form (signature algorithm parameters, SAN order) are decoded
// lazily from the DER on each call.
type Certificate struct {
	cert *ctx509.Certificate
}

// DER returns the original encoding
func (c *Certificate) DER() []byte {
	return c.cert.Raw
}

// Subject returns subject attributes in RDN order
func (c *Certificate) Subject() ([]entities.NameEntry, error) {
	return nameEntries(c.cert.Subject), nil
}

// Issuer returns issuer attributes in RDN order
func (c *Certificate) Issuer() ([]entities.NameEntry, error) {
	return nameEntries(c.cert.Issuer), nil
}

// SubjectAlternativeNames decodes the subjectAltName extension in order.
// A certificate without the extension has no entries.
func (c *Certificate) SubjectAlternativeNames() ([]entities.NameEntry, error) {
	for _, ext := range c.cert.Extensions {
		if ext.Id.String() == oidSubjectAltName {
			names, err := subjectAltNames(ext.Value)
			if err != nil {
				return nil, fmt.Errorf("subjectAltName: %w", err)
			}
			return names, nil
		}
	}
	return nil, nil
}

// Version returns the raw ASN.1 version value
func (c *Certificate) Version() (int, error) {
	return c.cert.Version - 1, nil
}

// SerialNumber returns the serial as lower-case colon-separated hex octets
func (c *Certificate) SerialNumber() (string, error) {
	if c.cert.SerialNumber == nil {
		return "", fmt.Errorf("%w: missing serial number", ErrMalformed)
	}

	octets := c.cert.SerialNumber.Bytes()
	if len(octets) == 0 {
		octets = []byte{0}
	}

	parts := make([]string, len(octets))
	for i, b := range octets {
		parts[i] = hex.EncodeToString([]byte{b})
	}

	serial := strings.Join(parts, ":")
	if c.cert.SerialNumber.Sign() < 0 {
		serial = "-" + serial
	}
	return serial, nil
}

// NotBefore returns the start of the validity period
func (c *Certificate) NotBefore() (time.Time, error) {
	return c.cert.NotBefore, nil
}

// NotAfter returns the end of the validity period
func (c *Certificate) NotAfter() (time.Time, error) {
	return c.cert.NotAfter, nil
}

// TBSSignature returns the signature field of the tbsCertificate
func (c *Certificate) TBSSignature() (entities.AlgorithmIdentifier, error) {
	tbs, _, err := signatureAlgorithms(c.cert.Raw)
	return tbs, err
}

// SignatureAlgorithm returns the outer signatureAlgorithm field
func (c *Certificate) SignatureAlgorithm() (entities.AlgorithmIdentifier, error) {
	_, outer, err := signatureAlgorithms(c.cert.Raw)
	return outer, err
}

// BasicConstraintCA returns the cA flag, false when the extension is absent
func (c *Certificate) BasicConstraintCA() (bool, error) {
	return c.cert.BasicConstraintsValid && c.cert.IsCA, nil
}

func nameEntries(name pkix.Name) []entities.NameEntry {
	entries := make([]entities.NameEntry, 0, len(name.Names))
	for _, atv := range name.Names {
		entries = append(entries, entities.NameEntry{
			Key:   shortName(atv.Type.String()),
			Value: attributeValue(atv.Value),
		})
	}
	return entries
}

func attributeValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
