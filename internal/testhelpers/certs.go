// Package testhelpers generates certificates for tests.
package testhelpers

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/pem"
	"math/big"
	"net"
	"net/url"
	"sync"
	"testing"
	"time"
)

// Validity window shared by all generated certificates
var (
	NotBefore = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	NotAfter  = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
)

var oidEmailAddress = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 1}

var (
	once      sync.Once
	rsaCA     []byte
	ecdsaLeaf []byte
	genErr    error
)

// RSACA returns a self-signed RSA CA certificate (DER) signed with
// sha256WithRSAEncryption, whose algorithm carries NULL parameters.
//
// Subject: C=GB, L=London, O=Example Trust, CN=Example Root CA, emailAddress=pki@example.com
func RSACA(t testing.TB) []byte {
	t.Helper()
	generate(t)
	return rsaCA
}

// ECDSALeaf returns a self-signed non-CA ECDSA certificate (DER) signed with
// ecdsa-with-SHA256, whose algorithm has no parameters.
//
// Subject: O=Example Ltd, CN=ct.googleapis.com; serial 01:02:ab:cd.
// SANs in order: DNS ct.googleapis.com, DNS gItHuB.CoM, DNS LOCALhost,
// email admin@example.com, IP 192.168.0.1, URI https://example.com/path
func ECDSALeaf(t testing.TB) []byte {
	t.Helper()
	generate(t)
	return ecdsaLeaf
}

// PEM wraps der in a CERTIFICATE block
func PEM(der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
}

func generate(t testing.TB) {
	t.Helper()
	once.Do(func() {
		rsaCA, genErr = newRSACA()
		if genErr != nil {
			return
		}
		ecdsaLeaf, genErr = newECDSALeaf()
	})
	if genErr != nil {
		t.Fatalf("failed to generate test certificates: %v", genErr)
	}
}

func newRSACA() ([]byte, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1000),
		Subject: pkix.Name{
			Country:      []string{"GB"},
			Locality:     []string{"London"},
			Organization: []string{"Example Trust"},
			CommonName:   "Example Root CA",
			ExtraNames: []pkix.AttributeTypeAndValue{
				{Type: oidEmailAddress, Value: "pki@example.com"},
			},
		},
		NotBefore:             NotBefore,
		NotAfter:              NotAfter,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
		SignatureAlgorithm:    x509.SHA256WithRSA,
	}

	return x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
}

func newECDSALeaf() ([]byte, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}

	uri, err := url.Parse("https://example.com/path")
	if err != nil {
		return nil, err
	}

	template := &x509.Certificate{
		SerialNumber: new(big.Int).SetBytes([]byte{0x01, 0x02, 0xab, 0xcd}),
		Subject: pkix.Name{
			Organization: []string{"Example Ltd"},
			CommonName:   "ct.googleapis.com",
		},
		NotBefore:          NotBefore,
		NotAfter:           NotAfter,
		KeyUsage:           x509.KeyUsageDigitalSignature,
		ExtKeyUsage:        []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		DNSNames:           []string{"ct.googleapis.com", "gItHuB.CoM", "LOCALhost"},
		EmailAddresses:     []string{"admin@example.com"},
		IPAddresses:        []net.IP{net.ParseIP("192.168.0.1")},
		URIs:               []*url.URL{uri},
		SignatureAlgorithm: x509.ECDSAWithSHA256,
	}

	return x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
}
