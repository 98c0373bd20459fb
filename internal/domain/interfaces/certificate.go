package interfaces

import (
	"time"

	"github.com/ochairo/certdesc/internal/domain/entities"
)

// ParsedCertificate is the read-only view of a decoded certificate that the
// description builder and the checks consume. Any parser exposing these
// accessors can be substituted. Accessors may decode lazily and therefore
// return errors; callers propagate them.
type ParsedCertificate interface {
	// DER returns the original encoding, byte for byte
	DER() []byte

	// Subject returns the subject attributes in certificate order
	Subject() ([]entities.NameEntry, error)

	// Issuer returns the issuer attributes in certificate order
	Issuer() ([]entities.NameEntry, error)

	// SubjectAlternativeNames returns SAN entries in certificate order
	SubjectAlternativeNames() ([]entities.NameEntry, error)

	// Version returns the raw ASN.1 version value (2 for a v3 certificate)
	Version() (int, error)

	// SerialNumber returns the serial as colon-separated hex octets
	SerialNumber() (string, error)

	NotBefore() (time.Time, error)
	NotAfter() (time.Time, error)

	// TBSSignature returns the signature field inside the to-be-signed part
	TBSSignature() (entities.AlgorithmIdentifier, error)

	// SignatureAlgorithm returns the outer signatureAlgorithm field
	SignatureAlgorithm() (entities.AlgorithmIdentifier, error)

	// BasicConstraintCA returns the basicConstraints cA flag, false if absent
	BasicConstraintCA() (bool, error)
}
