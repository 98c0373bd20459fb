package x509cert

import (
	encasn1 "encoding/asn1"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"strings"

	ctasn1 "github.com/google/certificate-transparency-go/asn1"
	"github.com/google/certificate-transparency-go/x509/pkix"
	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/ochairo/certdesc/internal/domain/entities"
)

// ErrMalformed is returned when a field cannot be decoded from the DER
var ErrMalformed = errors.New("malformed certificate")

// SAN component keys
const (
	SANOtherName = "othername"
	SANEmail     = "email"
	SANDNS       = "DNS"
	SANDirName   = "DirName"
	SANURI       = "URI"
	SANIP        = "IP"
	SANRID       = "RID"
)

var (
	tagOtherName     = cbasn1.Tag(0).Constructed().ContextSpecific()
	tagRFC822Name    = cbasn1.Tag(1).ContextSpecific()
	tagDNSName       = cbasn1.Tag(2).ContextSpecific()
	tagDirectoryName = cbasn1.Tag(4).Constructed().ContextSpecific()
	tagURI           = cbasn1.Tag(6).ContextSpecific()
	tagIPAddress     = cbasn1.Tag(7).ContextSpecific()
	tagRegisteredID  = cbasn1.Tag(8).ContextSpecific()
)

// signatureAlgorithms walks the certificate DER and returns the
// tbsCertificate.signature and outer signatureAlgorithm fields
func signatureAlgorithms(der []byte) (tbs, outer entities.AlgorithmIdentifier, err error) {
	input := cryptobyte.String(der)

	var certificate, tbsCert, outerAI, innerAI cryptobyte.String
	if !input.ReadASN1(&certificate, cbasn1.SEQUENCE) {
		return tbs, outer, fmt.Errorf("%w: certificate is not a sequence", ErrMalformed)
	}
	if !certificate.ReadASN1(&tbsCert, cbasn1.SEQUENCE) {
		return tbs, outer, fmt.Errorf("%w: missing tbsCertificate", ErrMalformed)
	}
	if !certificate.ReadASN1(&outerAI, cbasn1.SEQUENCE) {
		return tbs, outer, fmt.Errorf("%w: missing signatureAlgorithm", ErrMalformed)
	}

	// version [0] EXPLICIT is optional, serialNumber precedes signature
	if !tbsCert.SkipOptionalASN1(cbasn1.Tag(0).Constructed().ContextSpecific()) {
		return tbs, outer, fmt.Errorf("%w: invalid version", ErrMalformed)
	}
	if !tbsCert.SkipASN1(cbasn1.INTEGER) {
		return tbs, outer, fmt.Errorf("%w: invalid serial number", ErrMalformed)
	}
	if !tbsCert.ReadASN1(&innerAI, cbasn1.SEQUENCE) {
		return tbs, outer, fmt.Errorf("%w: missing tbsCertificate signature", ErrMalformed)
	}

	if tbs, err = parseAlgorithmIdentifier(innerAI); err != nil {
		return tbs, outer, fmt.Errorf("tbs signature: %w", err)
	}
	if outer, err = parseAlgorithmIdentifier(outerAI); err != nil {
		return tbs, outer, fmt.Errorf("signature algorithm: %w", err)
	}
	return tbs, outer, nil
}

// parseAlgorithmIdentifier reads the contents of an AlgorithmIdentifier.
// Parameters keep their full DER encoding (tag included).
func parseAlgorithmIdentifier(ai cryptobyte.String) (entities.AlgorithmIdentifier, error) {
	var oid encasn1.ObjectIdentifier
	if !ai.ReadASN1ObjectIdentifier(&oid) {
		return entities.AlgorithmIdentifier{}, fmt.Errorf("%w: invalid algorithm OID", ErrMalformed)
	}

	result := entities.AlgorithmIdentifier{LongName: algorithmName(oid.String())}
	if !ai.Empty() {
		result.Parameters = append([]byte(nil), ai...)
	}
	return result, nil
}

// subjectAltNames decodes a subjectAltName extension value in encoding order
func subjectAltNames(value []byte) ([]entities.NameEntry, error) {
	input := cryptobyte.String(value)

	var seq cryptobyte.String
	if !input.ReadASN1(&seq, cbasn1.SEQUENCE) || !input.Empty() {
		return nil, fmt.Errorf("%w: subjectAltName is not a sequence", ErrMalformed)
	}

	var names []entities.NameEntry
	for !seq.Empty() {
		var content cryptobyte.String
		var tag cbasn1.Tag
		if !seq.ReadAnyASN1(&content, &tag) {
			return nil, fmt.Errorf("%w: truncated general name", ErrMalformed)
		}

		entry, err := generalName(tag, content)
		if err != nil {
			return nil, err
		}
		names = append(names, entry)
	}
	return names, nil
}

func generalName(tag cbasn1.Tag, content []byte) (entities.NameEntry, error) {
	switch tag {
	case tagRFC822Name:
		return entities.NameEntry{Key: SANEmail, Value: string(content)}, nil
	case tagDNSName:
		return entities.NameEntry{Key: SANDNS, Value: string(content)}, nil
	case tagURI:
		return entities.NameEntry{Key: SANURI, Value: string(content)}, nil
	case tagIPAddress:
		if len(content) != net.IPv4len && len(content) != net.IPv6len {
			return entities.NameEntry{}, fmt.Errorf("%w: IP address of length %d", ErrMalformed, len(content))
		}
		return entities.NameEntry{Key: SANIP, Value: net.IP(content).String()}, nil
	case tagDirectoryName:
		var rdns pkix.RDNSequence
		rest, err := ctasn1.Unmarshal(content, &rdns)
		if err != nil {
			return entities.NameEntry{}, fmt.Errorf("%w: directory name: %v", ErrMalformed, err)
		}
		if len(rest) != 0 {
			return entities.NameEntry{}, fmt.Errorf("%w: trailing data after directory name", ErrMalformed)
		}
		return entities.NameEntry{Key: SANDirName, Value: distinguishedName(rdns)}, nil
	case tagRegisteredID:
		return entities.NameEntry{Key: SANRID, Value: hex.EncodeToString(content)}, nil
	case tagOtherName:
		return entities.NameEntry{Key: SANOtherName, Value: hex.EncodeToString(content)}, nil
	default:
		return entities.NameEntry{Key: fmt.Sprintf("tag%d", uint8(tag)&0x1f), Value: hex.EncodeToString(content)}, nil
	}
}

// distinguishedName renders an RDN sequence as comma-separated
// short-name=value pairs in encoding order
func distinguishedName(rdns pkix.RDNSequence) string {
	var parts []string
	for _, rdn := range rdns {
		for _, atv := range rdn {
			parts = append(parts, shortName(atv.Type.String())+"="+attributeValue(atv.Value))
		}
	}
	return strings.Join(parts, ",")
}
