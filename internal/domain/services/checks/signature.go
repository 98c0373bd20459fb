package checks

import (
	"bytes"
	"encoding/hex"
	"strings"

	"github.com/ochairo/certdesc/internal/domain/entities"
	"github.com/ochairo/certdesc/internal/domain/interfaces"
)

// signatureMismatch flags certificates whose tbsCertificate.signature differs
// from the outer signatureAlgorithm
type signatureMismatch struct{}

func (c *signatureMismatch) Name() string { return "signature_mismatch" }

func (c *signatureMismatch) Check(cert interfaces.ParsedCertificate) ([]entities.Observation, error) {
	tbs, err := cert.TBSSignature()
	if err != nil {
		return nil, err
	}
	outer, err := cert.SignatureAlgorithm()
	if err != nil {
		return nil, err
	}

	if tbs.LongName != outer.LongName {
		return []entities.Observation{
			entities.NewObservation("Signature algorithm mismatch",
				entities.ListDetails{tbs.LongName, outer.LongName}).
				WithReason("tbsCertificate.signature does not match signatureAlgorithm"),
		}, nil
	}

	if !bytes.Equal(tbs.Parameters, outer.Parameters) {
		return []entities.Observation{
			entities.NewObservation("Signature algorithm parameters mismatch",
				entities.ListDetails{hex.EncodeToString(tbs.Parameters), hex.EncodeToString(outer.Parameters)}),
		}, nil
	}

	return nil, nil
}

// weakSignature flags signatures over MD2, MD5 or SHA-1 digests
type weakSignature struct{}

func (c *weakSignature) Name() string { return "weak_signature" }

func (c *weakSignature) Check(cert interfaces.ParsedCertificate) ([]entities.Observation, error) {
	outer, err := cert.SignatureAlgorithm()
	if err != nil {
		return nil, err
	}

	name := strings.ToLower(outer.LongName)
	for _, digest := range []string{"md2", "md5", "sha1"} {
		if strings.Contains(name, digest) {
			return []entities.Observation{
				entities.NewObservation("Weak signature algorithm", entities.TextDetails(outer.LongName)).
					WithReason(digest + " digest"),
			}, nil
		}
	}

	return nil, nil
}
