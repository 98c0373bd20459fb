// Package services implements domain business logic and use cases.
package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ochairo/certdesc/internal/domain/entities"
	"github.com/ochairo/certdesc/internal/domain/interfaces"
	"github.com/ochairo/certdesc/internal/domain/interfaces/services"
)

// descriptionService implements DescriptionService with pure business logic
type descriptionService struct{}

// NewDescriptionService creates the description builder
func NewDescriptionService() services.DescriptionService {
	return &descriptionService{}
}

// FromCert builds a description using the default service
func FromCert(cert interfaces.ParsedCertificate, observations []entities.Observation) (*entities.CertificateDescription, error) {
	return NewDescriptionService().FromCert(cert, observations)
}

// FromCert assembles the description record. The first accessor error is
// returned and no record is produced.
func (s *descriptionService) FromCert(cert interfaces.ParsedCertificate, observations []entities.Observation) (*entities.CertificateDescription, error) {
	desc := &entities.CertificateDescription{
		DER: cloneBytes(cert.DER()),
	}

	subject, err := cert.Subject()
	if err != nil {
		return nil, fmt.Errorf("failed to read subject: %w", err)
	}
	desc.Subject = nameAttributes(subject)

	issuer, err := cert.Issuer()
	if err != nil {
		return nil, fmt.Errorf("failed to read issuer: %w", err)
	}
	desc.Issuer = nameAttributes(issuer)

	sans, err := cert.SubjectAlternativeNames()
	if err != nil {
		return nil, fmt.Errorf("failed to read subject alternative names: %w", err)
	}
	desc.SubjectAlternativeNames = nameAttributes(sans)

	version, err := cert.Version()
	if err != nil {
		return nil, fmt.Errorf("failed to read version: %w", err)
	}
	desc.Version = strconv.Itoa(version)

	serial, err := cert.SerialNumber()
	if err != nil {
		return nil, fmt.Errorf("failed to read serial number: %w", err)
	}
	desc.SerialNumber = strings.ToUpper(strings.ReplaceAll(serial, ":", ""))

	notBefore, err := cert.NotBefore()
	if err != nil {
		return nil, fmt.Errorf("failed to read not before: %w", err)
	}
	notAfter, err := cert.NotAfter()
	if err != nil {
		return nil, fmt.Errorf("failed to read not after: %w", err)
	}
	// Validity times carry whole seconds only
	desc.Validity = entities.Validity{
		NotBefore: notBefore.Unix() * 1000,
		NotAfter:  notAfter.Unix() * 1000,
	}

	tbs, err := cert.TBSSignature()
	if err != nil {
		return nil, fmt.Errorf("failed to read tbs signature: %w", err)
	}
	desc.TBSSignature = signatureAlgorithm(tbs)

	outer, err := cert.SignatureAlgorithm()
	if err != nil {
		return nil, fmt.Errorf("failed to read signature algorithm: %w", err)
	}
	desc.CertSignature = signatureAlgorithm(outer)

	isCA, err := cert.BasicConstraintCA()
	if err != nil {
		return nil, fmt.Errorf("failed to read basic constraints: %w", err)
	}
	desc.BasicConstraintCA = isCA

	desc.Observations, err = ObservationRecords(observations)
	if err != nil {
		return nil, err
	}

	return desc, nil
}

// ObservationRecords converts observations to their reporting form,
// one record per observation in input order
func ObservationRecords(observations []entities.Observation) ([]entities.ObservationRecord, error) {
	records := make([]entities.ObservationRecord, 0, len(observations))
	for i, obs := range observations {
		details, err := obs.Details().ToValue()
		if err != nil {
			return nil, fmt.Errorf("failed to convert details of observation %d (%s): %w", i, obs.Description(), err)
		}

		reason, _ := obs.Reason()
		records = append(records, entities.ObservationRecord{
			Description: obs.Description(),
			Reason:      reason,
			Details:     details,
		})
	}
	return records, nil
}

func nameAttributes(entries []entities.NameEntry) []entities.NameAttribute {
	attrs := make([]entities.NameAttribute, 0, len(entries))
	for _, e := range entries {
		attrs = append(attrs, entities.NameAttribute{
			Type:  e.Key,
			Value: JoinName(e.Value),
		})
	}
	return attrs
}

func signatureAlgorithm(ai entities.AlgorithmIdentifier) entities.SignatureAlgorithm {
	sig := entities.SignatureAlgorithm{AlgorithmID: ai.LongName}
	if len(ai.Parameters) > 0 {
		sig.Parameters = cloneBytes(ai.Parameters)
	}
	return sig
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
