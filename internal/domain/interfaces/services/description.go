// Package services defines interfaces for domain service contracts.
package services

import (
	"github.com/ochairo/certdesc/internal/domain/entities"
	"github.com/ochairo/certdesc/internal/domain/interfaces"
)

// DescriptionService builds canonical certificate descriptions.
// Implementations are pure: no I/O, no shared mutable state.
type DescriptionService interface {
	FromCert(cert interfaces.ParsedCertificate, observations []entities.Observation) (*entities.CertificateDescription, error)
}

// Check is one member of the check battery
type Check interface {
	// Name is the stable identifier used in configuration
	Name() string

	// Check returns zero or more observations about cert
	Check(cert interfaces.ParsedCertificate) ([]entities.Observation, error)
}
