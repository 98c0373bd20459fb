// Package repositories defines interfaces for data access layers.
package repositories

import (
	"context"

	"github.com/ochairo/certdesc/internal/domain/entities"
)

// DescriptionRepository stores certificate descriptions keyed by the
// SHA-256 fingerprint of their DER encoding
type DescriptionRepository interface {
	// Save stores a description and returns its fingerprint.
	// Saving the same certificate twice replaces the stored record.
	Save(ctx context.Context, desc *entities.CertificateDescription) (string, error)

	// Get returns the description with the given fingerprint or entities.ErrNotFound
	Get(ctx context.Context, fingerprint string) (*entities.CertificateDescription, error)

	// FindByName returns fingerprints of descriptions having a name in field
	// whose processed value starts with prefix. An empty field searches all fields.
	FindByName(ctx context.Context, prefix string, field entities.NameField) ([]string, error)

	// FindByHost returns fingerprints of descriptions having a name in field
	// equal to the processed host name or one of its subdomains. Unlike
	// FindByName, a match must end at a label boundary.
	FindByHost(ctx context.Context, host string, field entities.NameField) ([]string, error)

	// Count returns the number of stored descriptions
	Count(ctx context.Context) (int, error)

	Close() error
}
