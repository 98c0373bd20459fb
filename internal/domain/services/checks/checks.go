// Package checks implements the certificate check battery. Checks only read
// the ParsedCertificate view and report findings as observations; they never
// reject a certificate.
package checks

import (
	"errors"
	"fmt"

	"github.com/ochairo/certdesc/internal/domain/entities"
	"github.com/ochairo/certdesc/internal/domain/interfaces"
	"github.com/ochairo/certdesc/internal/domain/interfaces/services"
)

// ErrCheckFailed wraps an error returned by a check
var ErrCheckFailed = errors.New("check failed")

// Default returns a fresh list with every check of the battery
func Default() []services.Check {
	return []services.Check{
		&signatureMismatch{},
		&weakSignature{},
		&validityPeriod{},
		&serialNumber{},
		&commonName{},
		&dnsNames{},
		&topLevelDomain{},
	}
}

// Select returns the checks of all whose name is not in disabled, keeping order
func Select(all []services.Check, disabled []string) []services.Check {
	skip := make(map[string]bool, len(disabled))
	for _, name := range disabled {
		skip[name] = true
	}

	selected := make([]services.Check, 0, len(all))
	for _, c := range all {
		if !skip[c.Name()] {
			selected = append(selected, c)
		}
	}
	return selected
}

// Names returns the names of checks in order
func Names(checks []services.Check) []string {
	names := make([]string, 0, len(checks))
	for _, c := range checks {
		names = append(names, c.Name())
	}
	return names
}

// Run executes checks in order and concatenates their observations.
// The first failing check aborts the run.
func Run(cert interfaces.ParsedCertificate, checks []services.Check) ([]entities.Observation, error) {
	var observations []entities.Observation
	for _, c := range checks {
		found, err := c.Check(cert)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrCheckFailed, c.Name(), err)
		}
		observations = append(observations, found...)
	}
	return observations, nil
}

// dnsSANs returns the DNS entries among the subject alternative names
func dnsSANs(cert interfaces.ParsedCertificate) ([]string, error) {
	sans, err := cert.SubjectAlternativeNames()
	if err != nil {
		return nil, err
	}

	var names []string
	for _, san := range sans {
		if san.Key == "DNS" {
			names = append(names, san.Value)
		}
	}
	return names, nil
}
