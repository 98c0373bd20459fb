package checks

import (
	"strings"
	"time"

	"github.com/ochairo/certdesc/internal/domain/entities"
	"github.com/ochairo/certdesc/internal/domain/interfaces"
)

// validityPeriod flags an inverted validity window
type validityPeriod struct{}

func (c *validityPeriod) Name() string { return "validity" }

func (c *validityPeriod) Check(cert interfaces.ParsedCertificate) ([]entities.Observation, error) {
	notBefore, err := cert.NotBefore()
	if err != nil {
		return nil, err
	}
	notAfter, err := cert.NotAfter()
	if err != nil {
		return nil, err
	}

	if notAfter.Before(notBefore) {
		return []entities.Observation{
			entities.NewObservation("Certificate expires before it becomes valid", entities.FieldDetails{
				"not_before": notBefore.UTC().Format(time.RFC3339),
				"not_after":  notAfter.UTC().Format(time.RFC3339),
			}),
		}, nil
	}

	return nil, nil
}

// maxSerialOctets is the RFC 5280 limit on serial number length
const maxSerialOctets = 20

// serialNumber flags zero, negative and oversized serial numbers
type serialNumber struct{}

func (c *serialNumber) Name() string { return "serial_number" }

func (c *serialNumber) Check(cert interfaces.ParsedCertificate) ([]entities.Observation, error) {
	serial, err := cert.SerialNumber()
	if err != nil {
		return nil, err
	}

	var observations []entities.Observation

	if strings.HasPrefix(serial, "-") {
		observations = append(observations,
			entities.NewObservation("Negative serial number", entities.TextDetails(serial)))
		serial = strings.TrimPrefix(serial, "-")
	}

	octets := strings.Split(serial, ":")
	if strings.Trim(serial, "0:") == "" {
		observations = append(observations,
			entities.NewObservation("Serial number is zero", nil))
	}
	if len(octets) > maxSerialOctets {
		observations = append(observations,
			entities.NewObservation("Serial number too long", entities.FieldDetails{
				"octets": len(octets),
			}).WithReason("more than 20 octets"))
	}

	return observations, nil
}
