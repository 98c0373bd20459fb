package checks

import (
	"strings"

	"github.com/weppos/publicsuffix-go/publicsuffix"

	"github.com/ochairo/certdesc/internal/domain/entities"
	"github.com/ochairo/certdesc/internal/domain/interfaces"
)

const maxLabelLength = 63

// commonName flags hostname-like common names missing from the DNS SANs
type commonName struct{}

func (c *commonName) Name() string { return "common_name" }

func (c *commonName) Check(cert interfaces.ParsedCertificate) ([]entities.Observation, error) {
	subject, err := cert.Subject()
	if err != nil {
		return nil, err
	}
	dns, err := dnsSANs(cert)
	if err != nil {
		return nil, err
	}
	if len(dns) == 0 {
		return nil, nil
	}

	known := make(map[string]bool, len(dns))
	for _, name := range dns {
		known[strings.ToLower(name)] = true
	}

	var observations []entities.Observation
	for _, attr := range subject {
		if attr.Key != "CN" || !looksLikeHostname(attr.Value) {
			continue
		}
		if !known[strings.ToLower(attr.Value)] {
			observations = append(observations,
				entities.NewObservation("Common name not in subject alternative names", entities.TextDetails(attr.Value)))
		}
	}
	return observations, nil
}

// dnsNames flags DNS SANs that are not valid (optionally wildcarded) hostnames
type dnsNames struct{}

func (c *dnsNames) Name() string { return "dns_names" }

func (c *dnsNames) Check(cert interfaces.ParsedCertificate) ([]entities.Observation, error) {
	dns, err := dnsSANs(cert)
	if err != nil {
		return nil, err
	}

	var observations []entities.Observation
	for _, name := range dns {
		if reason := invalidHostname(name); reason != "" {
			observations = append(observations,
				entities.NewObservation("Invalid DNS name", entities.TextDetails(name)).WithReason(reason))
		}
	}
	return observations, nil
}

// topLevelDomain flags DNS SANs whose suffix is not on the public suffix list
type topLevelDomain struct{}

func (c *topLevelDomain) Name() string { return "tld" }

func (c *topLevelDomain) Check(cert interfaces.ParsedCertificate) ([]entities.Observation, error) {
	dns, err := dnsSANs(cert)
	if err != nil {
		return nil, err
	}

	options := &publicsuffix.FindOptions{IgnorePrivate: true}

	var observations []entities.Observation
	for _, name := range dns {
		// malformed names are reported by dns_names
		if invalidHostname(name) != "" {
			continue
		}
		host := strings.TrimSuffix(strings.TrimPrefix(strings.ToLower(name), "*."), ".")
		if _, err := publicsuffix.ParseFromListWithOptions(publicsuffix.DefaultList, host, options); err != nil {
			observations = append(observations,
				entities.NewObservation("DNS name without a registrable public suffix", entities.TextDetails(name)).
					WithReason(err.Error()))
		}
	}
	return observations, nil
}

func looksLikeHostname(value string) bool {
	return strings.Contains(value, ".") && !strings.ContainsAny(value, " @/")
}

// invalidHostname returns why name is not a valid hostname, or "" if it is
func invalidHostname(name string) string {
	if name == "" {
		return "empty name"
	}

	labels := strings.Split(strings.TrimSuffix(name, "."), ".")
	for i, label := range labels {
		switch {
		case label == "":
			return "empty label"
		case label == "*":
			if i != 0 {
				return "wildcard not in leftmost label"
			}
			continue
		case len(label) > maxLabelLength:
			return "label longer than 63 characters"
		case label[0] == '-' || label[len(label)-1] == '-':
			return "label starts or ends with a hyphen"
		}

		for _, r := range label {
			if !isLDH(r) {
				return "invalid character " + string(r)
			}
		}
	}
	return ""
}

func isLDH(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_'
}
