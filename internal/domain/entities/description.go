// Package entities defines core domain models and data structures.
package entities

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// CertificateDescription is the canonical, serializable summary of one
// certificate and the observations made about it.
// It is built once by the description service and only read afterwards.
type CertificateDescription struct {
	DER                     []byte              `json:"der"`
	Subject                 []NameAttribute     `json:"subject"`
	Issuer                  []NameAttribute     `json:"issuer"`
	SubjectAlternativeNames []NameAttribute     `json:"subject_alternative_names"`
	Version                 string              `json:"version"`
	SerialNumber            string              `json:"serial_number"` // upper-case hex, no separators
	Validity                Validity            `json:"validity"`
	TBSSignature            SignatureAlgorithm  `json:"tbs_signature"`
	CertSignature           SignatureAlgorithm  `json:"cert_signature"`
	BasicConstraintCA       bool                `json:"basic_constraint_ca"`
	Observations            []ObservationRecord `json:"observations"`
}

// NameAttribute is a normalized (short name, reversed-dotted value) pair
type NameAttribute struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Validity holds the validity window in milliseconds since the Unix epoch
type Validity struct {
	NotBefore int64 `json:"not_before"`
	NotAfter  int64 `json:"not_after"`
}

// SignatureAlgorithm describes one of the two signature algorithm fields.
// A nil Parameters slice means the source field carried no parameters.
type SignatureAlgorithm struct {
	AlgorithmID string `json:"algorithm_id"`
	Parameters  []byte `json:"parameters,omitempty"`
}

// HasParameters reports whether parameters are present
func (s SignatureAlgorithm) HasParameters() bool {
	return s.Parameters != nil
}

// ObservationRecord is the reporting form of an Observation
type ObservationRecord struct {
	Description string
	Reason      string
	Details     *structpb.Value
}

type jsonObservationRecord struct {
	Description string          `json:"description"`
	Reason      string          `json:"reason"`
	Details     json.RawMessage `json:"details"`
}

// MarshalJSON renders details with protojson so that the structured value
// keeps its schema representation.
func (r ObservationRecord) MarshalJSON() ([]byte, error) {
	details := json.RawMessage("null")
	if r.Details != nil {
		raw, err := protojson.Marshal(r.Details)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal observation details: %w", err)
		}
		details = raw
	}

	return json.Marshal(jsonObservationRecord{
		Description: r.Description,
		Reason:      r.Reason,
		Details:     details,
	})
}

// UnmarshalJSON is the inverse of MarshalJSON
func (r *ObservationRecord) UnmarshalJSON(data []byte) error {
	var raw jsonObservationRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.Description = raw.Description
	r.Reason = raw.Reason
	r.Details = nil

	if len(raw.Details) > 0 {
		value := &structpb.Value{}
		if err := protojson.Unmarshal(raw.Details, value); err != nil {
			return fmt.Errorf("failed to unmarshal observation details: %w", err)
		}
		r.Details = value
	}

	return nil
}
