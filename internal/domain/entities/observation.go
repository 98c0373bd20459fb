package entities

import (
	"fmt"
	"sort"

	"google.golang.org/protobuf/types/known/structpb"
)

// Observation is a finding produced by a certificate check.
// Values are immutable: WithReason returns a modified copy.
type Observation struct {
	description string
	reason      string
	hasReason   bool
	details     Details
}

// NewObservation creates an observation without a reason
func NewObservation(description string, details Details) Observation {
	if details == nil {
		details = NoDetails{}
	}
	return Observation{description: description, details: details}
}

// WithReason returns a copy of o carrying reason
func (o Observation) WithReason(reason string) Observation {
	o.reason = reason
	o.hasReason = true
	return o
}

// Description returns the observation text
func (o Observation) Description() string {
	return o.description
}

// Reason returns the reason and whether one was set
func (o Observation) Reason() (string, bool) {
	return o.reason, o.hasReason
}

// Details returns the details payload, never nil
func (o Observation) Details() Details {
	if o.details == nil {
		return NoDetails{}
	}
	return o.details
}

// String implements fmt.Stringer
func (o Observation) String() string {
	if o.hasReason {
		return fmt.Sprintf("%s: %s", o.description, o.reason)
	}
	return o.description
}

// Details is the payload attached to an observation. New variants only need
// to convert themselves into a structured value.
type Details interface {
	ToValue() (*structpb.Value, error)
}

// NoDetails is the empty payload, rendered as a null value
type NoDetails struct{}

// ToValue implements Details
func (NoDetails) ToValue() (*structpb.Value, error) {
	return structpb.NewNullValue(), nil
}

// TextDetails is a single string payload
type TextDetails string

// ToValue implements Details
func (d TextDetails) ToValue() (*structpb.Value, error) {
	return structpb.NewStringValue(string(d)), nil
}

// ListDetails is an ordered list of strings
type ListDetails []string

// ToValue implements Details
func (d ListDetails) ToValue() (*structpb.Value, error) {
	values := make([]*structpb.Value, 0, len(d))
	for _, s := range d {
		values = append(values, structpb.NewStringValue(s))
	}
	return structpb.NewListValue(&structpb.ListValue{Values: values}), nil
}

// FieldDetails is a keyed payload. Values must be representable by
// structpb.NewValue (strings, numbers, bools, nested maps and slices).
type FieldDetails map[string]any

// ToValue implements Details
func (d FieldDetails) ToValue() (*structpb.Value, error) {
	fields := make(map[string]*structpb.Value, len(d))

	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v, err := structpb.NewValue(d[k])
		if err != nil {
			return nil, fmt.Errorf("details field %q: %w", k, err)
		}
		fields[k] = v
	}

	return structpb.NewStructValue(&structpb.Struct{Fields: fields}), nil
}
