package entities

// NameEntry is a single name field as exposed by a certificate parser.
// For subject and issuer attributes Key is the attribute's short display
// name (CN, O, ...); for subject alternative names it is the component key
// (DNS, IP, email, ...). Value is the human-readable form.
type NameEntry struct {
	Key   string
	Value string
}

// AlgorithmIdentifier is a signature algorithm field as exposed by a parser.
// Parameters holds the raw DER of the parameters field, empty when absent.
type AlgorithmIdentifier struct {
	LongName   string
	Parameters []byte
}

// NameField selects one of the name lists of a description
type NameField string

const (
	NameFieldSubject NameField = "subject"
	NameFieldIssuer  NameField = "issuer"
	NameFieldSAN     NameField = "san"
)

// Valid reports whether f is one of the known name fields
func (f NameField) Valid() bool {
	switch f {
	case NameFieldSubject, NameFieldIssuer, NameFieldSAN:
		return true
	}
	return false
}
