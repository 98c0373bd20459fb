package services

import "strings"

// ProcessName turns an attribute value into ordered name components.
//
// Values without a dot are returned unchanged as a single component.
// Dotted values are split into labels, lower-cased and reversed so that
// "ct.googleapis.com" becomes ["com", "googleapis", "ct"], which groups
// names by their trailing labels when sorted. IP literals are reversed the
// same way and single labels keep their case; stored data depends on both.
func ProcessName(raw string) []string {
	if !strings.Contains(raw, ".") {
		return []string{raw}
	}

	labels := strings.Split(raw, ".")
	out := make([]string, len(labels))
	for i, label := range labels {
		out[len(labels)-1-i] = strings.ToLower(label)
	}
	return out
}

// JoinName returns the processed components of raw joined with "."
func JoinName(raw string) string {
	return strings.Join(ProcessName(raw), ".")
}
