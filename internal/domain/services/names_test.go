package services

import (
	"reflect"
	"testing"
)

func TestProcessName(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"plain location", "London", []string{"London"}},
		{"name with space", "Bob Smith", []string{"Bob Smith"}},
		{"hostname", "ct.googleapis.com", []string{"com", "googleapis", "ct"}},
		{"mixed case hostname", "gItHuB.CoM", []string{"com", "github"}},
		// single labels cannot be told apart from City/State/Organization values
		{"single label keeps case", "LOCALhost", []string{"LOCALhost"}},
		// IP literals are reversed like hostnames
		{"ipv4 literal", "192.168.0.1", []string{"1", "0", "168", "192"}},
		{"empty", "", []string{""}},
		{"trailing dot", "example.com.", []string{"", "com", "example"}},
		{"wildcard", "*.Example.org", []string{"org", "example", "*"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProcessName(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ProcessName(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestJoinName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"ct.googleapis.com", "com.googleapis.ct"},
		{"Bob Smith", "Bob Smith"},
		{"192.168.0.1", "1.0.168.192"},
	}

	for _, tt := range tests {
		if got := JoinName(tt.raw); got != tt.want {
			t.Errorf("JoinName(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestProcessName_Deterministic(t *testing.T) {
	raw := "Www.Example.COM"
	first := ProcessName(raw)
	second := ProcessName(raw)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("ProcessName not deterministic: %q vs %q", first, second)
	}
}
