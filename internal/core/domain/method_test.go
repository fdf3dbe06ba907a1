package domain

import (
	"errors"
	"testing"
)

func TestParseMethod(t *testing.T) {
	tests := []struct {
		token   string
		want    Method
		wantErr bool
	}{
		{"GET", MethodGet, false},
		{"POST", MethodPost, false},
		{"PATCH", MethodPatch, false},
		{"DELETE", MethodDelete, false},
		{"Get", 0, true},
		{"get", 0, true},
		{"PUT", 0, true},
		{"HEAD", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := ParseMethod(tt.token)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownMethod) {
					t.Fatalf("ParseMethod(%q) error = %v, want ErrUnknownMethod", tt.token, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMethod(%q) error = %v", tt.token, err)
			}
			if got != tt.want {
				t.Errorf("ParseMethod(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestMethod_StringRoundTrip(t *testing.T) {
	for _, m := range Methods() {
		got, err := ParseMethod(m.String())
		if err != nil {
			t.Fatalf("ParseMethod(%q) error = %v", m.String(), err)
		}
		if got != m {
			t.Errorf("ParseMethod(%q) = %v, want %v", m.String(), got, m)
		}
		if !m.Valid() {
			t.Errorf("%v.Valid() = false", m)
		}
	}

	var zero Method
	if zero.Valid() {
		t.Error("zero Method should not be valid")
	}
	if zero.String() != "UNKNOWN" {
		t.Errorf("zero.String() = %q, want UNKNOWN", zero.String())
	}
}

func TestMethod_MapKey(t *testing.T) {
	m := map[Method]int{MethodGet: 1, MethodPost: 2}
	if m[MethodGet] != 1 || m[MethodPost] != 2 {
		t.Error("Method must be usable as a map key")
	}
	if _, ok := m[MethodDelete]; ok {
		t.Error("unexpected DELETE entry")
	}
}
