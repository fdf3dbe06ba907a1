package domain

import "testing"

func TestStatusCode_Table(t *testing.T) {
	tests := []struct {
		status StatusCode
		code   int
		reason string
	}{
		{StatusOK, 200, "OK"},
		{StatusBadRequest, 400, "Bad Request"},
		{StatusNotFound, 404, "Not Found"},
		{StatusServerError, 500, "Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			if got := tt.status.Code(); got != tt.code {
				t.Errorf("Code() = %d, want %d", got, tt.code)
			}
			if got := tt.status.Reason(); got != tt.reason {
				t.Errorf("Reason() = %q, want %q", got, tt.reason)
			}
			if !tt.status.Valid() {
				t.Error("Valid() = false, want true")
			}
		})
	}
}

func TestStatusCode_ServerErrorIsDistinct(t *testing.T) {
	if StatusServerError.Code() == StatusNotFound.Code() {
		t.Fatalf("ServerError and NotFound share code %d", StatusNotFound.Code())
	}
}

func TestStatusCode_String(t *testing.T) {
	if got := StatusNotFound.String(); got != "404 Not Found" {
		t.Errorf("String() = %q, want %q", got, "404 Not Found")
	}
	var zero StatusCode
	if zero.Valid() {
		t.Error("zero StatusCode should not be valid")
	}
	if zero.Code() != 0 || zero.Reason() != "" {
		t.Errorf("zero status = (%d, %q), want (0, \"\")", zero.Code(), zero.Reason())
	}
}

func TestMimeType_String(t *testing.T) {
	if MimeTextHTML.String() != "text/html" {
		t.Errorf("MimeTextHTML = %q", MimeTextHTML.String())
	}
	if MimeApplicationJSON.String() != "application/json" {
		t.Errorf("MimeApplicationJSON = %q", MimeApplicationJSON.String())
	}
}
