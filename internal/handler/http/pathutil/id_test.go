package pathutil

import (
	"errors"
	"testing"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		name      string
		segment   string
		wantID    int64
		wantError error
	}{
		{name: "valid ID", segment: "123", wantID: 123},
		{name: "max int64", segment: "9223372036854775807", wantID: 9223372036854775807},
		{name: "invalid ID - not a number", segment: "abc", wantError: ErrInvalidID},
		{name: "invalid ID - zero", segment: "0", wantError: ErrInvalidID},
		{name: "invalid ID - negative", segment: "-1", wantError: ErrInvalidID},
		{name: "invalid ID - empty", segment: "", wantError: ErrInvalidID},
		{name: "invalid ID - overflow", segment: "9223372036854775808", wantError: ErrInvalidID},
		{name: "invalid ID - decimal", segment: "1.5", wantError: ErrInvalidID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseID(tt.segment)
			if !errors.Is(err, tt.wantError) {
				t.Errorf("ParseID(%q) error = %v, want %v", tt.segment, err, tt.wantError)
			}
			if id != tt.wantID {
				t.Errorf("ParseID(%q) = %d, want %d", tt.segment, id, tt.wantID)
			}
		})
	}
}
