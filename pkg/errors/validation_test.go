package errors

import (
	"strings"
	"testing"
)

func TestValidateItemID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"simple", "header", false},
		{"with spaces", "side bar", false},
		{"unicode", "größe", false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", 257), true},
		{"max length", strings.Repeat("a", 256), false},
		{"control char", "a\nb", true},
		{"null byte", "a\x00b", true},
		{"quote", `a"b`, true},
		{"angle bracket", "<script>", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateItemID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateItemID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidID) {
				t.Errorf("ValidateItemID(%q) code = %v, want %v", tt.id, GetCode(err), ErrCodeInvalidID)
			}
		})
	}
}

func TestValidateGridID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"8f14e45f-ceea-467f-a0e6-8a2b5bd3b0b4", false},
		{"", true},
		{"not-a-uuid", true},
		{"../etc/passwd", true},
	}

	for _, tt := range tests {
		err := ValidateGridID(tt.id)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateGridID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
		}
	}
}
