package model

import "testing"

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"", true},
		{"      ", true},
		{"short", true},
		{"123456", false},
		{"a-valid-password", false},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
		}
		if err != nil && !IsValidation(err) {
			t.Errorf("ValidatePassword(%q) returned %T, want *ValidationError", tt.password, err)
		}
	}
}

func TestValidateSetup(t *testing.T) {
	tests := []struct {
		username, password, department string
		wantErr                        bool
	}{
		{"admin", "secret1", "IT", false},
		{"", "secret1", "IT", true},
		{"admin", "secret1", "  ", true},
		{"admin", "abc", "IT", true},
	}

	for _, tt := range tests {
		err := ValidateSetup(tt.username, tt.password, tt.department)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateSetup(%q, %q, %q) error = %v, wantErr %v",
				tt.username, tt.password, tt.department, err, tt.wantErr)
		}
	}
}
