package validation

import (
	"testing"

	validation "github.com/jellydator/validation"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/allisson/filedrop/internal/errors"
)

func TestPasswordStrength(t *testing.T) {
	rule := PasswordStrength{
		MinLength:      8,
		RequireUpper:   true,
		RequireLower:   true,
		RequireNumber:  true,
		RequireSpecial: true,
	}

	tests := []struct {
		name     string
		password any
		errMsg   string
	}{
		{name: "valid password", password: "SecurePass123!"},
		{name: "too short", password: "Short1!", errMsg: "password must be at least 8 characters"},
		{name: "missing uppercase", password: "securepass123!", errMsg: "uppercase letter"},
		{name: "missing lowercase", password: "SECUREPASS123!", errMsg: "lowercase letter"},
		{name: "missing number", password: "SecurePass!", errMsg: "number"},
		{name: "missing special char", password: "SecurePass123", errMsg: "special character"},
		{name: "not a string", password: 42, errMsg: "must be a string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rule.Validate(tt.password)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestPasswordStrength_MinLengthOnly(t *testing.T) {
	rule := PasswordStrength{MinLength: 12}

	assert.NoError(t, rule.Validate("alllowercaseok"))
	assert.ErrorContains(t, rule.Validate("short"), "at least 12 characters")
}

func TestEmail(t *testing.T) {
	valid := []string{"user@example.com", "first.last+tag@sub.example.org"}
	invalid := []string{"userexample.com", "user@", "@example.com", "user@example"}

	for _, email := range valid {
		assert.NoError(t, validation.Validate(email, Email), email)
	}
	for _, email := range invalid {
		assert.Error(t, validation.Validate(email, Email), email)
	}
}

func TestNotBlank(t *testing.T) {
	assert.NoError(t, validation.Validate("report.pdf", NotBlank))
	assert.Error(t, validation.Validate("   ", NotBlank))
}

func TestFileName(t *testing.T) {
	valid := []string{"report.pdf", "my report (1).txt", "résumé.docx", ""}
	invalid := []string{"../etc/passwd", "dir/file.txt", `dir\file.txt`, ".", "..", "bad\x00name"}

	for _, name := range valid {
		assert.NoError(t, validation.Validate(name, FileName), name)
	}
	for _, name := range invalid {
		assert.Error(t, validation.Validate(name, FileName), name)
	}
}

func TestWrapValidationError(t *testing.T) {
	assert.NoError(t, WrapValidationError(nil))

	err := WrapValidationError(validation.NewError("code", "email: must be a valid email address"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "email: must be a valid email address")
}
