package validation

import (
	"testing"

	"quizdeck/internal/dto"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name     string
		password string
		wantErrs int
	}{
		{"valid", "s3cure-pass", 0},
		{"empty", "", 1},
		{"too short", "short1", 1},
		{"entirely numeric", "12345678", 1},
		{"numeric but long enough stays rejected", "1234567890123456", 1},
		{"mixed with digits ok", "abc12345", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.ValidatePassword("password", tt.password)
			assert.Len(t, errs, tt.wantErrs)
		})
	}
}

func TestValidateRegisterRequest(t *testing.T) {
	v := NewValidator()

	t.Run("valid", func(t *testing.T) {
		errs := v.ValidateRegisterRequest(&dto.RegisterRequest{
			Username: "jdoe",
			Email:    "jdoe@example.com",
			Password: "s3cure-pass",
		})
		assert.Empty(t, errs)
	})

	t.Run("everything missing", func(t *testing.T) {
		errs := v.ValidateRegisterRequest(&dto.RegisterRequest{})
		assert.Len(t, errs, 3)
	})

	t.Run("bad email format", func(t *testing.T) {
		errs := v.ValidateRegisterRequest(&dto.RegisterRequest{
			Username: "jdoe",
			Email:    "not-an-email",
			Password: "s3cure-pass",
		})
		assert.Len(t, errs, 1)
		assert.Equal(t, "email", errs[0].Field)
	})

	t.Run("username too short", func(t *testing.T) {
		errs := v.ValidateRegisterRequest(&dto.RegisterRequest{
			Username: "ab",
			Email:    "jdoe@example.com",
			Password: "s3cure-pass",
		})
		assert.Len(t, errs, 1)
		assert.Equal(t, "username", errs[0].Field)
	})
}

func TestValidateSubmitQuizRequest(t *testing.T) {
	v := NewValidator()

	t.Run("nil answers treated as empty", func(t *testing.T) {
		errs := v.ValidateSubmitQuizRequest(&dto.SubmitQuizRequest{})
		assert.Empty(t, errs)
	})

	t.Run("empty map is a legal submission", func(t *testing.T) {
		errs := v.ValidateSubmitQuizRequest(&dto.SubmitQuizRequest{
			Answers: map[string]string{},
		})
		assert.Empty(t, errs)
	})

	t.Run("blank option id rejected", func(t *testing.T) {
		errs := v.ValidateSubmitQuizRequest(&dto.SubmitQuizRequest{
			Answers: map[string]string{"q1": " "},
		})
		assert.Len(t, errs, 1)
	})

	t.Run("normal answers pass", func(t *testing.T) {
		errs := v.ValidateSubmitQuizRequest(&dto.SubmitQuizRequest{
			Answers: map[string]string{"q1": "o1", "q2": "o5"},
		})
		assert.Empty(t, errs)
	})
}

func TestValidateChangePasswordRequest(t *testing.T) {
	v := NewValidator()

	errs := v.ValidateChangePasswordRequest(&dto.ChangePasswordRequest{
		OldPassword: "old-pass-1",
		NewPassword: "new-pass-1",
	})
	assert.Empty(t, errs)

	errs = v.ValidateChangePasswordRequest(&dto.ChangePasswordRequest{
		NewPassword: "123",
	})
	assert.Len(t, errs, 2)
}
