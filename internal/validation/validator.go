package validation

import (
	"regexp"
	"strings"

	"quizdeck/internal/domain"
	"quizdeck/internal/dto"
)

// Validator provides request validation functionality.
type Validator struct{}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,150}$`)
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	allDigits  = regexp.MustCompile(`^[0-9]+$`)
)

// ValidateRegisterRequest validates a registration payload.
func (v *Validator) ValidateRegisterRequest(req *dto.RegisterRequest) domain.ValidationErrors {
	var errs domain.ValidationErrors

	if strings.TrimSpace(req.Username) == "" {
		errs = append(errs, domain.NewMissingFieldError("username"))
	} else if !usernameRe.MatchString(req.Username) {
		errs = append(errs, domain.NewInvalidFormatError("username", req.Username))
	}

	if strings.TrimSpace(req.Email) == "" {
		errs = append(errs, domain.NewMissingFieldError("email"))
	} else if !emailRe.MatchString(req.Email) {
		errs = append(errs, domain.NewInvalidFormatError("email", req.Email))
	}

	errs = append(errs, v.ValidatePassword("password", req.Password)...)
	return errs
}

// ValidatePassword rejects weak passwords: shorter than 8 characters,
// longer than 128, or entirely numeric.
func (v *Validator) ValidatePassword(field, password string) domain.ValidationErrors {
	var errs domain.ValidationErrors

	if password == "" {
		errs = append(errs, domain.NewMissingFieldError(field))
		return errs
	}
	if len(password) < 8 || len(password) > 128 {
		errs = append(errs, domain.NewOutOfRangeError(field, len(password), 8, 128))
		return errs
	}
	if allDigits.MatchString(password) {
		errs = append(errs, domain.ValidationError{Field: field, Message: "must not be entirely numeric"})
	}
	return errs
}

// ValidateChangePasswordRequest validates a password change payload.
func (v *Validator) ValidateChangePasswordRequest(req *dto.ChangePasswordRequest) domain.ValidationErrors {
	var errs domain.ValidationErrors

	if req.OldPassword == "" {
		errs = append(errs, domain.NewMissingFieldError("old_password"))
	}
	errs = append(errs, v.ValidatePassword("new_password", req.NewPassword)...)
	return errs
}

// ValidateSubmitQuizRequest validates a quiz submission payload. A nil or
// empty answer map is legal: every question grades as unanswered and the
// attempt is still recorded.
func (v *Validator) ValidateSubmitQuizRequest(req *dto.SubmitQuizRequest) domain.ValidationErrors {
	var errs domain.ValidationErrors

	for questionID, optionID := range req.Answers {
		if strings.TrimSpace(questionID) == "" {
			errs = append(errs, domain.NewInvalidFormatError("answers", questionID))
		}
		if strings.TrimSpace(optionID) == "" {
			errs = append(errs, domain.NewInvalidFormatError("answers."+questionID, optionID))
		}
	}
	return errs
}
