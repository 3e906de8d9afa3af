// Package dto provides data transfer objects for the user HTTP layer.
package dto

import (
	validation "github.com/jellydator/validation"

	"github.com/allisson/filedrop/internal/user/usecase"
	appValidation "github.com/allisson/filedrop/internal/validation"
)

// SignupRequest is the body of POST /v1/auth/signup.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks shape only; password strength is enforced by the use case.
func (r *SignupRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email,
			validation.Required.Error("email is required"),
			appValidation.NotBlank,
			appValidation.Email,
		),
		validation.Field(&r.Password,
			validation.Required.Error("password is required"),
		),
	)
}

// ToRegisterUserInput converts the request to use case input.
func (r *SignupRequest) ToRegisterUserInput() usecase.RegisterUserInput {
	return usecase.RegisterUserInput{
		Email:    r.Email,
		Password: r.Password,
	}
}
