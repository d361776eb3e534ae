package dto

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/validators"
)

// Data Transfer Objects for the signup and token exchange flow

const (
	MaxUsernameLength = 150
	MaxEmailLength    = 254
)

// SignupRequest: payload for POST /auth/signup
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (r SignupRequest) Validate() error {
	return invalid(validation.ValidateStruct(&r,
		validation.Field(&r.Username,
			validation.Required,
			validation.Length(1, MaxUsernameLength),
			validators.UsernameRule,
		),
		validation.Field(&r.Email,
			validation.Required,
			validation.Length(1, MaxEmailLength),
			is.Email,
		),
	))
}

// SignupResponse echoes the accepted pair. The code only travels by mail.
type SignupResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func ToSignupResponse(user *models.User) SignupResponse {
	return SignupResponse{Username: user.Username, Email: user.Email}
}

// TokenRequest: payload for POST /auth/token
type TokenRequest struct {
	Username         string `json:"username"`
	ConfirmationCode string `json:"confirmation_code"`
}

func (r TokenRequest) Validate() error {
	return invalid(validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validators.UsernameRule),
		// any non-empty guess reaches the service so that a wrong one burns the code
		validation.Field(&r.ConfirmationCode, validation.Required),
	))
}

type TokenResponse struct {
	Token string `json:"token"`
}
