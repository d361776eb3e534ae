package dto

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/permissions"
	"reviewhub/internal/microservices/http-api/service"
	"reviewhub/internal/microservices/http-api/validators"
)

const MaxNameLength = 150

var roleRule = validation.In(permissions.RoleUser, permissions.RoleModerator, permissions.RoleAdmin).
	Error("must be one of user, moderator, admin")

type UserResponse struct {
	Username  string           `json:"username"`
	Email     string           `json:"email"`
	FirstName string           `json:"first_name"`
	LastName  string           `json:"last_name"`
	Bio       string           `json:"bio"`
	Role      permissions.Role `json:"role"`
}

func ToUserResponse(user *models.User) UserResponse {
	return UserResponse{
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Bio:       user.Bio,
		Role:      user.Role,
	}
}

// UserCreateRequest: admin payload for POST /users
type UserCreateRequest struct {
	Username  string           `json:"username"`
	Email     string           `json:"email"`
	FirstName string           `json:"first_name"`
	LastName  string           `json:"last_name"`
	Bio       string           `json:"bio"`
	Role      permissions.Role `json:"role"`
}

func (r UserCreateRequest) Validate() error {
	return invalid(validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(1, MaxUsernameLength), validators.UsernameRule),
		validation.Field(&r.Email, validation.Required, validation.Length(1, MaxEmailLength), is.Email),
		validation.Field(&r.FirstName, validation.Length(0, MaxNameLength)),
		validation.Field(&r.LastName, validation.Length(0, MaxNameLength)),
		validation.Field(&r.Role, roleRule),
	))
}

func (r UserCreateRequest) ToInput() service.UserInput {
	return service.UserInput{
		Username:  r.Username,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Bio:       r.Bio,
		Role:      r.Role,
	}
}

// UserUpdateRequest is a PATCH body; absent fields stay untouched.
type UserUpdateRequest struct {
	Username  *string           `json:"username"`
	Email     *string           `json:"email"`
	FirstName *string           `json:"first_name"`
	LastName  *string           `json:"last_name"`
	Bio       *string           `json:"bio"`
	Role      *permissions.Role `json:"role"`
}

func (r UserUpdateRequest) Validate() error {
	return invalid(validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.NilOrNotEmpty, validation.Length(1, MaxUsernameLength), validators.UsernameRule),
		validation.Field(&r.Email, validation.NilOrNotEmpty, validation.Length(1, MaxEmailLength), is.Email),
		validation.Field(&r.FirstName, validation.Length(0, MaxNameLength)),
		validation.Field(&r.LastName, validation.Length(0, MaxNameLength)),
		validation.Field(&r.Role, roleRule),
	))
}

func (r UserUpdateRequest) ToUpdate() service.UserUpdate {
	return service.UserUpdate{
		Username:  r.Username,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Bio:       r.Bio,
		Role:      r.Role,
	}
}
