package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"reviewhub/internal/microservices/http-api/permissions"
)

// ConfirmationCodeLength is the size of the code mailed on signup.
const ConfirmationCodeLength = 6

type User struct {
	ID               string           `gorm:"primaryKey;type:uuid" json:"id"`
	Username         string           `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email            string           `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Role             permissions.Role `gorm:"size:16;default:'user';not null" json:"role"`
	ConfirmationCode string           `gorm:"size:6;not null" json:"-"` // empty when no code is outstanding
	Bio              string           `gorm:"type:text;not null" json:"bio"`
	FirstName        string           `gorm:"size:150;not null" json:"first_name"`
	LastName         string           `gorm:"size:150;not null" json:"last_name"`
	IsStaff          bool             `gorm:"not null" json:"is_staff"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// BeforeCreate hook to set UUID before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = permissions.RoleUser
	}
	return
}

func (User) TableName() string {
	return "users"
}

// Requester is the permission identity of an authenticated user.
func (user *User) Requester() permissions.Requester {
	return permissions.Requester{
		Authenticated: true,
		UserID:        user.ID,
		Username:      user.Username,
		Role:          user.Role,
		IsStaff:       user.IsStaff,
	}
}
