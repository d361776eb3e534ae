package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/permissions"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	// GetOrCreate returns the user holding exactly this (username, email)
	// pair, creating it when neither exists.
	GetOrCreate(ctx context.Context, username, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	DeleteByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, search string, page, pageSize int) ([]models.User, int64, error)
	SetConfirmationCode(ctx context.Context, userID, code string) error
	// ConsumeConfirmationCode reports whether code matched. The stored code
	// is cleared either way.
	ConsumeConfirmationCode(ctx context.Context, username, code string) (bool, error)
}

// userRepository is the GORM implementation of UserRepository.
type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetOrCreate(ctx context.Context, username, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where(&models.User{Username: username, Email: email}).
		Attrs(models.User{Role: permissions.RoleUser}).
		FirstOrCreate(&user).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return translateError(r.db.WithContext(ctx).Create(user).Error)
}

// Update writes every editable column, zero values included.
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).Model(user).
		Select("username", "email", "role", "bio", "first_name", "last_name", "is_staff", "updated_at").
		Updates(user)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) DeleteByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("username = ?", username).First(&user).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		// never hand back a zero-value user alongside an error
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// List matches search against the exact username.
func (r *userRepository) List(ctx context.Context, search string, page, pageSize int) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	scope := func(db *gorm.DB) *gorm.DB {
		if search != "" {
			return db.Where("username = ?", search)
		}
		return db
	}

	if err := r.db.WithContext(ctx).Model(&models.User{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	err := r.db.WithContext(ctx).Scopes(scope).
		Order("username").
		Limit(pageSize).
		Offset(offset(page, pageSize)).
		Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

func (r *userRepository) SetConfirmationCode(ctx context.Context, userID, code string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("confirmation_code", code)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) ConsumeConfirmationCode(ctx context.Context, username, code string) (bool, error) {
	// compare and clear in one statement so two concurrent exchanges of the
	// same code cannot both succeed
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? AND confirmation_code = ? AND confirmation_code <> ''", username, code).
		Update("confirmation_code", "")
	if res.Error != nil {
		return false, fmt.Errorf("consume confirmation code: %w", res.Error)
	}
	if res.RowsAffected == 1 {
		return true, nil
	}

	// wrong guess burns the outstanding code
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ?", username).
		Update("confirmation_code", "").Error
	if err != nil {
		return false, fmt.Errorf("clear confirmation code: %w", err)
	}
	return false, nil
}
