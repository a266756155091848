package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sjperalta/arrendando-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	CrudRepository[models.User]
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindAdmins(ctx context.Context) ([]models.User, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, hash string) error
	SetRecoveryCode(ctx context.Context, userID uuid.UUID, code string, sentAt time.Time) error
	ClearRecoveryCode(ctx context.Context, userID uuid.UUID) error
	ExpireRecoveryCode(ctx context.Context, userID uuid.UUID, code string) (bool, error)
	TouchLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error
}

type userRepository struct {
	CrudRepository[models.User]
	db *gorm.DB
}

// UserOptions are the list options of /auth/users
var UserOptions = CrudOptions{
	SearchColumns:   []string{"first_name", "last_name", "email"},
	FilterColumns:   map[string]string{"role": "role"},
	BoolFilters:     map[string]string{"isActive": "is_active"},
	ActiveColumn:    "is_active",
	SortableColumns: []string{"first_name", "last_name", "email", "role", "created_at"},
	DefaultOrder:    "created_at DESC",
	UniqueMessages: map[string]string{
		"users_email_key": "Ya existe un usuario con este correo electrónico",
	},
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{
		CrudRepository: NewCrudRepository[models.User](db, UserOptions),
		db:             db,
	}
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?)", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindAdmins(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("role = ? AND is_active = ?", models.RoleAdmin, true).
		Find(&users).Error
	return users, err
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, hash string) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("password_hash", hash).Error
}

func (r *userRepository) SetRecoveryCode(ctx context.Context, userID uuid.UUID, code string, sentAt time.Time) error {
	sentAt = sentAt.UTC()
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"recovery_code":         code,
			"recovery_code_sent_at": sentAt,
		}).Error
}

func (r *userRepository) ClearRecoveryCode(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"recovery_code":         nil,
			"recovery_code_sent_at": nil,
		}).Error
}

// ExpireRecoveryCode clears code only while it is still the stored one, so a
// newer code requested in the meantime survives. It reports whether a row changed.
func (r *userRepository) ExpireRecoveryCode(ctx context.Context, userID uuid.UUID, code string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND recovery_code = ?", userID, code).
		Updates(map[string]interface{}{
			"recovery_code":         nil,
			"recovery_code_sent_at": nil,
		})
	return result.RowsAffected > 0, result.Error
}

func (r *userRepository) TouchLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("last_login_at", at).Error
}
