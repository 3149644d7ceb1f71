package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

var ErrUserAlreadyExist = errors.New("user already exist")

func (r *GormRepo) CreateUserIfNotExists(ctx context.Context, u *models.User) error {
	tx := r.DB.WithContext(ctx).Where("email = ?", u.Email).FirstOrCreate(u)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrUserAlreadyExist
	}
	return nil
}

func (r *GormRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) GetAdminByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).
		Where("email = ? AND role = ?", email, models.RoleAdmin).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByConfirmationToken only matches tokens that have not expired at now.
func (r *GormRepo) GetUserByConfirmationToken(ctx context.Context, digest string, now time.Time) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).
		Where("email_confirmation_token_hash = ? AND email_confirmation_expires > ?", digest, now).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) GetUserByResetToken(ctx context.Context, digest string, now time.Time) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).
		Where("password_reset_token_hash = ? AND password_reset_expires > ?", digest, now).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) SaveUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Save(u).Error
}

type UserFilter struct {
	Search string
	Role   string
}

func (f UserFilter) scope(db *gorm.DB) *gorm.DB {
	if f.Search != "" {
		p := containsPattern(f.Search)
		db = db.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\')`, p, p)
	}
	if f.Role != "" {
		db = db.Where("role = ?", f.Role)
	}
	return db
}

func (r *GormRepo) ListUsers(ctx context.Context, f UserFilter, offset, limit int) (int64, []models.User, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Scopes(f.scope).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	users := make([]models.User, 0, limit)
	if err := r.DB.WithContext(ctx).
		Scopes(f.scope, paginate(offset, limit)).
		Order("created_at DESC").
		Find(&users).Error; err != nil {
		return 0, nil, err
	}
	return total, users, nil
}
