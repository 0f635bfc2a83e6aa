package repository

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/auth-user/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository persists users together with their credential records.
type UserRepository interface {
	// CreateWithAccount inserts the user and its credential in one
	// transaction. A taken email yields ErrDuplicate.
	CreateWithAccount(ctx context.Context, user *models.User, account *models.Account) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindCredential(ctx context.Context, userID uuid.UUID) (*models.Account, error)
	// List returns every user, newest first.
	List(ctx context.Context) ([]models.User, error)
	// Update sets the name and/or replaces the credential hash. Nil fields
	// are left untouched.
	Update(ctx context.Context, id uuid.UUID, name, passwordHash *string) (*models.User, error)
	// DeleteNonAdmin deletes the user only when its role is not ADMIN, in a
	// single statement. It reports whether a row was deleted.
	DeleteNonAdmin(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteByEmail(ctx context.Context, email string) error
	// Promote grants ADMIN and marks the email verified.
	Promote(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) CreateWithAccount(ctx context.Context, user *models.User, account *models.Account) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Accounts", "Sessions").Create(user).Error; err != nil {
			return translate(err)
		}
		account.UserID = user.ID
		if account.AccountID == "" {
			account.AccountID = user.ID.String()
		}
		return translate(tx.Create(account).Error)
	})
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormUserRepository) FindCredential(ctx context.Context, userID uuid.UUID) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND provider_id = ?", userID, models.ProviderCredential).
		First(&account).Error
	if err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

func (r *GormUserRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *GormUserRepository) Update(ctx context.Context, id uuid.UUID, name, passwordHash *string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, "id = ?", id).Error; err != nil {
			return translate(err)
		}

		if name != nil {
			if err := tx.Model(&user).Update("name", *name).Error; err != nil {
				return err
			}
		}

		if passwordHash != nil {
			result := tx.Model(&models.Account{}).
				Where("user_id = ? AND provider_id = ?", id, models.ProviderCredential).
				Update("password", *passwordHash)
			if result.Error != nil {
				return result.Error
			}
			// Users provisioned without a credential get one.
			if result.RowsAffected == 0 {
				return tx.Create(&models.Account{
					ID:         uuid.New(),
					UserID:     id,
					ProviderID: models.ProviderCredential,
					AccountID:  id.String(),
					Password:   *passwordHash,
				}).Error
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) DeleteNonAdmin(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND role <> ?", id, models.RoleAdmin).
		Delete(&models.User{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *GormUserRepository) DeleteByEmail(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).Where("email = ?", email).Delete(&models.User{}).Error
}

func (r *GormUserRepository) Promote(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"role":           models.RoleAdmin,
			"email_verified": true,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormUserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error
	return n, err
}
