package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"techlearn/models"

	"gorm.io/gorm"
)

// GormAccounts stores accounts in the accounts table of the SQL drivers.
type GormAccounts struct {
	db *gorm.DB
}

func NewGormAccounts(db *gorm.DB) *GormAccounts {
	return &GormAccounts{db: db}
}

func (r *GormAccounts) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).Where("email = ? AND is_deleted = ?", email, false).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	return &account, nil
}

func (r *GormAccounts) Create(ctx context.Context, account *models.Account) error {
	tx := r.db.WithContext(ctx).Begin()
	if err := tx.Where("email = ?", account.Email).First(&models.Account{}).Error; err == nil {
		tx.Rollback()
		return ErrAccountExists
	}
	if err := tx.Create(account).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAccountExists
		}
		return fmt.Errorf("create account: %w", err)
	}
	return tx.Commit().Error
}

func (r *GormAccounts) TouchLogin(ctx context.Context, email string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("email = ? AND is_deleted = ?", email, false).
		Update("last_login", at)
	if res.Error != nil {
		return fmt.Errorf("update last login: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}
