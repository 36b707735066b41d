package store

import (
	"context"
	"errors"

	"github.com/vnxcius/accounts-api/internal/database/model"
	"gorm.io/gorm"
)

type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

// Create inserts the user. The unique index on email is the real
// duplicate guard; the conflict comes back as ErrDuplicateEmail.
func (s *Users) Create(ctx context.Context, user *model.User) error {
	user.Email = NormalizeEmail(user.Email)
	err := s.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateEmail
	}
	return err
}

func (s *Users) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Users) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).First(&user, "email = ?", NormalizeEmail(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateFields applies a partial update by primary key, then
// re-reads the row so the caller sees timestamps set by the db.
func (s *Users) UpdateFields(ctx context.Context, id uint, fields map[string]any) (*model.User, error) {
	if email, ok := fields["email"].(string); ok {
		fields["email"] = NormalizeEmail(email)
	}

	tx := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	return s.GetByID(ctx, id)
}

// EmailTaken reports whether any user other than excludeID already
// holds the email.
func (s *Users) EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("email = ? AND id <> ?", NormalizeEmail(email), excludeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
