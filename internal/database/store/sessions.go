package store

import (
	"context"
	"errors"
	"time"

	"github.com/vnxcius/accounts-api/internal/database/model"
	"gorm.io/gorm"
)

type Sessions struct {
	db *gorm.DB
}

func NewSessions(db *gorm.DB) *Sessions {
	return &Sessions{db: db}
}

func (s *Sessions) Create(ctx context.Context, session *model.Session) error {
	return s.db.WithContext(ctx).Create(session).Error
}

func (s *Sessions) Get(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session
	err := s.db.WithContext(ctx).First(&session, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Sessions) Revoke(ctx context.Context, id string) error {
	tx := s.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("id = ?", id).
		Update("is_revoked", true)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Revoked returns the still-live revoked sessions, used to warm the
// in-memory denylist after a restart.
func (s *Sessions) Revoked(ctx context.Context) ([]model.Session, error) {
	var sessions []model.Session
	err := s.db.WithContext(ctx).
		Where("is_revoked = ? AND expires_at > ?", true, time.Now()).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}
