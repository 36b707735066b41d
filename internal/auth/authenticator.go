// Package auth owns the credential verification and session
// issuance flow. Handlers talk to the Authenticator interface, never
// to bcrypt or the JWT maker directly.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/vnxcius/accounts-api/internal/database/model"
	"github.com/vnxcius/accounts-api/internal/database/store"
	"github.com/vnxcius/accounts-api/internal/token"
	"github.com/vnxcius/accounts-api/internal/util"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrTokenRevoked    = errors.New("session has been terminated")
)

type Authenticator interface {
	VerifyCredentials(ctx context.Context, email, password string) (*model.User, error)
	IssueToken(ctx context.Context, user *model.User) (string, *token.UserClaims, error)
	EndSession(ctx context.Context, claims *token.UserClaims) error
	CheckToken(tokenStr string) (*token.UserClaims, error)
}

type Service struct {
	users    *store.Users
	sessions *store.Sessions
	maker    *token.JWTMaker
	ttl      time.Duration
	denylist *Denylist
}

// NewService builds the authenticator and warms the denylist with
// revoked sessions that are still inside their ttl, so revocations
// survive a restart.
func NewService(
	ctx context.Context,
	users *store.Users,
	sessions *store.Sessions,
	maker *token.JWTMaker,
	ttl time.Duration,
) (*Service, error) {
	s := &Service{
		users:    users,
		sessions: sessions,
		maker:    maker,
		ttl:      ttl,
		denylist: NewDenylist(ctx),
	}

	revoked, err := sessions.Revoked(ctx)
	if err != nil {
		return nil, err
	}
	for _, session := range revoked {
		s.denylist.Add(session.ID, session.ExpiresAt)
	}

	return s, nil
}

// VerifyCredentials is read-only: it never locks the account or
// mutates the record.
func (s *Service) VerifyCredentials(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := util.CheckPasswordHash(password, user.Password); err != nil {
		return nil, ErrInvalidPassword
	}

	return user, nil
}

func (s *Service) IssueToken(ctx context.Context, user *model.User) (string, *token.UserClaims, error) {
	tokenStr, claims, err := s.maker.CreateToken(user.ID, s.ttl)
	if err != nil {
		slog.Error("Failed to create token", "error", err)
		return "", nil, err
	}

	err = s.sessions.Create(ctx, &model.Session{
		ID:        claims.ID,
		UserID:    user.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	})
	if err != nil {
		slog.Error("Failed to record session", "error", err)
		return "", nil, err
	}

	return tokenStr, claims, nil
}

// EndSession revokes the token for the rest of its ttl. The denylist
// entry goes in first so the token stops working even if the row
// update fails.
func (s *Service) EndSession(ctx context.Context, claims *token.UserClaims) error {
	s.denylist.Add(claims.ID, claims.ExpiresAt.Time)

	err := s.sessions.Revoke(ctx, claims.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}

func (s *Service) CheckToken(tokenStr string) (*token.UserClaims, error) {
	claims, err := s.maker.VerifyToken(tokenStr)
	if err != nil {
		return nil, err
	}
	if s.denylist.Has(claims.ID) {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}
