package services

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"

	"droneworks/opsdesk/internal/apperrors"
	"droneworks/opsdesk/internal/auth"
	"droneworks/opsdesk/internal/common"
	"droneworks/opsdesk/internal/logging"
	"droneworks/opsdesk/internal/models/dtos"
	"droneworks/opsdesk/internal/models/entities"
)

type UserStore interface {
	Insert(ctx context.Context, user *entities.User) error
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
	FindByID(ctx context.Context, id string) (*entities.User, error)
	ListAll(ctx context.Context) ([]entities.User, error)
}

type SessionStore interface {
	CreateSession(ctx context.Context, userID, email string) (string, error)
	GetSession(ctx context.Context, sessionID string) (*common.SessionData, error)
	RotateSession(ctx context.Context, sessionID string) (string, *common.SessionData, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// AuthResult is what a successful register, login or refresh produces:
// the user, a short-lived access token and the opaque refresh token the
// handler sets as an httpOnly cookie.
type AuthResult struct {
	User         dtos.UserDTO
	AccessToken  string
	RefreshToken string
}

type AuthService struct {
	users    UserStore
	sessions SessionStore
	issuer   *auth.TokenIssuer

	// Coalesces concurrent refreshes of the same session: a burst of
	// tabs waking up together rotates the session once and every caller
	// gets the same fresh pair, instead of the losers invalidating each
	// other's tokens.
	refreshGroup singleflight.Group
}

func NewAuthService(users UserStore, sessions SessionStore, issuer *auth.TokenIssuer) *AuthService {
	return &AuthService{users: users, sessions: sessions, issuer: issuer}
}

func (s *AuthService) Register(ctx context.Context, req dtos.RegisterRequest) (*AuthResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
	}
	if err := s.users.Insert(ctx, user); err != nil {
		return nil, err
	}

	logging.Info("User registered", "user_id", user.ID, "email", user.Email)
	return s.issuePair(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, req dtos.LoginRequest) (*AuthResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, apperrors.ErrUnauthorized
	}

	logging.Info("User logged in", "user_id", user.ID)
	return s.issuePair(ctx, user)
}

// Refresh rotates the session behind the presented refresh token and
// issues a fresh access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, apperrors.ErrUnauthorized
	}

	v, err, _ := s.refreshGroup.Do(refreshToken, func() (interface{}, error) {
		newID, session, err := s.sessions.RotateSession(ctx, refreshToken)
		if errors.Is(err, common.ErrSessionNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		if err != nil {
			return nil, err
		}

		user, err := s.users.FindByID(ctx, session.UserID)
		if errors.Is(err, apperrors.ErrNotFound) {
			// User deleted since the session was minted. Revoke it.
			_ = s.sessions.DeleteSession(ctx, newID)
			return nil, apperrors.ErrUnauthorized
		}
		if err != nil {
			return nil, err
		}

		access, err := s.issuer.Sign(user.ID, user.Email)
		if err != nil {
			return nil, err
		}
		return &AuthResult{
			User:         dtos.NewUserDTO(user),
			AccessToken:  access,
			RefreshToken: newID,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*AuthResult), nil
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.sessions.DeleteSession(ctx, refreshToken)
}

func (s *AuthService) Me(ctx context.Context, userID string) (*dtos.UserDTO, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := dtos.NewUserDTO(user)
	return &dto, nil
}

// ListPilots returns the roster for assignment pickers. Every account
// doubles as a pilot.
func (s *AuthService) ListPilots(ctx context.Context) ([]dtos.UserDTO, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dtos.UserDTO, 0, len(users))
	for i := range users {
		out = append(out, dtos.NewUserDTO(&users[i]))
	}
	return out, nil
}

func (s *AuthService) issuePair(ctx context.Context, user *entities.User) (*AuthResult, error) {
	access, err := s.issuer.Sign(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sessions.CreateSession(ctx, user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		User:         dtos.NewUserDTO(user),
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}
