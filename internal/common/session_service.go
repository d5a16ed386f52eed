package common

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"droneworks/opsdesk/internal/logging"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionData is one refresh session. The session id doubles as the
// refresh token the client carries in its cookie; rotating the session
// invalidates the old token.
type SessionData struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionService manages refresh sessions in Redis
type SessionService struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewSessionService(redis *redis.Client, ttl time.Duration) *SessionService {
	return &SessionService{redis: redis, ttl: ttl}
}

// CreateSession stores a new refresh session and returns its id.
func (s *SessionService) CreateSession(ctx context.Context, userID, email string) (string, error) {
	sessionID := uuid.New().String()

	now := time.Now().UTC()
	session := SessionData{
		SessionID: sessionID,
		UserID:    userID,
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	data, err := json.Marshal(session)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.redis.Set(ctx, "session:"+sessionID, data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	logging.Debug("Session created", "user_id", userID, "expires_at", session.ExpiresAt)
	return sessionID, nil
}

// GetSession retrieves a session from Redis
func (s *SessionService) GetSession(ctx context.Context, sessionID string) (*SessionData, error) {
	val, err := s.redis.Get(ctx, "session:"+sessionID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session SessionData
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// RotateSession atomically replaces an existing session with a fresh
// one. The old refresh token stops working the moment the new one is
// issued, so a leaked token can be used at most once.
func (s *SessionService) RotateSession(ctx context.Context, sessionID string) (string, *SessionData, error) {
	old, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return "", nil, err
	}

	if err := s.DeleteSession(ctx, sessionID); err != nil {
		return "", nil, err
	}

	newID, err := s.CreateSession(ctx, old.UserID, old.Email)
	if err != nil {
		return "", nil, err
	}

	fresh, err := s.GetSession(ctx, newID)
	if err != nil {
		return "", nil, err
	}
	return newID, fresh, nil
}

// DeleteSession revokes a session.
func (s *SessionService) DeleteSession(ctx context.Context, sessionID string) error {
	return s.redis.Del(ctx, "session:"+sessionID).Err()
}
