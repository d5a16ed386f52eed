package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"droneworks/opsdesk/internal/apperrors"
	"droneworks/opsdesk/internal/auth"
	"droneworks/opsdesk/internal/common"
	"droneworks/opsdesk/internal/models/dtos"
	"droneworks/opsdesk/internal/models/entities"
)

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*entities.User // by id
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*entities.User{}}
}

func (f *fakeUserStore) Insert(ctx context.Context, user *entities.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return apperrors.Conflict("email", "An account with this email already exists")
		}
	}
	if user.ID == "" {
		user.ID = "user-" + user.Email
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeUserStore) FindByID(ctx context.Context, id string) (*entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeUserStore) ListAll(ctx context.Context) ([]entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entities.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*common.SessionData
	seq      int
	rotates  int
	release  chan struct{} // non-nil: RotateSession blocks until closed
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]*common.SessionData{}}
}

func (f *fakeSessionStore) CreateSession(ctx context.Context, userID, email string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	id := "sess-" + string(rune('a'+f.seq))
	f.sessions[id] = &common.SessionData{
		SessionID: id,
		UserID:    userID,
		Email:     email,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	return id, nil
}

func (f *fakeSessionStore) GetSession(ctx context.Context, sessionID string) (*common.SessionData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[sessionID]; ok {
		return s, nil
	}
	return nil, common.ErrSessionNotFound
}

func (f *fakeSessionStore) RotateSession(ctx context.Context, sessionID string) (string, *common.SessionData, error) {
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	old, ok := f.sessions[sessionID]
	if !ok {
		f.mu.Unlock()
		return "", nil, common.ErrSessionNotFound
	}
	delete(f.sessions, sessionID)
	f.rotates++
	f.mu.Unlock()

	newID, err := f.CreateSession(ctx, old.UserID, old.Email)
	if err != nil {
		return "", nil, err
	}
	return newID, f.sessions[newID], nil
}

func (f *fakeSessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, sessionID)
	return nil
}

func newTestAuthService() (*AuthService, *fakeUserStore, *fakeSessionStore) {
	users := newFakeUserStore()
	sessions := newFakeSessionStore()
	issuer := auth.NewTokenIssuer("test-secret", 15*time.Minute)
	return NewAuthService(users, sessions, issuer), users, sessions
}

func seedUser(t *testing.T, users *fakeUserStore, email, password string) *entities.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &entities.User{Name: "Test Pilot", Email: email, Phone: "+971500000000", PasswordHash: string(hash)}
	if err := users.Insert(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestRegisterIssuesTokenPair(t *testing.T) {
	svc, _, sessions := newTestAuthService()

	res, err := svc.Register(context.Background(), dtos.RegisterRequest{
		Name:     "Lina",
		Email:    "lina@example.com",
		Phone:    "+971501234567",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatal("missing tokens")
	}
	if _, err := sessions.GetSession(context.Background(), res.RefreshToken); err != nil {
		t.Fatalf("refresh session not stored: %v", err)
	}

	// The access token names the new user.
	p, err := auth.NewTokenIssuer("test-secret", time.Minute).Verify(res.AccessToken)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if p.UserID != res.User.ID || p.Email != "lina@example.com" {
		t.Fatalf("principal %+v, user %+v", p, res.User)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestAuthService()
	_, err := svc.Register(context.Background(), dtos.RegisterRequest{Email: "not-an-email", Password: "short"})
	if !apperrors.IsValidation(err) {
		t.Fatalf("want validation error, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, users, _ := newTestAuthService()
	seedUser(t, users, "lina@example.com", "correct horse")

	_, err := svc.Login(context.Background(), dtos.LoginRequest{Email: "lina@example.com", Password: "wrong"})
	if !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("wrong password: want ErrUnauthorized, got %v", err)
	}

	// Unknown accounts fail the same way as bad passwords.
	_, err = svc.Login(context.Background(), dtos.LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	if !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("unknown user: want ErrUnauthorized, got %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	svc, users, _ := newTestAuthService()
	u := seedUser(t, users, "lina@example.com", "correct horse")

	res, err := svc.Login(context.Background(), dtos.LoginRequest{Email: "lina@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	fresh, err := svc.Refresh(context.Background(), res.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if fresh.RefreshToken == res.RefreshToken {
		t.Fatal("refresh token not rotated")
	}
	if fresh.User.ID != u.ID {
		t.Fatalf("user %s, want %s", fresh.User.ID, u.ID)
	}

	// The old token is burned.
	if _, err := svc.Refresh(context.Background(), res.RefreshToken); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("replayed token: want ErrUnauthorized, got %v", err)
	}
}

func TestRefreshCoalescesConcurrentCalls(t *testing.T) {
	svc, users, sessions := newTestAuthService()
	seedUser(t, users, "lina@example.com", "correct horse")

	res, err := svc.Login(context.Background(), dtos.LoginRequest{Email: "lina@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	release := make(chan struct{})
	sessions.release = release

	const n = 8
	results := make([]*AuthResult, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := svc.Refresh(context.Background(), res.RefreshToken)
			if err != nil {
				t.Errorf("refresh %d: %v", i, err)
				return
			}
			results[i] = r
		}(i)
	}
	time.Sleep(20 * time.Millisecond) // let the goroutines pile up
	close(release)
	wg.Wait()

	if sessions.rotates != 1 {
		t.Fatalf("want one rotation, got %d", sessions.rotates)
	}
	for i := 1; i < n; i++ {
		if results[i] == nil || results[0] == nil {
			t.Fatal("missing result")
		}
		if results[i].RefreshToken != results[0].RefreshToken {
			t.Fatal("coalesced refreshes returned different tokens")
		}
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, users, sessions := newTestAuthService()
	seedUser(t, users, "lina@example.com", "correct horse")

	res, err := svc.Login(context.Background(), dtos.LoginRequest{Email: "lina@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(context.Background(), res.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := sessions.GetSession(context.Background(), res.RefreshToken); !errors.Is(err, common.ErrSessionNotFound) {
		t.Fatalf("session survived logout: %v", err)
	}
}
