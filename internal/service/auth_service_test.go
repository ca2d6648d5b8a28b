package service

import (
	"context"
	"edureach_backend/internal/config"
	"edureach_backend/internal/model"
	"edureach_backend/internal/util"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	users map[string]*model.User
}

func (r *fakeUserRepo) FindByEmail(email string) (*model.User, error) {
	if u, ok := r.users[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{sessions: map[string]*model.Session{}}
}

func (m *memorySessionStore) Save(ctx context.Context, session *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *session
	m.sessions[session.ID] = &cp
	return nil
}

func (m *memorySessionStore) Load(ctx context.Context, id string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", util.ErrSessionNotFound, id)
	}
	cp := *s
	return &cp, nil
}

func (m *memorySessionStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func newTestAuthService(t *testing.T) (*AuthService, *memorySessionStore) {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &fakeUserRepo{users: map[string]*model.User{
		"student@edureach.dev": {BaseModel: model.BaseModel{ID: 1}, Name: "Alex Johnson", Email: "student@edureach.dev", Password: string(hashed), Role: model.Student},
		"teacher@edureach.dev": {BaseModel: model.BaseModel{ID: 2}, Name: "Ms. Rivera", Email: "teacher@edureach.dev", Password: string(hashed), Role: model.Teacher},
	}}
	store := newMemorySessionStore()
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour}}
	return NewAuthService(repo, store, cfg), store
}

func TestAuthService_LoginCreatesSession(t *testing.T) {
	svc, store := newTestAuthService(t)

	result, err := svc.Login(context.Background(), " Student@EduReach.dev ", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	assert.Equal(t, uint(1), result.Session.UserID)
	assert.Equal(t, model.Student, result.Session.Role)
	assert.Contains(t, store.sessions, result.Session.ID)

	session, err := svc.Authenticate(context.Background(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, "Alex Johnson", session.Name)
}

func TestAuthService_LoginRejectsBadCredentials(t *testing.T) {
	svc, store := newTestAuthService(t)

	_, err := svc.Login(context.Background(), "student@edureach.dev", "wrong")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody@edureach.dev", "password123")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
	assert.Empty(t, store.sessions)
}

func TestAuthService_LogoutInvalidatesToken(t *testing.T) {
	svc, _ := newTestAuthService(t)

	result, err := svc.Login(context.Background(), "teacher@edureach.dev", "password123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), result.Session.ID))

	_, err = svc.Authenticate(context.Background(), result.Token)
	assert.ErrorIs(t, err, util.ErrSessionNotFound)
}

func TestAuthService_AuthenticateRejectsForeignToken(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.Authenticate(context.Background(), "garbage")
	assert.ErrorIs(t, err, util.ErrUnauthorized)

	forged, err := util.GenerateJWT(&model.Session{ID: "x", UserID: 1, ExpiresAt: time.Now().Add(time.Hour)}, "other")
	require.NoError(t, err)
	_, err = svc.Authenticate(context.Background(), forged)
	assert.ErrorIs(t, err, util.ErrUnauthorized)
}

func TestAuthService_AuthenticateRejectsExpiredSession(t *testing.T) {
	svc, _ := newTestAuthService(t)

	result, err := svc.Login(context.Background(), "student@edureach.dev", "password123")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.Authenticate(context.Background(), result.Token)
	assert.Error(t, err)
}

func TestMenuFor(t *testing.T) {
	tests := []struct {
		role  model.UserRole
		first string
		last  string
	}{
		{model.Student, "Dashboard", "Progress"},
		{model.Teacher, "Dashboard", "Content Manager"},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			menu := MenuFor(tt.role)
			require.Len(t, menu, 6)
			assert.Equal(t, tt.first, menu[0].Title)
			assert.Equal(t, tt.last, menu[5].Title)
		})
	}

	titles := make([]string, 0, 6)
	for _, item := range MenuFor(model.Student) {
		titles = append(titles, item.Title)
	}
	assert.Equal(t, []string{"Dashboard", "Courses", "AI Tutor", "Offline Content", "Quizzes", "Progress"}, titles)
}
