package util

import (
	"edureach_backend/internal/model"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession(expiresIn time.Duration) *model.Session {
	now := time.Now()
	return &model.Session{
		ID:        "sess-1",
		UserID:    3,
		Email:     "student@edureach.dev",
		Name:      "Alex Johnson",
		Role:      model.Student,
		CreatedAt: now,
		ExpiresAt: now.Add(expiresIn),
	}
}

func TestJWT_RoundTrip(t *testing.T) {
	token, err := GenerateJWT(testSession(time.Hour), "secret")
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.Equal(t, uint(3), claims.UserID)
	assert.Equal(t, model.Student, claims.Role)
}

func TestJWT_Rejects(t *testing.T) {
	token, err := GenerateJWT(testSession(time.Hour), "secret")
	require.NoError(t, err)

	_, err = ParseJWT(token, "other-secret")
	assert.Error(t, err)

	expired, err := GenerateJWT(testSession(-time.Minute), "secret")
	require.NoError(t, err)
	_, err = ParseJWT(expired, "secret")
	assert.Error(t, err)

	_, err = ParseJWT("not-a-token", "secret")
	assert.Error(t, err)
}

func TestTokenTTL(t *testing.T) {
	now := time.Now()
	assert.Equal(t, time.Hour, TokenTTL(now.Add(time.Hour), now))
	assert.Equal(t, time.Duration(0), TokenTTL(now.Add(-time.Hour), now))
}

func TestGetSessionFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetSessionFromContext(c))

	c.Set(ContextSessionKey, "wrong type")
	assert.Nil(t, GetSessionFromContext(c))

	s := testSession(time.Hour)
	c.Set(ContextSessionKey, s)
	assert.Same(t, s, GetSessionFromContext(c))
}
