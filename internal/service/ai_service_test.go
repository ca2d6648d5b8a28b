package service

import (
	"context"
	"edureach_backend/internal/config"
	"edureach_backend/internal/util"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAIServer(t *testing.T, handler http.HandlerFunc) *AIService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewAIService(config.AIConfig{BaseURL: srv.URL + "/", APIKey: "k", Model: "gpt-4o", Timeout: time.Second})
}

func TestAIService_Complete(t *testing.T) {
	var got ChatCompletionRequest
	svc := newAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"x = 4"}}]}`))
	})

	history := []AIChatMessage{{Role: "assistant", Content: "Hello"}}
	text, err := svc.Complete(context.Background(), "be nice", history, "solve 2x+5=13")
	require.NoError(t, err)
	assert.Equal(t, "x = 4", text)

	require.Len(t, got.Messages, 3)
	assert.Equal(t, "gpt-4o", got.Model)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "assistant", got.Messages[1].Role)
	assert.Equal(t, "user", got.Messages[2].Role)
	assert.Equal(t, "solve 2x+5=13", got.Messages[2].Content)
}

func TestAIService_CompleteFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":{"message":"boom"}}`},
		{"api error", http.StatusOK, `{"error":{"message":"quota"}}`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
		{"bad json", http.StatusOK, `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newAIServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := svc.Complete(context.Background(), "", nil, "hi")
			assert.ErrorIs(t, err, util.ErrExternalService)
		})
	}
}

func TestAIService_Unreachable(t *testing.T) {
	svc := NewAIService(config.AIConfig{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})
	_, err := svc.Complete(context.Background(), "", nil, "hi")
	assert.ErrorIs(t, err, util.ErrExternalService)
}
