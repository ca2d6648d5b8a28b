package service

import (
	"context"
	"edureach_backend/internal/model"
	"edureach_backend/internal/util"
	"edureach_backend/pkg/logger"
	"edureach_backend/pkg/monitoring"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	TutorGreeting = "Hello! I'm your AI tutor. How can I help you with your studies today?"
	TutorFallback = "I'm sorry, I encountered an error. Please try again later."

	tutorSystemPrompt = "You are an educational AI tutor specialized in helping students understand complex concepts. Be concise, clear, and encouraging."

	// 每次请求最多带上的历史消息数
	tutorHistoryLimit = 20
)

type Completer interface {
	Complete(ctx context.Context, system string, history []AIChatMessage, prompt string) (string, error)
}

func tutorPrompt(text string) string {
	return fmt.Sprintf("You are an educational AI tutor helping a student.\n"+
		"The student says: %q\n\n"+
		"Provide a helpful, educational response that explains concepts clearly and encourages further learning.", text)
}

type conversation struct {
	mu       sync.Mutex
	messages []model.TutorMessage
}

// TutorService 每个会话一段对话，保存在内存中
type TutorService struct {
	AI  Completer
	now func() time.Time

	mu            sync.Mutex
	conversations map[string]*conversation
}

func NewTutorService(ai Completer) *TutorService {
	return &TutorService{
		AI:            ai,
		now:           time.Now,
		conversations: make(map[string]*conversation),
	}
}

func (s *TutorService) conversation(sessionID string) *conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[sessionID]
	if !ok {
		c = &conversation{messages: []model.TutorMessage{{
			Role:      model.TutorRoleAssistant,
			Content:   TutorGreeting,
			CreatedAt: s.now(),
		}}}
		s.conversations[sessionID] = c
	}
	return c
}

func (s *TutorService) History(sessionID string) []model.TutorMessage {
	c := s.conversation(sessionID)
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.TutorMessage(nil), c.messages...)
}

// Ask AI 调用失败时回复固定的道歉消息，不向调用方返回错误
func (s *TutorService) Ask(ctx context.Context, sessionID, text string) (model.TutorMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.TutorMessage{}, fmt.Errorf("%w: empty question", util.ErrPreconditionFailed)
	}

	c := s.conversation(sessionID)
	c.mu.Lock()
	defer c.mu.Unlock()

	history := recentHistory(c.messages, tutorHistoryLimit)
	c.messages = append(c.messages, model.TutorMessage{
		Role:      model.TutorRoleUser,
		Content:   text,
		CreatedAt: s.now(),
	})

	reply, err := s.AI.Complete(ctx, tutorSystemPrompt, history, tutorPrompt(text))
	if err != nil {
		if !errors.Is(err, util.ErrExternalService) {
			logger.Log.Error("tutor completion failed", zap.String("sessionId", sessionID), zap.Error(err))
		} else {
			logger.Log.Warn("tutor completion unavailable", zap.String("sessionId", sessionID), zap.Error(err))
		}
		monitoring.TutorRequests.WithLabelValues("fallback").Inc()
		reply = TutorFallback
	} else {
		monitoring.TutorRequests.WithLabelValues("ok").Inc()
	}

	msg := model.TutorMessage{
		Role:      model.TutorRoleAssistant,
		Content:   reply,
		CreatedAt: s.now(),
	}
	c.messages = append(c.messages, msg)
	return msg, nil
}

// Forget 登出时丢弃会话的对话记录
func (s *TutorService) Forget(sessionID string) {
	s.mu.Lock()
	delete(s.conversations, sessionID)
	s.mu.Unlock()
}

func recentHistory(messages []model.TutorMessage, limit int) []AIChatMessage {
	if len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	out := make([]AIChatMessage, len(messages))
	for i, m := range messages {
		out[i] = AIChatMessage{Role: m.Role, Content: m.Content}
	}
	return out
}
