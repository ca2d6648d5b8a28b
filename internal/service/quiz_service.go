package service

import (
	"edureach_backend/internal/model"
	"edureach_backend/internal/util"
	"edureach_backend/pkg/logger"
	"edureach_backend/pkg/monitoring"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type QuizRepo interface {
	FindAll() ([]model.Quiz, error)
	FindByID(id string) (*model.Quiz, error)
	SaveResult(result *model.QuizResult) error
	ListResultsByUser(userID uint) ([]model.QuizResult, error)
}

type QuizSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	TimeLimit     int    `json:"timeLimit"`
	QuestionCount int    `json:"questionCount"`
}

type CompletedQuiz struct {
	QuizSummary
	BestScore       int       `json:"bestScore"`
	LastScore       int       `json:"lastScore"`
	Attempts        int       `json:"attempts"`
	LastCompletedAt time.Time `json:"lastCompletedAt"`
}

// QuizCatalog 对应测验页的 Available / Completed 两个标签页
type QuizCatalog struct {
	Available []QuizSummary   `json:"available"`
	Completed []CompletedQuiz `json:"completed"`
}

type userAttempt struct {
	mu     sync.Mutex
	engine *QuizEngine
}

type QuizService struct {
	Repo QuizRepo

	mu       sync.Mutex
	attempts map[uint]*userAttempt
}

func NewQuizService(repo QuizRepo) *QuizService {
	return &QuizService{
		Repo:     repo,
		attempts: make(map[uint]*userAttempt),
	}
}

func (s *QuizService) attempt(userID uint) *userAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[userID]
	if !ok {
		a = &userAttempt{engine: NewQuizEngine()}
		s.attempts[userID] = a
	}
	return a
}

func summarize(q *model.Quiz) QuizSummary {
	return QuizSummary{
		ID:            q.ID,
		Title:         q.Title,
		Description:   q.Description,
		Category:      q.Category,
		TimeLimit:     q.TimeLimit,
		QuestionCount: len(q.Questions),
	}
}

// ListQuizzes 未完成过的测验在 Available，有成绩记录的在 Completed（仍可重新开始）
func (s *QuizService) ListQuizzes(userID uint) (*QuizCatalog, error) {
	quizzes, err := s.Repo.FindAll()
	if err != nil {
		return nil, err
	}
	results, err := s.Repo.ListResultsByUser(userID)
	if err != nil {
		return nil, err
	}

	byQuiz := make(map[string][]model.QuizResult)
	for _, r := range results {
		byQuiz[r.QuizID] = append(byQuiz[r.QuizID], r)
	}

	catalog := &QuizCatalog{
		Available: make([]QuizSummary, 0),
		Completed: make([]CompletedQuiz, 0),
	}
	for i := range quizzes {
		summary := summarize(&quizzes[i])
		rs := byQuiz[summary.ID]
		if len(rs) == 0 {
			catalog.Available = append(catalog.Available, summary)
			continue
		}

		done := CompletedQuiz{QuizSummary: summary, Attempts: len(rs)}
		for _, r := range rs {
			if r.Score > done.BestScore {
				done.BestScore = r.Score
			}
			if r.CompletedAt.After(done.LastCompletedAt) {
				done.LastCompletedAt = r.CompletedAt
				done.LastScore = r.Score
			}
		}
		catalog.Completed = append(catalog.Completed, done)
	}
	return catalog, nil
}

func (s *QuizService) loadQuiz(quizID string) (*model.Quiz, error) {
	quiz, err := s.Repo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", util.ErrQuizNotFound, quizID)
		}
		return nil, err
	}
	return quiz, nil
}

func (s *QuizService) StartQuiz(userID uint, quizID string) (model.QuizAttempt, error) {
	quiz, err := s.loadQuiz(quizID)
	if err != nil {
		return model.QuizAttempt{}, err
	}

	a := s.attempt(userID)
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.engine.Start(quiz); err != nil {
		return model.QuizAttempt{}, err
	}

	logger.Log.Info("quiz started", zap.Uint("userId", userID), zap.String("quizId", quizID))
	return a.engine.Snapshot(), nil
}

func (s *QuizService) SelectAnswer(userID uint, questionID string, option int) (model.QuizAttempt, error) {
	a := s.attempt(userID)
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.engine.SelectAnswer(questionID, option); err != nil {
		return model.QuizAttempt{}, err
	}
	return a.engine.Snapshot(), nil
}

// Advance 最后一题时完成测验并保存成绩
func (s *QuizService) Advance(userID uint) (model.QuizAttempt, error) {
	a := s.attempt(userID)
	a.mu.Lock()
	if err := a.engine.Advance(); err != nil {
		a.mu.Unlock()
		return model.QuizAttempt{}, err
	}
	snap := a.engine.Snapshot()
	a.mu.Unlock()

	if snap.State == model.AttemptCompleted {
		s.recordResult(userID, snap)
	}
	return snap, nil
}

func (s *QuizService) recordResult(userID uint, snap model.QuizAttempt) {
	monitoring.QuizCompletions.WithLabelValues(snap.QuizID).Inc()

	result := &model.QuizResult{
		UserID:      userID,
		QuizID:      snap.QuizID,
		Score:       snap.Score,
		Correct:     snap.CorrectCount,
		Total:       snap.TotalQuestions,
		CompletedAt: *snap.CompletedAt,
	}
	// 成绩保存失败不影响本次答题结果
	if err := s.Repo.SaveResult(result); err != nil {
		logger.Log.Error("failed to save quiz result",
			zap.Uint("userId", userID),
			zap.String("quizId", snap.QuizID),
			zap.Error(err))
		return
	}

	logger.Log.Info("quiz completed",
		zap.Uint("userId", userID),
		zap.String("quizId", snap.QuizID),
		zap.Int("score", snap.Score))
}

func (s *QuizService) Retry(userID uint) (model.QuizAttempt, error) {
	a := s.attempt(userID)
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.engine.Retry(); err != nil {
		return model.QuizAttempt{}, err
	}
	return a.engine.Snapshot(), nil
}

func (s *QuizService) Reset(userID uint) model.QuizAttempt {
	a := s.attempt(userID)
	a.mu.Lock()
	defer a.mu.Unlock()
	a.engine.Reset()
	return a.engine.Snapshot()
}

func (s *QuizService) CurrentAttempt(userID uint) model.QuizAttempt {
	a := s.attempt(userID)
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.engine.Snapshot()
}

func (s *QuizService) Review(userID uint) ([]model.QuestionReview, error) {
	a := s.attempt(userID)
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.engine.Review()
}
