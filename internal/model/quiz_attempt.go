package model

import "time"

// AttemptState 答题流程状态
type AttemptState string

const (
	AttemptNotStarted AttemptState = "not_started"
	AttemptInProgress AttemptState = "in_progress"
	AttemptCompleted  AttemptState = "completed"
)

func (s AttemptState) String() string {
	return string(s)
}

// QuestionView 答题时下发的题目，不含正确答案
type QuestionView struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Options  []string `json:"options"`
	Selected *int     `json:"selected,omitempty"`
}

// QuizAttempt 一次答题的快照，不持久化
type QuizAttempt struct {
	QuizID          string         `json:"quizId,omitempty"`
	QuizTitle       string         `json:"quizTitle,omitempty"`
	Category        string         `json:"category,omitempty"`
	State           AttemptState   `json:"state"`
	CurrentIndex    int            `json:"currentIndex"`
	TotalQuestions  int            `json:"totalQuestions"`
	Answers         map[string]int `json:"answers"`
	CorrectCount    int            `json:"correctCount"`
	Score           int            `json:"score"`
	Feedback        string         `json:"feedback,omitempty"`
	CurrentQuestion *QuestionView  `json:"currentQuestion,omitempty"`
	CanAdvance      bool           `json:"canAdvance"`
	IsLastQuestion  bool           `json:"isLastQuestion"`
	StartedAt       *time.Time     `json:"startedAt,omitempty"`
	CompletedAt     *time.Time     `json:"completedAt,omitempty"`
}

// QuestionReview 完成后的逐题回顾
type QuestionReview struct {
	QuestionID     string  `json:"questionId"`
	Text           string  `json:"text"`
	SelectedIndex  *int    `json:"selectedIndex,omitempty"`
	SelectedOption *string `json:"selectedOption,omitempty"`
	CorrectIndex   int     `json:"correctIndex"`
	CorrectOption  string  `json:"correctOption"`
	IsCorrect      bool    `json:"isCorrect"`
}
