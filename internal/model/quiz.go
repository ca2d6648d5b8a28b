package model

import (
	"fmt"
	"math"
)

// swagger:model Quiz
type Quiz struct {
	CatalogBase
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description string     `gorm:"size:500" json:"description"`
	Category    string     `gorm:"size:100;index" json:"category"`
	TimeLimit   int        `gorm:"not null;default:0" json:"timeLimit"` // 分钟
	Questions   []Question `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// swagger:model Question
type Question struct {
	CatalogBase
	QuizID        string      `gorm:"type:varchar(36);index;not null" json:"quizId"`
	Text          string      `gorm:"size:500;not null" json:"text"`
	Options       StringArray `gorm:"type:json;not null" json:"options"`
	CorrectAnswer int         `gorm:"not null" json:"-"`
	Position      int         `gorm:"not null;default:0" json:"position"`
}

func (Question) TableName() string {
	return "quiz_questions"
}

// IsCorrect 未作答（nil）永远不算正确
func (q *Question) IsCorrect(selected *int) bool {
	return selected != nil && *selected == q.CorrectAnswer
}

// Validate 校验测验结构：至少一道题，每题至少两个选项且正确答案下标有效
func (q *Quiz) Validate() error {
	if len(q.Questions) == 0 {
		return fmt.Errorf("quiz %s has no questions", q.ID)
	}
	seen := make(map[string]bool, len(q.Questions))
	for _, question := range q.Questions {
		if seen[question.ID] {
			return fmt.Errorf("quiz %s has duplicate question id %s", q.ID, question.ID)
		}
		seen[question.ID] = true
		if len(question.Options) < 2 {
			return fmt.Errorf("question %s needs at least two options", question.ID)
		}
		if question.CorrectAnswer < 0 || question.CorrectAnswer >= len(question.Options) {
			return fmt.Errorf("question %s has correct answer %d outside %d options",
				question.ID, question.CorrectAnswer, len(question.Options))
		}
	}
	return nil
}

// QuestionByID 返回题目下标，不存在时返回 -1
func (q *Quiz) QuestionByID(id string) int {
	for i := range q.Questions {
		if q.Questions[i].ID == id {
			return i
		}
	}
	return -1
}

// ScoreAnswers 统计完全匹配的题数并换算为四舍五入的百分制得分
func ScoreAnswers(quiz *Quiz, answers map[string]int) (correct int, score int) {
	total := len(quiz.Questions)
	if total == 0 {
		return 0, 0
	}
	for i := range quiz.Questions {
		question := &quiz.Questions[i]
		var selected *int
		if v, ok := answers[question.ID]; ok {
			selected = &v
		}
		if question.IsCorrect(selected) {
			correct++
		}
	}
	score = int(math.Round(float64(correct) / float64(total) * 100))
	return correct, score
}

// Feedback 成绩页的评语分档
func Feedback(score int) string {
	switch {
	case score >= 80:
		return "Excellent work!"
	case score >= 60:
		return "Good job! Keep practicing."
	default:
		return "You might need more practice."
	}
}
