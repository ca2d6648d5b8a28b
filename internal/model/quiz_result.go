package model

import "time"

// QuizResult 存储用户完成的测验结果
type QuizResult struct {
	BaseModel
	UserID      uint      `gorm:"index;not null" json:"userId"`
	QuizID      string    `gorm:"type:varchar(36);index;not null" json:"quizId"`
	Score       int       `gorm:"not null" json:"score"`
	Correct     int       `gorm:"not null" json:"correct"`
	Total       int       `gorm:"not null" json:"total"`
	CompletedAt time.Time `gorm:"index" json:"completedAt"`
}

func (QuizResult) TableName() string {
	return "quiz_results"
}
