package model

import "time"

const (
	TutorRoleUser      = "user"
	TutorRoleAssistant = "assistant"
)

// TutorMessage AI 助教对话中的一条消息
type TutorMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
