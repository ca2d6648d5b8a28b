package model

import "time"

// Session 当前登录用户的会话记录，登录时创建、每个请求加载、登出时删除
type Session struct {
	ID        string    `json:"id"`
	UserID    uint      `json:"userId"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

func (s *Session) IsTeacher() bool {
	return s.Role == Teacher
}
