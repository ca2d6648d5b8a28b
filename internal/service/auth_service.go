package service

import (
	"context"
	"edureach_backend/internal/config"
	"edureach_backend/internal/model"
	"edureach_backend/internal/util"
	"edureach_backend/pkg/logger"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserRepo interface {
	FindByEmail(email string) (*model.User, error)
}

type AuthService struct {
	UserRepo UserRepo
	Sessions SessionStore
	Cfg      *config.Config
	now      func() time.Time
}

func NewAuthService(userRepo UserRepo, sessions SessionStore, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Sessions: sessions,
		Cfg:      cfg,
		now:      time.Now,
	}
}

type LoginResult struct {
	Token   string         `json:"token"`
	Session *model.Session `json:"session"`
}

// Login 校验密码后创建会话并签发携带会话 ID 的令牌
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.UserRepo.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}

	now := s.now()
	session := &model.Session{
		ID:        model.NewID(),
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(s.Cfg.JWT.ExpireTime),
	}
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	token, err := util.GenerateJWT(session, s.Cfg.JWT.Secret)
	if err != nil {
		return nil, err
	}

	logger.Log.Info("user logged in", zap.Uint("userId", user.ID), zap.String("role", string(user.Role)))
	return &LoginResult{Token: token, Session: session}, nil
}

// Authenticate 解析令牌并加载对应会话
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.Session, error) {
	claims, err := util.ParseJWT(token, s.Cfg.JWT.Secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrUnauthorized, err)
	}

	session, err := s.Sessions.Load(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != claims.UserID || session.Expired(s.now()) {
		return nil, fmt.Errorf("%w: session %s is no longer valid", util.ErrSessionNotFound, claims.SessionID)
	}
	return session, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.Sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	logger.Log.Info("user logged out", zap.String("sessionId", sessionID))
	return nil
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

type MenuItem struct {
	Title string `json:"title"`
	Path  string `json:"path"`
}

var studentMenu = []MenuItem{
	{Title: "Dashboard", Path: "/dashboard/student"},
	{Title: "Courses", Path: "/dashboard/student/courses"},
	{Title: "AI Tutor", Path: "/dashboard/student/ai-tutor"},
	{Title: "Offline Content", Path: "/dashboard/student/offline"},
	{Title: "Quizzes", Path: "/dashboard/student/quizzes"},
	{Title: "Progress", Path: "/dashboard/student/progress"},
}

var teacherMenu = []MenuItem{
	{Title: "Dashboard", Path: "/dashboard/teacher"},
	{Title: "Courses", Path: "/dashboard/teacher/courses"},
	{Title: "Students", Path: "/dashboard/teacher/students"},
	{Title: "Learning Hubs", Path: "/dashboard/teacher/hubs"},
	{Title: "Analytics", Path: "/dashboard/teacher/analytics"},
	{Title: "Content Manager", Path: "/dashboard/teacher/content"},
}

// MenuFor 角色决定侧边栏菜单
func MenuFor(role model.UserRole) []MenuItem {
	src := studentMenu
	if role == model.Teacher {
		src = teacherMenu
	}
	return append([]MenuItem(nil), src...)
}
