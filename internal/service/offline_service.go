package service

import (
	"context"
	"edureach_backend/internal/config"
	"edureach_backend/internal/model"
	"edureach_backend/internal/util"
	"edureach_backend/pkg/logger"
	"edureach_backend/pkg/monitoring"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type OfflineCatalogRepo interface {
	FindAllContent() ([]model.OfflineContentItem, error)
	FindContentByID(id string) (*model.OfflineContentItem, error)
	FindOfflineLessons() ([]model.OfflineLesson, error)
	RecordDownload(download *model.OfflineDownload) error
}

// PackageStore 离线内容包的存取，由 StorageService 实现
type PackageStore interface {
	PackageURL(ctx context.Context, contentID string) (string, error)
	UploadPackage(ctx context.Context, contentID string, reader io.Reader, size int64) (string, error)
}

// ProgressPublisher 向用户的所有连接推送消息，由 ProgressHub 实现
type ProgressPublisher interface {
	PushToUser(userID uint, msg WSMessage)
}

// OfflineShelf 离线内容页：三个集合加存储占用
type OfflineShelf struct {
	Available   []model.OfflineContentView `json:"available"`
	Downloading []model.OfflineContentView `json:"downloading"`
	Downloaded  []model.OfflineContentView `json:"downloaded"`
	Storage     model.StorageUsage         `json:"storage"`
}

// OfflineService 每个用户一个模拟器，首次访问时从目录表初始化
type OfflineService struct {
	Repo      OfflineCatalogRepo
	Packages  PackageStore
	Publisher ProgressPublisher
	scheduler Scheduler

	mu      sync.Mutex
	opts    SimulatorOptions
	shelves map[uint]*OfflineSimulator
	closed  bool
}

func NewOfflineService(repo OfflineCatalogRepo, packages PackageStore, publisher ProgressPublisher, scheduler Scheduler, cfg config.OfflineConfig) *OfflineService {
	return &OfflineService{
		Repo:      repo,
		Packages:  packages,
		Publisher: publisher,
		scheduler: scheduler,
		opts: SimulatorOptions{
			TickInterval:   cfg.TickInterval,
			TickStep:       cfg.TickStep,
			TotalStorageMB: cfg.TotalStorageMB,
		}.withDefaults(),
		shelves: make(map[uint]*OfflineSimulator),
	}
}

// simulator 目录查询在锁外进行，插入前再检查一次，先到者的模拟器生效
func (s *OfflineService) simulator(userID uint) (*OfflineSimulator, error) {
	if sim, err := s.existing(userID); sim != nil || err != nil {
		return sim, err
	}

	items, err := s.Repo.FindAllContent()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("%w: offline service closed", util.ErrInvalidState)
	}
	if sim, ok := s.shelves[userID]; ok {
		return sim, nil
	}
	sim := NewOfflineSimulator(items, s.scheduler, s.opts)
	sim.SetUpdateCallback(func(e OfflineEvent) { s.publish(userID, e) })
	s.shelves[userID] = sim

	logger.Log.Debug("offline shelf initialized", zap.Uint("userId", userID), zap.Int("items", len(items)))
	return sim, nil
}

func (s *OfflineService) existing(userID uint) (*OfflineSimulator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("%w: offline service closed", util.ErrInvalidState)
	}
	return s.shelves[userID], nil
}

func (s *OfflineService) publish(userID uint, e OfflineEvent) {
	if e.Transition != "" {
		monitoring.OfflineTransitions.WithLabelValues(e.Transition).Inc()
	}
	if e.Transition == TransitionCompleted {
		s.recordDownload(userID, e.Item.ID)
	}
	if s.Publisher != nil {
		s.Publisher.PushToUser(userID, WSMessage{Type: e.Type, Data: e})
	}
}

// recordDownload 写入失败只记录日志，不影响下载状态
func (s *OfflineService) recordDownload(userID uint, contentID string) {
	err := s.Repo.RecordDownload(&model.OfflineDownload{
		UserID:      userID,
		ContentID:   contentID,
		CompletedAt: time.Now(),
	})
	if err != nil {
		logger.Log.Warn("failed to record offline download", zap.Uint("userId", userID), zap.String("contentId", contentID), zap.Error(err))
	}
}

func (s *OfflineService) Shelf(ctx context.Context, userID uint) (*OfflineShelf, error) {
	sim, err := s.simulator(userID)
	if err != nil {
		return nil, err
	}

	shelf := &OfflineShelf{
		Available:   sim.Available(),
		Downloading: sim.Downloading(),
		Downloaded:  sim.Downloaded(),
		Storage:     sim.StorageUsage(),
	}
	for i := range shelf.Downloaded {
		s.attachPackage(ctx, &shelf.Downloaded[i])
	}
	return shelf, nil
}

// attachPackage 获取包地址失败时只记录日志，条目仍按已下载展示
func (s *OfflineService) attachPackage(ctx context.Context, view *model.OfflineContentView) {
	if s.Packages == nil || view.State != model.ContentDownloaded {
		return
	}
	url, err := s.Packages.PackageURL(ctx, view.ID)
	if err != nil {
		logger.Log.Warn("failed to resolve offline package url", zap.String("contentId", view.ID), zap.Error(err))
		return
	}
	view.PackageURL = url
}

func (s *OfflineService) StartDownload(userID uint, contentID string) (model.OfflineContentView, error) {
	sim, err := s.simulator(userID)
	if err != nil {
		return model.OfflineContentView{}, err
	}
	return sim.StartDownload(contentID)
}

func (s *OfflineService) CancelDownload(userID uint, contentID string) (model.OfflineContentView, error) {
	sim, err := s.simulator(userID)
	if err != nil {
		return model.OfflineContentView{}, err
	}
	return sim.CancelDownload(contentID)
}

func (s *OfflineService) DeleteContent(userID uint, contentID string) (model.OfflineContentView, error) {
	sim, err := s.simulator(userID)
	if err != nil {
		return model.OfflineContentView{}, err
	}
	return sim.DeleteContent(contentID)
}

func (s *OfflineService) OfflineLessons() ([]model.OfflineLesson, error) {
	lessons, err := s.Repo.FindOfflineLessons()
	if err != nil {
		return nil, err
	}
	if lessons == nil {
		lessons = make([]model.OfflineLesson, 0)
	}
	return lessons, nil
}

// UploadPackage 教师为离线条目上传内容包
func (s *OfflineService) UploadPackage(ctx context.Context, contentID string, reader io.Reader, size int64) (string, error) {
	if _, err := s.Repo.FindContentByID(contentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: %s", util.ErrContentNotFound, contentID)
		}
		return "", err
	}
	url, err := s.Packages.UploadPackage(ctx, contentID, reader, size)
	if err != nil {
		return "", err
	}
	logger.Log.Info("offline package uploaded", zap.String("contentId", contentID), zap.Int64("size", size))
	return url, nil
}

// ApplyConfig 配置热更新，只影响之后开始的下载
func (s *OfflineService) ApplyConfig(cfg config.OfflineConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts = SimulatorOptions{
		TickInterval:   cfg.TickInterval,
		TickStep:       cfg.TickStep,
		TotalStorageMB: s.opts.TotalStorageMB,
	}.withDefaults()
	for _, sim := range s.shelves {
		sim.SetTickSettings(s.opts.TickInterval, s.opts.TickStep)
	}
	logger.Log.Info("offline tick settings reloaded",
		zap.Duration("interval", s.opts.TickInterval),
		zap.Int("step", s.opts.TickStep))
}

// Close 停止所有用户的模拟下载
func (s *OfflineService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for _, sim := range s.shelves {
		sim.Close()
	}
}
