package service

import (
	"edureach_backend/internal/model"
	"edureach_backend/internal/util"
	"edureach_backend/pkg/logger"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultTickInterval   = 500 * time.Millisecond
	DefaultTickStep       = 10
	DefaultTotalStorageMB = 100
)

// 推送给前端的事件类型
const (
	EventDownloadProgress = "DOWNLOAD_PROGRESS"
	EventDownloadState    = "DOWNLOAD_STATE"
)

// 状态迁移名称，同时用作监控标签
const (
	TransitionStarted   = "started"
	TransitionCompleted = "completed"
	TransitionCancelled = "cancelled"
	TransitionDeleted   = "deleted"
)

// OfflineEvent 单个条目的进度或状态变化，Seq 在同一模拟器内单调递增
type OfflineEvent struct {
	Seq        uint64                   `json:"seq"`
	Type       string                   `json:"type"`
	Transition string                   `json:"transition,omitempty"`
	Item       model.OfflineContentView `json:"item"`
}

type SimulatorOptions struct {
	TickInterval   time.Duration
	TickStep       int
	TotalStorageMB float64
}

func (o SimulatorOptions) withDefaults() SimulatorOptions {
	if o.TickInterval <= 0 {
		o.TickInterval = DefaultTickInterval
	}
	if o.TickStep <= 0 {
		o.TickStep = DefaultTickStep
	}
	if o.TotalStorageMB <= 0 {
		o.TotalStorageMB = DefaultTotalStorageMB
	}
	return o
}

type offlineEntry struct {
	item       model.OfflineContentItem
	state      model.ContentState
	progress   int
	handle     TaskHandle
	generation uint64
	seq        uint64 // 进入当前状态的顺序，用于列表排序
}

// OfflineSimulator 模拟离线内容下载：每个条目在 available / downloading / downloaded
// 三个集合中恰好属于一个，所有迁移都在同一把锁内完成。
type OfflineSimulator struct {
	mu        sync.Mutex
	entries   map[string]*offlineEntry
	scheduler Scheduler
	opts      SimulatorOptions
	seq       uint64
	eventSeq  uint64
	closed    bool
	onUpdate  func(OfflineEvent)

	// emitMu 保证事件按迁移顺序投递，晚于新事件到达的旧事件被丢弃
	emitMu    sync.Mutex
	delivered map[string]uint64
}

// NewOfflineSimulator 标记为 SeedDownloaded 的条目直接处于已下载
func NewOfflineSimulator(items []model.OfflineContentItem, scheduler Scheduler, opts SimulatorOptions) *OfflineSimulator {
	s := &OfflineSimulator{
		entries:   make(map[string]*offlineEntry, len(items)),
		delivered: make(map[string]uint64, len(items)),
		scheduler: scheduler,
		opts:      opts.withDefaults(),
	}
	for _, item := range items {
		if _, exists := s.entries[item.ID]; exists {
			continue
		}
		state := model.ContentAvailable
		if item.SeedDownloaded {
			state = model.ContentDownloaded
		}
		s.seq++
		s.entries[item.ID] = &offlineEntry{item: item, state: state, seq: s.seq}
	}
	return s
}

// SetUpdateCallback 每次进度或状态变化后调用，回调内不能再调用模拟器的迁移方法
func (s *OfflineSimulator) SetUpdateCallback(callback func(OfflineEvent)) {
	s.mu.Lock()
	s.onUpdate = callback
	s.mu.Unlock()
}

// SetTickSettings 仅影响之后开始的下载
func (s *OfflineSimulator) SetTickSettings(interval time.Duration, step int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts = SimulatorOptions{
		TickInterval:   interval,
		TickStep:       step,
		TotalStorageMB: s.opts.TotalStorageMB,
	}.withDefaults()
}

// StartDownload 仅 available 条目可开始下载，进度从 0 开始
func (s *OfflineSimulator) StartDownload(id string) (model.OfflineContentView, error) {
	s.mu.Lock()
	e, err := s.lookup(id)
	if err != nil {
		s.mu.Unlock()
		return model.OfflineContentView{}, err
	}
	if s.closed {
		s.mu.Unlock()
		return model.OfflineContentView{}, fmt.Errorf("%w: simulator closed", util.ErrInvalidState)
	}
	if e.state != model.ContentAvailable {
		s.mu.Unlock()
		return model.OfflineContentView{}, fmt.Errorf("%w: cannot download %s while %s", util.ErrInvalidState, id, e.state)
	}

	e.generation++
	gen := e.generation
	e.progress = 0
	s.moveLocked(e, model.ContentDownloading)
	e.handle = s.scheduler.Every(s.opts.TickInterval, func() { s.tick(id, gen) })

	view := e.view()
	event, cb := s.eventLocked(OfflineEvent{Type: EventDownloadState, Transition: TransitionStarted, Item: view})
	s.mu.Unlock()

	logger.Log.Debug("offline download started", zap.String("contentId", id))
	s.emit(cb, event)
	return view, nil
}

// CancelDownload 同步停止任务，条目回到 available 且不保留进度
func (s *OfflineSimulator) CancelDownload(id string) (model.OfflineContentView, error) {
	s.mu.Lock()
	e, err := s.lookup(id)
	if err != nil {
		s.mu.Unlock()
		return model.OfflineContentView{}, err
	}
	if e.state != model.ContentDownloading {
		s.mu.Unlock()
		return model.OfflineContentView{}, fmt.Errorf("%w: cannot cancel %s while %s", util.ErrInvalidState, id, e.state)
	}

	s.stopLocked(e)
	e.progress = 0
	s.moveLocked(e, model.ContentAvailable)

	view := e.view()
	event, cb := s.eventLocked(OfflineEvent{Type: EventDownloadState, Transition: TransitionCancelled, Item: view})
	s.mu.Unlock()

	logger.Log.Debug("offline download cancelled", zap.String("contentId", id))
	s.emit(cb, event)
	return view, nil
}

// DeleteContent 删除已下载条目，回到 available
func (s *OfflineSimulator) DeleteContent(id string) (model.OfflineContentView, error) {
	s.mu.Lock()
	e, err := s.lookup(id)
	if err != nil {
		s.mu.Unlock()
		return model.OfflineContentView{}, err
	}
	if e.state != model.ContentDownloaded {
		s.mu.Unlock()
		return model.OfflineContentView{}, fmt.Errorf("%w: cannot delete %s while %s", util.ErrInvalidState, id, e.state)
	}

	e.progress = 0
	s.moveLocked(e, model.ContentAvailable)

	view := e.view()
	event, cb := s.eventLocked(OfflineEvent{Type: EventDownloadState, Transition: TransitionDeleted, Item: view})
	s.mu.Unlock()

	logger.Log.Debug("offline content deleted", zap.String("contentId", id))
	s.emit(cb, event)
	return view, nil
}

func (s *OfflineSimulator) tick(id string, gen uint64) {
	event, cb, ok := s.step(id, gen)
	if !ok {
		return
	}
	if event.Transition == TransitionCompleted {
		logger.Log.Debug("offline download completed", zap.String("contentId", id))
	}
	s.emit(cb, event)
}

// step 只处理与自身 generation 一致且仍在下载中的条目，过期的 tick 直接忽略
func (s *OfflineSimulator) step(id string, gen uint64) (OfflineEvent, func(OfflineEvent), bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok || e.generation != gen || e.state != model.ContentDownloading {
		return OfflineEvent{}, nil, false
	}

	e.progress += s.opts.TickStep
	event := OfflineEvent{Type: EventDownloadProgress}
	if e.progress >= 100 {
		e.progress = 100
		s.stopLocked(e)
		s.moveLocked(e, model.ContentDownloaded)
		event = OfflineEvent{Type: EventDownloadState, Transition: TransitionCompleted}
	}
	event.Item = e.view()
	event, cb := s.eventLocked(event)
	return event, cb, true
}

// Get 单个条目的当前视图
func (s *OfflineSimulator) Get(id string) (model.OfflineContentView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.lookup(id)
	if err != nil {
		return model.OfflineContentView{}, err
	}
	return e.view(), nil
}

func (s *OfflineSimulator) Available() []model.OfflineContentView {
	return s.list(model.ContentAvailable)
}

func (s *OfflineSimulator) Downloading() []model.OfflineContentView {
	return s.list(model.ContentDownloading)
}

func (s *OfflineSimulator) Downloaded() []model.OfflineContentView {
	return s.list(model.ContentDownloaded)
}

// StorageUsage 按已下载条目声明的大小累计占用
func (s *OfflineSimulator) StorageUsage() model.StorageUsage {
	s.mu.Lock()
	defer s.mu.Unlock()

	var used float64
	for _, e := range s.entries {
		if e.state != model.ContentDownloaded {
			continue
		}
		mb, err := util.ParseSizeMB(e.item.Size)
		if err != nil {
			logger.Log.Debug("skip unparsable size label", zap.String("contentId", e.item.ID), zap.Error(err))
			continue
		}
		used += mb
	}

	total := s.opts.TotalStorageMB
	return model.StorageUsage{
		UsedMB:  round2(used),
		TotalMB: total,
		Percent: round2(used / total * 100),
	}
}

// Close 停止所有进行中的模拟任务
func (s *OfflineSimulator) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for _, e := range s.entries {
		s.stopLocked(e)
	}
}

func (s *OfflineSimulator) list(state model.ContentState) []model.OfflineContentView {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]*offlineEntry, 0)
	for _, e := range s.entries {
		if e.state == state {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	views := make([]model.OfflineContentView, len(entries))
	for i, e := range entries {
		views[i] = e.view()
	}
	return views
}

func (s *OfflineSimulator) lookup(id string) (*offlineEntry, error) {
	e, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", util.ErrContentNotFound, id)
	}
	return e, nil
}

func (s *OfflineSimulator) moveLocked(e *offlineEntry, state model.ContentState) {
	s.seq++
	e.state = state
	e.seq = s.seq
}

func (s *OfflineSimulator) stopLocked(e *offlineEntry) {
	if e.handle != nil {
		e.handle.Stop()
		e.handle = nil
	}
}

func (e *offlineEntry) view() model.OfflineContentView {
	v := model.OfflineContentView{
		ID:     e.item.ID,
		Title:  e.item.Title,
		Type:   e.item.Type,
		Icon:   e.item.Type.IconHint(),
		Course: e.item.Course,
		Size:   e.item.Size,
		State:  e.state,
	}
	if e.state == model.ContentDownloading {
		p := e.progress
		v.Progress = &p
	}
	return v
}

// eventLocked 在持有 s.mu 时为事件编号
func (s *OfflineSimulator) eventLocked(event OfflineEvent) (OfflineEvent, func(OfflineEvent)) {
	s.eventSeq++
	event.Seq = s.eventSeq
	return event, s.onUpdate
}

// emit 按编号顺序投递：同一条目已投递过更新的事件时丢弃旧事件
func (s *OfflineSimulator) emit(cb func(OfflineEvent), event OfflineEvent) {
	if cb == nil {
		return
	}
	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	if event.Seq <= s.delivered[event.Item.ID] {
		return
	}
	s.delivered[event.Item.ID] = event.Seq
	cb(event)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
