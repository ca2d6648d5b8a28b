package service

import (
	"context"
	"sync"
	"time"
)

// TaskHandle 周期任务句柄，Stop 幂等
type TaskHandle interface {
	Stop()
}

// Scheduler 按固定间隔重复执行 fn，直到句柄被 Stop
type Scheduler interface {
	Every(interval time.Duration, fn func()) TaskHandle
}

// TickerScheduler 每个任务一个 goroutine + time.Ticker，通过 context 取消
type TickerScheduler struct{}

func NewTickerScheduler() *TickerScheduler {
	return &TickerScheduler{}
}

type tickerHandle struct {
	cancel context.CancelFunc
	once   sync.Once
}

func (h *tickerHandle) Stop() {
	h.once.Do(h.cancel)
}

func (s *TickerScheduler) Every(interval time.Duration, fn func()) TaskHandle {
	ctx, cancel := context.WithCancel(context.Background())
	h := &tickerHandle{cancel: cancel}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				// Stop 与 tick 同时就绪时以 Stop 为准
				if ctx.Err() != nil {
					return
				}
				fn()
			}
		}
	}()

	return h
}
