package task

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var (
	ErrSchedulerRunning    = errors.New("调度器已经在运行中")
	ErrSchedulerNotRunning = errors.New("调度器未运行")
	ErrInvalidTask         = errors.New("任务或任务ID不能为空")
)

// Scheduler 延迟任务调度器：时间轮 + 工作协程池
type Scheduler struct {
	wheel      *TimeWheel
	workerPool *WorkerPool
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	logger     *slog.Logger
	running    bool
	runningMu  sync.RWMutex
}

// NewScheduler 创建任务调度器
func NewScheduler(workerCount int, tick time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		wheel:      NewTimeWheel(tick, DefaultSlotCount),
		workerPool: NewWorkerPool(workerCount, DefaultTaskTimeout),
		ctx:        ctx,
		cancel:     cancel,
		logger:     slog.Default().With("component", "Scheduler"),
	}
}

// Start 启动调度器
func (s *Scheduler) Start() error {
	s.runningMu.Lock()
	if s.running {
		s.runningMu.Unlock()
		return ErrSchedulerRunning
	}
	s.running = true
	s.runningMu.Unlock()

	s.workerPool.Start()

	s.wg.Add(1)
	go s.tickLoop()

	s.logger.Info("任务调度器已启动", "tick", s.wheel.TickDuration())
	return nil
}

func (s *Scheduler) tickLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.wheel.TickDuration())
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if tasks := s.wheel.Tick(); len(tasks) > 0 {
				s.workerPool.Dispatch(tasks)
			}
		}
	}
}

// Stop 停止调度器，未到期的任务被丢弃
func (s *Scheduler) Stop() {
	s.runningMu.Lock()
	if !s.running {
		s.runningMu.Unlock()
		return
	}
	s.running = false
	s.runningMu.Unlock()

	s.cancel()
	s.wg.Wait()
	s.workerPool.Stop()

	s.logger.Info("任务调度器已停止")
}

// Schedule 添加延迟任务，同 ID 的未执行任务会被替换
func (s *Scheduler) Schedule(task *Task) error {
	s.runningMu.RLock()
	defer s.runningMu.RUnlock()

	if !s.running {
		return ErrSchedulerNotRunning
	}
	if task == nil || task.ID == "" {
		return ErrInvalidTask
	}

	s.logger.Debug("添加任务",
		"taskID", task.ID,
		"roomId", task.RoomID,
		"kind", task.Kind,
		"delay", task.Delay)

	s.wheel.AddTask(task)
	return nil
}

// Cancel 取消未执行的任务
func (s *Scheduler) Cancel(taskID string) bool {
	return s.wheel.RemoveTask(taskID)
}

// IsRunning 检查调度器是否运行中
func (s *Scheduler) IsRunning() bool {
	s.runningMu.RLock()
	defer s.runningMu.RUnlock()

	return s.running
}

// GetStats 获取调度器统计信息
func (s *Scheduler) GetStats() map[string]any {
	stats := s.workerPool.Stats()
	stats["running"] = s.IsRunning()
	stats["currentSlot"] = s.wheel.GetCurrentSlot()
	stats["totalTaskCount"] = s.wheel.GetTotalTaskCount()
	return stats
}
