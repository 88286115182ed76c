package task

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultTaskTimeout 单个任务的最长执行时间
const DefaultTaskTimeout = 5 * time.Second

// WorkerPool 执行到期的房间任务
type WorkerPool struct {
	workerCount int
	timeout     time.Duration
	queue       chan *Task
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	logger      *slog.Logger

	executed  atomic.Int64
	failed    atomic.Int64
	recovered atomic.Int64
	dropped   atomic.Int64
}

// NewWorkerPool 创建工作协程池，timeout <= 0 时使用 DefaultTaskTimeout
func NewWorkerPool(workerCount int, timeout time.Duration) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 4
	}
	if timeout <= 0 {
		timeout = DefaultTaskTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		workerCount: workerCount,
		timeout:     timeout,
		queue:       make(chan *Task, workerCount*8),
		ctx:         ctx,
		cancel:      cancel,
		logger:      slog.Default().With("component", "WorkerPool"),
	}
}

// Start 启动工作协程
func (wp *WorkerPool) Start() {
	wp.wg.Add(wp.workerCount)
	for i := range wp.workerCount {
		go wp.loop(i)
	}
	wp.logger.Info("工作协程池已启动", "workerCount", wp.workerCount, "timeout", wp.timeout)
}

func (wp *WorkerPool) loop(id int) {
	defer wp.wg.Done()
	for {
		select {
		case <-wp.ctx.Done():
			return
		case t := <-wp.queue:
			wp.run(id, t)
		}
	}
}

// run 在独立的超时上下文中执行任务，错误与 panic 只计数和记录日志
func (wp *WorkerPool) run(workerID int, t *Task) {
	log := wp.logger.With("workerID", workerID, "taskID", t.ID, "roomId", t.RoomID, "kind", t.Kind)

	ctx, cancel := context.WithTimeout(wp.ctx, wp.timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			wp.recovered.Add(1)
			log.Error("任务执行 panic", "panic", r)
		}
	}()

	start := time.Now()
	err := t.Execute(ctx)
	wp.executed.Add(1)
	if err != nil {
		wp.failed.Add(1)
		log.Warn("任务执行失败", "error", err, "elapsed", time.Since(start))
		return
	}
	log.Debug("任务执行成功", "elapsed", time.Since(start), "waited", start.Sub(t.CreatedAt))
}

// Dispatch 把到期任务交给工作协程；队列满时等待，工作池关闭后剩余任务被丢弃
func (wp *WorkerPool) Dispatch(tasks []*Task) {
	for i, t := range tasks {
		if t == nil {
			continue
		}
		select {
		case wp.queue <- t:
			continue
		default:
		}

		wp.logger.Warn("任务队列已满，等待空闲工作协程", "taskID", t.ID, "roomId", t.RoomID, "pending", len(tasks)-i)
		select {
		case wp.queue <- t:
		case <-wp.ctx.Done():
			n := int64(len(tasks) - i)
			wp.dropped.Add(n)
			wp.logger.Warn("工作池已关闭，丢弃任务", "count", n)
			return
		}
	}
}

// Stats 执行统计
func (wp *WorkerPool) Stats() map[string]any {
	return map[string]any{
		"workerCount": wp.workerCount,
		"queued":      len(wp.queue),
		"executed":    wp.executed.Load(),
		"failed":      wp.failed.Load(),
		"recovered":   wp.recovered.Load(),
		"dropped":     wp.dropped.Load(),
	}
}

// Stop 停止工作协程，正在执行的任务的上下文会被取消
func (wp *WorkerPool) Stop() {
	wp.cancel()
	wp.wg.Wait()
	wp.logger.Info("工作协程池已停止", "executed", wp.executed.Load(), "failed", wp.failed.Load())
}
