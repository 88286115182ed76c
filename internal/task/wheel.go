package task

import (
	"sync"
	"time"
)

// 时间轮默认参数：100ms 一格，600 格转一圈（60 秒）
const (
	DefaultTick      = 100 * time.Millisecond
	DefaultSlotCount = 600
)

// TimeWheel 时间轮
//
// 超过一圈的延迟通过圈数处理；index 记录任务所在槽位，删除时不需要知道延迟。
type TimeWheel struct {
	tick  time.Duration
	slots []*Slot

	mu          sync.Mutex
	currentSlot int
	index       map[string]int
}

// NewTimeWheel 创建时间轮
func NewTimeWheel(tick time.Duration, slotCount int) *TimeWheel {
	if tick <= 0 {
		tick = DefaultTick
	}
	if slotCount <= 0 {
		slotCount = DefaultSlotCount
	}
	tw := &TimeWheel{
		tick:  tick,
		slots: make([]*Slot, slotCount),
		index: make(map[string]int),
	}
	for i := range tw.slots {
		tw.slots[i] = NewSlot()
	}
	return tw
}

// AddTask 添加任务，同 ID 的旧任务会被替换
func (tw *TimeWheel) AddTask(task *Task) {
	ticks := int((task.Delay + tw.tick - 1) / tw.tick)
	if ticks < 1 {
		ticks = 1
	}
	n := len(tw.slots)

	tw.mu.Lock()
	defer tw.mu.Unlock()

	if old, ok := tw.index[task.ID]; ok {
		tw.slots[old].RemoveTask(task.ID)
	}
	target := (tw.currentSlot + ticks) % n
	tw.slots[target].AddTask(task, (ticks-1)/n)
	tw.index[task.ID] = target
}

// RemoveTask 从时间轮删除任务
func (tw *TimeWheel) RemoveTask(taskID string) bool {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	slot, ok := tw.index[taskID]
	if !ok {
		return false
	}
	delete(tw.index, taskID)
	return tw.slots[slot].RemoveTask(taskID)
}

// Tick 推进一格，返回到期的任务
func (tw *TimeWheel) Tick() []*Task {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	tw.currentSlot = (tw.currentSlot + 1) % len(tw.slots)
	due := tw.slots[tw.currentSlot].Advance()
	for _, t := range due {
		delete(tw.index, t.ID)
	}
	return due
}

// TickDuration 每格时长
func (tw *TimeWheel) TickDuration() time.Duration {
	return tw.tick
}

// GetCurrentSlot 获取当前槽位索引
func (tw *TimeWheel) GetCurrentSlot() int {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	return tw.currentSlot
}

// GetTotalTaskCount 获取所有槽位的任务总数
func (tw *TimeWheel) GetTotalTaskCount() int {
	total := 0
	for _, s := range tw.slots {
		total += s.Count()
	}
	return total
}
