package task

import "sync"

// entry 槽位中的任务，rounds 为还需要转过的整圈数
type entry struct {
	task   *Task
	rounds int
}

// Slot 时间轮槽位
type Slot struct {
	mu      sync.Mutex
	entries map[string]*entry // key: taskID
}

// NewSlot 创建新槽位
func NewSlot() *Slot {
	return &Slot{
		entries: make(map[string]*entry),
	}
}

// AddTask 添加任务到槽位
func (s *Slot) AddTask(task *Task, rounds int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[task.ID] = &entry{task: task, rounds: rounds}
}

// RemoveTask 从槽位删除任务
func (s *Slot) RemoveTask(taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[taskID]; exists {
		delete(s.entries, taskID)
		return true
	}
	return false
}

// Advance 取出到期的任务，其余任务的圈数减一
func (s *Slot) Advance() []*Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []*Task
	for id, e := range s.entries {
		if e.rounds > 0 {
			e.rounds--
			continue
		}
		due = append(due, e.task)
		delete(s.entries, id)
	}
	return due
}

// Count 获取槽位任务数量
func (s *Slot) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}
