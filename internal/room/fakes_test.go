package room

import (
	"context"
	"math/rand"
	"slices"
	"sync"
	"testing"
	"time"

	"sudooom.daifugo/internal/game/bot"
	"sudooom.daifugo/internal/game/card"
	"sudooom.daifugo/internal/game/daifugo"
	"sudooom.daifugo/internal/task"
)

// fakeScheduler 只记录任务，由测试手动执行
type fakeScheduler struct {
	mu    sync.Mutex
	tasks map[string]*task.Task
}

func (f *fakeScheduler) Schedule(t *task.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[t.ID] = t
	return nil
}

func (f *fakeScheduler) Cancel(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.tasks[id]
	delete(f.tasks, id)
	return ok
}

func (f *fakeScheduler) get(id string) *task.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tasks[id]
}

// run 取出并执行任务
func (f *fakeScheduler) run(t *testing.T, id string) {
	t.Helper()
	f.mu.Lock()
	tk := f.tasks[id]
	delete(f.tasks, id)
	f.mu.Unlock()
	if tk == nil {
		t.Fatalf("任务 %s 不存在", id)
	}
	if err := tk.Execute(context.Background()); err != nil {
		t.Fatalf("任务 %s 执行失败: %v", id, err)
	}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []Event
}

func (f *fakePublisher) Publish(_ context.Context, ev Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

func (f *fakePublisher) ofType(typ daifugo.EventType) []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Event
	for _, ev := range f.events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

type fakeRecorder struct {
	mu       sync.Mutex
	calls    map[string]int
	players  []daifugo.Player
	messages []string
}

func (f *fakeRecorder) inc(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeRecorder) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeRecorder) CreateGame(context.Context, string) error {
	f.inc("CreateGame")
	return nil
}

func (f *fakeRecorder) RegisterPlayers(_ context.Context, _ string, players []daifugo.Player) error {
	f.inc("RegisterPlayers")
	f.mu.Lock()
	f.players = players
	f.mu.Unlock()
	return nil
}

func (f *fakeRecorder) RecordPlay(context.Context, string, string, card.Card) error {
	f.inc("RecordPlay")
	return nil
}

func (f *fakeRecorder) RecordPlayerFinished(context.Context, string, string, int) error {
	f.inc("RecordPlayerFinished")
	return nil
}

func (f *fakeRecorder) RecordRoundFinished(context.Context, string, []daifugo.Result) error {
	f.inc("RecordRoundFinished")
	return nil
}

func (f *fakeRecorder) RecordRoundResultsWithScoring(context.Context, string, []daifugo.Result) error {
	f.inc("RecordRoundResultsWithScoring")
	return nil
}

func (f *fakeRecorder) RecordGradeRotation(context.Context, string, string, []daifugo.Result) error {
	f.inc("RecordGradeRotation")
	return nil
}

func (f *fakeRecorder) AddMessage(_ context.Context, _, _, _, text string, _ time.Time) error {
	f.inc("AddMessage")
	f.mu.Lock()
	f.messages = append(f.messages, text)
	f.mu.Unlock()
	return nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	notices []ContactNotice
}

func (f *fakeNotifier) NotifyContact(_ context.Context, n ContactNotice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, n)
	return nil
}

type fakePresence struct {
	mu      sync.Mutex
	touched map[string]time.Time
}

func (f *fakePresence) Touch(_ context.Context, roomID, playerID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched[roomID+"/"+playerID] = at
	return nil
}

func (f *fakePresence) seen(roomID, playerID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.touched[roomID+"/"+playerID]
	return ok
}

type harness struct {
	svc      *Service
	sched    *fakeScheduler
	pub      *fakePublisher
	rec      *fakeRecorder
	notifier *fakeNotifier
	presence *fakePresence
	now      time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		sched:    &fakeScheduler{tasks: make(map[string]*task.Task)},
		pub:      &fakePublisher{},
		rec:      &fakeRecorder{calls: make(map[string]int)},
		notifier: &fakeNotifier{},
		presence: &fakePresence{touched: make(map[string]time.Time)},
		now:      time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	m := NewManager(0, time.Hour, 0)
	m.now = func() time.Time { return h.now }
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })

	h.svc = NewService(m, h.sched, bot.NewChatter(nil, rand.New(rand.NewSource(1))), nil, Deps{
		Publisher: h.pub,
		Recorder:  h.rec,
		Notifier:  h.notifier,
		Presence:  h.presence,
	}, Options{})
	h.svc.newDealer = func() *card.Dealer {
		return card.NewDealer(rand.New(rand.NewSource(42)))
	}
	h.svc.now = func() time.Time { return h.now }
	return h
}

// started 创建房间并开局：创建者在 0 号座位，其余 4 个座位为机器人
func (h *harness) started(t *testing.T) (roomID, playerID string) {
	t.Helper()
	roomID, playerID, err := h.svc.CreateRoom(context.Background(), PlayerParams{Name: "alice", ContactEmail: "alice@example.com"})
	if err != nil {
		t.Fatalf("创建房间失败: %v", err)
	}
	if err := h.svc.StartGame(context.Background(), roomID); err != nil {
		t.Fatalf("开局失败: %v", err)
	}
	return roomID, playerID
}

// with 持锁直接操作牌桌
func (h *harness) with(t *testing.T, roomID string, fn func(r *Room)) {
	t.Helper()
	r, ok := h.svc.manager.Get(roomID)
	if !ok {
		t.Fatalf("房间 %s 不存在", roomID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r)
}

func (h *harness) state(t *testing.T, roomID, playerID string) *StateView {
	t.Helper()
	v, err := h.svc.GetRoomState(context.Background(), roomID, playerID)
	if err != nil {
		t.Fatalf("获取房间状态失败: %v", err)
	}
	return v
}

func hasMessage(v *StateView, text string) bool {
	return slices.ContainsFunc(v.Messages, func(m Message) bool { return m.Text == text })
}
