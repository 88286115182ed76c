package daifugo

import (
	"sudooom.daifugo/internal/game/card"
)

// EventType 房间事件类型
type EventType string

const (
	EventRevolution           EventType = "revolution"
	EventDirection            EventType = "direction"
	EventCardPlayed           EventType = "card_played"
	EventCardDiscarded        EventType = "card_discarded"
	EventMassDiscard          EventType = "mass_discard"
	EventHandsShuffled        EventType = "hands_shuffled"
	EventCardsSwapped         EventType = "cards_swapped"
	EventCardTaken            EventType = "card_taken"
	EventCardGiven            EventType = "card_given"
	EventGiveSubmitted        EventType = "give_submitted"
	EventPlayerFinished       EventType = "player_finished"
	EventPlayerTakenOver      EventType = "player_taken_over"
	EventPlayerReleased       EventType = "player_released"
	EventInstantGradeRotation EventType = "instant_grade_rotation"
	EventGameFinished         EventType = "game_finished"
	EventBotThinking          EventType = "bot_thinking"
	EventBotChat              EventType = "bot_chat"
	EventAutoTransfer         EventType = "auto_transfer"
	EventBotSlotJoined        EventType = "bot_slot_joined"
	EventRoomEvicted          EventType = "room_evicted"
)

// Event 房间事件
type Event struct {
	Type    EventType      `json:"type"`
	Payload map[string]any `json:"payload"`
}

// RecordKind 持久化记录类型
type RecordKind int

const (
	RecordPlay RecordKind = iota
	RecordPlayerFinished
	RecordRoundFinished
	RecordGradeRotation
)

// Record 需要交给持久化协作方的记录
type Record struct {
	Kind     RecordKind
	PlayerID string
	Card     card.Card
	Rank     int
	Results  []Result
}

// outbox 操作过程中累积的事件与记录，由房间在释放锁前取出
type outbox struct {
	events  []Event
	records []Record
}

func (o *outbox) emit(typ EventType, payload map[string]any) {
	o.events = append(o.events, Event{Type: typ, Payload: payload})
}

func (o *outbox) record(r Record) {
	o.records = append(o.records, r)
}

// Emit 追加一个外部事件（机器人台词、代管等）
func (t *Table) Emit(typ EventType, payload map[string]any) {
	t.out.emit(typ, payload)
}

// Drain 取出并清空累积的事件与记录
func (t *Table) Drain() ([]Event, []Record) {
	events, records := t.out.events, t.out.records
	t.out = outbox{}
	return events, records
}
