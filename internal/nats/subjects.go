package nats

// DefaultSubjectPrefix 默认 Subject 前缀
const DefaultSubjectPrefix = "daifugo"

// Subjects Subject 构建器
//
// 房间事件: {prefix}.room.{room_id}.events
// 联系通知: {prefix}.notify.contact
type Subjects struct {
	prefix string
}

// NewSubjects 创建 Subject 构建器，prefix 为空时使用默认前缀
func NewSubjects(prefix string) Subjects {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return Subjects{prefix: prefix}
}

// RoomEvents 房间事件 Subject
func (s Subjects) RoomEvents(roomID string) string {
	return s.prefix + ".room." + roomID + ".events"
}

// AllRoomEvents 订阅所有房间事件的通配 Subject
func (s Subjects) AllRoomEvents() string {
	return s.prefix + ".room.*.events"
}

// ContactNotify 联系通知 Subject
func (s Subjects) ContactNotify() string {
	return s.prefix + ".notify.contact"
}
