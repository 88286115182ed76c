package room

import (
	"context"
	"strings"

	"sudooom.daifugo/internal/game/bot"
	"sudooom.daifugo/internal/game/daifugo"
)

// AddMessage 玩家发言，命中问答时可能有一个机器人回复
func (s *Service) AddMessage(ctx context.Context, roomID, playerID, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}

	var msg Message
	err := s.mutate(ctx, roomID, func(r *Room) error {
		if r.table.Player(playerID) == nil {
			return daifugo.ErrPlayerNotFound.WithContext("player_id", playerID)
		}
		now := s.now()
		msg = s.addMessage(r, playerID, text, now)

		var bots []bot.Responder
		for _, p := range r.table.Players {
			if p.IsOriginalBot() {
				bots = append(bots, bot.Responder{ID: p.ID, Difficulty: p.Difficulty})
			}
		}
		if who, answer, ok := s.chatter.AutoReply(text, bots, r.botLastReply, now); ok {
			r.botLastReply[who.ID] = now
			s.botSay(r, r.table.Player(who.ID), answer)
		}
		return nil
	})
	if err != nil {
		return Message{}, err
	}
	s.touchPresence(ctx, roomID, playerID)
	return msg, nil
}

// Messages 房间最近的消息
func (s *Service) Messages(ctx context.Context, roomID string) ([]Message, error) {
	var out []Message
	err := s.view(roomID, func(r *Room) error {
		out = append([]Message(nil), r.messages...)
		return nil
	})
	return out, err
}

// DrainEvents 取出并清空房间待拉取的事件
func (s *Service) DrainEvents(ctx context.Context, roomID string) ([]Event, error) {
	var out []Event
	err := s.view(roomID, func(r *Room) error {
		out = r.drainEvents()
		return nil
	})
	return out, err
}
