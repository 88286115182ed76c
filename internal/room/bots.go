package room

import (
	"context"
	"time"

	"sudooom.daifugo/internal/game/bot"
	"sudooom.daifugo/internal/game/daifugo"
	"sudooom.daifugo/internal/task"
)

func botTaskID(roomID string) string     { return "bot:" + roomID }
func chatTaskID(roomID string) string    { return "chat:" + roomID }
func discardTaskID(roomID string) string { return "discard:" + roomID }

// afterChange 每次修改之后：机器人自动交牌、安排弃牌、安排下一步行动
func (s *Service) afterChange(r *Room) {
	s.autoGive(r)
	s.syncDiscard(r)
	s.scheduleBot(r)
}

// autoGive 机器人（含代管座位）按上局名次交出最弱的牌
func (s *Service) autoGive(r *Room) {
	t := r.table
	for _, p := range t.Players {
		g := t.PendingGive[p.ID]
		if g == nil || !g.Allowed || !p.IsBot {
			continue
		}
		if err := t.SubmitGive(p.ID, bot.ChooseGive(t.Hands[p.ID], g.Count)); err != nil {
			s.logger.Warn("Bot failed to submit give", "roomId", r.id, "playerId", p.ID, "error", err)
		}
	}
}

// syncDiscard 机器人出 10 之后延迟弃牌；弃牌机会消失时取消
func (s *Service) syncDiscard(r *Room) {
	t := r.table
	if ob := t.PendingDiscard; ob != nil && ob.Allowed {
		if p := t.Player(ob.PlayerID); p != nil && p.IsBot && len(t.Hands[p.ID]) > 0 {
			if r.discardFor == ob {
				return
			}
			err := s.scheduler.Schedule(task.NewTask(discardTaskID(r.id), r.id, task.KindBotDiscard, s.opts.BotDiscardDelay,
				func(ctx context.Context, roomID string) error {
					return s.botDiscard(ctx, roomID, ob)
				}))
			if err != nil {
				s.logger.Warn("Failed to schedule bot discard", "roomId", r.id, "playerId", p.ID, "error", err)
				return
			}
			r.discardFor = ob
			return
		}
	}
	if r.discardFor != nil {
		s.scheduler.Cancel(discardTaskID(r.id))
		r.discardFor = nil
	}
}

// scheduleBot 轮到机器人时发布 bot_thinking，思考结束后再行动
func (s *Service) scheduleBot(r *Room) {
	t := r.table
	cur := t.CurrentPlayer()
	if !t.Started || cur == nil || !cur.IsBot {
		s.cancelBot(r)
		return
	}
	if r.botFor == cur.ID && r.botRound == t.Round {
		return
	}

	botID, round, delay := cur.ID, t.Round, s.opts.BotThinkDelay
	err := s.scheduler.Schedule(task.NewTask(botTaskID(r.id), r.id, task.KindBotAct, delay,
		func(ctx context.Context, roomID string) error {
			return s.botAct(ctx, roomID, botID, round)
		}))
	if err != nil {
		s.logger.Warn("Failed to schedule bot action", "roomId", r.id, "playerId", botID, "error", err)
		return
	}
	r.botFor, r.botRound = botID, round
	t.Emit(daifugo.EventBotThinking, map[string]any{"player_id": botID, "delay": delay.Seconds()})

	// 思考中的台词在思考时间的 30% 处发出，至少 1 秒
	if chat := max(time.Second, delay*3/10); chat < delay {
		err := s.scheduler.Schedule(task.NewTask(chatTaskID(r.id), r.id, task.KindBotChat, chat,
			func(ctx context.Context, roomID string) error {
				return s.botPreThink(ctx, roomID, botID, round)
			}))
		if err != nil {
			s.logger.Warn("Failed to schedule bot chat", "roomId", r.id, "playerId", botID, "error", err)
		}
	}
}

// cancelBot 当前座位不再是机器人时取消已安排的行动
func (s *Service) cancelBot(r *Room) {
	if r.botFor == "" {
		return
	}
	s.scheduler.Cancel(botTaskID(r.id))
	s.scheduler.Cancel(chatTaskID(r.id))
	r.botFor = ""
}

// botTurn 校验机器人仍然是当前座位
func botTurn(t *daifugo.Table, botID string, round int) (*daifugo.Player, bool) {
	cur := t.CurrentPlayer()
	if !t.Started || t.Round != round || cur == nil || cur.ID != botID || !cur.IsBot {
		return nil, false
	}
	return cur, true
}

func (s *Service) botPreThink(ctx context.Context, roomID, botID string, round int) error {
	return s.mutate(ctx, roomID, func(r *Room) error {
		if p, ok := botTurn(r.table, botID, round); ok {
			s.botSay(r, p, s.chatter.PreThink(p.Tone))
		}
		return nil
	})
}

// botAct 思考结束后行动；座位已换人、已解除代管或已进入下一局时不做任何处理
func (s *Service) botAct(ctx context.Context, roomID, botID string, round int) error {
	return s.mutate(ctx, roomID, func(r *Room) error {
		if r.botFor == botID && r.botRound == round {
			r.botFor = ""
		}
		p, ok := botTurn(r.table, botID, round)
		if !ok {
			s.logger.Debug("Skip stale bot action", "roomId", roomID, "playerId", botID)
			return nil
		}
		s.playBot(r, p)
		return nil
	})
}

// playBot 机器人出牌，出牌被拒绝时改为 pass
func (s *Service) playBot(r *Room, p *daifugo.Player) {
	t := r.table
	d := bot.Decide(bot.Observe(t, p.ID))
	if !d.Pass {
		err := t.Play(p.ID, d.Cards, d.Target)
		if err == nil {
			s.botSay(r, p, s.chatter.PostPlay(p.Tone))
			return
		}
		s.logger.Warn("Bot play rejected, passing", "roomId", r.id, "playerId", p.ID, "error", err)
	}
	if err := t.Pass(p.ID); err != nil {
		s.logger.Warn("Bot pass rejected", "roomId", r.id, "playerId", p.ID, "error", err)
		return
	}
	s.botSay(r, p, s.chatter.PassLine(p.Tone))
}

// botDiscard 弃牌机会仍然属于该机器人时弃掉最弱的非 10 非王牌
func (s *Service) botDiscard(ctx context.Context, roomID string, ob *daifugo.Obligation) error {
	return s.mutate(ctx, roomID, func(r *Room) error {
		t := r.table
		if t.PendingDiscard != ob {
			return nil
		}
		r.discardFor = nil
		p := t.Player(ob.PlayerID)
		if p == nil || !p.IsBot {
			return nil
		}
		c, ok := bot.ChooseDiscard(t.Hands[p.ID])
		if !ok {
			return nil
		}
		return t.Discard(p.ID, c)
	})
}

// botSay 机器人台词，作为 bot_chat 事件发布并记入聊天
func (s *Service) botSay(r *Room, p *daifugo.Player, text string) {
	if text == "" {
		return
	}
	r.table.Emit(daifugo.EventBotChat, map[string]any{
		"player_id": p.ID,
		"name":      p.Label(),
		"text":      text,
	})
}
