package room

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sudooom.daifugo/internal/game/daifugo"
)

// PlayerParams 入座参数
type PlayerParams struct {
	Name         string
	ContactEmail string
	ContactPhone string
}

// BotParams 添加机器人的参数，空值使用默认设置
type BotParams struct {
	DisplayName string
	Tone        string
	Difficulty  string
}

// BotUpdate 修改机器人的参数，nil 表示不修改
type BotUpdate struct {
	DisplayName *string
	Tone        *string
	Difficulty  *string
}

// BotView 推荐房间中的机器人
type BotView struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	DisplayName string             `json:"display_name"`
	Tone        daifugo.Tone       `json:"tone"`
	Difficulty  daifugo.Difficulty `json:"difficulty"`
}

// RecommendedRoom 有机器人座位可以接替的房间
type RecommendedRoom struct {
	RoomID      string    `json:"room_id"`
	Bots        []BotView `json:"bots"`
	PlayerCount int       `json:"player_count"`
}

const maxRoomIDAttempts = 3

func newHuman(p PlayerParams) (*daifugo.Player, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, ErrInvalidName
	}
	h := daifugo.NewHuman(newPlayerID(), daifugo.TruncateDisplayName(name))
	h.ContactEmail = strings.TrimSpace(p.ContactEmail)
	h.ContactPhone = strings.TrimSpace(p.ContactPhone)
	return h, nil
}

// CreateRoom 创建房间，创建者入座
func (s *Service) CreateRoom(ctx context.Context, p PlayerParams) (roomID, playerID string, err error) {
	human, err := newHuman(p)
	if err != nil {
		return "", "", err
	}

	for range maxRoomIDAttempts {
		roomID = newRoomID()
		table := daifugo.NewTable(roomID, s.newDealer())
		table.SetClock(s.now)
		table.AddPlayer(human)

		err = s.manager.Add(NewRoom(roomID, table, s.now()))
		if !errors.Is(err, ErrRoomExists) {
			break
		}
	}
	if err != nil {
		return "", "", err
	}

	err = s.mutate(ctx, roomID, func(r *Room) error {
		r.pending.persist = append(r.pending.persist, func(ctx context.Context, rec Recorder) error {
			return rec.CreateGame(ctx, roomID)
		})
		return nil
	})
	if err != nil {
		return "", "", err
	}

	s.logger.Info("Room created", "roomId", roomID, "playerId", human.ID)
	return roomID, human.ID, nil
}

// JoinRoom 真人入座，牌局进行中不能加入
func (s *Service) JoinRoom(ctx context.Context, roomID string, p PlayerParams) (string, error) {
	human, err := newHuman(p)
	if err != nil {
		return "", err
	}
	err = s.mutate(ctx, roomID, func(r *Room) error {
		if r.table.Started {
			return daifugo.ErrGameAlreadyStarted
		}
		r.table.AddPlayer(human)
		return nil
	})
	if err != nil {
		return "", err
	}
	s.logger.Info("Player joined", "roomId", roomID, "playerId", human.ID)
	return human.ID, nil
}

// AddBot 牌局开始前添加机器人
func (s *Service) AddBot(ctx context.Context, roomID string, p BotParams) (daifugo.Player, error) {
	var tone daifugo.Tone
	var difficulty daifugo.Difficulty
	var err error
	if p.Tone != "" {
		if tone, err = daifugo.ParseTone(p.Tone); err != nil {
			return daifugo.Player{}, err
		}
	}
	if p.Difficulty != "" {
		if difficulty, err = daifugo.ParseDifficulty(p.Difficulty); err != nil {
			return daifugo.Player{}, err
		}
	}

	var added daifugo.Player
	err = s.mutate(ctx, roomID, func(r *Room) error {
		t := r.table
		if t.Started {
			return daifugo.ErrGameAlreadyStarted
		}
		display := strings.TrimSpace(p.DisplayName)
		if display == "" {
			display = s.chatter.DisplayName(usedDisplayNames(t))
		}
		b := daifugo.NewBot(newPlayerID(), nextBotName(t), display, tone, difficulty)
		t.AddPlayer(b)
		added = *b
		return nil
	})
	return added, err
}

// UpdateBot 修改机器人的显示名、性格和难度
func (s *Service) UpdateBot(ctx context.Context, roomID, botID string, u BotUpdate) (daifugo.Player, error) {
	var updated daifugo.Player
	err := s.mutate(ctx, roomID, func(r *Room) error {
		b := r.table.Player(botID)
		if b == nil || !b.IsOriginalBot() {
			return daifugo.ErrBotNotFound.WithContext("bot_id", botID)
		}

		next := *b
		if u.DisplayName != nil {
			if name := strings.TrimSpace(*u.DisplayName); name != "" {
				next.DisplayName = daifugo.TruncateDisplayName(name)
			}
		}
		if u.Tone != nil {
			tone, err := daifugo.ParseTone(*u.Tone)
			if err != nil {
				return err
			}
			next.Tone = tone
		}
		if u.Difficulty != nil {
			d, err := daifugo.ParseDifficulty(*u.Difficulty)
			if err != nil {
				return err
			}
			next.Difficulty = d
		}
		*b = next
		updated = next
		return nil
	})
	return updated, err
}

// RemoveBot 牌局开始前移除机器人
func (s *Service) RemoveBot(ctx context.Context, roomID, botID string) error {
	return s.mutate(ctx, roomID, func(r *Room) error {
		return r.table.RemoveBot(botID)
	})
}

// JoinBotSlot 真人接替机器人座位，继承手牌与名次
func (s *Service) JoinBotSlot(ctx context.Context, roomID, botID string, p PlayerParams) (string, error) {
	human, err := newHuman(p)
	if err != nil {
		return "", err
	}
	err = s.mutate(ctx, roomID, func(r *Room) error {
		b := r.table.Player(botID)
		if b == nil || !b.IsOriginalBot() {
			return daifugo.ErrBotNotFound.WithContext("bot_id", botID)
		}
		return r.table.ReplaceBot(botID, human)
	})
	if err != nil {
		return "", err
	}
	s.logger.Info("Player joined bot slot", "roomId", roomID, "botId", botID, "playerId", human.ID)
	s.touchPresence(ctx, roomID, human.ID)
	return human.ID, nil
}

// RoomsWithBotSlots 有机器人座位的房间，用于推荐
func (s *Service) RoomsWithBotSlots(ctx context.Context) []RecommendedRoom {
	var out []RecommendedRoom
	for _, r := range s.manager.Rooms() {
		r.mu.Lock()
		rec := RecommendedRoom{RoomID: r.id, PlayerCount: len(r.table.Players)}
		for _, p := range r.table.Players {
			if p.IsOriginalBot() {
				rec.Bots = append(rec.Bots, BotView{
					ID:          p.ID,
					Name:        p.Name,
					DisplayName: p.DisplayName,
					Tone:        p.Tone,
					Difficulty:  p.Difficulty,
				})
			}
		}
		r.mu.Unlock()

		if len(rec.Bots) > 0 {
			out = append(out, rec)
		}
	}
	return out
}

// StartGame 补齐机器人并开始第一局
func (s *Service) StartGame(ctx context.Context, roomID string) error {
	err := s.mutate(ctx, roomID, func(r *Room) error {
		t := r.table
		if t.Started {
			return daifugo.ErrGameAlreadyStarted
		}
		s.fillBots(t)
		if err := t.StartRound(); err != nil {
			return err
		}
		s.registerPlayers(r)
		return nil
	})
	if err == nil {
		s.logger.Info("Game started", "roomId", roomID)
	}
	return err
}

// NextRound 上一局结算后开始下一局
func (s *Service) NextRound(ctx context.Context, roomID string) error {
	return s.mutate(ctx, roomID, func(r *Room) error {
		t := r.table
		if t.Started {
			return daifugo.ErrRoundNotOver
		}
		if !t.GameOver {
			return daifugo.ErrGameNotStarted
		}
		s.fillBots(t)
		if err := t.NextRound(); err != nil {
			return err
		}
		s.registerPlayers(r)
		return nil
	})
}

// GetRules 房间规则
func (s *Service) GetRules(ctx context.Context, roomID string) (map[string]bool, error) {
	var rules map[string]bool
	err := s.view(roomID, func(r *Room) error {
		rules = r.table.Rules.Map()
		return nil
	})
	return rules, err
}

// PatchRules 修改房间规则，只能在开局前或两局之间修改
func (s *Service) PatchRules(ctx context.Context, roomID string, updates map[string]any) (map[string]bool, error) {
	var rules map[string]bool
	err := s.mutate(ctx, roomID, func(r *Room) error {
		t := r.table
		if t.Started {
			return daifugo.ErrGameAlreadyStarted
		}
		next, err := t.Rules.Patch(updates)
		if err != nil {
			return err
		}
		t.SetRules(next)
		rules = next.Map()
		return nil
	})
	return rules, err
}

// fillBots 座位不足时补齐机器人
func (s *Service) fillBots(t *daifugo.Table) {
	used := usedDisplayNames(t)
	for len(t.Players) < s.opts.MinPlayers {
		display := s.chatter.DisplayName(used)
		used[display] = true
		t.AddPlayer(daifugo.NewBot(newPlayerID(), nextBotName(t), display, daifugo.DefaultTone, daifugo.DefaultDifficulty))
	}
}

// registerPlayers 登记本局座位
func (s *Service) registerPlayers(r *Room) {
	players := make([]daifugo.Player, 0, len(r.table.Players))
	for _, p := range r.table.Players {
		players = append(players, *p)
	}
	roomID := r.id
	r.pending.persist = append(r.pending.persist, func(ctx context.Context, rec Recorder) error {
		return rec.RegisterPlayers(ctx, roomID, players)
	})
}

func usedDisplayNames(t *daifugo.Table) map[string]bool {
	used := make(map[string]bool, len(t.Players))
	for _, p := range t.Players {
		if p.DisplayName != "" {
			used[p.DisplayName] = true
		}
	}
	return used
}

// nextBotName 第一个未被使用的 BotN
func nextBotName(t *daifugo.Table) string {
	names := make(map[string]bool, len(t.Players))
	for _, p := range t.Players {
		names[p.Name] = true
	}
	for n := 1; ; n++ {
		if name := fmt.Sprintf("Bot%d", n); !names[name] {
			return name
		}
	}
}
