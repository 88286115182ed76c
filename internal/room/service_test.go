package room

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"sudooom.daifugo/internal/game/bot"
	"sudooom.daifugo/internal/game/card"
	"sudooom.daifugo/internal/game/daifugo"
)

var ctx = context.Background()

// TestCreateRoom 创建房间
func TestCreateRoom(t *testing.T) {
	h := newHarness(t)

	roomID, playerID, err := h.svc.CreateRoom(ctx, PlayerParams{Name: "  alice  "})
	if err != nil {
		t.Fatalf("创建房间失败: %v", err)
	}
	if len(roomID) != 8 || len(playerID) != 32 {
		t.Errorf("ID 格式不正确: room=%s player=%s", roomID, playerID)
	}
	v := h.state(t, roomID, playerID)
	if len(v.Players) != 1 || v.Players[0].Name != "alice" {
		t.Errorf("创建者未入座: %+v", v.Players)
	}
	if v.Direction != daifugo.Clockwise || v.Phase != daifugo.PhaseLobby {
		t.Errorf("初始状态不正确: %+v", v)
	}
	if h.rec.count("CreateGame") != 1 {
		t.Errorf("期望记录一次 CreateGame")
	}

	if _, _, err := h.svc.CreateRoom(ctx, PlayerParams{Name: "  "}); !errors.Is(err, ErrInvalidName) {
		t.Errorf("期望 ErrInvalidName, 实际 %v", err)
	}
	if _, err := h.svc.GetRoomState(ctx, "missing", ""); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("期望 ErrRoomNotFound, 实际 %v", err)
	}
}

// TestStartGameFillsBots 开局补齐机器人并发牌
func TestStartGameFillsBots(t *testing.T) {
	h := newHarness(t)
	roomID, _, _ := h.svc.CreateRoom(ctx, PlayerParams{Name: "alice"})
	bobID, err := h.svc.JoinRoom(ctx, roomID, PlayerParams{Name: "bob"})
	if err != nil {
		t.Fatalf("加入房间失败: %v", err)
	}
	if err := h.svc.StartGame(ctx, roomID); err != nil {
		t.Fatalf("开局失败: %v", err)
	}

	v := h.state(t, roomID, bobID)
	if len(v.Players) != 5 {
		t.Fatalf("期望 5 个座位, 实际 %d", len(v.Players))
	}
	total := 0
	displays := make(map[string]bool)
	for i, p := range v.Players {
		total += p.HandCount
		if i < 2 {
			continue
		}
		if !p.IsBot || p.Tone != daifugo.ToneMean || p.Difficulty != daifugo.DifficultyNormal {
			t.Errorf("机器人设置不正确: %+v", p)
		}
		if p.Name != "Bot"+string(rune('0'+i-1)) {
			t.Errorf("机器人名字不正确: %s", p.Name)
		}
		if displays[p.DisplayName] {
			t.Errorf("显示名重复: %s", p.DisplayName)
		}
		displays[p.DisplayName] = true
	}
	if total != 54 {
		t.Errorf("期望共 54 张牌, 实际 %d", total)
	}
	if len(v.YourHand) != v.Players[1].HandCount {
		t.Errorf("手牌数量不一致")
	}
	if h.rec.count("RegisterPlayers") != 1 || len(h.rec.players) != 5 {
		t.Errorf("期望登记 5 个座位")
	}
	if !h.presence.seen(roomID, bobID) {
		t.Error("带玩家ID获取状态应记为心跳")
	}

	if err := h.svc.StartGame(ctx, roomID); !errors.Is(err, daifugo.ErrGameAlreadyStarted) {
		t.Errorf("期望 ErrGameAlreadyStarted, 实际 %v", err)
	}
	if _, err := h.svc.JoinRoom(ctx, roomID, PlayerParams{Name: "carol"}); !errors.Is(err, daifugo.ErrGameAlreadyStarted) {
		t.Errorf("牌局中不能加入, 实际 %v", err)
	}
	if err := h.svc.NextRound(ctx, roomID); !errors.Is(err, daifugo.ErrRoundNotOver) {
		t.Errorf("期望 ErrRoundNotOver, 实际 %v", err)
	}
}

// TestBotManagement 添加、修改、移除机器人
func TestBotManagement(t *testing.T) {
	h := newHarness(t)
	roomID, _, _ := h.svc.CreateRoom(ctx, PlayerParams{Name: "alice"})

	if _, err := h.svc.AddBot(ctx, roomID, BotParams{Tone: "angry"}); !errors.Is(err, daifugo.ErrInvalidTone) {
		t.Errorf("期望 ErrInvalidTone, 实际 %v", err)
	}
	b, err := h.svc.AddBot(ctx, roomID, BotParams{Tone: string(daifugo.ToneSerious)})
	if err != nil {
		t.Fatalf("添加机器人失败: %v", err)
	}
	if b.Name != "Bot1" || b.DisplayName == "" || b.Difficulty != daifugo.DifficultyNormal {
		t.Errorf("机器人不正确: %+v", b)
	}

	strong := string(daifugo.DifficultyStrong)
	long := strings.Repeat("あ", 40)
	updated, err := h.svc.UpdateBot(ctx, roomID, b.ID, BotUpdate{DisplayName: &long, Difficulty: &strong})
	if err != nil {
		t.Fatalf("修改机器人失败: %v", err)
	}
	if updated.Difficulty != daifugo.DifficultyStrong || len([]rune(updated.DisplayName)) != daifugo.MaxDisplayNameRunes {
		t.Errorf("修改结果不正确: %+v", updated)
	}
	bad := "最強"
	if _, err := h.svc.UpdateBot(ctx, roomID, b.ID, BotUpdate{Difficulty: &bad}); !errors.Is(err, daifugo.ErrInvalidDifficulty) {
		t.Errorf("期望 ErrInvalidDifficulty, 实际 %v", err)
	}
	if _, err := h.svc.UpdateBot(ctx, roomID, "nobody", BotUpdate{}); !errors.Is(err, daifugo.ErrBotNotFound) {
		t.Errorf("期望 ErrBotNotFound, 实际 %v", err)
	}

	rooms := h.svc.RoomsWithBotSlots(ctx)
	if len(rooms) != 1 || rooms[0].RoomID != roomID || rooms[0].PlayerCount != 2 || rooms[0].Bots[0].ID != b.ID {
		t.Errorf("推荐房间不正确: %+v", rooms)
	}

	if err := h.svc.RemoveBot(ctx, roomID, b.ID); err != nil {
		t.Fatalf("移除机器人失败: %v", err)
	}
	if rooms := h.svc.RoomsWithBotSlots(ctx); len(rooms) != 0 {
		t.Errorf("没有机器人的房间不应推荐: %+v", rooms)
	}

	if err := h.svc.StartGame(ctx, roomID); err != nil {
		t.Fatalf("开局失败: %v", err)
	}
	if _, err := h.svc.AddBot(ctx, roomID, BotParams{}); !errors.Is(err, daifugo.ErrGameAlreadyStarted) {
		t.Errorf("期望 ErrGameAlreadyStarted, 实际 %v", err)
	}
}

// TestPatchRules 规则只能在牌局之外修改
func TestPatchRules(t *testing.T) {
	h := newHarness(t)
	roomID, _, _ := h.svc.CreateRoom(ctx, PlayerParams{Name: "alice"})

	rules, err := h.svc.PatchRules(ctx, roomID, map[string]any{daifugo.RuleBlock8After2: "off"})
	if err != nil {
		t.Fatalf("修改规则失败: %v", err)
	}
	if rules[daifugo.RuleBlock8After2] || !rules[daifugo.RuleSpade3OverJoker] {
		t.Errorf("规则不正确: %v", rules)
	}
	if _, err := h.svc.PatchRules(ctx, roomID, map[string]any{"no_such_rule": true}); !errors.Is(err, daifugo.ErrInvalidRuleKey) {
		t.Errorf("期望 ErrInvalidRuleKey, 实际 %v", err)
	}
	got, _ := h.svc.GetRules(ctx, roomID)
	if got[daifugo.RuleBlock8After2] {
		t.Error("非法修改不应生效")
	}

	_ = h.svc.StartGame(ctx, roomID)
	if _, err := h.svc.PatchRules(ctx, roomID, map[string]any{daifugo.RuleBlock8After2: true}); !errors.Is(err, daifugo.ErrGameAlreadyStarted) {
		t.Errorf("期望 ErrGameAlreadyStarted, 实际 %v", err)
	}
}

// TestBotTurn 机器人先思考再行动，行动后轮到下一个机器人
func TestBotTurn(t *testing.T) {
	h := newHarness(t)
	roomID, alice := h.started(t)
	if h.sched.get(botTaskID(roomID)) != nil {
		t.Fatal("真人回合不应安排机器人行动")
	}

	if err := h.svc.Pass(ctx, roomID, alice); err != nil {
		t.Fatalf("pass 失败: %v", err)
	}
	v := h.state(t, roomID, "")
	bot1 := v.Players[1]
	if v.CurrentPlayer != bot1.ID {
		t.Fatalf("期望轮到 %s, 实际 %s", bot1.ID, v.CurrentPlayer)
	}

	thinking := h.pub.ofType(daifugo.EventBotThinking)
	if len(thinking) != 1 || thinking[0].Payload["player_id"] != bot1.ID || thinking[0].Payload["delay"] != 10.0 {
		t.Fatalf("bot_thinking 不正确: %+v", thinking)
	}
	chat := h.sched.get(chatTaskID(roomID))
	if chat == nil || chat.Delay != 3*time.Second {
		t.Fatalf("期望 3 秒后的思考台词, 实际 %+v", chat)
	}

	h.sched.run(t, chatTaskID(roomID))
	if len(h.pub.ofType(daifugo.EventBotChat)) != 1 {
		t.Fatal("期望一条思考台词")
	}
	if len(h.pub.ofType(daifugo.EventCardPlayed)) != 0 {
		t.Fatal("思考结束前不应出牌")
	}

	h.sched.run(t, botTaskID(roomID))
	played := h.pub.ofType(daifugo.EventCardPlayed)
	if len(played) != 1 || played[0].Payload["player_id"] != bot1.ID {
		t.Fatalf("期望 %s 出牌, 实际 %+v", bot1.ID, played)
	}
	cards := played[0].Payload["cards"].([]card.Card)

	v = h.state(t, roomID, "")
	if v.Players[1].HandCount > bot1.HandCount-len(cards) {
		t.Errorf("手牌数量不正确: %d", v.Players[1].HandCount)
	}
	if !hasMessage(v, "出した: "+strings.Join(card.Strings(cards), ",")) {
		t.Errorf("缺少出牌消息: %+v", v.Messages)
	}
	if len(h.pub.ofType(daifugo.EventBotChat)) != 2 {
		t.Error("出牌后应有一条台词")
	}
	if h.rec.count("RecordPlay") != len(cards) {
		t.Errorf("期望记录 %d 张出牌, 实际 %d", len(cards), h.rec.count("RecordPlay"))
	}
	if cur := v.CurrentPlayer; cur == alice || h.sched.get(botTaskID(roomID)) == nil {
		t.Errorf("下一个机器人应被安排行动, 当前 %s", cur)
	}
}

// TestStaleBotActionIsNoop 代管解除后，已安排的机器人行动不再生效
func TestStaleBotActionIsNoop(t *testing.T) {
	h := newHarness(t)
	roomID, alice := h.started(t)

	if err := h.svc.TakeoverPlayer(ctx, roomID, alice); err != nil {
		t.Fatalf("代管失败: %v", err)
	}
	stale := h.sched.get(botTaskID(roomID))
	if stale == nil {
		t.Fatal("代管后应安排机器人行动")
	}
	if len(h.pub.ofType(daifugo.EventPlayerTakenOver)) != 1 {
		t.Error("缺少 player_taken_over 事件")
	}

	if err := h.svc.ReleaseTakeover(ctx, roomID, alice); err != nil {
		t.Fatalf("解除代管失败: %v", err)
	}
	if h.sched.get(botTaskID(roomID)) != nil {
		t.Error("解除代管后应取消机器人行动")
	}

	before := h.state(t, roomID, alice)
	if err := stale.Execute(ctx); err != nil {
		t.Fatalf("过期任务执行失败: %v", err)
	}
	after := h.state(t, roomID, alice)
	if after.CurrentPlayer != alice || len(after.YourHand) != len(before.YourHand) {
		t.Error("过期的机器人行动不应修改牌局")
	}

	if len(h.notifier.notices) != 2 {
		t.Fatalf("期望两条通知, 实际 %d", len(h.notifier.notices))
	}
	n := h.notifier.notices[0]
	if n.Reason != ReasonTakeover || n.Email != "alice@example.com" || !strings.Contains(n.Subject, roomID) {
		t.Errorf("代管通知不正确: %+v", n)
	}
	if h.notifier.notices[1].Reason != ReasonRelease {
		t.Errorf("期望解除通知, 实际 %+v", h.notifier.notices[1])
	}

	bot1 := after.Players[1].ID
	if err := h.svc.TakeoverPlayer(ctx, roomID, bot1); !errors.Is(err, daifugo.ErrInvalidTarget) {
		t.Errorf("不能代管机器人, 实际 %v", err)
	}
}

// TestWrongTurnRejected 非当前座位的操作被拒绝且不修改状态
func TestWrongTurnRejected(t *testing.T) {
	h := newHarness(t)
	roomID, alice := h.started(t)
	v := h.state(t, roomID, alice)
	bot1 := v.Players[1].ID

	if err := h.svc.Pass(ctx, roomID, bot1); !errors.Is(err, daifugo.ErrNotYourTurn) {
		t.Errorf("期望 ErrNotYourTurn, 实际 %v", err)
	}
	if err := h.svc.Play(ctx, roomID, alice, card.MustParseAll("JOKER", "JOKER", "JOKER"), nil); err == nil {
		t.Error("手中没有的牌不能出")
	}
	after := h.state(t, roomID, alice)
	if after.CurrentPlayer != alice || len(after.YourHand) != len(v.YourHand) {
		t.Error("被拒绝的操作不应修改状态")
	}
}

// TestHumanPlay 真人出牌记录消息并心跳
func TestHumanPlay(t *testing.T) {
	h := newHarness(t)
	roomID, alice := h.started(t)
	v := h.state(t, roomID, alice)

	lowest := v.YourHand[:1]
	if err := h.svc.Play(ctx, roomID, alice, lowest, nil); err != nil {
		t.Fatalf("出牌失败: %v", err)
	}
	after := h.state(t, roomID, alice)
	if len(after.YourHand) != len(v.YourHand)-1 {
		t.Errorf("手牌数量不正确: %d", len(after.YourHand))
	}
	if !hasMessage(after, "出した: "+lowest[0].String()) {
		t.Errorf("缺少出牌消息: %+v", after.Messages)
	}
	if h.rec.count("RecordPlay") != 1 || h.rec.count("AddMessage") == 0 {
		t.Errorf("持久化调用不正确: %v", h.rec.calls)
	}
	if !h.presence.seen(roomID, alice) {
		t.Error("出牌应记为心跳")
	}
}

// TestForcePassGuarded 强制 pass 只对同一回合生效
func TestForcePassGuarded(t *testing.T) {
	h := newHarness(t)
	roomID, alice := h.started(t)

	var snap Snapshot
	for _, s := range h.svc.Snapshots() {
		if s.RoomID == roomID {
			snap = s
		}
	}
	if !snap.Started || snap.CurrentID != alice || snap.CurrentIsBot {
		t.Fatalf("快照不正确: %+v", snap)
	}

	if err := h.svc.ForcePass(ctx, roomID, alice, snap.TurnStartedAt.Add(time.Second)); err != nil {
		t.Fatalf("强制 pass 失败: %v", err)
	}
	if h.state(t, roomID, "").CurrentPlayer != alice {
		t.Fatal("回合已变化时不应强制 pass")
	}

	if err := h.svc.ForcePass(ctx, roomID, alice, snap.TurnStartedAt); err != nil {
		t.Fatalf("强制 pass 失败: %v", err)
	}
	if h.state(t, roomID, "").CurrentPlayer == alice {
		t.Error("强制 pass 后应轮到下一个座位")
	}
}

// TestSnapshotAutoPass 中央为 2 且真人没有王牌时可以自动 pass
func TestSnapshotAutoPass(t *testing.T) {
	h := newHarness(t)
	roomID, alice := h.started(t)

	autoPass := func() bool {
		for _, s := range h.svc.Snapshots() {
			if s.RoomID == roomID {
				return s.AutoPass
			}
		}
		return false
	}

	h.with(t, roomID, func(r *Room) {
		r.table.Center = card.Classify(card.MustParseAll("2♠"))
		r.table.Hands[alice] = card.MustParseAll("3♦", "9♥")
	})
	if !autoPass() {
		t.Error("期望可以自动 pass")
	}

	h.with(t, roomID, func(r *Room) {
		r.table.Hands[alice] = card.MustParseAll("3♦", "JOKER")
	})
	if autoPass() {
		t.Error("持有王牌时不应自动 pass")
	}

	h.with(t, roomID, func(r *Room) {
		r.table.Hands[alice] = card.MustParseAll("3♦")
		r.table.Rules.AutoPassNoJokerVsTwo = false
	})
	if autoPass() {
		t.Error("规则关闭时不应自动 pass")
	}
}

// TestBotDiscardAfterTen 机器人出 10 之后延迟弃掉最弱的非 10 牌
func TestBotDiscardAfterTen(t *testing.T) {
	h := newHarness(t)
	roomID, _ := h.started(t)

	var bot1 string
	h.with(t, roomID, func(r *Room) {
		bot1 = r.table.Players[1].ID
		r.table.CurrentTurn = 1
		r.table.Hands[bot1] = card.MustParseAll("10♦", "K♣", "2♥")
	})
	if err := h.svc.DispatchBots(ctx, roomID); err != nil {
		t.Fatalf("安排机器人失败: %v", err)
	}
	h.sched.run(t, botTaskID(roomID))

	discard := h.sched.get(discardTaskID(roomID))
	if discard == nil || discard.Delay != 4*time.Second {
		t.Fatalf("期望 4 秒后弃牌, 实际 %+v", discard)
	}
	h.sched.run(t, discardTaskID(roomID))

	discarded := h.pub.ofType(daifugo.EventCardDiscarded)
	if len(discarded) != 1 || discarded[0].Payload["card"] != card.New(card.RankK, card.Clubs) {
		t.Fatalf("期望弃掉 K♣, 实际 %+v", discarded)
	}
	v := h.state(t, roomID, bot1)
	if len(v.YourHand) != 1 || v.YourHand[0] != card.New(card.Rank2, card.Hearts) {
		t.Errorf("剩余手牌不正确: %v", v.YourHand)
	}
	if !hasMessage(v, "捨てた: K♣") {
		t.Errorf("缺少弃牌消息: %+v", v.Messages)
	}
}

// TestNextRoundPendingGive 下一局按名次交牌，机器人自动交牌
func TestNextRoundPendingGive(t *testing.T) {
	h := newHarness(t)
	roomID, alice := h.started(t)

	var ids []string
	h.with(t, roomID, func(r *Room) {
		for i, p := range r.table.Players {
			ids = append(ids, p.ID)
			r.table.Standing[p.ID] = i + 1
		}
		r.table.Started = false
		r.table.GameOver = true
	})
	if err := h.svc.NextRound(ctx, roomID); err != nil {
		t.Fatalf("下一局失败: %v", err)
	}

	// 富豪（机器人）已自动交牌
	submitted := h.pub.ofType(daifugo.EventGiveSubmitted)
	if len(submitted) != 1 || submitted[0].Payload["from"] != ids[1] || submitted[0].Payload["to"] != ids[3] {
		t.Fatalf("机器人交牌不正确: %+v", submitted)
	}

	v := h.state(t, roomID, alice)
	g := v.PendingGive
	if g == nil || g.To != ids[4] || g.Count != 2 || !g.ToIsBot || g.ToRank == nil || *g.ToRank != 5 {
		t.Fatalf("交牌信息不正确: %+v", g)
	}
	if g.ToHandCount != v.Players[4].HandCount || g.ToName != v.Players[4].DisplayName {
		t.Errorf("接收者信息不正确: %+v", g)
	}

	if err := h.svc.SubmitGive(ctx, roomID, alice, v.YourHand[:2]); err != nil {
		t.Fatalf("交牌失败: %v", err)
	}
	if h.state(t, roomID, alice).PendingGive != nil {
		t.Error("交牌后不应再有交牌义务")
	}
	if err := h.svc.SubmitGive(ctx, roomID, alice, v.YourHand[2:4]); !errors.Is(err, daifugo.ErrNoGivePending) {
		t.Errorf("期望 ErrNoGivePending, 实际 %v", err)
	}
}

// TestJoinBotSlot 真人接替机器人座位
func TestJoinBotSlot(t *testing.T) {
	h := newHarness(t)
	roomID, _ := h.started(t)
	before := h.state(t, roomID, "")
	bot2 := before.Players[2]

	bobID, err := h.svc.JoinBotSlot(ctx, roomID, bot2.ID, PlayerParams{Name: "bob"})
	if err != nil {
		t.Fatalf("接替失败: %v", err)
	}
	v := h.state(t, roomID, bobID)
	seat := v.Players[2]
	if seat.ID != bobID || seat.IsBot || seat.HandCount != bot2.HandCount || len(v.YourHand) != bot2.HandCount {
		t.Errorf("座位不正确: %+v", seat)
	}
	joined := h.pub.ofType(daifugo.EventBotSlotJoined)
	if len(joined) != 1 || joined[0].Payload["bot_id"] != bot2.ID || joined[0].Payload["player_id"] != bobID {
		t.Errorf("bot_slot_joined 不正确: %+v", joined)
	}
	if _, err := h.svc.JoinBotSlot(ctx, roomID, bobID, PlayerParams{Name: "carol"}); !errors.Is(err, daifugo.ErrBotNotFound) {
		t.Errorf("期望 ErrBotNotFound, 实际 %v", err)
	}
}

// TestAddMessage 发言与机器人自动回复
func TestAddMessage(t *testing.T) {
	h := newHarness(t)
	roomID, alice, _ := h.svc.CreateRoom(ctx, PlayerParams{Name: "alice"})
	b, _ := h.svc.AddBot(ctx, roomID, BotParams{Difficulty: string(daifugo.DifficultyStrong)})

	if _, err := h.svc.AddMessage(ctx, roomID, alice, "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("期望 ErrEmptyMessage, 实际 %v", err)
	}
	if _, err := h.svc.AddMessage(ctx, roomID, "nobody", "hi"); !errors.Is(err, daifugo.ErrPlayerNotFound) {
		t.Errorf("期望 ErrPlayerNotFound, 实际 %v", err)
	}

	msg, err := h.svc.AddMessage(ctx, roomID, alice, "やあ")
	if err != nil {
		t.Fatalf("发言失败: %v", err)
	}
	if msg.Name != "alice" || msg.Text != "やあ" || msg.ID == "" {
		t.Errorf("消息不正确: %+v", msg)
	}

	replied := false
	for range 20 {
		h.now = h.now.Add(bot.ReplyCooldown + time.Second)
		if _, err := h.svc.AddMessage(ctx, roomID, alice, "こんにちは"); err != nil {
			t.Fatalf("发言失败: %v", err)
		}
		for _, ev := range h.pub.ofType(daifugo.EventBotChat) {
			if ev.Payload["player_id"] == b.ID && ev.Payload["text"] == "こんにちは！よろしくね。" {
				replied = true
			}
		}
		if replied {
			break
		}
	}
	if !replied {
		t.Fatal("強い 机器人应当回复问候")
	}
	if !hasMessage(h.state(t, roomID, ""), "こんにちは！よろしくね。") {
		t.Error("机器人回复应记入聊天")
	}
}

// TestMessageLimit 消息超过上限时丢弃最早的
func TestMessageLimit(t *testing.T) {
	h := newHarness(t)
	h.svc.opts.MaxMessages = 3
	roomID, alice, _ := h.svc.CreateRoom(ctx, PlayerParams{Name: "alice"})
	for _, text := range []string{"a", "b", "c", "d"} {
		if _, err := h.svc.AddMessage(ctx, roomID, alice, text); err != nil {
			t.Fatalf("发言失败: %v", err)
		}
	}
	msgs, _ := h.svc.Messages(ctx, roomID)
	if len(msgs) != 3 || msgs[0].Text != "b" || msgs[2].Text != "d" {
		t.Errorf("消息不正确: %+v", msgs)
	}
}

// TestDrainEvents 拉取后清空事件队列
func TestDrainEvents(t *testing.T) {
	h := newHarness(t)
	roomID, alice := h.started(t)
	_ = h.svc.Pass(ctx, roomID, alice)

	events, err := h.svc.DrainEvents(ctx, roomID)
	if err != nil {
		t.Fatalf("拉取事件失败: %v", err)
	}
	if len(events) == 0 || events[len(events)-1].Type != daifugo.EventBotThinking {
		t.Errorf("事件不正确: %+v", events)
	}
	again, _ := h.svc.DrainEvents(ctx, roomID)
	if len(again) != 0 {
		t.Errorf("事件队列应已清空, 实际 %d", len(again))
	}
}

// TestEvictInactive 超时未活跃的房间被淘汰并通知
func TestEvictInactive(t *testing.T) {
	h := newHarness(t)
	roomID, _, _ := h.svc.CreateRoom(ctx, PlayerParams{Name: "alice"})

	if n := h.svc.manager.EvictInactive(); n != 0 {
		t.Fatalf("活跃房间不应被淘汰: %d", n)
	}
	h.now = h.now.Add(2 * time.Hour)
	if n := h.svc.manager.EvictInactive(); n != 1 {
		t.Fatalf("期望淘汰 1 个房间, 实际 %d", n)
	}
	if _, err := h.svc.GetRoomState(ctx, roomID, ""); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("淘汰后应找不到房间, 实际 %v", err)
	}
	evicted := h.pub.ofType(daifugo.EventRoomEvicted)
	if len(evicted) != 1 || evicted[0].RoomID != roomID {
		t.Errorf("room_evicted 不正确: %+v", evicted)
	}
}

// TestRoomLimit 房间数量上限
func TestRoomLimit(t *testing.T) {
	m := NewManager(1, time.Hour, 0)
	defer m.Shutdown(ctx)
	now := time.Now()
	if err := m.Add(NewRoom("r1", daifugo.NewTable("r1", nil), now)); err != nil {
		t.Fatalf("添加房间失败: %v", err)
	}
	if err := m.Add(NewRoom("r2", daifugo.NewTable("r2", nil), now)); !errors.Is(err, ErrRoomLimit) {
		t.Errorf("期望 ErrRoomLimit, 实际 %v", err)
	}
	m.Remove("r1")
	if err := m.Add(NewRoom("r1", daifugo.NewTable("r1", nil), now)); err != nil {
		t.Errorf("移除后应可以再添加: %v", err)
	}
}
