package daifugo

import (
	"sudooom.daifugo/internal/game/card"
)

// Play 出牌
//
// target 仅在出牌包含 Q 时生效，表示要从所有手牌中清除的点数。
// 任何校验失败都不会修改牌局状态。
func (t *Table) Play(playerID string, cards []card.Card, target *card.Rank) error {
	if _, err := t.requireTurn(playerID); err != nil {
		return err
	}
	if len(cards) == 0 {
		return ErrInvalidCombination
	}
	if !card.ContainsAll(t.Hands[playerID], cards) {
		return ErrCardNotInHand.WithContext("cards", card.Strings(cards))
	}
	combo := card.Classify(cards)
	if combo.Kind == card.KindInvalid {
		return ErrInvalidCombination
	}
	if err := Beats(t.Center, combo, t.Revolution, t.Rules); err != nil {
		return err
	}

	t.applyPlay(playerID, combo, target)
	return nil
}

// CanPlay 只做校验，不修改状态（机器人与客户端提示用）
func (t *Table) CanPlay(playerID string, cards []card.Card) error {
	if _, err := t.requireTurn(playerID); err != nil {
		return err
	}
	if len(cards) == 0 || !card.ContainsAll(t.Hands[playerID], cards) {
		return ErrCardNotInHand
	}
	combo := card.Classify(cards)
	if combo.Kind == card.KindInvalid {
		return ErrInvalidCombination
	}
	return Beats(t.Center, combo, t.Revolution, t.Rules)
}

func (t *Table) applyPlay(playerID string, combo card.Combination, target *card.Rank) {
	t.Hands[playerID] = card.RemoveAll(t.Hands[playerID], combo.Cards)
	t.PassStreaks[playerID] = 0
	for _, c := range combo.Cards {
		t.out.record(Record{Kind: RecordPlay, PlayerID: playerID, Card: c})
	}
	t.LastNonNullPlayer = playerID
	t.gaveThisPlay = false

	clearing := combo.HasRank(card.Rank8)
	t.retireCenter()
	t.ConsecutivePasses = 0
	if clearing {
		t.Discarded = append(t.Discarded, combo.Cards...)
		t.LastPlayer = ""
		if t.Revolution {
			t.Revolution = false
			t.out.emit(EventRevolution, map[string]any{"active": false})
		}
	} else {
		t.Center = combo
		t.LastPlayer = playerID
		if combo.HasRank(card.RankJ) {
			t.Revolution = !t.Revolution
			t.out.emit(EventRevolution, map[string]any{"active": t.Revolution})
		}
		if combo.HasRank(card.RankK) {
			t.Direction = t.Direction.Flip()
			t.out.emit(EventDirection, map[string]any{"direction": t.Direction})
		}
	}

	if combo.HasRank(card.Rank10) {
		t.PendingDiscard = &Obligation{PlayerID: playerID, Allowed: true}
	} else {
		t.PendingDiscard = nil
	}
	if combo.HasRank(card.Rank9) {
		t.reshuffleHands()
	}
	if combo.HasRank(card.RankQ) && target != nil {
		t.massDiscard(*target)
	}
	if len(t.Hands[playerID]) == 0 {
		t.finish(playerID)
	}
	if isRotationPair(combo.Cards) {
		t.rotateStanding(playerID)
	}
	if combo.HasRank(card.Rank4) {
		t.PendingSwap = &Obligation{PlayerID: playerID, Allowed: true}
	}
	if combo.HasRank(card.RankA) {
		t.PendingTake = &Obligation{PlayerID: playerID, Allowed: true}
	}

	switch {
	case !clearing:
		t.advance()
		if combo.HasRank(card.Rank5) {
			t.advance()
		}
	case len(t.Hands[playerID]) == 0:
		t.advance()
	default:
		// 清场后由本人继续出牌
		t.TurnStartedAt = t.now()
	}
	t.skipEmptyCurrent()

	t.out.emit(EventCardPlayed, map[string]any{
		"player_id": playerID,
		"cards":     combo.Cards,
	})
	t.settleIfFinished()
}

// reshuffleHands 9：收集所有手牌重新洗牌，各座位张数不变
func (t *Table) reshuffleHands() {
	hands := make([][]card.Card, len(t.Players))
	counts := make(map[string]int, len(t.Players))
	for i, p := range t.Players {
		hands[i] = t.Hands[p.ID]
		counts[p.ID] = len(hands[i])
	}
	for i, h := range t.dealer.Redistribute(hands) {
		t.Hands[t.Players[i].ID] = h
	}
	t.out.emit(EventHandsShuffled, map[string]any{"counts": counts})
}

// massDiscard Q：所有座位弃掉指定点数（指定 JOKER 时弃王牌）
func (t *Table) massDiscard(rank card.Rank) {
	discarded := make([]map[string]any, 0)
	for _, p := range t.Players {
		var removed, kept []card.Card
		for _, c := range t.Hands[p.ID] {
			if c.Rank == rank {
				removed = append(removed, c)
			} else {
				kept = append(kept, c)
			}
		}
		if len(removed) == 0 {
			continue
		}
		t.Hands[p.ID] = kept
		t.Discarded = append(t.Discarded, removed...)
		discarded = append(discarded, map[string]any{"player_id": p.ID, "cards": removed})
	}
	t.out.emit(EventMassDiscard, map[string]any{
		"target_rank": rank.String(),
		"discarded":   discarded,
	})
}

// isRotationPair 恰好两张，且为两张 4 或两张 A（王牌可以补足）
func isRotationPair(cards []card.Card) bool {
	if len(cards) != 2 {
		return false
	}
	jokers := card.CountJokers(cards)
	return card.CountRank(cards, card.Rank4)+jokers >= 2 || card.CountRank(cards, card.RankA)+jokers >= 2
}
