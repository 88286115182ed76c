package daifugo

import (
	"sudooom.daifugo/internal/game/card"
)

// 送牌方向
const (
	GiveLeft  = "left"
	GiveRight = "right"
)

// Pass 过牌
//
// 除最后出牌者之外的其他仍有手牌的座位全部过牌后，中央清空，
// 出牌权回到最后出牌者（其手牌已出完时顺延）。
func (t *Table) Pass(playerID string) error {
	if _, err := t.requireTurn(playerID); err != nil {
		return err
	}
	t.ConsecutivePasses++
	t.PassStreaks[playerID]++

	active := max(1, t.activeCount())
	lastRef := t.LastNonNullPlayer
	if lastRef == "" {
		lastRef = t.LastPlayer
	}

	if lastRef != "" && t.ConsecutivePasses >= active-1 {
		t.retireCenter()
		t.LastPlayer = ""
		if seat := t.SeatOf(lastRef); seat >= 0 && len(t.Hands[lastRef]) > 0 {
			t.CurrentTurn = seat
			t.TurnStartedAt = t.now()
		} else {
			t.advance()
		}
		t.ConsecutivePasses = 0
		for id := range t.PassStreaks {
			t.PassStreaks[id] = 0
		}
	} else {
		t.advance()
	}
	t.settleIfFinished()
	return nil
}

// Discard 10 之后弃一张牌，随后轮转到下一座位
//
// 弃牌权在其他座位 pass 后仍然有效，只有新的出牌会使其失效；
// 延迟弃牌时从当前座位轮转，当前座位因此被跳过。
func (t *Table) Discard(playerID string, c card.Card) error {
	if !t.Started {
		return ErrGameNotStarted
	}
	if t.PendingDiscard == nil || !t.PendingDiscard.Allowed || t.PendingDiscard.PlayerID != playerID {
		return ErrNoDiscard
	}
	if !card.Contains(t.Hands[playerID], c) {
		return ErrCardNotInHand.WithContext("card", c.String())
	}

	t.Hands[playerID] = card.Remove(t.Hands[playerID], c)
	t.Discarded = append(t.Discarded, c)
	t.out.emit(EventCardDiscarded, map[string]any{"player_id": playerID, "card": c})
	t.PendingDiscard = nil
	t.PassStreaks[playerID] = 0
	if len(t.Hands[playerID]) == 0 {
		t.finish(playerID)
	}
	t.advance()
	t.settleIfFinished()
	return nil
}

// Give 7 之后送给相邻座位一张牌
//
// direction 为 left（座位+1）或 right（座位-1）；为空时与出牌方向相反。
// 接收者为该方向上最近一个仍有手牌的座位。每次出 7 只能送一次。
func (t *Table) Give(playerID string, c card.Card, direction string) error {
	if !t.Started {
		return ErrGameNotStarted
	}
	if !card.Contains(t.Hands[playerID], c) {
		return ErrCardNotInHand.WithContext("card", c.String())
	}
	if t.LastPlayer != playerID || !t.Center.HasRank(card.Rank7) || t.gaveThisPlay {
		return ErrGiveNotAllowed
	}

	var forward bool
	switch direction {
	case GiveLeft:
		forward = true
	case GiveRight:
		forward = false
	case "":
		forward = t.Direction == CounterClockwise
	default:
		return ErrInvalidDirection.WithContext("direction", direction)
	}
	seat := t.SeatOf(playerID)
	to := t.neighbor(seat, forward)
	if to < 0 {
		return ErrInvalidTarget
	}
	recipient := t.Players[to].ID

	t.Hands[playerID] = card.Remove(t.Hands[playerID], c)
	t.Hands[recipient] = append(t.Hands[recipient], c)
	t.gaveThisPlay = true
	if direction == "" {
		direction = string(t.Direction)
	}
	t.out.emit(EventCardGiven, map[string]any{
		"from":      playerID,
		"to":        recipient,
		"card":      c,
		"direction": direction,
	})
	if len(t.Hands[playerID]) == 0 {
		t.finish(playerID)
		t.skipEmptyCurrent()
	}
	t.settleIfFinished()
	return nil
}

// Swap 4 之后与指定玩家交换一张牌
func (t *Table) Swap(playerID, targetID string, give, take card.Card) error {
	if !t.Started {
		return ErrGameNotStarted
	}
	if t.PendingSwap == nil || !t.PendingSwap.Allowed || t.PendingSwap.PlayerID != playerID {
		return ErrNoSwap
	}
	if err := t.checkTarget(playerID, targetID); err != nil {
		return err
	}
	if !card.Contains(t.Hands[playerID], give) {
		return ErrGiveCardNotInHand.WithContext("card", give.String())
	}
	if !card.Contains(t.Hands[targetID], take) {
		return ErrTakeCardNotInTarget.WithContext("card", take.String())
	}

	t.Hands[playerID] = append(card.Remove(t.Hands[playerID], give), take)
	t.Hands[targetID] = append(card.Remove(t.Hands[targetID], take), give)
	t.PendingSwap = nil
	t.out.emit(EventCardsSwapped, map[string]any{
		"from": playerID,
		"to":   targetID,
		"gave": give,
		"took": take,
	})
	return nil
}

// Take A 之后从指定玩家手里抽一张牌
func (t *Table) Take(playerID, targetID string, take card.Card) error {
	if !t.Started {
		return ErrGameNotStarted
	}
	if t.PendingTake == nil || !t.PendingTake.Allowed || t.PendingTake.PlayerID != playerID {
		return ErrNoTake
	}
	if err := t.checkTarget(playerID, targetID); err != nil {
		return err
	}
	if !card.Contains(t.Hands[targetID], take) {
		return ErrTakeCardNotInTarget.WithContext("card", take.String())
	}

	t.Hands[targetID] = card.Remove(t.Hands[targetID], take)
	t.Hands[playerID] = append(t.Hands[playerID], take)
	t.PendingTake = nil
	t.out.emit(EventCardTaken, map[string]any{
		"by":   playerID,
		"from": targetID,
		"card": take,
	})
	t.skipEmptyCurrent()
	t.settleIfFinished()
	return nil
}

// SubmitGive 按上局名次交出指定张数的牌
func (t *Table) SubmitGive(playerID string, cards []card.Card) error {
	g := t.PendingGive[playerID]
	if g == nil || !g.Allowed {
		return ErrNoGivePending
	}
	if len(cards) != g.Count {
		return ErrGiveCount.
			WithMessage("expected %d card(s) to give", g.Count).
			WithContext("count", g.Count)
	}
	if !card.ContainsAll(t.Hands[playerID], cards) {
		return ErrCardNotInHand.WithContext("cards", card.Strings(cards))
	}

	t.Hands[playerID] = card.RemoveAll(t.Hands[playerID], cards)
	t.Hands[g.To] = append(t.Hands[g.To], cards...)
	delete(t.PendingGive, playerID)
	t.out.emit(EventGiveSubmitted, map[string]any{
		"from":  playerID,
		"to":    g.To,
		"cards": card.Clone(cards),
	})
	if t.Started && len(t.Hands[playerID]) == 0 {
		t.finish(playerID)
		t.skipEmptyCurrent()
	}
	t.settleIfFinished()
	return nil
}

func (t *Table) checkTarget(playerID, targetID string) error {
	if targetID == playerID {
		return ErrInvalidTarget.WithContext("target", targetID)
	}
	if t.SeatOf(targetID) < 0 {
		return ErrPlayerNotFound.WithContext("player_id", targetID)
	}
	return nil
}
