package daifugo

import (
	"sudooom.daifugo/internal/game/card"
)

// 名次交换张数
const (
	DaifugoExchangeCount = 2
	FugouExchangeCount   = 1
)

// StartRound 洗牌发牌并开始新的一局
//
// 上局有名次时：大貧民把最强的 2 张交给大富豪、貧民把最强的 1 张交给富豪（自动完成），
// 同时登记大富豪→大貧民 2 张、富豪→貧民 1 张的交牌义务。
func (t *Table) StartRound() error {
	if t.Started {
		return ErrGameAlreadyStarted
	}
	if len(t.Players) == 0 {
		return ErrNotEnoughPlayers
	}

	deck := card.NewDeck()
	t.dealer.Shuffle(deck)
	hands := t.dealer.Deal(deck, len(t.Players))

	t.Hands = make(map[string][]card.Card, len(t.Players))
	t.PassStreaks = make(map[string]int, len(t.Players))
	for i, p := range t.Players {
		t.Hands[p.ID] = hands[i]
		t.PassStreaks[p.ID] = 0
	}
	t.Center = card.Combination{}
	t.CurrentTurn = 0
	t.Direction = Clockwise
	t.Revolution = false
	t.ConsecutivePasses = 0
	t.LastPlayer = ""
	t.LastNonNullPlayer = ""
	t.PendingDiscard = nil
	t.PendingSwap = nil
	t.PendingTake = nil
	t.PendingGive = make(map[string]*GiveObligation)
	t.Finished = make(map[string]int)
	t.NextRank = 1
	t.Discarded = nil
	t.gaveThisPlay = false
	t.Started = true
	t.GameOver = false
	t.Round++
	t.TurnStartedAt = t.now()

	t.applyStanding()
	return nil
}

// NextRound 上一局结束后开始下一局
func (t *Table) NextRound() error {
	if t.Started {
		return ErrRoundNotOver
	}
	return t.StartRound()
}

func (t *Table) applyStanding() {
	byRank := make(map[int]string, len(t.Standing))
	for id, r := range t.Standing {
		if t.SeatOf(id) >= 0 {
			byRank[r] = id
		}
	}
	daifugo, fugou := byRank[RankDaifugo], byRank[RankFugou]
	hinmin, daihinmin := byRank[RankHinmin], byRank[RankDaihinmin]

	if daifugo != "" && daihinmin != "" {
		t.autoTransfer(daihinmin, daifugo, DaifugoExchangeCount)
		t.PendingGive[daifugo] = &GiveObligation{To: daihinmin, Count: DaifugoExchangeCount, Allowed: true}
	}
	if fugou != "" && hinmin != "" {
		t.autoTransfer(hinmin, fugou, FugouExchangeCount)
		t.PendingGive[fugou] = &GiveObligation{To: hinmin, Count: FugouExchangeCount, Allowed: true}
	}
}

// autoTransfer 强制交出最强的 n 张
func (t *Table) autoTransfer(from, to string, n int) {
	cards := card.Strongest(t.Hands[from], n)
	if len(cards) == 0 {
		return
	}
	t.Hands[from] = card.RemoveAll(t.Hands[from], cards)
	t.Hands[to] = append(t.Hands[to], cards...)
	t.out.emit(EventAutoTransfer, map[string]any{
		"from":  from,
		"to":    to,
		"cards": cards,
	})
}
