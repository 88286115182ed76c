package card

import (
	"math/rand"
	"time"
)

// DeckSize 一副牌的张数 (13×4 + 2)
const DeckSize = 54

// NewDeck 生成一副 54 张的牌（四种花色各 13 张 + 两张王牌）
func NewDeck() []Card {
	cards := make([]Card, 0, DeckSize)
	for _, suit := range Suits {
		for r := Rank3; r <= Rank2; r++ {
			cards = append(cards, Card{Rank: r, Suit: suit})
		}
	}
	return append(cards, Joker, Joker)
}

// Dealer 洗牌与发牌
type Dealer struct {
	rand *rand.Rand
}

// NewDealer 创建发牌器，rng 为 nil 时使用时间种子
func NewDealer(rng *rand.Rand) *Dealer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Dealer{rand: rng}
}

// Shuffle 洗牌
func (d *Dealer) Shuffle(cards []Card) {
	d.rand.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

// Deal 从牌堆尾部依次轮流发给每个座位，直到牌堆为空
func (d *Dealer) Deal(deck []Card, seats int) [][]Card {
	hands := make([][]Card, seats)
	if seats <= 0 {
		return hands
	}
	for i := 0; len(deck) > 0; i++ {
		last := len(deck) - 1
		hands[i%seats] = append(hands[i%seats], deck[last])
		deck = deck[:last]
	}
	return hands
}

// Redistribute 收集全部手牌后重新洗牌，并按原张数分配
func (d *Dealer) Redistribute(hands [][]Card) [][]Card {
	var pool []Card
	for _, h := range hands {
		pool = append(pool, h...)
	}
	d.Shuffle(pool)

	out := make([][]Card, len(hands))
	idx := 0
	for i, h := range hands {
		out[i] = append([]Card(nil), pool[idx:idx+len(h)]...)
		idx += len(h)
	}
	return out
}

// Intn 随机整数（供上层复用同一随机源）
func (d *Dealer) Intn(n int) int {
	return d.rand.Intn(n)
}
