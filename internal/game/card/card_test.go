package card

import (
	"math/rand"
	"testing"
)

// TestParseAndString 测试文本形式与解析
func TestParseAndString(t *testing.T) {
	tests := []struct {
		text string
		want Card
	}{
		{"3♠", New(Rank3, Spades)},
		{"10♣", New(Rank10, Clubs)},
		{"Q♦", New(RankQ, Diamonds)},
		{"2♥", New(Rank2, Hearts)},
		{"JOKER", Joker},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := Parse(tt.text)
			if err != nil {
				t.Fatalf("解析失败: %v", err)
			}
			if got != tt.want {
				t.Errorf("期望 %v, 实际 %v", tt.want, got)
			}
			if got.String() != tt.text {
				t.Errorf("期望文本 %s, 实际 %s", tt.text, got.String())
			}
		})
	}
}

// TestParseInvalid 测试非法文本
func TestParseInvalid(t *testing.T) {
	for _, text := range []string{"", "1♠", "JOKER♠", "10", "K?", "11♥"} {
		if _, err := Parse(text); err == nil {
			t.Errorf("期望 %q 解析失败", text)
		}
	}
}

// TestNewDeck 测试生成 54 张牌
func TestNewDeck(t *testing.T) {
	deck := NewDeck()
	if len(deck) != DeckSize {
		t.Fatalf("期望 %d 张, 实际 %d", DeckSize, len(deck))
	}
	if n := CountJokers(deck); n != 2 {
		t.Errorf("期望 2 张王牌, 实际 %d", n)
	}
	for r := Rank3; r <= Rank2; r++ {
		if n := CountRank(deck, r); n != 4 {
			t.Errorf("点数 %s 期望 4 张, 实际 %d", r, n)
		}
	}
}

// TestDealRoundRobin 测试从牌堆尾部轮流发牌
func TestDealRoundRobin(t *testing.T) {
	dealer := NewDealer(rand.New(rand.NewSource(1)))
	deck := NewDeck()
	dealer.Shuffle(deck)

	hands := dealer.Deal(Clone(deck), 5)
	total := 0
	for i, h := range hands {
		total += len(h)
		// 54 = 5*10 + 4，前四个座位多一张
		want := 10
		if i < 4 {
			want = 11
		}
		if len(h) != want {
			t.Errorf("座位 %d 期望 %d 张, 实际 %d", i, want, len(h))
		}
	}
	if total != DeckSize {
		t.Errorf("期望共 %d 张, 实际 %d", DeckSize, total)
	}
	if hands[0][0] != deck[len(deck)-1] {
		t.Errorf("期望第一张来自牌堆尾部")
	}
}

// TestRedistributeKeepsCounts 测试重新分配保持各座位张数
func TestRedistributeKeepsCounts(t *testing.T) {
	dealer := NewDealer(rand.New(rand.NewSource(7)))
	hands := [][]Card{
		MustParseAll("3♠", "4♠", "5♠"),
		MustParseAll("JOKER"),
		nil,
		MustParseAll("2♥", "2♦"),
	}

	out := dealer.Redistribute(hands)
	var before, after []Card
	for i := range hands {
		if len(out[i]) != len(hands[i]) {
			t.Errorf("座位 %d 期望 %d 张, 实际 %d", i, len(hands[i]), len(out[i]))
		}
		before = append(before, hands[i]...)
		after = append(after, out[i]...)
	}
	if !ContainsAll(after, before) || len(after) != len(before) {
		t.Errorf("重新分配后牌不守恒: %v -> %v", before, after)
	}
}

// TestContainsAllMultiset 测试多重集合包含
func TestContainsAllMultiset(t *testing.T) {
	hand := MustParseAll("JOKER", "3♠", "3♥")

	if !ContainsAll(hand, MustParseAll("3♠", "JOKER")) {
		t.Error("期望包含")
	}
	if ContainsAll(hand, MustParseAll("JOKER", "JOKER")) {
		t.Error("只有一张王牌，不应包含两张")
	}
	if ContainsAll(hand, MustParseAll("3♣")) {
		t.Error("不应包含 3♣")
	}
}

// TestRemoveAll 测试移除多张牌
func TestRemoveAll(t *testing.T) {
	hand := MustParseAll("JOKER", "JOKER", "3♠")
	out := RemoveAll(hand, MustParseAll("JOKER"))

	if len(out) != 2 || CountJokers(out) != 1 {
		t.Errorf("期望剩余一张王牌和 3♠, 实际 %v", out)
	}
	if len(hand) != 3 {
		t.Error("原切片不应被修改")
	}
}

// TestStrongestWeakest 测试取最强/最弱
func TestStrongestWeakest(t *testing.T) {
	hand := MustParseAll("5♠", "JOKER", "2♥", "3♦", "K♣")

	strong := Strongest(hand, 2)
	if strong[0] != Joker || strong[1] != New(Rank2, Hearts) {
		t.Errorf("期望 [JOKER 2♥], 实际 %v", strong)
	}
	weak := Weakest(hand, 2)
	if weak[0] != New(Rank3, Diamonds) || weak[1] != New(Rank5, Spades) {
		t.Errorf("期望 [3♦ 5♠], 实际 %v", weak)
	}
}

// TestClassify 测试组合分类
func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		cards []string
		kind  Kind
		rank  Rank
		top   int
	}{
		{"empty", nil, KindEmpty, 0, 0},
		{"single", []string{"7♦"}, KindSet, Rank7, -1},
		{"pair with joker", []string{"9♠", "JOKER"}, KindSet, Rank9, -1},
		{"single joker", []string{"JOKER"}, KindSet, RankJoker, -1},
		{"mixed ranks", []string{"9♠", "10♥"}, KindInvalid, 0, -1},
		{"straight", []string{"5♥", "3♥", "4♥"}, KindStraight, 0, Rank5.Index()},
		{"joker gap", []string{"10♠", "JOKER", "Q♠"}, KindStraight, 0, RankQ.Index()},
		{"joker extends top", []string{"10♠", "J♠", "JOKER"}, KindStraight, 0, RankQ.Index()},
		{"capped at 2", []string{"A♣", "2♣", "JOKER"}, KindStraight, 0, Rank2.Index()},
		{"all jokers", []string{"JOKER", "JOKER", "JOKER"}, KindStraight, RankJoker, MaxIndex},
		{"mixed suits", []string{"10♠", "JOKER", "Q♥"}, KindInvalid, 0, -1},
		{"gap too wide", []string{"3♦", "JOKER", "7♦"}, KindInvalid, 0, -1},
		{"duplicate rank", []string{"3♦", "3♦", "4♦"}, KindInvalid, 0, -1},
		{"no wrap", []string{"A♠", "2♠", "3♠"}, KindInvalid, 0, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			combo := Classify(MustParseAll(tt.cards...))
			if combo.Kind != tt.kind {
				t.Fatalf("期望类型 %s, 实际 %s", tt.kind, combo.Kind)
			}
			switch tt.kind {
			case KindSet:
				if combo.Rank != tt.rank {
					t.Errorf("期望点数 %s, 实际 %s", tt.rank, combo.Rank)
				}
			case KindStraight:
				if combo.Top != tt.top {
					t.Errorf("期望顶端 %d, 实际 %d", tt.top, combo.Top)
				}
			}
		})
	}
}

// TestAllSpades 测试全黑桃判定
func TestAllSpades(t *testing.T) {
	tests := []struct {
		cards []string
		want  bool
	}{
		{[]string{"7♠"}, true},
		{[]string{"7♠", "7♥"}, false},
		{[]string{"7♠", "JOKER"}, false},
		{[]string{"5♠", "JOKER", "7♠"}, true},
		{[]string{"5♠", "6♠", "7♠"}, true},
		{[]string{"JOKER", "JOKER", "JOKER"}, false},
	}

	for _, tt := range tests {
		if got := Classify(MustParseAll(tt.cards...)).AllSpades(); got != tt.want {
			t.Errorf("%v: 期望 %v, 实际 %v", tt.cards, tt.want, got)
		}
	}
}

// TestAsJokerCombination 测试全王牌组合充当同点数组合
func TestAsJokerCombination(t *testing.T) {
	combo := Classify(MustParseAll("JOKER", "JOKER", "JOKER"))
	set := combo.As(KindSet)
	if set.Kind != KindSet || set.Rank != RankJoker {
		t.Errorf("期望王牌三张组合, 实际 %+v", set)
	}

	plain := Classify(MustParseAll("4♠", "5♠", "6♠"))
	if plain.As(KindSet).Kind != KindStraight {
		t.Error("非全王牌组合不应转换")
	}
}

// TestUnmarshalText 测试 JSON 文本反序列化入口
func TestUnmarshalText(t *testing.T) {
	var c Card
	if err := c.UnmarshalText([]byte("K♥")); err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if c != New(RankK, Hearts) {
		t.Errorf("期望 K♥, 实际 %v", c)
	}
	if err := c.UnmarshalText([]byte("bad")); err == nil {
		t.Error("期望解析失败")
	}
}
