package card

import (
	"fmt"
	"strings"
)

// Rank 牌的点数，按从弱到强排列：3 4 5 6 7 8 9 10 J Q K A 2
type Rank int8

const (
	Rank3 Rank = iota
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
	Rank9
	Rank10
	RankJ
	RankQ
	RankK
	RankA
	Rank2
	RankJoker
)

// MaxIndex 普通点数的最大索引（2）
const MaxIndex = int(Rank2)

var rankSymbols = [...]string{"3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A", "2", "JOKER"}

// String 点数符号
func (r Rank) String() string {
	if r < Rank3 || r > RankJoker {
		return fmt.Sprintf("Rank(%d)", int(r))
	}
	return rankSymbols[r]
}

// Index 点数在强弱序列中的位置
func (r Rank) Index() int {
	return int(r)
}

// ParseRank 解析点数符号（"3".."10","J","Q","K","A","2","JOKER"）
func ParseRank(s string) (Rank, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	for i, sym := range rankSymbols {
		if sym == s {
			return Rank(i), nil
		}
	}
	return 0, fmt.Errorf("invalid rank %q", s)
}

// Suit 花色，JOKER 没有花色
type Suit int8

const (
	SuitNone Suit = iota
	Spades
	Clubs
	Diamonds
	Hearts
)

var suitGlyphs = map[Suit]string{
	Spades:   "♠",
	Clubs:    "♣",
	Diamonds: "♦",
	Hearts:   "♥",
}

// Suits 四种花色（发牌顺序）
var Suits = []Suit{Spades, Clubs, Diamonds, Hearts}

// String 花色符号
func (s Suit) String() string {
	if g, ok := suitGlyphs[s]; ok {
		return g
	}
	return ""
}

// Card 一张牌（不可变值类型）
type Card struct {
	Rank Rank
	Suit Suit
}

// Joker 王牌
var Joker = Card{Rank: RankJoker}

// New 创建普通牌
func New(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// IsJoker 是否为王牌
func (c Card) IsJoker() bool {
	return c.Rank == RankJoker
}

// IsSpade3 是否为黑桃3
func (c Card) IsSpade3() bool {
	return c.Rank == Rank3 && c.Suit == Spades
}

// String 文本形式，例如 "10♠"、"JOKER"
func (c Card) String() string {
	if c.IsJoker() {
		return "JOKER"
	}
	return c.Rank.String() + c.Suit.String()
}

// MarshalText 以文本形式序列化
func (c Card) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText 从文本形式解析
func (c *Card) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Parse 解析文本形式的牌
func Parse(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "JOKER") {
		return Joker, nil
	}
	for suit, glyph := range suitGlyphs {
		if strings.HasSuffix(s, glyph) {
			rank, err := ParseRank(strings.TrimSuffix(s, glyph))
			if err != nil || rank == RankJoker {
				return Card{}, fmt.Errorf("invalid card %q", s)
			}
			return Card{Rank: rank, Suit: suit}, nil
		}
	}
	return Card{}, fmt.Errorf("invalid card %q", s)
}

// ParseAll 解析多张牌
func ParseAll(items []string) ([]Card, error) {
	cards := make([]Card, 0, len(items))
	for _, item := range items {
		c, err := Parse(item)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// MustParseAll 解析多张牌，失败时 panic（测试用）
func MustParseAll(items ...string) []Card {
	cards, err := ParseAll(items)
	if err != nil {
		panic(err)
	}
	return cards
}

// Strings 转换为文本列表
func Strings(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}
