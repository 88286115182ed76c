package card

// Kind 出牌组合类型
type Kind int

const (
	KindEmpty Kind = iota
	KindSet
	KindStraight
	KindInvalid
)

var kindNames = [...]string{"empty", "set", "straight", "invalid"}

// String 组合类型名称
func (k Kind) String() string {
	if k < KindEmpty || k > KindInvalid {
		return "unknown"
	}
	return kindNames[k]
}

// MinStraightLen 顺子的最小张数
const MinStraightLen = 3

// Combination 已分类的出牌组合
type Combination struct {
	Kind  Kind
	Cards []Card
	// Rank 同点数组合的点数，全部为王牌时为 RankJoker
	Rank Rank
	// Top 顺子可取到的最高位置
	Top int
}

// Classify 对一组牌进行分类
func Classify(cards []Card) Combination {
	if len(cards) == 0 {
		return Combination{Kind: KindEmpty}
	}
	combo := Combination{Cards: Clone(cards), Top: -1}

	// 三张以上全王牌按最高顺子处理，比较时可按同点数组合使用（见 As）
	if len(cards) >= MinStraightLen && CountJokers(cards) == len(cards) {
		combo.Kind = KindStraight
		combo.Rank = RankJoker
		combo.Top = MaxIndex
		return combo
	}
	if rank, ok := setRank(cards); ok {
		combo.Kind = KindSet
		combo.Rank = rank
		return combo
	}
	if top := StraightTop(cards); top >= 0 {
		combo.Kind = KindStraight
		combo.Top = top
		return combo
	}
	combo.Kind = KindInvalid
	return combo
}

// setRank 全部非王牌点数相同时返回该点数
func setRank(cards []Card) (Rank, bool) {
	rank := RankJoker
	for _, c := range cards {
		if c.IsJoker() {
			continue
		}
		if rank == RankJoker {
			rank = c.Rank
			continue
		}
		if c.Rank != rank {
			return 0, false
		}
	}
	return rank, true
}

// StraightTop 返回顺子可取到的最高结束位置，不能组成顺子时返回 -1
//
// 长度为 n 的牌组，只要 13 个点数上存在一个长度为 n 的连续窗口，
// 包含全部非王牌点数（各一次），剩余空位由王牌补足，即为顺子。
// 全部为王牌时返回最高位置。
func StraightTop(cards []Card) int {
	n := len(cards)
	if n < MinStraightLen || n > MaxIndex+1 {
		return -1
	}

	suit := SuitNone
	seen := make(map[Rank]bool, n)
	lo, hi := MaxIndex+1, -1
	for _, c := range cards {
		if c.IsJoker() {
			continue
		}
		if suit == SuitNone {
			suit = c.Suit
		} else if c.Suit != suit {
			return -1
		}
		if seen[c.Rank] {
			return -1
		}
		seen[c.Rank] = true
		idx := c.Rank.Index()
		if idx < lo {
			lo = idx
		}
		if idx > hi {
			hi = idx
		}
	}

	if hi < 0 {
		return MaxIndex
	}
	if hi-lo+1 > n {
		return -1
	}
	// 窗口需覆盖 [lo, hi]，结束位置最高为 lo+n-1，且不能超过 2
	top := lo + n - 1
	if top > MaxIndex {
		top = MaxIndex
	}
	return top
}

// As 全王牌组合可以充当任意类型，其他组合原样返回
func (c Combination) As(kind Kind) Combination {
	if !c.AllJokers() || c.Kind == kind {
		return c
	}
	switch kind {
	case KindSet:
		c.Kind = KindSet
		c.Rank = RankJoker
	case KindStraight:
		if c.Len() < MinStraightLen {
			return c
		}
		c.Kind = KindStraight
		c.Top = MaxIndex
	}
	return c
}

// Len 组合张数
func (c Combination) Len() int {
	return len(c.Cards)
}

// IsEmpty 是否为空
func (c Combination) IsEmpty() bool {
	return c.Kind == KindEmpty
}

// HasRank 是否包含某点数
func (c Combination) HasRank(r Rank) bool {
	return CountRank(c.Cards, r) > 0
}

// HasJoker 是否包含王牌
func (c Combination) HasJoker() bool {
	return CountJokers(c.Cards) > 0
}

// HasSpade3 是否包含黑桃3
func (c Combination) HasSpade3() bool {
	return Contains(c.Cards, New(Rank3, Spades))
}

// AllJokers 是否全部为王牌
func (c Combination) AllJokers() bool {
	return len(c.Cards) > 0 && CountJokers(c.Cards) == len(c.Cards)
}

// AllSpades 是否全部为黑桃
//
// 同点数组合中出现王牌即不成立；顺子只看非王牌，全部为王牌的顺子不成立。
func (c Combination) AllSpades() bool {
	switch c.Kind {
	case KindSet:
		for _, card := range c.Cards {
			if card.Suit != Spades {
				return false
			}
		}
		return len(c.Cards) > 0
	case KindStraight:
		n := 0
		for _, card := range c.Cards {
			if card.IsJoker() {
				continue
			}
			if card.Suit != Spades {
				return false
			}
			n++
		}
		return n > 0
	default:
		return false
	}
}

// Strength 组合的比较位置：同点数组合为点数位置（全王牌为王牌位置），顺子为最高位置
func (c Combination) Strength() int {
	switch c.Kind {
	case KindSet:
		return c.Rank.Index()
	case KindStraight:
		return c.Top
	default:
		return -1
	}
}
