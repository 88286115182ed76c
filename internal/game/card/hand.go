package card

import "sort"

// Count 统计某张牌的数量
func Count(cards []Card, target Card) int {
	n := 0
	for _, c := range cards {
		if c == target {
			n++
		}
	}
	return n
}

// Contains 检查是否包含某张牌
func Contains(cards []Card, target Card) bool {
	return Count(cards, target) > 0
}

// ContainsAll 按多重集合检查是否包含全部目标牌（两张 JOKER 需要手里有两张）
func ContainsAll(cards []Card, targets []Card) bool {
	need := make(map[Card]int, len(targets))
	for _, t := range targets {
		need[t]++
	}
	for t, n := range need {
		if Count(cards, t) < n {
			return false
		}
	}
	return true
}

// Remove 移除一张牌，返回新切片
func Remove(cards []Card, target Card) []Card {
	for i, c := range cards {
		if c == target {
			out := make([]Card, 0, len(cards)-1)
			out = append(out, cards[:i]...)
			return append(out, cards[i+1:]...)
		}
	}
	return cards
}

// RemoveAll 移除多张牌
func RemoveAll(cards []Card, targets []Card) []Card {
	out := Clone(cards)
	for _, t := range targets {
		out = Remove(out, t)
	}
	return out
}

// Clone 克隆牌组
func Clone(cards []Card) []Card {
	if cards == nil {
		return nil
	}
	out := make([]Card, len(cards))
	copy(out, cards)
	return out
}

// CountRank 统计某点数的数量（不含王牌）
func CountRank(cards []Card, r Rank) int {
	n := 0
	for _, c := range cards {
		if c.Rank == r {
			n++
		}
	}
	return n
}

// CountJokers 统计王牌数量
func CountJokers(cards []Card) int {
	return CountRank(cards, RankJoker)
}

// SortByRank 按点数从弱到强排序，王牌最后，同点数按花色
func SortByRank(cards []Card) {
	sort.SliceStable(cards, func(i, j int) bool {
		if cards[i].Rank != cards[j].Rank {
			return cards[i].Rank < cards[j].Rank
		}
		return cards[i].Suit < cards[j].Suit
	})
}

// Strongest 返回最强的 n 张牌（从强到弱）
func Strongest(cards []Card, n int) []Card {
	sorted := Clone(cards)
	SortByRank(sorted)
	if n > len(sorted) {
		n = len(sorted)
	}
	out := make([]Card, 0, n)
	for i := len(sorted) - 1; i >= len(sorted)-n; i-- {
		out = append(out, sorted[i])
	}
	return out
}

// Weakest 返回最弱的 n 张牌（从弱到强）
func Weakest(cards []Card, n int) []Card {
	sorted := Clone(cards)
	SortByRank(sorted)
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
