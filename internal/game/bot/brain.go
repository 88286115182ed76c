package bot

import (
	"slices"
	"strings"

	"sudooom.daifugo/internal/game/card"
	"sudooom.daifugo/internal/game/daifugo"
)

// jokerStreak 连续 pass 达到该次数后才允许打出含王牌的组合
var jokerStreak = map[daifugo.Difficulty]int{
	daifugo.DifficultyWeak:   4,
	daifugo.DifficultyNormal: 3,
	daifugo.DifficultyStrong: 1,
}

// Situation 机器人做决定时看到的局面
type Situation struct {
	Hand       []card.Card
	Center     card.Combination
	Revolution bool
	Rules      daifugo.Rules
	PassStreak int
	Difficulty daifugo.Difficulty
	// Opponents 其他座位的手牌，用于选择 Q 的目标点数
	Opponents [][]card.Card
}

// Observe 从牌桌读取某个座位的局面
func Observe(t *daifugo.Table, playerID string) Situation {
	s := Situation{
		Hand:       card.Clone(t.Hands[playerID]),
		Center:     t.Center,
		Revolution: t.Revolution,
		Rules:      t.Rules,
		PassStreak: t.PassStreaks[playerID],
		Difficulty: daifugo.DefaultDifficulty,
	}
	for _, p := range t.Players {
		if p.ID == playerID {
			if p.Difficulty != "" {
				s.Difficulty = p.Difficulty
			}
			continue
		}
		s.Opponents = append(s.Opponents, t.Hands[p.ID])
	}
	return s
}

// Decision 机器人的一次行动
type Decision struct {
	Pass   bool
	Cards  []card.Card
	Target *card.Rank
}

// Decide 选择出牌或 pass
//
// 中央有牌时只考虑能压过的同类型同张数组合，优先强度最低的，
// 弱い 先出含王牌的组合，其他难度先出不含王牌的；
// 领出时优先最长的顺子，否则出一张单牌。
func Decide(s Situation) Decision {
	if len(s.Hand) == 0 {
		return Decision{Pass: true}
	}

	var cards []card.Card
	if s.Center.IsEmpty() {
		cards = lead(s)
	} else if options := Candidates(s); len(options) > 0 {
		cards = options[0].Cards
	}
	if len(cards) == 0 {
		return Decision{Pass: true}
	}

	d := Decision{Cards: cards}
	if card.CountRank(cards, card.RankQ) > 0 {
		d.Target = ChooseTarget(s.Opponents)
	}
	return d
}

// Candidates 返回所有能压过中央的组合，按优先顺序排列
func Candidates(s Situation) []card.Combination {
	n := s.Center.Len()
	if n == 0 {
		return nil
	}
	var raw [][]card.Card
	switch s.Center.Kind {
	case card.KindSet:
		raw = sets(s.Hand, n)
	case card.KindStraight:
		raw = straights(s.Hand, n)
	}
	if jokers := jokersOf(s.Hand); len(jokers) >= n {
		raw = append(raw, jokers[:n])
	}

	allowJoker := s.PassStreak >= threshold(s.Difficulty)
	var out []card.Combination
	for _, cards := range dedupe(raw) {
		combo := card.Classify(cards)
		if combo.HasJoker() && !allowJoker {
			continue
		}
		if daifugo.Beats(s.Center, combo, s.Revolution, s.Rules) != nil {
			continue
		}
		out = append(out, combo)
	}

	// 弱い 先用掉王牌，其他难度把王牌留到最后
	jokerFirst := s.Difficulty == daifugo.DifficultyWeak
	slices.SortStableFunc(out, func(a, b card.Combination) int {
		if a.HasJoker() != b.HasJoker() {
			if a.HasJoker() == jokerFirst {
				return -1
			}
			return 1
		}
		return power(a, s.Revolution) - power(b, s.Revolution)
	})
	return out
}

// lead 领出：最长的顺子，没有顺子时出一张单牌
func lead(s Situation) []card.Card {
	aggressive := s.Difficulty == daifugo.DifficultyStrong
	allowJoker := s.PassStreak >= threshold(s.Difficulty)

	var best card.Combination
	for n := len(s.Hand); n >= card.MinStraightLen && best.IsEmpty(); n-- {
		for _, cards := range straights(s.Hand, n) {
			combo := card.Classify(cards)
			if combo.HasJoker() && !allowJoker {
				continue
			}
			if best.IsEmpty() || preferLead(combo, best, s.Revolution, aggressive) {
				best = combo
			}
		}
	}
	if !best.IsEmpty() {
		return best.Cards
	}

	// 单牌：强势机器人出最强的一张，王牌也算在内
	var singles []card.Card
	for _, c := range s.Hand {
		if aggressive || !c.IsJoker() {
			singles = append(singles, c)
		}
	}
	if len(singles) == 0 {
		return card.Clone(s.Hand[:1])
	}
	slices.SortStableFunc(singles, func(a, b card.Card) int {
		if a.IsJoker() || b.IsJoker() {
			return boolInt(a.IsJoker()) - boolInt(b.IsJoker())
		}
		return power(card.Classify([]card.Card{a}), s.Revolution) - power(card.Classify([]card.Card{b}), s.Revolution)
	})
	if aggressive {
		return []card.Card{singles[len(singles)-1]}
	}
	return []card.Card{singles[0]}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func preferLead(a, b card.Combination, revolution, aggressive bool) bool {
	if a.HasJoker() != b.HasJoker() {
		return !a.HasJoker()
	}
	if aggressive {
		return power(a, revolution) > power(b, revolution)
	}
	return power(a, revolution) < power(b, revolution)
}

// power 组合的实际强度，革命时反转
func power(c card.Combination, revolution bool) int {
	if revolution {
		return -c.Strength()
	}
	return c.Strength()
}

func threshold(d daifugo.Difficulty) int {
	if n, ok := jokerStreak[d]; ok {
		return n
	}
	return jokerStreak[daifugo.DefaultDifficulty]
}

// sets 手牌中所有 n 张的同点数组合，点数不足时可以用王牌补
func sets(hand []card.Card, n int) [][]card.Card {
	jokers := jokersOf(hand)
	byRank := make(map[card.Rank][]card.Card)
	for _, c := range hand {
		if !c.IsJoker() {
			byRank[c.Rank] = append(byRank[c.Rank], c)
		}
	}

	var out [][]card.Card
	for r := card.Rank3; r <= card.Rank2; r++ {
		group := byRank[r]
		if len(group) == 0 {
			continue
		}
		card.SortByRank(group)
		if len(group) >= n {
			out = append(out, card.Clone(group[:n]))
			continue
		}
		if missing := n - len(group); missing <= len(jokers) {
			out = append(out, append(card.Clone(group), jokers[:missing]...))
		}
	}
	return out
}

// straights 手牌中所有 n 张的同花顺，缺口可以用王牌补
func straights(hand []card.Card, n int) [][]card.Card {
	if n < card.MinStraightLen || n > card.MaxIndex+1 {
		return nil
	}
	jokers := jokersOf(hand)

	var out [][]card.Card
	for _, suit := range card.Suits {
		for lo := 0; lo+n-1 <= card.MaxIndex; lo++ {
			var seq []card.Card
			for r := lo; r < lo+n; r++ {
				c := card.New(card.Rank(r), suit)
				if card.Contains(hand, c) {
					seq = append(seq, c)
				}
			}
			missing := n - len(seq)
			if len(seq) == 0 || missing > len(jokers) {
				continue
			}
			out = append(out, append(seq, jokers[:missing]...))
		}
	}
	return out
}

func jokersOf(hand []card.Card) []card.Card {
	var out []card.Card
	for _, c := range hand {
		if c.IsJoker() {
			out = append(out, c)
		}
	}
	return out
}

func dedupe(groups [][]card.Card) [][]card.Card {
	seen := make(map[string]bool, len(groups))
	out := groups[:0]
	for _, g := range groups {
		key := strings.Join(card.Strings(g), ",")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, g)
	}
	return out
}

// ChooseTarget 选择 Q 的目标：其他座位手里最多的点数，数量相同时选较弱的点数，王牌排在最后
func ChooseTarget(opponents [][]card.Card) *card.Rank {
	counts := make(map[card.Rank]int)
	for _, hand := range opponents {
		for _, c := range hand {
			counts[c.Rank]++
		}
	}

	var target *card.Rank
	best := 0
	for r := card.Rank3; r <= card.RankJoker; r++ {
		if counts[r] > best {
			best = counts[r]
			target = &r
		}
	}
	return target
}

// ChooseDiscard 出 10 之后选择弃牌：最弱的非 10 非王牌，没有时取最弱的一张
func ChooseDiscard(hand []card.Card) (card.Card, bool) {
	var options []card.Card
	for _, c := range hand {
		if !c.IsJoker() && c.Rank != card.Rank10 {
			options = append(options, c)
		}
	}
	if len(options) == 0 {
		options = hand
	}
	if len(options) == 0 {
		return card.Card{}, false
	}
	return card.Weakest(options, 1)[0], true
}

// ChooseGive 交牌时交出最弱的 n 张
func ChooseGive(hand []card.Card, n int) []card.Card {
	return card.Weakest(hand, n)
}
