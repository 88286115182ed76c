package daifugo

import (
	"sudooom.daifugo/internal/game/card"
)

// Beats 判断 cand 能否压过 center，能压过时返回 nil
//
// 判定顺序：牌型、张数、2 之后禁止 8、8 清场、全黑桃、黑桃3压王牌，最后按强弱比较（革命时反转）。
func Beats(center, cand card.Combination, revolution bool, rules Rules) error {
	if center.IsEmpty() {
		return nil
	}
	if cand.Kind == card.KindInvalid || cand.IsEmpty() {
		return ErrInvalidCombination
	}

	// 全王牌组合可以充当中央的牌型
	cand = cand.As(center.Kind)
	center = center.As(cand.Kind)

	if cand.Kind != center.Kind {
		return ErrTypeMismatch
	}
	if cand.Len() != center.Len() {
		if cand.Kind == card.KindStraight {
			return ErrStraightLength
		}
		return ErrCountMismatch
	}

	if rules.Block8After2 && center.HasRank(card.Rank2) && cand.HasRank(card.Rank8) && !cand.HasJoker() {
		return ErrForbiddenPlay
	}
	if cand.HasRank(card.Rank8) {
		return nil
	}
	if cand.AllSpades() && !center.AllSpades() {
		return nil
	}
	if spade3Applies(center, cand, rules) {
		return nil
	}
	if stronger(cand, center, revolution) {
		return nil
	}
	if cand.Kind == card.KindStraight {
		return ErrStraightNotHigher
	}
	return ErrRankNotHigher
}

// spade3Applies 黑桃3压王牌
func spade3Applies(center, cand card.Combination, rules Rules) bool {
	if !rules.Spade3OverJoker || !center.HasJoker() || !cand.HasSpade3() {
		return false
	}
	return !rules.Spade3SingleOnly || cand.Len() == 1
}

// stronger 普通强弱比较；全王牌的同点数组合始终最强
func stronger(a, b card.Combination, revolution bool) bool {
	if a.Kind == card.KindSet {
		aJoker := a.Rank == card.RankJoker
		bJoker := b.Rank == card.RankJoker
		if aJoker || bJoker {
			return aJoker && !bJoker
		}
	}
	if revolution {
		return a.Strength() < b.Strength()
	}
	return a.Strength() > b.Strength()
}
