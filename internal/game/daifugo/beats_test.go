package daifugo

import (
	"errors"
	"testing"

	"sudooom.daifugo/internal/game/card"
)

func combo(items ...string) card.Combination {
	return card.Classify(card.MustParseAll(items...))
}

// TestBeats 测试压牌判定与各项例外
func TestBeats(t *testing.T) {
	singleOnly := DefaultRules()
	anySize := DefaultRules()
	anySize.Spade3SingleOnly = false
	noBlock := DefaultRules()
	noBlock.Block8After2 = false

	tests := []struct {
		name       string
		center     card.Combination
		cand       card.Combination
		revolution bool
		rules      Rules
		want       error
	}{
		{"empty center", combo(), combo("3♦"), false, singleOnly, nil},
		{"higher single", combo("5♥"), combo("9♦"), false, singleOnly, nil},
		{"lower single", combo("9♥"), combo("5♦"), false, singleOnly, ErrRankNotHigher},
		{"equal single", combo("9♥"), combo("9♦"), false, singleOnly, ErrRankNotHigher},
		{"revolution inverts", combo("9♥"), combo("5♦"), true, singleOnly, nil},
		{"revolution rejects higher", combo("5♥"), combo("9♦"), true, singleOnly, ErrRankNotHigher},
		{"type mismatch", combo("5♥", "5♦"), combo("6♣", "7♣", "8♣"), false, singleOnly, ErrTypeMismatch},
		{"count mismatch", combo("5♥", "5♦"), combo("9♣"), false, singleOnly, ErrCountMismatch},
		{"straight length", combo("3♥", "4♥", "5♥"), combo("9♣", "10♣", "J♣", "Q♣"), false, singleOnly, ErrStraightLength},
		{"higher straight", combo("3♥", "4♥", "5♥"), combo("4♣", "5♣", "6♣"), false, singleOnly, nil},
		{"straight not higher", combo("6♥", "7♥", "JOKER"), combo("4♦", "5♦", "6♦"), false, singleOnly, ErrStraightNotHigher},
		{"eight clears", combo("K♥"), combo("8♦"), false, singleOnly, nil},
		{"eight blocked after two", combo("2♥"), combo("8♦"), false, singleOnly, ErrForbiddenPlay},
		{"spade eight blocked after two", combo("2♥"), combo("8♠"), false, singleOnly, ErrForbiddenPlay},
		{"eight with joker after two", combo("2♥", "2♦"), combo("8♦", "JOKER"), false, singleOnly, nil},
		{"block disabled", combo("2♥"), combo("8♦"), false, noBlock, nil},
		{"all spades beats", combo("K♥"), combo("4♠"), false, singleOnly, nil},
		{"all spades vs all spades", combo("K♠"), combo("4♠"), false, singleOnly, ErrRankNotHigher},
		{"spade straight beats", combo("9♥", "10♥", "J♥"), combo("3♠", "JOKER", "5♠"), false, singleOnly, nil},
		{"spade3 pair over joker", combo("9♦", "JOKER"), combo("3♠", "3♥"), false, anySize, nil},
		{"spade3 pair single only", combo("9♦", "JOKER"), combo("3♠", "3♥"), false, singleOnly, ErrRankNotHigher},
		{"joker single strongest", combo("JOKER"), combo("2♦"), false, singleOnly, ErrRankNotHigher},
		{"joker single under revolution", combo("3♦"), combo("JOKER"), true, singleOnly, nil},
		{"joker pair beats twos", combo("2♦", "2♥"), combo("JOKER", "JOKER"), false, singleOnly, nil},
		{"joker triple as set", combo("2♦", "2♥", "2♣"), combo("JOKER", "JOKER", "JOKER"), false, singleOnly, nil},
		{"set over joker triple", combo("JOKER", "JOKER", "JOKER"), combo("2♦", "2♥", "2♣"), false, singleOnly, ErrRankNotHigher},
		{"invalid candidate", combo("5♥"), combo("5♦", "6♣"), false, singleOnly, ErrInvalidCombination},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Beats(tt.center, tt.cand, tt.revolution, tt.rules)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("期望可以压过, 实际 %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("期望 %v, 实际 %v", tt.want, err)
			}
		})
	}
}

// TestRevolutionInversion 同类型同张数时，革命前后胜负相反
func TestRevolutionInversion(t *testing.T) {
	pairs := [][2]card.Combination{
		{combo("K♥", "K♦"), combo("6♥", "6♦")},
		{combo("9♥", "10♥", "J♥"), combo("4♦", "5♦", "6♦")},
		{combo("2♣"), combo("3♦")},
	}
	rules := DefaultRules()
	for _, p := range pairs {
		high, low := p[0], p[1]
		if err := Beats(low, high, false, rules); err != nil {
			t.Errorf("%v 应压过 %v: %v", high.Cards, low.Cards, err)
		}
		if err := Beats(high, low, false, rules); err == nil {
			t.Errorf("%v 不应压过 %v", low.Cards, high.Cards)
		}
		if err := Beats(high, low, true, rules); err != nil {
			t.Errorf("革命时 %v 应压过 %v: %v", low.Cards, high.Cards, err)
		}
		if err := Beats(low, high, true, rules); err == nil {
			t.Errorf("革命时 %v 不应压过 %v", high.Cards, low.Cards)
		}
	}
}
