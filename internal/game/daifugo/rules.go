package daifugo

import (
	"strings"
)

// 规则开关名称
const (
	RuleSpade3OverJoker      = "spade3_over_joker"
	RuleSpade3SingleOnly     = "spade3_single_only"
	RuleBlock8After2         = "block_8_after_2"
	RuleAutoPassNoJokerVsTwo = "auto_pass_when_no_joker_vs_2"
)

// Rules 房间规则开关
type Rules struct {
	Spade3OverJoker      bool `json:"spade3_over_joker"`
	Spade3SingleOnly     bool `json:"spade3_single_only"`
	Block8After2         bool `json:"block_8_after_2"`
	AutoPassNoJokerVsTwo bool `json:"auto_pass_when_no_joker_vs_2"`
}

// DefaultRules 默认全部开启
func DefaultRules() Rules {
	return Rules{
		Spade3OverJoker:      true,
		Spade3SingleOnly:     true,
		Block8After2:         true,
		AutoPassNoJokerVsTwo: true,
	}
}

// Map 以名称为键导出
func (r Rules) Map() map[string]bool {
	return map[string]bool{
		RuleSpade3OverJoker:      r.Spade3OverJoker,
		RuleSpade3SingleOnly:     r.Spade3SingleOnly,
		RuleBlock8After2:         r.Block8After2,
		RuleAutoPassNoJokerVsTwo: r.AutoPassNoJokerVsTwo,
	}
}

// Patch 按名称更新规则，任一键或值非法时不做任何修改
func (r Rules) Patch(updates map[string]any) (Rules, error) {
	next := r
	for key, raw := range updates {
		if _, ok := r.Map()[key]; !ok {
			return r, ErrInvalidRuleKey.WithContext("key", key)
		}
		v, err := parseRuleValue(raw)
		if err != nil {
			return r, err.WithContext("key", key)
		}
		switch key {
		case RuleSpade3OverJoker:
			next.Spade3OverJoker = v
		case RuleSpade3SingleOnly:
			next.Spade3SingleOnly = v
		case RuleBlock8After2:
			next.Block8After2 = v
		case RuleAutoPassNoJokerVsTwo:
			next.AutoPassNoJokerVsTwo = v
		}
	}
	return next, nil
}

// parseRuleValue 解析规则值：布尔、0/1 数字或 true/1/yes/on/enabled、false/0/no/off/disabled 字符串
func parseRuleValue(raw any) (bool, *GameError) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case int:
		return intRuleValue(int64(v))
	case int64:
		return intRuleValue(v)
	case float64:
		if v == 0 || v == 1 {
			return v == 1, nil
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "on", "enabled":
			return true, nil
		case "false", "0", "no", "off", "disabled":
			return false, nil
		}
	}
	return false, ErrInvalidRuleValue.WithContext("value", raw)
}

func intRuleValue(v int64) (bool, *GameError) {
	if v == 0 || v == 1 {
		return v == 1, nil
	}
	return false, ErrInvalidRuleValue.WithContext("value", v)
}
