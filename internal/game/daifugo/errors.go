package daifugo

import (
	"fmt"
	"maps"
)

// GameError 游戏错误类型
type GameError struct {
	Code    string         // 错误代码
	Message string         // 错误消息
	Cause   error          // 原因错误
	Context map[string]any // 错误上下文
}

func (e *GameError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *GameError) Unwrap() error {
	return e.Cause
}

// Is 按错误代码比较，便于 errors.Is 匹配带上下文的副本
func (e *GameError) Is(target error) bool {
	t, ok := target.(*GameError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewGameError 创建游戏错误
func NewGameError(code, message string) *GameError {
	return &GameError{
		Code:    code,
		Message: message,
	}
}

func (e *GameError) clone() *GameError {
	c := *e
	c.Context = maps.Clone(e.Context)
	if c.Context == nil {
		c.Context = make(map[string]any)
	}
	return &c
}

// WithCause 返回带原因错误的副本
func (e *GameError) WithCause(cause error) *GameError {
	c := e.clone()
	c.Cause = cause
	return c
}

// WithContext 返回带上下文信息的副本（哨兵错误本身不被修改）
func (e *GameError) WithContext(key string, value any) *GameError {
	c := e.clone()
	c.Context[key] = value
	return c
}

// WithMessage 返回替换消息的副本
func (e *GameError) WithMessage(format string, args ...any) *GameError {
	c := e.clone()
	c.Message = fmt.Sprintf(format, args...)
	return c
}

// 出牌顺序相关错误
var (
	ErrNotYourTurn = NewGameError("NOT_YOUR_TURN", "not your turn")
)

// 手牌相关错误
var (
	ErrCardNotInHand       = NewGameError("CARD_NOT_IN_HAND", "card not in hand")
	ErrGiveCardNotInHand   = NewGameError("GIVE_CARD_NOT_IN_HAND", "give_card not in hand")
	ErrTakeCardNotInTarget = NewGameError("TAKE_CARD_NOT_IN_TARGET", "take_card not in target hand")
)

// 牌型相关错误
var (
	ErrInvalidCombination = NewGameError("INVALID_COMBINATION", "invalid combination of cards")
	ErrTypeMismatch       = NewGameError("TYPE_MISMATCH", "must play same type as center")
	ErrCountMismatch      = NewGameError("COUNT_MISMATCH", "must play same number of cards as center")
	ErrStraightLength     = NewGameError("STRAIGHT_LENGTH_MISMATCH", "must play same number of cards as center (straight length)")
	ErrRankNotHigher      = NewGameError("RANK_NOT_HIGHER", "played rank is not higher than center")
	ErrStraightNotHigher  = NewGameError("STRAIGHT_NOT_HIGHER", "played straight is not higher than center")
	ErrForbiddenPlay      = NewGameError("FORBIDDEN_PLAY", "an 8 cannot be played over a 2 without a joker")
)

// 一次性效果相关错误
var (
	ErrNoDiscard        = NewGameError("NO_DISCARD_ALLOWED", "no discard allowed")
	ErrNoSwap           = NewGameError("NO_SWAP_ALLOWED", "no swap allowed")
	ErrNoTake           = NewGameError("NO_TAKE_ALLOWED", "no take allowed")
	ErrNoGivePending    = NewGameError("NO_GIVE_PENDING", "no give pending for player")
	ErrGiveNotAllowed   = NewGameError("GIVE_NOT_ALLOWED", "can only give after you played a 7")
	ErrInvalidDirection = NewGameError("INVALID_DIRECTION", "invalid direction")
	ErrGiveCount        = NewGameError("GIVE_COUNT_MISMATCH", "wrong number of cards to give")
	ErrInvalidTarget    = NewGameError("INVALID_TARGET", "invalid target player")
)

// 牌局生命周期相关错误
var (
	ErrGameNotStarted     = NewGameError("GAME_NOT_STARTED", "game not started")
	ErrGameAlreadyStarted = NewGameError("GAME_ALREADY_STARTED", "game already started")
	ErrRoundNotOver       = NewGameError("ROUND_NOT_OVER", "previous round is not over")
	ErrNotEnoughPlayers   = NewGameError("NOT_ENOUGH_PLAYERS", "no players in room")
	ErrPlayerNotFound     = NewGameError("PLAYER_NOT_FOUND", "player not found")
	ErrBotNotFound        = NewGameError("BOT_NOT_FOUND", "bot not found")
)

// 配置相关错误
var (
	ErrInvalidRuleKey    = NewGameError("INVALID_RULE_KEY", "unknown rule key")
	ErrInvalidRuleValue  = NewGameError("INVALID_RULE_VALUE", "invalid rule value")
	ErrInvalidTone       = NewGameError("INVALID_TONE", "invalid tone")
	ErrInvalidDifficulty = NewGameError("INVALID_DIFFICULTY", "invalid difficulty")
)
