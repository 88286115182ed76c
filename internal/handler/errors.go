package handler

import (
	"errors"

	"sudooom.daifugo/internal/game/daifugo"
	"sudooom.daifugo/internal/room"
	appErrors "sudooom.daifugo/pkg/errors"
)

// roomErrors 房间错误对应的错误码
var roomErrors = map[error]*appErrors.AppError{
	room.ErrRoomNotFound: appErrors.ErrRoomNotFound,
	room.ErrRoomLimit:    appErrors.ErrRoomLimit,
	room.ErrInvalidName:  appErrors.ErrInvalidName,
	room.ErrEmptyMessage: appErrors.ErrEmptyMessage,
	room.ErrRoomExists:   appErrors.ErrRoomExists,
}

// gameErrors 引擎错误按类别对应的错误码
var gameErrors = []struct {
	app  *appErrors.AppError
	errs []*daifugo.GameError
}{
	{appErrors.ErrNotYourTurn, []*daifugo.GameError{daifugo.ErrNotYourTurn}},
	{appErrors.ErrInvalidPlay, []*daifugo.GameError{
		daifugo.ErrCardNotInHand,
		daifugo.ErrGiveCardNotInHand,
		daifugo.ErrTakeCardNotInTarget,
		daifugo.ErrInvalidCombination,
		daifugo.ErrTypeMismatch,
		daifugo.ErrCountMismatch,
		daifugo.ErrStraightLength,
		daifugo.ErrRankNotHigher,
		daifugo.ErrStraightNotHigher,
		daifugo.ErrForbiddenPlay,
		daifugo.ErrGiveCount,
		daifugo.ErrInvalidDirection,
		daifugo.ErrInvalidTarget,
	}},
	{appErrors.ErrEffectNotReady, []*daifugo.GameError{
		daifugo.ErrNoDiscard,
		daifugo.ErrNoSwap,
		daifugo.ErrNoTake,
		daifugo.ErrNoGivePending,
		daifugo.ErrGiveNotAllowed,
	}},
	{appErrors.ErrGameState, []*daifugo.GameError{
		daifugo.ErrGameNotStarted,
		daifugo.ErrGameAlreadyStarted,
		daifugo.ErrRoundNotOver,
		daifugo.ErrNotEnoughPlayers,
	}},
	{appErrors.ErrPlayerNotFound, []*daifugo.GameError{
		daifugo.ErrPlayerNotFound,
		daifugo.ErrBotNotFound,
	}},
	{appErrors.ErrInvalidSetting, []*daifugo.GameError{
		daifugo.ErrInvalidRuleKey,
		daifugo.ErrInvalidRuleValue,
		daifugo.ErrInvalidTone,
		daifugo.ErrInvalidDifficulty,
	}},
}

// toAppError 把服务层错误转换为对外错误码
//
// 引擎错误的消息使用错误代码（如 RANK_NOT_HIGHER），客户端可以按代码区分具体原因。
func toAppError(err error) *appErrors.AppError {
	var appErr *appErrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	for target, mapped := range roomErrors {
		if errors.Is(err, target) {
			return mapped.Wrap(err)
		}
	}

	var ge *daifugo.GameError
	if errors.As(err, &ge) {
		for _, group := range gameErrors {
			for _, e := range group.errs {
				if errors.Is(ge, e) {
					return group.app.Wrap(err).WithMessage(ge.Code)
				}
			}
		}
		return appErrors.ErrInvalidPlay.Wrap(err).WithMessage(ge.Code)
	}
	return appErrors.ErrServerError.Wrap(err)
}

// errorContext 引擎错误的上下文，其他错误返回 nil
func errorContext(err error) map[string]any {
	var ge *daifugo.GameError
	if errors.As(err, &ge) && len(ge.Context) > 0 {
		return ge.Context
	}
	return nil
}
