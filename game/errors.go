package game

import "errors"

// 引擎层错误均为“静默丢弃”语义：调用方据此计数/记录日志，不向客户端回传
var (
	ErrInvalidAction       = errors.New("game: invalid action")
	ErrDuplicateSubmission = errors.New("game: action already pending for this turn")
	ErrNotCombatant        = errors.New("game: role cannot act")
	ErrInvalidMap          = errors.New("game: invalid map")
)
