// Package archive 记录每个已结算回合（只追加的审计日志，不会回读进房间）
package archive

import (
	"context"
	"errors"
	"time"

	"tankarena/game"
)

//go:generate mockgen -destination=mock/mock_recorder.go -package=archivemock tankarena/archive Recorder

// ErrQueueFull 异步队列已满，条目被丢弃
var ErrQueueFull = errors.New("archive: queue full")

// ErrClosed 记录器已关闭
var ErrClosed = errors.New("archive: closed")

// Entry 一条回合存档；Reset 为 true 时表示房间被重开
type Entry struct {
	RoomID     string                    `json:"roomId"`
	Turn       int                       `json:"turn"`
	Reset      bool                      `json:"reset,omitempty"`
	Actions    map[game.Role]game.Action `json:"actions,omitempty"`
	Explosions []game.Explosion          `json:"explosions,omitempty"`
	MoveBounce bool                      `json:"moveBounce,omitempty"`
	Score      map[game.Role]int         `json:"score"`
	At         time.Time                 `json:"at"`
}

// FromResolution 由一次回合结算构造存档条目
func FromResolution(roomID string, res *game.Resolution, at time.Time) Entry {
	return Entry{
		RoomID:     roomID,
		Turn:       res.Record.Turn,
		Actions:    res.Actions,
		Explosions: res.Record.Explosions,
		MoveBounce: res.Record.MoveBounce,
		Score:      res.Score,
		At:         at,
	}
}

// Recorder 存档后端
type Recorder interface {
	// Record 追加一条记录
	Record(ctx context.Context, e Entry) error

	// History 按时间顺序返回某房间最近 limit 条记录
	History(ctx context.Context, roomID string, limit int) ([]Entry, error)

	Close() error
}

// Nop 不做任何事的记录器（backend: none）
type Nop struct{}

func (Nop) Record(context.Context, Entry) error { return nil }
func (Nop) History(context.Context, string, int) ([]Entry, error) {
	return nil, nil
}
func (Nop) Close() error { return nil }

var _ Recorder = Nop{}
