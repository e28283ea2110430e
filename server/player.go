package server

import "tankarena/game"

// PlayerID 连接身份（每条 WebSocket 连接一个 uuid）
type PlayerID string

// Sender 出站发送端；Enqueue 不得阻塞，返回 false 表示该帧被丢弃
type Sender interface {
	Enqueue(b []byte) bool
}

// Player 房间内的一个连接：对战方或观战者
type Player struct {
	ID   PlayerID
	Role game.Role
	Conn Sender
}
