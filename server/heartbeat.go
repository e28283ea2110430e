package server

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	// 单次写超时
	writeWait = 5 * time.Second
	// 超过该时间未收到任何帧（含 pong）视为断线
	pongWait = 60 * time.Second
	// 服务端 ping 周期，必须小于 pongWait
	pingPeriod = pongWait * 9 / 10
	// 入站消息上限，动作载荷很小
	maxMessageSize = 64 << 10
)

// ping 发送一次心跳；失败说明连接已不可写
func (c *ClientConn) ping() error {
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (c *ClientConn) extendReadDeadline() error {
	return c.ws.SetReadDeadline(time.Now().Add(pongWait))
}
