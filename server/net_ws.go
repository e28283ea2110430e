package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const maxRoomIDLen = 64

// ClientConn 负责发送（写）数据到客户端的轻量包装
type ClientConn struct {
	ws   *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func NewClientConn(ws *websocket.Conn, buffer int) *ClientConn {
	if buffer <= 0 {
		buffer = 64
	}
	return &ClientConn{
		ws:   ws,
		send: make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

// Enqueue 将要发送的消息压入队列（非阻塞，满则丢弃），不会阻塞回合结算
func (c *ClientConn) Enqueue(b []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

// Close 关闭底层连接并通知写协程退出；可重复调用
// send 通道不关闭，避免与并发的 Enqueue 竞争
func (c *ClientConn) Close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
}

// writePump 独立协程，负责从 send 队列写出到 WS，并定期发送 ping
func (c *ClientConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.ping(); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// readPump 读取客户端消息：join_room / submit_action / reset_game
// 每条连接只加入一个房间；按房间号查找，房间被回收重建后仍能继续操作
// 退出时先离开房间（释放角色、可能回收房间），再关闭连接
func (c *ClientConn) readPump(rooms *RoomManager, id PlayerID, initialRoom string) {
	var roomID string
	defer c.Close()
	defer func() {
		if roomID != "" {
			rooms.Leave(roomID, id)
		}
	}()

	join := func(rid string) {
		rid = strings.TrimSpace(rid)
		if roomID != "" || rid == "" || len(rid) > maxRoomIDLen {
			return
		}
		_, role, err := rooms.Join(rid, id, c)
		if err != nil {
			Log.Warnw("join failed", "room", rid, "player", id, "err", err)
			return
		}
		roomID = rid
		Log.Debugw("joined", "room", rid, "player", id, "role", role)
	}
	current := func() *Room {
		if roomID == "" {
			return nil
		}
		r, err := rooms.Get(roomID)
		if err != nil {
			return nil
		}
		return r
	}

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.extendReadDeadline()
	c.ws.SetPongHandler(func(string) error { return c.extendReadDeadline() })

	if initialRoom != "" {
		join(initialRoom)
	}

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		_ = c.extendReadDeadline()

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}
		switch env.Type {
		case MsgJoinRoom:
			var p JoinRoomPayload
			if err := json.Unmarshal(env.Payload, &p); err != nil {
				continue
			}
			join(p.RoomID)
		case MsgSubmitAction:
			room := current()
			if room == nil {
				continue
			}
			// 非法载荷交给引擎校验并计数
			var payload map[string]any
			_ = json.Unmarshal(env.Payload, &payload)
			_ = room.Submit(id, payload)
		case MsgResetGame:
			if room := current(); room != nil {
				_ = room.Reset(id)
			}
		}
	}
}

// HandleWS WebSocket 接入：/ws 或 /ws?room=room-1（带 room 时自动加入）
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		Log.Warnf("upgrade error: %v", err)
		return
	}

	id := PlayerID(uuid.NewString())
	client := NewClientConn(ws, s.cfg.SendBuffer)

	go client.writePump()
	go client.readPump(s.Rooms, id, r.URL.Query().Get("room"))
}
