package server

import (
	"encoding/json"

	"tankarena/game"
)

// 消息类型（WebSocket 文本帧）
// 示例：{"type":"submit_action","payload":{"type":"MOVE","steps":1}}
const (
	MsgJoinRoom     = "join_room"
	MsgSubmitAction = "submit_action"
	MsgResetGame    = "reset_game"

	MsgYourRole  = "your_role"
	MsgRoomState = "room_state"
)

// Envelope 入站/出站消息外壳
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// JoinRoomPayload join_room 载荷
type JoinRoomPayload struct {
	RoomID string `json:"roomId"`
}

// YourRolePayload 加入后单独发给该连接
type YourRolePayload struct {
	Role   game.Role `json:"role"`
	RoomID string    `json:"roomId"`
}

func encode(msgType string, payload any) ([]byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: msgType, Payload: b})
}
