package game

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ActionKind 动作类型
type ActionKind string

const (
	ActionMove ActionKind = "MOVE"
	ActionTurn ActionKind = "TURN"
	ActionAim  ActionKind = "AIM"
	ActionFire ActionKind = "FIRE"
	ActionWait ActionKind = "WAIT"
)

const (
	MaxMoveSteps = 2
	MaxAimDelta  = 2
)

// Action 一个回合内某个角色提交的唯一动作
// Steps 仅对 MOVE 有效，DX/DY 仅对 AIM 有效
type Action struct {
	Kind  ActionKind `json:"type"`
	Steps int        `json:"steps,omitempty"`
	DX    int        `json:"dx,omitempty"`
	DY    int        `json:"dy,omitempty"`
}

func (a Action) String() string {
	switch a.Kind {
	case ActionMove:
		return fmt.Sprintf("MOVE(%d)", a.Steps)
	case ActionAim:
		return fmt.Sprintf("AIM(%d,%d)", a.DX, a.DY)
	}
	return string(a.Kind)
}

// DecodeAction 解析 JSON 载荷并校验
func DecodeAction(raw []byte) (Action, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return Action{}, fmt.Errorf("%w: %v", ErrInvalidAction, err)
	}
	return ParseAction(m)
}

// ParseAction 将未定型的载荷规范化为 Action
// 任何字段缺失、非有限数、非整数或越界都返回 ErrInvalidAction；无副作用
func ParseAction(payload map[string]any) (Action, error) {
	if payload == nil {
		return Action{}, fmt.Errorf("%w: empty payload", ErrInvalidAction)
	}
	t, _ := payload["type"].(string)
	switch ActionKind(strings.ToUpper(strings.TrimSpace(t))) {
	case ActionMove:
		steps, err := intField(payload, "steps", MaxMoveSteps)
		if err != nil {
			return Action{}, err
		}
		return Action{Kind: ActionMove, Steps: steps}, nil
	case ActionAim:
		dx, err := intField(payload, "dx", MaxAimDelta)
		if err != nil {
			return Action{}, err
		}
		dy, err := intField(payload, "dy", MaxAimDelta)
		if err != nil {
			return Action{}, err
		}
		return Action{Kind: ActionAim, DX: dx, DY: dy}, nil
	case ActionTurn:
		return Action{Kind: ActionTurn}, nil
	case ActionFire:
		return Action{Kind: ActionFire}, nil
	case ActionWait:
		return Action{Kind: ActionWait}, nil
	}
	return Action{}, fmt.Errorf("%w: unknown type %q", ErrInvalidAction, t)
}

// intField 读取 [-limit, limit] 内的整数字段；接受 JSON 数字或数字字符串
func intField(payload map[string]any, key string, limit int) (int, error) {
	v, ok := payload[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("%w: missing %s", ErrInvalidAction, key)
	}
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s is not a number", ErrInvalidAction, key)
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s is not a number", ErrInvalidAction, key)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("%w: %s has type %T", ErrInvalidAction, key, v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %s is not finite", ErrInvalidAction, key)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidAction, key)
	}
	if f < float64(-limit) || f > float64(limit) {
		return 0, fmt.Errorf("%w: %s=%v out of range [-%d,%d]", ErrInvalidAction, key, f, limit, limit)
	}
	return int(f), nil
}
