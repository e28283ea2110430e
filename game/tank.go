package game

// Role 参与者身份：A、B 为对战双方，其余为观战
type Role string

const (
	RoleA         Role = "A"
	RoleB         Role = "B"
	RoleSpectator Role = "SPECTATOR"
)

// combatants 固定的结算顺序（先 A 后 B）
var combatants = [2]Role{RoleA, RoleB}

// IsCombatant 是否为可行动的对战角色
func (r Role) IsCombatant() bool { return r == RoleA || r == RoleB }

// Other 对手角色；非对战角色返回空
func (r Role) Other() Role {
	switch r {
	case RoleA:
		return RoleB
	case RoleB:
		return RoleA
	}
	return ""
}

func (r Role) index() int {
	if r == RoleB {
		return 1
	}
	return 0
}

// Facing 坦克朝向
type Facing string

const (
	FacingUp    Facing = "UP"
	FacingRight Facing = "RIGHT"
	FacingDown  Facing = "DOWN"
	FacingLeft  Facing = "LEFT"
)

// Orientation 移动轴，由朝向推导
type Orientation string

const (
	Horizontal Orientation = "HORIZONTAL"
	Vertical   Orientation = "VERTICAL"
)

// Clockwise 顺时针旋转 90°：UP→RIGHT→DOWN→LEFT→UP
func (f Facing) Clockwise() Facing {
	switch f {
	case FacingUp:
		return FacingRight
	case FacingRight:
		return FacingDown
	case FacingDown:
		return FacingLeft
	case FacingLeft:
		return FacingUp
	}
	return FacingUp
}

// Vector 朝向对应的单位位移（y 轴向下）
func (f Facing) Vector() Point {
	switch f {
	case FacingUp:
		return Point{Y: -1}
	case FacingDown:
		return Point{Y: 1}
	case FacingLeft:
		return Point{X: -1}
	case FacingRight:
		return Point{X: 1}
	}
	return Point{}
}

func (f Facing) Orientation() Orientation {
	if f == FacingLeft || f == FacingRight {
		return Horizontal
	}
	return Vertical
}

// Tank 每个对战角色的战斗状态
type Tank struct {
	Body   Point
	Facing Facing
	Aim    Point
	Spawn  Point
}

func (t Tank) Orientation() Orientation { return t.Facing.Orientation() }
