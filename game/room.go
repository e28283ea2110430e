package game

import (
	"fmt"
	"math/rand"
	"time"
)

// Config 房间初始化参数
type Config struct {
	Map              []string
	BreakableDensity float64
	// 为空时使用默认出生点：A 左上 (1,1)，B 右下 (W-2,H-2)
	SpawnA *Point
	SpawnB *Point
}

// DefaultConfig 默认地图 + 10% 可破坏墙随机填充
func DefaultConfig() Config {
	return Config{Map: DefaultMap, BreakableDensity: 0.10}
}

// Validate 检查地图与出生点是否可用
func (c Config) Validate() error {
	g, err := ParseGrid(c.Map)
	if err != nil {
		return err
	}
	a, b := c.spawns(g)
	for _, s := range []Point{a, b} {
		if g.Blocked(s) {
			return fmt.Errorf("%w: spawn (%d,%d) is not an empty cell", ErrInvalidMap, s.X, s.Y)
		}
	}
	if a == b {
		return fmt.Errorf("%w: spawns overlap at (%d,%d)", ErrInvalidMap, a.X, a.Y)
	}
	return nil
}

func (c Config) spawns(g *Grid) (Point, Point) {
	a := Point{X: 1, Y: 1}
	b := Point{X: g.Width() - 2, Y: g.Height() - 2}
	if c.SpawnA != nil {
		a = *c.SpawnA
	}
	if c.SpawnB != nil {
		b = *c.SpawnB
	}
	return a, b
}

// Resolution 一次完整回合结算的产出
type Resolution struct {
	Record  TurnRecord
	Actions map[Role]Action
	Score   map[Role]int
}

// Room 单个房间的权威状态；不是并发安全的，由上层串行化调用
type Room struct {
	ID string

	cfg Config
	rng *rand.Rand

	grid    *Grid
	tanks   [2]*Tank
	pending [2]*Action
	players [2]string
	turn    int
	last    *TurnRecord
	score   [2]int
}

// NewRoom 创建房间；rng 为空时使用时间种子
// 需要可复现（测试/回放）时注入带固定种子的 rng
func NewRoom(id string, cfg Config, rng *rand.Rand) (*Room, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	r := &Room{ID: id, cfg: cfg, rng: rng}
	r.init()
	return r, nil
}

// init 重建棋盘、坦克、比分与回合计数；不触碰玩家分配
func (r *Room) init() {
	g, _ := ParseGrid(r.cfg.Map) // 已在 NewRoom 中校验
	a, b := r.cfg.spawns(g)
	g.sprinkle(r.rng, r.cfg.BreakableDensity, a, b)

	r.grid = g
	r.tanks[0] = &Tank{Body: a, Spawn: a, Facing: FacingDown, Aim: g.Clamp(a.Add(Point{Y: 2}))}
	r.tanks[1] = &Tank{Body: b, Spawn: b, Facing: FacingUp, Aim: g.Clamp(b.Add(Point{Y: -2}))}
	r.pending = [2]*Action{}
	r.turn = 1
	r.last = nil
	r.score = [2]int{}
}

// Assign 为新连接分配角色：先 A 后 B，其余观战
// 已分配过的身份返回原角色
func (r *Room) Assign(identity string) Role {
	for _, role := range combatants {
		if r.players[role.index()] == identity {
			return role
		}
	}
	for _, role := range combatants {
		if r.players[role.index()] == "" {
			r.players[role.index()] = identity
			return role
		}
	}
	return RoleSpectator
}

// Release 释放该身份占用的对战角色，返回被释放的角色（观战返回 RoleSpectator）
func (r *Room) Release(identity string) Role {
	for _, role := range combatants {
		if r.players[role.index()] == identity {
			r.players[role.index()] = ""
			return role
		}
	}
	return RoleSpectator
}

// Occupied 角色当前是否有人
func (r *Room) Occupied(role Role) bool {
	return role.IsCombatant() && r.players[role.index()] != ""
}

// Vacant A、B 均无人时房间可回收
func (r *Room) Vacant() bool {
	return !r.Occupied(RoleA) && !r.Occupied(RoleB)
}

// RoleOf 查询身份对应的角色
func (r *Room) RoleOf(identity string) Role {
	for _, role := range combatants {
		if identity != "" && r.players[role.index()] == identity {
			return role
		}
	}
	return RoleSpectator
}

// Submit 校验原始载荷并登记为该角色的待结算动作
// 若对手也已提交，则在返回前同步完成回合结算
func (r *Room) Submit(role Role, payload map[string]any) (*Resolution, error) {
	if err := r.canSubmit(role); err != nil {
		return nil, err
	}
	act, err := ParseAction(payload)
	if err != nil {
		return nil, err
	}
	return r.submit(role, act), nil
}

// SubmitAction 与 Submit 相同，但接收已规范化的动作
func (r *Room) SubmitAction(role Role, act Action) (*Resolution, error) {
	if err := r.canSubmit(role); err != nil {
		return nil, err
	}
	if _, err := ParseAction(act.payload()); err != nil {
		return nil, err
	}
	return r.submit(role, act), nil
}

func (r *Room) canSubmit(role Role) error {
	if !role.IsCombatant() {
		return fmt.Errorf("%w: %q", ErrNotCombatant, role)
	}
	if r.pending[role.index()] != nil {
		return fmt.Errorf("%w: role %s turn %d", ErrDuplicateSubmission, role, r.turn)
	}
	return nil
}

func (r *Room) submit(role Role, act Action) *Resolution {
	r.pending[role.index()] = &act
	if r.pending[role.Other().index()] == nil {
		return nil
	}
	return r.resolve()
}

// Reset 重开一局：保留角色分配，其余状态全部重建
func (r *Room) Reset(role Role) error {
	if !role.IsCombatant() {
		return fmt.Errorf("%w: %q cannot reset", ErrNotCombatant, role)
	}
	r.init()
	return nil
}

func (r *Room) Turn() int { return r.turn }

// Pending 该角色本回合是否已提交
func (r *Room) Pending(role Role) bool {
	return role.IsCombatant() && r.pending[role.index()] != nil
}

// Score 该角色累计击杀数
func (r *Room) Score(role Role) int {
	if !role.IsCombatant() {
		return 0
	}
	return r.score[role.index()]
}

// Tank 返回坦克状态副本；非对战角色返回零值
func (r *Room) Tank(role Role) Tank {
	if !role.IsCombatant() {
		return Tank{}
	}
	return *r.tanks[role.index()]
}

func (r *Room) Cell(p Point) Cell { return r.grid.At(p) }

func (r *Room) Width() int  { return r.grid.Width() }
func (r *Room) Height() int { return r.grid.Height() }

// LastEvent 上一回合的结算记录，尚无结算时为 nil
func (r *Room) LastEvent() *TurnRecord {
	if r.last == nil {
		return nil
	}
	rec := *r.last
	return &rec
}

func (a Action) payload() map[string]any {
	m := map[string]any{"type": string(a.Kind)}
	switch a.Kind {
	case ActionMove:
		m["steps"] = a.Steps
	case ActionAim:
		m["dx"] = a.DX
		m["dy"] = a.DY
	}
	return m
}
