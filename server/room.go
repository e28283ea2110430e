package server

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"tankarena/archive"
	"tankarena/game"
)

// Room 房间：持有一局对战的权威状态与房间内所有连接
// 提交、结算、重开与广播入队都在 mu 内完成，同一房间的回合结算不会重叠
type Room struct {
	ID string

	mu       sync.Mutex
	game     *game.Room
	players  map[PlayerID]*Player
	recorder archive.Recorder
	metrics  *RoomMetrics
	now      func() time.Time
}

// NewRoom 创建房间；recorder 可为空
func NewRoom(id string, cfg game.Config, rng *rand.Rand, recorder archive.Recorder) (*Room, error) {
	g, err := game.NewRoom(id, cfg, rng)
	if err != nil {
		return nil, err
	}
	return &Room{
		ID:       id,
		game:     g,
		players:  make(map[PlayerID]*Player),
		recorder: recorder,
		metrics:  &RoomMetrics{},
		now:      time.Now,
	}, nil
}

// Join 将连接加入房间并分配角色，随后单独下发 your_role 并广播新状态
func (r *Room) Join(id PlayerID, conn Sender) game.Role {
	r.mu.Lock()
	defer r.mu.Unlock()

	role := r.game.Assign(string(id))
	p := &Player{ID: id, Role: role, Conn: conn}
	r.players[id] = p

	if b, err := encode(MsgYourRole, YourRolePayload{Role: role, RoomID: r.ID}); err == nil {
		r.send(p, b)
	}
	Log.Infow("player joined", "room", r.ID, "player", id, "role", role)
	r.broadcastLocked()
	return role
}

// Leave 移除连接并释放其角色；返回 found 表示该连接确实在房间内，vacant 表示 A、B 均已空出
func (r *Room) Leave(id PlayerID) (found, vacant bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[id]
	if !ok {
		return false, r.game.Vacant()
	}
	delete(r.players, id)
	r.game.Release(string(id))
	Log.Infow("player left", "room", r.ID, "player", id, "role", p.Role)

	if r.game.Vacant() {
		return true, true
	}
	r.broadcastLocked()
	return true, false
}

// detach 清空并返回剩余连接；仅在房间回收时调用，此时剩下的都是观战者
func (r *Room) detach() map[PlayerID]Sender {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[PlayerID]Sender, len(r.players))
	for id, p := range r.players {
		out[id] = p.Conn
	}
	r.players = make(map[PlayerID]*Player)
	return out
}

// adopt 以观战身份接回上一局遗留的连接，不占用对战位
func (r *Room) adopt(conns map[PlayerID]Sender) {
	if len(conns) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, conn := range conns {
		r.players[id] = &Player{ID: id, Role: game.RoleSpectator, Conn: conn}
	}
	Log.Infow("spectators carried over", "room", r.ID, "count", len(conns))
	r.broadcastLocked()
}

// Submit 登记该连接的动作；双方到齐时同步结算并广播
// 返回的错误只用于计数和日志，不回传给客户端
func (r *Room) Submit(id PlayerID, payload map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	role := r.game.RoleOf(string(id))
	start := time.Now()
	res, err := r.game.Submit(role, payload)
	if err != nil {
		r.reject(id, role, "submit", err)
		return err
	}
	r.metrics.IncAccepted()

	if res != nil {
		r.metrics.AddResolve(time.Since(start).Nanoseconds())
		kills := 0
		for _, ex := range res.Record.Explosions {
			kills += len(ex.Killed)
		}
		Log.Infow("turn resolved",
			"room", r.ID,
			"turn", res.Record.Turn,
			"a", res.Actions[game.RoleA].String(),
			"b", res.Actions[game.RoleB].String(),
			"explosions", len(res.Record.Explosions),
			"kills", kills,
			"bounce", res.Record.MoveBounce,
			"score_a", res.Score[game.RoleA],
			"score_b", res.Score[game.RoleB],
		)
		r.archive(archive.FromResolution(r.ID, res, r.now()))
	} else {
		Log.Debugw("action pending", "room", r.ID, "role", role, "turn", r.game.Turn())
	}
	r.broadcastLocked()
	return nil
}

// Reset 仅对战方可重开；角色分配保持不变
func (r *Room) Reset(id PlayerID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	role := r.game.RoleOf(string(id))
	if err := r.game.Reset(role); err != nil {
		r.reject(id, role, "reset", err)
		return err
	}
	r.metrics.IncResets()
	Log.Infow("room reset", "room", r.ID, "by", role)
	r.archive(archive.Entry{
		RoomID: r.ID,
		Turn:   r.game.Turn(),
		Reset:  true,
		Score:  map[game.Role]int{game.RoleA: 0, game.RoleB: 0},
		At:     r.now(),
	})
	r.broadcastLocked()
	return nil
}

// View 按角色裁剪的当前快照（拉取接口）
func (r *Room) View(role game.Role) game.RoomView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.game.View(role)
}

// RoomSummary 管理接口中的房间概要
type RoomSummary struct {
	ID          string             `json:"id"`
	Turn        int                `json:"turn"`
	Occupied    map[game.Role]bool `json:"occupied"`
	Score       map[game.Role]int  `json:"score"`
	Connections int                `json:"connections"`
}

func (r *Room) Summary() RoomSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RoomSummary{
		ID:   r.ID,
		Turn: r.game.Turn(),
		Occupied: map[game.Role]bool{
			game.RoleA: r.game.Occupied(game.RoleA),
			game.RoleB: r.game.Occupied(game.RoleB),
		},
		Score: map[game.Role]int{
			game.RoleA: r.game.Score(game.RoleA),
			game.RoleB: r.game.Score(game.RoleB),
		},
		Connections: len(r.players),
	}
}

func (r *Room) Metrics() *RoomMetrics { return r.metrics }

func (r *Room) reject(id PlayerID, role game.Role, op string, err error) {
	switch {
	case errors.Is(err, game.ErrInvalidAction):
		r.metrics.IncInvalid()
	case errors.Is(err, game.ErrDuplicateSubmission):
		r.metrics.IncDuplicate()
	case errors.Is(err, game.ErrNotCombatant):
		r.metrics.IncNotCombatant()
	}
	Log.Debugw("dropped "+op, "room", r.ID, "player", id, "role", role, "err", err)
}

// broadcastLocked 每个连接按自己的角色拿到一份现算的视图；同一角色的编码结果在本次广播内复用
func (r *Room) broadcastLocked() {
	frames := make(map[game.Role][]byte, 3)
	for _, p := range r.players {
		b, ok := frames[p.Role]
		if !ok {
			var err error
			b, err = encode(MsgRoomState, r.game.View(p.Role))
			if err != nil {
				Log.Errorw("encode room_state", "room", r.ID, "err", err)
				return
			}
			frames[p.Role] = b
		}
		r.send(p, b)
	}
}

func (r *Room) send(p *Player, b []byte) {
	if p.Conn == nil {
		return
	}
	if !p.Conn.Enqueue(b) {
		r.metrics.IncBroadcastDropped()
	}
}

// archive 交给异步记录器，失败只计数不影响回合推进
func (r *Room) archive(e archive.Entry) {
	if r.recorder == nil {
		return
	}
	if err := r.recorder.Record(context.Background(), e); err != nil {
		r.metrics.IncArchiveDropped()
		Log.Warnw("archive turn", "room", r.ID, "turn", e.Turn, "err", err)
	}
}
