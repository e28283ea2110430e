package game

// Explosion 一次开火产生的十字爆炸
type Explosion struct {
	By          Role    `json:"by"`
	At          Point   `json:"at"`
	Cells       []Point `json:"cells"`
	BrokenWalls []Point `json:"brokenWalls"`
	Killed      []Role  `json:"killed"`
}

// TurnRecord 上一回合的事件记录；客户端按 Turn 判断是否为新事件
type TurnRecord struct {
	Turn       int         `json:"turn"`
	Explosions []Explosion `json:"explosions"`
	MoveBounce bool        `json:"moveBounce,omitempty"`
}

// resolve 同时结算双方动作，固定顺序：
// 旋转 → 试探移动 → 坦克碰撞仲裁 → 准星跟随 → 调整准星 → 开火（先 A 后 B）→ 计分 → 提交
func (r *Room) resolve() *Resolution {
	acts := [2]Action{*r.pending[0], *r.pending[1]}
	rec := TurnRecord{Turn: r.turn, Explosions: []Explosion{}}

	for i, act := range acts {
		if act.Kind == ActionTurn {
			r.tanks[i].Facing = r.tanks[i].Facing.Clockwise()
		}
	}

	// 试探移动只依赖回合开始时的位置，与角色顺序无关
	from := [2]Point{r.tanks[0].Body, r.tanks[1].Body}
	to := from
	for i, act := range acts {
		if act.Kind == ActionMove {
			to[i] = r.travel(from[i], r.tanks[i].Facing, act.Steps)
		}
	}

	same := to[0] == to[1]
	swap := to[0] == from[1] && to[1] == from[0]
	if same || swap {
		// 反弹：双方都回到原位，准星不动
		rec.MoveBounce = true
	} else {
		for i := range r.tanks {
			t := r.tanks[i]
			delta := to[i].Sub(from[i])
			t.Body = to[i]
			if delta != (Point{}) {
				t.Aim = r.grid.Clamp(t.Aim.Add(delta))
			}
		}
	}

	// 准星调整叠加在跟随位移之后；准星不受墙体限制
	for i, act := range acts {
		if act.Kind == ActionAim {
			t := r.tanks[i]
			t.Aim = r.grid.Clamp(t.Aim.Add(Point{X: act.DX, Y: act.DY}))
		}
	}

	// 先收集双方落点，再依次引爆；被击杀者在下一次爆炸前已复活转移
	type shot struct {
		by Role
		at Point
	}
	var shots []shot
	for i, act := range acts {
		if act.Kind == ActionFire {
			shots = append(shots, shot{by: combatants[i], at: r.tanks[i].Aim})
		}
	}
	for _, s := range shots {
		ex := r.explode(s.by, s.at)
		for _, victim := range ex.Killed {
			if victim != s.by {
				r.score[s.by.index()]++
			}
		}
		rec.Explosions = append(rec.Explosions, ex)
	}

	r.pending = [2]*Action{}
	r.last = &rec
	r.turn++

	return &Resolution{
		Record:  rec,
		Actions: map[Role]Action{RoleA: acts[0], RoleB: acts[1]},
		Score:   r.scoreMap(),
	}
}

// travel 沿朝向（steps 为负则倒车）逐格前进，遇到越界或墙体即停止
func (r *Room) travel(start Point, f Facing, steps int) Point {
	if steps == 0 {
		return start
	}
	dir := f.Vector()
	n := steps
	if steps < 0 {
		dir = Point{X: -dir.X, Y: -dir.Y}
		n = -steps
	}
	pos := start
	for i := 0; i < n; i++ {
		next := pos.Add(dir)
		if r.grid.Blocked(next) {
			break
		}
		pos = next
	}
	return pos
}

// explode 十字爆炸：破坏可破坏墙，击杀范围内（按当前位置）的坦克并立即复活
func (r *Room) explode(by Role, at Point) Explosion {
	cells := r.grid.plus(at)
	ex := Explosion{By: by, At: at, Cells: cells, BrokenWalls: []Point{}, Killed: []Role{}}

	for _, p := range cells {
		if r.grid.Break(p) {
			ex.BrokenWalls = append(ex.BrokenWalls, p)
		}
	}
	for i, role := range combatants {
		if containsPoint(cells, r.tanks[i].Body) {
			ex.Killed = append(ex.Killed, role)
		}
	}
	for _, victim := range ex.Killed {
		r.respawn(victim)
	}
	return ex
}

func (r *Room) scoreMap() map[Role]int {
	return map[Role]int{RoleA: r.score[0], RoleB: r.score[1]}
}

func containsPoint(ps []Point, p Point) bool {
	for _, q := range ps {
		if q == p {
			return true
		}
	}
	return false
}
