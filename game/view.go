package game

// TankView 对外展示的坦克状态；Aim 为 nil 表示对该观察者隐藏
type TankView struct {
	Body        Point       `json:"body"`
	Facing      Facing      `json:"facing"`
	Orientation Orientation `json:"orientation"`
	Aim         *Point      `json:"aim"`
}

// RoomView 按观察者角色裁剪后的房间快照（room_state 载荷）
type RoomView struct {
	RoomID    string            `json:"roomId"`
	GridW     int               `json:"gridW"`
	GridH     int               `json:"gridH"`
	Grid      [][]Cell          `json:"grid"`
	Tanks     map[Role]TankView `json:"tanks"`
	Occupied  map[Role]bool     `json:"occupied"`
	Turn      int               `json:"turn"`
	Pending   map[Role]bool     `json:"pending"`
	LastEvent *TurnRecord       `json:"lastEvent"`
	Score     map[Role]int      `json:"score"`
}

// View 每次广播时现算；不保存任何按观察者区分的副本
// 观察者只能看到自己的准星，观战者可以看到双方准星
func (r *Room) View(viewer Role) RoomView {
	v := RoomView{
		RoomID:    r.ID,
		GridW:     r.grid.Width(),
		GridH:     r.grid.Height(),
		Grid:      r.grid.Rows(),
		Tanks:     make(map[Role]TankView, 2),
		Occupied:  make(map[Role]bool, 2),
		Pending:   make(map[Role]bool, 2),
		Turn:      r.turn,
		LastEvent: r.LastEvent(),
		Score:     r.scoreMap(),
	}
	for i, role := range combatants {
		t := r.tanks[i]
		tv := TankView{Body: t.Body, Facing: t.Facing, Orientation: t.Orientation()}
		if viewer == role || viewer == RoleSpectator {
			aim := t.Aim
			tv.Aim = &aim
		}
		v.Tanks[role] = tv
		v.Occupied[role] = r.Occupied(role)
		v.Pending[role] = r.Pending(role)
	}
	return v
}
