package game

// respawn 被击杀的坦克随机落到一块无人的空地上
// 没有可用空地时（极端地图）退回固定出生点，不检查占用
func (r *Room) respawn(role Role) {
	t := r.tanks[role.index()]
	a, b := r.tanks[0].Body, r.tanks[1].Body

	var free []Point
	for _, p := range r.grid.EmptyCells() {
		if p != a && p != b {
			free = append(free, p)
		}
	}
	if len(free) > 0 {
		t.Body = free[r.rng.Intn(len(free))]
	} else {
		t.Body = t.Spawn
	}
	t.Aim = r.grid.Clamp(t.Aim)
}
