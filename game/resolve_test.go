package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func place(r *Room, role Role, body Point, f Facing, aimAt Point) {
	t := r.tanks[role.index()]
	t.Body = body
	t.Facing = f
	t.Aim = aimAt
}

func TestMoveForwardDragsAim(t *testing.T) {
	r := newTestRoom(t)

	res := play(t, r, move(2), act(ActionWait))

	a := r.Tank(RoleA)
	assert.Equal(t, Point{X: 1, Y: 3}, a.Body)
	assert.Equal(t, Point{X: 1, Y: 5}, a.Aim)
	assert.False(t, res.Record.MoveBounce)
}

func TestMoveStopsAtWall(t *testing.T) {
	r := newTestRoom(t)
	place(r, RoleA, Point{X: 1, Y: 2}, FacingDown, Point{X: 1, Y: 4})

	play(t, r, move(2), act(ActionWait))

	// (1,4) 为可破坏墙，只能走一格
	a := r.Tank(RoleA)
	assert.Equal(t, Point{X: 1, Y: 3}, a.Body)
	assert.Equal(t, Point{X: 1, Y: 5}, a.Aim)
}

func TestMoveReverseIntoBorder(t *testing.T) {
	r := newTestRoom(t)

	play(t, r, move(-1), act(ActionWait))

	a := r.Tank(RoleA)
	assert.Equal(t, Point{X: 1, Y: 1}, a.Body)
	assert.Equal(t, Point{X: 1, Y: 3}, a.Aim, "aim only follows real displacement")
}

func TestMoveReverseAlongFacingAxis(t *testing.T) {
	r := newTestRoom(t)

	play(t, r, act(ActionWait), move(-1))

	// B 朝上，倒车向下，但 (10,11) 是边界墙
	assert.Equal(t, Point{X: 10, Y: 10}, r.Tank(RoleB).Body)

	place(r, RoleB, Point{X: 10, Y: 9}, FacingUp, Point{X: 10, Y: 7})
	play(t, r, act(ActionWait), move(-2))
	assert.Equal(t, Point{X: 10, Y: 10}, r.Tank(RoleB).Body)
	assert.Equal(t, Point{X: 10, Y: 8}, r.Tank(RoleB).Aim)
}

func TestTurnThenMove(t *testing.T) {
	r := newTestRoom(t)

	play(t, r, act(ActionTurn), act(ActionWait))
	require.Equal(t, FacingLeft, r.Tank(RoleA).Facing)
	play(t, r, act(ActionTurn), act(ActionWait))
	play(t, r, act(ActionTurn), act(ActionWait))
	require.Equal(t, FacingRight, r.Tank(RoleA).Facing)
	require.Equal(t, Horizontal, r.Tank(RoleA).Orientation())

	play(t, r, move(2), act(ActionWait))
	assert.Equal(t, Point{X: 3, Y: 1}, r.Tank(RoleA).Body)

	play(t, r, act(ActionTurn), act(ActionWait))
	assert.Equal(t, FacingDown, r.Tank(RoleA).Facing)
}

func TestSameDestinationRebounds(t *testing.T) {
	r := newTestRoom(t)
	place(r, RoleA, Point{X: 1, Y: 1}, FacingRight, Point{X: 3, Y: 1})
	place(r, RoleB, Point{X: 3, Y: 2}, FacingDown, Point{X: 3, Y: 4})

	res := play(t, r, move(2), move(-1))

	assert.True(t, res.Record.MoveBounce)
	assert.Equal(t, Point{X: 1, Y: 1}, r.Tank(RoleA).Body)
	assert.Equal(t, Point{X: 3, Y: 2}, r.Tank(RoleB).Body)
	assert.Equal(t, Point{X: 3, Y: 1}, r.Tank(RoleA).Aim)
	assert.Equal(t, Point{X: 3, Y: 4}, r.Tank(RoleB).Aim)
	require.NotNil(t, r.LastEvent())
	assert.True(t, r.LastEvent().MoveBounce)
}

func TestSwapRebounds(t *testing.T) {
	r := newTestRoom(t)
	place(r, RoleA, Point{X: 1, Y: 2}, FacingRight, Point{X: 3, Y: 2})
	place(r, RoleB, Point{X: 2, Y: 2}, FacingLeft, Point{X: 0, Y: 2})

	res := play(t, r, move(1), move(1))

	assert.True(t, res.Record.MoveBounce)
	assert.Equal(t, Point{X: 1, Y: 2}, r.Tank(RoleA).Body)
	assert.Equal(t, Point{X: 2, Y: 2}, r.Tank(RoleB).Body)
	assert.Equal(t, Point{X: 3, Y: 2}, r.Tank(RoleA).Aim)
	assert.Equal(t, Point{X: 0, Y: 2}, r.Tank(RoleB).Aim)
}

func TestMoveIntoStationaryTankRebounds(t *testing.T) {
	r := newTestRoom(t)
	place(r, RoleA, Point{X: 1, Y: 2}, FacingRight, Point{X: 3, Y: 2})
	place(r, RoleB, Point{X: 2, Y: 2}, FacingUp, Point{X: 2, Y: 0})

	res := play(t, r, move(1), act(ActionWait))

	assert.True(t, res.Record.MoveBounce)
	assert.Equal(t, Point{X: 1, Y: 2}, r.Tank(RoleA).Body)
}

func TestFollowingMoveCommits(t *testing.T) {
	r := newTestRoom(t)
	place(r, RoleA, Point{X: 1, Y: 2}, FacingRight, Point{X: 3, Y: 2})
	place(r, RoleB, Point{X: 2, Y: 2}, FacingRight, Point{X: 4, Y: 2})

	res := play(t, r, move(1), move(1))

	assert.False(t, res.Record.MoveBounce)
	assert.Equal(t, Point{X: 2, Y: 2}, r.Tank(RoleA).Body)
	assert.Equal(t, Point{X: 3, Y: 2}, r.Tank(RoleB).Body)
	assert.Equal(t, Point{X: 4, Y: 2}, r.Tank(RoleA).Aim)
	assert.Equal(t, Point{X: 5, Y: 2}, r.Tank(RoleB).Aim)
}

func TestAimDragClampsToBounds(t *testing.T) {
	r := newTestRoom(t)
	place(r, RoleA, Point{X: 1, Y: 1}, FacingDown, Point{X: 4, Y: 10})

	play(t, r, move(2), act(ActionWait))

	assert.Equal(t, Point{X: 1, Y: 3}, r.Tank(RoleA).Body)
	assert.Equal(t, Point{X: 4, Y: 11}, r.Tank(RoleA).Aim)
}

func TestAimAdjustClampsAndIgnoresWalls(t *testing.T) {
	r := newTestRoom(t)

	play(t, r, aim(-2, -2), aim(2, 2))

	assert.Equal(t, Point{X: 0, Y: 1}, r.Tank(RoleA).Aim)
	assert.Equal(t, Point{X: 11, Y: 10}, r.Tank(RoleB).Aim)

	play(t, r, aim(2, -1), act(ActionWait))
	assert.Equal(t, Point{X: 2, Y: 0}, r.Tank(RoleA).Aim, "aim may rest on a solid wall")
}

func TestFireEliminatesAndScores(t *testing.T) {
	r := newTestRoom(t)
	place(r, RoleB, Point{X: 1, Y: 3}, FacingUp, Point{X: 1, Y: 1})

	res := play(t, r, act(ActionFire), act(ActionWait))

	require.Len(t, res.Record.Explosions, 1)
	ex := res.Record.Explosions[0]
	assert.Equal(t, RoleA, ex.By)
	assert.Equal(t, Point{X: 1, Y: 3}, ex.At)
	assert.ElementsMatch(t, []Point{{1, 3}, {2, 3}, {0, 3}, {1, 4}, {1, 2}}, ex.Cells)
	assert.Equal(t, []Point{{1, 4}}, ex.BrokenWalls)
	assert.Equal(t, []Role{RoleB}, ex.Killed)

	assert.Equal(t, 1, r.Score(RoleA))
	assert.Equal(t, 0, r.Score(RoleB))
	assert.Equal(t, 1, res.Score[RoleA])
	assert.Equal(t, CellEmpty, r.Cell(Point{X: 1, Y: 4}))

	b := r.Tank(RoleB)
	assert.NotEqual(t, Point{X: 1, Y: 3}, b.Body)
	assert.NotEqual(t, r.Tank(RoleA).Body, b.Body)
	assert.Equal(t, CellEmpty, r.Cell(b.Body))
	assert.Equal(t, Point{X: 1, Y: 1}, b.Aim, "respawn keeps the aim")
}

func TestBreakableStaysBroken(t *testing.T) {
	r := newTestRoom(t)
	place(r, RoleA, Point{X: 2, Y: 2}, FacingDown, Point{X: 1, Y: 4})

	first := play(t, r, act(ActionFire), act(ActionWait))
	second := play(t, r, act(ActionFire), act(ActionWait))

	assert.Equal(t, []Point{{1, 4}}, first.Record.Explosions[0].BrokenWalls)
	assert.Empty(t, second.Record.Explosions[0].BrokenWalls)
	assert.Equal(t, CellEmpty, r.Cell(Point{X: 1, Y: 4}))
	assert.Equal(t, CellSolid, r.Cell(Point{X: 0, Y: 4}))
}

func TestSelfEliminationDoesNotScore(t *testing.T) {
	r := newTestRoom(t)
	place(r, RoleA, Point{X: 2, Y: 2}, FacingDown, Point{X: 2, Y: 3})

	res := play(t, r, act(ActionFire), act(ActionWait))

	assert.Equal(t, []Role{RoleA}, res.Record.Explosions[0].Killed)
	assert.Equal(t, 0, r.Score(RoleA))
	assert.Equal(t, 0, r.Score(RoleB))
	assert.NotEqual(t, Point{X: 2, Y: 2}, r.Tank(RoleA).Body)
}

func TestMoveThenFireUsesFinalPositions(t *testing.T) {
	r := newTestRoom(t)
	place(r, RoleA, Point{X: 1, Y: 2}, FacingRight, Point{X: 6, Y: 2})
	place(r, RoleB, Point{X: 4, Y: 2}, FacingRight, Point{X: 9, Y: 2})

	// B 先移动两格到 (6,2)，A 的炮弹按结算后的位置命中
	res := play(t, r, act(ActionFire), move(2))

	require.Len(t, res.Record.Explosions, 1)
	assert.Equal(t, []Role{RoleB}, res.Record.Explosions[0].Killed)
	assert.Equal(t, 1, r.Score(RoleA))
}

// corridorMap 三块互不相邻的空地：(1,1) (3,1) (5,1)
var corridorMap = []string{
	"#######",
	"#.#.#.#",
	"#######",
}

func TestMutualFireRelocatesBeforeSecondShot(t *testing.T) {
	r := newMapRoom(t, corridorMap...)
	require.Equal(t, Point{X: 5, Y: 1}, r.Tank(RoleB).Body)
	place(r, RoleA, Point{X: 1, Y: 1}, FacingDown, Point{X: 5, Y: 1})
	place(r, RoleB, Point{X: 5, Y: 1}, FacingUp, Point{X: 5, Y: 1})

	res := play(t, r, act(ActionFire), act(ActionFire))

	// A 击杀 B，B 唯一可落点为 (3,1)；B 的炮弹落在旧位置，打空
	require.Len(t, res.Record.Explosions, 2)
	assert.Equal(t, []Role{RoleB}, res.Record.Explosions[0].Killed)
	assert.Empty(t, res.Record.Explosions[1].Killed)
	assert.Equal(t, Point{X: 3, Y: 1}, r.Tank(RoleB).Body)
	assert.Equal(t, 1, r.Score(RoleA))
	assert.Equal(t, 0, r.Score(RoleB))
}

func TestMutualElimination(t *testing.T) {
	r := newMapRoom(t, corridorMap...)
	place(r, RoleA, Point{X: 1, Y: 1}, FacingDown, Point{X: 5, Y: 1})
	place(r, RoleB, Point{X: 5, Y: 1}, FacingUp, Point{X: 1, Y: 1})

	res := play(t, r, act(ActionFire), act(ActionFire))

	require.Len(t, res.Record.Explosions, 2)
	assert.Equal(t, RoleA, res.Record.Explosions[0].By)
	assert.Equal(t, []Role{RoleB}, res.Record.Explosions[0].Killed)
	assert.Equal(t, RoleB, res.Record.Explosions[1].By)
	assert.Equal(t, []Role{RoleA}, res.Record.Explosions[1].Killed)

	assert.Equal(t, Point{X: 3, Y: 1}, r.Tank(RoleB).Body)
	assert.Equal(t, Point{X: 5, Y: 1}, r.Tank(RoleA).Body)
	assert.Equal(t, 1, r.Score(RoleA))
	assert.Equal(t, 1, r.Score(RoleB))
}

func TestRespawnFallsBackToSpawn(t *testing.T) {
	r := newMapRoom(t,
		"####",
		"#..#",
		"####",
	)
	place(r, RoleA, Point{X: 1, Y: 1}, FacingRight, Point{X: 2, Y: 1})

	res := play(t, r, act(ActionFire), act(ActionWait))

	ex := res.Record.Explosions[0]
	assert.Equal(t, []Role{RoleA, RoleB}, ex.Killed)
	assert.Equal(t, Point{X: 1, Y: 1}, r.Tank(RoleA).Body)
	assert.Equal(t, Point{X: 2, Y: 1}, r.Tank(RoleB).Body)
	assert.Equal(t, 1, r.Score(RoleA), "killing B scores even when A dies too")
}

func TestResolutionIsDeterministicForSeed(t *testing.T) {
	script := [][2]map[string]any{
		{move(1), act(ActionTurn)},
		{aim(1, 1), move(2)},
		{act(ActionFire), aim(-2, 0)},
		{act(ActionTurn), act(ActionFire)},
		{move(-2), act(ActionFire)},
	}
	run := func() RoomView {
		r, err := NewRoom("det", DefaultConfig(), rand.New(rand.NewSource(99)))
		require.NoError(t, err)
		for _, step := range script {
			play(t, r, step[0], step[1])
		}
		return r.View(RoleSpectator)
	}

	assert.Equal(t, run(), run())
}

func TestInvariantsHoldOverRandomPlay(t *testing.T) {
	r, err := NewRoom("fuzz", DefaultConfig(), rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	pick := rand.New(rand.NewSource(11))

	randomAction := func() map[string]any {
		switch pick.Intn(5) {
		case 0:
			return move(pick.Intn(5) - 2)
		case 1:
			return act(ActionTurn)
		case 2:
			return aim(pick.Intn(5)-2, pick.Intn(5)-2)
		case 3:
			return act(ActionFire)
		}
		return act(ActionWait)
	}

	prevScore := [2]int{}
	for i := 0; i < 500; i++ {
		turn := r.Turn()
		play(t, r, randomAction(), randomAction())
		require.Equal(t, turn+1, r.Turn())

		a, b := r.Tank(RoleA), r.Tank(RoleB)
		require.NotEqual(t, a.Body, b.Body)
		for _, tk := range []Tank{a, b} {
			require.Equal(t, CellEmpty, r.Cell(tk.Body), "body on wall at turn %d", turn)
			require.True(t, tk.Aim.X >= 0 && tk.Aim.X < r.Width())
			require.True(t, tk.Aim.Y >= 0 && tk.Aim.Y < r.Height())
		}
		require.GreaterOrEqual(t, r.Score(RoleA), prevScore[0])
		require.GreaterOrEqual(t, r.Score(RoleB), prevScore[1])
		prevScore = [2]int{r.Score(RoleA), r.Score(RoleB)}
	}
}
