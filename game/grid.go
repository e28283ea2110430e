package game

import (
	"fmt"
	"math/rand"
)

// Cell 格子编码：0 空地，1 可破坏墙，2 不可破坏墙
type Cell int

const (
	CellEmpty Cell = iota
	CellBreakable
	CellSolid
)

// DefaultMap 默认 12x12 地图
// # = 不可破坏墙，* = 可破坏墙，. = 空地
var DefaultMap = []string{
	"############",
	"#...****...#",
	"#..........#",
	"#..#....#..#",
	"#*..*..*..*#",
	"#....##....#",
	"#....##....#",
	"#*..*..*..*#",
	"#..#....#..#",
	"#..........#",
	"#...****...#",
	"############",
}

// Point 整数格子坐标
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Point) Add(o Point) Point { return Point{X: p.X + o.X, Y: p.Y + o.Y} }
func (p Point) Sub(o Point) Point { return Point{X: p.X - o.X, Y: p.Y - o.Y} }

// Grid 固定尺寸的棋盘，按行存储（cells[y][x]）
type Grid struct {
	w, h  int
	cells [][]Cell
}

// ParseGrid 从字符行构建棋盘；每行宽度必须一致
func ParseGrid(rows []string) (*Grid, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidMap)
	}
	w := len(rows[0])
	if w == 0 {
		return nil, fmt.Errorf("%w: empty row 0", ErrInvalidMap)
	}
	cells := make([][]Cell, len(rows))
	for y, row := range rows {
		if len(row) != w {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidMap, y, len(row), w)
		}
		cells[y] = make([]Cell, w)
		for x := 0; x < w; x++ {
			switch row[x] {
			case '#':
				cells[y][x] = CellSolid
			case '*':
				cells[y][x] = CellBreakable
			case '.':
				cells[y][x] = CellEmpty
			default:
				return nil, fmt.Errorf("%w: unknown cell %q at (%d,%d)", ErrInvalidMap, row[x], x, y)
			}
		}
	}
	return &Grid{w: w, h: len(rows), cells: cells}, nil
}

func (g *Grid) Width() int  { return g.w }
func (g *Grid) Height() int { return g.h }

// InBounds 坐标是否在棋盘内
func (g *Grid) InBounds(p Point) bool {
	return p.X >= 0 && p.X < g.w && p.Y >= 0 && p.Y < g.h
}

// At 返回格子编码；越界视为不可破坏墙
func (g *Grid) At(p Point) Cell {
	if !g.InBounds(p) {
		return CellSolid
	}
	return g.cells[p.Y][p.X]
}

// Blocked 越界或任意墙体都会阻挡坦克车身
func (g *Grid) Blocked(p Point) bool {
	return g.At(p) != CellEmpty
}

// Break 将可破坏墙变为空地；返回是否发生了变化
func (g *Grid) Break(p Point) bool {
	if g.At(p) != CellBreakable {
		return false
	}
	g.cells[p.Y][p.X] = CellEmpty
	return true
}

// Clamp 将坐标裁剪到棋盘范围
func (g *Grid) Clamp(p Point) Point {
	return Point{X: clamp(p.X, 0, g.w-1), Y: clamp(p.Y, 0, g.h-1)}
}

// Rows 返回行优先的格子副本（用于视图序列化）
func (g *Grid) Rows() [][]Cell {
	out := make([][]Cell, g.h)
	for y := range g.cells {
		out[y] = append([]Cell(nil), g.cells[y]...)
	}
	return out
}

// EmptyCells 按行优先顺序列出所有空地
func (g *Grid) EmptyCells() []Point {
	var out []Point
	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			if g.cells[y][x] == CellEmpty {
				out = append(out, Point{X: x, Y: y})
			}
		}
	}
	return out
}

// sprinkle 在内圈空地上按概率撒可破坏墙，跳过 forbidden（出生点等）
func (g *Grid) sprinkle(rng *rand.Rand, density float64, forbidden ...Point) {
	if density <= 0 {
		return
	}
	if density > 1 {
		density = 1
	}
	skip := make(map[Point]bool, len(forbidden))
	for _, p := range forbidden {
		skip[p] = true
	}
	for y := 1; y <= g.h-2; y++ {
		for x := 1; x <= g.w-2; x++ {
			p := Point{X: x, Y: y}
			if skip[p] || g.cells[y][x] != CellEmpty {
				continue
			}
			if rng.Float64() < density {
				g.cells[y][x] = CellBreakable
			}
		}
	}
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// plus 十字爆炸范围：中心 + 上下左右，越界部分裁掉
func (g *Grid) plus(c Point) []Point {
	cand := []Point{
		c,
		{X: c.X + 1, Y: c.Y},
		{X: c.X - 1, Y: c.Y},
		{X: c.X, Y: c.Y + 1},
		{X: c.X, Y: c.Y - 1},
	}
	out := cand[:0]
	for _, p := range cand {
		if g.InBounds(p) {
			out = append(out, p)
		}
	}
	return out
}
