package world

import (
	"math"

	"github.com/l1jgo/entitycore/internal/component"
	"github.com/l1jgo/entitycore/internal/core/ecs"
)

// DefaultCellSize is the grid cell edge in world units.
const DefaultCellSize = 20.0

type cellKey struct {
	cx int32
	cy int32
}

type gridEntry struct {
	h    ecs.EntityHandle
	x, y float64
}

// Grid is a cell-based spatial index over positioned entities. It is rebuilt
// from the collection once per tick and answers radius queries with handles,
// so callers resolve through the collection and never hold stale pointers.
// Accessed only from the owning world's goroutine, no locks.
type Grid struct {
	cellSize float64
	cells    map[cellKey][]gridEntry
	count    int
}

func NewGrid(cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &Grid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]gridEntry),
	}
}

func (g *Grid) toCell(v float64) int32 {
	return int32(math.Floor(v / g.cellSize))
}

func (g *Grid) key(x, y float64) cellKey {
	return cellKey{cx: g.toCell(x), cy: g.toCell(y)}
}

// Add places a handle into the grid.
func (g *Grid) Add(h ecs.EntityHandle, x, y float64) {
	k := g.key(x, y)
	g.cells[k] = append(g.cells[k], gridEntry{h: h, x: x, y: y})
	g.count++
}

// Reset empties the grid, keeping cell storage for reuse.
func (g *Grid) Reset() {
	for k, cell := range g.cells {
		g.cells[k] = cell[:0]
	}
	g.count = 0
}

// Rebuild indexes every live entity with a Position.
func (g *Grid) Rebuild(c *ecs.EntityCollection) {
	g.Reset()
	for e := range ecs.NewQuery(c, ecs.QueryOptions{IgnoreTempWarning: true}).
		Where(ecs.WhereHasComponent[component.Position]()).Gen() {
		p, _ := ecs.Get[component.Position](e)
		g.Add(c.HandleFor(e), p.X, p.Y)
	}
}

// Len returns the number of indexed entities.
func (g *Grid) Len() int { return g.count }

// Nearby returns the handles within radius r of (x, y), inclusive.
func (g *Grid) Nearby(x, y, r float64) []ecs.EntityHandle {
	if r < 0 {
		return nil
	}
	minX, maxX := g.toCell(x-r), g.toCell(x+r)
	minY, maxY := g.toCell(y-r), g.toCell(y+r)
	r2 := r * r

	var result []ecs.EntityHandle
	for cx := minX; cx <= maxX; cx++ {
		for cy := minY; cy <= maxY; cy++ {
			for _, en := range g.cells[cellKey{cx: cx, cy: cy}] {
				dx, dy := en.x-x, en.y-y
				if dx*dx+dy*dy <= r2 {
					result = append(result, en.h)
				}
			}
		}
	}
	return result
}
