package component

// Position is an entity's location in world units.
// Mutated only by systems.
type Position struct {
	X float64
	Y float64
}

// Velocity is applied to Position once per second of simulated time.
type Velocity struct {
	DX float64
	DY float64
}

// Bounds is the rectangle entities are kept inside. Registered as a singleton.
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

func (b Bounds) Contains(p Position) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}
