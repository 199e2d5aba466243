package component

// Lifetime counts down once per tick; the entity is marked for cleanup at zero.
type Lifetime struct {
	Ticks int
}

// Tag names the template an entity was spawned from.
type Tag struct {
	Name string
}

// Clock is the per-world tick counter. Registered as a singleton.
type Clock struct {
	Tick int64
}
