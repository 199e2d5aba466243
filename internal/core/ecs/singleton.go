package ecs

import "go.uber.org/zap"

// RegisterSingleton records e as the canonical carrier of component T,
// replacing any previous registration. e may still be staged.
func RegisterSingleton[T any](c *EntityCollection, e *Entity) {
	id := ComponentIDOf[T]()
	if !Has[T](e) {
		c.log.Warn("singleton registered on entity without its component",
			zap.String("component", ComponentName(id)),
			zap.Int("id", int(e.id)),
		)
	}
	c.singletons[id] = e
}

// GetSingleton returns the entity registered for T. When nothing is
// registered, or the registered entity is gone, it returns the collection's
// dummy entity, which carries no components and is never live.
func GetSingleton[T any](c *EntityCollection) *Entity {
	if e, ok := lookupSingleton[T](c); ok {
		return e
	}
	return c.dummy
}

// HasSingleton reports whether a live or staged entity is registered for T.
func HasSingleton[T any](c *EntityCollection) bool {
	_, ok := lookupSingleton[T](c)
	return ok
}

// SingletonComponent returns the T component of the registered singleton.
func SingletonComponent[T any](c *EntityCollection) (*T, bool) {
	e, ok := lookupSingleton[T](c)
	if !ok {
		return nil, false
	}
	return Get[T](e)
}

func lookupSingleton[T any](c *EntityCollection) (*Entity, bool) {
	e, ok := c.singletons[ComponentIDOf[T]()]
	if !ok || e.dead {
		return nil, false
	}
	return e, true
}

// IsDummy reports whether e is the fallback returned by a singleton miss.
func (c *EntityCollection) IsDummy(e *Entity) bool { return e == c.dummy }
