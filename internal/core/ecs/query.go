package ecs

import (
	"iter"
	"slices"

	"go.uber.org/zap"
)

// QueryOptions are the recognised query switches.
type QueryOptions struct {
	// IgnoreTempWarning suppresses the warning logged when the collection
	// has staged entities the query cannot see.
	IgnoreTempWarning bool
	// ForceMerge merges the staged buffer before the query is evaluated.
	ForceMerge bool
}

// Predicate filters entities in a query.
type Predicate func(*Entity) bool

// Query is a filtered view over a collection's live entities. Filters are
// composed first; every materialising call evaluates afresh.
type Query struct {
	c       *EntityCollection
	opts    QueryOptions
	filters []Predicate
	less    func(a, b *Entity) bool
	limit   int
}

func NewQuery(c *EntityCollection, opts QueryOptions) *Query {
	return &Query{c: c, opts: opts, limit: -1}
}

// Where adds an arbitrary predicate.
func (q *Query) Where(p Predicate) *Query {
	q.filters = append(q.filters, p)
	return q
}

func (q *Query) WhereLambda(fn func(*Entity) bool) *Query { return q.Where(fn) }

func (q *Query) WhereID(id EntityID) *Query {
	return q.Where(func(e *Entity) bool { return e.id == id })
}

func (q *Query) WhereNotID(id EntityID) *Query {
	return q.Where(func(e *Entity) bool { return e.id != id })
}

func (q *Query) WhereMarkedForCleanup() *Query {
	return q.Where(func(e *Entity) bool { return e.cleanup })
}

func (q *Query) WhereNotMarkedForCleanup() *Query {
	return q.Where(func(e *Entity) bool { return !e.cleanup })
}

func (q *Query) WherePermanent(permanent bool) *Query {
	return q.Where(func(e *Entity) bool { return e.permanent == permanent })
}

// WhereHasComponent returns a predicate matching entities that carry T.
func WhereHasComponent[T any]() Predicate {
	id := uint(ComponentIDOf[T]())
	return func(e *Entity) bool { return e.mask.Test(id) }
}

// WhereMissingComponent returns a predicate matching entities without T.
func WhereMissingComponent[T any]() Predicate {
	id := uint(ComponentIDOf[T]())
	return func(e *Entity) bool { return !e.mask.Test(id) }
}

// OrderBy sorts materialised results. Without it results follow the live
// array, whose order carries no meaning.
func (q *Query) OrderBy(less func(a, b *Entity) bool) *Query {
	q.less = less
	return q
}

// Take limits results to the first n matches.
func (q *Query) Take(n int) *Query {
	q.limit = n
	return q
}

func (q *Query) matches(e *Entity) bool {
	for _, f := range q.filters {
		if !f(e) {
			return false
		}
	}
	return true
}

func (q *Query) prepare() {
	if q.opts.ForceMerge {
		q.c.Merge()
		return
	}
	if n := q.c.StagedLen(); n > 0 && !q.opts.IgnoreTempWarning {
		q.c.log.Warn("query evaluated with unmerged entities; they are not visible",
			zap.Int("staged", n),
		)
	}
}

// Gen yields matching live entities. Each call re-evaluates the query.
func (q *Query) Gen() iter.Seq[*Entity] {
	return func(yield func(*Entity) bool) {
		q.prepare()
		if q.less != nil {
			for _, e := range q.sorted() {
				if !yield(e) {
					return
				}
			}
			return
		}
		n := 0
		for _, e := range q.c.entities {
			if q.limit >= 0 && n >= q.limit {
				return
			}
			if !q.matches(e) {
				continue
			}
			n++
			if !yield(e) {
				return
			}
		}
	}
}

func (q *Query) sorted() []*Entity {
	var out []*Entity
	for _, e := range q.c.entities {
		if q.matches(e) {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, func(a, b *Entity) int {
		switch {
		case q.less(a, b):
			return -1
		case q.less(b, a):
			return 1
		}
		return 0
	})
	if q.limit >= 0 && len(out) > q.limit {
		out = out[:q.limit]
	}
	return out
}

// HasValues reports whether anything matches without building a result.
func (q *Query) HasValues() bool {
	if q.limit == 0 {
		return false
	}
	q.prepare()
	for _, e := range q.c.entities {
		if q.matches(e) {
			return true
		}
	}
	return false
}

func (q *Query) ToSlice() []*Entity {
	return slices.Collect(q.Gen())
}

func (q *Query) First() (*Entity, bool) {
	for e := range q.Gen() {
		return e, true
	}
	return nil, false
}

func (q *Query) Count() int {
	n := 0
	for range q.Gen() {
		n++
	}
	return n
}

func (q *Query) IDs() []EntityID {
	var ids []EntityID
	for e := range q.Gen() {
		ids = append(ids, e.id)
	}
	return ids
}

func (q *Query) Handles() []EntityHandle {
	var hs []EntityHandle
	for e := range q.Gen() {
		hs = append(hs, e.handle)
	}
	return hs
}

// Each2 calls fn for every live entity carrying both A and B.
func Each2[A, B any](c *EntityCollection, fn func(*Entity, *A, *B)) {
	ia, ib := uint(ComponentIDOf[A]()), uint(ComponentIDOf[B]())
	for _, e := range c.entities {
		if !e.mask.Test(ia) || !e.mask.Test(ib) {
			continue
		}
		a, _ := Get[A](e)
		b, _ := Get[B](e)
		fn(e, a, b)
	}
}

// Each3 calls fn for every live entity carrying A, B and C.
func Each3[A, B, C any](c *EntityCollection, fn func(*Entity, *A, *B, *C)) {
	ia, ib, ic := uint(ComponentIDOf[A]()), uint(ComponentIDOf[B]()), uint(ComponentIDOf[C]())
	for _, e := range c.entities {
		if !e.mask.Test(ia) || !e.mask.Test(ib) || !e.mask.Test(ic) {
			continue
		}
		a, _ := Get[A](e)
		b, _ := Get[B](e)
		cc, _ := Get[C](e)
		fn(e, a, b, cc)
	}
}
