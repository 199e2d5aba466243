package ecs

import "context"

// The functions below operate on the collection bound to ctx (see
// WithCollection), falling back to Default.

func CreateEntity(ctx context.Context) *Entity {
	return Current(ctx).CreateEntity()
}

func CreatePermanentEntity(ctx context.Context) *Entity {
	return Current(ctx).CreatePermanentEntity()
}

func MergeEntityArrays(ctx context.Context) {
	Current(ctx).Merge()
}

func MarkIDForCleanup(ctx context.Context, id EntityID) bool {
	return Current(ctx).MarkIDForCleanup(id)
}

func Cleanup(ctx context.Context) int {
	return Current(ctx).Cleanup()
}

func DeleteAllEntities(ctx context.Context, includePermanent bool) int {
	return Current(ctx).DeleteAll(includePermanent)
}

func DeleteAllEntitiesNoReallyIMeanAll(ctx context.Context) {
	Current(ctx).DeleteAllNoReallyIMeanAll()
}

func HandleFor(ctx context.Context, e *Entity) EntityHandle {
	return Current(ctx).HandleFor(e)
}

func Resolve(ctx context.Context, h EntityHandle) (*Entity, bool) {
	return Current(ctx).Resolve(h)
}

func RegisterSingletonIn[T any](ctx context.Context, e *Entity) {
	RegisterSingleton[T](Current(ctx), e)
}

func GetSingletonIn[T any](ctx context.Context) *Entity {
	return GetSingleton[T](Current(ctx))
}

func QueryIn(ctx context.Context, opts QueryOptions) *Query {
	return NewQuery(Current(ctx), opts)
}
