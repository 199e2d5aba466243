//go:build !ecs_handles_on_create

package ecs

// AssignHandlesOnCreate selects whether CreateEntity reserves a slot (and so a
// resolvable handle) immediately. Build with -tags ecs_handles_on_create to
// enable it; otherwise handles are assigned by Merge.
const AssignHandlesOnCreate = false
