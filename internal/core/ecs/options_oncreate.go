//go:build ecs_handles_on_create

package ecs

// AssignHandlesOnCreate selects whether CreateEntity reserves a slot (and so a
// resolvable handle) immediately. This build reserves on create.
const AssignHandlesOnCreate = true
