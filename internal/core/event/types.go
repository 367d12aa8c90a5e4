package event

import (
	"reflect"

	"github.com/l1jgo/elemrt/internal/core/ecs"
)

// Lifecycle events fired by the runtime itself.

// Inserted is triggered globally after an entity's on-inserted hook ran.
type Inserted struct {
	Handle ecs.Handle
}

// Destroyed is triggered on the entity itself right before its slot is freed.
type Destroyed struct {
	Handle ecs.Handle
}

// Teardown is triggered on each dependent of a removed entity.
type Teardown struct {
	Handle ecs.Handle   // the dependent receiving the notification
	Source ecs.Handle   // the entity being removed
	Set    reflect.Type // edge set the link belongs to, nil for the default set
	Mode   ecs.LinkMode
}

// Removed is triggered globally once the slot is gone.
type Removed struct {
	Handle ecs.Handle
}

// Signal is a name-keyed event for collaborators that cannot name Go types,
// such as scripts.
type Signal struct {
	Name string
	Args map[string]any
}
