// Package trigger implements the VM's side-effect output: the spawn
// triggers the split/merge engine emits when it folds group-divergent
// contexts back together, and the object triggers user code allocates
// directly (spec.md §4.F, §4.H).
package trigger

import "github.com/wudi/triggervm/ids"

// Object is anything the VM can emit as a run's observable output.
type Object interface {
	isTrigger()
}

// Spawn is emitted by the merge engine each time it folds a
// non-representative sibling context into a representative one: "when
// group `From` fires, also fire everything in group `To`" (spec.md
// §4.F). Order is the run-wide monotonic counter recording emission
// order, since spawn triggers from different merges may race for a
// single run's "as observed" ordering otherwise.
type Spawn struct {
	From  ids.Id
	To    ids.Id
	Order uint64
}

func (Spawn) isTrigger() {}

// ObjectTrigger is a free-standing trigger the AllocTrigger opcode
// materializes directly from user code: its resolved object-key
// property bindings (one of which conventionally names the trigger's
// own kind — "obj_id" — exactly as the host runtime's own object
// property scheme does; the VM does not distinguish it) plus the
// symbolic group it was allocated into.
type ObjectTrigger struct {
	Props map[string]string
	Group ids.Id
	Order uint64
}

func (ObjectTrigger) isTrigger() {}

// Emitter collects emitted trigger objects in emission order and
// hands out the monotonic Order counter the merge engine and
// AllocTrigger both need (spec.md §4.F: "a monotonic trigger-order
// counter" is required for deterministic output ordering).
type Emitter struct {
	objects []Object
	order   uint64
}

func NewEmitter() *Emitter { return &Emitter{} }

// NextOrder returns the next value of the monotonic order counter
// without emitting anything.
func (e *Emitter) NextOrder() uint64 {
	e.order++
	return e.order
}

func (e *Emitter) EmitSpawn(from, to ids.Id) Spawn {
	s := Spawn{From: from, To: to, Order: e.NextOrder()}
	e.objects = append(e.objects, s)
	return s
}

func (e *Emitter) EmitObject(o ObjectTrigger) ObjectTrigger {
	o.Order = e.NextOrder()
	e.objects = append(e.objects, o)
	return o
}

func (e *Emitter) Objects() []Object { return e.objects }
