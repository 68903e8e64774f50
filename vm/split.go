package vm

import "github.com/wudi/triggervm/execctx"

// split replaces the current context with one clone per target IP,
// pushed onto the current full context's frontier so that execution
// continues with the new head (spec.md §4.D, §4.F: "Branching opcodes
// clone the current context, advance one clone down each arm, and
// push all clones onto the queue"). targets[0] becomes the new head.
func (v *VM) split(targets []int) {
	ctx := v.Contexts.YeetCurrent()
	full := v.Contexts.Top()

	clones := make([]*execctx.Context, len(targets))
	for i, t := range targets {
		clones[i] = ctx.Clone()
		clones[i].IP = t
	}
	for i := len(clones) - 1; i >= 0; i-- {
		full.Push(clones[i])
	}
	v.Log.Split(ctx.IP, len(targets))
}
