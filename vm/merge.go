package vm

import (
	"github.com/wudi/triggervm/execctx"
	"github.com/wudi/triggervm/value/ops"
)

// mergeGroup collects candidates that share a state hash and have
// been confirmed structurally equal.
type mergeGroup struct {
	hash    uint64
	members []*execctx.Context
}

// tryMergeContexts implements spec.md §4.F. It pops every context at
// the current full context's frontier whose IP matches the head's,
// groups them by structural state, and for every group of size >= 2
// keeps one representative and emits a spawn trigger from each other
// member's group to the representative's.
//
// Open Question #1 (hash collisions, spec.md §9) is resolved here by
// confirming structural equality after a hash match before merging —
// the one deliberate deviation from the upstream hash-only merge.
func (v *VM) tryMergeContexts() {
	full := v.Contexts.Top()
	if len(full.Frontier) < 2 {
		return
	}

	headIP := full.Current().IP
	var candidates []*execctx.Context
	for len(full.Frontier) > 0 {
		top := full.Frontier[len(full.Frontier)-1]
		if top.IP != headIP {
			break
		}
		candidates = append(candidates, full.Pop())
	}
	if len(candidates) < 2 {
		for i := len(candidates) - 1; i >= 0; i-- {
			full.Push(candidates[i])
		}
		return
	}

	var groups []*mergeGroup
	for _, c := range candidates {
		h := v.contextHash(c)
		placed := false
		for _, g := range groups {
			if g.hash == h && v.contextsEqual(g.members[0], c) {
				g.members = append(g.members, c)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, &mergeGroup{hash: h, members: []*execctx.Context{c}})
		}
	}

	survivors := make([]*execctx.Context, 0, len(groups))
	spawned := 0
	for _, g := range groups {
		rep := g.members[0]
		for _, loser := range g.members[1:] {
			v.Emitter.EmitSpawn(loser.Group, rep.Group)
			spawned++
		}
		survivors = append(survivors, rep)
	}

	// Push in reverse first-seen order so the group containing the
	// original head (always candidates[0]) ends up back on top.
	for i := len(survivors) - 1; i >= 0; i-- {
		full.Push(survivors[i])
	}
	v.Log.Merge(len(candidates), len(groups), spawned)
}

// contextHash hashes a context's observable state: its register
// file's contents, in register order. Group and try/catch stack are
// deliberately excluded — they are exactly what a merge is allowed to
// differ on (the spawn trigger records the group divergence).
func (v *VM) contextHash(c *execctx.Context) uint64 {
	h := uint64(14695981039346656037)
	for _, cell := range c.Registers {
		h ^= ops.StructuralHash(cell.Value())
		h *= 1099511628211
	}
	return h
}

func (v *VM) contextsEqual(a, b *execctx.Context) bool {
	if len(a.Registers) != len(b.Registers) {
		return false
	}
	for i := range a.Registers {
		if !ops.StructuralEqual(a.Registers[i].Value(), b.Registers[i].Value(), true) {
			return false
		}
	}
	return true
}
