package node

import "reflect"

// Guard counts active manufacture frames per pointer-stripped type during
// one top-level call. The zero value is ready to use; it is not safe for
// concurrent use.
type Guard struct {
	active map[reflect.Type]int
}

// Enter registers a frame for t and returns the new count.
func (g *Guard) Enter(t reflect.Type) int {
	if g.active == nil {
		g.active = make(map[reflect.Type]int)
	}

	t = Base(t)
	g.active[t]++

	return g.active[t]
}

// Leave drops a frame for t.
func (g *Guard) Leave(t reflect.Type) {
	t = Base(t)

	switch n := g.active[t]; {
	case n <= 1:
		delete(g.active, t)
	default:
		g.active[t] = n - 1
	}
}

// Depth returns how many frames of t are active.
func (g *Guard) Depth(t reflect.Type) int {
	return g.active[Base(t)]
}

// Exceeds reports whether entering t once more would break maxDepth.
// A type may be active maxDepth times; the root frame counts.
func (g *Guard) Exceeds(t reflect.Type, maxDepth int) bool {
	return g.Depth(t) > maxDepth
}
