// Package pathfind computes shortest routes over the comarca graph with
// breadth-first search. All operations are O(V+E) and allocation is kept
// to the result slice plus two scratch arrays per call; the graph itself
// is never mutated.
package pathfind

import "github.com/rutacat/rutacat/internal/regions"

// Finder runs BFS queries against one graph.
type Finder struct {
	g *regions.Graph
}

// New creates a finder for the given graph.
func New(g *regions.Graph) *Finder {
	return &Finder{g: g}
}

// ShortestPath returns a geodesic path from start to target, both
// endpoints included. It returns nil when either id is empty or unknown,
// [start] when start == target, and nil when target is unreachable.
//
// Ties between equal-length paths break on neighbor iteration order,
// which is not part of the contract: callers may rely on length only.
func (f *Finder) ShortestPath(start, target string) []string {
	return f.ShortestPathWithin(start, target, nil)
}

// ShortestPathWithin is ShortestPath restricted to the ids in allowed.
// A nil allowed set means the whole graph. If start or target is itself
// outside the allowed set the result is nil.
func (f *Finder) ShortestPathWithin(start, target string, allowed map[string]bool) []string {
	if start == "" || target == "" {
		return nil
	}
	s, ok := f.g.Index(start)
	if !ok {
		return nil
	}
	t, ok := f.g.Index(target)
	if !ok {
		return nil
	}
	if allowed != nil && (!allowed[start] || !allowed[target]) {
		return nil
	}
	if s == t {
		return []string{start}
	}

	n := f.g.Len()
	parent := make([]int, n)
	for i := range parent {
		parent[i] = -1
	}
	parent[s] = s

	queue := make([]int, 0, n)
	queue = append(queue, s)

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range f.g.NeighborIndexes(v) {
			if parent[w] != -1 {
				continue
			}
			if allowed != nil && !allowed[f.g.IDAt(w)] {
				continue
			}
			parent[w] = v
			if w == t {
				return f.rebuild(parent, s, t)
			}
			queue = append(queue, w)
		}
	}
	return nil
}

// ReachableVia reports whether a route start -> via -> target exists
// entirely inside the allowed set. via itself must be allowed.
func (f *Finder) ReachableVia(start, target, via string, allowed map[string]bool) bool {
	if allowed != nil && !allowed[via] {
		return false
	}
	if f.ShortestPathWithin(start, via, allowed) == nil {
		return false
	}
	return f.ShortestPathWithin(via, target, allowed) != nil
}

func (f *Finder) rebuild(parent []int, s, t int) []string {
	// Walk parents back from target, then reverse.
	var rev []int
	for v := t; v != s; v = parent[v] {
		rev = append(rev, v)
	}
	rev = append(rev, s)

	path := make([]string, len(rev))
	for i, v := range rev {
		path[len(rev)-1-i] = f.g.IDAt(v)
	}
	return path
}

// AllowedExcept builds an allowed set covering every region except the
// blocked ids. Used for avoid rules.
func AllowedExcept(g *regions.Graph, blocked []string) map[string]bool {
	skip := make(map[string]bool, len(blocked))
	for _, id := range blocked {
		skip[id] = true
	}
	allowed := make(map[string]bool, g.Len())
	for _, id := range g.AllIDs() {
		if !skip[id] {
			allowed[id] = true
		}
	}
	return allowed
}
