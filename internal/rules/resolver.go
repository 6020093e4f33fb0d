package rules

import (
	"github.com/rutacat/rutacat/internal/pathfind"
	"github.com/rutacat/rutacat/internal/regions"
	"github.com/rutacat/rutacat/internal/rng"
)

// Resolved is a Definition materialized for one (start, target) pair:
// random placeholders are fixed and names are translated to region ids.
// It lives for a single generation attempt.
type Resolved struct {
	Def        Definition
	ComarcaIDs []string
}

// Resolver materializes and tests rules against a specific graph.
type Resolver struct {
	g  *regions.Graph
	pf *pathfind.Finder
}

// NewResolver creates a resolver over a graph and its path finder.
func NewResolver(g *regions.Graph, pf *pathfind.Finder) *Resolver {
	return &Resolver{g: g, pf: pf}
}

// Resolve fixes random placeholders. For a random-avoid rule one comarca
// is sampled from the whole graph minus start and target, producing a
// concrete avoid rule; every other kind passes through unchanged. The
// sample comes from the instance stream so the result is deterministic
// per seed.
func (r *Resolver) Resolve(def Definition, startID, targetID string, st *rng.Stream) Definition {
	if def.Kind != KindAvoidRandom {
		return def
	}

	var candidates []string
	for _, id := range r.g.AllIDs() {
		if id == startID || id == targetID {
			continue
		}
		name, _ := r.g.NameByID(id)
		candidates = append(candidates, name)
	}

	out := def
	out.Kind = KindAvoid
	out.TargetNames = nil
	if i := st.Pick(len(candidates)); i >= 0 {
		out.TargetNames = []string{candidates[i]}
	}
	return out
}

// Prepare resolves a definition and translates its target names to region
// ids through the normalized name lookup. Names that resolve to nothing
// are dropped rather than failing the whole rule.
func (r *Resolver) Prepare(def Definition, startID, targetID string, st *rng.Stream) Resolved {
	resolved := r.Resolve(def, startID, targetID, st)

	ids := make([]string, 0, len(resolved.TargetNames))
	for _, name := range resolved.TargetNames {
		if id, ok := r.g.IDByName(name); ok {
			ids = append(ids, id)
		}
	}
	return Resolved{Def: resolved, ComarcaIDs: ids}
}

// Feasible reports whether any route from start to target can satisfy the
// rule. A nil rule is always feasible.
//
// An avoid rule with an empty blocked set is infeasible by construction:
// it would constrain nothing, so accepting it would let a free shortest
// route masquerade as a constrained puzzle.
func (r *Resolver) Feasible(res *Resolved, startID, targetID string) bool {
	if res == nil {
		return true
	}

	switch res.Def.Kind {
	case KindAvoid:
		if len(res.ComarcaIDs) == 0 {
			return false
		}
		allowed := pathfind.AllowedExcept(r.g, res.ComarcaIDs)
		return r.pf.ShortestPathWithin(startID, targetID, allowed) != nil

	case KindMustIncludeAny:
		all := pathfind.AllowedExcept(r.g, nil)
		for _, id := range res.ComarcaIDs {
			// A via that is already an endpoint adds no constraint.
			if id == startID || id == targetID {
				continue
			}
			if r.pf.ReachableVia(startID, targetID, id, all) {
				return true
			}
		}
		return false
	}
	return false
}

// PathUnder returns the best route satisfying the rule, or nil when none
// exists. A nil rule yields the unconstrained shortest path.
func (r *Resolver) PathUnder(res *Resolved, startID, targetID string) []string {
	if res == nil {
		return r.pf.ShortestPath(startID, targetID)
	}

	switch res.Def.Kind {
	case KindAvoid:
		allowed := pathfind.AllowedExcept(r.g, res.ComarcaIDs)
		return r.pf.ShortestPathWithin(startID, targetID, allowed)

	case KindMustIncludeAny:
		var best []string
		for _, via := range res.ComarcaIDs {
			head := r.pf.ShortestPath(startID, via)
			if head == nil {
				continue
			}
			tail := r.pf.ShortestPath(via, targetID)
			if tail == nil {
				continue
			}
			joined := make([]string, 0, len(head)+len(tail)-1)
			joined = append(joined, head...)
			joined = append(joined, tail[1:]...)
			if best == nil || len(joined) < len(best) {
				best = joined
			}
		}
		if best == nil {
			return r.pf.ShortestPath(startID, targetID)
		}
		return best
	}
	return nil
}
