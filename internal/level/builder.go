package level

import (
	"github.com/rutacat/rutacat/internal/pathfind"
	"github.com/rutacat/rutacat/internal/regions"
	"github.com/rutacat/rutacat/internal/rng"
	"github.com/rutacat/rutacat/internal/rules"
)

const (
	// maxIterations bounds each generation pass. With a graph of tens of
	// nodes this is far more than enough; the bound exists so generation
	// can never spin.
	maxIterations = 500

	// minRuleAttempts floors the inner rule-sampling budget for small pools.
	minRuleAttempts = 60
)

// Builder generates one level per call to Build. All randomness flows
// through the supplied stream, so a builder over the same graph, catalog
// pool and seed reproduces the same level byte for byte.
type Builder struct {
	graph    *regions.Graph
	finder   *pathfind.Finder
	resolver *rules.Resolver

	pool       []rules.Definition
	minStops   int
	cadenceKey string
	recent     []string
}

// NewBuilder wires a builder. pool is the catalog already filtered to the
// mode's tiers; recent is this cadence's rule history snapshot, used only
// to bias the first rule probe away from repeats.
func NewBuilder(g *regions.Graph, pool []rules.Definition, minStops int, cadenceKey string, recent []string) *Builder {
	pf := pathfind.New(g)
	return &Builder{
		graph:      g,
		finder:     pf,
		resolver:   rules.NewResolver(g, pf),
		pool:       pool,
		minStops:   minStops,
		cadenceKey: cadenceKey,
		recent:     recent,
	}
}

// Build runs the bounded generation loop: a main pass that wants a rule
// making the route strictly longer than the free shortest path, a second
// pass that settles for a rule-less route of acceptable length, and a
// last-resort degraded level. It never fails: with a non-empty graph some
// playable level always comes back.
func (b *Builder) Build(stream *rng.Stream) Level {
	ids := b.graph.AllIDs()

	if lvl, ok := b.constrainedPass(ids, stream); ok {
		return lvl
	}
	if lvl, ok := b.unconstrainedPass(ids, stream); ok {
		return lvl
	}
	return b.degraded(ids)
}

// constrainedPass samples (start, target, rule) triples until a rule makes
// the puzzle strictly harder than the free route.
func (b *Builder) constrainedPass(ids []string, stream *rng.Stream) (Level, bool) {
	for i := 0; i < maxIterations; i++ {
		start, target, ok := b.samplePair(ids, stream)
		if !ok {
			continue
		}

		res := b.findFeasibleRule(start, target, stream)
		if res == nil {
			continue
		}

		path := b.resolver.PathUnder(res, start, target)
		base := b.finder.ShortestPath(start, target)
		if path == nil || base == nil {
			continue
		}
		// The rule must add cost: ties with the free route are rejected,
		// that is the difficulty gate.
		if len(path) <= len(base) {
			continue
		}
		if len(path) < b.minStops+2 {
			continue
		}

		return b.emit(start, target, path, res), true
	}
	return Level{}, false
}

// unconstrainedPass drops the rule requirement and takes any pair whose
// free route is long enough.
func (b *Builder) unconstrainedPass(ids []string, stream *rng.Stream) (Level, bool) {
	for i := 0; i < maxIterations; i++ {
		start, target, ok := b.samplePair(ids, stream)
		if !ok {
			continue
		}
		path := b.finder.ShortestPath(start, target)
		if path == nil || len(path) < b.minStops+2 {
			continue
		}
		return b.emit(start, target, path, nil), true
	}
	return Level{}, false
}

// degraded is the terminal fallback: the first two regions and whatever
// route connects them. Playable even when sampling found nothing.
func (b *Builder) degraded(ids []string) Level {
	if len(ids) < 2 {
		return Level{}
	}
	start, target := ids[0], ids[1]
	return b.emit(start, target, b.finder.ShortestPath(start, target), nil)
}

// samplePair draws start and target uniformly, rejecting equal and
// directly adjacent pairs: a one-hop puzzle is trivial.
func (b *Builder) samplePair(ids []string, stream *rng.Stream) (string, string, bool) {
	start := ids[stream.Intn(len(ids))]
	target := ids[stream.Intn(len(ids))]
	if start == target || b.graph.AreAdjacent(start, target) {
		return "", "", false
	}
	return start, target, true
}

// findFeasibleRule probes the pool within a bounded budget. The first
// probe honors the rule history; retries sample uniformly so one
// infeasible favorite cannot block the pair.
func (b *Builder) findFeasibleRule(start, target string, stream *rng.Stream) *rules.Resolved {
	if len(b.pool) == 0 {
		return nil
	}

	budget := 3 * len(b.pool)
	if budget < minRuleAttempts {
		budget = minRuleAttempts
	}

	for attempt := 0; attempt < budget; attempt++ {
		var def rules.Definition
		if attempt == 0 {
			picked := rules.PickWithHistory(b.pool, b.cadenceKey, b.recent)
			if picked == nil {
				return nil
			}
			def = *picked
		} else {
			def = b.pool[stream.Intn(len(b.pool))]
		}

		res := b.resolver.Prepare(def, start, target, stream)
		if b.resolver.Feasible(&res, start, target) {
			return &res
		}
	}
	return nil
}

func (b *Builder) emit(start, target string, path []string, res *rules.Resolved) Level {
	lvl := Level{
		StartID:      start,
		TargetID:     target,
		ShortestPath: path,
	}
	if res == nil {
		return lvl
	}

	lvl.RuleID = res.Def.ID
	switch res.Def.Kind {
	case rules.KindAvoid:
		lvl.AvoidIDs = append([]string(nil), res.ComarcaIDs...)
	case rules.KindMustIncludeAny:
		lvl.MustPassIDs = append([]string(nil), res.ComarcaIDs...)
	}
	return lvl
}
