// Package regions holds the comarca adjacency graph. The graph is built
// once at load time and read-only afterwards; string ids are translated to
// dense indices at the boundary so path search never touches maps.
package regions

// Region is one comarca. Identity is the id; the name is for display and
// catalog matching only.
type Region struct {
	ID   string
	Name string
}

// Graph is the undirected "shares a border" relation over regions.
// Adjacency is symmetric by construction: the loader rejects documents
// where B lists A but A does not list B.
type Graph struct {
	regions []Region
	byID    map[string]int
	byName  map[string]int // normalized display name -> index
	adj     [][]int        // dense neighbor indices, index-aligned with regions
}

// Len returns the number of regions.
func (g *Graph) Len() int {
	return len(g.regions)
}

// AllIDs returns every region id in load order.
func (g *Graph) AllIDs() []string {
	ids := make([]string, len(g.regions))
	for i, r := range g.regions {
		ids[i] = r.ID
	}
	return ids
}

// Names returns every display name in load order.
func (g *Graph) Names() []string {
	names := make([]string, len(g.regions))
	for i, r := range g.regions {
		names[i] = r.Name
	}
	return names
}

// Contains reports whether the id names a loaded region.
func (g *Graph) Contains(id string) bool {
	_, ok := g.byID[id]
	return ok
}

// Neighbors returns the ids adjacent to id, or nil for an unknown id.
// A region with no neighbors is valid and returns an empty slice.
func (g *Graph) Neighbors(id string) []string {
	i, ok := g.byID[id]
	if !ok {
		return nil
	}
	out := make([]string, len(g.adj[i]))
	for k, j := range g.adj[i] {
		out[k] = g.regions[j].ID
	}
	return out
}

// AreAdjacent reports whether a and b share a border.
func (g *Graph) AreAdjacent(a, b string) bool {
	i, ok := g.byID[a]
	if !ok {
		return false
	}
	j, ok := g.byID[b]
	if !ok {
		return false
	}
	for _, n := range g.adj[i] {
		if n == j {
			return true
		}
	}
	return false
}

// IDByName resolves a display name to a region id. Matching is case,
// diacritic and punctuation insensitive, so "Pallars Jussa" and
// "pallars jussà" resolve to the same region.
func (g *Graph) IDByName(name string) (string, bool) {
	i, ok := g.byName[Normalize(name)]
	if !ok {
		return "", false
	}
	return g.regions[i].ID, true
}

// NameByID returns the display name for a region id.
func (g *Graph) NameByID(id string) (string, bool) {
	i, ok := g.byID[id]
	if !ok {
		return "", false
	}
	return g.regions[i].Name, true
}

// Index returns the dense index for an id. The dense accessors below
// exist for the path finder's hot loop.
func (g *Graph) Index(id string) (int, bool) {
	i, ok := g.byID[id]
	return i, ok
}

// IDAt returns the id at a dense index.
func (g *Graph) IDAt(i int) string {
	return g.regions[i].ID
}

// NeighborIndexes returns the dense adjacency row for index i. The
// returned slice is shared; callers must not mutate it.
func (g *Graph) NeighborIndexes(i int) []int {
	return g.adj[i]
}
