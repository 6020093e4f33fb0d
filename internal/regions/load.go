package regions

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rutacat/rutacat/data"
)

// Comarca is one entry of the external topology schema.
type Comarca struct {
	ID  string `json:"id"`
	Nom string `json:"nom"`
}

// Document is the external topology schema: a comarca list plus an
// adjacency list index-aligned with it.
type Document struct {
	Comarques []Comarca `json:"comarques"`
	Adjacency [][]int   `json:"adjacency"`
}

// Load builds a Graph from a topology document. Validation is strict and
// failure is fatal for the caller: a partially valid graph is never
// returned.
func Load(doc Document) (*Graph, error) {
	if len(doc.Comarques) == 0 {
		return nil, fmt.Errorf("topology: empty comarca list")
	}
	if len(doc.Adjacency) != len(doc.Comarques) {
		return nil, fmt.Errorf("topology: %d comarques but %d adjacency rows", len(doc.Comarques), len(doc.Adjacency))
	}

	g := &Graph{
		regions: make([]Region, len(doc.Comarques)),
		byID:    make(map[string]int, len(doc.Comarques)),
		byName:  make(map[string]int, len(doc.Comarques)),
		adj:     make([][]int, len(doc.Comarques)),
	}

	for i, c := range doc.Comarques {
		if c.ID == "" || c.Nom == "" {
			return nil, fmt.Errorf("topology: comarca %d has empty id or name", i)
		}
		if _, dup := g.byID[c.ID]; dup {
			return nil, fmt.Errorf("topology: duplicate comarca id %q", c.ID)
		}
		key := Normalize(c.Nom)
		if _, dup := g.byName[key]; dup {
			return nil, fmt.Errorf("topology: comarca name %q collides after normalization", c.Nom)
		}
		g.regions[i] = Region{ID: c.ID, Name: c.Nom}
		g.byID[c.ID] = i
		g.byName[key] = i
	}

	for i, row := range doc.Adjacency {
		seen := make(map[int]bool, len(row))
		for _, j := range row {
			if j < 0 || j >= len(doc.Comarques) {
				return nil, fmt.Errorf("topology: %q lists out-of-range neighbor %d", g.regions[i].ID, j)
			}
			if j == i {
				return nil, fmt.Errorf("topology: %q lists itself as neighbor", g.regions[i].ID)
			}
			if seen[j] {
				return nil, fmt.Errorf("topology: %q lists neighbor %q twice", g.regions[i].ID, g.regions[j].ID)
			}
			seen[j] = true
		}
		g.adj[i] = append([]int(nil), row...)
	}

	// Symmetry: shares-a-border is undirected.
	for i, row := range g.adj {
		for _, j := range row {
			if !containsInt(g.adj[j], i) {
				return nil, fmt.Errorf("topology: %q lists %q but not the reverse", g.regions[i].ID, g.regions[j].ID)
			}
		}
	}

	return g, nil
}

// LoadBytes parses and loads a topology JSON document.
func LoadBytes(b []byte) (*Graph, error) {
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse topology: %w", err)
	}
	return Load(doc)
}

// LoadFile loads a topology document from disk.
func LoadFile(path string) (*Graph, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topology: %w", err)
	}
	return LoadBytes(b)
}

// Default loads the embedded comarca topology.
func Default() (*Graph, error) {
	return LoadBytes(data.Comarques)
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
