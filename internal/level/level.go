// Package level builds playable puzzles: a start comarca, a target
// comarca, a reference route and optionally the rule that makes the route
// longer than the free shortest one.
package level

import (
	"fmt"

	"github.com/rutacat/rutacat/internal/regions"
)

// Level is one generated puzzle. ShortestPath is the reference solution
// under the rule, endpoints included. RuleID is empty for a rule-less
// fallback level; AvoidIDs and MustPassIDs are set only when the winning
// rule's kind applies.
type Level struct {
	ID           string   `json:"id,omitempty"`
	StartID      string   `json:"startId"`
	TargetID     string   `json:"targetId"`
	ShortestPath []string `json:"shortestPath"`
	RuleID       string   `json:"ruleId,omitempty"`
	AvoidIDs     []string `json:"avoidIds,omitempty"`
	MustPassIDs  []string `json:"mustPassIds,omitempty"`
}

// Validate checks the structural invariants of a level against its graph:
// the path connects start to target over real borders and respects the
// attached rule sets.
func (l *Level) Validate(g *regions.Graph) error {
	if len(l.ShortestPath) == 0 {
		return fmt.Errorf("level %s/%s: empty path", l.StartID, l.TargetID)
	}
	if l.ShortestPath[0] != l.StartID {
		return fmt.Errorf("level: path starts at %s, want %s", l.ShortestPath[0], l.StartID)
	}
	if last := l.ShortestPath[len(l.ShortestPath)-1]; last != l.TargetID {
		return fmt.Errorf("level: path ends at %s, want %s", last, l.TargetID)
	}
	for i := 0; i+1 < len(l.ShortestPath); i++ {
		if !g.AreAdjacent(l.ShortestPath[i], l.ShortestPath[i+1]) {
			return fmt.Errorf("level: %s and %s do not share a border", l.ShortestPath[i], l.ShortestPath[i+1])
		}
	}

	if len(l.AvoidIDs) > 0 {
		blocked := make(map[string]bool, len(l.AvoidIDs))
		for _, id := range l.AvoidIDs {
			blocked[id] = true
		}
		for _, id := range l.ShortestPath {
			if blocked[id] {
				return fmt.Errorf("level: path crosses avoided comarca %s", id)
			}
		}
	}

	if len(l.MustPassIDs) > 0 {
		wanted := make(map[string]bool, len(l.MustPassIDs))
		for _, id := range l.MustPassIDs {
			wanted[id] = true
		}
		hit := false
		for _, id := range l.ShortestPath {
			if wanted[id] {
				hit = true
				break
			}
		}
		if !hit {
			return fmt.Errorf("level: path misses every must-pass comarca")
		}
	}
	return nil
}
