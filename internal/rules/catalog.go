// Package rules holds the constraint catalog and the machinery that turns
// an abstract rule into concrete comarca sets for one puzzle instance.
package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rutacat/rutacat/data"
)

// Kind is what a rule demands of a route.
type Kind string

const (
	// KindAvoid forbids every comarca in the target set.
	KindAvoid Kind = "avoid"
	// KindMustIncludeAny requires at least one comarca of the target set.
	KindMustIncludeAny Kind = "mustIncludeAny"
	// KindAvoidRandom is an avoid rule whose single comarca is sampled per
	// puzzle instance.
	KindAvoidRandom Kind = "avoidRandom"
)

// Tier is the declared difficulty band of a rule.
type Tier string

const (
	TierEasy   Tier = "easy"
	TierMedium Tier = "medium"
	TierHard   Tier = "hard"
	TierExpert Tier = "expert"
)

// Definition is one catalog entry. Definitions are static: loaded once and
// never mutated, so they are safe to share across generations.
type Definition struct {
	ID          string
	Kind        Kind
	Text        string
	TargetNames []string
	Tier        Tier
	Tags        []string
}

// schemaRule is the external catalog schema.
type schemaRule struct {
	ID                 string   `json:"id"`
	Type               string   `json:"type"` // REQUIRE or FORBID
	Text               string   `json:"text"`
	Comarques          []string `json:"comarques"`
	DifficultyCultural int      `json:"difficultyCultural"`
	Tags               []string `json:"tags"`
}

type schemaDoc struct {
	Rules []schemaRule `json:"rules"`
}

// TierFromCultural maps the catalog's 1..5 cultural difficulty onto tiers.
func TierFromCultural(n int) Tier {
	switch {
	case n >= 5:
		return TierExpert
	case n >= 4:
		return TierHard
	case n >= 3:
		return TierMedium
	default:
		return TierEasy
	}
}

// ParseCatalog decodes one catalog document. A FORBID entry with no
// comarques is a random-avoid rule: the forbidden comarca is sampled when
// the puzzle is generated.
func ParseCatalog(b []byte) ([]Definition, error) {
	var doc schemaDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse rule catalog: %w", err)
	}

	defs := make([]Definition, 0, len(doc.Rules))
	for i, r := range doc.Rules {
		if r.ID == "" {
			return nil, fmt.Errorf("rule catalog: entry %d has no id", i)
		}

		var kind Kind
		switch r.Type {
		case "REQUIRE":
			if len(r.Comarques) == 0 {
				return nil, fmt.Errorf("rule catalog: REQUIRE rule %q names no comarques", r.ID)
			}
			kind = KindMustIncludeAny
		case "FORBID":
			kind = KindAvoid
			if len(r.Comarques) == 0 {
				kind = KindAvoidRandom
			}
		default:
			return nil, fmt.Errorf("rule catalog: rule %q has unknown type %q", r.ID, r.Type)
		}

		defs = append(defs, Definition{
			ID:          r.ID,
			Kind:        kind,
			Text:        r.Text,
			TargetNames: append([]string(nil), r.Comarques...),
			Tier:        TierFromCultural(r.DifficultyCultural),
			Tags:        append([]string(nil), r.Tags...),
		})
	}
	return defs, nil
}

// LoadDir loads and merges every rules*.json file under dir. Files are
// visited in lexical order so the merged catalog order is stable across
// machines. Duplicate rule ids across files are a load error.
func LoadDir(dir string) ([]Definition, error) {
	matches, err := doublestar.FilepathGlob(filepath.Join(dir, "rules*.json"))
	if err != nil {
		return nil, fmt.Errorf("scan rule catalog dir: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("rule catalog: no rules*.json under %s", dir)
	}
	sort.Strings(matches)

	var defs []Definition
	seen := make(map[string]string)
	for _, path := range matches {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read rule catalog %s: %w", path, err)
		}
		part, err := ParseCatalog(b)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		for _, d := range part {
			if prev, dup := seen[d.ID]; dup {
				return nil, fmt.Errorf("rule catalog: id %q in both %s and %s", d.ID, prev, path)
			}
			seen[d.ID] = path
			defs = append(defs, d)
		}
	}
	return defs, nil
}

// DefaultCatalog parses the embedded catalog.
func DefaultCatalog() ([]Definition, error) {
	return ParseCatalog(data.Rules)
}

// Mode is a difficulty setting for one puzzle cadence: which rule tiers
// are eligible and how long the route has to be.
type Mode struct {
	ID               string
	Tiers            []Tier
	MinInternalStops int
}

var (
	// ModeClassic is the everyday daily puzzle.
	ModeClassic = Mode{ID: "classic", Tiers: []Tier{TierEasy, TierMedium, TierHard}, MinInternalStops: 1}
	// ModeExpert is the weekly long-route puzzle.
	ModeExpert = Mode{ID: "expert", Tiers: []Tier{TierHard, TierExpert}, MinInternalStops: 2}
)

// ModeByID resolves a mode id.
func ModeByID(id string) (Mode, bool) {
	switch id {
	case ModeClassic.ID:
		return ModeClassic, true
	case ModeExpert.ID:
		return ModeExpert, true
	}
	return Mode{}, false
}

// PoolFor filters the catalog down to the tiers a mode allows, preserving
// catalog order.
func PoolFor(defs []Definition, m Mode) []Definition {
	allowed := make(map[Tier]bool, len(m.Tiers))
	for _, tier := range m.Tiers {
		allowed[tier] = true
	}
	var pool []Definition
	for _, d := range defs {
		if allowed[d.Tier] {
			pool = append(pool, d)
		}
	}
	return pool
}
