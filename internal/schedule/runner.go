package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rutacat/rutacat/internal/level"
	"github.com/rutacat/rutacat/internal/logging"
	"github.com/rutacat/rutacat/internal/metrics"
	"github.com/rutacat/rutacat/internal/regions"
	"github.com/rutacat/rutacat/internal/rng"
	"github.com/rutacat/rutacat/internal/rules"
	"github.com/rutacat/rutacat/internal/store"
)

// purposeGenerate is the run-ledger purpose for scheduled generation.
const purposeGenerate = "generate"

// Result reports what happened to one puzzle slot.
type Result struct {
	Key     string `json:"key"`
	Created bool   `json:"created"`
	Reason  string `json:"reason"`
	LevelID string `json:"level_id,omitempty"`
}

// BackfillResult aggregates a ranged backfill.
type BackfillResult struct {
	Results []Result `json:"results"`
	Created int      `json:"created"`
	Total   int      `json:"total"`
}

// Runner makes sure a level exists for a puzzle slot. The generation core
// it drives is pure; all state lives in the store, and the run ledger is
// the only defense against concurrent cron invocations.
type Runner struct {
	store    store.LevelStore
	graph    *regions.Graph
	catalog  []rules.Definition
	log      *logging.Logger
	metrics  *metrics.Metrics
	minStops int // 0 means mode default
}

// NewRunner wires a runner over a store, graph and rule catalog.
func NewRunner(st store.LevelStore, g *regions.Graph, catalog []rules.Definition) *Runner {
	return &Runner{
		store:   st,
		graph:   g,
		catalog: catalog,
		log:     logging.New("schedule"),
		metrics: metrics.Global(),
	}
}

// SetMinStops overrides the per-mode minimum internal stop count.
func (r *Runner) SetMinStops(n int) {
	r.minStops = n
}

// Ensure realizes the slot state machine: a missing slot gets a level
// generated from the slot's deterministic seed and persisted; a present
// slot is a no-op reported as "already exists". force bypasses the run
// ledger, not the calendar.
func (r *Runner) Ensure(ctx context.Context, cadence Cadence, key string, mode rules.Mode, force bool) (Result, error) {
	if _, err := ParseKey(cadence, key); err != nil {
		return Result{}, err
	}
	log := r.log.WithSlot(string(cadence), key, mode.ID)

	if !force {
		claimed, err := r.store.ClaimRun(ctx, string(cadence), key, mode.ID, purposeGenerate)
		if err != nil {
			r.metrics.RecordStoreError()
			return Result{}, fmt.Errorf("claim run: %w", err)
		}
		if !claimed {
			// Another runner got here first; not an error.
			log.Info("run_already_claimed", nil)
			return Result{Key: key, Created: false, Reason: "already ran"}, nil
		}
	}

	if existing, err := r.store.GetLevel(ctx, string(cadence), key, mode.ID); err == nil {
		r.metrics.RecordGenerate(false, false, 0)
		return Result{Key: key, Created: false, Reason: "already exists", LevelID: existing.ID}, nil
	} else if !store.IsNotFound(err) {
		r.metrics.RecordStoreError()
		return Result{}, fmt.Errorf("check slot: %w", err)
	}

	return r.generate(ctx, cadence, key, mode, log)
}

// generate builds and persists the level for a slot known (or assumed) to
// be missing. A save that loses a race reports "already exists".
func (r *Runner) generate(ctx context.Context, cadence Cadence, key string, mode rules.Mode, log *logging.Logger) (Result, error) {
	start := time.Now()

	recent, err := r.store.RecentRuleIDs(ctx, string(cadence))
	if err != nil {
		r.metrics.RecordStoreError()
		return Result{}, fmt.Errorf("rule history: %w", err)
	}

	lvl := r.build(cadence, key, mode, recent)
	if lvl.StartID == "" {
		return Result{}, fmt.Errorf("no puzzle available for %s %s", cadence, key)
	}

	if err := r.store.SaveLevel(ctx, string(cadence), key, mode.ID, &lvl); err != nil {
		if store.IsAlreadyExists(err) {
			// Lost the save race to a concurrent runner; same level either way.
			r.metrics.RecordGenerate(false, false, time.Since(start).Milliseconds())
			logging.GenerateEvent(string(cadence), key, mode.ID, false, lvl.RuleID == "", time.Since(start), nil)
			return Result{Key: key, Created: false, Reason: "already exists", LevelID: lvl.ID}, nil
		}
		r.metrics.RecordStoreError()
		logging.GenerateEvent(string(cadence), key, mode.ID, false, lvl.RuleID == "", time.Since(start), err)
		return Result{}, fmt.Errorf("save level: %w", err)
	}

	if lvl.RuleID != "" {
		if err := r.store.AppendRuleID(ctx, string(cadence), lvl.RuleID); err != nil {
			// History is a soft bias; losing one append is not fatal.
			log.Warn("history_append_failed", map[string]any{"rule": lvl.RuleID}, err)
		}
	}

	elapsed := time.Since(start)
	r.metrics.RecordGenerate(true, lvl.RuleID == "", elapsed.Milliseconds())
	logging.GenerateEvent(string(cadence), key, mode.ID, true, lvl.RuleID == "", elapsed, nil)

	return Result{Key: key, Created: true, Reason: "created", LevelID: lvl.ID}, nil
}

// build runs the deterministic core for one slot. Seed and level id are
// both pure functions of (key, mode), so every runner everywhere derives
// the identical level.
func (r *Runner) build(cadence Cadence, key string, mode rules.Mode, recent []string) level.Level {
	minStops := mode.MinInternalStops
	if r.minStops > 0 {
		minStops = r.minStops
	}

	pool := rules.PoolFor(r.catalog, mode)
	b := level.NewBuilder(r.graph, pool, minStops, key, recent)
	lvl := b.Build(rng.FromString(key + mode.ID))
	if lvl.StartID != "" {
		lvl.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(string(cadence)+"/"+key+"/"+mode.ID)).String()
	}
	return lvl
}

// Preview builds the slot's level without touching persistence.
func (r *Runner) Preview(ctx context.Context, cadence Cadence, key string, mode rules.Mode) (level.Level, error) {
	if _, err := ParseKey(cadence, key); err != nil {
		return level.Level{}, err
	}

	recent, err := r.store.RecentRuleIDs(ctx, string(cadence))
	if err != nil {
		return level.Level{}, fmt.Errorf("rule history: %w", err)
	}

	lvl := r.build(cadence, key, mode, recent)
	if lvl.StartID == "" {
		return level.Level{}, fmt.Errorf("no puzzle available for %s %s", cadence, key)
	}
	return lvl, nil
}

// Backfill fills every missing slot among keys. Existence is one bulk
// lookup up front; keys already present are never re-derived. A failing
// key does not stop the batch.
func (r *Runner) Backfill(ctx context.Context, cadence Cadence, keys []string, mode rules.Mode) (BackfillResult, error) {
	out := BackfillResult{Total: len(keys)}

	existing, err := r.store.ExistingKeys(ctx, string(cadence), mode.ID, keys)
	if err != nil {
		r.metrics.RecordStoreError()
		return out, fmt.Errorf("existence check: %w", err)
	}

	for _, key := range keys {
		if existing[key] {
			out.Results = append(out.Results, Result{Key: key, Created: false, Reason: "already exists"})
			continue
		}

		if _, err := ParseKey(cadence, key); err != nil {
			out.Results = append(out.Results, Result{Key: key, Created: false, Reason: err.Error()})
			continue
		}

		res, err := r.generate(ctx, cadence, key, mode, r.log.WithSlot(string(cadence), key, mode.ID))
		if err != nil {
			out.Results = append(out.Results, Result{Key: key, Created: false, Reason: err.Error()})
			continue
		}
		if res.Created {
			out.Created++
		}
		out.Results = append(out.Results, res)
	}
	return out, nil
}
