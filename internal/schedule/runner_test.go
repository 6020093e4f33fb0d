package schedule

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rutacat/rutacat/internal/regions"
	"github.com/rutacat/rutacat/internal/rules"
	"github.com/rutacat/rutacat/internal/store"
)

func newTestRunner(t *testing.T) (*Runner, *store.SQLite) {
	t.Helper()

	st, err := store.New(filepath.Join(t.TempDir(), "rutacat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	g, err := regions.Default()
	require.NoError(t, err)

	catalog, err := rules.DefaultCatalog()
	require.NoError(t, err)

	return NewRunner(st, g, catalog), st
}

func TestEnsureCreatesThenReportsExisting(t *testing.T) {
	r, st := newTestRunner(t)
	ctx := context.Background()

	first, err := r.Ensure(ctx, CadenceDaily, "2024-05-17", rules.ModeClassic, false)
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, "created", first.Reason)
	assert.NotEmpty(t, first.LevelID)

	// Same slot again. The ledger already holds the claim, so the second
	// call never reaches generation.
	second, err := r.Ensure(ctx, CadenceDaily, "2024-05-17", rules.ModeClassic, false)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, "already ran", second.Reason)

	// Force skips the ledger but the calendar still wins.
	third, err := r.Ensure(ctx, CadenceDaily, "2024-05-17", rules.ModeClassic, true)
	require.NoError(t, err)
	assert.False(t, third.Created)
	assert.Equal(t, "already exists", third.Reason)
	assert.Equal(t, first.LevelID, third.LevelID)

	n, err := st.CountLevels(ctx, string(CadenceDaily))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestEnsureRejectsMalformedKey(t *testing.T) {
	r, _ := newTestRunner(t)

	_, err := r.Ensure(context.Background(), CadenceDaily, "17-05-2024", rules.ModeClassic, false)
	assert.Error(t, err)

	_, err = r.Ensure(context.Background(), CadenceWeekly, "2024-05-17", rules.ModeClassic, false)
	assert.Error(t, err)
}

func TestEnsureDeterministicAcrossStores(t *testing.T) {
	ctx := context.Background()

	ra, _ := newTestRunner(t)
	rb, _ := newTestRunner(t)

	la, err := ra.Ensure(ctx, CadenceDaily, "2024-05-17", rules.ModeClassic, false)
	require.NoError(t, err)
	lb, err := rb.Ensure(ctx, CadenceDaily, "2024-05-17", rules.ModeClassic, false)
	require.NoError(t, err)

	// Two independent deployments derive the same level id for the slot.
	assert.Equal(t, la.LevelID, lb.LevelID)

	stA, err := ra.store.GetLevel(ctx, string(CadenceDaily), "2024-05-17", rules.ModeClassic.ID)
	require.NoError(t, err)
	stB, err := rb.store.GetLevel(ctx, string(CadenceDaily), "2024-05-17", rules.ModeClassic.ID)
	require.NoError(t, err)
	assert.Equal(t, stA, stB)
}

func TestEnsureModesAreIndependentSlots(t *testing.T) {
	r, st := newTestRunner(t)
	ctx := context.Background()

	classic, err := r.Ensure(ctx, CadenceDaily, "2024-05-17", rules.ModeClassic, false)
	require.NoError(t, err)
	expert, err := r.Ensure(ctx, CadenceDaily, "2024-05-17", rules.ModeExpert, false)
	require.NoError(t, err)

	assert.True(t, classic.Created)
	assert.True(t, expert.Created)
	assert.NotEqual(t, classic.LevelID, expert.LevelID)

	n, err := st.CountLevels(ctx, string(CadenceDaily))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestEnsureWeekly(t *testing.T) {
	r, _ := newTestRunner(t)

	res, err := r.Ensure(context.Background(), CadenceWeekly, "2024-W20", rules.ModeExpert, false)
	require.NoError(t, err)
	assert.True(t, res.Created)
}

func TestEnsureRecordsRuleHistory(t *testing.T) {
	r, st := newTestRunner(t)
	ctx := context.Background()

	var withRule string
	for _, key := range KeysInRange(CadenceDaily, mustDay(t, "2024-05-01"), mustDay(t, "2024-05-20")) {
		res, err := r.Ensure(ctx, CadenceDaily, key, rules.ModeClassic, false)
		require.NoError(t, err)
		require.True(t, res.Created)

		lvl, err := st.GetLevel(ctx, string(CadenceDaily), key, rules.ModeClassic.ID)
		require.NoError(t, err)
		if lvl.RuleID != "" {
			withRule = lvl.RuleID
		}
	}
	require.NotEmpty(t, withRule, "expected at least one constrained level over 20 days")

	recent, err := st.RecentRuleIDs(ctx, string(CadenceDaily))
	require.NoError(t, err)
	assert.Contains(t, recent, withRule)
}

func TestPreviewDoesNotPersist(t *testing.T) {
	r, st := newTestRunner(t)
	ctx := context.Background()

	lvl, err := r.Preview(ctx, CadenceDaily, "2024-05-17", rules.ModeClassic)
	require.NoError(t, err)
	assert.NotEmpty(t, lvl.StartID)
	assert.NotEmpty(t, lvl.ID)

	_, err = st.GetLevel(ctx, string(CadenceDaily), "2024-05-17", rules.ModeClassic.ID)
	assert.True(t, store.IsNotFound(err))

	// Preview then ensure yields the very same level.
	res, err := r.Ensure(ctx, CadenceDaily, "2024-05-17", rules.ModeClassic, false)
	require.NoError(t, err)
	assert.Equal(t, lvl.ID, res.LevelID)
}

func TestBackfillFillsOnlyMissing(t *testing.T) {
	r, st := newTestRunner(t)
	ctx := context.Background()

	pre, err := r.Ensure(ctx, CadenceDaily, "2024-05-16", rules.ModeClassic, false)
	require.NoError(t, err)
	require.True(t, pre.Created)

	keys := []string{"2024-05-15", "2024-05-16", "2024-05-17"}
	out, err := r.Backfill(ctx, CadenceDaily, keys, rules.ModeClassic)
	require.NoError(t, err)

	assert.Equal(t, 3, out.Total)
	assert.Equal(t, 2, out.Created)
	require.Len(t, out.Results, 3)
	assert.Equal(t, "created", out.Results[0].Reason)
	assert.Equal(t, "already exists", out.Results[1].Reason)
	assert.Equal(t, "created", out.Results[2].Reason)

	n, err := st.CountLevels(ctx, string(CadenceDaily))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestBackfillContinuesPastBadKeys(t *testing.T) {
	r, _ := newTestRunner(t)

	out, err := r.Backfill(context.Background(), CadenceDaily,
		[]string{"not-a-date", "2024-05-17"}, rules.ModeClassic)
	require.NoError(t, err)

	assert.Equal(t, 1, out.Created)
	require.Len(t, out.Results, 2)
	assert.False(t, out.Results[0].Created)
	assert.True(t, out.Results[1].Created)
}

func TestBackfillIsIdempotent(t *testing.T) {
	r, _ := newTestRunner(t)
	ctx := context.Background()

	keys := KeysInRange(CadenceDaily, mustDay(t, "2024-05-15"), mustDay(t, "2024-05-18"))

	first, err := r.Backfill(ctx, CadenceDaily, keys, rules.ModeClassic)
	require.NoError(t, err)
	assert.Equal(t, 4, first.Created)

	second, err := r.Backfill(ctx, CadenceDaily, keys, rules.ModeClassic)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	for _, res := range second.Results {
		assert.Equal(t, "already exists", res.Reason)
	}
}

func mustDay(t *testing.T, key string) time.Time {
	t.Helper()
	ts, err := ParseDay(key)
	require.NoError(t, err)
	return ts
}
