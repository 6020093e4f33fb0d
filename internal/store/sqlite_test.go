package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rutacat/rutacat/internal/level"
	"github.com/rutacat/rutacat/internal/rules"
)

func testStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "rutacat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleLevel(id string) *level.Level {
	return &level.Level{
		ID:           id,
		StartID:      "osona",
		TargetID:     "priorat",
		ShortestPath: []string{"osona", "bages", "anoia", "conca-de-barbera", "priorat"},
		RuleID:       "evita-el-bages",
		AvoidIDs:     []string{"segarra"},
	}
}

func TestSaveAndGetLevel(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	lvl := sampleLevel("lvl-1")
	require.NoError(t, s.SaveLevel(ctx, "daily", "2024-05-17", "classic", lvl))

	got, err := s.GetLevel(ctx, "daily", "2024-05-17", "classic")
	require.NoError(t, err)
	assert.Equal(t, lvl, got)
}

func TestSaveLevelRuleless(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	lvl := &level.Level{
		ID:           "lvl-2",
		StartID:      "osona",
		TargetID:     "garraf",
		ShortestPath: []string{"osona", "moianes", "valles-occidental", "baix-llobregat", "garraf"},
	}
	require.NoError(t, s.SaveLevel(ctx, "weekly", "2024-W20", "expert", lvl))

	got, err := s.GetLevel(ctx, "weekly", "2024-W20", "expert")
	require.NoError(t, err)
	assert.Empty(t, got.RuleID)
	assert.Nil(t, got.AvoidIDs)
	assert.Nil(t, got.MustPassIDs)
}

func TestSaveLevelConflict(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveLevel(ctx, "daily", "2024-05-17", "classic", sampleLevel("lvl-1")))

	err := s.SaveLevel(ctx, "daily", "2024-05-17", "classic", sampleLevel("lvl-other"))
	assert.ErrorIs(t, err, ErrAlreadyExists)

	// The original level survives a losing write.
	got, err := s.GetLevel(ctx, "daily", "2024-05-17", "classic")
	require.NoError(t, err)
	assert.Equal(t, "lvl-1", got.ID)

	// Same key under another cadence or mode is a different slot.
	assert.NoError(t, s.SaveLevel(ctx, "weekly", "2024-05-17", "classic", sampleLevel("lvl-w")))
	assert.NoError(t, s.SaveLevel(ctx, "daily", "2024-05-17", "expert", sampleLevel("lvl-x")))
}

func TestGetLevelNotFound(t *testing.T) {
	s := testStore(t)

	_, err := s.GetLevel(context.Background(), "daily", "1999-01-01", "classic")
	assert.True(t, IsNotFound(err))
	assert.ErrorContains(t, err, "1999-01-01")
}

func TestExistingKeys(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveLevel(ctx, "daily", "2024-05-01", "classic", sampleLevel("l1")))
	require.NoError(t, s.SaveLevel(ctx, "daily", "2024-05-03", "classic", sampleLevel("l3")))

	got, err := s.ExistingKeys(ctx, "daily", "classic", []string{"2024-05-01", "2024-05-02", "2024-05-03"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"2024-05-01": true, "2024-05-03": true}, got)

	// Matches per-key lookups.
	for _, key := range []string{"2024-05-01", "2024-05-02", "2024-05-03"} {
		_, err := s.GetLevel(ctx, "daily", key, "classic")
		assert.Equal(t, got[key], err == nil, key)
	}

	empty, err := s.ExistingKeys(ctx, "daily", "classic", nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestClaimRun(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	won, err := s.ClaimRun(ctx, "daily", "2024-05-17", "classic", "generate")
	require.NoError(t, err)
	assert.True(t, won)

	// A second claimant for the same slot and purpose loses, without error.
	won, err = s.ClaimRun(ctx, "daily", "2024-05-17", "classic", "generate")
	require.NoError(t, err)
	assert.False(t, won)

	// Different purpose or slot claims independently.
	won, err = s.ClaimRun(ctx, "daily", "2024-05-17", "classic", "backfill")
	require.NoError(t, err)
	assert.True(t, won)

	won, err = s.ClaimRun(ctx, "daily", "2024-05-18", "classic", "generate")
	require.NoError(t, err)
	assert.True(t, won)
}

func TestRuleHistory(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	ids, err := s.RecentRuleIDs(ctx, "daily")
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, s.AppendRuleID(ctx, "daily", "r1"))
	require.NoError(t, s.AppendRuleID(ctx, "daily", "r2"))
	require.NoError(t, s.AppendRuleID(ctx, "weekly", "w1"))

	ids, err = s.RecentRuleIDs(ctx, "daily")
	require.NoError(t, err)
	assert.Equal(t, []string{"r2", "r1"}, ids)

	ids, err = s.RecentRuleIDs(ctx, "weekly")
	require.NoError(t, err)
	assert.Equal(t, []string{"w1"}, ids)
}

func TestRuleHistoryTrim(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	total := rules.HistoryCapacity + 5
	for i := 0; i < total; i++ {
		require.NoError(t, s.AppendRuleID(ctx, "daily", fmt.Sprintf("r%d", i)))
	}

	ids, err := s.RecentRuleIDs(ctx, "daily")
	require.NoError(t, err)
	require.Len(t, ids, rules.HistoryCapacity)
	assert.Equal(t, fmt.Sprintf("r%d", total-1), ids[0])
	// The oldest five fell off.
	assert.Equal(t, "r5", ids[len(ids)-1])
}

func TestCountAndLatest(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	n, err := s.CountLevels(ctx, "daily")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = s.LatestKey(ctx, "daily")
	assert.True(t, IsNotFound(err))

	require.NoError(t, s.SaveLevel(ctx, "daily", "2024-05-01", "classic", sampleLevel("l1")))
	require.NoError(t, s.SaveLevel(ctx, "daily", "2024-05-09", "classic", sampleLevel("l2")))

	n, err = s.CountLevels(ctx, "daily")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	key, err := s.LatestKey(ctx, "daily")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-09", key)
}

func TestPing(t *testing.T) {
	s := testStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}
