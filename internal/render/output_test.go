package render

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rutacat/rutacat/internal/level"
	"github.com/rutacat/rutacat/internal/regions"
	"github.com/rutacat/rutacat/internal/schedule"
)

func testGraph(t *testing.T) *regions.Graph {
	t.Helper()
	g, err := regions.Default()
	require.NoError(t, err)
	return g
}

func TestLevelPlain(t *testing.T) {
	r := New(false)
	lvl := level.Level{
		StartID:      "bages",
		TargetID:     "osona",
		ShortestPath: []string{"bages", "moianes", "osona"},
	}

	out := r.Level(testGraph(t), lvl)
	assert.Contains(t, out, "start=bages")
	assert.Contains(t, out, "target=osona")
	assert.Contains(t, out, "rule=-")
}

func TestLevelPretty(t *testing.T) {
	color.NoColor = true
	r := New(true)
	lvl := level.Level{
		ID:           "c0ffee",
		StartID:      "bages",
		TargetID:     "osona",
		ShortestPath: []string{"bages", "moianes", "osona"},
		RuleID:       "evita-anoia",
		AvoidIDs:     []string{"anoia"},
	}

	out := r.Level(testGraph(t), lvl)
	assert.Contains(t, out, "Bages")
	assert.Contains(t, out, "Osona")
	assert.Contains(t, out, "evita-anoia")
	assert.Contains(t, out, "Anoia")
	assert.Contains(t, out, "1 internal stops")
}

func TestResult(t *testing.T) {
	color.NoColor = true
	res := schedule.Result{Key: "2024-05-17", Created: true, Reason: "created", LevelID: "abc"}

	plain := New(false).Result(schedule.CadenceDaily, "classic", res)
	assert.Contains(t, plain, "created=true")

	pretty := New(true).Result(schedule.CadenceDaily, "classic", res)
	assert.Contains(t, pretty, "2024-05-17")
	assert.Contains(t, pretty, "created")
}

func TestBackfillSummary(t *testing.T) {
	color.NoColor = true
	out := schedule.BackfillResult{
		Results: []schedule.Result{
			{Key: "2024-05-16", Created: true, Reason: "created"},
			{Key: "2024-05-17", Created: false, Reason: "already exists"},
		},
		Created: 1,
		Total:   2,
	}

	s := New(true).Backfill(schedule.CadenceDaily, "classic", out)
	assert.Contains(t, s, "1 created, 2 total")
	assert.Contains(t, s, "already exists")
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	w.Header("rule catalog (%d)", 2)
	w.Item("%s %s", "evita-anoia", "avoid")
	w.Println("%d total", 2)
	w.Empty("No rules in catalog")

	out := buf.String()
	assert.Contains(t, out, "RULE CATALOG (2)\n")
	assert.Contains(t, out, "  evita-anoia avoid\n")
	assert.Contains(t, out, "2 total\n")
	assert.Contains(t, out, "No rules in catalog\n")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "curt", Truncate("curt", 10))
	assert.Equal(t, "molt ll...", Truncate("molt llarga de veritat", 10))
	assert.Equal(t, "mo", Truncate("molt", 2))
}

func TestStatus(t *testing.T) {
	color.NoColor = true
	counts := map[string]int{"daily": 12, "weekly": 3}
	latest := map[string]string{"daily": "2024-05-17", "weekly": "2024-W20"}

	s := New(true).Status("/tmp/rutacat.db", true, counts, latest)
	assert.Contains(t, s, "12 levels")
	assert.Contains(t, s, "2024-W20")

	p := New(false).Status("/tmp/rutacat.db", false, counts, latest)
	assert.Contains(t, p, "connected=false")
}
