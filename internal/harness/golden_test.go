package harness

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_Boot(t *testing.T) {
	scenario := loadTestScenario(t, "boot.yaml")
	require.NoError(t, RunWithGolden(t, scenario))
}

func TestTraceSnapshot_CanonicalForm(t *testing.T) {
	loading := "loading"
	playing := "playing"
	snapshot := TraceSnapshot{
		ScenarioName: "demo",
		Trace: []TraceEvent{
			{Seq: 1, Tick: 1, Key: "game.phase", Kind: "enter", New: &loading},
			{Seq: 2, Tick: 2, Key: "game.phase", Kind: "transition", Old: &loading, New: &playing},
		},
	}

	m := snapshot.toCanonicalMap()
	assert.Equal(t, "demo", m["scenario_name"])

	trace, ok := m["trace"].([]any)
	require.True(t, ok)
	require.Len(t, trace, 2)

	first, ok := trace[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "enter", first["kind"])
	_, hasOld := first["old"]
	assert.False(t, hasOld, "absent old side stays out of the snapshot")
}

func TestAssertGolden_StableAcrossRuns(t *testing.T) {
	// Two runs of the same scenario serialize identically, which is what
	// makes golden comparison meaningful.
	scenario := loadTestScenario(t, "boot.yaml")

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	snap1 := TraceSnapshot{ScenarioName: "boot", Trace: first.Trace}
	snap2 := TraceSnapshot{ScenarioName: "boot", Trace: second.Trace}
	assert.Equal(t, snap1.toCanonicalMap(), snap2.toCanonicalMap())
}

func TestGoldenFileMatchesByHand(t *testing.T) {
	// The boot golden file holds the canonical trace; spot-check shape
	// without goldie so a corrupted fixture fails with a readable message.
	result, err := Run(loadTestScenario(t, "boot.yaml"))
	require.NoError(t, err)

	keys := make([]string, 0, len(result.Trace))
	for _, event := range result.Trace {
		keys = append(keys, event.Key+":"+event.Kind)
	}
	assert.Equal(t, strings.Join([]string{
		"game.phase:enter",
		"ui.overlay:enter",
		"game.phase:transition",
		"ui.overlay:transition",
		"game.phase:refresh",
	}, ","), strings.Join(keys, ","))
}
