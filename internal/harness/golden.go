package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/phasekit/phase/internal/journal"
)

// TraceSnapshot captures the complete trace of a scenario run.
// Serialized with canonical JSON for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string
	Trace        []TraceEvent
}

// toCanonicalMap converts the snapshot to a map[string]any so it can pass
// through the journal's canonical encoder (sorted keys, no floats).
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		eventMap := map[string]any{
			"seq":  event.Seq,
			"tick": event.Tick,
			"key":  event.Key,
			"kind": event.Kind,
		}
		if event.Old != nil {
			eventMap["old"] = *event.Old
		}
		if event.New != nil {
			eventMap["new"] = *event.New
		}
		traceList[i] = eventMap
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         traceList,
	}
}

// RunWithGolden executes a scenario and compares the trace against a golden
// file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if the scenario cannot run or fails its expectations.
// Trace mismatch fails the test via goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	if !result.Pass {
		for _, msg := range result.Errors {
			t.Error(msg)
		}
	}

	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares a result's trace against a golden file. Useful when
// the scenario has already run and only the comparison is needed.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Trace:        result.Trace,
	}

	traceJSON, err := journal.EncodeValue(snapshot.toCanonicalMap())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, []byte(traceJSON))

	return nil
}
