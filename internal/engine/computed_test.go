package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputed_DerivesFromSourceCurrent(t *testing.T) {
	r := NewRegistry()
	mode, err := Register[string](r, "mode")
	require.NoError(t, err)

	bonus, err := Computed(r, "bonus", func() (bool, bool) {
		if v, ok := mode.Current(); ok && v == "playing" {
			return true, true
		}
		return false, false
	}, From(mode))
	require.NoError(t, err)

	// Mode enters "playing"; bonus computes in the same flush cycle.
	mode.SetNext("playing")
	r.FlushAll()

	cur, present := bonus.Current()
	require.True(t, present)
	assert.True(t, cur)
	assert.True(t, bonus.Entered(), "computed enter must be visible to run conditions this tick")
}

func TestComputed_RecomputesOnlyWhenSourceChanged(t *testing.T) {
	r := NewRegistry()
	mode, err := Register[string](r, "mode")
	require.NoError(t, err)

	calls := 0
	_, err = Computed(r, "bonus", func() (string, bool) {
		calls++
		v, ok := mode.Current()
		return "for-" + v, ok
	}, From(mode))
	require.NoError(t, err)

	mode.SetNext("playing")
	r.FlushAll()
	assert.Equal(t, 1, calls)

	// Two consecutive idle flushes: source Unchanged, compute frozen.
	r.FlushAll()
	r.FlushAll()
	assert.Equal(t, 1, calls, "computed must not recompute while sources are stable")

	mode.SetNext("menu")
	r.FlushAll()
	assert.Equal(t, 2, calls)
}

func TestComputed_FrozenYieldsUnchanged(t *testing.T) {
	r := NewRegistry()
	mode, err := Register[string](r, "mode")
	require.NoError(t, err)

	bonus, err := Computed(r, "bonus", func() (string, bool) {
		v, ok := mode.Current()
		return "for-" + v, ok
	}, From(mode))
	require.NoError(t, err)

	mode.SetNext("playing")
	r.FlushAll()
	require.Equal(t, Enter, bonus.Last().Kind)

	r.FlushAll()
	assert.Equal(t, Unchanged, bonus.Last().Kind)
	r.FlushAll()
	assert.Equal(t, Unchanged, bonus.Last().Kind)
}

func TestComputed_StabilityPropagatesTransitively(t *testing.T) {
	r := NewRegistry()
	mode, err := Register[string](r, "mode")
	require.NoError(t, err)

	mid, err := Computed(r, "mid", func() (string, bool) {
		v, ok := mode.Current()
		return v + "-mid", ok
	}, From(mode))
	require.NoError(t, err)

	leafCalls := 0
	leaf, err := Computed(r, "leaf", func() (string, bool) {
		leafCalls++
		v, ok := mid.Current()
		return v + "-leaf", ok
	}, From(mid))
	require.NoError(t, err)

	mode.SetNext("playing")
	r.FlushAll()
	require.Equal(t, 1, leafCalls)
	cur, present := leaf.Current()
	require.True(t, present)
	assert.Equal(t, "playing-mid-leaf", cur)

	r.FlushAll()
	assert.Equal(t, 1, leafCalls, "stable chain must freeze all the way down")
	assert.Equal(t, Unchanged, mid.Last().Kind)
	assert.Equal(t, Unchanged, leaf.Last().Kind)
}

func TestComputed_RefreshOnSourceForcesRecompute(t *testing.T) {
	r := NewRegistry()
	mode, err := Register[string](r, "mode")
	require.NoError(t, err)

	calls := 0
	_, err = Computed(r, "bonus", func() (string, bool) {
		calls++
		v, ok := mode.Current()
		return v, ok
	}, From(mode))
	require.NoError(t, err)

	mode.SetNext("playing")
	r.FlushAll()
	require.Equal(t, 1, calls)

	// Refresh is not Unchanged: dependents recompute.
	require.NoError(t, mode.Request(TriggerRefresh))
	r.FlushAll()
	assert.Equal(t, 2, calls)
}

func TestComputed_CanExitWhenSourceLeaves(t *testing.T) {
	r := NewRegistry()
	mode, err := Register[string](r, "mode")
	require.NoError(t, err)

	bonus, err := Computed(r, "bonus", func() (bool, bool) {
		if v, ok := mode.Current(); ok && v == "playing" {
			return true, true
		}
		return false, false
	}, From(mode))
	require.NoError(t, err)

	mode.SetNext("playing")
	r.FlushAll()
	require.True(t, bonus.Entered())

	mode.SetNext("menu")
	r.FlushAll()
	assert.True(t, bonus.Exited())
	_, present := bonus.Current()
	assert.False(t, present)
}

func TestComputed_MultipleSources(t *testing.T) {
	r := NewRegistry()
	a, err := Register[int](r, "a")
	require.NoError(t, err)
	b, err := Register[int](r, "b")
	require.NoError(t, err)

	sum, err := Computed(r, "sum", func() (int, bool) {
		av, aok := a.Current()
		bv, bok := b.Current()
		if !aok || !bok {
			return 0, false
		}
		return av + bv, true
	}, From(a, b))
	require.NoError(t, err)

	a.SetNext(1)
	b.SetNext(2)
	r.FlushAll()
	cur, present := sum.Current()
	require.True(t, present)
	assert.Equal(t, 3, cur)

	// One source changing is enough to recompute.
	b.SetNext(10)
	r.FlushAll()
	cur, _ = sum.Current()
	assert.Equal(t, 11, cur)
}

func TestComputed_UnknownSourceFails(t *testing.T) {
	r := NewRegistry()
	other := NewRegistry()
	mode, err := Register[string](other, "mode")
	require.NoError(t, err)

	_, err = Computed(r, "bonus", func() (string, bool) { return "", false }, From(mode))
	assert.True(t, IsNotRegistered(err), "source registered elsewhere must be rejected")
}
