package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_ReturnsHandle(t *testing.T) {
	r := NewRegistry()

	mode, err := Register[string](r, "mode")
	require.NoError(t, err)
	require.NotNil(t, mode)

	assert.Equal(t, "mode", mode.Key())
	assert.Equal(t, []string{"mode"}, r.Keys())

	_, present := mode.Current()
	assert.False(t, present, "unset state should start absent")
}

func TestRegister_DuplicateKeyFails(t *testing.T) {
	r := NewRegistry()

	_, err := Register[string](r, "mode")
	require.NoError(t, err)

	_, err = Register[int](r, "mode")
	require.Error(t, err)
	assert.True(t, IsDuplicateRegistration(err))

	// The original registration is untouched.
	assert.Equal(t, []string{"mode"}, r.Keys())
	require.NoError(t, r.SetNextValue("mode", "menu"))
}

func TestRegisterFunc_CustomEquality(t *testing.T) {
	type level struct{ X, Y int }
	r := NewRegistry()

	// Equality that ignores Y.
	lv, err := RegisterFunc(r, "level", func(a, b level) bool { return a.X == b.X })
	require.NoError(t, err)

	lv.SetNext(level{X: 1, Y: 5})
	r.FlushAll()
	require.Equal(t, Enter, lv.Last().Kind)

	lv.SetNext(level{X: 1, Y: 9})
	r.FlushAll()
	assert.Equal(t, Unchanged, lv.Last().Kind, "custom equality should see equal values")

	lv.SetNext(level{X: 2, Y: 9})
	r.FlushAll()
	assert.Equal(t, Transition, lv.Last().Kind)
}

func TestBind_UnknownKeysFail(t *testing.T) {
	r := NewRegistry()
	_, err := Register[string](r, "mode")
	require.NoError(t, err)

	err = r.Bind("ghost", "mode")
	assert.True(t, IsNotRegistered(err))

	err = r.Bind("mode", "ghost")
	assert.True(t, IsNotRegistered(err))
}

func TestBind_CycleRejectedAndRolledBack(t *testing.T) {
	r := NewRegistry()
	for _, key := range []string{"a", "b", "c"} {
		_, err := Register[string](r, key)
		require.NoError(t, err)
	}

	require.NoError(t, r.Bind("b", "a"))
	require.NoError(t, r.Bind("c", "b"))

	// Snapshot the bindings before the offending call.
	before := map[string][]string{
		"a": r.Sources("a"),
		"b": r.Sources("b"),
		"c": r.Sources("c"),
	}

	err := r.Bind("a", "c")
	require.Error(t, err)
	assert.True(t, IsCycle(err))

	after := map[string][]string{
		"a": r.Sources("a"),
		"b": r.Sources("b"),
		"c": r.Sources("c"),
	}
	assert.Equal(t, before, after, "rejected bind must leave prior bindings intact")

	// The registry still flushes with the prior edges.
	r.FlushAll()
	assert.Equal(t, uint64(1), r.Tick())
}

func TestBind_SelfEdgeIsCycle(t *testing.T) {
	r := NewRegistry()
	_, err := Register[string](r, "a")
	require.NoError(t, err)

	err = r.Bind("a", "a")
	assert.True(t, IsCycle(err))
}

func TestFlushAll_DependencyOrder(t *testing.T) {
	var flushed []string
	r := NewRegistry(WithObserver(func(rec FlushRecord) {
		flushed = append(flushed, rec.Key)
	}))
	// Register in an order that disagrees with the dependency order.
	for _, key := range []string{"color", "square", "mode"} {
		_, err := Register[string](r, key)
		require.NoError(t, err)
	}
	require.NoError(t, r.Bind("square", "mode"))
	require.NoError(t, r.Bind("color", "square"))

	r.FlushAll()
	assert.Equal(t, []string{"mode", "square", "color"}, flushed)
}

func TestFlushAll_OrderIsDeterministic(t *testing.T) {
	build := func() (*Registry, *[]string) {
		var flushed []string
		r := NewRegistry(WithObserver(func(rec FlushRecord) {
			flushed = append(flushed, rec.Key)
		}))
		for _, key := range []string{"d", "b", "a", "c"} {
			_, err := Register[string](r, key)
			require.NoError(t, err)
		}
		require.NoError(t, r.Bind("a", "b"))
		return r, &flushed
	}

	r1, got1 := build()
	r2, got2 := build()
	r1.FlushAll()
	r2.FlushAll()

	assert.Equal(t, *got1, *got2, "same registrations must flush in the same order")
	// Unbound states keep registration order; "a" waits for "b".
	assert.Equal(t, []string{"d", "b", "a", "c"}, *got1)
}

func TestFlushAll_ReentrantPanics(t *testing.T) {
	var r *Registry
	r = NewRegistry(WithObserver(func(FlushRecord) {
		r.FlushAll()
	}))
	_, err := Register[string](r, "mode")
	require.NoError(t, err)
	require.NoError(t, r.SetNextValue("mode", "menu"))

	assert.Panics(t, func() { r.FlushAll() })
}

func TestDynamicSurface_NotRegistered(t *testing.T) {
	r := NewRegistry()

	_, _, err := r.CurrentValue("ghost")
	assert.True(t, IsNotRegistered(err))

	_, _, err = r.NextValue("ghost")
	assert.True(t, IsNotRegistered(err))

	err = r.SetNextValue("ghost", "x")
	assert.True(t, IsNotRegistered(err))

	err = r.ClearNext("ghost")
	assert.True(t, IsNotRegistered(err))

	err = r.Request("ghost", TriggerRefresh)
	assert.True(t, IsNotRegistered(err))

	_, err = r.Descriptor("ghost")
	assert.True(t, IsNotRegistered(err))
}

func TestDynamicSurface_ValueTypeMismatch(t *testing.T) {
	r := NewRegistry()
	_, err := Register[string](r, "mode")
	require.NoError(t, err)

	err = r.SetNextValue("mode", 42)
	require.Error(t, err)
	assert.True(t, IsValueType(err))
}

func TestDynamicSurface_RoundTrip(t *testing.T) {
	r := NewRegistry()
	_, err := Register[string](r, "mode")
	require.NoError(t, err)

	require.NoError(t, r.SetNextValue("mode", "playing"))

	v, present, err := r.NextValue("mode")
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, "playing", v)

	r.FlushAll()

	v, present, err = r.CurrentValue("mode")
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, "playing", v)

	desc, err := r.Descriptor("mode")
	require.NoError(t, err)
	assert.Equal(t, Enter, desc.Kind)
	assert.Nil(t, desc.Old)
	assert.Equal(t, "playing", desc.New)
	assert.Equal(t, uint64(1), desc.Tick)
}

func TestDescriptor_ZeroBeforeFirstFlush(t *testing.T) {
	r := NewRegistry()
	mode, err := Register[string](r, "mode")
	require.NoError(t, err)

	desc, err := r.Descriptor("mode")
	require.NoError(t, err)
	assert.Equal(t, Unchanged, desc.Kind)
	assert.Nil(t, desc.Old)
	assert.Nil(t, desc.New)
	assert.Equal(t, uint64(0), desc.Tick)

	last := mode.Last()
	assert.Equal(t, Unchanged, last.Kind)
	assert.Nil(t, last.Old)
	assert.Nil(t, last.New)
}

func TestObserver_SeqIsMonotonic(t *testing.T) {
	var seqs []uint64
	r := NewRegistry(WithObserver(func(rec FlushRecord) {
		seqs = append(seqs, rec.Seq)
	}))
	for _, key := range []string{"a", "b"} {
		_, err := Register[string](r, key)
		require.NoError(t, err)
	}

	r.FlushAll()
	r.FlushAll()

	require.Len(t, seqs, 4)
	for i := 1; i < len(seqs); i++ {
		assert.Greater(t, seqs[i], seqs[i-1])
	}
}
