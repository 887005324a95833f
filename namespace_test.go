package fasteval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_EmptyNamespace_resolvesNothing(t *testing.T) {
	assert := assert.New(t)

	_, ok := EmptyNamespace{}.Get("x", nil)
	assert.False(ok)
}

func Test_MapNamespace_ignoresArgs(t *testing.T) {
	assert := assert.New(t)

	m := MapNamespace{"x": 3}
	v, ok := m.Get("x", []float64{1, 2, 3})
	assert.True(ok)
	assert.Equal(3.0, v)

	_, ok = m.Get("y", nil)
	assert.False(ok)
}

func Test_LayeredNamespace_laterLayerShadowsEarlier(t *testing.T) {
	assert := assert.New(t)

	layered := LayeredNamespace{
		MapNamespace{"x": 1, "y": 2},
		MapNamespace{"x": 99},
	}
	v, ok := layered.Get("x", nil)
	assert.True(ok)
	assert.Equal(99.0, v)

	v, ok = layered.Get("y", nil)
	assert.True(ok)
	assert.Equal(2.0, v)

	_, ok = layered.Get("z", nil)
	assert.False(ok)
}

func Test_FlatCallbackNamespace_invokesEveryLookup(t *testing.T) {
	assert := assert.New(t)

	calls := 0
	fc := FlatCallbackNamespace{Callback: func(name string, args []float64) (float64, bool) {
		calls++
		return 7, true
	}}
	fc.Get("x", nil)
	fc.Get("x", nil)
	assert.Equal(2, calls)
}

func Test_CachedCallbackNamespace_callsOncePerNameArgs(t *testing.T) {
	assert := assert.New(t)

	calls := make(map[string]int)
	cc := NewCachedCallbackNamespace(func(name string, args []float64) (float64, bool) {
		calls[cacheKey(name, args)]++
		return 42, true
	})

	v1, ok := cc.Get("f", []float64{1, 2})
	assert.True(ok)
	assert.Equal(42.0, v1)

	v2, ok := cc.Get("f", []float64{1, 2})
	assert.True(ok)
	assert.Equal(42.0, v2)

	v3, ok := cc.Get("f", []float64{3, 4})
	assert.True(ok)
	assert.Equal(42.0, v3)

	assert.Equal(1, calls[cacheKey("f", []float64{1, 2})])
	assert.Equal(1, calls[cacheKey("f", []float64{3, 4})])

	cc.ClearCache()
	cc.Get("f", []float64{1, 2})
	assert.Equal(2, calls[cacheKey("f", []float64{1, 2})])
}

func Test_CachedCallbackNamespace_bareVariableKeysOnName(t *testing.T) {
	assert := assert.New(t)

	calls := 0
	cc := NewCachedCallbackNamespace(func(name string, args []float64) (float64, bool) {
		calls++
		return 5, true
	})
	cc.Get("x", nil)
	cc.Get("x", nil)
	assert.Equal(1, calls)
}

func Test_ScopedCallbackNamespace_outerEvalLayerShadowsInner(t *testing.T) {
	assert := assert.New(t)

	sn := NewScopedCallbackNamespace(func(name string, args []float64) (float64, bool) { return 0, false })

	sn.pushEvalLayer(true)
	assert.NoError(sn.createBinding("a", 1))

	sn.pushEvalLayer(true)
	assert.NoError(sn.createBinding("a", 2))

	// Both frames are eval frames in one contiguous run, so the OUTER
	// (first-pushed) binding wins, not the more-recently-pushed one.
	v, ok := sn.Get("a", nil)
	assert.True(ok)
	assert.Equal(1.0, v)

	sn.popLayer()
	sn.popLayer()
}

func Test_ScopedCallbackNamespace_nonEvalLayerBreaksTheRun(t *testing.T) {
	assert := assert.New(t)

	sn := NewScopedCallbackNamespace(func(name string, args []float64) (float64, bool) { return 0, false })

	sn.pushEvalLayer(true)
	assert.NoError(sn.createBinding("a", 1))

	sn.pushEvalLayer(false)

	sn.pushEvalLayer(true)
	assert.NoError(sn.createBinding("a", 2))

	// The plain layer splits the eval frames into two separate runs, so the
	// topmost run is searched first and its a=2 wins; in one unbroken run the
	// outer a=1 would shadow it instead.
	v, ok := sn.Get("a", nil)
	assert.True(ok)
	assert.Equal(2.0, v)

	sn.popLayer()
	sn.popLayer()
	sn.popLayer()
}

func Test_ScopedCallbackNamespace_createBindingRejectsDuplicate(t *testing.T) {
	assert := assert.New(t)

	sn := NewScopedCallbackNamespace(nil)
	sn.pushEvalLayer(true)
	assert.NoError(sn.createBinding("a", 1))
	err := sn.createBinding("a", 2)
	assert.Error(err)
	var ee *EvalError
	assert.ErrorAs(err, &ee)
	assert.Equal(ErrAlreadyExists, ee.Kind())
	sn.popLayer()
}

func Test_ScopedCallbackNamespace_cachesCallbackResultInTopLayer(t *testing.T) {
	assert := assert.New(t)

	calls := 0
	sn := NewScopedCallbackNamespace(func(name string, args []float64) (float64, bool) {
		calls++
		return 9, true
	})
	v1, _ := sn.Get("z", nil)
	v2, _ := sn.Get("z", nil)
	assert.Equal(9.0, v1)
	assert.Equal(9.0, v2)
	assert.Equal(1, calls)
}
