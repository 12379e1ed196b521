package hook

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RunWithoutHandlers(t *testing.T) {
	reg := NewRegistry()

	out, err := reg.Run(PreRenderContent, "body")
	require.NoError(t, err)
	assert.Equal(t, "body", out)
	assert.False(t, reg.Has(PreRenderContent))
}

func TestRegistry_RunsInRegistrationOrder(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterHook(PreRenderContent, Func(func(c string) string { return c + "a" })))
	require.NoError(t, reg.RegisterHook(PreRenderContent, Func(func(c string) string { return c + "b" })))
	require.NoError(t, reg.RegisterHook(PreRenderContent, Func(strings.ToUpper)))

	out, err := reg.Run(PreRenderContent, "x")
	require.NoError(t, err)
	assert.Equal(t, "XAB", out)
	assert.Equal(t, 3, reg.Count(PreRenderContent))
}

func TestRegistry_HooksAreIndependent(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterHook("post_render_content", Func(strings.ToUpper)))

	out, err := reg.Run(PreRenderContent, "x")
	require.NoError(t, err)
	assert.Equal(t, "x", out)
	assert.Equal(t, []string{"post_render_content"}, reg.Hooks())
}

func TestRegistry_ErrorStopsChain(t *testing.T) {
	reg := NewRegistry()
	boom := errors.New("boom")
	called := false

	require.NoError(t, reg.RegisterHook(PreRenderContent, func(string) (string, error) {
		return "", boom
	}))
	require.NoError(t, reg.RegisterHook(PreRenderContent, func(c string) (string, error) {
		called = true
		return c, nil
	}))

	_, err := reg.Run(PreRenderContent, "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), PreRenderContent)
	assert.False(t, called, "handler after a failing one must not run")
}

func TestRegistry_RegisterRejectsInvalid(t *testing.T) {
	reg := NewRegistry()

	assert.ErrorIs(t, reg.RegisterHook("", Func(strings.ToUpper)), ErrEmptyName)
	assert.ErrorIs(t, reg.RegisterHook(PreRenderContent, nil), ErrNilHandler)
	assert.ErrorIs(t, reg.RegisterHook(PreRenderContent, Func(nil)), ErrNilHandler)
	assert.Empty(t, reg.Hooks())
}

func TestRegistry_Unregister(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterHook(PreRenderContent, Func(strings.ToUpper)))
	require.NoError(t, reg.RegisterHook(PreRenderContent, Func(strings.ToLower)))

	assert.Equal(t, 2, reg.Unregister(PreRenderContent))
	assert.Equal(t, 0, reg.Unregister(PreRenderContent))
	assert.False(t, reg.Has(PreRenderContent))
}

func TestRegistry_ConcurrentRun(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterHook(PreRenderContent, Func(func(c string) string { return "> " + c })))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := reg.Run(PreRenderContent, "line")
			assert.NoError(t, err)
			assert.Equal(t, "> line", out)
		}()
	}
	wg.Wait()
}
