package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry(t *testing.T) {
	t.Run("Get returns false for unknown names", func(t *testing.T) {
		reg := New[int]()
		_, ok := reg.Get("missing")
		assert.False(t, ok)
	})

	t.Run("Add then Get round-trips", func(t *testing.T) {
		reg := New[string]()
		reg.Add("greeting", "hello")

		got, ok := reg.Get("greeting")
		assert.True(t, ok)
		assert.Equal(t, "hello", got)
	})

	t.Run("GetOrAdd computes once", func(t *testing.T) {
		reg := New[int]()
		var calls int

		v, _ := reg.GetOrAdd("answer", func() int {
			calls++
			return 42
		})
		assert.Equal(t, 42, v)

		v, loaded := reg.GetOrAdd("answer", func() int {
			calls++
			return 0
		})
		assert.Equal(t, 42, v)
		assert.True(t, loaded)
		assert.Equal(t, 1, calls)
	})

	t.Run("Del removes the entry", func(t *testing.T) {
		reg := New[string]()
		reg.Add("gone", "soon")
		reg.Del("gone")

		_, ok := reg.Get("gone")
		assert.False(t, ok)
	})

	t.Run("concurrent access is safe", func(t *testing.T) {
		reg := New[int]()
		var wg sync.WaitGroup
		for i := range 8 {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				for range 100 {
					reg.Add("shared", n)
					reg.Get("shared")
				}
			}(i)
		}
		wg.Wait()

		_, ok := reg.Get("shared")
		assert.True(t, ok)
	})
}
