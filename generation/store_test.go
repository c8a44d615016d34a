package generation

import (
	"fmt"
	"sync"
	"testing"

	"github.com/go-openapi/swag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestNewStore(t *testing.T) {
	t.Run("valid settings", func(t *testing.T) {
		store, err := NewStore(Defaults())
		require.NoError(t, err)
		assert.Equal(t, 0.7, swag.Float64Value(store.Snapshot().Temperature))
	})

	t.Run("rejects out-of-range settings", func(t *testing.T) {
		_, err := NewStore(Params{Temperature: swag.Float64(9)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "temperature")
	})
}

func TestStoreSnapshotIsolation(t *testing.T) {
	store, err := NewStore(Defaults())
	require.NoError(t, err)

	snapshot := store.Snapshot()
	*snapshot.Temperature = 0.05
	snapshot.StopSequences = append(snapshot.StopSequences, "END")

	fresh := store.Snapshot()
	assert.Equal(t, 0.7, swag.Float64Value(fresh.Temperature))
	assert.Empty(t, fresh.StopSequences)
}

func TestStoreUpdate(t *testing.T) {
	store, err := NewStore(Defaults())
	require.NoError(t, err)

	t.Run("applies supplied keys only", func(t *testing.T) {
		require.NoError(t, store.Update(gjson.Parse(`{"temperature":0.2,"max_tokens":256}`)))

		p := store.Snapshot()
		assert.Equal(t, 0.2, swag.Float64Value(p.Temperature))
		assert.Equal(t, int64(256), swag.Int64Value(p.MaxTokens))
		assert.Equal(t, 0.9, swag.Float64Value(p.TopP))
	})

	t.Run("ignores unknown keys", func(t *testing.T) {
		before := store.Snapshot()
		require.NoError(t, store.Update(gjson.Parse(`{"banana":42}`)))
		assert.Equal(t, before, store.Snapshot())
	})

	t.Run("null unsets a knob", func(t *testing.T) {
		require.NoError(t, store.Update(gjson.Parse(`{"top_k":null}`)))
		assert.Nil(t, store.Snapshot().TopK)
	})

	t.Run("replaces stop sequences", func(t *testing.T) {
		require.NoError(t, store.Update(gjson.Parse(`{"stop_sequences":["END","STOP"]}`)))
		assert.Equal(t, []string{"END", "STOP"}, store.Snapshot().StopSequences)

		require.NoError(t, store.Update(gjson.Parse(`{"stop_sequences":null}`)))
		assert.Nil(t, store.Snapshot().StopSequences)
	})

	t.Run("rejects non-object patches", func(t *testing.T) {
		assert.Error(t, store.Update(gjson.Parse(`[1,2,3]`)))
		assert.Error(t, store.Update(gjson.Result{}))
	})
}

func TestStoreConcurrentSnapshots(t *testing.T) {
	store, err := NewStore(Params{
		Temperature: swag.Float64(0.5),
		TopP:        swag.Float64(0.5),
	})
	require.NoError(t, err)

	// Updates always set temperature and top_p to the same value, so a torn
	// read would show up as a mismatch between the two.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 250; j++ {
				v := float64(j%10) / 10.0
				patch := fmt.Sprintf(`{"temperature":%v,"top_p":%v}`, v, v)
				_ = store.Update(gjson.Parse(patch))
			}
		}(i)
	}

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				p := store.Snapshot()
				if p.Temperature == nil || p.TopP == nil {
					t.Error("snapshot lost a knob")
					return
				}
				if *p.Temperature != *p.TopP {
					t.Errorf("torn snapshot: temperature=%v top_p=%v", *p.Temperature, *p.TopP)
					return
				}
			}
		}()
	}

	wg.Wait()
}
