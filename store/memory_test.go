package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAdapter_GetSet(t *testing.T) {
	ctx := context.Background()
	adapter := NewMemoryAdapter(0)

	err := adapter.Set(ctx, "key1", json.RawMessage(`"value1"`))
	require.NoError(t, err)

	raw, ok, err := adapter.Get(ctx, "key1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, json.RawMessage(`"value1"`), raw)

	_, ok, err = adapter.Get(ctx, "nonexistent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryAdapter_Delete(t *testing.T) {
	ctx := context.Background()
	adapter := NewMemoryAdapter(0)

	require.NoError(t, adapter.Set(ctx, "key1", json.RawMessage(`1`)))
	require.NoError(t, adapter.Set(ctx, "key2", json.RawMessage(`2`)))
	require.NoError(t, adapter.Delete(ctx, "key1"))

	_, ok, err := adapter.Get(ctx, "key1")
	require.NoError(t, err)
	assert.False(t, ok)

	keys, err := adapter.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"key2"}, keys)

	// Deleting a missing key is not an error
	require.NoError(t, adapter.Delete(ctx, "nonexistent"))
}

func TestMemoryAdapter_EvictsOldest(t *testing.T) {
	ctx := context.Background()
	adapter := NewMemoryAdapter(2)

	require.NoError(t, adapter.Set(ctx, "a", json.RawMessage(`1`)))
	require.NoError(t, adapter.Set(ctx, "b", json.RawMessage(`2`)))
	// Overwriting keeps the position and evicts nothing
	require.NoError(t, adapter.Set(ctx, "a", json.RawMessage(`3`)))
	require.NoError(t, adapter.Set(ctx, "c", json.RawMessage(`4`)))

	keys, err := adapter.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, keys)

	_, ok, _ := adapter.Get(ctx, "a")
	assert.False(t, ok)
}

func TestMemoryAdapter_CopiesValues(t *testing.T) {
	ctx := context.Background()
	adapter := NewMemoryAdapter(0)

	value := json.RawMessage(`"abc"`)
	require.NoError(t, adapter.Set(ctx, "k", value))
	value[1] = 'x'

	raw, _, _ := adapter.Get(ctx, "k")
	assert.Equal(t, `"abc"`, string(raw))
}

func TestMemoryAdapter_Concurrent(t *testing.T) {
	ctx := context.Background()
	adapter := NewMemoryAdapter(50)

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("key%d", i)
			_ = adapter.Set(ctx, key, json.RawMessage(`true`))
			_, _, _ = adapter.Get(ctx, key)
		}()
	}
	wg.Wait()

	keys, err := adapter.Keys(ctx)
	require.NoError(t, err)
	assert.Len(t, keys, 50)
}
