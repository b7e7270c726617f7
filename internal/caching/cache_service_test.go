package caching

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeKey(t *testing.T) {
	tenantID := uuid.MustParse("7b0c1c55-3f51-4f4e-9a57-4f2f3c0f8d11")
	assert.Equal(t, "elafcatalog:tree:7b0c1c55-3f51-4f4e-9a57-4f2f3c0f8d11", treeKey(tenantID))
}

func TestTreeCache_UnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	cache := NewTreeCache(client)
	ctx := context.Background()
	tenantID := uuid.New()

	data, err := cache.GetTree(ctx, tenantID)
	require.Error(t, err)
	assert.Nil(t, data)

	assert.Error(t, cache.SetTree(ctx, tenantID, []byte("[]"), time.Minute))
	assert.Error(t, cache.DeleteTree(ctx, tenantID))
	assert.Error(t, cache.Ping(ctx))
}

// memoryHook answers get/set/del/ping from a map instead of a server.
type memoryHook struct {
	data map[string]string
}

func (h *memoryHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h *memoryHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (h *memoryHook) ProcessHook(_ redis.ProcessHook) redis.ProcessHook {
	return func(_ context.Context, cmd redis.Cmder) error {
		args := cmd.Args()
		switch c := cmd.(type) {
		case *redis.StringCmd:
			val, ok := h.data[args[1].(string)]
			if !ok {
				c.SetErr(redis.Nil)
				break
			}
			c.SetVal(val)
		case *redis.StatusCmd:
			if cmd.Name() == "set" {
				switch v := args[2].(type) {
				case []byte:
					h.data[args[1].(string)] = string(v)
				case string:
					h.data[args[1].(string)] = v
				}
				c.SetVal("OK")
				break
			}
			c.SetVal("PONG")
		case *redis.IntCmd:
			var n int64
			for _, k := range args[1:] {
				if _, ok := h.data[k.(string)]; ok {
					delete(h.data, k.(string))
					n++
				}
			}
			c.SetVal(n)
		}
		return cmd.Err()
	}
}

func newMemoryCache(t *testing.T) (TreeCache, *memoryHook) {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	hook := &memoryHook{data: map[string]string{}}
	client.AddHook(hook)
	return NewTreeCache(client), hook
}

func TestTreeCache_MissReturnsNil(t *testing.T) {
	cache, _ := newMemoryCache(t)

	data, err := cache.GetTree(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestTreeCache_Hit(t *testing.T) {
	cache, hook := newMemoryCache(t)
	tenantID := uuid.New()
	hook.data[treeKey(tenantID)] = `[{"id":"fruits"}]`

	data, err := cache.GetTree(context.Background(), tenantID)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"fruits"}]`, string(data))
}

func TestTreeCache_SetGetDelete(t *testing.T) {
	cache, hook := newMemoryCache(t)
	ctx := context.Background()
	tenantID := uuid.New()
	other := uuid.New()
	forest := []byte("[\n  {\n    \"id\": \"apple\"\n  }\n]\n")

	require.NoError(t, cache.SetTree(ctx, tenantID, forest, time.Minute))
	assert.Contains(t, hook.data, treeKey(tenantID))

	data, err := cache.GetTree(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, forest, data)

	data, err = cache.GetTree(ctx, other)
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, cache.DeleteTree(ctx, tenantID))
	data, err = cache.GetTree(ctx, tenantID)
	require.NoError(t, err)
	assert.Nil(t, data)

	assert.NoError(t, cache.Ping(ctx))
}
