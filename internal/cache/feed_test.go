package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"yatube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRenderer struct {
	calls   atomic.Int32
	version atomic.Int32
}

func (r *countingRenderer) render(_ context.Context) ([]byte, error) {
	r.calls.Add(1)
	return []byte(fmt.Sprintf(`{"version":%d}`, r.version.Load())), nil
}

func TestFeedCache_Key(t *testing.T) {
	c := NewFeedCache(NewMemoryStore(8, time.Minute), "index_page", time.Minute)

	assert.Equal(t, "index_page:page:1", c.Key(""))
	assert.Equal(t, "index_page:page:1", c.Key("garbage"))
	assert.Equal(t, "index_page:page:1", c.Key("1"))
	assert.Equal(t, "index_page:page:2", c.Key("2"))
	assert.Equal(t, "index_page:page:0", c.Key("99999999999999999999"))
}

func TestFeedCache_RedisServesStaleUntilExpiry(t *testing.T) {
	mr, client := testutil.NewRedis(t)
	c := NewFeedCache(NewRedisStore(client), "index_page", 20*time.Second)
	ctx := context.Background()
	r := &countingRenderer{}

	body, hit, err := c.GetOrRender(ctx, "", r.render)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.JSONEq(t, `{"version":0}`, string(body))

	// A write happens; the cache is not told.
	r.version.Store(1)

	body, hit, err = c.GetOrRender(ctx, "1", r.render)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.JSONEq(t, `{"version":0}`, string(body), "stale page served within the TTL")
	assert.Equal(t, int32(1), r.calls.Load())

	mr.FastForward(21 * time.Second)

	body, hit, err = c.GetOrRender(ctx, "1", r.render)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.JSONEq(t, `{"version":1}`, string(body))
	assert.Equal(t, int32(2), r.calls.Load())
}

func TestFeedCache_PagesAreIndependent(t *testing.T) {
	_, client := testutil.NewRedis(t)
	c := NewFeedCache(NewRedisStore(client), "index_page", time.Minute)
	ctx := context.Background()
	r := &countingRenderer{}

	_, _, err := c.GetOrRender(ctx, "1", r.render)
	require.NoError(t, err)
	_, hit, err := c.GetOrRender(ctx, "2", r.render)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, int32(2), r.calls.Load())
}

func TestFeedCache_FailsOpenWhenRedisIsDown(t *testing.T) {
	mr, client := testutil.NewRedis(t)
	c := NewFeedCache(NewRedisStore(client), "index_page", time.Minute)
	r := &countingRenderer{}
	mr.Close()

	body, hit, err := c.GetOrRender(context.Background(), "", r.render)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.JSONEq(t, `{"version":0}`, string(body))
}

func TestFeedCache_RenderErrorIsNotCached(t *testing.T) {
	c := NewFeedCache(NewMemoryStore(8, time.Minute), "index_page", time.Minute)
	ctx := context.Background()

	_, _, err := c.GetOrRender(ctx, "", func(context.Context) ([]byte, error) {
		return nil, errors.New("db down")
	})
	require.Error(t, err)

	r := &countingRenderer{}
	_, hit, err := c.GetOrRender(ctx, "", r.render)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestFeedCache_MemoryStoreExpires(t *testing.T) {
	ttl := 50 * time.Millisecond
	c := NewFeedCache(NewMemoryStore(8, ttl), "index_page", ttl)
	ctx := context.Background()
	r := &countingRenderer{}

	_, _, err := c.GetOrRender(ctx, "", r.render)
	require.NoError(t, err)
	_, hit, err := c.GetOrRender(ctx, "", r.render)
	require.NoError(t, err)
	assert.True(t, hit)

	assert.Eventually(t, func() bool {
		_, hit, err := c.GetOrRender(ctx, "", r.render)
		return err == nil && !hit
	}, time.Second, 20*time.Millisecond)
}

func TestFeedCache_ConcurrentMissesRenderOnce(t *testing.T) {
	c := NewFeedCache(NewMemoryStore(8, time.Minute), "index_page", time.Minute)
	ctx := context.Background()

	var calls atomic.Int32
	release := make(chan struct{})
	render := func(context.Context) ([]byte, error) {
		calls.Add(1)
		<-release
		return []byte(`{}`), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := c.GetOrRender(ctx, "", render)
			assert.NoError(t, err)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestParseAddr(t *testing.T) {
	opts, err := ParseAddr("localhost:6379")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)

	opts, err = ParseAddr("redis://:secret@cache:6380/2")
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)

	_, err = ParseAddr("redis://bad host")
	assert.Error(t, err)
}

func TestNewClient_Unreachable(t *testing.T) {
	mr, _ := testutil.NewRedis(t)
	addr := mr.Addr()
	mr.Close()

	client, err := NewClient(addr)
	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestFeedCache_RenderOutlivesCancelledCaller(t *testing.T) {
	c := NewFeedCache(NewMemoryStore(8, time.Minute), "index_page", time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	render := func(ctx context.Context) ([]byte, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return []byte(`{"page":1}`), nil
	}

	body, hit, err := c.GetOrRender(ctx, "", render)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.JSONEq(t, `{"page":1}`, string(body))

	_, hit, err = c.GetOrRender(context.Background(), "", render)
	require.NoError(t, err)
	assert.True(t, hit, "the shared render was stored")
}
