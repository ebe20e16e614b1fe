package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonathan/job-scanner/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResult(skill string) types.ExtractionResult {
	r := types.NewEmptyResult(types.SourceLocalFallback)
	r.Skills = append(r.Skills, types.SkillEntry{Name: skill})
	return r
}

func TestKey(t *testing.T) {
	a := Key("https://example.com/job", "We need Go engineers.")
	b := Key("https://example.com/job", "We need Go engineers.")
	assert.Equal(t, a, b, "key must be deterministic")
	assert.Len(t, a, 32)

	changed := Key("https://example.com/job", "We need Rust engineers.")
	assert.NotEqual(t, a, changed, "changed content must produce a new key")

	otherURL := Key("https://example.com/other", "We need Go engineers.")
	assert.NotEqual(t, a, otherURL, "different URL must produce a new key")
}

func TestGetSet(t *testing.T) {
	c := New()
	defer c.Stop()

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("k", testResult("go"))
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.True(t, got.HasSkill("go"))
}

func TestExpiry(t *testing.T) {
	c := New(WithTTL(20 * time.Millisecond))
	defer c.Stop()

	c.Set("k", testResult("go"))
	_, ok := c.Get("k")
	require.True(t, ok)

	time.Sleep(40 * time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok, "expired entries must miss")
}

func TestSweepRemovesExpired(t *testing.T) {
	c := New(WithTTL(time.Nanosecond))
	defer c.Stop()

	c.Set("a", testResult("go"))
	c.Set("b", testResult("python"))
	require.Equal(t, 2, c.Len())

	c.sweep(time.Now().Add(time.Second))
	assert.Equal(t, 0, c.Len())
}

func TestGetOrCompute_Miss(t *testing.T) {
	c := New()
	defer c.Stop()

	var computed atomic.Int32
	compute := func(context.Context) types.ExtractionResult {
		computed.Add(1)
		return testResult("go")
	}

	got := c.GetOrCompute(context.Background(), "k", compute)
	assert.True(t, got.HasSkill("go"))
	assert.Equal(t, int32(1), computed.Load())

	// Second call hits the cache.
	c.GetOrCompute(context.Background(), "k", compute)
	assert.Equal(t, int32(1), computed.Load())
}

func TestGetOrCompute_CollapsesConcurrent(t *testing.T) {
	c := New()
	defer c.Stop()

	var computed atomic.Int32
	release := make(chan struct{})
	compute := func(context.Context) types.ExtractionResult {
		computed.Add(1)
		<-release
		return testResult("go")
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := c.GetOrCompute(context.Background(), "k", compute)
			assert.True(t, got.HasSkill("go"))
		}()
	}

	// Let the goroutines pile onto the key before releasing.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), computed.Load(), "concurrent misses must share one compute call")
}

func TestInvalidate(t *testing.T) {
	c := New()
	defer c.Stop()

	c.Set("k", testResult("go"))
	c.Invalidate("k")
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestStopIdempotent(t *testing.T) {
	c := New()
	c.Stop()
	c.Stop()
}
