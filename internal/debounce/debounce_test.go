package debounce

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu   sync.Mutex
	vals []string
	ch   chan string
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan string, 16)}
}

func (r *recorder) record(v string) {
	r.mu.Lock()
	r.vals = append(r.vals, v)
	r.mu.Unlock()
	r.ch <- v
}

func (r *recorder) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.vals...)
}

func TestDebouncer_BurstCollapsesToLastValue(t *testing.T) {
	// Given: a debouncer with a short delay
	rec := newRecorder()
	d := New(50*time.Millisecond, rec.record)
	defer d.Stop()

	// When: typing quickly
	for _, v := range []string{"g", "go", "gol", "gola", "golang"} {
		d.Trigger(v)
		time.Sleep(5 * time.Millisecond)
	}

	// Then: a single call with the final value
	select {
	case v := <-rec.ch:
		assert.Equal(t, "golang", v)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout waiting for debounced call")
	}
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, []string{"golang"}, rec.calls())
	assert.False(t, d.Pending())
}

func TestDebouncer_SeparateBurstsEachFire(t *testing.T) {
	rec := newRecorder()
	d := New(20*time.Millisecond, rec.record)
	defer d.Stop()

	d.Trigger("a")
	require.Equal(t, "a", <-rec.ch)
	d.Trigger("b")
	require.Equal(t, "b", <-rec.ch)
}

func TestDebouncer_CancelDropsPending(t *testing.T) {
	rec := newRecorder()
	d := New(30*time.Millisecond, rec.record)
	defer d.Stop()

	d.Trigger("x")
	assert.True(t, d.Pending())
	d.Cancel()
	assert.False(t, d.Pending())

	time.Sleep(80 * time.Millisecond)
	assert.Empty(t, rec.calls())
}

func TestDebouncer_FlushRunsNow(t *testing.T) {
	rec := newRecorder()
	d := New(time.Hour, rec.record)
	defer d.Stop()

	assert.False(t, d.Flush())
	d.Trigger("now")
	assert.True(t, d.Flush())
	assert.Equal(t, []string{"now"}, rec.calls())
	assert.False(t, d.Flush())
}

func TestDebouncer_StopIgnoresLaterTriggers(t *testing.T) {
	var calls atomic.Int32
	d := New(10*time.Millisecond, func(string) { calls.Add(1) })

	d.Trigger("a")
	d.Stop()
	d.Stop()
	d.Trigger("b")

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestThrottle(t *testing.T) {
	now := time.Unix(0, 0)
	th := NewThrottle(100 * time.Millisecond)
	th.now = func() time.Time { return now }

	assert.True(t, th.allow())
	assert.False(t, th.allow())

	now = now.Add(99 * time.Millisecond)
	assert.False(t, th.Do(func() { t.Fatal("throttled call ran") }))

	now = now.Add(time.Millisecond)
	ran := false
	assert.True(t, th.Do(func() { ran = true }))
	assert.True(t, ran)
}
