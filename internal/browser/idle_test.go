package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdleTrackerStartsBusy(t *testing.T) {
	tr := newIdleTracker()
	assert.False(t, tr.Idle())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := tr.Wait(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestIdleTrackerReturnsImmediatelyOnceIdle(t *testing.T) {
	tr := newIdleTracker()
	tr.Observe("main", "DOMContentLoaded")
	tr.Observe("main", "load")
	tr.Observe("main", lifecycleNetworkIdle)

	assert.True(t, tr.Idle())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, tr.Wait(ctx))
}

func TestIdleTrackerResetsOnNavigation(t *testing.T) {
	tr := newIdleTracker()
	tr.Observe("main", lifecycleNetworkIdle)
	require.True(t, tr.Idle())

	tr.Observe("main", lifecycleInit)
	assert.False(t, tr.Idle())

	waited := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		waited <- tr.Wait(ctx)
	}()

	time.Sleep(10 * time.Millisecond)
	tr.Observe("main", lifecycleNetworkIdle)

	select {
	case err := <-waited:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after networkIdle")
	}
}

func TestIdleTrackerRepeatedEventsAreHarmless(t *testing.T) {
	tr := newIdleTracker()
	tr.Observe("main", lifecycleInit)
	tr.Observe("main", lifecycleInit)
	tr.Observe("main", lifecycleNetworkIdle)
	tr.Observe("main", lifecycleNetworkIdle) // second close would panic

	assert.True(t, tr.Idle())
}

func TestIdleTrackerIgnoresOtherFrames(t *testing.T) {
	tr := newIdleTracker()
	tr.SetFrame("main")

	tr.Observe("iframe-1", lifecycleNetworkIdle)
	assert.False(t, tr.Idle())

	tr.Observe("main", lifecycleNetworkIdle)
	assert.True(t, tr.Idle())

	tr.Observe("iframe-1", lifecycleInit)
	assert.True(t, tr.Idle())
}
