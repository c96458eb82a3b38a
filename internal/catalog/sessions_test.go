package catalog

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type sessionCounter struct {
	opened atomic.Int64
	closed atomic.Int64
}

func (s *sessionCounter) SessionOpened() { s.opened.Add(1) }
func (s *sessionCounter) SessionClosed() { s.closed.Add(1) }

func TestRegistryReusesControllerPerSession(t *testing.T) {
	counter := &sessionCounter{}
	reg := NewRegistry(newStubAPI(), RegistryConfig{MaxSessions: 4, TTL: time.Minute}, RegistryOptions{Sessions: counter})
	defer reg.Close()

	first, err := reg.Acquire(context.Background(), "sid-1")
	require.NoError(t, err)
	again, err := reg.Acquire(context.Background(), "sid-1")
	require.NoError(t, err)
	require.Same(t, first, again)

	other, err := reg.Acquire(context.Background(), "sid-2")
	require.NoError(t, err)
	require.NotSame(t, first, other)
	require.Equal(t, 2, reg.Len())
	require.EqualValues(t, 2, counter.opened.Load())

	require.NoError(t, first.Mount())
	st := waitIdle(t, first)
	require.True(t, st.Mounted)
}

func TestRegistryEvictionClosesController(t *testing.T) {
	counter := &sessionCounter{}
	reg := NewRegistry(newStubAPI(), RegistryConfig{MaxSessions: 1, TTL: time.Minute}, RegistryOptions{Sessions: counter})
	defer reg.Close()

	first, err := reg.Acquire(context.Background(), "sid-1")
	require.NoError(t, err)
	_, err = reg.Acquire(context.Background(), "sid-2")
	require.NoError(t, err)

	require.ErrorIs(t, first.SetSearch("x"), ErrClosed)
	require.EqualValues(t, 1, counter.closed.Load())

	_, ok := reg.Lookup("sid-1")
	require.False(t, ok)
}

func TestRegistryDropAndClose(t *testing.T) {
	counter := &sessionCounter{}
	reg := NewRegistry(newStubAPI(), RegistryConfig{MaxSessions: 4, TTL: time.Minute}, RegistryOptions{Sessions: counter})

	a, err := reg.Acquire(context.Background(), "a")
	require.NoError(t, err)
	b, err := reg.Acquire(context.Background(), "b")
	require.NoError(t, err)

	reg.Drop("a")
	require.True(t, errors.Is(a.Retry(), ErrClosed))

	reg.Close()
	require.ErrorIs(t, b.Retry(), ErrClosed)
	require.Equal(t, 0, reg.Len())
	require.EqualValues(t, 2, counter.closed.Load())

	_, err = reg.Acquire(context.Background(), "c")
	require.ErrorIs(t, err, ErrClosed)
}

func TestRegistryEvictionDoesNotHoldLockOnSlowWorker(t *testing.T) {
	api := newStubAPI()
	release := api.gate("")
	reg := NewRegistry(api, RegistryConfig{MaxSessions: 1, TTL: time.Minute}, RegistryOptions{})
	// The LRU sweeper outlives Close.
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	defer reg.Close()

	first, err := reg.Acquire(context.Background(), "sid-1")
	require.NoError(t, err)
	require.NoError(t, first.Mount())

	evicting := make(chan struct{})
	go func() {
		defer close(evicting)
		_, _ = reg.Acquire(context.Background(), "sid-2")
	}()
	require.Eventually(t, func() bool {
		_, ok := reg.Lookup("sid-2")
		return ok
	}, time.Second, 5*time.Millisecond)
	require.ErrorIs(t, first.SetSearch("x"), ErrClosed)

	acquired := make(chan error, 1)
	go func() {
		_, err := reg.Acquire(context.Background(), "sid-2")
		acquired <- err
	}()
	select {
	case err := <-acquired:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("acquire blocked behind a closing session")
	}

	select {
	case <-evicting:
		t.Fatal("evicting acquire should wait for the stopped worker")
	default:
	}
	close(release)
	select {
	case <-evicting:
	case <-time.After(2 * time.Second):
		t.Fatal("eviction did not finish after the worker returned")
	}
}
