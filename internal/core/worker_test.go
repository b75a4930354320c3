package core_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/DonovanMods/me3-manager/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorker_RunsInOrder(t *testing.T) {
	w := core.NewWorker(8)
	defer w.Close()

	var mu sync.Mutex
	var order []int
	var results []<-chan error
	for i := range 5 {
		results = append(results, w.Submit(context.Background(), func() error {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil
		}))
	}
	for _, r := range results {
		require.NoError(t, <-r)
	}

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestWorker_ReturnsError(t *testing.T) {
	w := core.NewWorker(1)
	defer w.Close()

	boom := errors.New("boom")
	err := <-w.Submit(context.Background(), func() error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestWorker_SkipsCancelled(t *testing.T) {
	w := core.NewWorker(1)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	err := <-w.Submit(ctx, func() error { ran = true; return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran)
}

func TestWorker_Closed(t *testing.T) {
	w := core.NewWorker(1)
	w.Close()
	w.Close()

	err := <-w.Submit(context.Background(), func() error { return nil })
	assert.ErrorIs(t, err, core.ErrWorkerClosed)
}

func TestWorker_SerializesManagerOperations(t *testing.T) {
	env := newTestEnv(t)
	w := core.NewWorker(16)
	defer w.Close()

	a := env.addNative(t, "a.dll")
	b := env.addNative(t, "b.dll")

	var results []<-chan error
	for _, op := range []func() error{
		func() error { return env.manager.Enable(a) },
		func() error { return env.manager.Disable(a) },
		func() error { return env.manager.Enable(b) },
	} {
		results = append(results, w.Submit(context.Background(), op))
	}
	for _, r := range results {
		require.NoError(t, <-r)
	}

	assert.Equal(t, []string{b}, env.diskEnabled(t))
}
