package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type memLedger struct {
	mu     sync.Mutex
	claims map[string]bool
	err    error
}

func newMemLedger() *memLedger {
	return &memLedger{claims: make(map[string]bool)}
}

func (l *memLedger) Claim(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return false, l.err
	}
	if l.claims[key] {
		return false, nil
	}
	l.claims[key] = true
	return true, nil
}

func (l *memLedger) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.claims, key)
	return nil
}

func TestRunner_SkipsAppliedKeys(t *testing.T) {
	runner := NewRunner(newMemLedger(), false, time.Second)
	var calls int
	step := Step{Name: "count", Key: "event-1", Run: func(context.Context) error {
		calls++
		return nil
	}}

	assert.Equal(t, 0, runner.Run(context.Background(), step))
	assert.Equal(t, 0, runner.Run(context.Background(), step))
	assert.Equal(t, 1, calls)
}

func TestRunner_UnkeyedStepsAlwaysRun(t *testing.T) {
	runner := NewRunner(newMemLedger(), false, time.Second)
	var calls int
	step := Step{Name: "count", Run: func(context.Context) error {
		calls++
		return nil
	}}

	runner.Run(context.Background(), step, step)
	assert.Equal(t, 2, calls)
}

func TestRunner_FailedStepStaysRetryable(t *testing.T) {
	ledger := newMemLedger()
	runner := NewRunner(ledger, false, time.Second)

	fail := true
	var calls int
	step := Step{Name: "flaky", Key: "event-2", Run: func(context.Context) error {
		calls++
		if fail {
			return errors.New("store unavailable")
		}
		return nil
	}}
	after := Step{Name: "after", Run: func(context.Context) error { return nil }}

	// a failure does not stop the remaining steps
	assert.Equal(t, 1, runner.Run(context.Background(), step, after))
	assert.False(t, ledger.claims["event-2"])

	fail = false
	assert.Equal(t, 0, runner.Run(context.Background(), step))
	assert.Equal(t, 2, calls)
	assert.True(t, ledger.claims["event-2"])
}

func TestRunner_LedgerErrorStillRunsStep(t *testing.T) {
	ledger := newMemLedger()
	ledger.err = errors.New("ledger down")
	runner := NewRunner(ledger, false, time.Second)

	var calls int
	runner.Run(context.Background(), Step{Name: "count", Key: "event-3", Run: func(context.Context) error {
		calls++
		return nil
	}})
	assert.Equal(t, 1, calls)
}

func TestRunner_GoDetached(t *testing.T) {
	runner := NewRunner(nil, true, time.Second)

	var calls atomic.Int32
	for i := 0; i < 10; i++ {
		runner.Go(Step{Name: "async", Run: func(ctx context.Context) error {
			_, ok := ctx.Deadline()
			assert.True(t, ok)
			calls.Add(1)
			return nil
		}})
	}
	runner.Wait()
	assert.Equal(t, int32(10), calls.Load())
}
