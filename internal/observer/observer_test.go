package observer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/reviewdash/internal/domain"
	"github.com/timmy/reviewdash/internal/notifier"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// fetchFunc adapts a function to StatusFetcher. call starts at 1.
type fetchFunc func(ctx context.Context, call int) (*domain.JobStatus, error)

type stubFetcher struct {
	calls atomic.Int64
	fn    fetchFunc
}

func (f *stubFetcher) Status(ctx context.Context) (*domain.JobStatus, error) {
	call := int(f.calls.Add(1))
	return f.fn(ctx, call)
}

func newStub(fn fetchFunc) *stubFetcher {
	return &stubFetcher{fn: fn}
}

func phase(p string) *domain.JobStatus {
	return &domain.JobStatus{CurrentPhase: p}
}

func TestNewRequiresFetcher(t *testing.T) {
	_, err := New(nil, nil)
	assert.ErrorIs(t, err, ErrNoFetcher)

	o, err := New(newStub(nil), nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultInterval, o.interval)
	assert.False(t, o.Active())
}

func TestStartPollsImmediately(t *testing.T) {
	stub := newStub(func(context.Context, int) (*domain.JobStatus, error) {
		return phase("Initializing"), nil
	})
	o, err := New(stub, &Config{Interval: time.Hour})
	require.NoError(t, err)

	o.Start(context.Background())
	defer o.Stop()

	assert.Eventually(t, func() bool {
		return o.Snapshot().CurrentPhase == "Initializing"
	}, waitFor, tick)
	assert.Equal(t, int64(1), stub.calls.Load())
	assert.True(t, o.Active())
}

func TestPollsEveryInterval(t *testing.T) {
	stub := newStub(func(_ context.Context, call int) (*domain.JobStatus, error) {
		return &domain.JobStatus{Progress: call}, nil
	})
	o, err := New(stub, &Config{Interval: 10 * time.Millisecond})
	require.NoError(t, err)

	o.Start(context.Background())
	defer o.Stop()

	assert.Eventually(t, func() bool { return stub.calls.Load() >= 4 }, waitFor, tick)
	assert.Eventually(t, func() bool { return o.Snapshot().Progress >= 3 }, waitFor, tick)
}

func TestFailedPollKeepsSnapshotAndContinues(t *testing.T) {
	boom := errors.New("connection refused")
	var reported atomic.Int64

	stub := newStub(func(_ context.Context, call int) (*domain.JobStatus, error) {
		if call == 1 {
			return &domain.JobStatus{IsRunning: true, Progress: 10, Total: 100}, nil
		}
		return nil, boom
	})
	o, err := New(stub, &Config{
		Interval: 10 * time.Millisecond,
		OnError: func(err error) {
			assert.ErrorIs(t, err, boom)
			reported.Add(1)
		},
	})
	require.NoError(t, err)

	o.Start(context.Background())
	defer o.Stop()

	assert.Eventually(t, func() bool { return reported.Load() >= 3 }, waitFor, tick)

	snap := o.Snapshot()
	assert.True(t, snap.IsRunning)
	assert.Equal(t, 10, snap.Progress)
	assert.True(t, o.Active())

	stats := o.Stats()
	assert.GreaterOrEqual(t, stats.Failures, uint64(3))
	assert.Equal(t, boom.Error(), stats.LastError)
	assert.Equal(t, "polling", stats.StateName)
}

func TestNilStatusCountsAsFailure(t *testing.T) {
	var reported atomic.Int64
	stub := newStub(func(context.Context, int) (*domain.JobStatus, error) { return nil, nil })
	o, err := New(stub, &Config{Interval: time.Hour, OnError: func(error) { reported.Add(1) }})
	require.NoError(t, err)

	o.Start(context.Background())
	defer o.Stop()

	assert.Eventually(t, func() bool { return reported.Load() == 1 }, waitFor, tick)
	assert.Equal(t, domain.JobStatus{}, o.Snapshot())
}

func TestStopDiscardsInFlightResult(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	// ignores ctx on purpose: the result arrives after teardown
	stub := newStub(func(_ context.Context, call int) (*domain.JobStatus, error) {
		if call == 1 {
			close(started)
			<-release
			return phase("late"), nil
		}
		return nil, errors.New("unexpected poll")
	})
	var reported atomic.Int64
	o, err := New(stub, &Config{Interval: time.Hour, OnError: func(error) { reported.Add(1) }})
	require.NoError(t, err)

	o.Start(context.Background())
	<-started
	o.Stop()
	assert.False(t, o.Active())

	close(release)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, domain.JobStatus{}, o.Snapshot())
	assert.Equal(t, int64(1), stub.calls.Load())
	assert.Equal(t, int64(0), reported.Load())
}

func TestNoPollAfterStop(t *testing.T) {
	stub := newStub(func(_ context.Context, call int) (*domain.JobStatus, error) {
		return &domain.JobStatus{Progress: call}, nil
	})
	o, err := New(stub, &Config{Interval: 5 * time.Millisecond})
	require.NoError(t, err)

	o.Start(context.Background())
	assert.Eventually(t, func() bool { return stub.calls.Load() >= 2 }, waitFor, tick)
	o.Stop()

	calls := stub.calls.Load()
	snap := o.Snapshot()
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, calls, stub.calls.Load())
	assert.Equal(t, snap, o.Snapshot())
}

func TestStopCancelsInFlightContext(t *testing.T) {
	cancelled := make(chan struct{})
	stub := newStub(func(ctx context.Context, call int) (*domain.JobStatus, error) {
		<-ctx.Done()
		close(cancelled)
		return nil, ctx.Err()
	})
	o, err := New(stub, &Config{Interval: time.Hour})
	require.NoError(t, err)

	o.Start(context.Background())
	assert.Eventually(t, func() bool { return stub.calls.Load() == 1 }, waitFor, tick)
	o.Stop()

	select {
	case <-cancelled:
	case <-time.After(waitFor):
		t.Fatal("in-flight poll was not cancelled")
	}
}

func TestStartTwiceKeepsOneLoop(t *testing.T) {
	stub := newStub(func(context.Context, int) (*domain.JobStatus, error) { return phase("x"), nil })
	o, err := New(stub, &Config{Interval: time.Hour})
	require.NoError(t, err)

	o.Start(context.Background())
	defer o.Stop()

	o.mu.RLock()
	firstDone, firstEpoch := o.done, o.epoch
	o.mu.RUnlock()

	o.Start(context.Background())

	o.mu.RLock()
	assert.Equal(t, firstDone, o.done)
	assert.Equal(t, firstEpoch, o.epoch)
	o.mu.RUnlock()

	assert.Eventually(t, func() bool { return stub.calls.Load() == 1 }, waitFor, tick)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int64(1), stub.calls.Load())
}

func TestStopIsIdempotent(t *testing.T) {
	o, err := New(newStub(func(context.Context, int) (*domain.JobStatus, error) { return phase("x"), nil }), nil)
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		o.Stop()
		o.Start(context.Background())
		o.Stop()
		o.Stop()
	})
	assert.False(t, o.Active())
}

func TestParentContextCancellationDeactivates(t *testing.T) {
	stub := newStub(func(context.Context, int) (*domain.JobStatus, error) { return phase("x"), nil })
	o, err := New(stub, &Config{Interval: 5 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	o.Start(ctx)
	assert.Eventually(t, o.Active, waitFor, tick)

	cancel()
	assert.Eventually(t, func() bool { return !o.Active() }, waitFor, tick)

	// a later Start begins a fresh activation
	o.Start(context.Background())
	defer o.Stop()
	assert.True(t, o.Active())
}

// gatedFetcher returns a fixed status per call once that call's gate is opened.
type gatedFetcher struct {
	mu    sync.Mutex
	calls int
	gates map[int]chan struct{}
	out   map[int]*domain.JobStatus
}

func (f *gatedFetcher) Status(ctx context.Context) (*domain.JobStatus, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	gate, gated := f.gates[call]
	out, ok := f.out[call]
	f.mu.Unlock()

	if !ok {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if gated {
		<-gate
	}
	return out, nil
}

func (f *gatedFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestOverlappingPollsLastCompletedWins(t *testing.T) {
	gate := make(chan struct{})
	fetcher := &gatedFetcher{
		gates: map[int]chan struct{}{1: gate},
		out:   map[int]*domain.JobStatus{1: phase("issued-first"), 2: phase("issued-second")},
	}
	o, err := New(fetcher, &Config{Interval: 10 * time.Millisecond})
	require.NoError(t, err)

	o.Start(context.Background())
	defer o.Stop()

	assert.Eventually(t, func() bool { return o.Snapshot().CurrentPhase == "issued-second" }, waitFor, tick)

	close(gate)
	assert.Eventually(t, func() bool { return o.Snapshot().CurrentPhase == "issued-first" }, waitFor, tick)
}

func TestOverlappingPollsDiscardStale(t *testing.T) {
	gate := make(chan struct{})
	fetcher := &gatedFetcher{
		gates: map[int]chan struct{}{1: gate},
		out:   map[int]*domain.JobStatus{1: phase("issued-first"), 2: phase("issued-second")},
	}
	n := notifier.New()
	pings := n.Subscribe()
	defer n.Unsubscribe(pings)

	o, err := New(fetcher, &Config{Interval: 10 * time.Millisecond, DiscardStale: true, Notifier: n})
	require.NoError(t, err)

	o.Start(context.Background())
	defer o.Stop()

	assert.Eventually(t, func() bool { return o.Snapshot().CurrentPhase == "issued-second" }, waitFor, tick)
	<-pings

	close(gate)
	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, "issued-second", o.Snapshot().CurrentPhase)
	assert.GreaterOrEqual(t, fetcher.callCount(), 2)
}

func TestResultFromPreviousActivationIsDropped(t *testing.T) {
	gate := make(chan struct{})
	fetcher := &gatedFetcher{
		gates: map[int]chan struct{}{1: gate},
		out:   map[int]*domain.JobStatus{1: phase("old-activation"), 2: phase("new-activation")},
	}
	o, err := New(fetcher, &Config{Interval: time.Hour})
	require.NoError(t, err)

	o.Start(context.Background())
	assert.Eventually(t, func() bool { return fetcher.callCount() == 1 }, waitFor, tick)
	o.Stop()

	o.Start(context.Background())
	defer o.Stop()
	assert.Eventually(t, func() bool { return o.Snapshot().CurrentPhase == "new-activation" }, waitFor, tick)

	close(gate)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, "new-activation", o.Snapshot().CurrentPhase)
}

func TestAppliedSnapshotBroadcasts(t *testing.T) {
	n := notifier.New()
	pings := n.Subscribe()
	defer n.Unsubscribe(pings)

	stub := newStub(func(context.Context, int) (*domain.JobStatus, error) { return phase("x"), nil })
	o, err := New(stub, &Config{Interval: time.Hour, Notifier: n})
	require.NoError(t, err)

	o.Start(context.Background())
	defer o.Stop()

	select {
	case <-pings:
	case <-time.After(waitFor):
		t.Fatal("no broadcast after applied snapshot")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	stub := newStub(func(context.Context, int) (*domain.JobStatus, error) {
		return &domain.JobStatus{FilesCreated: []string{"part1.json"}}, nil
	})
	o, err := New(stub, &Config{Interval: time.Hour})
	require.NoError(t, err)

	o.Start(context.Background())
	defer o.Stop()
	assert.Eventually(t, func() bool { return len(o.Snapshot().FilesCreated) == 1 }, waitFor, tick)

	snap := o.Snapshot()
	snap.FilesCreated[0] = "mutated"
	assert.Equal(t, "part1.json", o.Snapshot().FilesCreated[0])
}
