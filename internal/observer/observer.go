// Package observer keeps a current view of the external generation job by polling its status.
package observer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/timmy/reviewdash/internal/domain"
	"github.com/timmy/reviewdash/internal/logger"
	"github.com/timmy/reviewdash/internal/notifier"
)

// DefaultInterval is the polling period used when Config.Interval is zero.
const DefaultInterval = 2 * time.Second

var (
	// ErrNoFetcher is returned by New when no status source is given.
	ErrNoFetcher = errors.New("observer: status fetcher is required")

	errEmptyStatus = errors.New("observer: status fetcher returned no status")
)

// StatusFetcher fetches one full job status snapshot.
type StatusFetcher interface {
	Status(ctx context.Context) (*domain.JobStatus, error)
}

// Config holds observer configuration.
type Config struct {
	// Interval between polls. Zero means DefaultInterval.
	Interval time.Duration
	// DiscardStale drops a response when a later-issued poll was already applied.
	// Off by default: the last poll to complete wins.
	DiscardStale bool
	// Notifier is pinged after every applied snapshot. Optional.
	Notifier *notifier.Notifier
	// OnError receives every failed poll of the current activation. Optional.
	OnError func(error)
}

// State is the lifecycle state of an Observer.
type State int

const (
	StateInactive State = iota
	StatePolling
)

func (s State) String() string {
	if s == StatePolling {
		return "polling"
	}
	return "inactive"
}

// Stats summarises polling activity for health reporting.
type Stats struct {
	State       State     `json:"-"`
	StateName   string    `json:"state"`
	Polls       uint64    `json:"polls"`
	Failures    uint64    `json:"failures"`
	LastSuccess time.Time `json:"last_success,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
}

// Observer polls a StatusFetcher on a fixed interval and holds the latest snapshot.
//
// Polling does not look at is_running or completed; it runs for as long as the observer
// is active. Every successful poll replaces the whole snapshot. Failed polls leave it as is.
type Observer struct {
	fetcher      StatusFetcher
	interval     time.Duration
	discardStale bool
	notifier     *notifier.Notifier
	onError      func(error)

	// lifecycle serialises Start and Stop.
	lifecycle sync.Mutex

	mu          sync.RWMutex
	snapshot    domain.JobStatus
	appliedSeq  uint64
	epoch       uint64
	active      bool
	cancel      context.CancelFunc
	done        chan struct{}
	lastSuccess time.Time
	lastErr     error

	seq      atomic.Uint64
	polls    atomic.Uint64
	failures atomic.Uint64
}

// New creates an inactive Observer.
// Parameters:
//   - fetcher: status source, usually *generator.Client.
//   - cfg: polling configuration; nil uses defaults.
//
// Returns:
//   - *Observer: observer in StateInactive.
//   - error: ErrNoFetcher when fetcher is nil.
func New(fetcher StatusFetcher, cfg *Config) (*Observer, error) {
	if fetcher == nil {
		return nil, ErrNoFetcher
	}
	if cfg == nil {
		cfg = &Config{}
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Observer{
		fetcher:      fetcher,
		interval:     interval,
		discardStale: cfg.DiscardStale,
		notifier:     cfg.Notifier,
		onError:      cfg.OnError,
	}, nil
}

// Start activates polling: one poll right away, then one per interval.
// Calling Start on an active observer does nothing, so a single ticker exists per activation.
// Cancelling ctx deactivates the observer the same way Stop does.
func (o *Observer) Start(ctx context.Context) {
	o.lifecycle.Lock()
	defer o.lifecycle.Unlock()

	o.mu.Lock()
	if o.active {
		o.mu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	o.epoch++
	epoch := o.epoch
	o.active = true
	o.cancel = cancel
	done := make(chan struct{})
	o.done = done
	o.mu.Unlock()

	pollCtx = logger.SetComponent(pollCtx, "observer")
	pollCtx = logger.WithField(pollCtx, logger.FieldSessionID, uuid.New().String())
	logger.CtxInfo(pollCtx, "Status polling started: interval=%s, discard_stale=%v", o.interval, o.discardStale)

	go o.run(pollCtx, epoch, done)
}

// Stop deactivates polling. The ticker is released before Stop returns.
// Polls still in flight are cancelled and their results are dropped.
// Stop is safe to call on an inactive observer.
func (o *Observer) Stop() {
	o.lifecycle.Lock()
	defer o.lifecycle.Unlock()

	o.mu.Lock()
	cancel, done := o.cancel, o.done
	wasActive := o.active
	o.active = false
	o.cancel = nil
	o.done = nil
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	if wasActive {
		logger.Info("Status polling stopped: polls=%d, failures=%d", o.polls.Load(), o.failures.Load())
	}
}

// Active reports whether the observer is polling.
func (o *Observer) Active() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.active
}

// Snapshot returns a copy of the most recently applied status.
// Before the first successful poll this is the zero JobStatus.
func (o *Observer) Snapshot() domain.JobStatus {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.snapshot.Clone()
}

// Stats returns polling counters.
func (o *Observer) Stats() Stats {
	o.mu.RLock()
	defer o.mu.RUnlock()

	state := StateInactive
	if o.active {
		state = StatePolling
	}
	s := Stats{
		State:       state,
		StateName:   state.String(),
		Polls:       o.polls.Load(),
		Failures:    o.failures.Load(),
		LastSuccess: o.lastSuccess,
	}
	if o.lastErr != nil {
		s.LastError = o.lastErr.Error()
	}
	return s
}

func (o *Observer) run(ctx context.Context, epoch uint64, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	go o.poll(ctx, epoch)

	for {
		select {
		case <-ctx.Done():
			o.deactivate(epoch)
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				continue
			}
			go o.poll(ctx, epoch)
		}
	}
}

// deactivate marks the observer inactive after its parent context ended.
func (o *Observer) deactivate(epoch uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.epoch == epoch && o.active {
		o.active = false
		logger.Info("Status polling ended with its context: polls=%d, failures=%d", o.polls.Load(), o.failures.Load())
	}
}

func (o *Observer) current(epoch uint64) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.active && o.epoch == epoch
}

func (o *Observer) poll(ctx context.Context, epoch uint64) {
	if ctx.Err() != nil || !o.current(epoch) {
		return
	}

	seq := o.seq.Add(1)
	o.polls.Add(1)
	start := time.Now()

	status, err := o.fetcher.Status(ctx)
	if err == nil && status == nil {
		err = errEmptyStatus
	}
	entry := logger.With(logger.Fields{
		logger.FieldPollSeq:    seq,
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
	})

	if err != nil {
		o.fail(ctx, epoch, err, entry)
		return
	}

	if o.apply(epoch, seq, *status) {
		entry.Debug(ctx, "Status applied: running=%v, progress=%d/%d, phase=%q",
			status.IsRunning, status.Progress, status.Total, status.CurrentPhase)
	} else {
		entry.Debug(ctx, "Status discarded")
	}
}

func (o *Observer) fail(ctx context.Context, epoch uint64, err error, entry *logger.Entry) {
	o.mu.Lock()
	if !o.active || o.epoch != epoch {
		o.mu.Unlock()
		return
	}
	o.lastErr = err
	o.mu.Unlock()

	o.failures.Add(1)
	entry.Warn(ctx, "Status poll failed, keeping last snapshot: error=%v", err)
	if o.onError != nil {
		o.onError(err)
	}
}

// apply replaces the snapshot if the result still belongs to the current activation.
func (o *Observer) apply(epoch, seq uint64, status domain.JobStatus) bool {
	o.mu.Lock()
	if !o.active || o.epoch != epoch {
		o.mu.Unlock()
		return false
	}
	if o.discardStale && seq < o.appliedSeq {
		o.mu.Unlock()
		return false
	}
	o.snapshot = status.Clone()
	o.appliedSeq = seq
	o.lastSuccess = time.Now()
	o.lastErr = nil
	o.mu.Unlock()

	o.notifier.Broadcast()
	return true
}
