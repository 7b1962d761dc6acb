// internal/poller/loop.go
package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/inverter-monitor/internal/dashboard"
	"github.com/tamzrod/inverter-monitor/internal/telemetry"
)

// Fetcher reads one telemetry snapshot.
type Fetcher interface {
	Fetch(ctx context.Context) (telemetry.Snapshot, error)
}

// Presenter draws snapshots and countdown ticks.
type Presenter interface {
	Apply(s telemetry.Snapshot) dashboard.Frame
	Tick(now time.Time, remaining int)
}

// Observer receives every successfully applied frame.
// Observers run one at a time, in registration order, and must not call Restart.
type Observer func(dashboard.Frame)

// ErrStarted is returned by a second Start.
var ErrStarted = errors.New("poller: already started")

// Config is the minimal runtime config the loop needs.
type Config struct {
	// Tick is the countdown period.
	Tick time.Duration
	// InitialCountdown seeds the counter on start and on every restart.
	InitialCountdown int
	// RefreshCountdown re-arms the counter after each fetch.
	RefreshCountdown int
}

// DefaultConfig is one-second ticks, first fetch after 2, then every 5.
var DefaultConfig = Config{
	Tick:             time.Second,
	InitialCountdown: 2,
	RefreshCountdown: 5,
}

// Loop is the countdown-driven poll cycle.
// It owns the single active ticker; Restart is the only way to replace it.
type Loop struct {
	cfg       Config
	fetcher   Fetcher
	presenter Presenter
	clock     Clock
	log       zerolog.Logger

	// mu guards the ticker handle and the base context
	mu     sync.Mutex
	base   context.Context
	cancel context.CancelFunc
	done   chan struct{}

	renderMu  sync.Mutex
	observeMu sync.Mutex
	observers []Observer

	remaining atomic.Int64
	cycles    atomic.Uint64
	fetches   sync.WaitGroup
}

// Option configures a Loop.
type Option func(*Loop)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(l *Loop) { l.clock = c }
}

// WithLogger sets the loop logger.
func WithLogger(log zerolog.Logger) Option {
	return func(l *Loop) { l.log = log }
}

// New creates a loop with immutable config.
func New(cfg Config, f Fetcher, p Presenter, opts ...Option) (*Loop, error) {
	if f == nil {
		return nil, errors.New("poller: fetcher required")
	}
	if p == nil {
		return nil, errors.New("poller: presenter required")
	}
	if cfg.Tick <= 0 {
		return nil, errors.New("poller: tick must be > 0")
	}
	if cfg.InitialCountdown <= 0 || cfg.RefreshCountdown <= 0 {
		return nil, errors.New("poller: countdowns must be > 0")
	}

	l := &Loop{
		cfg:       cfg,
		fetcher:   f,
		presenter: p,
		clock:     realClock{},
		log:       zerolog.Nop(),
	}
	for _, o := range opts {
		o(l)
	}
	return l, nil
}

// OnFrame registers an observer.
func (l *Loop) OnFrame(o Observer) {
	l.observeMu.Lock()
	defer l.observeMu.Unlock()
	l.observers = append(l.observers, o)
}

// Start arms the first cycle. ctx bounds the loop and every fetch it issues.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.base != nil {
		return ErrStarted
	}
	l.base = ctx
	l.armLocked()
	return nil
}

// Restart cancels the active ticker and arms a fresh one with the initial countdown.
// In-flight fetches are not cancelled; they complete and apply their result.
// Restart before Start is a no-op.
func (l *Loop) Restart() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.base == nil {
		return
	}
	l.stopLocked()
	l.armLocked()
	l.log.Debug().Msg("poll loop restarted")
}

// Remaining returns the seconds left before the next fetch.
func (l *Loop) Remaining() int {
	return int(l.remaining.Load())
}

// Wait blocks until the loop's context is done and every in-flight fetch has finished.
func (l *Loop) Wait() {
	l.mu.Lock()
	base := l.base
	l.mu.Unlock()

	if base != nil {
		<-base.Done()
		l.mu.Lock()
		l.stopLocked()
		l.mu.Unlock()
	}
	l.fetches.Wait()
}

func (l *Loop) stopLocked() {
	if l.cancel == nil {
		return
	}
	l.cancel()
	<-l.done
	l.cancel = nil
	l.done = nil
}

func (l *Loop) armLocked() {
	ctx, cancel := context.WithCancel(l.base)
	done := make(chan struct{})
	l.cancel = cancel
	l.done = done
	l.remaining.Store(int64(l.cfg.InitialCountdown))

	ticker := l.clock.Ticker(l.cfg.Tick)
	go l.run(ctx, l.base, ticker, done)
}

func (l *Loop) run(ctx, base context.Context, ticker Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	remaining := l.cfg.InitialCountdown

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.Chan():
			// a tick racing the cancel is dropped
			if ctx.Err() != nil {
				return
			}

			remaining--
			l.remaining.Store(int64(remaining))

			l.renderMu.Lock()
			l.presenter.Tick(now, remaining)
			l.renderMu.Unlock()

			if remaining <= 0 {
				remaining = l.cfg.RefreshCountdown
				l.remaining.Store(int64(remaining))

				cycle := l.cycles.Add(1)
				l.fetches.Add(1)
				go l.fetch(base, cycle)
			}
		}
	}
}

// fetch runs one poll cycle against the base context so a restart never cancels it.
// Overlapping fetches apply in completion order; the last one to finish wins.
func (l *Loop) fetch(ctx context.Context, cycle uint64) {
	defer l.fetches.Done()

	log := l.log.With().Uint64("cycle", cycle).Logger()
	log.Debug().Msg("fetching snapshot")

	snap, err := l.fetcher.Fetch(ctx)
	if err != nil {
		log.Error().Err(err).Msg("fetch failed")
		return
	}

	l.renderMu.Lock()
	frame := l.presenter.Apply(snap)
	l.renderMu.Unlock()

	l.observeMu.Lock()
	defer l.observeMu.Unlock()
	for _, o := range l.observers {
		o(frame)
	}

	log.Debug().
		Str("mode", frame.Mode.Label).
		Bool("has_timestamp", frame.HasTimestamp).
		Msg("snapshot applied")
}
