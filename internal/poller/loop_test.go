// internal/poller/loop_test.go
package poller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/inverter-monitor/internal/dashboard"
	"github.com/tamzrod/inverter-monitor/internal/mode"
	"github.com/tamzrod/inverter-monitor/internal/render"
	"github.com/tamzrod/inverter-monitor/internal/status"
	"github.com/tamzrod/inverter-monitor/internal/telemetry"
)

// ---- fakes ----

type fakeTicker struct {
	ch      chan time.Time
	stopped chan struct{}
	once    sync.Once
}

func (t *fakeTicker) Chan() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() {
	t.once.Do(func() { close(t.stopped) })
}

func (t *fakeTicker) isStopped() bool {
	select {
	case <-t.stopped:
		return true
	default:
		return false
	}
}

type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Ticker(time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{ch: make(chan time.Time), stopped: make(chan struct{})}
	c.tickers = append(c.tickers, t)
	return t
}

// Advance moves the clock one second at a time, delivering a tick to every live ticker.
func (c *fakeClock) Advance(seconds int) {
	for i := 0; i < seconds; i++ {
		c.mu.Lock()
		c.now = c.now.Add(time.Second)
		now := c.now
		live := make([]*fakeTicker, 0, len(c.tickers))
		for _, t := range c.tickers {
			if !t.isStopped() {
				live = append(live, t)
			}
		}
		c.mu.Unlock()

		for _, t := range live {
			select {
			case t.ch <- now:
			case <-t.stopped:
			}
		}
	}
}

func (c *fakeClock) active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.tickers {
		if !t.isStopped() {
			n++
		}
	}
	return n
}

type fakeFetcher struct {
	calls   atomic.Int64
	respond func(call int64) (telemetry.Snapshot, error)
}

func (f *fakeFetcher) Fetch(ctx context.Context) (telemetry.Snapshot, error) {
	n := f.calls.Add(1)
	if f.respond == nil {
		return telemetry.Snapshot{}, nil
	}
	return f.respond(n)
}

func snapshot(t *testing.T, payload string) telemetry.Snapshot {
	t.Helper()
	s, err := telemetry.Decode(strings.NewReader(payload), telemetry.TimeParser{Location: time.UTC})
	require.NoError(t, err)
	return s
}

func newTestLoop(t *testing.T, clock *fakeClock, f Fetcher, r dashboard.Renderer) *Loop {
	t.Helper()
	p := dashboard.NewPresenter(r, status.NewMonitor(clock.Now, status.Thresholds{}))
	l, err := New(DefaultConfig, f, p, WithClock(clock))
	require.NoError(t, err)
	return l
}

// ---- tests ----

func TestNew_Validation(t *testing.T) {
	p := dashboard.NewPresenter(render.NewMemory(nil), nil)

	_, err := New(DefaultConfig, nil, p)
	assert.Error(t, err)

	_, err = New(Config{Tick: 0, InitialCountdown: 2, RefreshCountdown: 5}, &fakeFetcher{}, p)
	assert.Error(t, err)

	_, err = New(Config{Tick: time.Second, InitialCountdown: 0, RefreshCountdown: 5}, &fakeFetcher{}, p)
	assert.Error(t, err)
}

func TestLoop_TwoPhaseCountdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := newFakeClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	f := &fakeFetcher{}
	mem := render.NewMemory(nil)
	l := newTestLoop(t, clock, f, mem)

	require.NoError(t, l.Start(ctx))
	assert.Equal(t, 2, l.Remaining())

	clock.Advance(1)
	require.Eventually(t, func() bool { return l.Remaining() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, int64(0), f.calls.Load())

	clock.Advance(1)
	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, 5, l.Remaining())

	clock.Advance(4)
	assert.Equal(t, int64(1), f.calls.Load())

	clock.Advance(1)
	require.Eventually(t, func() bool { return f.calls.Load() == 2 }, time.Second, time.Millisecond)

	countdown, _ := mem.State().Display(dashboard.FieldCountdown)
	assert.Equal(t, "0", countdown)

	cancel()
	l.Wait()
}

func TestLoop_RestartsLeaveOneTimer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := newFakeClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	f := &fakeFetcher{}
	l := newTestLoop(t, clock, f, render.NewMemory(nil))

	require.NoError(t, l.Start(ctx))
	for i := 0; i < 10; i++ {
		l.Restart()
	}
	assert.Equal(t, 1, clock.active())

	// 12 simulated seconds with one timer: fetches at t=2, 7 and 12
	clock.Advance(12)
	require.Eventually(t, func() bool { return f.calls.Load() == 3 }, time.Second, time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int64(3), f.calls.Load())

	cancel()
	l.Wait()
	assert.Equal(t, 0, clock.active())
}

func TestLoop_ConcurrentRestarts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := newFakeClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	l := newTestLoop(t, clock, &fakeFetcher{}, render.NewMemory(nil))
	require.NoError(t, l.Start(ctx))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Restart()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, clock.active())
	cancel()
	l.Wait()
}

func TestLoop_StartTwice(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := newFakeClock(time.Now())
	l := newTestLoop(t, clock, &fakeFetcher{}, render.NewMemory(nil))

	require.NoError(t, l.Start(ctx))
	assert.ErrorIs(t, l.Start(ctx), ErrStarted)

	cancel()
	l.Wait()
}

func TestLoop_FailureKeepsPreviousValues(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := newFakeClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	f := &fakeFetcher{respond: func(call int64) (telemetry.Snapshot, error) {
		switch call {
		case 1:
			return snapshot(t, `{"pv_power": 100, "battery_voltage": 26.0}`), nil
		case 2:
			return telemetry.Snapshot{}, errors.New("connection refused")
		default:
			return snapshot(t, `{"pv_power": 300, "battery_voltage": 26.0}`), nil
		}
	}}
	mem := render.NewMemory(nil)
	l := newTestLoop(t, clock, f, mem)

	pv := func() string {
		v, _ := mem.State().Display(dashboard.FieldPVPower)
		return v
	}

	require.NoError(t, l.Start(ctx))

	clock.Advance(2)
	require.Eventually(t, func() bool { return pv() == "100 W" }, time.Second, time.Millisecond)

	clock.Advance(5)
	require.Eventually(t, func() bool { return f.calls.Load() == 2 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, "100 W", pv())
	soc, _ := mem.State().Display(dashboard.FieldBatteryCapacity)
	assert.Equal(t, "70 %", soc)

	clock.Advance(5)
	require.Eventually(t, func() bool { return pv() == "300 W" }, time.Second, time.Millisecond)

	cancel()
	l.Wait()
}

func TestLoop_EndToEnd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	start := time.Date(2024, 5, 1, 13, 15, 30, 0, time.UTC)
	clock := newFakeClock(start)

	// two ticks pass before the first fetch, so the reading is 61s old at fetch time
	reading := start.Add(2*time.Second - 61*time.Second)
	payload := `{"battery_voltage": 26.0, "device_status": "unknown-code", "timestamp": "` +
		reading.Format("2006-01-02 03:04:05 PM") + `"}`

	f := &fakeFetcher{respond: func(int64) (telemetry.Snapshot, error) {
		return snapshot(t, payload), nil
	}}
	mem := render.NewMemory(nil)
	l := newTestLoop(t, clock, f, mem)

	frames := make(chan dashboard.Frame, 1)
	l.OnFrame(func(fr dashboard.Frame) { frames <- fr })

	require.NoError(t, l.Start(ctx))
	clock.Advance(2)

	var fr dashboard.Frame
	select {
	case fr = <-frames:
	case <-time.After(2 * time.Second):
		t.Fatal("no frame applied")
	}

	assert.Equal(t, 70, fr.StateOfCharge)
	assert.Equal(t, mode.CategoryUnknown, fr.Mode.Category)
	require.True(t, fr.HasTimestamp)
	assert.Equal(t, status.Lost, fr.Connection)

	s := mem.State()
	assert.Equal(t, status.AlertStrong, s.Alert)
	conn, _ := s.Display(dashboard.FieldLastReadingTime)
	assert.Equal(t, "Connection Lost", conn)

	cancel()
	l.Wait()
}

func TestLoop_RestartDoesNotCancelInFlightFetch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := newFakeClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	release := make(chan struct{})
	var fetchErr atomic.Value

	f := &fakeFetcher{respond: func(int64) (telemetry.Snapshot, error) {
		<-release
		return snapshot(t, `{"pv_power": 42}`), nil
	}}
	mem := render.NewMemory(nil)
	l := newTestLoop(t, clock, ctxRecorder{f, &fetchErr}, mem)

	require.NoError(t, l.Start(ctx))
	clock.Advance(2)
	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, time.Millisecond)

	l.Restart()
	close(release)

	require.Eventually(t, func() bool {
		v, _ := mem.State().Display(dashboard.FieldPVPower)
		return v == "42 W"
	}, time.Second, time.Millisecond)
	assert.Nil(t, fetchErr.Load())

	cancel()
	l.Wait()
}

// ctxRecorder records whether the fetch context was cancelled by the time the fetch returned.
type ctxRecorder struct {
	f   *fakeFetcher
	err *atomic.Value
}

func (b ctxRecorder) Fetch(ctx context.Context) (telemetry.Snapshot, error) {
	s, err := b.f.Fetch(ctx)
	if ctx.Err() != nil {
		b.err.Store(ctx.Err())
	}
	return s, err
}
