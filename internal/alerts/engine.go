// internal/alerts/engine.go
package alerts

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/inverter-monitor/internal/dashboard"
	"github.com/tamzrod/inverter-monitor/internal/telemetry"
)

// DefaultCooldown is the minimum gap between two sends of one rule.
const DefaultCooldown = 3 * time.Second

// Engine evaluates alert rules against each snapshot.
// It remembers per-rule send times and counters, and whether the grid is believed up.
type Engine struct {
	mu       sync.Mutex
	now      func() time.Time
	cooldown time.Duration
	out      chan<- Alert
	log      zerolog.Logger

	lastSent map[string]time.Time
	sent     map[string]int
	gridUp   bool
}

// Config is the engine's tuning.
type Config struct {
	Cooldown time.Duration
	Now      func() time.Time
}

// NewEngine builds an engine delivering fired alerts to out.
// Delivery never blocks: when out is full the alert is dropped and logged.
func NewEngine(cfg Config, out chan<- Alert, log zerolog.Logger) *Engine {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}
	return &Engine{
		now:      cfg.Now,
		cooldown: cfg.Cooldown,
		out:      out,
		log:      log,
		lastSent: make(map[string]time.Time),
		sent:     make(map[string]int),
		gridUp:   true,
	}
}

// Evaluate runs every rule once and returns the alerts that fired.
func (e *Engine) Evaluate(s telemetry.Snapshot) []Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	r := readingsOf(s)
	now := e.now()

	var fired []Alert

	for _, rl := range rules {
		if !rl.needs(r) {
			continue
		}

		if rl.fires(r, e.gridUp) && (rl.limit == 0 || e.sent[rl.code] < rl.limit) {
			last, seen := e.lastSent[rl.code]
			if !seen || now.Sub(last) > e.cooldown {
				fired = append(fired, Alert{
					Code:    rl.code,
					Title:   rl.title,
					Message: rl.message(r),
					Time:    now,
				})
				e.lastSent[rl.code] = now
				e.sent[rl.code]++
				if rl.grid != nil {
					e.gridUp = *rl.grid
				}
			}
		}

		if rl.resets != nil && rl.resets(r) {
			e.sent[rl.code] = 0
		}
	}

	return fired
}

// GridUp reports the engine's belief about grid power.
func (e *Engine) GridUp() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gridUp
}

// Observe is a poller observer.
func (e *Engine) Observe(f dashboard.Frame) {
	for _, a := range e.Evaluate(f.Snapshot) {
		e.log.Info().Str("code", a.Code).Str("title", a.Title).Msg("alert fired")

		select {
		case e.out <- a:
		default:
			e.log.Warn().Str("code", a.Code).Msg("alert queue full, dropping alert")
		}
	}
}
