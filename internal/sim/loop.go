// Package sim drives a combat session on a fixed timestep. Hosts that own
// their own frame loop call Session.Step directly; sim.Loop is for harnesses
// and headless runs that want wall-clock pacing with catch-up clamping.
package sim

import (
	"sync"
	"time"

	"emberveil/combat"
	"emberveil/combat/ability"
)

// Config tunes the tick loop.
type Config struct {
	// TickRate in steps per second. Default 60.
	TickRate int
	// CatchupMaxTicks caps how many budgets of real time a single step may
	// consume after a stall. Default 4.
	CatchupMaxTicks int
}

// TickContext describes one step about to run.
type TickContext struct {
	Tick  uint64
	Now   time.Time
	Delta float64
}

// StepResult describes one completed step.
type StepResult struct {
	Tick         uint64
	Now          time.Time
	Delta        float64
	Duration     time.Duration
	Budget       time.Duration
	ClampedDelta bool
	Intent       ability.Intent
}

// Hooks let the host observe the loop without owning it.
type Hooks struct {
	Prepare   func(TickContext)
	AfterStep func(StepResult)
}

// Clock abstracts time for tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Loop paces a session and merges input submitted between ticks.
type Loop struct {
	session *combat.Session
	config  Config
	hooks   Hooks
	clock   Clock

	mu      sync.Mutex
	pending ability.Intent
}

// NewLoop wraps a session. Returns nil for a nil session.
func NewLoop(session *combat.Session, cfg Config, hooks Hooks) *Loop {
	if session == nil {
		return nil
	}
	return &Loop{
		session: session,
		config:  cfg,
		hooks:   hooks,
		clock:   systemClock{},
	}
}

// SetClock overrides the wall clock. Call before Run.
func (l *Loop) SetClock(clock Clock) {
	if l == nil || clock == nil {
		return
	}
	l.clock = clock
}

// Submit merges a frame of input into the next step. Button presses
// accumulate so a press between ticks is never lost; the aim point is
// latest-wins.
func (l *Loop) Submit(intent ability.Intent) {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.pending.Attack = l.pending.Attack || intent.Attack
	l.pending.ChargedAttack = l.pending.ChargedAttack || intent.ChargedAttack
	l.pending.ChargedAttackRelease = l.pending.ChargedAttackRelease || intent.ChargedAttackRelease
	l.pending.Confirm = l.pending.Confirm || intent.Confirm
	for i := range intent.Slots {
		l.pending.Slots[i] = l.pending.Slots[i] || intent.Slots[i]
	}
	l.pending.AimPoint = intent.AimPoint
	l.mu.Unlock()
}

// Pending returns the merged intent without consuming it.
func (l *Loop) Pending() ability.Intent {
	if l == nil {
		return ability.Intent{}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending
}

func (l *Loop) drainIntent() ability.Intent {
	l.mu.Lock()
	intent := l.pending
	l.pending = ability.Intent{AimPoint: intent.AimPoint}
	l.mu.Unlock()
	return intent
}

// Advance executes a single step against the staged intent.
func (l *Loop) Advance(ctx TickContext) StepResult {
	if l == nil {
		return StepResult{}
	}
	intent := l.drainIntent()
	if l.hooks.Prepare != nil {
		l.hooks.Prepare(ctx)
	}
	l.session.Step(ctx.Delta, intent)
	return StepResult{
		Tick:   l.session.Tick(),
		Now:    ctx.Now,
		Delta:  ctx.Delta,
		Intent: intent,
	}
}

// Run drives the loop until the stop channel closes. Steps that arrive late
// get a larger dt, clamped to CatchupMaxTicks budgets so a long stall never
// turns into a damage burst.
func (l *Loop) Run(stop <-chan struct{}) {
	if l == nil {
		return
	}
	tickRate := l.config.TickRate
	if tickRate <= 0 {
		tickRate = 60
	}
	catchup := l.config.CatchupMaxTicks
	if catchup <= 1 {
		catchup = 4
	}

	budget := time.Second / time.Duration(tickRate)
	budgetSeconds := 1.0 / float64(tickRate)
	maxDt := budgetSeconds * float64(catchup)

	ticker := time.NewTicker(budget)
	defer ticker.Stop()

	last := l.clock.Now()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			now := l.clock.Now()
			dt := now.Sub(last).Seconds()
			clamped := false
			if dt <= 0 {
				dt = budgetSeconds
			} else if dt > maxDt {
				dt = maxDt
				clamped = true
			}
			last = now

			start := l.clock.Now()
			result := l.Advance(TickContext{Tick: l.session.Tick() + 1, Now: now, Delta: dt})
			result.Duration = l.clock.Now().Sub(start)
			result.Budget = budget
			result.ClampedDelta = clamped

			if l.hooks.AfterStep != nil {
				l.hooks.AfterStep(result)
			}
		}
	}
}
