// Command simlab runs scripted combat sessions and prints per-ability
// balance numbers. By default it steps sessions headlessly as fast as
// possible; with --listen it paces them in real time and serves the combat
// log feed over websocket for live inspection.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"

	"emberveil/combat"
	"emberveil/combat/ability"
	"emberveil/combat/arena"
	"emberveil/combat/geom"
	"emberveil/combat/internal/feed"
	"emberveil/combat/internal/sim"
	"emberveil/combat/kit"
	"emberveil/combat/kit/catalog"
	"emberveil/combat/logging"
)

type options struct {
	Loadout    string  `env:"SIMLAB_LOADOUT" envDefault:"duelist"`
	Catalog    string  `env:"SIMLAB_CATALOG"`
	Seconds    float64 `env:"SIMLAB_SECONDS" envDefault:"60"`
	Iterations int     `env:"SIMLAB_ITERATIONS" envDefault:"5"`
	TickRate   int     `env:"SIMLAB_TICK_RATE" envDefault:"60"`
	Seed       string  `env:"SIMLAB_SEED"`
	Listen     string  `env:"SIMLAB_LISTEN"`
}

func main() {
	var opts options
	if err := env.Parse(&opts); err != nil {
		log.Fatalf("simlab: parse env: %v", err)
	}
	flag.StringVar(&opts.Loadout, "loadout", opts.Loadout, "catalog loadout id to run")
	flag.StringVar(&opts.Catalog, "catalog", opts.Catalog, "catalog path overriding the default search")
	flag.Float64Var(&opts.Seconds, "seconds", opts.Seconds, "simulated seconds per iteration")
	flag.IntVar(&opts.Iterations, "iterations", opts.Iterations, "independent seeded runs")
	flag.IntVar(&opts.TickRate, "tick-rate", opts.TickRate, "simulation steps per second")
	flag.StringVar(&opts.Seed, "seed", opts.Seed, "base RNG seed, random when empty")
	flag.StringVar(&opts.Listen, "listen", opts.Listen, "serve the websocket feed and pace in real time")
	flag.Parse()

	if opts.Seed == "" {
		opts.Seed = uuid.NewString()
	}
	if opts.TickRate <= 0 {
		opts.TickRate = 60
	}
	if opts.Iterations <= 0 {
		opts.Iterations = 1
	}

	paths := catalog.DefaultPaths()
	if opts.Catalog != "" {
		paths = []string{opts.Catalog}
	}
	resolver, err := catalog.Load(paths...)
	if err != nil {
		log.Fatalf("simlab: %v", err)
	}
	if _, ok := resolver.Resolve(opts.Loadout); !ok {
		log.Fatalf("simlab: unknown loadout %q, have %v", opts.Loadout, resolver.IDs())
	}

	stats := newStatsSink()
	sinks := []logging.NamedSink{{Name: "stats", Sink: stats}}
	if opts.Listen != "" {
		hub := feed.NewHub(nil)
		sinks = append(sinks, logging.NamedSink{Name: "feed", Sink: hub})
		go func() {
			log.Printf("simlab: feed on ws://%s", opts.Listen)
			if err := http.ListenAndServe(opts.Listen, hub); err != nil {
				log.Fatalf("simlab: feed: %v", err)
			}
		}()
	}
	runID := uuid.NewString()
	router, err := logging.NewRouter(nil, logging.Config{
		BufferSize:      4096,
		MinimumSeverity: logging.SeverityDebug,
		Fields:          map[string]any{"run": runID},
	}, sinks)
	if err != nil {
		log.Fatalf("simlab: %v", err)
	}

	fmt.Printf("simlab: run=%s loadout=%s seed=%s iterations=%d seconds=%.0f tick-rate=%d\n",
		runID, opts.Loadout, opts.Seed, opts.Iterations, opts.Seconds, opts.TickRate)

	for i := 0; i < opts.Iterations; i++ {
		seed := fmt.Sprintf("%s-%d", opts.Seed, i)
		if err := runIteration(opts, resolver, router, seed); err != nil {
			log.Fatalf("simlab: iteration %d: %v", i, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := router.Close(ctx); err != nil {
		log.Printf("simlab: router close: %v", err)
	}

	stats.report(os.Stdout, opts.Seconds*float64(opts.Iterations))
}

func runIteration(opts options, resolver *catalog.Resolver, router *logging.Router, seed string) error {
	strategy, err := resolver.Build(opts.Loadout)
	if err != nil {
		return err
	}

	actor := &labActor{stamina: 1e9}
	session, err := combat.NewSession(combat.Config{
		Kit:       strategy,
		Actor:     actor,
		ActorID:   "simlab-" + seed,
		Seed:      seed,
		Publisher: router,
	})
	if err != nil {
		return err
	}

	dummies := []*labDummy{
		{id: "dummy-front", pos: geom.Vec{X: 1.8}},
		{id: "dummy-mid", pos: geom.Vec{X: 3.5, Y: 0.5}},
		{id: "dummy-far", pos: geom.Vec{X: 6, Y: -1}},
	}
	for _, d := range dummies {
		session.AddTarget(d)
	}

	script := &rotation{session: session, aim: dummies[0].pos}
	if opts.Listen == "" {
		dt := 1.0 / float64(opts.TickRate)
		steps := int(opts.Seconds * float64(opts.TickRate))
		for i := 0; i < steps; i++ {
			session.Step(dt, script.next(dt))
		}
	} else {
		loop := sim.NewLoop(session, sim.Config{TickRate: opts.TickRate}, sim.Hooks{})
		stop := make(chan struct{})
		go func() {
			ticker := time.NewTicker(time.Second / time.Duration(opts.TickRate))
			defer ticker.Stop()
			dt := 1.0 / float64(opts.TickRate)
			for {
				select {
				case <-stop:
					return
				case <-ticker.C:
					loop.Submit(script.next(dt))
				}
			}
		}()
		go func() {
			time.Sleep(time.Duration(opts.Seconds * float64(time.Second)))
			close(stop)
		}()
		loop.Run(stop)
	}

	snap := session.Telemetry()
	fmt.Printf("  run %s: casts=%d hits=%d crits=%d ultimates=%d rejected=%d\n",
		seed, snap.Casts, snap.Hits, snap.Crits, snap.UltimateCasts, snap.RejectedIntents)
	return nil
}

// rotation is the scripted pilot: hold basic attacks, weave in a charged
// attack every few seconds, and press the first ready slot by priority.
type rotation struct {
	session  *combat.Session
	aim      geom.Vec
	elapsed  float64
	nextHold float64
	holding  float64
}

var slotPriority = []kit.Slot{kit.SlotF, kit.SlotV, kit.SlotX, kit.SlotC, kit.SlotE, kit.SlotQ}

func (r *rotation) next(dt float64) ability.Intent {
	r.elapsed += dt
	intent := ability.Intent{AimPoint: r.aim}

	controller := r.session.Controller()
	if _, targeting := controller.Targeting(); targeting {
		intent.Confirm = true
		return intent
	}
	if controller.Channeling() {
		return intent
	}

	if r.holding > 0 {
		r.holding -= dt
		if r.holding <= 0 {
			intent.ChargedAttackRelease = true
		} else {
			intent.ChargedAttack = true
		}
		return intent
	}
	if r.elapsed >= r.nextHold {
		r.nextHold = r.elapsed + 7
		r.holding = 0.9
		intent.ChargedAttack = true
		return intent
	}

	strategy := controller.Strategy()
	econ := r.session.Economy()
	for _, slot := range slotPriority {
		if controller.Cooldown(slot) > 0 {
			continue
		}
		spec := strategy.Slot(slot)
		if spec.Kind == kit.SlotUltimate && !econ.CanUltimate() {
			continue
		}
		charges := econ.Count(strategy.ChargeName())
		if spec.ConsumeAllCharges && charges == 0 {
			continue
		}
		if spec.ChargeCost > 0 && charges < spec.ChargeCost {
			continue
		}
		intent.Slots[slot] = true
		return intent
	}
	intent.Attack = true
	return intent
}

type labActor struct {
	stamina float64
	healed  float64
}

func (a *labActor) Position() geom.Vec     { return geom.Vec{} }
func (a *labActor) Facing() geom.Vec       { return geom.Vec{X: 1} }
func (a *labActor) WeaponAnchor() geom.Vec { return geom.Vec{X: 0.3} }
func (a *labActor) Heal(amount float64)    { a.healed += amount }

func (a *labActor) TryConsumeStamina(amount float64) bool {
	if a.stamina < amount {
		return false
	}
	a.stamina -= amount
	return true
}

// labDummy is an immortal training target.
type labDummy struct {
	id    string
	pos   geom.Vec
	taken float64
}

func (d *labDummy) ID() arena.TargetID        { return arena.TargetID(d.id) }
func (d *labDummy) Position() geom.Vec        { return d.pos }
func (d *labDummy) Facing() geom.Vec          { return geom.Vec{X: 1} }
func (d *labDummy) Alive() bool               { return true }
func (d *labDummy) Health() float64           { return 1e12 - d.taken }
func (d *labDummy) TakeDamage(amount float64) { d.taken += amount }
func (d *labDummy) HitRadius() float64        { return 0.5 }
func (d *labDummy) Boss() bool                { return false }
