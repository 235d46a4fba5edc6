// Package live drives repeated re-planning over a cyclic contact plan
// with a simulated clock: periodize the plan around the current time,
// rebuild the neighbor index, search, emit a snapshot, then optionally
// consume capacity and fold the observed first-hop wait into the EWMA
// penalty before the next cycle.
package live

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/signalsfoundry/contact-graph-router/core"
	"github.com/signalsfoundry/contact-graph-router/internal/leo"
	"github.com/signalsfoundry/contact-graph-router/internal/logging"
	"github.com/signalsfoundry/contact-graph-router/internal/observability"
	"github.com/signalsfoundry/contact-graph-router/model"
	"github.com/signalsfoundry/contact-graph-router/timectrl"
)

// ErrEmptyPlan is returned when the loop is constructed without contacts.
var ErrEmptyPlan = errors.New("live: empty contact plan")

// Config carries the collaborator-visible knobs of the loop. Zero values
// pick sane defaults where one exists.
type Config struct {
	Src         int
	Dst         int
	BundleBytes float64
	ExpiryRel   float64

	// Tick is the simulated-clock step per cycle, in seconds.
	Tick float64
	// Period enables periodization of the base plan; 0 with AutoPeriod
	// unset disables it.
	Period float64
	// AutoPeriod infers the period from the base plan's span when no
	// explicit period is given.
	AutoPeriod bool

	// KAlternatives asks for that many diversified routes per cycle in
	// addition to the best route; 0 disables alternatives.
	KAlternatives int
	// Cycles bounds the run; 0 means run until the context is
	// cancelled.
	Cycles int

	// Consume applies the best route's capacity consumption to the base
	// plan, so exhaustion persists across cycles.
	Consume bool
	// LearnEWMA smooths the observed first-hop wait into a per-contact
	// penalty applied to setup time on each cycle's working copy.
	LearnEWMA bool
	Alpha     float64
	Lambda    float64

	// CycleInterval is the wall-clock pause between cycles.
	CycleInterval time.Duration
}

// Snapshot is the per-cycle report emitted to the snapshot callback and
// the structured log.
type Snapshot struct {
	Cycle          int
	SimTime        float64
	PlanContacts   int
	ActiveContacts int
	// Phase is the orbital phase in [0,1) when a period is configured.
	Phase        float64
	Best         model.Route
	FirstHopWait float64
	// LinkTypes classifies each hop of the best route (isl, uplink,
	// downlink).
	LinkTypes    []string
	Alternatives model.RouteSet
}

// Option customises a Loop.
type Option func(*Loop)

// WithLogger attaches a structured logger.
func WithLogger(log logging.Logger) Option {
	return func(l *Loop) {
		if log != nil {
			l.log = log
		}
	}
}

// WithCollector attaches Prometheus metrics.
func WithCollector(c *observability.RoutingCollector) Option {
	return func(l *Loop) { l.collector = c }
}

// WithSnapshotFunc registers a callback invoked after every cycle.
func WithSnapshotFunc(fn func(Snapshot)) Option {
	return func(l *Loop) { l.onSnapshot = fn }
}

// Loop owns the base plan for the duration of the run. Per-cycle working
// plans, indices, and routes are scoped to one cycle and dropped before
// the next.
type Loop struct {
	cfg  Config
	base []model.Contact

	clock      *timectrl.TimeController
	penalty    *core.WaitPenalty
	log        logging.Logger
	collector  *observability.RoutingCollector
	onSnapshot func(Snapshot)
}

// New validates the configuration and builds a loop over a private copy
// of the given base plan.
func New(base []model.Contact, cfg Config, opts ...Option) (*Loop, error) {
	if len(base) == 0 {
		return nil, ErrEmptyPlan
	}
	if cfg.BundleBytes <= 0 {
		return nil, errors.New("live: bundle size must be positive")
	}
	if cfg.Tick <= 0 {
		cfg.Tick = 10
	}
	if cfg.AutoPeriod && cfg.Period <= 0 {
		cfg.Period = core.AutoPeriod(base)
	}

	l := &Loop{
		cfg:   cfg,
		base:  model.ClonePlan(base),
		clock: timectrl.NewTimeController(0, cfg.Tick),
		log:   logging.Noop(),
	}
	if cfg.LearnEWMA {
		l.penalty = core.NewWaitPenalty(len(base), cfg.Alpha, cfg.Lambda)
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Clock exposes the simulation clock, mainly for tests.
func (l *Loop) Clock() timectrl.SimClock { return l.clock }

// Run executes re-planning cycles until the configured cycle count is
// reached or the context is cancelled. Cancellation is honored between
// cycles; a planning call in progress runs to completion.
func (l *Loop) Run(ctx context.Context) error {
	for cycle := 1; l.cfg.Cycles == 0 || cycle <= l.cfg.Cycles; cycle++ {
		select {
		case <-ctx.Done():
			l.log.Info(ctx, "live loop stopping", logging.Int("cycles", cycle-1))
			return nil
		default:
		}

		l.runCycle(ctx, cycle)

		if l.cfg.CycleInterval > 0 {
			timer := time.NewTimer(l.cfg.CycleInterval)
			select {
			case <-ctx.Done():
				timer.Stop()
				l.log.Info(ctx, "live loop stopping", logging.Int("cycles", cycle))
				return nil
			case <-timer.C:
			}
		}

		l.clock.Advance()
	}
	return nil
}

func (l *Loop) runCycle(ctx context.Context, cycle int) {
	now := l.clock.Now()

	ctx, span := observability.StartCycleSpan(ctx, cycle, now)
	defer span.End()

	working := l.base
	if l.penalty != nil {
		working = l.penalty.Apply(l.base)
	}
	plan := core.Periodize(working, now, l.cfg.Period)
	ni := core.BuildNeighborIndex(plan)

	active := 0
	for i := range plan {
		if plan[i].Active(now) {
			active++
		}
	}

	req := &model.RouteRequest{
		SrcNode:     l.cfg.Src,
		DstNode:     l.cfg.Dst,
		T0:          now,
		BundleBytes: l.cfg.BundleBytes,
		ExpiryRel:   l.cfg.ExpiryRel,
	}

	start := time.Now()
	best := core.BestRoute(plan, req, ni)
	l.collector.ObservePlanning("best", best.Found, time.Since(start).Seconds())
	observability.RecordBestRoute(span, &best, now)

	wait := 0.0
	if best.Found && best.Hops > 0 {
		if c := findByID(plan, best.ContactIDs[0]); c != nil {
			wait = core.TxStart(c, now) - now
			if wait < 0 {
				wait = 0
			}
		}
	}

	var alternatives model.RouteSet
	if l.cfg.KAlternatives > 0 {
		start = time.Now()
		alternatives = core.KByDiversification(plan, req, ni, l.cfg.KAlternatives)
		l.collector.ObservePlanning("yen", alternatives.Found(), time.Since(start).Seconds())
		observability.RecordAlternatives(span, &alternatives)
	}

	phase := 0.0
	if l.cfg.Period > 0 {
		phase = l.clock.Phase(l.cfg.Period)
	}

	var linkTypes []string
	if best.Found {
		linkTypes = make([]string, 0, best.Hops)
		for _, id := range best.ContactIDs {
			if c := findByID(plan, id); c != nil {
				linkTypes = append(linkTypes, leo.Classify(c.From, c.To).String())
			}
		}
	}

	snap := Snapshot{
		Cycle:          cycle,
		SimTime:        now,
		PlanContacts:   len(plan),
		ActiveContacts: active,
		Phase:          phase,
		Best:           best,
		FirstHopWait:   wait,
		LinkTypes:      linkTypes,
		Alternatives:   alternatives,
	}
	l.emit(ctx, &snap)
	l.collector.ObserveCycle(len(plan), active, best.Hops, best.Latency(now))

	// Mutations for the next cycle: consumption hits the base plan so
	// exhaustion persists; the wait penalty only ever shapes working
	// copies.
	if best.Found {
		if l.cfg.Consume {
			core.ConsumeCapacity(l.base, &best, l.cfg.BundleBytes)
		}
		if l.penalty != nil && best.Hops > 0 {
			if idx := indexByID(l.base, best.ContactIDs[0]); idx >= 0 {
				l.penalty.Observe(idx, wait)
			}
		}
	}
}

func (l *Loop) emit(ctx context.Context, snap *Snapshot) {
	if snap.Best.Found {
		l.log.Info(ctx, "cycle planned",
			logging.Int("cycle", snap.Cycle),
			logging.Float64("sim_time", snap.SimTime),
			logging.Int("active_contacts", snap.ActiveContacts),
			logging.Float64("eta", snap.Best.ETA),
			logging.Float64("latency", snap.Best.Latency(snap.SimTime)),
			logging.Float64("first_hop_wait", snap.FirstHopWait),
			logging.Int("hops", snap.Best.Hops),
			logging.Int("alternatives", len(snap.Alternatives.Routes)),
			logging.String("links", strings.Join(snap.LinkTypes, ",")),
			logging.Float64("phase", snap.Phase),
		)
	} else {
		l.log.Warn(ctx, "no route available",
			logging.Int("cycle", snap.Cycle),
			logging.Float64("sim_time", snap.SimTime),
			logging.Int("active_contacts", snap.ActiveContacts),
		)
	}
	if l.onSnapshot != nil {
		l.onSnapshot(*snap)
	}
}

func findByID(plan []model.Contact, id int) *model.Contact {
	for i := range plan {
		if plan[i].ID == id {
			return &plan[i]
		}
	}
	return nil
}

func indexByID(plan []model.Contact, id int) int {
	for i := range plan {
		if plan[i].ID == id {
			return i
		}
	}
	return -1
}
