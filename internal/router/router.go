// Package router turns scene change notifications into coalesced recomputes.
//
// OnChange classifies every notification. Changes that touch only derived
// attributes, including the router's own write-backs, are dropped without
// evaluating anything. Changes to input attributes queue the entity; Tick
// then recomputes each queued entity once, from the inputs current at tick
// time, in the order the entities were first queued.
package router

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/lumen/internal/arbiter"
	"github.com/jmylchreest/lumen/internal/light"
	"github.com/jmylchreest/lumen/internal/scene"
)

// Router schedules recomputes for a scene.
type Router struct {
	scene   scene.Scene
	arbiter *arbiter.Arbiter
	logger  hclog.Logger

	seedNew bool

	mu     sync.Mutex
	queued map[string]struct{}
	order  []string
	added  map[string]struct{}

	// tickMu serializes batches so two evaluations of one entity never
	// overlap.
	tickMu sync.Mutex

	notifications atomic.Uint64
	derivedOnly   atomic.Uint64
	ignored       atomic.Uint64
	coalesced     atomic.Uint64
	recomputed    atomic.Uint64
	failed        atomic.Uint64
	seeded        atomic.Uint64
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the logger.
func WithLogger(l hclog.Logger) Option {
	return func(r *Router) { r.logger = l }
}

// WithSeedDefaults makes the router give entities added to the scene
// without any lumen attribute the full set of default inputs before their
// first recompute, so they become managed lights. Entities present before
// Attach are never touched.
func WithSeedDefaults() Option {
	return func(r *Router) { r.seedNew = true }
}

// New returns a router for sc. Call Attach to start receiving notifications.
func New(sc scene.Scene, arb *arbiter.Arbiter, opts ...Option) *Router {
	r := &Router{
		scene:   sc,
		arbiter: arb,
		logger:  hclog.NewNullLogger(),
		queued:  make(map[string]struct{}),
		added:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Attach subscribes the router to its scene.
func (r *Router) Attach() (cancel func()) {
	return r.scene.Subscribe(r.OnChange)
}

// OnChange handles one notification. It never evaluates a light itself and
// returns immediately.
func (r *Router) OnChange(c scene.Change) {
	r.notifications.Add(1)

	switch c.Kind {
	case scene.ChangeRemoved:
		r.dequeue(c.ID)
		return
	case scene.ChangeAdded:
		if r.seedNew {
			r.mu.Lock()
			r.added[c.ID] = struct{}{}
			r.mu.Unlock()
		}
		r.enqueue(c.ID)
		return
	case scene.ChangeResynced:
		r.enqueue(c.ID)
		return
	}

	trigger, derived := false, false
	for _, name := range c.Names {
		switch scene.Classify(name) {
		case scene.Trigger:
			trigger = true
		case scene.Derived:
			derived = true
		}
	}
	switch {
	case trigger:
		r.enqueue(c.ID)
	case derived:
		r.derivedOnly.Add(1)
	default:
		r.ignored.Add(1)
	}
}

func (r *Router) enqueue(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.queued[id]; ok {
		r.coalesced.Add(1)
		return
	}
	r.queued[id] = struct{}{}
	r.order = append(r.order, id)
}

func (r *Router) dequeue(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.added, id)
	r.unqueueLocked(id)
}

// unqueue drops id from the queue without touching its added mark.
func (r *Router) unqueue(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unqueueLocked(id)
}

func (r *Router) unqueueLocked(id string) {
	if _, ok := r.queued[id]; !ok {
		return
	}
	delete(r.queued, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// drain takes the queue, leaving it empty for notifications that arrive
// while the batch is processed.
func (r *Router) drain() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	batch := r.order
	r.order = nil
	r.queued = make(map[string]struct{}, len(batch))
	return batch
}

// requeue puts unprocessed ids back at the front of the queue.
func (r *Router) requeue(ids []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	front := make([]string, 0, len(ids)+len(r.order))
	for _, id := range ids {
		if _, ok := r.queued[id]; ok {
			continue
		}
		r.queued[id] = struct{}{}
		front = append(front, id)
	}
	r.order = append(front, r.order...)
}

// Pending returns the number of queued entities.
func (r *Router) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// Result is the outcome of recomputing one entity.
type Result struct {
	ID   string
	Plan arbiter.Plan

	// Err is set when the computed attributes could not be written.
	Err error
}

// OK reports whether every axis resolved and was written.
func (r Result) OK() bool {
	return r.Err == nil && !r.Plan.Failed()
}

// Tick recomputes every queued entity once. A failure for one entity is
// logged and never stops the others; failed entities are not retried until
// their inputs change again. If ctx is cancelled mid-batch the remaining ids
// stay queued and ctx's error is returned. Concurrent callers run one after
// the other.
func (r *Router) Tick(ctx context.Context) ([]Result, error) {
	r.tickMu.Lock()
	defer r.tickMu.Unlock()

	batch := r.drain()
	if len(batch) == 0 {
		return nil, nil
	}

	results := make([]Result, 0, len(batch))
	for i, id := range batch {
		if err := ctx.Err(); err != nil {
			r.requeue(batch[i:])
			return results, err
		}
		results = append(results, r.recompute(id))
	}
	return results, nil
}

// takeAdded reports whether id was added since its last recompute.
func (r *Router) takeAdded(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.added[id]
	delete(r.added, id)
	return ok
}

// seed writes default inputs onto a new entity that has none.
func (r *Router) seed(id string) {
	attrs, ok := r.scene.Read(id)
	if !ok || scene.HasLumenAttributes(attrs) {
		return
	}
	if err := r.scene.Write(id, light.Default(id).Attributes()); err != nil {
		r.logger.Warn("seeding defaults failed", "entity", id, "reason", err)
		return
	}
	// The write queued id again; this recompute already sees the defaults.
	r.unqueue(id)
	r.seeded.Add(1)
	r.logger.Debug("seeded default inputs", "entity", id)
}

func (r *Router) recompute(id string) Result {
	if r.takeAdded(id) {
		r.seed(id)
	}
	plan, err := r.arbiter.Apply(r.scene, id)
	r.recomputed.Add(1)

	res := Result{ID: id, Plan: plan, Err: err}
	for _, f := range plan.Failures {
		r.logger.Warn("resolve failed", "entity", id, "axis", f.Axis, "resolver", f.Resolver, "reason", f.Err)
	}
	switch {
	case errors.Is(err, scene.ErrEntityNotFound):
		r.logger.Debug("entity not in scene", "entity", id)
	case err != nil:
		r.logger.Warn("write failed", "entity", id, "reason", err)
	}
	if !res.OK() {
		r.failed.Add(1)
	} else {
		r.logger.Trace("recomputed", "entity", id, "color", plan.Color, "brightness", plan.Brightness)
	}
	return res
}

// RecomputeAll queues ids and runs a tick. It is the entry point after a
// scene load; running it twice yields the same outputs.
func (r *Router) RecomputeAll(ctx context.Context, ids []string) ([]Result, error) {
	for _, id := range ids {
		r.enqueue(id)
	}
	return r.Tick(ctx)
}

// Run ticks every interval until ctx is cancelled.
func (r *Router) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := r.Tick(ctx); err != nil && ctx.Err() == nil {
				return err
			}
		}
	}
}

// DefaultTickInterval is roughly one frame at 60 Hz.
const DefaultTickInterval = 16 * time.Millisecond
