package main

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Status is a snapshot of what the poller last observed.
type Status struct {
	Demand       bool               `json:"demand"`
	Granted      bool               `json:"granted"`
	Orientation  Orientation        `json:"orientation"`
	Sample       AccelerationSample `json:"sample"`
	ReadFailures uint64             `json:"read_failures"`
	Updated      time.Time          `json:"updated"`
}

// notifyQueueSize bounds the events waiting for the notifier goroutine.
// Events beyond it are dropped and counted.
const notifyQueueSize = 32

// Poller drives the arbiter and the classifier from a single goroutine.  The
// grant line follows the demand line: demand asserted is acknowledged by
// driving grant low, and the grant is released once demand goes away.
//
// Notifiers run on a separate goroutine owned by Run, so a slow notifier
// never holds up the grant line.
type Poller struct {
	arbiter    *Arbiter
	sensor     *AccelSensor
	classifier Classifier
	notifiers  []Notifier
	metrics    *Metrics
	logger     *slog.Logger
	interval   time.Duration
	events     chan Event

	// Touched only by the polling goroutine.
	orientation Orientation
	demand      bool
	started     bool

	mu     sync.RWMutex // guards status
	status Status
}

// NewPoller wires a poller.  A nil metrics or logger is replaced with a
// private registry or a discarding logger.
func NewPoller(a *Arbiter, s *AccelSensor, notifiers []Notifier, m *Metrics, logger *slog.Logger, interval time.Duration) *Poller {
	if m == nil {
		m = NewMetrics()
	}
	if logger == nil {
		logger = newNopLogger()
	}
	return &Poller{
		arbiter:     a,
		sensor:      s,
		classifier:  Classifier{Rules: DefaultRules},
		notifiers:   notifiers,
		metrics:     m,
		logger:      logger,
		interval:    interval,
		events:      make(chan Event, notifyQueueSize),
		orientation: Unknown,
		status:      Status{Orientation: Unknown},
	}
}

// Step runs one poll cycle.  Errors from the demand line or the grant line
// are returned; a failed accelerometer read is logged and the stale sample
// is classified.
func (p *Poller) Step() error {
	demand, err := p.arbiter.SampleDemand()
	if err != nil {
		return err
	}
	if demand != p.demand || !p.started {
		if demand {
			err = p.arbiter.AssertGrantLow()
		} else {
			err = p.arbiter.ReleaseGrant()
		}
		if err != nil {
			return err
		}
		if p.started {
			p.enqueue(Event{Kind: EventDemand, Demand: demand})
		}
		p.demand = demand
		p.started = true
	}
	p.metrics.DemandAsserted.Set(boolGauge(demand))
	p.metrics.GrantDrivenLow.Set(boolGauge(p.arbiter.Granted()))

	sample, err := p.sensor.ReadAcceleration()
	failed := err != nil
	if failed {
		p.metrics.SensorReadFailures.Inc()
		p.logger.Warn("accelerometer read failed, using previous sample", "error", err)
	}

	next := p.classifier.Classify(p.orientation, sample)
	if next != p.orientation {
		p.metrics.OrientationChanges.WithLabelValues(next.Code()).Inc()
		p.enqueue(Event{Kind: EventOrientation, Orientation: next, Previous: p.orientation})
		p.orientation = next
	}

	p.mu.Lock()
	p.status.Demand = demand
	p.status.Granted = p.arbiter.Granted()
	p.status.Orientation = next
	p.status.Sample = sample
	if failed {
		p.status.ReadFailures++
	}
	p.status.Updated = time.Now()
	p.mu.Unlock()
	return nil
}

// Run polls every interval until ctx is done.  The grant line is released on
// the way out so a stopped node never holds the peer's line low; queued
// notifications are delivered after that.
func (p *Poller) Run(ctx context.Context) error {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.dispatch(done)
	}()
	defer func() {
		close(done)
		wg.Wait()
	}()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	defer func() {
		if err := p.arbiter.ReleaseGrant(); err != nil {
			p.logger.Error("release grant on shutdown", "error", err)
		}
	}()
	for {
		if err := p.Step(); err != nil {
			p.logger.Error("poll", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Status returns the last snapshot.  It is safe to call from any goroutine.
func (p *Poller) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

// enqueue hands ev to the notifier goroutine without blocking.
func (p *Poller) enqueue(ev Event) {
	select {
	case p.events <- ev:
	default:
		p.metrics.NotificationsDropped.Inc()
		p.logger.Warn("notification queue full, dropping event", "event", ev.String())
	}
}

// dispatch delivers queued events until done is closed, then flushes what
// is left.
func (p *Poller) dispatch(done <-chan struct{}) {
	for {
		select {
		case ev := <-p.events:
			p.deliver(ev)
		case <-done:
			p.deliverPending()
			return
		}
	}
}

// deliverPending delivers every queued event and returns once the queue is
// empty.
func (p *Poller) deliverPending() {
	for {
		select {
		case ev := <-p.events:
			p.deliver(ev)
		default:
			return
		}
	}
}

func (p *Poller) deliver(ev Event) {
	for _, n := range p.notifiers {
		if err := n.Notify(ev, p.logger); err != nil {
			p.logger.Error("notifier failed", "notifier", n.Name(), "error", err)
		}
	}
}
