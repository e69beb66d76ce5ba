// Package lifecycle coordinates process-wide shutdown and periodic
// housekeeping. It owns a broadcast of one shutdown event (a closed
// channel rather than a value-carrying channel, since every subscriber
// only ever needs to know "now") and a scheduler for the once-per-second
// subscription cleanup sweep and any other recurring background job.
//
// The scheduler is grounded on the package-level gocron.Scheduler the
// teacher's task manager drives via Start/Shutdown; adapted here into a
// struct field so a Coordinator carries no process-global state, per the
// rule that the only acceptable global is an atomically-incremented
// counter owned by its subsystem.
package lifecycle

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"golang.org/x/sync/errgroup"

	"github.com/eclipse-kuksa/kuksa-databroker-go/pkg/log"
)

// Coordinator owns the shutdown broadcast and the housekeeping
// scheduler. The zero value is not usable; construct one with New.
type Coordinator struct {
	sched       gocron.Scheduler
	shutdownCh  chan struct{}
	closeOnce   sync.Once
	group       *errgroup.Group
	groupCtx    context.Context
	cancelGroup context.CancelFunc
}

// New creates a Coordinator with its scheduler ready to accept jobs but
// not yet started.
func New() (*Coordinator, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	shutdownCh := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	group, groupCtx := errgroup.WithContext(ctx)
	return &Coordinator{
		sched:       sched,
		shutdownCh:  shutdownCh,
		group:       group,
		groupCtx:    groupCtx,
		cancelGroup: cancel,
	}, nil
}

// Done returns the channel closed exactly once, at shutdown. Background
// loops (housekeeping, provider streams, subscription dispatch) select
// on it to exit promptly.
func (c *Coordinator) Done() <-chan struct{} {
	return c.shutdownCh
}

// EverySecond schedules fn to run once per second until shutdown, the
// cadence the subscription cleanup sweep runs at.
func (c *Coordinator) EverySecond(name string, fn func()) error {
	return c.Every(name, time.Second, fn)
}

// Every schedules fn to run on the given interval until shutdown.
func (c *Coordinator) Every(name string, interval time.Duration, fn func()) error {
	_, err := c.sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(fn),
		gocron.WithName(name),
	)
	return err
}

// Start starts the housekeeping scheduler. Call once, after every Every
// call has registered its job.
func (c *Coordinator) Start() {
	c.sched.Start()
}

// Go runs fn in the background, joined into the coordinator's
// errgroup: if fn returns an error, Wait returns it and the group's
// context is cancelled, which background loops can select on via
// c.groupCtx in addition to Done.
func (c *Coordinator) Go(fn func(ctx context.Context) error) {
	c.group.Go(func() error {
		return fn(c.groupCtx)
	})
}

// Wait blocks until every goroutine started with Go has returned,
// returning the first non-nil error if any.
func (c *Coordinator) Wait() error {
	return c.group.Wait()
}

// Shutdown broadcasts the shutdown event exactly once and stops the
// housekeeping scheduler.
func (c *Coordinator) Shutdown() {
	c.closeOnce.Do(func() {
		close(c.shutdownCh)
		c.cancelGroup()
		if err := c.sched.Shutdown(); err != nil {
			log.Warnf("lifecycle: scheduler shutdown: %v", err)
		}
	})
}
