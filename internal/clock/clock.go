// Package clock periodically samples the current time and re-evaluates
// which festival day is live. The schedule engine itself never reads the
// clock; this package is the only place that does.
package clock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	appLog "festcal/internal/log"
	"festcal/internal/metrics"
	"festcal/internal/model"
	"festcal/internal/schedule"
)

type Option func(*Clock)

// WithNow replaces time.Now, for tests.
func WithNow(now func() time.Time) Option {
	return func(c *Clock) { c.now = now }
}

// WithMetrics reports ticks and the live flag to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Clock) { c.metrics = m }
}

// OnChange registers a callback run whenever the phase or the live day
// changes between two ticks.
func OnChange(fn func(schedule.Status)) Option {
	return func(c *Clock) { c.onChange = fn }
}

// Clock re-evaluates the festival status on a cron schedule and keeps the
// latest result.
type Clock struct {
	days     []model.FestivalDay
	loc      *time.Location
	now      func() time.Time
	metrics  *metrics.Metrics
	onChange func(schedule.Status)
	cron     *cron.Cron

	mu     sync.RWMutex
	status schedule.Status
	ticked bool
}

// New creates a clock that ticks on spec (standard cron syntax or a
// descriptor such as "@every 1s"). days must not be modified afterwards.
func New(spec string, days []model.FestivalDay, loc *time.Location, opts ...Option) (*Clock, error) {
	if loc == nil {
		loc = time.Local
	}
	c := &Clock{
		days: days,
		loc:  loc,
		now:  time.Now,
		cron: cron.New(cron.WithLocation(loc)),
	}
	for _, opt := range opts {
		opt(c)
	}

	if _, err := c.cron.AddFunc(spec, func() { c.Tick() }); err != nil {
		return nil, fmt.Errorf("clock: tick spec %q: %w", spec, err)
	}
	return c, nil
}

// Start evaluates the status once, then keeps ticking until ctx is done.
func (c *Clock) Start(ctx context.Context) {
	c.Tick()
	c.cron.Start()
	appLog.Info("clock started", "entries", len(c.cron.Entries()), "timezone", c.loc.String())

	go func() {
		<-ctx.Done()
		<-c.cron.Stop().Done()
		appLog.Info("clock stopped")
	}()
}

// Tick samples now and recomputes the status.
func (c *Clock) Tick() schedule.Status {
	now := c.now().In(c.loc)

	st := schedule.StatusAt(now, c.days)

	c.mu.Lock()
	prev, hadPrev := c.status, c.ticked
	c.status = st
	c.ticked = true
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.IncTicks()
		c.metrics.SetLive(st.Active)
	}

	if !hadPrev || changed(prev, st) {
		appLog.Info("festival status",
			"phase", string(st.Phase),
			"today", st.Today.Format(time.DateOnly),
			"day", activeKey(st),
			"days_until", st.DaysUntil,
		)
		if c.onChange != nil {
			c.onChange(st)
		}
	}
	return st
}

// Status returns the status of the most recent tick, ticking first if the
// clock has not run yet.
func (c *Clock) Status() schedule.Status {
	c.mu.RLock()
	st, ok := c.status, c.ticked
	c.mu.RUnlock()
	if ok {
		return st
	}
	return c.Tick()
}

// Location is the zone "now" is evaluated in.
func (c *Clock) Location() *time.Location {
	return c.loc
}

func changed(a, b schedule.Status) bool {
	return a.Phase != b.Phase || activeKey(a) != activeKey(b)
}

func activeKey(st schedule.Status) string {
	if !st.Active {
		return ""
	}
	return st.Day.Key()
}
