// Package poller runs the background refresh loops that keep the
// dashboard's carried state current. Each loop runs in its own
// goroutine on its own interval; a failing loop logs and keeps its
// last good value without affecting the others.
package poller

import (
	"context"
	"log"
	"sync"
	"time"

	"sld-dashboard/internal/domain"
	"sld-dashboard/internal/gas"
	"sld-dashboard/internal/observability"
	"sld-dashboard/internal/price"
	"sld-dashboard/internal/storage"
	"sld-dashboard/internal/whale"
)

// GasPoller refreshes a gas tracker from a multi-read sampler.
type GasPoller struct {
	sampler  *gas.Sampler
	tracker  *gas.Tracker
	metrics  *observability.Metrics
	interval time.Duration
}

// NewGasPoller creates a gas poller. metrics may be nil.
func NewGasPoller(sampler *gas.Sampler, tracker *gas.Tracker, metrics *observability.Metrics, interval time.Duration) *GasPoller {
	return &GasPoller{sampler: sampler, tracker: tracker, metrics: metrics, interval: interval}
}

// Run polls until the context is cancelled. The first sample is taken
// immediately.
func (p *GasPoller) Run(ctx context.Context) {
	p.poll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *GasPoller) poll(ctx context.Context) {
	start := time.Now()
	gwei, err := p.sampler.Sample(ctx)
	p.observe("gas", start, err)
	if err != nil {
		// Tracker keeps the previous value; stale beats empty.
		log.Printf("gas poller: sample failed: %v", err)
		return
	}
	p.tracker.Update(gwei)
	if p.metrics != nil {
		p.metrics.GasPriceGwei.Set(gwei)
	}
}

func (p *GasPoller) observe(loop string, start time.Time, err error) {
	if p.metrics == nil {
		return
	}
	p.metrics.PollRunsTotal.WithLabelValues(loop).Inc()
	p.metrics.PollDuration.WithLabelValues(loop).Observe(time.Since(start).Seconds())
	if err != nil {
		p.metrics.PollErrorsTotal.WithLabelValues(loop).Inc()
	}
}

// PricePoller fetches pair quotes, keeps the latest in memory, and
// records each observation in the price store.
type PricePoller struct {
	client   *price.Client
	store    storage.PricePointStore
	pairAddr string
	metrics  *observability.Metrics
	interval time.Duration

	mu     sync.RWMutex
	latest *domain.PricePoint
}

// NewPricePoller creates a price poller. store and metrics may be nil.
func NewPricePoller(client *price.Client, store storage.PricePointStore, pairAddr string, metrics *observability.Metrics, interval time.Duration) *PricePoller {
	return &PricePoller{client: client, store: store, pairAddr: pairAddr, metrics: metrics, interval: interval}
}

// Latest returns the most recent quote, or nil before the first
// successful fetch.
func (p *PricePoller) Latest() *domain.PricePoint {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.latest == nil {
		return nil
	}
	point := *p.latest
	return &point
}

// Run polls until the context is cancelled. The first fetch happens
// immediately.
func (p *PricePoller) Run(ctx context.Context) {
	p.poll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *PricePoller) poll(ctx context.Context) {
	start := time.Now()
	point, err := p.client.Fetch(ctx, p.pairAddr)
	p.observe("price", start, err)
	if err != nil {
		log.Printf("price poller: fetch failed: %v", err)
		return
	}

	p.mu.Lock()
	p.latest = point
	p.mu.Unlock()

	if p.metrics != nil {
		p.metrics.TokenPriceUsd.Set(point.PriceUsd)
	}
	if p.store != nil {
		if err := p.store.InsertBulk(ctx, []*domain.PricePoint{point}); err != nil {
			log.Printf("price poller: store failed: %v", err)
		}
	}
}

func (p *PricePoller) observe(loop string, start time.Time, err error) {
	if p.metrics == nil {
		return
	}
	p.metrics.PollRunsTotal.WithLabelValues(loop).Inc()
	p.metrics.PollDuration.WithLabelValues(loop).Observe(time.Since(start).Seconds())
	if err != nil {
		p.metrics.PollErrorsTotal.WithLabelValues(loop).Inc()
	}
}

// WhalePoller adapts the whale monitor to the poll-loop shape and
// surfaces alert counts as metrics.
type WhalePoller struct {
	monitor  *whale.Monitor
	metrics  *observability.Metrics
	interval time.Duration
}

// NewWhalePoller creates a whale poller. metrics may be nil.
func NewWhalePoller(monitor *whale.Monitor, metrics *observability.Metrics, interval time.Duration) *WhalePoller {
	return &WhalePoller{monitor: monitor, metrics: metrics, interval: interval}
}

// Run polls until the context is cancelled.
func (p *WhalePoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			alerts, err := p.monitor.Poll(ctx)
			if p.metrics != nil {
				p.metrics.PollRunsTotal.WithLabelValues("whale").Inc()
				p.metrics.PollDuration.WithLabelValues("whale").Observe(time.Since(start).Seconds())
				if err != nil {
					p.metrics.PollErrorsTotal.WithLabelValues("whale").Inc()
				}
				p.metrics.WhaleAlertsTotal.Add(float64(len(alerts)))
			}
			if err != nil {
				log.Printf("whale poller: %v", err)
			}
		}
	}
}

// Group starts each poller in its own goroutine and waits for all of
// them to stop after the context is cancelled.
type Group struct {
	wg sync.WaitGroup
}

// Go runs fn in a tracked goroutine.
func (g *Group) Go(fn func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		fn()
	}()
}

// Wait blocks until every tracked goroutine has returned.
func (g *Group) Wait() {
	g.wg.Wait()
}
