// Package scheduler runs the cron-driven background jobs.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/robfig/cron/v3"

	"sld-dashboard/internal/domain"
	"sld-dashboard/internal/observability"
	"sld-dashboard/internal/staking"
)

// Pool rates are global; reads go through the zero address.
var zeroAddress common.Address

// Scheduler manages all cron tasks.
type Scheduler struct {
	cron    *cron.Cron
	staking *staking.Service
	metrics *observability.Metrics
	ctx     context.Context
}

// New creates a Scheduler. metrics may be nil.
func New(ctx context.Context, stakingSvc *staking.Service, metrics *observability.Metrics) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		staking: stakingSvc,
		metrics: metrics,
		ctx:     ctx,
	}
}

// RegisterAll registers the APR snapshot job.
func (s *Scheduler) RegisterAll(aprCron string) error {
	if _, err := s.cron.AddFunc(aprCron, s.aprSnapshotTask); err != nil {
		return fmt.Errorf("register apr snapshot task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("scheduler stopped")
}

// RunAprSnapshotNow executes the snapshot task immediately, used at
// startup so the history chart is never empty.
func (s *Scheduler) RunAprSnapshotNow() {
	s.aprSnapshotTask()
}

func (s *Scheduler) aprSnapshotTask() {
	log.Println("running apr snapshot")
	if err := s.staking.SnapshotAllPools(s.ctx); err != nil {
		log.Printf("apr snapshot: %v", err)
		return
	}
	if s.metrics == nil {
		return
	}
	if tvl, err := s.staking.TVL(s.ctx); err == nil {
		s.metrics.StakingTvlTokens.Set(tvl)
	}
	for _, cfg := range domain.Pools() {
		pos, err := s.staking.Position(s.ctx, zeroAddress, cfg.ID)
		if err != nil {
			continue
		}
		s.metrics.PoolAprPercent.WithLabelValues(strconv.Itoa(int(cfg.ID))).Set(pos.Returns.AprPercent)
	}
}
