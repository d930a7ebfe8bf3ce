package services

import (
	"context"
	"sync"
	"time"

	"github.com/anonto42/quillpress/backend/internal/metrics"
	"github.com/anonto42/quillpress/backend/internal/repositories"
	log "github.com/sirupsen/logrus"
)

// Step is one named secondary write that follows a primary write. Key
// identifies the originating event; a step whose key was already claimed in
// the ledger is skipped. Steps with an empty key always run.
type Step struct {
	Name string
	Key  string
	Run  func(ctx context.Context) error
}

// Runner executes post-commit steps. A failing step is consistency drift:
// it is logged and counted, its ledger claim is released so the step can be
// replayed, and the caller never sees the error.
type Runner struct {
	ledger  repositories.Ledger
	async   bool
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewRunner creates a Runner. When async is false, Go runs steps inline.
func NewRunner(ledger repositories.Ledger, async bool, timeout time.Duration) *Runner {
	if ledger == nil {
		ledger = repositories.NopLedger{}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Runner{ledger: ledger, async: async, timeout: timeout}
}

// Run executes steps in order and returns once all of them were attempted.
// It reports how many steps failed.
func (r *Runner) Run(ctx context.Context, steps ...Step) int {
	failed := 0
	for _, s := range steps {
		if !r.apply(ctx, s) {
			failed++
		}
	}
	return failed
}

// Go executes steps detached from the request.
func (r *Runner) Go(steps ...Step) {
	if !r.async {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		r.Run(ctx, steps...)
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		r.Run(ctx, steps...)
	}()
}

// Wait blocks until every detached step has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) apply(ctx context.Context, s Step) bool {
	if s.Key != "" {
		claimed, err := r.ledger.Claim(ctx, s.Key)
		if err != nil {
			// without a ledger answer the step still runs once
			log.WithFields(log.Fields{"step": s.Name, "key": s.Key}).Warnf("[bookkeeping] ledger claim failed: %v", err)
		} else if !claimed {
			metrics.BookkeepingSteps.WithLabelValues(s.Name, "skipped").Inc()
			log.WithFields(log.Fields{"step": s.Name, "key": s.Key}).Debug("[bookkeeping] step already applied")
			return true
		}
	}

	if err := s.Run(ctx); err != nil {
		metrics.BookkeepingSteps.WithLabelValues(s.Name, "failed").Inc()
		metrics.ConsistencyDrift.WithLabelValues(s.Name).Inc()
		log.WithFields(log.Fields{"step": s.Name, "key": s.Key}).Warnf("[bookkeeping] consistency drift: %v", err)
		if s.Key != "" {
			if rerr := r.ledger.Release(context.Background(), s.Key); rerr != nil {
				log.WithFields(log.Fields{"step": s.Name, "key": s.Key}).Errorf("[bookkeeping] ledger release failed: %v", rerr)
			}
		}
		return false
	}
	metrics.BookkeepingSteps.WithLabelValues(s.Name, "applied").Inc()
	return true
}
