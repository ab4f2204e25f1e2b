// Package orchestrator - Debounced per-line recalculation
package orchestrator

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"freight-rating/core/types"
	"freight-rating/internal/logging"
)

// ApplyFunc receives a settled result together with the input version
// it was computed from
type ApplyFunc func(result *types.RateLineResult, version uint64)

type inflight struct {
	version uint64
	// cancel is nil once the computation has settled; the entry stays
	// behind so stale submissions keep being dropped after settle
	cancel context.CancelFunc
}

// Recalculator coalesces recalculation requests per line. Interactive
// edit surfaces submit every field change with a monotonically
// increasing input-version token; only the result of the newest version
// is ever applied, regardless of response arrival order. A stale
// in-flight computation is cancelled when a newer edit arrives.
// Lines are keyed independently, so recalculating one line never blocks
// another.
type Recalculator struct {
	orch   *Orchestrator
	apply  ApplyFunc
	logger *zap.Logger

	mu       sync.Mutex
	inflight map[string]*inflight
	wg       sync.WaitGroup
}

// NewRecalculator creates a recalculator that hands settled results to
// apply
func NewRecalculator(orch *Orchestrator, apply ApplyFunc) *Recalculator {
	return &Recalculator{
		orch:     orch,
		apply:    apply,
		logger:   logging.Named("recalc"),
		inflight: make(map[string]*inflight),
	}
}

// Submit schedules a recalculation of one line at the given input
// version. Submissions at or below the line's newest known version are
// dropped. An in-flight computation for an older version is cancelled.
func (r *Recalculator) Submit(ctx context.Context, in types.RateLineInput, version uint64) {
	r.mu.Lock()
	if cur, ok := r.inflight[in.LineID]; ok {
		if version <= cur.version {
			r.mu.Unlock()
			return
		}
		if cur.cancel != nil {
			cur.cancel()
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.inflight[in.LineID] = &inflight{version: version, cancel: cancel}
	r.wg.Add(1)
	r.mu.Unlock()

	go r.run(runCtx, in, version)
}

func (r *Recalculator) run(ctx context.Context, in types.RateLineInput, version uint64) {
	defer r.wg.Done()

	result, err := r.orch.ComputeLine(ctx, in)

	r.mu.Lock()
	cur, ok := r.inflight[in.LineID]
	if !ok || cur.version != version {
		// A newer edit superseded this computation; discard.
		r.mu.Unlock()
		return
	}
	cur.cancel = nil
	r.mu.Unlock()

	if ctx.Err() != nil {
		return
	}
	if err != nil {
		// The previous valid result stays in place; the error is
		// surfaced through logging here and to the caller by
		// ComputeLine when invoked directly.
		r.logger.Warn("recalculation rejected",
			zap.String("line_id", in.LineID),
			zap.Uint64("version", version),
			zap.Error(err))
		return
	}

	r.apply(result, version)
}

// Wait blocks until all in-flight recalculations settle
func (r *Recalculator) Wait() {
	r.wg.Wait()
}
