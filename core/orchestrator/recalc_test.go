package orchestrator

import (
	"context"
	"sync"
	"testing"

	"freight-rating/core/breaks"
	"freight-rating/core/types"
)

// versionRecorder collects the versions handed to apply
type versionRecorder struct {
	mu       sync.Mutex
	versions []uint64
	results  []*types.RateLineResult
}

func (v *versionRecorder) apply(result *types.RateLineResult, version uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.versions = append(v.versions, version)
	v.results = append(v.results, result)
}

func (v *versionRecorder) applied() []uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]uint64(nil), v.versions...)
}

// gatedBreaks holds every table lookup until released, so tests can
// keep a computation in flight deterministically
type gatedBreaks struct {
	entered chan struct{}
	release chan struct{}
}

func (g *gatedBreaks) Table(ctx context.Context, lineRef string, side types.Side) (*breaks.Table, error) {
	g.entered <- struct{}{}
	select {
	case <-g.release:
	case <-ctx.Done():
	}
	return nil, nil
}

func TestRecalculatorAppliesResult(t *testing.T) {
	orch, _, _ := testOrchestrator()
	rec := &versionRecorder{}
	r := NewRecalculator(orch, rec.apply)

	r.Submit(context.Background(), manualLine("line-1"), 1)
	r.Wait()

	applied := rec.applied()
	if len(applied) != 1 || applied[0] != 1 {
		t.Fatalf("expected version 1 applied once, got %v", applied)
	}
	if !rec.results[0].EstimatedRevenue.Equal(dec("250")) {
		t.Errorf("unexpected result: %+v", rec.results[0])
	}
}

// TestRecalculatorDropsStaleAfterSettle proves a version at or below
// the newest known one is never applied, even once that version has
// already settled
func TestRecalculatorDropsStaleAfterSettle(t *testing.T) {
	orch, _, _ := testOrchestrator()
	rec := &versionRecorder{}
	r := NewRecalculator(orch, rec.apply)
	ctx := context.Background()

	r.Submit(ctx, manualLine("line-1"), 2)
	r.Wait()
	r.Submit(ctx, manualLine("line-1"), 1)
	r.Submit(ctx, manualLine("line-1"), 2)
	r.Wait()

	applied := rec.applied()
	if len(applied) != 1 || applied[0] != 2 {
		t.Errorf("expected only version 2 applied, got %v", applied)
	}
}

// TestRecalculatorSupersedesInflight proves a newer edit cancels and
// discards an older computation that has not settled yet
func TestRecalculatorSupersedesInflight(t *testing.T) {
	// Buffered: both sides of a line look up a table, and the second
	// lookup per run happens after release with nobody receiving
	gate := &gatedBreaks{
		entered: make(chan struct{}, 8),
		release: make(chan struct{}),
	}
	orch, _, _ := testOrchestrator()
	orch.breaks = gate

	rec := &versionRecorder{}
	r := NewRecalculator(orch, rec.apply)
	ctx := context.Background()

	r.Submit(ctx, manualLine("line-1"), 1)
	<-gate.entered
	r.Submit(ctx, manualLine("line-1"), 2)
	<-gate.entered
	close(gate.release)
	r.Wait()

	applied := rec.applied()
	if len(applied) != 1 || applied[0] != 2 {
		t.Errorf("expected only version 2 applied, got %v", applied)
	}
}

// TestRecalculatorLinesIndependent proves versions are tracked per line
func TestRecalculatorLinesIndependent(t *testing.T) {
	orch, _, _ := testOrchestrator()
	rec := &versionRecorder{}
	r := NewRecalculator(orch, rec.apply)
	ctx := context.Background()

	r.Submit(ctx, manualLine("line-1"), 5)
	r.Wait()
	// A lower version on a different line is not stale
	r.Submit(ctx, manualLine("line-2"), 1)
	r.Wait()

	applied := rec.applied()
	if len(applied) != 2 {
		t.Fatalf("expected both lines applied, got %v", applied)
	}
}

// TestRecalculatorRejectsInvalidQuietly proves a failed recalculation
// leaves the previous applied state alone
func TestRecalculatorRejectsInvalidQuietly(t *testing.T) {
	orch, _, _ := testOrchestrator()
	rec := &versionRecorder{}
	r := NewRecalculator(orch, rec.apply)
	ctx := context.Background()

	r.Submit(ctx, manualLine("line-1"), 1)
	r.Wait()

	bad := manualLine("line-1")
	bad.Revenue.Quantity = dec("-3")
	r.Submit(ctx, bad, 2)
	r.Wait()

	applied := rec.applied()
	if len(applied) != 1 || applied[0] != 1 {
		t.Errorf("expected only the valid version applied, got %v", applied)
	}
}
