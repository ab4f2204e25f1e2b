// Package breaks - In-memory break point store
package breaks

import (
	"context"
	"sync"

	"freight-rating/core/types"
)

type tableKey struct {
	lineRef string
	side    types.Side
}

// MemorySource is an in-memory break point store, safe for concurrent
// use. The write side mirrors the document collaborator's save contract:
// points replace the full set for a (line, side) pair.
type MemorySource struct {
	mu     sync.RWMutex
	points map[tableKey][]types.BreakPoint
	basis  map[tableKey]types.RateBasis
}

// NewMemorySource creates an empty source
func NewMemorySource() *MemorySource {
	return &MemorySource{
		points: make(map[tableKey][]types.BreakPoint),
		basis:  make(map[tableKey]types.RateBasis),
	}
}

// Save replaces the break points for a (line, side) pair
func (s *MemorySource) Save(lineRef string, side types.Side, basis types.RateBasis, points []types.BreakPoint) {
	key := tableKey{lineRef: lineRef, side: side}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points[key] = append([]types.BreakPoint(nil), points...)
	s.basis[key] = basis
}

// Table implements Source. Validation happens on read so that stored
// data edited out from under us still cannot reach the engine.
func (s *MemorySource) Table(ctx context.Context, lineRef string, side types.Side) (*Table, error) {
	key := tableKey{lineRef: lineRef, side: side}
	s.mu.RLock()
	points := append([]types.BreakPoint(nil), s.points[key]...)
	basis := s.basis[key]
	s.mu.RUnlock()

	return Build(lineRef, side, basis, points)
}
