// Copyright (c) 2026 Toile. All rights reserved.
// Author: contact@toile.app

package graph

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/toileapp/toile/internal/platform/apperr"
)

// idAllocAttempts bounds the random probe loop. With a million-value space
// the graph would need to be pathologically full for 50 draws to all collide.
const idAllocAttempts = 50

// idProber is the slice of [Store] the allocator needs.
type idProber interface {
	NodeIDInUse(ctx context.Context, id string) (bool, error)
	EdgeIDInUse(ctx context.Context, id string) (bool, error)
}

// IDAllocator draws unique 6-digit identifiers for nodes and edges.
//
// Identifiers are random (not sequential) so that a node id leaks nothing
// about insertion order or graph size.
type IDAllocator struct {
	store idProber

	// intn is swappable in tests to force collisions.
	intn func(n int) int
}

func NewIDAllocator(store idProber) *IDAllocator {
	return &IDAllocator{store: store, intn: rand.IntN}
}

// NodeID returns a 6-digit identifier not used by any Person node.
func (a *IDAllocator) NodeID(ctx context.Context) (string, error) {
	return a.allocate(ctx, "node", a.store.NodeIDInUse)
}

// EdgeID returns a 6-digit identifier not used by any relationship.
func (a *IDAllocator) EdgeID(ctx context.Context) (string, error) {
	return a.allocate(ctx, "edge", a.store.EdgeIDInUse)
}

func (a *IDAllocator) allocate(ctx context.Context, kind string, inUse func(context.Context, string) (bool, error)) (string, error) {
	for i := 0; i < idAllocAttempts; i++ {
		candidate := fmt.Sprintf("%06d", 100000+a.intn(900000))

		taken, err := inUse(ctx, candidate)
		if err != nil {
			return "", apperr.Unavailable("Graph store unavailable", err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", apperr.Internal(fmt.Errorf("graph: could not allocate a unique %s id after %d attempts", kind, idAllocAttempts))
}
