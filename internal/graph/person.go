// Copyright (c) 2026 Toile. All rights reserved.
// Author: contact@toile.app

/*
Package graph implements the family/social graph domain.

It defines the core entities (Person, Relation), the identifier allocator,
the visibility projector that redacts the graph per caller identity, and the
service orchestrating all graph mutations.

# Architecture

This layer is the "Truth" of the system. The projector is a pure function over
an in-memory [RawGraph]; all storage access goes through the [Store] interface
so that the core logic can be tested without a running database.
*/
package graph

import "github.com/toileapp/toile/internal/platform/validate"

// # Relation Types

// Well-known relationship types. Any other caller-supplied type is accepted
// as long as it passes the identifier gate (see [RelationTypeForQuery]).
const (
	RelationFamily  = "FAMILLE"
	RelationFriends = "AMIS"
	RelationLove    = "AMOUR"

	// RelationHidden is the sentinel type reported for every edge whose real
	// type the viewer is not allowed to see.
	RelationHidden = "CONNECTION"
)

// # Domain Entities

// Person represents one individual in the graph.
//
// Name is the unique natural key ("Firstname LASTNAME") used for all graph
// queries; NodeID is the unique pseudonymous key shown to non-admin viewers.
type Person struct {
	NodeID  string   `json:"nodeId,omitempty"`
	Name    string   `json:"name"`
	Origins []string `json:"origins,omitempty"`
	X       float64  `json:"x"`
	Y       float64  `json:"y"`
}

// Relation is a directed, typed edge between two Persons.
//
// Both the natural keys (names) and the pseudonymous keys (node ids) of the
// endpoints are carried so the projector can emit either representation
// without a second store round-trip.
type Relation struct {
	EdgeID       string
	SourceName   string
	TargetName   string
	SourceNodeID string
	TargetNodeID string
	Type         string
}

// RawGraph is the complete, unredacted graph as fetched from the store.
type RawGraph struct {
	Persons   []Person
	Relations []Relation
}

// # Wire Format

// Dump is the serializable full-graph payload shared by export/import and
// the snapshot manager.
type Dump struct {
	Nodes []Person   `json:"nodes"`
	Edges []DumpEdge `json:"edges"`
}

// DumpEdge references its endpoints by name, matching the export format the
// visualization client produces and consumes.
type DumpEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
	EdgeID string `json:"edgeId,omitempty"`
}

// # Validation Gates

// RelationTypeForQuery validates a relationship type for safe inclusion in a
// Cypher query.
//
// Cypher cannot bind relationship type names as query parameters, so every
// type goes through this gate before query construction: the three well-known
// types pass directly, anything else must match the strict identifier
// pattern. The error message intentionally lists the accepted shape.
func RelationTypeForQuery(relType string) (string, error) {
	switch relType {
	case RelationFamily, RelationFriends, RelationLove:
		return relType, nil
	}
	if !validate.IsRelationType(relType) {
		return "", validate.RequiredError("type",
			"Must be FAMILLE, AMIS, AMOUR, or an uppercase identifier")
	}
	return relType, nil
}
