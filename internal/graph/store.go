// Copyright (c) 2026 Toile. All rights reserved.
// Author: contact@toile.app

package graph

import "context"

// PersonUpdate carries the mutable fields of a Person. Nil means "leave
// unchanged".
type PersonUpdate struct {
	NewName *string
	Origins *[]string
}

// RelationKey identifies one relationship by its endpoints and type, for
// relations that may not have an edge id yet.
type RelationKey struct {
	Source string
	Target string
	Type   string
}

// Store is the persistence boundary of the graph domain.
//
// Persons are addressed by their unique name; the implementation is expected
// to return [apperr.NotFound] when an addressed person or relation does not
// exist, so the service layer can pass errors through unchanged.
type Store interface {
	// FetchGraph returns every Person and every Person-to-Person relation.
	FetchGraph(ctx context.Context) (*RawGraph, error)

	GetPerson(ctx context.Context, name string) (*Person, error)
	GetPersonByNodeID(ctx context.Context, nodeID string) (*Person, error)
	CreatePerson(ctx context.Context, p *Person) error
	UpdatePerson(ctx context.Context, name string, update PersonUpdate) error
	UpdateCoordinates(ctx context.Context, name string, x, y float64) error
	// DeletePerson removes the person and all relations touching it.
	DeletePerson(ctx context.Context, name string) error

	CreateRelation(ctx context.Context, source, target, relType, edgeID string) error
	DeleteRelation(ctx context.Context, source, target, relType string) error

	// DeleteAllPersons removes every Person node and their relations, leaving
	// other node kinds (pending proposals) intact.
	DeleteAllPersons(ctx context.Context) error
	// DeleteEverything wipes the whole graph database, proposals included.
	DeleteEverything(ctx context.Context) error

	NodeIDInUse(ctx context.Context, id string) (bool, error)
	EdgeIDInUse(ctx context.Context, id string) (bool, error)

	// PersonsMissingNodeID returns the names of persons whose nodeId is
	// absent or malformed; RelationsMissingEdgeID does the same for edges.
	PersonsMissingNodeID(ctx context.Context) ([]string, error)
	RelationsMissingEdgeID(ctx context.Context) ([]RelationKey, error)
	AssignNodeID(ctx context.Context, name, nodeID string) error
	AssignEdgeID(ctx context.Context, key RelationKey, edgeID string) error
}
