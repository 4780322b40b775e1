// Copyright (c) 2026 Toile. All rights reserved.
// Author: contact@toile.app

package graph

import (
	"context"
	"log/slog"

	"github.com/toileapp/toile/internal/audit"
	"github.com/toileapp/toile/internal/platform/apperr"
	"github.com/toileapp/toile/internal/platform/validate"
	"github.com/toileapp/toile/internal/platform/viewer"
)

// # Inputs

type CreatePersonInput struct {
	Name    string   `json:"name"`
	Origins []string `json:"origins"`
	X       float64  `json:"x"`
	Y       float64  `json:"y"`
}

type UpdatePersonInput struct {
	Name    string    `json:"name"`
	NewName *string   `json:"newName"`
	Origins *[]string `json:"origins"`
}

type RelationInput struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// Service orchestrates all graph reads and mutations.
//
// Mutations that create or remove persons are recorded in the audit ledger
// with the acting identity; everything else touches only the graph store.
type Service struct {
	store  Store
	ids    *IDAllocator
	audit  audit.Recorder
	logger *slog.Logger
}

func NewService(store Store, ids *IDAllocator, recorder audit.Recorder, logger *slog.Logger) *Service {
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	return &Service{store: store, ids: ids, audit: recorder, logger: logger}
}

// View returns the graph projected for the given viewer.
func (s *Service) View(ctx context.Context, v viewer.Context) (*View, error) {
	raw, err := s.store.FetchGraph(ctx)
	if err != nil {
		return nil, err
	}
	return Project(raw, v), nil
}

// PersonByName returns the full, unredacted person record.
func (s *Service) PersonByName(ctx context.Context, name string) (*Person, error) {
	return s.store.GetPerson(ctx, name)
}

// PersonByNodeID returns the full person record addressed by node id.
func (s *Service) PersonByNodeID(ctx context.Context, nodeID string) (*Person, error) {
	return s.store.GetPersonByNodeID(ctx, nodeID)
}

// Persons lists every person in the graph, unredacted.
func (s *Service) Persons(ctx context.Context) ([]Person, error) {
	raw, err := s.store.FetchGraph(ctx)
	if err != nil {
		return nil, err
	}
	return raw.Persons, nil
}

// CreatePerson validates the name, allocates a node id, persists the person
// and records the creation against the acting identity.
func (s *Service) CreatePerson(ctx context.Context, actor viewer.Context, input CreatePersonInput) (*Person, error) {
	v := &validate.Validator{}
	if err := v.Required("name", input.Name).PersonName("name", input.Name).Err(); err != nil {
		return nil, err
	}

	if _, err := s.store.GetPerson(ctx, input.Name); err == nil {
		return nil, apperr.Conflict("A person with this name already exists")
	} else if !apperr.IsNotFound(err) {
		return nil, err
	}

	nodeID, err := s.ids.NodeID(ctx)
	if err != nil {
		return nil, err
	}

	person := &Person{
		NodeID:  nodeID,
		Name:    input.Name,
		Origins: input.Origins,
		X:       input.X,
		Y:       input.Y,
	}
	if err := s.store.CreatePerson(ctx, person); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Event{
		NodeID:          nodeID,
		Action:          audit.ActionCreate,
		CreatedBy:       actorLabel(actor),
		VisibilityLevel: actorLevel(actor),
	})
	s.logger.Info("person created", slog.String("node_id", nodeID))
	return person, nil
}

// UpdatePerson renames a person and/or replaces their origins. Unset fields
// are left unchanged.
func (s *Service) UpdatePerson(ctx context.Context, input UpdatePersonInput) error {
	v := &validate.Validator{}
	v.Required("name", input.Name)
	if input.NewName != nil {
		v.PersonName("newName", *input.NewName)
	}
	if err := v.Err(); err != nil {
		return err
	}

	if input.NewName != nil && *input.NewName != input.Name {
		if _, err := s.store.GetPerson(ctx, *input.NewName); err == nil {
			return apperr.Conflict("A person with this name already exists")
		} else if !apperr.IsNotFound(err) {
			return err
		}
	}

	return s.store.UpdatePerson(ctx, input.Name, PersonUpdate{
		NewName: input.NewName,
		Origins: input.Origins,
	})
}

// MoveNode stores new layout coordinates for a person.
func (s *Service) MoveNode(ctx context.Context, name string, x, y float64) error {
	return s.store.UpdateCoordinates(ctx, name, x, y)
}

// DeletePerson removes the person with all their relations and records the
// deletion.
func (s *Service) DeletePerson(ctx context.Context, actor viewer.Context, name string) error {
	person, err := s.store.GetPerson(ctx, name)
	if err != nil {
		return err
	}
	if err := s.store.DeletePerson(ctx, name); err != nil {
		return err
	}

	s.audit.Record(ctx, audit.Event{
		NodeID:    person.NodeID,
		Action:    audit.ActionDelete,
		CreatedBy: actorLabel(actor),
	})
	s.logger.Info("person deleted", slog.String("node_id", person.NodeID))
	return nil
}

// CreateRelation links two existing persons and returns the allocated edge id.
func (s *Service) CreateRelation(ctx context.Context, input RelationInput) (string, error) {
	v := &validate.Validator{}
	if err := v.Required("source", input.Source).Required("target", input.Target).Required("type", input.Type).Err(); err != nil {
		return "", err
	}
	if _, err := RelationTypeForQuery(input.Type); err != nil {
		return "", err
	}

	edgeID, err := s.ids.EdgeID(ctx)
	if err != nil {
		return "", err
	}
	if err := s.store.CreateRelation(ctx, input.Source, input.Target, input.Type, edgeID); err != nil {
		return "", err
	}
	return edgeID, nil
}

// DeleteRelation removes one typed edge between two persons.
func (s *Service) DeleteRelation(ctx context.Context, input RelationInput) error {
	v := &validate.Validator{}
	if err := v.Required("source", input.Source).Required("target", input.Target).Required("type", input.Type).Err(); err != nil {
		return err
	}
	return s.store.DeleteRelation(ctx, input.Source, input.Target, input.Type)
}

// DeleteAll wipes the entire graph database, pending proposals included.
func (s *Service) DeleteAll(ctx context.Context) error {
	s.logger.Warn("deleting entire graph database")
	return s.store.DeleteEverything(ctx)
}

// # Export / Import

// Dump returns the full graph in the wire format shared with snapshots.
func (s *Service) Dump(ctx context.Context) (*Dump, error) {
	raw, err := s.store.FetchGraph(ctx)
	if err != nil {
		return nil, err
	}
	dump := &Dump{
		Nodes: raw.Persons,
		Edges: make([]DumpEdge, 0, len(raw.Relations)),
	}
	for _, r := range raw.Relations {
		dump.Edges = append(dump.Edges, DumpEdge{
			Source: r.SourceName,
			Target: r.TargetName,
			Type:   r.Type,
			EdgeID: r.EdgeID,
		})
	}
	return dump, nil
}

// RestoreDump replaces the whole Person graph with the dump's contents.
//
// Nodes and edges whose identifiers are missing or malformed get fresh ones;
// valid identifiers are preserved so accounts bound to a node id survive a
// restore. Writes are sequential and not atomic: a mid-restore failure
// leaves a partial graph, which is why callers snapshot before restoring.
func (s *Service) RestoreDump(ctx context.Context, dump *Dump) (int, int, error) {
	if err := s.store.DeleteAllPersons(ctx); err != nil {
		return 0, 0, err
	}

	nodes := 0
	for _, node := range dump.Nodes {
		person := node
		if !validate.IsGraphID(person.NodeID) {
			nodeID, err := s.ids.NodeID(ctx)
			if err != nil {
				return nodes, 0, err
			}
			person.NodeID = nodeID
		}
		if err := s.store.CreatePerson(ctx, &person); err != nil {
			return nodes, 0, err
		}
		nodes++
	}

	edges := 0
	for _, edge := range dump.Edges {
		edgeID := edge.EdgeID
		if !validate.IsGraphID(edgeID) {
			id, err := s.ids.EdgeID(ctx)
			if err != nil {
				return nodes, edges, err
			}
			edgeID = id
		}
		if err := s.store.CreateRelation(ctx, edge.Source, edge.Target, edge.Type, edgeID); err != nil {
			return nodes, edges, err
		}
		edges++
	}
	return nodes, edges, nil
}

// BackfillIDs assigns identifiers to persons and relations that lack a valid
// one. Safe to run repeatedly; items already carrying a valid id are
// untouched. Runs at startup.
func (s *Service) BackfillIDs(ctx context.Context) (int, int, error) {
	names, err := s.store.PersonsMissingNodeID(ctx)
	if err != nil {
		return 0, 0, err
	}
	nodesFixed := 0
	for _, name := range names {
		nodeID, err := s.ids.NodeID(ctx)
		if err != nil {
			return nodesFixed, 0, err
		}
		if err := s.store.AssignNodeID(ctx, name, nodeID); err != nil {
			return nodesFixed, 0, err
		}
		nodesFixed++
	}

	keys, err := s.store.RelationsMissingEdgeID(ctx)
	if err != nil {
		return nodesFixed, 0, err
	}
	edgesFixed := 0
	for _, key := range keys {
		edgeID, err := s.ids.EdgeID(ctx)
		if err != nil {
			return nodesFixed, edgesFixed, err
		}
		if err := s.store.AssignEdgeID(ctx, key, edgeID); err != nil {
			return nodesFixed, edgesFixed, err
		}
		edgesFixed++
	}

	if nodesFixed > 0 || edgesFixed > 0 {
		s.logger.Info("identifier backfill complete",
			slog.Int("nodes_fixed", nodesFixed),
			slog.Int("edges_fixed", edgesFixed),
		)
	}
	return nodesFixed, edgesFixed, nil
}

// actorLabel renders the acting identity for the audit ledger.
func actorLabel(v viewer.Context) string {
	switch {
	case v.IsAdmin():
		return "admin"
	case v.IsAuthenticated():
		return v.Email
	default:
		return "anonymous"
	}
}

func actorLevel(v viewer.Context) *int {
	if !v.IsAuthenticated() {
		return nil
	}
	level := v.Level
	return &level
}
