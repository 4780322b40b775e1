// Copyright (c) 2026 Toile. All rights reserved.
// Author: contact@toile.app

package graph

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toileapp/toile/internal/audit"
	"github.com/toileapp/toile/internal/platform/apperr"
	"github.com/toileapp/toile/internal/platform/validate"
	"github.com/toileapp/toile/internal/platform/viewer"
)

// memStore is an in-memory [Store] mirroring the semantics of the Cypher
// implementation closely enough for service tests.
type memStore struct {
	persons   map[string]*Person
	order     []string
	relations []Relation
}

func newMemStore() *memStore {
	return &memStore{persons: make(map[string]*Person)}
}

func (m *memStore) FetchGraph(context.Context) (*RawGraph, error) {
	raw := &RawGraph{}
	for _, name := range m.order {
		raw.Persons = append(raw.Persons, *m.persons[name])
	}
	raw.Relations = append(raw.Relations, m.relations...)
	return raw, nil
}

func (m *memStore) GetPerson(_ context.Context, name string) (*Person, error) {
	p, ok := m.persons[name]
	if !ok {
		return nil, apperr.NotFound("Person")
	}
	copied := *p
	return &copied, nil
}

func (m *memStore) GetPersonByNodeID(_ context.Context, nodeID string) (*Person, error) {
	for _, p := range m.persons {
		if p.NodeID == nodeID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Person")
}

func (m *memStore) CreatePerson(_ context.Context, p *Person) error {
	copied := *p
	m.persons[p.Name] = &copied
	m.order = append(m.order, p.Name)
	return nil
}

func (m *memStore) UpdatePerson(_ context.Context, name string, update PersonUpdate) error {
	p, ok := m.persons[name]
	if !ok {
		return apperr.NotFound("Person")
	}
	if update.Origins != nil {
		p.Origins = *update.Origins
	}
	if update.NewName != nil && *update.NewName != name {
		p.Name = *update.NewName
		m.persons[p.Name] = p
		delete(m.persons, name)
		for i, n := range m.order {
			if n == name {
				m.order[i] = p.Name
			}
		}
		for i := range m.relations {
			if m.relations[i].SourceName == name {
				m.relations[i].SourceName = p.Name
			}
			if m.relations[i].TargetName == name {
				m.relations[i].TargetName = p.Name
			}
		}
	}
	return nil
}

func (m *memStore) UpdateCoordinates(_ context.Context, name string, x, y float64) error {
	p, ok := m.persons[name]
	if !ok {
		return apperr.NotFound("Person")
	}
	p.X, p.Y = x, y
	return nil
}

func (m *memStore) DeletePerson(_ context.Context, name string) error {
	if _, ok := m.persons[name]; !ok {
		return apperr.NotFound("Person")
	}
	delete(m.persons, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	kept := m.relations[:0]
	for _, r := range m.relations {
		if r.SourceName != name && r.TargetName != name {
			kept = append(kept, r)
		}
	}
	m.relations = kept
	return nil
}

func (m *memStore) CreateRelation(_ context.Context, source, target, relType, edgeID string) error {
	src, okSrc := m.persons[source]
	dst, okDst := m.persons[target]
	if !okSrc || !okDst {
		return apperr.NotFound("Person")
	}
	m.relations = append(m.relations, Relation{
		EdgeID:       edgeID,
		SourceName:   source,
		TargetName:   target,
		SourceNodeID: src.NodeID,
		TargetNodeID: dst.NodeID,
		Type:         relType,
	})
	return nil
}

func (m *memStore) DeleteRelation(_ context.Context, source, target, relType string) error {
	for i, r := range m.relations {
		if r.SourceName == source && r.TargetName == target && r.Type == relType {
			m.relations = append(m.relations[:i], m.relations[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("Relation")
}

func (m *memStore) DeleteAllPersons(context.Context) error {
	m.persons = make(map[string]*Person)
	m.order = nil
	m.relations = nil
	return nil
}

func (m *memStore) DeleteEverything(ctx context.Context) error {
	return m.DeleteAllPersons(ctx)
}

func (m *memStore) NodeIDInUse(_ context.Context, id string) (bool, error) {
	for _, p := range m.persons {
		if p.NodeID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) EdgeIDInUse(_ context.Context, id string) (bool, error) {
	for _, r := range m.relations {
		if r.EdgeID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) PersonsMissingNodeID(context.Context) ([]string, error) {
	var names []string
	for _, name := range m.order {
		if !validate.IsGraphID(m.persons[name].NodeID) {
			names = append(names, name)
		}
	}
	return names, nil
}

func (m *memStore) RelationsMissingEdgeID(context.Context) ([]RelationKey, error) {
	var keys []RelationKey
	for _, r := range m.relations {
		if !validate.IsGraphID(r.EdgeID) {
			keys = append(keys, RelationKey{Source: r.SourceName, Target: r.TargetName, Type: r.Type})
		}
	}
	return keys, nil
}

func (m *memStore) AssignNodeID(_ context.Context, name, nodeID string) error {
	p, ok := m.persons[name]
	if !ok {
		return apperr.NotFound("Person")
	}
	p.NodeID = nodeID
	return nil
}

func (m *memStore) AssignEdgeID(_ context.Context, key RelationKey, edgeID string) error {
	for i, r := range m.relations {
		if r.SourceName == key.Source && r.TargetName == key.Target && r.Type == key.Type {
			m.relations[i].EdgeID = edgeID
			return nil
		}
	}
	return apperr.NotFound("Relation")
}

// captureRecorder remembers every audit event.
type captureRecorder struct {
	events []audit.Event
}

func (c *captureRecorder) Record(_ context.Context, e audit.Event) {
	c.events = append(c.events, e)
}

func newTestService(store Store) (*Service, *captureRecorder) {
	recorder := &captureRecorder{}
	svc := NewService(store, NewIDAllocator(store), recorder, slog.New(slog.DiscardHandler))
	return svc, recorder
}

func TestCreatePersonAllocatesIDAndAudits(t *testing.T) {
	store := newMemStore()
	svc, recorder := newTestService(store)
	admin := viewer.Admin()

	person, err := svc.CreatePerson(context.Background(), admin, CreatePersonInput{
		Name: "Alice DUPONT", Origins: []string{"France"}, X: 1, Y: 2,
	})

	require.NoError(t, err)
	assert.Regexp(t, `^[0-9]{6}$`, person.NodeID)

	require.Len(t, recorder.events, 1)
	assert.Equal(t, audit.ActionCreate, recorder.events[0].Action)
	assert.Equal(t, person.NodeID, recorder.events[0].NodeID)
	assert.Equal(t, "admin", recorder.events[0].CreatedBy)
	assert.Nil(t, recorder.events[0].VisibilityLevel)
}

func TestCreatePersonRejectsMalformedName(t *testing.T) {
	svc, _ := newTestService(newMemStore())

	tests := []string{"alice dupont", "ALICE DUPONT", "Alice", "Alice dupont", ""}
	for _, name := range tests {
		_, err := svc.CreatePerson(context.Background(), viewer.Admin(), CreatePersonInput{Name: name})

		appErr := apperr.As(err)
		require.NotNil(t, appErr, "name %q", name)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	}
}

func TestCreatePersonAcceptsAccentedNames(t *testing.T) {
	svc, _ := newTestService(newMemStore())

	_, err := svc.CreatePerson(context.Background(), viewer.Admin(), CreatePersonInput{
		Name: "Éloïse LELIÈVRE",
	})

	require.NoError(t, err)
}

func TestCreatePersonDuplicateName(t *testing.T) {
	svc, _ := newTestService(newMemStore())
	admin := viewer.Admin()

	_, err := svc.CreatePerson(context.Background(), admin, CreatePersonInput{Name: "Alice DUPONT"})
	require.NoError(t, err)

	_, err = svc.CreatePerson(context.Background(), admin, CreatePersonInput{Name: "Alice DUPONT"})

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)
}

func TestDeletePersonAuditsWithActorEmail(t *testing.T) {
	store := newMemStore()
	svc, recorder := newTestService(store)

	person, err := svc.CreatePerson(context.Background(), viewer.Admin(), CreatePersonInput{Name: "Alice DUPONT"})
	require.NoError(t, err)

	actor := viewer.Authenticated("777777", 2, "reviewer@example.com")
	require.NoError(t, svc.DeletePerson(context.Background(), actor, "Alice DUPONT"))

	require.Len(t, recorder.events, 2)
	assert.Equal(t, audit.ActionDelete, recorder.events[1].Action)
	assert.Equal(t, person.NodeID, recorder.events[1].NodeID)
	assert.Equal(t, "reviewer@example.com", recorder.events[1].CreatedBy)
}

func TestCreateRelationMissingEndpoint(t *testing.T) {
	svc, _ := newTestService(newMemStore())

	_, err := svc.CreateRelation(context.Background(), RelationInput{
		Source: "Alice DUPONT", Target: "Bruno MARTIN", Type: RelationFamily,
	})

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestCreateRelationRejectsUnsafeType(t *testing.T) {
	svc, _ := newTestService(newMemStore())

	_, err := svc.CreateRelation(context.Background(), RelationInput{
		Source: "Alice DUPONT", Target: "Bruno MARTIN", Type: "amis; DROP",
	})

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestUpdatePersonRenameConflict(t *testing.T) {
	svc, _ := newTestService(newMemStore())
	admin := viewer.Admin()

	_, err := svc.CreatePerson(context.Background(), admin, CreatePersonInput{Name: "Alice DUPONT"})
	require.NoError(t, err)
	_, err = svc.CreatePerson(context.Background(), admin, CreatePersonInput{Name: "Bruno MARTIN"})
	require.NoError(t, err)

	newName := "Bruno MARTIN"
	err = svc.UpdatePerson(context.Background(), UpdatePersonInput{Name: "Alice DUPONT", NewName: &newName})

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)
}

func TestRestoreDumpPreservesValidIDsAndRegeneratesInvalid(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestService(store)

	nodes, edges, err := svc.RestoreDump(context.Background(), &Dump{
		Nodes: []Person{
			{NodeID: "123456", Name: "Alice DUPONT"},
			{NodeID: "stale", Name: "Bruno MARTIN"},
		},
		Edges: []DumpEdge{
			{Source: "Alice DUPONT", Target: "Bruno MARTIN", Type: RelationFamily, EdgeID: "654321"},
			{Source: "Bruno MARTIN", Target: "Alice DUPONT", Type: RelationFriends},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, nodes)
	assert.Equal(t, 2, edges)

	alice, err := store.GetPerson(context.Background(), "Alice DUPONT")
	require.NoError(t, err)
	assert.Equal(t, "123456", alice.NodeID, "valid ids survive a restore")

	bruno, err := store.GetPerson(context.Background(), "Bruno MARTIN")
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9]{6}$`, bruno.NodeID, "invalid ids are regenerated")
	assert.NotEqual(t, "stale", bruno.NodeID)

	assert.Equal(t, "654321", store.relations[0].EdgeID)
	assert.Regexp(t, `^[0-9]{6}$`, store.relations[1].EdgeID)
}

func TestRestoreDumpReplacesExistingGraph(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestService(store)

	_, err := svc.CreatePerson(context.Background(), viewer.Admin(), CreatePersonInput{Name: "Clara BERNARD"})
	require.NoError(t, err)

	_, _, err = svc.RestoreDump(context.Background(), &Dump{
		Nodes: []Person{{NodeID: "123456", Name: "Alice DUPONT"}},
	})
	require.NoError(t, err)

	_, err = store.GetPerson(context.Background(), "Clara BERNARD")
	assert.True(t, apperr.IsNotFound(err))
}

func TestBackfillIDsIsIdempotent(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestService(store)

	require.NoError(t, store.CreatePerson(context.Background(), &Person{Name: "Alice DUPONT"}))
	require.NoError(t, store.CreatePerson(context.Background(), &Person{Name: "Bruno MARTIN", NodeID: "222222"}))
	require.NoError(t, store.CreateRelation(context.Background(), "Alice DUPONT", "Bruno MARTIN", RelationFamily, ""))

	nodesFixed, edgesFixed, err := svc.BackfillIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, nodesFixed)
	assert.Equal(t, 1, edgesFixed)

	alice, err := store.GetPerson(context.Background(), "Alice DUPONT")
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9]{6}$`, alice.NodeID)

	bruno, err := store.GetPerson(context.Background(), "Bruno MARTIN")
	require.NoError(t, err)
	assert.Equal(t, "222222", bruno.NodeID, "valid ids are untouched")

	nodesFixed, edgesFixed, err = svc.BackfillIDs(context.Background())
	require.NoError(t, err)
	assert.Zero(t, nodesFixed)
	assert.Zero(t, edgesFixed)
}
