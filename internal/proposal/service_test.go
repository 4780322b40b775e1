// Copyright (c) 2026 Toile. All rights reserved.
// Author: contact@toile.app

package proposal

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toileapp/toile/internal/graph"
	"github.com/toileapp/toile/internal/platform/apperr"
	"github.com/toileapp/toile/internal/platform/viewer"
	"github.com/toileapp/toile/internal/snapshot"
)

// memProposalStore is an in-memory [Store].
type memProposalStore struct {
	proposals map[string]*Proposal
	order     []string
}

func newMemProposalStore() *memProposalStore {
	return &memProposalStore{proposals: make(map[string]*Proposal)}
}

func (m *memProposalStore) Create(_ context.Context, p *Proposal) error {
	copied := *p
	m.proposals[p.ID] = &copied
	m.order = append([]string{p.ID}, m.order...)
	return nil
}

func (m *memProposalStore) Get(_ context.Context, id string) (*Proposal, error) {
	p, ok := m.proposals[id]
	if !ok {
		return nil, apperr.NotFound("Proposal")
	}
	copied := *p
	return &copied, nil
}

func (m *memProposalStore) List(_ context.Context, status, authorEmail string) ([]Proposal, error) {
	var out []Proposal
	for _, id := range m.order {
		p := m.proposals[id]
		if status != "all" && p.Status != status {
			continue
		}
		if authorEmail != "" && p.AuthorEmail != authorEmail {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (m *memProposalStore) CountByStatus(_ context.Context, authorEmail string) (map[string]int, error) {
	counts := make(map[string]int)
	for _, p := range m.proposals {
		if authorEmail != "" && p.AuthorEmail != authorEmail {
			continue
		}
		counts[p.Status]++
	}
	return counts, nil
}

func (m *memProposalStore) MarkReviewed(_ context.Context, id, status, reviewedBy, comment string, reviewedAt time.Time) error {
	p, ok := m.proposals[id]
	if !ok {
		return apperr.NotFound("Proposal")
	}
	p.Status = status
	p.ReviewedBy = reviewedBy
	p.Comment = comment
	p.ReviewedAt = &reviewedAt
	return nil
}

// fakeApplier records applied mutations and can be forced to fail.
type fakeApplier struct {
	created      []graph.CreatePersonInput
	updated      []graph.UpdatePersonInput
	deletedNames []string
	relations    []graph.RelationInput
	failWith     error
}

func (f *fakeApplier) CreatePerson(_ context.Context, _ viewer.Context, input graph.CreatePersonInput) (*graph.Person, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.created = append(f.created, input)
	return &graph.Person{NodeID: "123456", Name: input.Name}, nil
}

func (f *fakeApplier) UpdatePerson(_ context.Context, input graph.UpdatePersonInput) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.updated = append(f.updated, input)
	return nil
}

func (f *fakeApplier) DeletePerson(_ context.Context, _ viewer.Context, name string) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.deletedNames = append(f.deletedNames, name)
	return nil
}

func (f *fakeApplier) CreateRelation(_ context.Context, input graph.RelationInput) (string, error) {
	if f.failWith != nil {
		return "", f.failWith
	}
	f.relations = append(f.relations, input)
	return "654321", nil
}

func (f *fakeApplier) DeleteRelation(_ context.Context, input graph.RelationInput) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.relations = append(f.relations, input)
	return nil
}

// fakeSnapshotter counts captures and can be forced to fail.
type fakeSnapshotter struct {
	captures int
	failWith error
}

func (f *fakeSnapshotter) Create(context.Context, string, string) (*snapshot.Created, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.captures++
	return &snapshot.Created{ID: "abcd1234"}, nil
}

func newTestProposalService() (*Service, *memProposalStore, *fakeApplier, *fakeSnapshotter) {
	store := newMemProposalStore()
	applier := &fakeApplier{}
	snapshots := &fakeSnapshotter{}
	svc := NewService(store, applier, snapshots, slog.New(slog.DiscardHandler))
	return svc, store, applier, snapshots
}

var member = viewer.Authenticated("111111", 2, "member@example.com")

func mustSubmit(t *testing.T, svc *Service, author viewer.Context, proposalType string, data any) *Proposal {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	p, err := svc.Submit(context.Background(), author, SubmitInput{
		AuthorName: "Member",
		Type:       proposalType,
		Data:       raw,
	})
	require.NoError(t, err)
	return p
}

func TestSubmitCreatesPendingProposal(t *testing.T) {
	svc, store, _, _ := newTestProposalService()

	p := mustSubmit(t, svc, member, TypeAddNode, AddNodeData{Name: "Alice DUPONT", X: 1, Y: 2})

	assert.Equal(t, StatusPending, p.Status)
	assert.Equal(t, "member@example.com", p.AuthorEmail)
	assert.NotEmpty(t, p.ID)

	stored, err := store.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, TypeAddNode, stored.Type)
}

func TestSubmitRejectsUnknownType(t *testing.T) {
	svc, _, _, _ := newTestProposalService()

	_, err := svc.Submit(context.Background(), member, SubmitInput{
		Type: "drop_database",
		Data: json.RawMessage(`{}`),
	})

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestSubmitDefersPayloadValidation(t *testing.T) {
	svc, _, _, _ := newTestProposalService()

	// Structurally dubious payloads are accepted as pending; they are judged
	// at apply time, where a failure auto-rejects the proposal.
	p, err := svc.Submit(context.Background(), member, SubmitInput{
		Type: TypeAddNode,
		Data: json.RawMessage(`{"unexpected": true}`),
	})

	require.NoError(t, err)
	assert.Equal(t, StatusPending, p.Status)
}

func TestApproveUndecodablePayloadAutoRejects(t *testing.T) {
	svc, store, applier, _ := newTestProposalService()

	p, err := svc.Submit(context.Background(), member, SubmitInput{
		Type: TypeAddNode,
		Data: json.RawMessage(`"not an object"`),
	})
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), viewer.Admin(), p.ID, ReviewInput{ReviewedBy: "Root ADMIN"})

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "APPLY_FAILURE", appErr.Code)
	assert.Empty(t, applier.created)

	stored, getErr := store.Get(context.Background(), p.ID)
	require.NoError(t, getErr)
	assert.Equal(t, StatusRejected, stored.Status)
}

func TestApproveAppliesMutationAndSnapshots(t *testing.T) {
	svc, store, applier, snapshots := newTestProposalService()
	p := mustSubmit(t, svc, member, TypeAddNode, AddNodeData{Name: "Alice DUPONT", Origins: []string{"France"}})

	reviewed, err := svc.Approve(context.Background(), viewer.Admin(), p.ID, ReviewInput{ReviewedBy: "Root ADMIN"})

	require.NoError(t, err)
	assert.Equal(t, StatusApproved, reviewed.Status)
	assert.Equal(t, "Root ADMIN", reviewed.ReviewedBy)
	require.NotNil(t, reviewed.ReviewedAt)

	require.Len(t, applier.created, 1)
	assert.Equal(t, "Alice DUPONT", applier.created[0].Name)
	assert.Equal(t, 1, snapshots.captures)

	stored, err := store.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, stored.Status)
}

func TestApproveRequiresReviewer(t *testing.T) {
	svc, _, _, _ := newTestProposalService()
	p := mustSubmit(t, svc, member, TypeDeleteNode, DeleteNodeData{Name: "Alice DUPONT"})

	_, err := svc.Approve(context.Background(), viewer.Admin(), p.ID, ReviewInput{})

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestApproveFailedApplyAutoRejects(t *testing.T) {
	svc, store, applier, snapshots := newTestProposalService()
	p := mustSubmit(t, svc, member, TypeDeleteNode, DeleteNodeData{Name: "Alice DUPONT"})

	applier.failWith = apperr.NotFound("Person")

	_, err := svc.Approve(context.Background(), viewer.Admin(), p.ID, ReviewInput{ReviewedBy: "Root ADMIN"})

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "APPLY_FAILURE", appErr.Code)
	assert.Zero(t, snapshots.captures, "no snapshot when the apply failed")

	stored, getErr := store.Get(context.Background(), p.ID)
	require.NoError(t, getErr)
	assert.Equal(t, StatusRejected, stored.Status)
	assert.Contains(t, stored.Comment, "Automatic rejection")
}

func TestApproveSnapshotFailureDoesNotUndoApproval(t *testing.T) {
	svc, store, applier, snapshots := newTestProposalService()
	p := mustSubmit(t, svc, member, TypeAddRelation, AddRelationData{
		Source: "Alice DUPONT", Target: "Bruno MARTIN", Type: "AMIS",
	})

	snapshots.failWith = errors.New("disk full")

	reviewed, err := svc.Approve(context.Background(), viewer.Admin(), p.ID, ReviewInput{ReviewedBy: "Root ADMIN"})

	require.NoError(t, err)
	assert.Equal(t, StatusApproved, reviewed.Status)
	require.Len(t, applier.relations, 1)

	stored, err := store.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, stored.Status)
}

func TestReviewIsTerminal(t *testing.T) {
	svc, _, applier, _ := newTestProposalService()
	p := mustSubmit(t, svc, member, TypeDeleteNode, DeleteNodeData{Name: "Alice DUPONT"})

	_, err := svc.Reject(context.Background(), p.ID, ReviewInput{ReviewedBy: "Root ADMIN"})
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), viewer.Admin(), p.ID, ReviewInput{ReviewedBy: "Root ADMIN"})

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)
	assert.Empty(t, applier.deletedNames, "rejected proposal must never touch the graph")
}

func TestListScopedByViewer(t *testing.T) {
	svc, _, _, _ := newTestProposalService()
	other := viewer.Authenticated("222222", 1, "other@example.com")

	mine := mustSubmit(t, svc, member, TypeDeleteNode, DeleteNodeData{Name: "Alice DUPONT"})
	mustSubmit(t, svc, other, TypeDeleteNode, DeleteNodeData{Name: "Bruno MARTIN"})

	all, err := svc.List(context.Background(), viewer.Admin(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := svc.List(context.Background(), member, "")
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, mine.ID, own[0].ID)

	_, err = svc.List(context.Background(), viewer.Anonymous(), "")
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "UNAUTHORIZED", appErr.Code)
}

func TestGetHidesForeignProposals(t *testing.T) {
	svc, _, _, _ := newTestProposalService()
	other := viewer.Authenticated("222222", 1, "other@example.com")
	p := mustSubmit(t, svc, member, TypeDeleteNode, DeleteNodeData{Name: "Alice DUPONT"})

	_, err := svc.Get(context.Background(), other, p.ID)
	assert.True(t, apperr.IsNotFound(err), "foreign proposals read as absent")

	got, err := svc.Get(context.Background(), viewer.Admin(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestStatsScopedByViewer(t *testing.T) {
	svc, _, _, _ := newTestProposalService()
	other := viewer.Authenticated("222222", 1, "other@example.com")

	p := mustSubmit(t, svc, member, TypeDeleteNode, DeleteNodeData{Name: "Alice DUPONT"})
	mustSubmit(t, svc, member, TypeDeleteNode, DeleteNodeData{Name: "Bruno MARTIN"})
	mustSubmit(t, svc, other, TypeDeleteNode, DeleteNodeData{Name: "Clara BERNARD"})

	_, err := svc.Reject(context.Background(), p.ID, ReviewInput{ReviewedBy: "Root ADMIN"})
	require.NoError(t, err)

	adminStats, err := svc.Stats(context.Background(), viewer.Admin())
	require.NoError(t, err)
	assert.Equal(t, &Stats{Pending: 2, Rejected: 1, Total: 3}, adminStats)

	memberStats, err := svc.Stats(context.Background(), member)
	require.NoError(t, err)
	assert.Equal(t, &Stats{Pending: 1, Rejected: 1, Total: 2}, memberStats)

	anonStats, err := svc.Stats(context.Background(), viewer.Anonymous())
	require.NoError(t, err)
	assert.Equal(t, &Stats{}, anonStats, "anonymous viewers get zeros, not an error")
}
