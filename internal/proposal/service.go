// Copyright (c) 2026 Toile. All rights reserved.
// Author: contact@toile.app

package proposal

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/toileapp/toile/internal/graph"
	"github.com/toileapp/toile/internal/platform/apperr"
	"github.com/toileapp/toile/internal/platform/validate"
	"github.com/toileapp/toile/internal/platform/viewer"
	"github.com/toileapp/toile/internal/snapshot"
)

// GraphApplier is the slice of the graph service a proposal apply needs.
type GraphApplier interface {
	CreatePerson(ctx context.Context, actor viewer.Context, input graph.CreatePersonInput) (*graph.Person, error)
	UpdatePerson(ctx context.Context, input graph.UpdatePersonInput) error
	DeletePerson(ctx context.Context, actor viewer.Context, name string) error
	CreateRelation(ctx context.Context, input graph.RelationInput) (string, error)
	DeleteRelation(ctx context.Context, input graph.RelationInput) error
}

// Snapshotter captures the graph after an approved mutation.
type Snapshotter interface {
	Create(ctx context.Context, message, author string) (*snapshot.Created, error)
}

// Service runs the proposal workflow: submission, scoped reads, and the
// approve/reject review step.
type Service struct {
	store     Store
	graph     GraphApplier
	snapshots Snapshotter
	logger    *slog.Logger

	now func() time.Time
}

func NewService(store Store, applier GraphApplier, snapshots Snapshotter, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		graph:     applier,
		snapshots: snapshots,
		logger:    logger,
		now:       time.Now,
	}
}

// SubmitInput is the payload of a new proposal.
type SubmitInput struct {
	AuthorName string          `json:"authorName"`
	Type       string          `json:"type"`
	Data       json.RawMessage `json:"data"`
}

// Submit stores a new pending proposal on behalf of the authenticated
// author. Only the type is validated here; the payload's structure is judged
// at apply time, where a failure auto-rejects the proposal.
func (s *Service) Submit(ctx context.Context, author viewer.Context, input SubmitInput) (*Proposal, error) {
	v := &validate.Validator{}
	v.Required("type", input.Type).OneOf("type", input.Type, Types...)
	v.Custom("data", len(input.Data) == 0, "This field is required")
	if err := v.Err(); err != nil {
		return nil, err
	}

	p := &Proposal{
		ID:          uuid.NewString(),
		AuthorName:  input.AuthorName,
		AuthorEmail: author.Email,
		Type:        input.Type,
		Data:        input.Data,
		Status:      StatusPending,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("proposal submitted",
		slog.String("proposal_id", p.ID),
		slog.String("type", p.Type),
		slog.String("author", p.AuthorEmail),
	)
	return p, nil
}

// List returns proposals visible to the viewer: all of them for admins, the
// viewer's own for members. Anonymous callers are refused.
func (s *Service) List(ctx context.Context, v viewer.Context, status string) ([]Proposal, error) {
	if status == "" {
		status = StatusPending
	}
	switch {
	case v.IsAdmin():
		return s.store.List(ctx, status, "")
	case v.IsAuthenticated():
		return s.store.List(ctx, status, v.Email)
	default:
		return nil, apperr.Unauthorized("Authentication required")
	}
}

// Get returns one proposal if the viewer may see it. Members get NotFound
// for proposals that are not theirs, so ids do not leak existence.
func (s *Service) Get(ctx context.Context, v viewer.Context, id string) (*Proposal, error) {
	if !v.IsAdmin() && !v.IsAuthenticated() {
		return nil, apperr.Unauthorized("Authentication required")
	}
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !v.IsAdmin() && p.AuthorEmail != v.Email {
		return nil, apperr.NotFound("Proposal")
	}
	return p, nil
}

// Stats returns review-queue counts in the viewer's scope. Anonymous callers
// get zeros rather than an error, so the public UI can always render the
// counter widget.
func (s *Service) Stats(ctx context.Context, v viewer.Context) (*Stats, error) {
	author := ""
	switch {
	case v.IsAdmin():
	case v.IsAuthenticated():
		author = v.Email
	default:
		return &Stats{}, nil
	}

	counts, err := s.store.CountByStatus(ctx, author)
	if err != nil {
		return nil, err
	}
	stats := &Stats{
		Pending:  counts[StatusPending],
		Approved: counts[StatusApproved],
		Rejected: counts[StatusRejected],
	}
	stats.Total = stats.Pending + stats.Approved + stats.Rejected
	return stats, nil
}

// ReviewInput carries the reviewer identity and optional commentary.
type ReviewInput struct {
	ReviewedBy string `json:"reviewedBy"`
	Comment    string `json:"comment"`
}

// Approve applies the proposal's mutation to the graph, captures a snapshot,
// and marks the proposal approved.
//
// The steps run in that order and are not atomic. If the apply fails, the
// proposal is automatically rejected with the failure reason so it cannot be
// retried against a graph that has already refused it, and the apply error
// is returned to the reviewer. A snapshot failure after a successful apply
// is logged but does not undo the approval.
func (s *Service) Approve(ctx context.Context, reviewer viewer.Context, id string, input ReviewInput) (*Proposal, error) {
	v := &validate.Validator{}
	if err := v.Required("reviewedBy", input.ReviewedBy).Err(); err != nil {
		return nil, err
	}

	p, err := s.pending(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.apply(ctx, reviewer, p); err != nil {
		applyErr := apperr.ApplyFailure("Could not apply proposal: "+err.Error(), err)
		reason := "Automatic rejection: " + err.Error()
		if markErr := s.store.MarkReviewed(ctx, id, StatusRejected, input.ReviewedBy, reason, s.now().UTC()); markErr != nil {
			s.logger.Error("compensating rejection failed",
				slog.String("proposal_id", id),
				slog.String("error", markErr.Error()),
			)
		}
		return nil, applyErr
	}

	if _, err := s.snapshots.Create(ctx, "Approval of "+p.Type+" proposal "+id, input.ReviewedBy); err != nil {
		s.logger.Warn("post-approval snapshot failed",
			slog.String("proposal_id", id),
			slog.String("error", err.Error()),
		)
	}

	reviewedAt := s.now().UTC()
	if err := s.store.MarkReviewed(ctx, id, StatusApproved, input.ReviewedBy, input.Comment, reviewedAt); err != nil {
		return nil, err
	}

	s.logger.Info("proposal approved",
		slog.String("proposal_id", id),
		slog.String("reviewed_by", input.ReviewedBy),
	)
	p.Status = StatusApproved
	p.ReviewedBy = input.ReviewedBy
	p.Comment = input.Comment
	p.ReviewedAt = &reviewedAt
	return p, nil
}

// Reject marks a pending proposal rejected without touching the graph.
func (s *Service) Reject(ctx context.Context, id string, input ReviewInput) (*Proposal, error) {
	v := &validate.Validator{}
	if err := v.Required("reviewedBy", input.ReviewedBy).Err(); err != nil {
		return nil, err
	}

	p, err := s.pending(ctx, id)
	if err != nil {
		return nil, err
	}

	reviewedAt := s.now().UTC()
	if err := s.store.MarkReviewed(ctx, id, StatusRejected, input.ReviewedBy, input.Comment, reviewedAt); err != nil {
		return nil, err
	}

	s.logger.Info("proposal rejected",
		slog.String("proposal_id", id),
		slog.String("reviewed_by", input.ReviewedBy),
	)
	p.Status = StatusRejected
	p.ReviewedBy = input.ReviewedBy
	p.Comment = input.Comment
	p.ReviewedAt = &reviewedAt
	return p, nil
}

// pending loads a proposal and enforces that review is still open.
func (s *Service) pending(ctx context.Context, id string) (*Proposal, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusPending {
		return nil, apperr.Conflict("Proposal has already been reviewed")
	}
	return p, nil
}

// apply executes the mutation a proposal describes.
func (s *Service) apply(ctx context.Context, actor viewer.Context, p *Proposal) error {
	switch p.Type {
	case TypeAddNode:
		var data AddNodeData
		if err := json.Unmarshal(p.Data, &data); err != nil {
			return err
		}
		_, err := s.graph.CreatePerson(ctx, actor, graph.CreatePersonInput{
			Name:    data.Name,
			Origins: data.Origins,
			X:       data.X,
			Y:       data.Y,
		})
		return err

	case TypeAddRelation:
		var data AddRelationData
		if err := json.Unmarshal(p.Data, &data); err != nil {
			return err
		}
		_, err := s.graph.CreateRelation(ctx, graph.RelationInput(data))
		return err

	case TypeModifyNode:
		var data ModifyNodeData
		if err := json.Unmarshal(p.Data, &data); err != nil {
			return err
		}
		return s.graph.UpdatePerson(ctx, graph.UpdatePersonInput(data))

	case TypeDeleteNode:
		var data DeleteNodeData
		if err := json.Unmarshal(p.Data, &data); err != nil {
			return err
		}
		return s.graph.DeletePerson(ctx, actor, data.Name)

	case TypeDeleteRelation:
		var data DeleteRelationData
		if err := json.Unmarshal(p.Data, &data); err != nil {
			return err
		}
		return s.graph.DeleteRelation(ctx, graph.RelationInput(data))
	}
	return apperr.ValidationError("Unknown proposal type")
}
