// Copyright (c) 2026 Toile. All rights reserved.
// Author: contact@toile.app

package proposal

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	neo4jdriver "github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/toileapp/toile/internal/platform/apperr"
	platformneo4j "github.com/toileapp/toile/internal/platform/neo4j"
)

// Store is the persistence boundary for proposals.
type Store interface {
	Create(ctx context.Context, p *Proposal) error
	Get(ctx context.Context, id string) (*Proposal, error)
	// List filters by status ("all" disables the filter) and optionally by
	// author email (empty disables the filter). Newest first.
	List(ctx context.Context, status, authorEmail string) ([]Proposal, error)
	CountByStatus(ctx context.Context, authorEmail string) (map[string]int, error)
	MarkReviewed(ctx context.Context, id, status, reviewedBy, comment string, reviewedAt time.Time) error
}

// Neo4jStore keeps proposals as :Proposal nodes alongside the graph they
// describe. The payload is stored as a JSON string property; timestamps are
// RFC 3339 strings so lexicographic ordering matches chronological ordering.
type Neo4jStore struct {
	runner platformneo4j.Runner
}

func NewNeo4jStore(runner platformneo4j.Runner) *Neo4jStore {
	return &Neo4jStore{runner: runner}
}

func (s *Neo4jStore) Create(ctx context.Context, p *Proposal) error {
	_, err := s.runner.Run(ctx,
		`CREATE (:Proposal {
			id: $id,
			authorName: $authorName,
			authorEmail: $authorEmail,
			type: $type,
			data: $data,
			status: $status,
			createdAt: $createdAt
		})`,
		map[string]any{
			"id":          p.ID,
			"authorName":  p.AuthorName,
			"authorEmail": p.AuthorEmail,
			"type":        p.Type,
			"data":        string(p.Data),
			"status":      p.Status,
			"createdAt":   p.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	if err != nil {
		return apperr.Unavailable("Graph store unavailable", err)
	}
	return nil
}

func (s *Neo4jStore) Get(ctx context.Context, id string) (*Proposal, error) {
	result, err := s.runner.Run(ctx,
		`MATCH (p:Proposal {id: $id}) RETURN p LIMIT 1`,
		map[string]any{"id": id})
	if err != nil {
		return nil, apperr.Unavailable("Graph store unavailable", err)
	}
	if len(result.Records) == 0 {
		return nil, apperr.NotFound("Proposal")
	}
	return proposalFromRecord(result.Records[0])
}

func (s *Neo4jStore) List(ctx context.Context, status, authorEmail string) ([]Proposal, error) {
	query := `MATCH (p:Proposal)`
	params := map[string]any{}
	var conditions []string
	if status != "all" {
		conditions = append(conditions, "p.status = $status")
		params["status"] = status
	}
	if authorEmail != "" {
		conditions = append(conditions, "p.authorEmail = $author")
		params["author"] = authorEmail
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += ` RETURN p ORDER BY p.createdAt DESC`

	result, err := s.runner.Run(ctx, query, params)
	if err != nil {
		return nil, apperr.Unavailable("Graph store unavailable", err)
	}

	proposals := make([]Proposal, 0, len(result.Records))
	for _, record := range result.Records {
		p, err := proposalFromRecord(record)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, *p)
	}
	return proposals, nil
}

func (s *Neo4jStore) CountByStatus(ctx context.Context, authorEmail string) (map[string]int, error) {
	query := `MATCH (p:Proposal)`
	params := map[string]any{}
	if authorEmail != "" {
		query += ` WHERE p.authorEmail = $author`
		params["author"] = authorEmail
	}
	query += ` RETURN p.status AS status, count(*) AS total`

	result, err := s.runner.Run(ctx, query, params)
	if err != nil {
		return nil, apperr.Unavailable("Graph store unavailable", err)
	}

	counts := make(map[string]int)
	for _, record := range result.Records {
		sv, _ := record.Get("status")
		cv, _ := record.Get("total")
		status, ok := sv.(string)
		if !ok {
			continue
		}
		if total, ok := cv.(int64); ok {
			counts[status] = int(total)
		}
	}
	return counts, nil
}

func (s *Neo4jStore) MarkReviewed(ctx context.Context, id, status, reviewedBy, comment string, reviewedAt time.Time) error {
	result, err := s.runner.Run(ctx,
		`MATCH (p:Proposal {id: $id})
		 SET p.status = $status,
		     p.reviewedBy = $reviewedBy,
		     p.comment = $comment,
		     p.reviewedAt = $reviewedAt
		 RETURN p`,
		map[string]any{
			"id":         id,
			"status":     status,
			"reviewedBy": reviewedBy,
			"comment":    comment,
			"reviewedAt": reviewedAt.UTC().Format(time.RFC3339Nano),
		})
	if err != nil {
		return apperr.Unavailable("Graph store unavailable", err)
	}
	if len(result.Records) == 0 {
		return apperr.NotFound("Proposal")
	}
	return nil
}

// # Record Decoding

func proposalFromRecord(record *neo4jdriver.Record) (*Proposal, error) {
	pv, _ := record.Get("p")
	node, ok := pv.(neo4jdriver.Node)
	if !ok {
		return nil, apperr.Internal(fmt.Errorf("proposal: unexpected record shape"))
	}
	props := node.Props

	p := &Proposal{
		ID:          stringProp(props, "id"),
		AuthorName:  stringProp(props, "authorName"),
		AuthorEmail: stringProp(props, "authorEmail"),
		Type:        stringProp(props, "type"),
		Status:      stringProp(props, "status"),
		ReviewedBy:  stringProp(props, "reviewedBy"),
		Comment:     stringProp(props, "comment"),
	}

	if raw := stringProp(props, "data"); raw != "" {
		p.Data = json.RawMessage(raw)
	}
	if created, err := time.Parse(time.RFC3339Nano, stringProp(props, "createdAt")); err == nil {
		p.CreatedAt = created
	}
	if reviewed, err := time.Parse(time.RFC3339Nano, stringProp(props, "reviewedAt")); err == nil {
		p.ReviewedAt = &reviewed
	}
	return p, nil
}

func stringProp(props map[string]any, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}
