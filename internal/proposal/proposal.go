// Copyright (c) 2026 Toile. All rights reserved.
// Author: contact@toile.app

/*
Package proposal implements the moderated change workflow.

Authenticated members cannot mutate the graph directly; they submit
proposals, which an administrator reviews. Approval applies the described
mutation to the graph, captures a snapshot, and only then marks the proposal
approved. Review is terminal: a proposal leaves the pending state exactly
once.
*/
package proposal

import (
	"encoding/json"
	"time"
)

// Review states. Pending proposals are the review queue; approved and
// rejected are terminal.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Proposal types, each describing one graph mutation.
const (
	TypeAddNode        = "add_node"
	TypeAddRelation    = "add_relation"
	TypeModifyNode     = "modify_node"
	TypeDeleteNode     = "delete_node"
	TypeDeleteRelation = "delete_relation"
)

// Types lists every accepted proposal type.
var Types = []string{TypeAddNode, TypeAddRelation, TypeModifyNode, TypeDeleteNode, TypeDeleteRelation}

// Proposal is one proposed graph change moving through review.
//
// Data is the type-specific payload, stored opaquely and decoded only at
// validation and apply time.
type Proposal struct {
	ID          string          `json:"id"`
	AuthorName  string          `json:"authorName,omitempty"`
	AuthorEmail string          `json:"authorEmail,omitempty"`
	Type        string          `json:"type"`
	Data        json.RawMessage `json:"data"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	ReviewedAt  *time.Time      `json:"reviewedAt,omitempty"`
	ReviewedBy  string          `json:"reviewedBy,omitempty"`
	Comment     string          `json:"comment,omitempty"`
}

// # Type-specific Payloads

type AddNodeData struct {
	Name    string   `json:"name"`
	Origins []string `json:"origins"`
	X       float64  `json:"x"`
	Y       float64  `json:"y"`
}

type AddRelationData struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

type ModifyNodeData struct {
	Name    string    `json:"name"`
	NewName *string   `json:"newName"`
	Origins *[]string `json:"origins"`
}

type DeleteNodeData struct {
	Name string `json:"name"`
}

type DeleteRelationData struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// Stats summarizes the review queue for one viewer's scope.
type Stats struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Total    int `json:"total"`
}
