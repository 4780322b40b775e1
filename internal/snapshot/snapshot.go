// Copyright (c) 2026 Toile. All rights reserved.
// Author: contact@toile.app

// Package snapshot implements point-in-time captures of the graph as JSON
// files on disk, and restoration of the graph from any stored capture.
package snapshot

import (
	"time"

	"github.com/toileapp/toile/internal/graph"
)

// Snapshot is one full capture: provenance metadata plus the complete graph
// dump at capture time.
type Snapshot struct {
	ID        string           `json:"id"`
	Timestamp time.Time        `json:"timestamp"`
	Message   string           `json:"message"`
	Author    string           `json:"author"`
	Nodes     []graph.Person   `json:"nodes"`
	Edges     []graph.DumpEdge `json:"edges"`
}

// Meta is the listing view of a snapshot: everything except the graph data.
type Meta struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	Nodes     int       `json:"nodesCount"`
	Edges     int       `json:"edgesCount"`
}
