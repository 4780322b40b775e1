// Copyright (c) 2026 Toile. All rights reserved.
// Author: contact@toile.app

package graph

import (
	"github.com/toileapp/toile/internal/platform/validate"
	"github.com/toileapp/toile/internal/platform/viewer"
)

// # Projected Output

// ProjectedNode is one node as seen by a specific viewer.
//
// For admins, ID is the person's name and every attribute is present. For
// everyone else, ID is the 6-digit node id and the identity fields are only
// populated when the viewer has earned them.
type ProjectedNode struct {
	ID      string   `json:"id"`
	NodeID  string   `json:"nodeId,omitempty"`
	Name    string   `json:"name,omitempty"`
	Origins []string `json:"origins,omitempty"`
	X       float64  `json:"x"`
	Y       float64  `json:"y"`
}

// ProjectedEdge is one edge as seen by a specific viewer. Source and Target
// carry the same key kind as the node IDs of the projection they belong to.
type ProjectedEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
	EdgeID string `json:"edgeId,omitempty"`
}

// View is a visibility-scoped projection of the graph.
type View struct {
	Nodes []ProjectedNode `json:"nodes"`
	Edges []ProjectedEdge `json:"edges"`
}

// # Projection

// Project redacts raw down to what v is allowed to see.
//
// Admins receive the full graph keyed by name. All other viewers receive a
// pseudonymized projection keyed by node id, in which:
//
//   - persons without a valid 6-digit node id are omitted entirely, together
//     with every edge touching them (no key exists that could name them
//     safely);
//   - names and origins appear only on the viewer's own node and, from
//     visibility level 3 up, on the viewer's direct neighbors;
//   - real edge types appear from level 2 up on edges touching the viewer,
//     and from level 3 up on edges whose two endpoints are both within two
//     hops of the viewer; every other edge reports the CONNECTION sentinel;
//   - coordinates are always present (layout data is not considered
//     identifying).
//
// An authenticated viewer whose node id no longer matches any person is
// treated as anonymous. Project never mutates raw and preserves input order,
// so identical inputs yield identical output.
func Project(raw *RawGraph, v viewer.Context) *View {
	if v.IsAdmin() {
		return projectAdmin(raw)
	}

	eligible := make(map[string]Person, len(raw.Persons))
	for _, p := range raw.Persons {
		if validate.IsGraphID(p.NodeID) {
			eligible[p.NodeID] = p
		}
	}

	viewerID := ""
	if v.IsAuthenticated() {
		if _, ok := eligible[v.PersonNodeID]; ok {
			viewerID = v.PersonNodeID
		}
	}

	// Adjacency over eligible persons only, undirected.
	adjacency := make(map[string]map[string]bool)
	link := func(a, b string) {
		if adjacency[a] == nil {
			adjacency[a] = make(map[string]bool)
		}
		adjacency[a][b] = true
	}
	for _, r := range raw.Relations {
		_, okSrc := eligible[r.SourceNodeID]
		_, okDst := eligible[r.TargetNodeID]
		if okSrc && okDst {
			link(r.SourceNodeID, r.TargetNodeID)
			link(r.TargetNodeID, r.SourceNodeID)
		}
	}

	// The name-reveal set is the viewer plus direct neighbors; the two-hop
	// set additionally includes the neighbors' neighbors. Both are empty for
	// anonymous viewers.
	nameIDs := make(map[string]bool)
	twoHop := make(map[string]bool)
	if viewerID != "" {
		nameIDs[viewerID] = true
		twoHop[viewerID] = true
		for neighbor := range adjacency[viewerID] {
			nameIDs[neighbor] = true
			twoHop[neighbor] = true
			for second := range adjacency[neighbor] {
				twoHop[second] = true
			}
		}
	}

	view := &View{
		Nodes: make([]ProjectedNode, 0, len(eligible)),
		Edges: make([]ProjectedEdge, 0, len(raw.Relations)),
	}
	for _, p := range raw.Persons {
		if _, ok := eligible[p.NodeID]; !ok {
			continue
		}
		node := ProjectedNode{ID: p.NodeID, X: p.X, Y: p.Y}
		if p.NodeID == viewerID || (v.Level >= 3 && nameIDs[p.NodeID]) {
			node.Name = p.Name
			node.Origins = p.Origins
		}
		view.Nodes = append(view.Nodes, node)
	}
	for _, r := range raw.Relations {
		_, okSrc := eligible[r.SourceNodeID]
		_, okDst := eligible[r.TargetNodeID]
		if !okSrc || !okDst {
			continue
		}
		edge := ProjectedEdge{
			Source: r.SourceNodeID,
			Target: r.TargetNodeID,
			Type:   RelationHidden,
			EdgeID: r.EdgeID,
		}
		if viewerID != "" && v.Level >= 2 {
			touchesViewer := r.SourceNodeID == viewerID || r.TargetNodeID == viewerID
			withinTwoHops := twoHop[r.SourceNodeID] && twoHop[r.TargetNodeID]
			if touchesViewer || (v.Level >= 3 && withinTwoHops) {
				edge.Type = r.Type
			}
		}
		view.Edges = append(view.Edges, edge)
	}
	return view
}

// projectAdmin returns the full graph keyed by person name.
func projectAdmin(raw *RawGraph) *View {
	view := &View{
		Nodes: make([]ProjectedNode, 0, len(raw.Persons)),
		Edges: make([]ProjectedEdge, 0, len(raw.Relations)),
	}
	for _, p := range raw.Persons {
		view.Nodes = append(view.Nodes, ProjectedNode{
			ID:      p.Name,
			NodeID:  p.NodeID,
			Name:    p.Name,
			Origins: p.Origins,
			X:       p.X,
			Y:       p.Y,
		})
	}
	for _, r := range raw.Relations {
		view.Edges = append(view.Edges, ProjectedEdge{
			Source: r.SourceName,
			Target: r.TargetName,
			Type:   r.Type,
			EdgeID: r.EdgeID,
		})
	}
	return view
}
