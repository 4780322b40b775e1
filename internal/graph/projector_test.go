// Copyright (c) 2026 Toile. All rights reserved.
// Author: contact@toile.app

package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toileapp/toile/internal/platform/viewer"
)

// chainGraph builds Alice—Bruno—Clara—David plus Estelle, a legacy person
// without a node id who is linked to Alice.
func chainGraph() *RawGraph {
	persons := []Person{
		{NodeID: "111111", Name: "Alice DUPONT", Origins: []string{"France"}, X: 10, Y: 20},
		{NodeID: "222222", Name: "Bruno MARTIN", X: 30, Y: 40},
		{NodeID: "333333", Name: "Clara BERNARD", X: 50, Y: 60},
		{NodeID: "444444", Name: "David PETIT", X: 70, Y: 80},
		{Name: "Estelle ROUX", X: 90, Y: 100},
	}
	relations := []Relation{
		{EdgeID: "900001", SourceName: "Alice DUPONT", TargetName: "Bruno MARTIN", SourceNodeID: "111111", TargetNodeID: "222222", Type: RelationFamily},
		{EdgeID: "900002", SourceName: "Bruno MARTIN", TargetName: "Clara BERNARD", SourceNodeID: "222222", TargetNodeID: "333333", Type: RelationFriends},
		{EdgeID: "900003", SourceName: "Clara BERNARD", TargetName: "David PETIT", SourceNodeID: "333333", TargetNodeID: "444444", Type: RelationLove},
		{EdgeID: "900004", SourceName: "Alice DUPONT", TargetName: "Estelle ROUX", SourceNodeID: "111111", TargetNodeID: "", Type: RelationFamily},
	}
	return &RawGraph{Persons: persons, Relations: relations}
}

func edgeTypes(view *View) map[string]string {
	types := make(map[string]string, len(view.Edges))
	for _, e := range view.Edges {
		types[e.EdgeID] = e.Type
	}
	return types
}

func namedNodes(view *View) map[string]string {
	names := make(map[string]string)
	for _, n := range view.Nodes {
		if n.Name != "" {
			names[n.ID] = n.Name
		}
	}
	return names
}

func TestProjectAdminSeesEverything(t *testing.T) {
	view := Project(chainGraph(), viewer.Admin())

	require.Len(t, view.Nodes, 5)
	require.Len(t, view.Edges, 4)

	assert.Equal(t, "Alice DUPONT", view.Nodes[0].ID)
	assert.Equal(t, "111111", view.Nodes[0].NodeID)
	assert.Equal(t, []string{"France"}, view.Nodes[0].Origins)

	// Even the legacy person without a node id is present for admins.
	assert.Equal(t, "Estelle ROUX", view.Nodes[4].ID)

	assert.Equal(t, RelationFamily, view.Edges[0].Type)
	assert.Equal(t, "Alice DUPONT", view.Edges[0].Source)
	assert.Equal(t, "Bruno MARTIN", view.Edges[0].Target)
}

func TestProjectAnonymousIsFullyPseudonymized(t *testing.T) {
	view := Project(chainGraph(), viewer.Anonymous())

	// The person without a valid node id vanishes, along with her edge.
	require.Len(t, view.Nodes, 4)
	require.Len(t, view.Edges, 3)

	for _, node := range view.Nodes {
		assert.Empty(t, node.Name, "no name for anonymous viewers")
		assert.Empty(t, node.Origins, "no origins for anonymous viewers")
		assert.Regexp(t, `^[0-9]{6}$`, node.ID)
	}
	for _, edge := range view.Edges {
		assert.Equal(t, RelationHidden, edge.Type)
		assert.NotEmpty(t, edge.EdgeID, "edge ids are never hidden")
	}
}

func TestProjectCoordinatesAlwaysPresent(t *testing.T) {
	view := Project(chainGraph(), viewer.Anonymous())

	require.NotEmpty(t, view.Nodes)
	assert.Equal(t, float64(10), view.Nodes[0].X)
	assert.Equal(t, float64(20), view.Nodes[0].Y)
}

func TestProjectLevelOneSeesOnlyOwnName(t *testing.T) {
	alice := viewer.Authenticated("111111", 1, "alice@example.com")
	view := Project(chainGraph(), alice)

	assert.Equal(t, map[string]string{"111111": "Alice DUPONT"}, namedNodes(view))
	assert.Equal(t, []string{"France"}, view.Nodes[0].Origins,
		"origins travel with the name")
	for _, edge := range view.Edges {
		assert.Equal(t, RelationHidden, edge.Type)
	}
}

func TestProjectLevelTwoSeesOwnEdgeTypes(t *testing.T) {
	alice := viewer.Authenticated("111111", 2, "alice@example.com")
	view := Project(chainGraph(), alice)

	assert.Equal(t, map[string]string{"111111": "Alice DUPONT"}, namedNodes(view),
		"level 2 does not reveal neighbor names")

	types := edgeTypes(view)
	assert.Equal(t, RelationFamily, types["900001"], "edge touching the viewer")
	assert.Equal(t, RelationHidden, types["900002"])
	assert.Equal(t, RelationHidden, types["900003"])
}

func TestProjectLevelThreeSeesNeighborhood(t *testing.T) {
	alice := viewer.Authenticated("111111", 3, "alice@example.com")
	view := Project(chainGraph(), alice)

	assert.Equal(t, map[string]string{
		"111111": "Alice DUPONT",
		"222222": "Bruno MARTIN",
	}, namedNodes(view), "names on the viewer and direct neighbors only")

	types := edgeTypes(view)
	assert.Equal(t, RelationFamily, types["900001"])
	assert.Equal(t, RelationFriends, types["900002"], "both endpoints within two hops")
	assert.Equal(t, RelationHidden, types["900003"], "one endpoint beyond two hops")
}

func TestProjectStaleSessionFallsBackToAnonymous(t *testing.T) {
	// The account points at a node id that no longer exists in the graph.
	ghost := viewer.Authenticated("999999", 3, "ghost@example.com")
	view := Project(chainGraph(), ghost)

	assert.Empty(t, namedNodes(view))
	for _, edge := range view.Edges {
		assert.Equal(t, RelationHidden, edge.Type)
	}
}

func TestProjectIsDeterministic(t *testing.T) {
	alice := viewer.Authenticated("111111", 3, "alice@example.com")

	first := Project(chainGraph(), alice)
	second := Project(chainGraph(), alice)

	assert.Equal(t, first, second)
}

func TestProjectEmptyGraph(t *testing.T) {
	view := Project(&RawGraph{}, viewer.Anonymous())

	assert.Empty(t, view.Nodes)
	assert.Empty(t, view.Edges)
}

func TestRelationTypeForQuery(t *testing.T) {
	tests := []struct {
		name    string
		relType string
		wantErr bool
	}{
		{"family", RelationFamily, false},
		{"friends", RelationFriends, false},
		{"love", RelationLove, false},
		{"custom identifier", "COLLEGUES", false},
		{"with digits and underscore", "TYPE_2", false},
		{"lowercase rejected", "amis", true},
		{"injection rejected", "X]->() DETACH DELETE (n", true},
		{"empty rejected", "", true},
		{"leading digit rejected", "1TYPE", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := RelationTypeForQuery(tc.relType)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.relType, got)
		})
	}
}
