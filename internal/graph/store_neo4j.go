// Copyright (c) 2026 Toile. All rights reserved.
// Author: contact@toile.app

package graph

import (
	"context"
	"fmt"

	neo4jdriver "github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/toileapp/toile/internal/platform/apperr"
	platformneo4j "github.com/toileapp/toile/internal/platform/neo4j"
)

// Neo4jStore is the Cypher-backed implementation of [Store].
//
// Relationship types are interpolated into query text (Cypher cannot bind
// them as parameters) and must therefore pass [RelationTypeForQuery] before
// reaching any method that takes one.
type Neo4jStore struct {
	runner platformneo4j.Runner
}

func NewNeo4jStore(runner platformneo4j.Runner) *Neo4jStore {
	return &Neo4jStore{runner: runner}
}

// FetchGraph loads the full graph in a single query. The OPTIONAL MATCH
// keeps isolated persons in the result; persons appearing on several rows
// are deduplicated by name.
func (s *Neo4jStore) FetchGraph(ctx context.Context) (*RawGraph, error) {
	result, err := s.runner.Run(ctx,
		`MATCH (p:Person)
		 OPTIONAL MATCH (p)-[r]->(q:Person)
		 RETURN p, r, q`,
		nil)
	if err != nil {
		return nil, apperr.Unavailable("Graph store unavailable", err)
	}

	raw := &RawGraph{}
	seen := make(map[string]bool)
	for _, record := range result.Records {
		pv, _ := record.Get("p")
		node, ok := pv.(neo4jdriver.Node)
		if !ok {
			continue
		}
		person := personFromNode(node)
		if !seen[person.Name] {
			seen[person.Name] = true
			raw.Persons = append(raw.Persons, person)
		}

		rv, _ := record.Get("r")
		rel, ok := rv.(neo4jdriver.Relationship)
		if !ok {
			continue
		}
		qv, _ := record.Get("q")
		target, ok := qv.(neo4jdriver.Node)
		if !ok {
			continue
		}
		other := personFromNode(target)
		raw.Relations = append(raw.Relations, Relation{
			EdgeID:       stringProp(rel.Props, "edgeId"),
			SourceName:   person.Name,
			TargetName:   other.Name,
			SourceNodeID: person.NodeID,
			TargetNodeID: other.NodeID,
			Type:         rel.Type,
		})
	}
	return raw, nil
}

func (s *Neo4jStore) GetPerson(ctx context.Context, name string) (*Person, error) {
	return s.findPerson(ctx,
		`MATCH (p:Person {name: $key}) RETURN p LIMIT 1`, name)
}

func (s *Neo4jStore) GetPersonByNodeID(ctx context.Context, nodeID string) (*Person, error) {
	return s.findPerson(ctx,
		`MATCH (p:Person {nodeId: $key}) RETURN p LIMIT 1`, nodeID)
}

func (s *Neo4jStore) findPerson(ctx context.Context, query, key string) (*Person, error) {
	result, err := s.runner.Run(ctx, query, map[string]any{"key": key})
	if err != nil {
		return nil, apperr.Unavailable("Graph store unavailable", err)
	}
	if len(result.Records) == 0 {
		return nil, apperr.NotFound("Person")
	}
	pv, _ := result.Records[0].Get("p")
	node, ok := pv.(neo4jdriver.Node)
	if !ok {
		return nil, apperr.Internal(fmt.Errorf("graph: unexpected record shape for person lookup"))
	}
	person := personFromNode(node)
	return &person, nil
}

func (s *Neo4jStore) CreatePerson(ctx context.Context, p *Person) error {
	_, err := s.runner.Run(ctx,
		`CREATE (:Person {name: $name, origins: $origins, x: $x, y: $y, nodeId: $nodeId})`,
		map[string]any{
			"name":    p.Name,
			"origins": toAnySlice(p.Origins),
			"x":       p.X,
			"y":       p.Y,
			"nodeId":  p.NodeID,
		})
	if err != nil {
		return apperr.Unavailable("Graph store unavailable", err)
	}
	return nil
}

func (s *Neo4jStore) UpdatePerson(ctx context.Context, name string, update PersonUpdate) error {
	query := `MATCH (p:Person {name: $name})`
	params := map[string]any{"name": name}
	if update.NewName != nil {
		query += ` SET p.name = $newName`
		params["newName"] = *update.NewName
	}
	if update.Origins != nil {
		query += ` SET p.origins = $origins`
		params["origins"] = toAnySlice(*update.Origins)
	}
	query += ` RETURN p`

	result, err := s.runner.Run(ctx, query, params)
	if err != nil {
		return apperr.Unavailable("Graph store unavailable", err)
	}
	if len(result.Records) == 0 {
		return apperr.NotFound("Person")
	}
	return nil
}

func (s *Neo4jStore) UpdateCoordinates(ctx context.Context, name string, x, y float64) error {
	result, err := s.runner.Run(ctx,
		`MATCH (p:Person {name: $name}) SET p.x = $x, p.y = $y RETURN p`,
		map[string]any{"name": name, "x": x, "y": y})
	if err != nil {
		return apperr.Unavailable("Graph store unavailable", err)
	}
	if len(result.Records) == 0 {
		return apperr.NotFound("Person")
	}
	return nil
}

func (s *Neo4jStore) DeletePerson(ctx context.Context, name string) error {
	result, err := s.runner.Run(ctx,
		`MATCH (p:Person {name: $name}) DETACH DELETE p`,
		map[string]any{"name": name})
	if err != nil {
		return apperr.Unavailable("Graph store unavailable", err)
	}
	if result.Summary.Counters().NodesDeleted() == 0 {
		return apperr.NotFound("Person")
	}
	return nil
}

func (s *Neo4jStore) CreateRelation(ctx context.Context, source, target, relType, edgeID string) error {
	safeType, err := RelationTypeForQuery(relType)
	if err != nil {
		return err
	}
	result, err := s.runner.Run(ctx,
		fmt.Sprintf(`MATCH (a:Person {name: $source})
		 MATCH (b:Person {name: $target})
		 CREATE (a)-[:%s {edgeId: $edgeId}]->(b)`, safeType),
		map[string]any{"source": source, "target": target, "edgeId": edgeID})
	if err != nil {
		return apperr.Unavailable("Graph store unavailable", err)
	}
	// A zero counter means one of the MATCH clauses found nothing.
	if result.Summary.Counters().RelationshipsCreated() == 0 {
		return apperr.NotFound("Person")
	}
	return nil
}

func (s *Neo4jStore) DeleteRelation(ctx context.Context, source, target, relType string) error {
	safeType, err := RelationTypeForQuery(relType)
	if err != nil {
		return err
	}
	result, err := s.runner.Run(ctx,
		fmt.Sprintf(`MATCH (a:Person {name: $source})-[r:%s]->(b:Person {name: $target})
		 DELETE r`, safeType),
		map[string]any{"source": source, "target": target})
	if err != nil {
		return apperr.Unavailable("Graph store unavailable", err)
	}
	if result.Summary.Counters().RelationshipsDeleted() == 0 {
		return apperr.NotFound("Relation")
	}
	return nil
}

func (s *Neo4jStore) DeleteAllPersons(ctx context.Context) error {
	_, err := s.runner.Run(ctx, `MATCH (p:Person) DETACH DELETE p`, nil)
	if err != nil {
		return apperr.Unavailable("Graph store unavailable", err)
	}
	return nil
}

func (s *Neo4jStore) DeleteEverything(ctx context.Context) error {
	_, err := s.runner.Run(ctx, `MATCH (n) DETACH DELETE n`, nil)
	if err != nil {
		return apperr.Unavailable("Graph store unavailable", err)
	}
	return nil
}

func (s *Neo4jStore) NodeIDInUse(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx,
		`MATCH (p:Person {nodeId: $id}) RETURN p LIMIT 1`, id)
}

func (s *Neo4jStore) EdgeIDInUse(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx,
		`MATCH ()-[r]->() WHERE r.edgeId = $id RETURN r LIMIT 1`, id)
}

func (s *Neo4jStore) exists(ctx context.Context, query, id string) (bool, error) {
	result, err := s.runner.Run(ctx, query, map[string]any{"id": id})
	if err != nil {
		return false, apperr.Unavailable("Graph store unavailable", err)
	}
	return len(result.Records) > 0, nil
}

func (s *Neo4jStore) PersonsMissingNodeID(ctx context.Context) ([]string, error) {
	result, err := s.runner.Run(ctx,
		`MATCH (p:Person)
		 WHERE p.nodeId IS NULL OR NOT toString(p.nodeId) =~ '[0-9]{6}'
		 RETURN p.name AS name`,
		nil)
	if err != nil {
		return nil, apperr.Unavailable("Graph store unavailable", err)
	}
	var names []string
	for _, record := range result.Records {
		if v, ok := record.Get("name"); ok {
			if name, ok := v.(string); ok {
				names = append(names, name)
			}
		}
	}
	return names, nil
}

func (s *Neo4jStore) RelationsMissingEdgeID(ctx context.Context) ([]RelationKey, error) {
	result, err := s.runner.Run(ctx,
		`MATCH (a:Person)-[r]->(b:Person)
		 WHERE r.edgeId IS NULL OR NOT toString(r.edgeId) =~ '[0-9]{6}'
		 RETURN a.name AS source, b.name AS target, type(r) AS relType`,
		nil)
	if err != nil {
		return nil, apperr.Unavailable("Graph store unavailable", err)
	}
	var keys []RelationKey
	for _, record := range result.Records {
		key := RelationKey{}
		if v, ok := record.Get("source"); ok {
			key.Source, _ = v.(string)
		}
		if v, ok := record.Get("target"); ok {
			key.Target, _ = v.(string)
		}
		if v, ok := record.Get("relType"); ok {
			key.Type, _ = v.(string)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (s *Neo4jStore) AssignNodeID(ctx context.Context, name, nodeID string) error {
	result, err := s.runner.Run(ctx,
		`MATCH (p:Person {name: $name}) SET p.nodeId = $nodeId RETURN p`,
		map[string]any{"name": name, "nodeId": nodeID})
	if err != nil {
		return apperr.Unavailable("Graph store unavailable", err)
	}
	if len(result.Records) == 0 {
		return apperr.NotFound("Person")
	}
	return nil
}

func (s *Neo4jStore) AssignEdgeID(ctx context.Context, key RelationKey, edgeID string) error {
	safeType, err := RelationTypeForQuery(key.Type)
	if err != nil {
		return err
	}
	result, err := s.runner.Run(ctx,
		fmt.Sprintf(`MATCH (a:Person {name: $source})-[r:%s]->(b:Person {name: $target})
		 SET r.edgeId = $edgeId RETURN r`, safeType),
		map[string]any{"source": key.Source, "target": key.Target, "edgeId": edgeID})
	if err != nil {
		return apperr.Unavailable("Graph store unavailable", err)
	}
	if len(result.Records) == 0 {
		return apperr.NotFound("Relation")
	}
	return nil
}

// # Record Decoding

// personFromNode decodes a Person from node properties, tolerating legacy
// data: a single-string origins value and numeric coordinates stored as
// integers both decode cleanly.
func personFromNode(node neo4jdriver.Node) Person {
	props := node.Props
	return Person{
		NodeID:  stringProp(props, "nodeId"),
		Name:    stringProp(props, "name"),
		Origins: originsProp(props["origins"]),
		X:       floatProp(props, "x"),
		Y:       floatProp(props, "y"),
	}
}

func stringProp(props map[string]any, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}

func floatProp(props map[string]any, key string) float64 {
	switch v := props[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0
}

func originsProp(value any) []string {
	switch v := value.(type) {
	case []any:
		origins := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				origins = append(origins, s)
			}
		}
		return origins
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	}
	return nil
}

func toAnySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
