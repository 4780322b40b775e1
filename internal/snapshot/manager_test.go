// Copyright (c) 2026 Toile. All rights reserved.
// Author: contact@toile.app

package snapshot

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toileapp/toile/internal/graph"
	"github.com/toileapp/toile/internal/platform/apperr"
)

// fakeGraph holds a mutable dump and records restores.
type fakeGraph struct {
	dump     graph.Dump
	restored []graph.Dump
	dumpErr  error
}

func (f *fakeGraph) Dump(context.Context) (*graph.Dump, error) {
	if f.dumpErr != nil {
		return nil, f.dumpErr
	}
	copied := f.dump
	return &copied, nil
}

func (f *fakeGraph) RestoreDump(_ context.Context, dump *graph.Dump) (int, int, error) {
	f.restored = append(f.restored, *dump)
	f.dump = *dump
	return len(dump.Nodes), len(dump.Edges), nil
}

func newTestManager(t *testing.T, source GraphSource) *Manager {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return NewManager(store, source, slog.New(slog.DiscardHandler))
}

func twoPersonDump() graph.Dump {
	return graph.Dump{
		Nodes: []graph.Person{
			{NodeID: "111111", Name: "Alice DUPONT", X: 1, Y: 2},
			{NodeID: "222222", Name: "Bruno MARTIN", X: 3, Y: 4},
		},
		Edges: []graph.DumpEdge{
			{Source: "Alice DUPONT", Target: "Bruno MARTIN", Type: graph.RelationFamily, EdgeID: "900001"},
		},
	}
}

func TestManagerCreateAndGet(t *testing.T) {
	source := &fakeGraph{dump: twoPersonDump()}
	manager := newTestManager(t, source)

	created, err := manager.Create(context.Background(), "before big edit", "admin")
	require.NoError(t, err)
	assert.Len(t, created.ID, 8)
	assert.Contains(t, created.Filename, created.ID)
	assert.Equal(t, 2, created.Nodes)
	assert.Equal(t, 1, created.Edges)

	s, err := manager.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "before big edit", s.Message)
	assert.Equal(t, "admin", s.Author)
	assert.Equal(t, source.dump.Nodes, s.Nodes)
	assert.Equal(t, source.dump.Edges, s.Edges)
}

func TestManagerListNewestFirst(t *testing.T) {
	source := &fakeGraph{dump: twoPersonDump()}
	manager := newTestManager(t, source)

	stamps := []time.Time{
		time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC),
	}
	manager.now = func() time.Time {
		stamp := stamps[0]
		stamps = stamps[1:]
		return stamp
	}

	_, err := manager.Create(context.Background(), "first", "admin")
	require.NoError(t, err)
	_, err = manager.Create(context.Background(), "second", "admin")
	require.NoError(t, err)

	metas, err := manager.List()
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, "second", metas[0].Message)
	assert.Equal(t, "first", metas[1].Message)
}

func TestManagerGetUnknownID(t *testing.T) {
	manager := newTestManager(t, &fakeGraph{})

	_, err := manager.Get("deadbeef")

	assert.True(t, apperr.IsNotFound(err))
}

func TestManagerRestoreTakesSafetySnapshotFirst(t *testing.T) {
	source := &fakeGraph{dump: twoPersonDump()}
	manager := newTestManager(t, source)

	created, err := manager.Create(context.Background(), "good state", "admin")
	require.NoError(t, err)

	// The graph drifts after the capture.
	source.dump = graph.Dump{
		Nodes: []graph.Person{{NodeID: "333333", Name: "Clara BERNARD"}},
	}

	result, err := manager.Restore(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, result.RestoredFrom)
	assert.Equal(t, 2, result.Nodes)
	assert.Equal(t, 1, result.Edges)

	// The drifted state was captured before being overwritten.
	safety, err := manager.Get(result.SafetyID)
	require.NoError(t, err)
	assert.Equal(t, "system", safety.Author)
	require.Len(t, safety.Nodes, 1)
	assert.Equal(t, "Clara BERNARD", safety.Nodes[0].Name)

	// And the live graph now matches the restored snapshot.
	require.Len(t, source.restored, 1)
	assert.Equal(t, twoPersonDump(), source.restored[0])
}

func TestManagerRestoreUnknownIDLeavesGraphUntouched(t *testing.T) {
	source := &fakeGraph{dump: twoPersonDump()}
	manager := newTestManager(t, source)

	_, err := manager.Restore(context.Background(), "deadbeef")

	assert.True(t, apperr.IsNotFound(err))
	assert.Empty(t, source.restored)
}

func TestFileStoreSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	manager := NewManager(store, &fakeGraph{dump: twoPersonDump()}, slog.New(slog.DiscardHandler))
	_, err = manager.Create(context.Background(), "keep me", "admin")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a snapshot"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "snapshot-corrupt-aaaa.json"), []byte("{broken"), 0o644))

	metas, err := store.List()
	require.NoError(t, err)
	require.Len(t, metas, 1)
	assert.Equal(t, "keep me", metas[0].Message)
}
