package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySetGet(t *testing.T) {
	ctx := context.Background()
	g := NewMemory()

	require.NoError(t, g.SetDocument(ctx, "projects", "p1", map[string]any{"name": "Rollout"}))
	require.NoError(t, g.SetDocument(ctx, "projects", "p2", map[string]any{"name": "Audit"}))

	recs, err := g.GetCollection(ctx, "projects")
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	// replace semantics
	require.NoError(t, g.SetDocument(ctx, "projects", "p1", map[string]any{"name": "Renamed"}))
	recs, _ = g.GetCollection(ctx, "projects")
	for _, r := range recs {
		if r.ID == "p1" {
			assert.Equal(t, "Renamed", r.Fields["name"])
			assert.NotContains(t, r.Fields, "status")
		}
	}
}

func TestMemoryUpdateRequiresExistence(t *testing.T) {
	ctx := context.Background()
	g := NewMemory()

	err := g.UpdateDocument(ctx, "notes", "missing", map[string]any{"title": "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, g.SetDocument(ctx, "notes", "n1", map[string]any{"title": "a", "status": "Pending"}))
	require.NoError(t, g.UpdateDocument(ctx, "notes", "n1", map[string]any{"status": "Completed"}))

	recs, _ := g.GetCollection(ctx, "notes")
	require.Len(t, recs, 1)
	assert.Equal(t, "a", recs[0].Fields["title"])
	assert.Equal(t, "Completed", recs[0].Fields["status"])
}

func TestMemoryDeleteByQuery(t *testing.T) {
	ctx := context.Background()
	g := NewMemory()

	require.NoError(t, g.SetDocument(ctx, "worklogs", "w1", map[string]any{"memberId": "u1"}))
	require.NoError(t, g.SetDocument(ctx, "worklogs", "w2", map[string]any{"memberId": "u2"}))
	require.NoError(t, g.SetDocument(ctx, "worklogs", "w3", map[string]any{"memberId": "u1"}))

	require.NoError(t, g.DeleteByQuery(ctx, "worklogs", "memberId", "u1"))

	recs, _ := g.GetCollection(ctx, "worklogs")
	require.Len(t, recs, 1)
	assert.Equal(t, "w2", recs[0].ID)
}

func TestMemoryBatchOps(t *testing.T) {
	ctx := context.Background()
	g := NewMemory()

	err := g.BatchWrite(ctx, "team", []Record{{ID: "", Fields: map[string]any{}}})
	assert.Error(t, err)

	require.NoError(t, g.BatchWrite(ctx, "team", []Record{
		{ID: "u1", Fields: map[string]any{"name": "Avery"}},
		{ID: "u2", Fields: map[string]any{"name": "Sam"}},
	}))
	require.NoError(t, g.BatchDelete(ctx, "team", []string{"u1", "unknown"}))

	recs, _ := g.GetCollection(ctx, "team")
	require.Len(t, recs, 1)
	assert.Equal(t, "u2", recs[0].ID)
}

func TestMemoryAddDocumentAssignsID(t *testing.T) {
	ctx := context.Background()
	g := NewMemory()

	id, err := g.AddDocument(ctx, "activities", map[string]any{"type": "login"})
	require.NoError(t, err)
	assert.Len(t, id, 20)

	recs, _ := g.GetCollection(ctx, "activities")
	require.Len(t, recs, 1)
	assert.Equal(t, id, recs[0].ID)
}

func TestMemoryIsolation(t *testing.T) {
	ctx := context.Background()
	g := NewMemory()

	fields := map[string]any{"tags": []any{"a"}}
	require.NoError(t, g.SetDocument(ctx, "notes", "n1", fields))
	fields["tags"].([]any)[0] = "mutated"

	recs, _ := g.GetCollection(ctx, "notes")
	assert.Equal(t, []any{"a"}, recs[0].Fields["tags"])
}
