package store_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/sitekb/internal/models"
	"github.com/xhad/sitekb/pkg/store"
)

// Set SITEKB_TEST_DATABASE_URL to a Postgres instance with pgvector available
// to run these tests.
func newTestPGVector(t *testing.T) *store.PGVector {
	t.Helper()
	conn := os.Getenv("SITEKB_TEST_DATABASE_URL")
	if conn == "" {
		t.Skip("SITEKB_TEST_DATABASE_URL not set")
	}

	vs, err := store.NewPGVector(context.Background(), store.PGVectorConfig{
		ConnString: conn,
		TableName:  "test_site_chunks",
	})
	require.NoError(t, err)
	t.Cleanup(vs.Close)
	return vs
}

func TestPGVectorPublishAndLoad(t *testing.T) {
	vs := newTestPGVector(t)
	ctx := context.Background()

	require.NoError(t, vs.Publish(ctx, testRecords()))

	got, err := vs.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, testRecords(), got)

	// A second publish with a different dimension replaces the table.
	next := []models.EmbeddingRecord{{URL: "https://example.com/", Content: "v2", Embedding: []float32{1, 0}}}
	require.NoError(t, vs.Publish(ctx, next))

	got, err = vs.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, next, got)
}

func TestPGVectorPublishEmpty(t *testing.T) {
	vs := newTestPGVector(t)
	assert.Error(t, vs.Publish(context.Background(), nil))
}
