package quarry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/quarry/ai/mock"
	"github.com/poiesic/quarry/core"
	"github.com/poiesic/quarry/retrieve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, opts ...StoreOption) *Store {
	t.Helper()

	opts = append([]StoreOption{WithDimension(mock.DefaultDimension)}, opts...)
	store, err := OpenWithProvider(mock.NewMockProvider(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_IngestAndQuery(t *testing.T) {
	store := openTestStore(t)

	report, err := store.IngestSegments(context.Background(), []core.RawSegment{
		{Text: "Alice works at Acme Corp as an engineer"},
		{Text: "Bob tends a rooftop garden"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Completed)
	assert.Equal(t, 2, store.Size())

	results, err := store.Query(context.Background(), "Alice works at Acme Corp as an engineer", 1, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Alice works at Acme Corp as an engineer", results[0].Fragment.Text)
}

func TestStore_QueryDefaultK(t *testing.T) {
	store := openTestStore(t, WithTopK(2))

	_, err := store.IngestSegments(context.Background(), []core.RawSegment{
		{Text: "first"}, {Text: "second"}, {Text: "third"},
	})
	require.NoError(t, err)

	results, err := store.Query(context.Background(), "first", 0, nil)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestStore_Answer(t *testing.T) {
	store := openTestStore(t)

	_, err := store.IngestSegments(context.Background(), []core.RawSegment{
		{Text: "Alice works at Acme Corp"},
	})
	require.NoError(t, err)

	result, err := store.Answer(context.Background(), "Where does Alice work?")
	require.NoError(t, err)
	assert.Equal(t, "Answer: Where does Alice work?", result.Text)
	assert.NotEmpty(t, result.Fragments)
}

func TestStore_AnswerHonorsTopK(t *testing.T) {
	store := openTestStore(t, WithTopK(1))

	_, err := store.IngestSegments(context.Background(), []core.RawSegment{
		{Text: "Alice works at Acme Corp"},
		{Text: "Bob tends a rooftop garden"},
		{Text: "Carol restores old radios"},
	})
	require.NoError(t, err)

	result, err := store.Answer(context.Background(), "Alice works at Acme Corp")
	require.NoError(t, err)
	assert.Len(t, result.Fragments, 1)
}

func TestStore_AnswerOnEmptyStore(t *testing.T) {
	store := openTestStore(t)

	result, err := store.Answer(context.Background(), "Where does Alice work?")
	require.NoError(t, err)
	assert.Equal(t, "I don't have enough information to answer that.", result.Text)
}

func TestStore_QueryGroupsCoworkers(t *testing.T) {
	// Embeddings point along a per-company direction, so the two Acme
	// fragments must both beat the Globex one for an Acme query.
	vectors := map[string][]float32{
		"Alice works at Acme.": {0.9, 0.1, 0},
		"Bob works at Globex.": {0.1, 0.9, 0},
		"Carol works at Acme.": {0.8, 0.2, 0},
		"Who works at Acme?":   {1, 0, 0},
	}
	embedOne := func(text string) ([]float32, error) {
		vector, ok := vectors[text]
		if !ok {
			return nil, fmt.Errorf("no stubbed embedding for %q", text)
		}
		return vector, nil
	}

	embedder := mock.NewMockEmbedderWithDimension(3)
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return embedOne(text)
	}
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i, text := range texts {
			vector, err := embedOne(text)
			if err != nil {
				return nil, err
			}
			out[i] = vector
		}
		return out, nil
	}

	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockGenerator())
	store, err := OpenWithProvider(provider, WithDimension(3))
	require.NoError(t, err)
	defer store.Close()

	_, err = store.IngestSegments(context.Background(), []core.RawSegment{
		{Text: "Alice works at Acme."},
		{Text: "Bob works at Globex."},
		{Text: "Carol works at Acme."},
	})
	require.NoError(t, err)

	results, err := store.Query(context.Background(), "Who works at Acme?", 2, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)

	texts := []string{results[0].Fragment.Text, results[1].Fragment.Text}
	assert.Contains(t, texts, "Alice works at Acme.")
	assert.Contains(t, texts, "Carol works at Acme.")
	assert.NotContains(t, texts, "Bob works at Globex.")
}

func TestStore_IngestFile(t *testing.T) {
	store := openTestStore(t)

	path := filepath.Join(t.TempDir(), "people.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,employer\nAlice,Acme Corp\n"), 0644))

	report, err := store.IngestFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Completed)

	results, err := store.Query(context.Background(), "Alice", 1, retrieve.Filter{"name": "Alice"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "people.csv", results[0].Fragment.Metadata["source"])
}

func TestStore_SaveWithoutStorePath(t *testing.T) {
	store := openTestStore(t)

	err := store.Save(context.Background())
	assert.ErrorIs(t, err, ErrNoSnapshotStore)
}

func TestStore_PersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := OpenWithProvider(mock.NewMockProvider(),
		WithDimension(mock.DefaultDimension),
		WithStorePath(dir))
	require.NoError(t, err)

	_, err = store.IngestSegments(ctx, []core.RawSegment{
		{Text: "Alice works at Acme Corp"},
		{Text: "Bob tends a rooftop garden"},
	})
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx))
	require.NoError(t, store.Close())

	reopened, err := OpenWithProvider(mock.NewMockProvider(),
		WithDimension(mock.DefaultDimension),
		WithStorePath(dir))
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, 2, reopened.Size())

	results, err := reopened.Query(ctx, "Alice works at Acme Corp", 1, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Alice works at Acme Corp", results[0].Fragment.Text)
}

func TestStore_IncompatibleSnapshotRejected(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := OpenWithProvider(mock.NewMockProvider(),
		WithDimension(mock.DefaultDimension),
		WithStorePath(dir))
	require.NoError(t, err)

	_, err = store.IngestSegments(ctx, []core.RawSegment{{Text: "a fact"}})
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx))
	require.NoError(t, store.Close())

	// Reopening under a different metric must fail loudly, not rebuild.
	_, err = OpenWithProvider(mock.NewMockProvider(),
		WithDimension(mock.DefaultDimension),
		WithMetric(core.MetricL2),
		WithStorePath(dir))
	assert.ErrorIs(t, err, core.ErrIncompatibleIndex)
}

func TestStore_InvalidChunking(t *testing.T) {
	_, err := OpenWithProvider(mock.NewMockProvider(),
		WithDimension(mock.DefaultDimension),
		WithChunking(100, 100))
	assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
}
