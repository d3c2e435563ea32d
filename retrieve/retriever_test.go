package retrieve

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/quarry/ai/mock"
	"github.com/poiesic/quarry/core"
	"github.com/poiesic/quarry/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDimension = 8

func seedIndex(t *testing.T, embedder *mock.MockEmbedder, texts ...string) *index.Index {
	t.Helper()

	idx, err := index.New(testDimension, core.MetricCosine)
	require.NoError(t, err)

	for _, text := range texts {
		vector, err := embedder.EmbedText(context.Background(), text)
		require.NoError(t, err)
		_, err = idx.Insert(core.Fragment{
			Text:     text,
			Metadata: map[string]string{"source": "seed.txt"},
			Vector:   vector,
		})
		require.NoError(t, err)
	}
	return idx
}

func TestNewRetriever_Validation(t *testing.T) {
	embedder := mock.NewMockEmbedderWithDimension(testDimension)
	idx, err := index.New(testDimension, core.MetricCosine)
	require.NoError(t, err)

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewRetriever(nil, idx)
		assert.ErrorIs(t, err, ErrEmbedderRequired)
	})

	t.Run("nil index", func(t *testing.T) {
		_, err := NewRetriever(embedder, nil)
		assert.ErrorIs(t, err, ErrIndexRequired)
	})

	t.Run("invalid top-k", func(t *testing.T) {
		_, err := NewRetriever(embedder, idx, WithTopK(0))
		assert.ErrorIs(t, err, ErrInvalidTopK)
	})
}

func TestRetrieve_NearestFirst(t *testing.T) {
	embedder := mock.NewMockEmbedderWithDimension(testDimension)
	idx := seedIndex(t, embedder,
		"Alice works at Acme Corp as an engineer",
		"The weather in spring is mild",
		"Bob plays the piano on weekends",
	)

	retriever, err := NewRetriever(embedder, idx, WithTopK(2))
	require.NoError(t, err)

	// The mock embedder is deterministic, so the verbatim text is its own
	// nearest neighbor.
	results, err := retriever.Retrieve(context.Background(), "Alice works at Acme Corp as an engineer")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Alice works at Acme Corp as an engineer", results[0].Fragment.Text)
	assert.InDelta(t, 0.0, results[0].Distance, 1e-6)
	assert.LessOrEqual(t, results[0].Distance, results[1].Distance)
}

func TestRetrieveK_TruncatesToIndexSize(t *testing.T) {
	embedder := mock.NewMockEmbedderWithDimension(testDimension)
	idx := seedIndex(t, embedder, "only entry")

	retriever, err := NewRetriever(embedder, idx)
	require.NoError(t, err)

	results, err := retriever.RetrieveK(context.Background(), "anything", 10, nil)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestRetrieve_EmptyIndex(t *testing.T) {
	embedder := mock.NewMockEmbedderWithDimension(testDimension)
	idx, err := index.New(testDimension, core.MetricCosine)
	require.NoError(t, err)

	retriever, err := NewRetriever(embedder, idx)
	require.NoError(t, err)

	_, err = retriever.Retrieve(context.Background(), "anything")
	assert.ErrorIs(t, err, core.ErrEmptyIndex)
}

func TestRetrieve_EmbeddingFailureSurfaces(t *testing.T) {
	embedder := mock.NewMockEmbedderWithDimension(testDimension)
	idx := seedIndex(t, embedder, "an entry")

	embedFailure := errors.New("upstream unavailable")
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, embedFailure
	}

	retriever, err := NewRetriever(embedder, idx)
	require.NoError(t, err)

	_, err = retriever.Retrieve(context.Background(), "anything")
	assert.ErrorIs(t, err, embedFailure)
}

func TestRetrieveK_MetadataFilter(t *testing.T) {
	embedder := mock.NewMockEmbedderWithDimension(testDimension)
	idx, err := index.New(testDimension, core.MetricCosine)
	require.NoError(t, err)

	insert := func(text, source string) {
		vector, embedErr := embedder.EmbedText(context.Background(), text)
		require.NoError(t, embedErr)
		_, insertErr := idx.Insert(core.Fragment{
			Text:     text,
			Metadata: map[string]string{"source": source},
			Vector:   vector,
		})
		require.NoError(t, insertErr)
	}
	insert("alpha fact", "a.txt")
	insert("beta fact", "b.txt")
	insert("gamma fact", "a.txt")

	retriever, err := NewRetriever(embedder, idx)
	require.NoError(t, err)

	results, err := retriever.RetrieveK(context.Background(), "fact", 3, Filter{"source": "a.txt"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, hit := range results {
		assert.Equal(t, "a.txt", hit.Fragment.Metadata["source"])
	}

	// Filtering happens after ranking, so a filter matching nothing leaves
	// an empty result rather than widening the search.
	results, err = retriever.RetrieveK(context.Background(), "fact", 3, Filter{"source": "missing.txt"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

type recordingMonitor struct {
	started    bool
	embedDim   int
	indexHits  int
	filterHits int
	finished   bool
}

func (m *recordingMonitor) Start(_ string, _ int)                  { m.started = true }
func (m *recordingMonitor) AfterQueryEmbedding(embedding []float32) { m.embedDim = len(embedding) }
func (m *recordingMonitor) AfterIndexQuery(hits []core.ScoredFragment) { m.indexHits = len(hits) }
func (m *recordingMonitor) AfterFiltering(hits []core.ScoredFragment)  { m.filterHits = len(hits) }
func (m *recordingMonitor) Finish(_ []core.ScoredFragment)             { m.finished = true }

func TestRetrieveWithMonitor_StageCallbacks(t *testing.T) {
	embedder := mock.NewMockEmbedderWithDimension(testDimension)
	idx := seedIndex(t, embedder, "first entry", "second entry")

	retriever, err := NewRetriever(embedder, idx)
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	_, err = retriever.RetrieveWithMonitor(context.Background(), "entry", 2, Filter{"source": "seed.txt"}, monitor)
	require.NoError(t, err)

	assert.True(t, monitor.started)
	assert.Equal(t, testDimension, monitor.embedDim)
	assert.Equal(t, 2, monitor.indexHits)
	assert.Equal(t, 2, monitor.filterHits)
	assert.True(t, monitor.finished)
}
