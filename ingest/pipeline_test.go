package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/poiesic/quarry/ai/mock"
	"github.com/poiesic/quarry/core"
	"github.com/poiesic/quarry/fragment"
	"github.com/poiesic/quarry/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDimension = 8

func newTestPipeline(t *testing.T, opts ...Option) (*Pipeline, *index.Index, *mock.MockEmbedder) {
	t.Helper()

	fragmenter, err := fragment.NewFragmenter(512, 0)
	require.NoError(t, err)

	idx, err := index.New(testDimension, core.MetricCosine)
	require.NoError(t, err)

	embedder := mock.NewMockEmbedderWithDimension(testDimension)

	pipeline, err := NewPipeline(fragmenter, embedder, idx, opts...)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	return pipeline, idx, embedder
}

func makeSegments(count int) []core.RawSegment {
	segments := make([]core.RawSegment, count)
	for i := range segments {
		segments[i] = core.RawSegment{
			Text:     fmt.Sprintf("segment %d content", i),
			Metadata: map[string]string{"document_id": "doc-1"},
		}
	}
	return segments
}

func TestNewPipeline_Validation(t *testing.T) {
	fragmenter, err := fragment.NewFragmenter(512, 0)
	require.NoError(t, err)
	idx, err := index.New(testDimension, core.MetricCosine)
	require.NoError(t, err)
	embedder := mock.NewMockEmbedderWithDimension(testDimension)

	t.Run("nil fragmenter", func(t *testing.T) {
		_, err := NewPipeline(nil, embedder, idx)
		assert.ErrorIs(t, err, ErrFragmenterRequired)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewPipeline(fragmenter, nil, idx)
		assert.ErrorIs(t, err, ErrEmbedderRequired)
	})

	t.Run("nil index", func(t *testing.T) {
		_, err := NewPipeline(fragmenter, embedder, nil)
		assert.ErrorIs(t, err, ErrIndexRequired)
	})

	t.Run("invalid batch size", func(t *testing.T) {
		_, err := NewPipeline(fragmenter, embedder, idx, WithBatchSize(0))
		assert.ErrorIs(t, err, ErrInvalidBatchSize)
	})
}

func TestIngest_AllFragmentsCommitted(t *testing.T) {
	pipeline, idx, _ := newTestPipeline(t, WithBatchSize(4))

	report, err := pipeline.Ingest(context.Background(), makeSegments(10))
	require.NoError(t, err)
	assert.Equal(t, 10, report.Requested)
	assert.Equal(t, 10, report.Completed)
	assert.Equal(t, 10, idx.Size())
}

func TestIngest_EmptyInput(t *testing.T) {
	pipeline, idx, embedder := newTestPipeline(t)

	report, err := pipeline.Ingest(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, Report{}, report)
	assert.Equal(t, 0, idx.Size())
	assert.Equal(t, 0, embedder.CallCount())
}

func TestIngest_WhitespaceOnlySegmentsYieldNothing(t *testing.T) {
	pipeline, idx, _ := newTestPipeline(t)

	report, err := pipeline.Ingest(context.Background(), []core.RawSegment{
		{Text: "   \n\t  "},
	})
	require.NoError(t, err)
	assert.Equal(t, Report{}, report)
	assert.Equal(t, 0, idx.Size())
}

func TestIngest_PartialFailureCommitsCleanPrefix(t *testing.T) {
	pipeline, idx, embedder := newTestPipeline(t, WithBatchSize(3))

	// 9 fragments in 3 batches; the batch holding segment 3 (the second
	// batch) fails to embed.
	embedFailure := errors.New("upstream unavailable")
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		for _, text := range texts {
			if strings.Contains(text, "segment 3 ") {
				return nil, embedFailure
			}
		}
		vectors := make([][]float32, len(texts))
		for i, text := range texts {
			vectors[i] = mock.DeterministicVector(text, testDimension)
		}
		return vectors, nil
	}

	report, err := pipeline.Ingest(context.Background(), makeSegments(9))
	require.ErrorIs(t, err, embedFailure)
	assert.Equal(t, 9, report.Requested)
	assert.Equal(t, 3, report.Completed)
	assert.Equal(t, 3, idx.Size())

	// Only the first batch is retrievable.
	query := mock.DeterministicVector("segment 0 content", testDimension)
	results, queryErr := idx.Query(query, 9)
	require.NoError(t, queryErr)
	require.Len(t, results, 3)
	for _, scored := range results {
		assert.Contains(t, []string{
			"segment 0 content",
			"segment 1 content",
			"segment 2 content",
		}, scored.Fragment.Text)
	}
}

func TestIngest_FirstBatchFailureCommitsNothing(t *testing.T) {
	pipeline, idx, embedder := newTestPipeline(t, WithBatchSize(3))

	embedFailure := errors.New("upstream unavailable")
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, embedFailure
	}

	report, err := pipeline.Ingest(context.Background(), makeSegments(6))
	require.ErrorIs(t, err, embedFailure)
	assert.Equal(t, 6, report.Requested)
	assert.Equal(t, 0, report.Completed)
	assert.Equal(t, 0, idx.Size())
}

func TestIngest_DimensionMismatchStopsCommit(t *testing.T) {
	pipeline, idx, embedder := newTestPipeline(t, WithBatchSize(2))

	// Embedder drifts to the wrong dimension; insert must reject it.
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i, text := range texts {
			vectors[i] = mock.DeterministicVector(text, testDimension+1)
		}
		return vectors, nil
	}

	report, err := pipeline.Ingest(context.Background(), makeSegments(4))
	require.ErrorIs(t, err, core.ErrDimensionMismatch)
	assert.Equal(t, 0, report.Completed)
	assert.Equal(t, 0, idx.Size())
}

func TestIngest_FragmentsAreSplitBeforeEmbedding(t *testing.T) {
	fragmenter, err := fragment.NewFragmenter(10, 2)
	require.NoError(t, err)
	idx, err := index.New(testDimension, core.MetricL2)
	require.NoError(t, err)
	embedder := mock.NewMockEmbedderWithDimension(testDimension)

	pipeline, err := NewPipeline(fragmenter, embedder, idx)
	require.NoError(t, err)
	defer pipeline.Release()

	report, err := pipeline.Ingest(context.Background(), []core.RawSegment{
		{Text: "a text long enough to require several windows"},
	})
	require.NoError(t, err)
	assert.Greater(t, report.Requested, 1)
	assert.Equal(t, report.Requested, report.Completed)
	assert.Equal(t, report.Completed, idx.Size())
}
