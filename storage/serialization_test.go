package storage

import (
	"testing"

	"github.com/poiesic/quarry/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalSnapshotMeta(t *testing.T) {
	tests := []struct {
		name string
		meta SnapshotMeta
	}{
		{"empty index", SnapshotMeta{Dimension: 3, Metric: core.MetricL2, Count: 0}},
		{"populated index", SnapshotMeta{Dimension: 384, Metric: core.MetricCosine, Count: 1024}},
		{"dot metric", SnapshotMeta{Dimension: 1536, Metric: core.MetricDot, Count: 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalSnapshotMeta(tt.meta)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalSnapshotMeta(data)
			require.NoError(t, err)
			assert.Equal(t, tt.meta, decoded)
		})
	}
}

func TestUnmarshalSnapshotMeta_Truncated(t *testing.T) {
	meta := SnapshotMeta{Dimension: 384, Metric: core.MetricCosine, Count: 500}
	data := MarshalSnapshotMeta(meta)

	_, err := UnmarshalSnapshotMeta(data[:1])
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalFragment(t *testing.T) {
	fragment := &core.Fragment{
		Id:   core.IDFromContent("doc-1:0:hello"),
		Text: "hello world",
		Metadata: map[string]string{
			"source":      "people.csv",
			"document_id": "doc-1",
			"row":         "3",
		},
		Offset: 42,
		Vector: []float32{0.25, -1.5, 0, 3.125},
	}

	data := MarshalFragment(fragment)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalFragment(data)
	require.NoError(t, err)
	assert.Equal(t, fragment.Id, decoded.Id)
	assert.Equal(t, fragment.Text, decoded.Text)
	assert.Equal(t, fragment.Metadata, decoded.Metadata)
	assert.Equal(t, fragment.Offset, decoded.Offset)
	assert.Equal(t, fragment.Vector, decoded.Vector)
}

func TestMarshalUnmarshalFragment_Minimal(t *testing.T) {
	fragment := &core.Fragment{Id: 1, Text: "x"}

	decoded, err := UnmarshalFragment(MarshalFragment(fragment))
	require.NoError(t, err)
	assert.Equal(t, fragment.Id, decoded.Id)
	assert.Equal(t, fragment.Text, decoded.Text)
	assert.Empty(t, decoded.Metadata)
	assert.Empty(t, decoded.Vector)
}

func TestUnmarshalFragment_Invalid(t *testing.T) {
	_, err := UnmarshalFragment([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}
