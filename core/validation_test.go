package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateChunking(t *testing.T) {
	tests := []struct {
		name         string
		chunkSize    int
		chunkOverlap int
		wantErr      bool
	}{
		{"valid with overlap", 100, 20, false},
		{"valid without overlap", 100, 0, false},
		{"zero chunk size", 0, 0, true},
		{"negative chunk size", -1, 0, true},
		{"negative overlap", 100, -1, true},
		{"overlap equals size", 100, 100, true},
		{"overlap exceeds size", 100, 150, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChunking(tt.chunkSize, tt.chunkOverlap)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfiguration)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateMetric(t *testing.T) {
	assert.NoError(t, ValidateMetric(MetricL2))
	assert.NoError(t, ValidateMetric(MetricCosine))
	assert.NoError(t, ValidateMetric(MetricDot))
	assert.ErrorIs(t, ValidateMetric(Metric(99)), ErrInvalidMetric)
}

func TestValidateFragment(t *testing.T) {
	t.Run("valid fragment", func(t *testing.T) {
		err := ValidateFragment(&Fragment{Text: "some text", Offset: 0})
		assert.NoError(t, err)
	})

	t.Run("nil fragment", func(t *testing.T) {
		assert.ErrorIs(t, ValidateFragment(nil), ErrInvalidConfiguration)
	})

	t.Run("empty text", func(t *testing.T) {
		assert.ErrorIs(t, ValidateFragment(&Fragment{}), ErrInvalidConfiguration)
	})

	t.Run("negative offset", func(t *testing.T) {
		err := ValidateFragment(&Fragment{Text: "x", Offset: -1})
		assert.ErrorIs(t, err, ErrInvalidConfiguration)
	})

	t.Run("unembedded fragment is valid", func(t *testing.T) {
		err := ValidateFragment(&Fragment{Text: "x", Vector: nil})
		assert.NoError(t, err)
	})
}
