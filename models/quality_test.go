package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuality_Dimension(t *testing.T) {
	tests := []struct {
		quality Quality
		want    int
	}{
		{QualityThumbnail, 150},
		{QualityPreview, 300},
		{QualityMedium, 600},
		{QualityHigh, 1000},
	}

	for _, tt := range tests {
		t.Run(string(tt.quality), func(t *testing.T) {
			got, err := tt.quality.Dimension()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Quality("ultra").Dimension()
	assert.Error(t, err)
}

func TestParseQuality(t *testing.T) {
	q, err := ParseQuality("")
	require.NoError(t, err)
	assert.Equal(t, QualityPreview, q)

	q, err = ParseQuality("high")
	require.NoError(t, err)
	assert.Equal(t, QualityHigh, q)

	_, err = ParseQuality("HIGH")
	assert.Error(t, err)
}
