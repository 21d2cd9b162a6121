package imaging

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  color.NRGBA
	}{
		{"short hex", "#f00", color.NRGBA{R: 255, A: 255}},
		{"long hex", "#00ff80", color.NRGBA{G: 255, B: 128, A: 255}},
		{"hex with alpha", "#0000ff80", color.NRGBA{B: 255, A: 128}},
		{"no hash", "ffffff", color.NRGBA{R: 255, G: 255, B: 255, A: 255}},
		{"upper case", "#ABCDEF", color.NRGBA{R: 0xab, G: 0xcd, B: 0xef, A: 255}},
		{"name", "navy", color.NRGBA{B: 128, A: 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseColor(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, color.NRGBAModel.Convert(got))
		})
	}
}

func TestParseColor_Invalid(t *testing.T) {
	for _, input := range []string{"", "#12", "#ggg", "not-a-color", "#1234567"} {
		_, err := ParseColor(input)
		assert.Error(t, err, input)
	}
}

func TestParseColorPair(t *testing.T) {
	pair, err := ParseColorPair("white", "#000")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, color.NRGBAModel.Convert(pair[0]))
	assert.Equal(t, color.NRGBA{A: 255}, color.NRGBAModel.Convert(pair[1]))

	_, err = ParseColorPair("white", "nope")
	assert.Error(t, err)
}
