package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertWeight_RoundTrip(t *testing.T) {
	for _, x := range []float64{1, 16, 0.5} {
		got := ConvertWeight(ConvertWeight(x, "lb", "g"), "g", "lb")
		assert.InDelta(t, x, got, 1e-9)
	}
}

func TestConvertWeight_KnownValues(t *testing.T) {
	assert.InDelta(t, 1000, ConvertWeight(1, "kg", "g"), 1e-9)
	assert.InDelta(t, 453.592, ConvertWeight(1, "lb", "g"), 1e-9)
	assert.InDelta(t, 28.3495, ConvertWeight(1, "oz", "g"), 1e-9)
}

func TestConvertVolume_KnownValues(t *testing.T) {
	assert.InDelta(t, 1000, ConvertVolume(1, "l", "ml"), 1e-9)
	assert.InDelta(t, 14.7868, ConvertVolume(1, "tbsp", "ml"), 1e-9)
	assert.InDelta(t, 3, ConvertVolume(1, "tbsp", "tsp"), 0.01)
}

func TestConvertUnit_SameCategory(t *testing.T) {
	v, ok := ConvertUnit(2, "cups", "ml")
	assert.True(t, ok)
	assert.InDelta(t, 480, v, 1e-9)

	v, ok = ConvertUnit(500, "g", "kg")
	assert.True(t, ok)
	assert.InDelta(t, 0.5, v, 1e-9)
}

func TestConvertUnit_CrossCategorySentinel(t *testing.T) {
	// Volume→weight without density is physically ambiguous; soft failure.
	_, ok := ConvertUnit(1, "cup", "g")
	assert.False(t, ok)

	_, ok = ConvertUnit(1, "piece", "g")
	assert.False(t, ok)
}

func TestConvertUnit_IdenticalUnitsShortCircuit(t *testing.T) {
	// Count units scale only against themselves.
	v, ok := ConvertUnit(3, "pieces", "piece")
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)
}

func TestNormalizeUnit(t *testing.T) {
	cases := map[string]string{
		"  Tablespoons ": "tbsp",
		"tablespoon":     "tbsp",
		"TBSP":           "tbsp",
		"Grams":          "g",
		"lbs":            "lb",
		"Cups":           "cup",
		"fl oz":          "floz",
		"widgets":        "widgets", // unknown passes through
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeUnit(in), "input %q", in)
	}
}

func TestVolumeToWeight_DensityBridge(t *testing.T) {
	g, ok := VolumeToWeight("whole milk", 1, "cup")
	assert.True(t, ok)
	assert.InDelta(t, 240*1.03, g, 1e-6)

	_, ok = VolumeToWeight("grilled chicken", 1, "cup")
	assert.False(t, ok)

	// Weight input cannot be density-bridged.
	_, ok = VolumeToWeight("milk", 100, "g")
	assert.False(t, ok)
}
