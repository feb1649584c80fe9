package headless

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/l1jgo/statecore/internal/platform"
)

func TestCells(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"hello", 5},
		{"天堂", 4},
		{"ＡＢ", 4},
		{"é", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Cells(tt.in), "Cells(%q)", tt.in)
	}
}

func TestMeasure(t *testing.T) {
	ts := NewTextSystem()

	assert.Equal(t, platform.Size{}, ts.Measure("", 10))
	assert.InDelta(t, 20, ts.Measure("abcd", 10).Width, 1e-4)
	assert.InDelta(t, 12, ts.Measure("abcd", 10).Height, 1e-4)

	multi := ts.Measure("ab\n天堂天", 10)
	assert.InDelta(t, 30, multi.Width, 1e-4)
	assert.InDelta(t, 24, multi.Height, 1e-4)
}
