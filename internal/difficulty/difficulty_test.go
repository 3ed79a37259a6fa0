package difficulty

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// history builds n outcomes of which the first correct are true.
func history(n, correct int) []bool {
	h := make([]bool, n)
	for i := 0; i < correct; i++ {
		h[i] = true
	}
	return h
}

func TestEstimate(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name    string
		history []bool
		want    int
	}{
		{"no history", nil, 1},
		{"perfect but below min sample", history(9, 9), 1},
		{"perfect with min sample", history(10, 10), 2},
		{"above threshold large sample", history(20, 19), 2},
		{"exactly 0.9 is no change", history(10, 9), 1},
		{"exactly 0.6 is no change", history(10, 6), 1},
		{"between thresholds", history(10, 8), 1},
		{"below 0.6 floors at 1", history(10, 5), 1},
		{"below 0.6 small sample", history(2, 0), 1},
		{"single correct", history(1, 1), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Estimate(tt.history))
		})
	}
}

func TestEstimate_IgnoresOrder(t *testing.T) {
	p := DefaultPolicy()
	h := history(12, 11)
	h[0], h[11] = h[11], h[0]
	assert.Equal(t, 2, p.Estimate(h))
}

func TestEstimate_CustomBaseIsClamped(t *testing.T) {
	high := DefaultPolicy()
	high.Base = MaxLevel
	assert.Equal(t, MaxLevel, high.Estimate(history(10, 10)))

	mid := DefaultPolicy()
	mid.Base = 5
	assert.Equal(t, 4, mid.Estimate(history(10, 1)))
	assert.Equal(t, 6, mid.Estimate(history(10, 10)))

	low := DefaultPolicy()
	low.Base = -3
	assert.Equal(t, MinLevel, low.Estimate(nil))
}

func TestAccuracy(t *testing.T) {
	assert.Equal(t, 0.0, Accuracy(nil))
	assert.Equal(t, 0.75, Accuracy(history(4, 3)))
}
