package components

import (
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/stretchr/testify/assert"
)

func TestProgressBarWidth(t *testing.T) {
	for _, pct := range []float64{-10, 0, 42, 100, 150} {
		bar := NewProgressBar("", pct, false, 30)
		assert.Equal(t, 30, lipgloss.Width(bar.View()), "percent %v", pct)
	}
}

func TestProgressBarShowsPercent(t *testing.T) {
	bar := NewProgressBar("Go", 75, true, 40)
	view := bar.View()
	assert.Contains(t, view, "75%")
	assert.Contains(t, view, "Go")
}
