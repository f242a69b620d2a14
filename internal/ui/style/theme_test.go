package style

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestGradientColor_Bounds(t *testing.T) {
	theme := DefaultTheme()
	assert.Equal(t, theme.GradientStart, theme.GradientColor(-1))
	assert.Equal(t, theme.GradientEnd, theme.GradientColor(2))

	mid := theme.GradientColor(0.5)
	assert.NotEqual(t, theme.GradientStart, mid)
	assert.NotEqual(t, theme.GradientEnd, mid)
}

func TestActivityBar_Width(t *testing.T) {
	theme := DefaultTheme()
	assert.Empty(t, theme.ActivityBar(0, 0.5))
	for _, phase := range []float64{0, 0.3, 0.99, 1} {
		assert.Equal(t, 20, lipgloss.Width(theme.ActivityBar(20, phase)), "phase %.2f", phase)
	}
}
