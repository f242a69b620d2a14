package style

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Theme holds the styled components of the live view.
type Theme struct {
	// Base colors
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Muted   lipgloss.Color
	Error   lipgloss.Color
	Success lipgloss.Color

	BgMedium lipgloss.Color

	// Text
	TextPrimary   lipgloss.Color
	TextSecondary lipgloss.Color
	TextMuted     lipgloss.Color

	// Gradient colors for bars
	GradientStart lipgloss.Color
	GradientEnd   lipgloss.Color

	// Styles
	TitleStyle lipgloss.Style
	PathStyle  lipgloss.Style
	StatStyle  lipgloss.Style
	ErrorText  lipgloss.Style
	DoneText   lipgloss.Style
	HelpKey    lipgloss.Style
	HelpDesc   lipgloss.Style
	BoxStyle   lipgloss.Style
}

// DefaultTheme returns the default dark theme.
func DefaultTheme() Theme {
	t := Theme{
		Primary: lipgloss.Color("#7B2FBE"),
		Accent:  lipgloss.Color("#61AFEF"),
		Muted:   lipgloss.Color("#5C6370"),
		Error:   lipgloss.Color("#E06C75"),
		Success: lipgloss.Color("#98C379"),

		BgMedium: lipgloss.Color("#282A36"),

		TextPrimary:   lipgloss.Color("#CDD6F4"),
		TextSecondary: lipgloss.Color("#BAC2DE"),
		TextMuted:     lipgloss.Color("#6C7086"),

		GradientStart: lipgloss.Color("#7B2FBE"),
		GradientEnd:   lipgloss.Color("#00D4AA"),
	}

	t.TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary)

	t.PathStyle = lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true)

	t.StatStyle = lipgloss.NewStyle().
		Foreground(t.TextSecondary)

	t.ErrorText = lipgloss.NewStyle().
		Foreground(t.Error)

	t.DoneText = lipgloss.NewStyle().
		Foreground(t.Success).
		Bold(true)

	t.HelpKey = lipgloss.NewStyle().
		Foreground(t.Primary).
		Bold(true)

	t.HelpDesc = lipgloss.NewStyle().
		Foreground(t.TextMuted)

	t.BoxStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(0, 1)

	return t
}

// GradientColor returns a color interpolated between gradient start and end.
func (t Theme) GradientColor(ratio float64) lipgloss.Color {
	if ratio <= 0 {
		return t.GradientStart
	}
	if ratio >= 1 {
		return t.GradientEnd
	}

	c1, _ := colorful.Hex(string(t.GradientStart))
	c2, _ := colorful.Hex(string(t.GradientEnd))
	blended := c1.BlendLab(c2, ratio)
	return lipgloss.Color(blended.Hex())
}

// ActivityBar renders a bar of the given width with a short gradient pulse
// centred at phase (0..1). It animates an operation of unknown length.
func (t Theme) ActivityBar(width int, phase float64) string {
	if width <= 0 {
		return ""
	}
	pulse := max(width/4, 1)
	head := int(phase * float64(width+pulse))

	var buf strings.Builder
	buf.Grow(width * 20) // rough estimate with ANSI codes

	dim := lipgloss.NewStyle().Foreground(t.TextMuted)
	for i := 0; i < width; i++ {
		offset := head - i
		if offset < 0 || offset >= pulse {
			buf.WriteString(dim.Render("─"))
			continue
		}
		ratio := float64(offset) / float64(max(pulse-1, 1))
		buf.WriteString(lipgloss.NewStyle().Foreground(t.GradientColor(ratio)).Render("━"))
	}
	return buf.String()
}
