package viz

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ccff"))

	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899"))

	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ff88"))

	FrameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 1)
)

// Series renders one tracked history as an ascii plot with a caption.
func Series(data []float64, caption string) string {
	if len(data) < 2 {
		return ""
	}
	graph := asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
	return graph + "\n"
}

// Stat formats one "label: value" line for the run summary.
func Stat(label string, value float64) string {
	return fmt.Sprintf("%s %s", LabelStyle.Render(label+":"), ValueStyle.Render(fmt.Sprintf("%.6g", value)))
}
