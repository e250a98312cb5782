package components

import (
	"github.com/charmbracelet/bubbles/progress"

	"tally/internal/ui/theme"
)

// ProgressBar renders ratio as a bar of width cells. Ratios outside [0,1]
// are clamped for display.
func ProgressBar(width int, ratio float64) string {
	if width < 1 {
		return ""
	}
	bar := progress.New(
		progress.WithWidth(width),
		progress.WithoutPercentage(),
		progress.WithSolidFill(string(theme.Green)),
		progress.WithFillCharacters('█', '░'),
	)
	bar.EmptyColor = string(theme.Surface1)
	return bar.ViewAs(min(max(ratio, 0), 1))
}
