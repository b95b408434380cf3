package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ramp runs from cold to hot.
const ramp = " .:-=+*#%@"

type HeatmapOptions struct {
	// Width is the number of columns drawn; zero draws one per cell.
	Width int
	Theme Theme
	// Plain disables colour.
	Plain bool
}

// Heatmap shades a field slice indexed [j][i] with j growing upwards.
// The scale runs from the smallest to the largest finite value in rows.
func Heatmap(rows [][]float64, opts HeatmapOptions) string {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return ""
	}
	ny, nx := len(rows), len(rows[0])
	width := opts.Width
	if width <= 0 || width > nx {
		width = nx
	}
	// cells are about twice as tall as wide
	height := max(1, (ny*width/nx+1)/2)

	lo, hi := Range(rows)
	span := hi - lo
	if span == 0 {
		span = 1
	}

	var b strings.Builder
	for y := range height {
		j := ny - 1 - y*ny/height
		for x := range width {
			i := x * nx / width
			v := 0.0
			if i < len(rows[j]) {
				v = rows[j][i]
			}
			t := (v - lo) / span
			if math.IsNaN(t) {
				t = 0
			}
			t = max(0, min(1, t))
			c := string(ramp[int(t*float64(len(ramp)-1))])
			if opts.Plain {
				b.WriteString(c)
				continue
			}
			b.WriteString(lipgloss.NewStyle().Foreground(Blend(opts.Theme.Cold, opts.Theme.Hot, t)).Render(c))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Range returns the smallest and largest finite values in rows.
func Range(rows [][]float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, row := range rows {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo, hi = min(lo, v), max(hi, v)
		}
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}

// Legend renders the colour scale between lo and hi.
func Legend(lo, hi float64, theme Theme) string {
	var b strings.Builder
	for n := range len(ramp) {
		t := float64(n) / float64(len(ramp)-1)
		style := lipgloss.NewStyle().Foreground(Blend(theme.Cold, theme.Hot, t))
		b.WriteString(style.Render(string(ramp[n])))
	}
	return MetricValue.Render(formatFloat(lo)) + " " + b.String() + " " + MetricValue.Render(formatFloat(hi))
}
