// Package export writes field slices as standalone SVG images.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/heatlab/internal/viz"
)

// FieldToSVG draws every cell of a slice indexed [j][i] as a square of
// side scale, coloured along the theme ramp. j grows upwards.
func FieldToSVG(rows [][]float64, theme viz.Theme, scale float64) string {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return ""
	}
	ny, nx := len(rows), len(rows[0])
	width, height := float64(nx)*scale, float64(ny)*scale

	lo, hi := viz.Range(rows)
	span := hi - lo
	if span == 0 {
		span = 1
	}

	var sb strings.Builder
	header(&sb, width, height, string(theme.Cold))
	sb.WriteString("<g shape-rendering=\"crispEdges\">\n")
	for j, row := range rows {
		y := float64(ny-1-j) * scale
		for i, v := range row {
			fill := viz.Blend(theme.Cold, theme.Hot, (v-lo)/span)
			fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
				float64(i)*scale, y, scale, scale, fill)
		}
	}
	sb.WriteString("</g>\n</svg>\n")
	return sb.String()
}

// CanvasToSVG draws each set braille dot of a canvas as a circle.
func CanvasToSVG(canvas *viz.Canvas, scale float64, theme viz.Theme) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2
	height := float64(canvas.Height) * scale * 4

	var sb strings.Builder
	header(&sb, width, height, string(theme.Cold))
	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", theme.Hot)

	pixelMap := [4][2]int{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}
	dotRadius := scale * 0.4

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			if r <= 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f"/>`+"\n", cx, cy, dotRadius)
					}
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>\n")
	return sb.String()
}

// WriteSVG writes svg to w, failing on an empty image.
func WriteSVG(w io.Writer, svg string) error {
	if svg == "" {
		return fmt.Errorf("nothing to draw")
	}
	_, err := io.WriteString(w, svg)
	return err
}

func header(sb *strings.Builder, width, height float64, background string) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}
