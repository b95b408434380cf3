package viz

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type Field struct {
	Label string
	Value string
}

// Summary renders labelled values in a bordered panel.
func Summary(title string, fields []Field) string {
	lines := make([]string, 0, len(fields)+1)
	lines = append(lines, HeaderStyle.Render(title))
	for _, f := range fields {
		lines = append(lines, MetricLabel.Render(f.Label)+MetricValue.Render(f.Value))
	}
	return Panel.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// MetricFields turns a metric map into sorted summary fields.
func MetricFields(values map[string]float64) []Field {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]Field, len(names))
	for i, name := range names {
		fields[i] = Field{Label: name, Value: formatFloat(values[name])}
	}
	return fields
}

// Status renders a pass or fail marker followed by msg.
func Status(ok bool, msg string) string {
	if ok {
		return StatusOK.Render("✓") + " " + msg
	}
	return StatusFail.Render("✗") + " " + msg
}

func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return fmt.Sprint(v)
	case v != 0 && (math.Abs(v) < 1e-3 || math.Abs(v) >= 1e6):
		return fmt.Sprintf("%.4e", v)
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.6f", v), "0"), ".")
}
