package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/flowsim/internal/storage"
)

// Styles are the lipgloss styles derived from a theme.
type Styles struct {
	Title  lipgloss.Style
	Label  lipgloss.Style
	Value  lipgloss.Style
	Hint   lipgloss.Style
	Marker lipgloss.Style
	Cursor lipgloss.Style
	Panel  lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(t.Title),
		Label:  lipgloss.NewStyle().Foreground(t.Label),
		Value:  lipgloss.NewStyle().Bold(true).Foreground(t.Value),
		Hint:   lipgloss.NewStyle().Italic(true).Foreground(t.Muted),
		Marker: lipgloss.NewStyle().Bold(true).Foreground(t.Marker),
		Cursor: lipgloss.NewStyle().Bold(true).Foreground(t.Cursor),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),
	}
}

// Summary renders a bordered panel describing a run and its metrics.
func Summary(meta *storage.RunMetadata, t Theme) string {
	st := NewStyles(t)

	rows := [][2]string{
		{"solver", meta.Solver},
		{"grid", fmt.Sprintf("%d x %d", meta.Nx, meta.Ny)},
		{"domain", fmt.Sprintf("%g x %g", meta.Lx, meta.Ly)},
		{"radius", fmt.Sprintf("%g", meta.Radius)},
		{"viscosity", fmt.Sprintf("%.4g", meta.Viscosity)},
		{"particles", fmt.Sprintf("%d", len(meta.Particles))},
	}
	if meta.Elapsed > 0 {
		rows = append(rows, [2]string{"elapsed", meta.Elapsed.String()})
	}

	names := make([]string, 0, len(meta.Metrics))
	for name := range meta.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rows = append(rows, [2]string{name, fmt.Sprintf("%.6g", meta.Metrics[name])})
	}

	width := 0
	for _, r := range rows {
		if len(r[0]) > width {
			width = len(r[0])
		}
	}

	var b strings.Builder
	title := "flow"
	if meta.ID != "" {
		title = meta.ID
	}
	b.WriteString(st.Title.Render(title))
	for _, r := range rows {
		b.WriteByte('\n')
		b.WriteString(st.Label.Render(fmt.Sprintf("%-*s", width, r[0])))
		b.WriteString("  ")
		b.WriteString(st.Value.Render(r[1]))
	}
	return st.Panel.Render(b.String())
}
