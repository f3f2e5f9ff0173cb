package viz

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/flowsim/internal/field"
	"github.com/san-kum/flowsim/internal/particle"
)

// Mode selects the scalar shown by the viewer's heatmap.
type Mode int

const (
	ModeSpeed Mode = iota
	ModeVx
	ModeVy
)

func (m Mode) String() string {
	switch m {
	case ModeVx:
		return "vx"
	case ModeVy:
		return "vy"
	}
	return "speed"
}

// shades run from low to high.
var shades = []rune{' ', '░', '▒', '▓', '█'}

// chrome is the number of terminal rows used by everything but the heatmap.
const chrome = 5

// Viewer is a bubbletea model showing a velocity field as a shaded heatmap
// with a probe cursor. Cursor coordinates are grid indices.
type Viewer struct {
	title  string
	field  *field.VectorField
	speed  *field.Grid
	set    *particle.Set
	mode   Mode
	theme  int
	cx, cy int
	width  int
	height int
}

func NewViewer(title string, f *field.VectorField, set *particle.Set) Viewer {
	return Viewer{
		title:  title,
		field:  f,
		speed:  f.Speed(),
		set:    set,
		cx:     f.Nx() / 2,
		cy:     f.Ny() / 2,
		width:  80,
		height: 24,
	}
}

// WithTheme starts the viewer on the named theme. Unknown names keep mono.
func (v Viewer) WithTheme(name string) Viewer {
	for i, t := range Themes {
		if t.Name == name {
			v.theme = i
		}
	}
	return v
}

func (v Viewer) Init() tea.Cmd { return nil }

func (v Viewer) Theme() Theme { return Themes[v.theme] }

func (v Viewer) Mode() Mode { return v.mode }

// Cursor returns the probe position in grid indices.
func (v Viewer) Cursor() (x, y int) { return v.cx, v.cy }

// Probe returns the velocity at the cursor.
func (v Viewer) Probe() (vx, vy float64) {
	return v.field.U.At(v.cx, v.cy), v.field.V.At(v.cx, v.cy)
}

func (v Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKey(msg)
	case tea.WindowSizeMsg:
		v.width, v.height = msg.Width, msg.Height
	}
	return v, nil
}

func (v Viewer) handleKey(msg tea.KeyMsg) (Viewer, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return v, tea.Quit
	case "left", "h":
		v.move(-1, 0)
	case "right", "l":
		v.move(1, 0)
	case "up", "k":
		v.move(0, 1)
	case "down", "j":
		v.move(0, -1)
	case "H":
		v.move(-8, 0)
	case "L":
		v.move(8, 0)
	case "K":
		v.move(0, 8)
	case "J":
		v.move(0, -8)
	case "c":
		v.cx, v.cy = v.field.Nx()/2, v.field.Ny()/2
	case "m", "tab":
		v.mode = (v.mode + 1) % 3
	case "t":
		v.theme = (v.theme + 1) % len(Themes)
	}
	return v, nil
}

func (v *Viewer) move(dx, dy int) {
	v.cx = clamp(v.cx+dx, 0, v.field.Nx()-1)
	v.cy = clamp(v.cy+dy, 0, v.field.Ny()-1)
}

func (v Viewer) grid() *field.Grid {
	switch v.mode {
	case ModeVx:
		return v.field.U
	case ModeVy:
		return v.field.V
	}
	return v.speed
}

// layout returns the heatmap size in terminal cells.
func (v Viewer) layout() (cols, rows int) {
	cols = min(v.field.Nx(), max(v.width-2, 1))
	rows = min(v.field.Ny(), max(v.height-chrome, 1))
	return cols, rows
}

func (v Viewer) View() string {
	st := NewStyles(Themes[v.theme])
	g := v.grid()
	lo, hi := g.MinMax()
	span := hi - lo
	if span == 0 {
		span = 1
	}

	cols, rows := v.layout()
	nx, ny := v.field.Nx(), v.field.Ny()
	curC, curR := v.cx*cols/nx, (ny-1-v.cy)*rows/ny

	markers := make(map[[2]int]bool)
	if v.set != nil {
		dx, dy := v.field.Spacing()
		for i := 0; i < v.set.Np; i++ {
			x, y := v.set.Position(i)
			gx := clamp(int(math.Round(x/dx)), 0, nx-1)
			gy := clamp(int(math.Round(y/dy)), 0, ny-1)
			markers[[2]int{gx * cols / nx, (ny - 1 - gy) * rows / ny}] = true
		}
	}

	var b strings.Builder
	b.WriteString(st.Title.Render(fmt.Sprintf("%s  [%s]", v.title, v.mode)))
	b.WriteByte('\n')

	for r := 0; r < rows; r++ {
		gy := ny - 1 - r*ny/rows
		for c := 0; c < cols; c++ {
			switch {
			case r == curR && c == curC:
				b.WriteString(st.Cursor.Render("+"))
			case markers[[2]int{c, r}]:
				b.WriteString(st.Marker.Render("●"))
			default:
				t := (g.At(c*nx/cols, gy) - lo) / span
				b.WriteRune(shade(t))
			}
		}
		b.WriteByte('\n')
	}

	vx, vy := v.Probe()
	b.WriteString(st.Label.Render("range "))
	b.WriteString(st.Value.Render(fmt.Sprintf("[%.4g, %.4g]", lo, hi)))
	b.WriteByte('\n')
	b.WriteString(st.Label.Render(fmt.Sprintf("probe (%d, %d) ", v.cx, v.cy)))
	b.WriteString(st.Value.Render(fmt.Sprintf("vx=%.4g vy=%.4g |v|=%.4g", vx, vy, math.Hypot(vx, vy))))
	b.WriteByte('\n')
	b.WriteString(st.Hint.Render("arrows/hjkl move  HJKL jump  c centre  m mode  t theme  q quit"))
	return b.String()
}

func shade(t float64) rune {
	i := int(t * float64(len(shades)))
	return shades[clamp(i, 0, len(shades)-1)]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
