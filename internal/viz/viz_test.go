package viz

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/flowsim/internal/field"
	"github.com/san-kum/flowsim/internal/particle"
	"github.com/san-kum/flowsim/internal/storage"
	"github.com/san-kum/flowsim/internal/streamline"
)

func testField(t *testing.T, n int) *field.VectorField {
	t.Helper()
	v := make([]float64, 2*n*n)
	for k := 0; k < n*n; k++ {
		x, y := k%n, k/n
		v[k] = float64(x)
		v[n*n+k] = -float64(y)
	}
	f, err := field.NewVectorField(v, n, n, float64(n), float64(n))
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, v Viewer, msg tea.Msg) Viewer {
	t.Helper()
	m, _ := v.Update(msg)
	return m.(Viewer)
}

func TestCanvasSetAndLine(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Set(0, 0)
	if c.Grid[0][0] != 0x2801 {
		t.Errorf("expected dot 1, got %U", c.Grid[0][0])
	}
	c.Set(100, 100)
	c.Set(-1, 3)

	c.Clear()
	c.DrawLine(0, 0, 7, 7)
	for i := 0; i <= 7; i++ {
		if c.Grid[i/4][i/2]&pixelMap[i%4][i%2] == 0 {
			t.Errorf("diagonal dot (%d, %d) not set", i, i)
		}
	}

	lines := strings.Split(strings.TrimSuffix(c.String(), "\n"), "\n")
	if len(lines) != 2 || len([]rune(lines[0])) != 4 {
		t.Errorf("unexpected canvas shape %q", c.String())
	}
}

func TestStreamlinePreview(t *testing.T) {
	var pts []streamline.Point
	for x := 0.0; x <= 16; x++ {
		pts = append(pts, streamline.Point{X: x, Y: 8})
	}
	lines := []streamline.Line{{Points: pts}}
	out := StreamlinePreview(lines, 16, 16, 8)

	rows := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows for a square domain, got %d", len(rows))
	}
	blank := string(rune(brailleBlank))
	if strings.Trim(rows[1]+rows[2], blank) == "" {
		t.Error("horizontal streamline not drawn near the middle")
	}
	if strings.Trim(rows[0], blank) != "" {
		t.Error("top row should be empty")
	}
}

func TestViewerCursorMovesAndClamps(t *testing.T) {
	v := NewViewer("test", testField(t, 16), nil)
	if x, y := v.Cursor(); x != 8 || y != 8 {
		t.Fatalf("cursor starts at (%d, %d)", x, y)
	}

	v = update(t, v, tea.KeyMsg{Type: tea.KeyRight})
	v = update(t, v, key("k"))
	if x, y := v.Cursor(); x != 9 || y != 9 {
		t.Errorf("cursor at (%d, %d), want (9, 9)", x, y)
	}

	for i := 0; i < 5; i++ {
		v = update(t, v, key("L"))
		v = update(t, v, key("J"))
	}
	if x, y := v.Cursor(); x != 15 || y != 0 {
		t.Errorf("cursor not clamped: (%d, %d)", x, y)
	}

	vx, vy := v.Probe()
	if vx != 15 || vy != 0 {
		t.Errorf("probe (%g, %g), want (15, 0)", vx, vy)
	}

	v = update(t, v, key("c"))
	if x, y := v.Cursor(); x != 8 || y != 8 {
		t.Errorf("centre key left cursor at (%d, %d)", x, y)
	}
}

func TestViewerModeCycle(t *testing.T) {
	v := NewViewer("test", testField(t, 8), nil)
	want := []Mode{ModeVx, ModeVy, ModeSpeed}
	for _, m := range want {
		v = update(t, v, key("m"))
		if v.Mode() != m {
			t.Errorf("mode %v, want %v", v.Mode(), m)
		}
	}
}

func TestViewerQuit(t *testing.T) {
	v := NewViewer("test", testField(t, 8), nil)
	_, cmd := v.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestViewerView(t *testing.T) {
	set, err := particle.NewCentered(1, 8, 8)
	if err != nil {
		t.Fatal(err)
	}
	v := NewViewer("flow", testField(t, 8), set)
	v = update(t, v, tea.WindowSizeMsg{Width: 40, Height: 20})
	v = update(t, v, key("h"))
	v = update(t, v, key("h"))

	out := v.View()
	for _, s := range []string{"flow", "[speed]", "probe (2, 4)", "●", "+"} {
		if !strings.Contains(out, s) {
			t.Errorf("view missing %q", s)
		}
	}
}

func TestProfiles(t *testing.T) {
	out := Profiles(testField(t, 16), 40, 5)
	if !strings.Contains(out, "vx along y = Ny/2") || !strings.Contains(out, "vy along x = Nx/2") {
		t.Errorf("missing captions:\n%s", out)
	}
}

func TestSummary(t *testing.T) {
	meta := &storage.RunMetadata{
		ID:        "spectral_1",
		Solver:    "spectral",
		Nx:        128,
		Ny:        128,
		Lx:        128,
		Ly:        128,
		Particles: []storage.ParticleRecord{{X: 64, Y: 64, Px: 1}},
		Elapsed:   3 * time.Millisecond,
		Metrics:   map[string]float64{"max_speed": 0.25},
	}
	out := Summary(meta, GetTheme("ocean"))
	for _, s := range []string{"spectral_1", "128 x 128", "max_speed", "0.25", "3ms"} {
		if !strings.Contains(out, s) {
			t.Errorf("summary missing %q", s)
		}
	}
}

func TestGetThemeFallback(t *testing.T) {
	if GetTheme("nope").Name != "mono" {
		t.Error("unknown theme should fall back to mono")
	}
	if len(ThemeNames()) != len(Themes) {
		t.Error("ThemeNames length mismatch")
	}
}

func TestViewerWithTheme(t *testing.T) {
	v := NewViewer("flow", testField(t, 8), nil).WithTheme("retro")
	if got := v.Theme().Name; got != "retro" {
		t.Fatalf("theme %q, want retro", got)
	}

	v = update(t, v, key("t"))
	if got := v.Theme().Name; got != "mono" {
		t.Errorf("t after retro gave %q, want mono", got)
	}

	if got := NewViewer("flow", testField(t, 8), nil).WithTheme("neon").Theme().Name; got != "mono" {
		t.Errorf("unknown theme gave %q, want mono", got)
	}
}
