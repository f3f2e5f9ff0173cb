package viz

import (
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/flowsim/internal/field"
	"github.com/san-kum/flowsim/internal/streamline"
)

// Profiles plots vx along the horizontal centre line and vy along the
// vertical centre line.
func Profiles(f *field.VectorField, width, height int) string {
	cx, cy := f.Nx()/2, f.Ny()/2

	var b strings.Builder
	b.WriteString(asciigraph.Plot(f.U.Row(cy),
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("vx along y = Ny/2"),
	))
	b.WriteString("\n\n")
	b.WriteString(asciigraph.Plot(f.V.Column(cx),
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("vy along x = Nx/2"),
	))
	b.WriteByte('\n')
	return b.String()
}

// StreamlinePreview draws streamlines on a braille canvas w cells wide,
// keeping the domain aspect ratio.
func StreamlinePreview(lines []streamline.Line, lx, ly float64, w int) string {
	h := int(math.Ceil(float64(2*w) * ly / lx / 4))
	if h < 1 {
		h = 1
	}
	c := NewCanvas(w, h)
	c.DrawStreamlines(lines, lx, ly)
	return c.String()
}
