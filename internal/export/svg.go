package export

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/san-kum/flowsim/internal/field"
	"github.com/san-kum/flowsim/internal/particle"
	"github.com/san-kum/flowsim/internal/streamline"
)

// SVGOptions controls the size and colours of a rendered flow plot.
type SVGOptions struct {
	Size          int // side of the plot area in pixels
	Title         string
	StreamColor   string
	MarkerColor   string
	MarkerRadius  float64
	ArrowSize     float64
	ColorbarTicks int
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Size:          512,
		StreamColor:   "#cccccc",
		MarkerColor:   "#ffff00",
		MarkerRadius:  5,
		ArrowSize:     1.5,
		ColorbarTicks: 5,
	}
}

const (
	marginLeft   = 60
	marginTop    = 40
	marginBottom = 50
	colorbarGap  = 20
	colorbarW    = 20
	colorbarText = 70
)

// plotFrame maps domain coordinates in [0, xmax] x [0, ymax] onto the plot
// area, y pointing up.
type plotFrame struct {
	size       float64
	xmax, ymax float64
}

func (p plotFrame) px(x float64) float64 { return marginLeft + x/p.xmax*p.size }
func (p plotFrame) py(y float64) float64 { return marginTop + p.size - y/p.ymax*p.size }

// FlowToSVG renders a grayscale speed heatmap with colour bar, the given
// streamlines and a marker at every particle. The axes cover
// [0, (Nx-1)dx] x [0, (Ny-1)dy].
func FlowToSVG(f *field.VectorField, set *particle.Set, lines []streamline.Line, opts SVGOptions) string {
	dx, dy := f.Spacing()
	frame := plotFrame{
		size: float64(opts.Size),
		xmax: float64(f.Nx()-1) * dx,
		ymax: float64(f.Ny()-1) * dy,
	}
	width := marginLeft + opts.Size + colorbarGap + colorbarW + colorbarText
	height := marginTop + opts.Size + marginBottom

	speed := f.Speed()
	lo, hi := speed.MinMax()
	span := hi - lo
	if span == 0 {
		span = 1
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#ffffff"/>
`, width, height, width, height))

	if opts.Title != "" {
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%d" font-family="sans-serif" font-size="14" text-anchor="middle">%s</text>
`, frame.px(frame.xmax/2), marginTop/2, escape(opts.Title)))
	}

	// heatmap: cell (i, j) spans [i, i+1] x [j, j+1] in grid units
	sb.WriteString(`<g shape-rendering="crispEdges">` + "\n")
	for j := 0; j < f.Ny()-1; j++ {
		for i := 0; i < f.Nx()-1; i++ {
			x0, x1 := frame.px(float64(i)*dx), frame.px(float64(i+1)*dx)
			y0, y1 := frame.py(float64(j+1)*dy), frame.py(float64(j)*dy)
			sb.WriteString(fmt.Sprintf(`<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>
`, x0, y0, x1-x0, y1-y0, Gray((speed.At(i, j)-lo)/span)))
		}
	}
	sb.WriteString("</g>\n")

	// streamlines
	sb.WriteString(fmt.Sprintf(`<g fill="none" stroke="%s" stroke-width="1">
`, opts.StreamColor))
	for _, l := range lines {
		if len(l.Points) < 2 {
			continue
		}
		sb.WriteString(`<path d="M`)
		for i, p := range l.Points {
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", frame.px(p.X), frame.py(p.Y)))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", frame.px(p.X), frame.py(p.Y)))
			}
		}
		sb.WriteString(`"/>` + "\n")
		sb.WriteString(arrowHead(frame, l, opts.ArrowSize*4))
	}
	sb.WriteString("</g>\n")

	// particles
	for i := 0; i < set.Np; i++ {
		x, y := set.Position(i)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" stroke="#1f77b4" stroke-width="1.5"/>
`, frame.px(x), frame.py(y), opts.MarkerRadius, opts.MarkerColor))
	}

	writeAxes(&sb, frame)
	writeColorbar(&sb, frame, lo, hi, opts.ColorbarTicks)

	sb.WriteString("</svg>\n")
	return sb.String()
}

// arrowHead draws an open "->" head on the marked segment of l.
func arrowHead(frame plotFrame, l streamline.Line, size float64) string {
	k := l.Arrow
	if k < 0 || k+1 >= len(l.Points) {
		return ""
	}
	a, b := l.Points[k], l.Points[k+1]
	ax, ay := frame.px(a.X), frame.py(a.Y)
	bx, by := frame.px(b.X), frame.py(b.Y)
	ang := math.Atan2(by-ay, bx-ax)

	lx := bx - size*math.Cos(ang-math.Pi/6)
	ly := by - size*math.Sin(ang-math.Pi/6)
	rx := bx - size*math.Cos(ang+math.Pi/6)
	ry := by - size*math.Sin(ang+math.Pi/6)
	return fmt.Sprintf(`<path d="M%.1f,%.1f L%.1f,%.1f L%.1f,%.1f"/>
`, lx, ly, bx, by, rx, ry)
}

func writeAxes(sb *strings.Builder, frame plotFrame) {
	x0, y0 := frame.px(0), frame.py(frame.ymax)
	sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="#000000"/>
`, x0, y0, frame.size, frame.size))

	sb.WriteString(`<g font-family="sans-serif" font-size="11" fill="#000000">` + "\n")
	for _, v := range ticks(frame.xmax) {
		x := frame.px(v)
		y := frame.py(0)
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#000000"/>
<text x="%.1f" y="%.1f" text-anchor="middle">%g</text>
`, x, y, x, y+5, x, y+18, v))
	}
	for _, v := range ticks(frame.ymax) {
		x := frame.px(0)
		y := frame.py(v)
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#000000"/>
<text x="%.1f" y="%.1f" text-anchor="end">%g</text>
`, x-5, y, x, y, x-8, y+4, v))
	}
	sb.WriteString("</g>\n")
}

func writeColorbar(sb *strings.Builder, frame plotFrame, lo, hi float64, nticks int) {
	x := marginLeft + frame.size + colorbarGap
	top := float64(marginTop)
	const steps = 64
	h := frame.size / steps
	for s := 0; s < steps; s++ {
		t := 1 - (float64(s)+0.5)/steps
		sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.2f" width="%d" height="%.2f" fill="%s"/>
`, x, top+float64(s)*h, colorbarW, h+0.5, Gray(t)))
	}
	sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%d" height="%.1f" fill="none" stroke="#000000"/>
`, x, top, colorbarW, frame.size))

	if nticks < 2 {
		nticks = 2
	}
	sb.WriteString(`<g font-family="sans-serif" font-size="11" fill="#000000">` + "\n")
	for k := 0; k < nticks; k++ {
		t := float64(k) / float64(nticks-1)
		v := lo + t*(hi-lo)
		y := top + frame.size*(1-t)
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f">%.3g</text>
`, x+colorbarW+4, y+4, v))
	}
	sb.WriteString("</g>\n")
}

// ticks returns round tick values in [0, max].
func ticks(max float64) []float64 {
	if max <= 0 {
		return []float64{0}
	}
	raw := max / 5
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	step := mag
	for _, m := range []float64{1, 2, 5, 10} {
		if raw <= m*mag {
			step = m * mag
			break
		}
	}
	var out []float64
	for v := 0.0; v <= max+1e-9; v += step {
		out = append(out, v)
	}
	return out
}

// Gray maps t in [0, 1] to a black-to-white hex colour.
func Gray(t float64) string {
	if t < 0 || math.IsNaN(t) {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	c := int(math.Round(t * 255))
	return fmt.Sprintf("#%02x%02x%02x", c, c, c)
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}

// WriteFile writes an SVG document to path.
func WriteFile(path, svg string) error {
	return os.WriteFile(path, []byte(svg), 0644)
}
