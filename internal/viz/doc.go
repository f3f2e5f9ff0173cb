// Package viz renders flow fields in the terminal.
//
//   - [Viewer]: bubbletea model with a shaded heatmap and a probe cursor
//   - [Canvas]: braille dot canvas used for streamline previews
//   - [Profiles]: asciigraph plots of the centre-line velocity components
//   - [Summary]: lipgloss panel with run parameters and metrics
//
// # Viewer keys
//
//	arrows/hjkl - move the probe one grid point
//	HJKL        - move the probe eight grid points
//	c           - return the probe to the centre
//	m, tab      - cycle speed / vx / vy
//	t           - cycle themes
//	q           - quit
package viz
