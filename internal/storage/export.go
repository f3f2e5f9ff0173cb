package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	*RunMetadata
	Vx [][]float64 `json:"vx"`
	Vy [][]float64 `json:"vy"`
}

// ExportJSON writes metadata plus the reshaped vx and vy grids, one inner
// slice per row (constant y).
func ExportJSON(w io.Writer, meta *RunMetadata, v []float64) error {
	n := meta.Nx * meta.Ny
	data := ExportData{
		RunMetadata: meta,
		Vx:          rows(v[:n], meta.Nx, meta.Ny),
		Vy:          rows(v[n:2*n], meta.Nx, meta.Ny),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func rows(buf []float64, nx, ny int) [][]float64 {
	out := make([][]float64, ny)
	for y := range out {
		out[y] = buf[y*nx : (y+1)*nx]
	}
	return out
}
