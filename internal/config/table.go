package config

import (
	"fmt"

	"github.com/phil-mansfield/table"
	"github.com/san-kum/flowsim/internal/dynamo"
)

// LoadParticleTable reads particles from a whitespace separated text table
// whose first four columns are x, y, px and py.
func LoadParticleTable(path string) ([]ParticleConfig, error) {
	cols, err := table.ReadTable(path, []int{0, 1, 2, 3}, nil)
	if err != nil {
		return nil, fmt.Errorf("read particle table %s: %w", path, err)
	}

	n := len(cols[0])
	if n == 0 {
		return nil, fmt.Errorf("particle table %s is empty: %w", path, dynamo.ErrParameterBounds)
	}

	ps := make([]ParticleConfig, n)
	for i := range ps {
		ps[i] = ParticleConfig{X: cols[0][i], Y: cols[1][i], Px: cols[2][i], Py: cols[3][i]}
	}
	return ps, nil
}
