package flow_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/flowsim/internal/dynamo"
	"github.com/san-kum/flowsim/internal/field"
	"github.com/san-kum/flowsim/internal/flow"
	"github.com/san-kum/flowsim/internal/particle"
)

func solve(name string, p flow.Params, set *particle.Set) *field.VectorField {
	s, err := flow.New(name, p)
	Expect(err).NotTo(HaveOccurred())

	v := make([]float64, p.VelocityLen())
	Expect(s.StressletV(v, set.R, set.P)).To(Succeed())

	f, err := field.NewVectorField(v, p.Nx, p.Ny, p.Lx, p.Ly)
	Expect(err).NotTo(HaveOccurred())
	Expect(f.Validate()).To(Succeed())
	return f
}

func smallParams() flow.Params {
	p := flow.DefaultParams()
	p.Nx, p.Ny = 64, 64
	p.Lx, p.Ly = 64, 64
	p.Radius = 2
	return p
}

var _ = Describe("Params", func() {
	It("defaults to the single particle 128x128 configuration", func() {
		p := flow.DefaultParams()
		Expect(p.Radius).To(Equal(25.0))
		Expect(p.Np).To(Equal(1))
		Expect(p.Nx).To(Equal(128))
		Expect(p.Ny).To(Equal(128))
		Expect(p.VelocityLen()).To(Equal(dynamo.Dim * 128 * 128))
		Expect(p.Validate()).To(Succeed())
	})

	DescribeTable("rejects out of range values",
		func(mutate func(*flow.Params)) {
			p := flow.DefaultParams()
			mutate(&p)
			Expect(p.Validate()).To(MatchError(dynamo.ErrParameterBounds))
		},
		Entry("zero radius", func(p *flow.Params) { p.Radius = 0 }),
		Entry("no particles", func(p *flow.Params) { p.Np = 0 }),
		Entry("empty domain", func(p *flow.Params) { p.Lx = 0 }),
		Entry("degenerate grid", func(p *flow.Params) { p.Ny = 1 }),
		Entry("zero viscosity", func(p *flow.Params) { p.Viscosity = 0 }),
	)
})

var _ = Describe("Registry", func() {
	It("lists both solvers", func() {
		Expect(flow.Names()).To(Equal([]string{"direct", "spectral"}))
	})

	It("rejects unknown solvers", func() {
		_, err := flow.New("lattice", flow.DefaultParams())
		Expect(err).To(MatchError(ContainSubstring("unknown solver")))
	})
})

var _ = Describe("StressletV", func() {
	for _, name := range flow.Names() {
		name := name

		Context(name, func() {
			var (
				p   flow.Params
				set *particle.Set
			)

			BeforeEach(func() {
				p = smallParams()
				var err error
				set, err = particle.NewCentered(1, p.Lx, p.Ly)
				Expect(err).NotTo(HaveOccurred())
			})

			It("rejects a velocity buffer of the wrong size", func() {
				s, err := flow.New(name, p)
				Expect(err).NotTo(HaveOccurred())
				v := make([]float64, p.VelocityLen()-1)
				Expect(s.StressletV(v, set.R, set.P)).To(MatchError(dynamo.ErrDimensionMismatch))
			})

			It("rejects position buffers that do not match Np", func() {
				s, err := flow.New(name, p)
				Expect(err).NotTo(HaveOccurred())
				v := make([]float64, p.VelocityLen())
				Expect(s.StressletV(v, []float64{1, 2, 3}, set.P)).To(MatchError(dynamo.ErrDimensionMismatch))
			})

			It("pushes fluid outward along the swimming axis", func() {
				f := solve(name, p, set)
				cx, cy := p.Nx/2, p.Ny/2
				Expect(f.U.At(cx+10, cy)).To(BeNumerically(">", 0))
				Expect(f.U.At(cx-10, cy)).To(BeNumerically("<", 0))
			})

			It("pulls fluid inward from the sides", func() {
				f := solve(name, p, set)
				cx, cy := p.Nx/2, p.Ny/2
				Expect(f.V.At(cx, cy+10)).To(BeNumerically("<", 0))
				Expect(f.V.At(cx, cy-10)).To(BeNumerically(">", 0))
			})

			It("is odd in vx and even in vy about the particle", func() {
				f := solve(name, p, set)
				cx, cy := p.Nx/2, p.Ny/2
				for _, d := range []int{1, 5, 17} {
					for _, y := range []int{cy, cy + 3, cy - 9} {
						Expect(f.U.At(cx+d, y)).To(BeNumerically("~", -f.U.At(cx-d, y), 1e-9))
						Expect(f.V.At(cx+d, y)).To(BeNumerically("~", f.V.At(cx-d, y), 1e-9))
					}
				}
			})

			It("reverses the flow when the orientation is rotated by 90 degrees", func() {
				set.Place(0, p.Lx/2, p.Ly/2, 0, 1)
				f := solve(name, p, set)
				cx, cy := p.Nx/2, p.Ny/2
				Expect(f.U.At(cx+10, cy)).To(BeNumerically("<", 0))
			})

			It("overwrites stale values in the output buffer", func() {
				s, err := flow.New(name, p)
				Expect(err).NotTo(HaveOccurred())
				v := make([]float64, p.VelocityLen())
				Expect(s.StressletV(v, set.R, set.P)).To(Succeed())
				first := append([]float64(nil), v...)
				for i := range v {
					v[i] = 42
				}
				Expect(s.StressletV(v, set.R, set.P)).To(Succeed())
				Expect(v).To(Equal(first))
			})
		})
	}
})

var _ = Describe("Non-unit grid spacing", func() {
	for _, name := range flow.Names() {
		name := name

		It(name+" keeps the symmetry about the domain centre", func() {
			p := smallParams()
			p.Lx, p.Ly = 128, 128
			p.Radius = 4
			set, err := particle.NewCentered(1, p.Lx, p.Ly)
			Expect(err).NotTo(HaveOccurred())

			f := solve(name, p, set)
			cx, cy := p.Nx/2, p.Ny/2
			for _, d := range []int{1, 5, 17} {
				for _, y := range []int{cy, cy + 3, cy - 9} {
					Expect(f.U.At(cx+d, y)).To(BeNumerically("~", -f.U.At(cx-d, y), 1e-9))
					Expect(f.V.At(cx+d, y)).To(BeNumerically("~", f.V.At(cx-d, y), 1e-9))
				}
			}
			Expect(f.U.At(cx+5, cy)).To(BeNumerically(">", 0))
		})
	}
})

var _ = Describe("Spectral", func() {
	It("has zero mean flow on the periodic domain", func() {
		p := flow.DefaultParams()
		set, err := particle.NewCentered(1, p.Lx, p.Ly)
		Expect(err).NotTo(HaveOccurred())

		f := solve("spectral", p, set)
		Expect(f.U.Mean()).To(BeNumerically("~", 0, 1e-12))
		Expect(f.V.Mean()).To(BeNumerically("~", 0, 1e-12))
	})

	It("superposes particles linearly", func() {
		p := smallParams()
		p.Np = 2
		pair, err := particle.New(2)
		Expect(err).NotTo(HaveOccurred())
		pair.Place(0, 20, 32, 1, 0)
		pair.Place(1, 44, 32, 0, 1)

		one := smallParams()
		a, _ := particle.New(1)
		a.Place(0, 20, 32, 1, 0)
		b, _ := particle.New(1)
		b.Place(0, 44, 32, 0, 1)

		fp := solve("spectral", p, pair)
		fa := solve("spectral", one, a)
		fb := solve("spectral", one, b)

		for _, idx := range []int{0, 100, 2080, 4095} {
			Expect(fp.U.Data[idx]).To(BeNumerically("~", fa.U.Data[idx]+fb.U.Data[idx], 1e-12))
			Expect(fp.V.Data[idx]).To(BeNumerically("~", fa.V.Data[idx]+fb.V.Data[idx], 1e-12))
		}
	})
})

var _ = Describe("Direct", func() {
	It("decays away from the particle", func() {
		p := smallParams()
		set, err := particle.NewCentered(1, p.Lx, p.Ly)
		Expect(err).NotTo(HaveOccurred())

		f := solve("direct", p, set)
		cx, cy := p.Nx/2, p.Ny/2
		near := math.Abs(f.U.At(cx+6, cy))
		far := math.Abs(f.U.At(cx+24, cy))
		Expect(near).To(BeNumerically(">", far))
	})
})
