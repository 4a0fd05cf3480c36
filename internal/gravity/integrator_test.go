package gravity_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/attractor/internal/gravity"
)

const tol = 1e-9

func magnitude(v r3.Vec) float64 { return r3.Norm(v) }

var _ = Describe("Integrator", func() {
	var (
		reg  *gravity.Registry
		grav *gravity.Integrator
	)

	BeforeEach(func() {
		reg = gravity.NewRegistry()
		grav = gravity.NewIntegrator(gravity.DefaultG)
	})

	register := func(bodies ...*pointMass) {
		for _, b := range bodies {
			Expect(reg.Register(b)).To(Succeed())
		}
	}

	Context("with two unit masses one unit apart", func() {
		var a, b *pointMass

		BeforeEach(func() {
			a = newPointMass(1, 0, 0, 0)
			b = newPointMass(1, 1, 0, 0)
			register(a, b)
		})

		It("pulls each body toward the other with G·m·m/r²", func() {
			stats := grav.Step(reg)

			Expect(stats).To(Equal(gravity.StepStats{Bodies: 2, Pairs: 1}))
			Expect(b.force.X).To(BeNumerically("~", -667.4, tol))
			Expect(a.force.X).To(BeNumerically("~", 667.4, tol))
			Expect(a.force.Y).To(BeZero())
			Expect(b.force.Z).To(BeZero())
		})

		It("applies equal and opposite forces", func() {
			grav.Step(reg)
			sum := r3.Add(a.force, b.force)
			Expect(magnitude(sum)).To(BeNumerically("<", tol))
		})

		It("hands each body its net force exactly once per step", func() {
			grav.Step(reg)
			Expect(a.calls).To(Equal(1))
			Expect(b.calls).To(Equal(1))
		})
	})

	It("sums contributions from both neighbours before applying them", func() {
		a := newPointMass(1, 0, 0, 0)
		b := newPointMass(1, 1, 0, 0)
		c := newPointMass(1, 2, 0, 0)
		register(a, b, c)

		grav.Step(reg)

		Expect(b.calls).To(Equal(1))
		Expect(magnitude(b.force)).To(BeNumerically("<", tol))
		// a feels b at r=1 and c at r=2.
		Expect(a.force.X).To(BeNumerically("~", 667.4+667.4/4, tol))
		Expect(c.force.X).To(BeNumerically("~", -(667.4 + 667.4/4), tol))
	})

	It("skips pairs that share a position", func() {
		a := newPointMass(1, 3, 3, 3)
		b := newPointMass(5, 3, 3, 3)
		register(a, b)

		stats := grav.Step(reg)

		Expect(stats.Coincident).To(Equal(1))
		Expect(a.force).To(Equal(r3.Vec{}))
		Expect(b.force).To(Equal(r3.Vec{}))
		Expect(math.IsNaN(a.force.X)).To(BeFalse())
	})

	DescribeTable("skips pairs too close for a finite force",
		func(gap float64) {
			a := newPointMass(1, 0, 0, 0)
			b := newPointMass(1, gap, 0, 0)
			c := newPointMass(1, 10, 0, 0)
			register(a, b, c)

			stats := grav.Step(reg)

			Expect(stats.Coincident).To(Equal(1))
			for _, p := range []*pointMass{a, b, c} {
				for _, v := range []float64{p.force.X, p.force.Y, p.force.Z} {
					Expect(math.IsNaN(v) || math.IsInf(v, 0)).To(BeFalse())
				}
			}
			Expect(c.force.X).To(BeNumerically("<", 0))
		},
		Entry("square underflows", 1e-170),
		Entry("square is subnormal", 1e-155),
		Entry("smallest subnormal", 5e-324),
	)

	It("leaves a lone body untouched", func() {
		a := newPointMass(10, 1, 2, 3)
		register(a)

		stats := grav.Step(reg)

		Expect(stats.Pairs).To(BeZero())
		Expect(a.force).To(Equal(r3.Vec{}))
	})

	It("handles an empty registry", func() {
		Expect(grav.Step(reg)).To(Equal(gravity.StepStats{}))
	})

	DescribeTable("scales with distance and mass",
		func(m1, m2, r, want float64) {
			f := grav.Forces([]gravity.Body{
				newPointMass(m1, 0, 0, 0),
				newPointMass(m2, 0, r, 0),
			})
			Expect(magnitude(f[0])).To(BeNumerically("~", want, 1e-9*want))
			Expect(magnitude(f[1])).To(BeNumerically("~", want, 1e-9*want))
		},
		Entry("unit", 1.0, 1.0, 1.0, 667.4),
		Entry("double distance quarters the force", 1.0, 1.0, 2.0, 667.4/4),
		Entry("quadruple distance", 1.0, 1.0, 4.0, 667.4/16),
		Entry("double one mass doubles the force", 2.0, 1.0, 1.0, 2*667.4),
		Entry("double both masses", 2.0, 2.0, 1.0, 4*667.4),
	)

	It("changes with a tuned G", func() {
		grav.G = 1
		f := grav.Forces([]gravity.Body{
			newPointMass(3, 0, 0, 0),
			newPointMass(4, 0, 0, 2),
		})
		Expect(f[0].Z).To(BeNumerically("~", 3.0, tol))
		Expect(f[1].Z).To(BeNumerically("~", -3.0, tol))
	})

	It("does not double count a body registered twice", func() {
		a := newPointMass(1, 0, 0, 0)
		b := newPointMass(1, 1, 0, 0)
		register(a, b, b)

		grav.Step(reg)

		Expect(b.calls).To(Equal(1))
		Expect(b.force.X).To(BeNumerically("~", -667.4, tol))
	})

	It("computes every force against the positions at step start", func() {
		bodies := []gravity.Body{
			newPointMass(1, 0, 0, 0),
			newPointMass(2, 1, 1, 0),
			newPointMass(3, -2, 0, 1),
			newPointMass(4, 0, 3, -1),
		}
		forward := grav.Forces(bodies)

		reversed := make([]gravity.Body, len(bodies))
		for i, b := range bodies {
			reversed[len(bodies)-1-i] = b
		}
		backward := grav.Forces(reversed)

		for i := range bodies {
			diff := r3.Sub(forward[i], backward[len(bodies)-1-i])
			Expect(magnitude(diff)).To(BeNumerically("<", 1e-9))
		}
	})

	It("conserves total force across many bodies", func() {
		bodies := make([]gravity.Body, 0, 8)
		for i := 0; i < 8; i++ {
			x := float64(i)
			bodies = append(bodies, newPointMass(1+x, x, x*x, -x))
		}
		var total r3.Vec
		for _, f := range grav.Forces(bodies) {
			total = r3.Add(total, f)
		}
		Expect(magnitude(total)).To(BeNumerically("<", 1e-6))
	})

	Describe("PotentialEnergy", func() {
		It("is -G·m·m/r for a pair", func() {
			pe := grav.PotentialEnergy([]gravity.Body{
				newPointMass(1, 0, 0, 0),
				newPointMass(2, 2, 0, 0),
			})
			Expect(pe).To(BeNumerically("~", -667.4, tol))
		})

		It("ignores coincident pairs", func() {
			pe := grav.PotentialEnergy([]gravity.Body{
				newPointMass(1, 0, 0, 0),
				newPointMass(2, 0, 0, 0),
			})
			Expect(pe).To(BeZero())
		})
	})
})
