// Package gravity computes pairwise Newtonian attraction among a set of
// registered point masses.
//
// The package has two parts:
//
//   - [Registry]: the active set of bodies, safe for concurrent mutation
//   - [Integrator]: sums every pairwise force for one fixed step and hands
//     the net force to each body
//
// Bodies are owned by the host. The registry keeps non-owning references and
// the host must deregister a body before it is discarded. Positions and
// velocities are advanced by the host after [Integrator.Step] returns.
//
// # Example
//
//	reg := gravity.NewRegistry()
//	_ = reg.Register(a)
//	_ = reg.Register(b)
//	grav := gravity.NewIntegrator(gravity.DefaultG)
//	stats := grav.Step(reg)
//
// # Thread Safety
//
// A Registry may be shared between goroutines. An Integrator reuses scratch
// buffers and must not run two steps at once.
package gravity
