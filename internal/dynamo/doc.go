// Package dynamo provides core primitives for dynamical systems.
//
// The package defines the shared vocabulary for numerical integration of
// ordinary differential equations (ODEs):
//
//   - [State]: vector representing a phase-space point
//   - [System]: interface for ODE vector fields (dX/dt = f(X, t))
//   - [Configurable]: runtime coefficient tuning
//
// plus the typed failure surface of the integrator ([ErrInvalidParams],
// [ErrInvalidState], [ErrStepTooSmall], [ErrMaxSteps], [ErrOutOfRange])
// and [SolveError], which carries the last valid (t, state) pair reached
// before a run aborted.
//
// # Thread Safety
//
// Systems must be pure, so a single System value may be shared across
// concurrent solves. Everything else here is plain data.
package dynamo
