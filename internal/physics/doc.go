// Package physics provides the dynamical system models.
//
// Each model implements the [dynamo.System] interface, defining the
// differential equations governing the system's evolution:
//
//   - [Lorenz]: the butterfly attractor (the primary model here)
//   - [Rossler]: a second chaotic flow for cross-checks
//
// Models also implement [dynamo.Configurable] for runtime coefficient
// adjustment and carry a DefaultState for the canonical trajectory.
// Vector fields are pure functions: a model may be shared across
// concurrent solves as long as nobody mutates coefficients mid-run.
package physics
