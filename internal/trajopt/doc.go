// Package trajopt finds launch trajectories that carry a note from a ground
// position into the speaker opening without touching the speaker hood.
//
// A trajectory is transcribed as N knots of position and velocity with an
// unknown flight time. The program minimises the knots' squared distance to
// the target subject to the RK4 dynamics, the launch limits, the terminal
// window and a smoothed per-segment clearance from the obstructions. It is
// solved with an augmented Lagrangian method whose inner minimisations use
// gonum's LBFGS.
//
// Three methods are available: shooting (dynamics eliminated by rollout,
// four unknowns), collocation (all knots free) and hybrid (shooting
// followed by a collocation polish). Every accepted trajectory is checked
// again with the exact collision predicate.
package trajopt
