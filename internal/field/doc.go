// Package field describes the static world a shot is solved in: field
// dimensions, the speaker opening and its surrounding structure, the note's
// physical constants and the launch limits.
//
// Responsibilities: immutable Params built once from configuration and
// shared read-only by every solve. Key types: Params, Window, Wall,
// FacePanel, SidePanel, TopBar, Aero, Limits. Points and velocities are
// gonum r3.Vec values.
//
// Frame: x runs from the speaker wall (x = 0) into the field, y across the
// field, z up. The speaker is centred on the field midline.
package field
