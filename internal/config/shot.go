package config

import (
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/sciborgs1155/aion/internal/fsutil"
)

// DefaultConfigPath is the path to the canonical shot defaults file.
// The Get* methods carry the same values so a missing key never leaves a
// solver without a constant.
const DefaultConfigPath = "config/shot.defaults.json"

// Solver method names accepted by the "solver_method" key.
const (
	MethodHybrid      = "hybrid"
	MethodShooting    = "shooting"
	MethodCollocation = "collocation"
)

// ShotConfig represents the root configuration for the launch solver.
// Every field is optional; unset fields fall back to the built-in defaults
// so partial files only need to name what they change.
type ShotConfig struct {
	// Field
	FieldWidth  *float64 `json:"field_width,omitempty"`  // metres
	FieldLength *float64 `json:"field_length,omitempty"` // metres
	Gravity     *float64 `json:"gravity,omitempty"`      // m/s²
	AirDensity  *float64 `json:"air_density,omitempty"`  // kg/m³

	// Note (projectile)
	NoteDiameter *float64 `json:"note_diameter,omitempty"`
	NoteWidth    *float64 `json:"note_width,omitempty"`
	NoteMass     *float64 `json:"note_mass,omitempty"`

	// Aerodynamics: C_D = base + angle·α², C_L = (base + angle·α)/2
	DragCoeffBase  *float64 `json:"drag_coeff_base,omitempty"`
	DragCoeffAngle *float64 `json:"drag_coeff_angle,omitempty"`
	LiftCoeffBase  *float64 `json:"lift_coeff_base,omitempty"`
	LiftCoeffAngle *float64 `json:"lift_coeff_angle,omitempty"`

	// Speaker geometry
	SpeakerLowEdge      *float64 `json:"speaker_low_edge,omitempty"`
	SpeakerTopEdge      *float64 `json:"speaker_top_edge,omitempty"`
	SpeakerInclineDeg   *float64 `json:"speaker_incline_deg,omitempty"`
	SpeakerWidth        *float64 `json:"speaker_width,omitempty"`         // delta_y
	SpeakerDepth        *float64 `json:"speaker_depth,omitempty"`         // delta_x
	SpeakerWindowHeight *float64 `json:"speaker_window_height,omitempty"` // delta_z

	// Target and shooter
	TargetX       *float64 `json:"target_x,omitempty"`
	TargetY       *float64 `json:"target_y,omitempty"` // defaults to field_width/2
	TargetZ       *float64 `json:"target_z,omitempty"`
	TargetRadius  *float64 `json:"target_radius,omitempty"`
	ShooterHeight *float64 `json:"shooter_height,omitempty"`

	// Launch limits
	MaxLaunchVelocity *float64 `json:"max_launch_velocity,omitempty"` // m/s
	MinLaunchAngle    *float64 `json:"min_launch_angle,omitempty"`    // radians
	MaxLaunchAngle    *float64 `json:"max_launch_angle,omitempty"`    // radians

	// Solver
	KnotCount           *int     `json:"knot_count,omitempty"`
	SolverMethod        *string  `json:"solver_method,omitempty"`
	MaxOuterIterations  *int     `json:"max_outer_iterations,omitempty"`
	MaxInnerIterations  *int     `json:"max_inner_iterations,omitempty"`
	SolveTimeout        *string  `json:"solve_timeout,omitempty"` // duration string like "10s"
	ConstraintTolerance *float64 `json:"constraint_tolerance,omitempty"`
	StrictMargin        *float64 `json:"strict_margin,omitempty"`
	InitialPenalty      *float64 `json:"initial_penalty,omitempty"`
	PenaltyGrowth       *float64 `json:"penalty_growth,omitempty"`
	MaxPenalty          *float64 `json:"max_penalty,omitempty"`
	ClearanceSmoothing  *float64 `json:"clearance_smoothing,omitempty"`

	// Sweep
	SweepWorkers *int `json:"sweep_workers,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyShotConfig returns a ShotConfig with all fields set to nil.
func EmptyShotConfig() *ShotConfig {
	return &ShotConfig{}
}

// DefaultShotConfig returns a ShotConfig with every field populated from the
// built-in defaults. It matches config/shot.defaults.json.
func DefaultShotConfig() *ShotConfig {
	e := EmptyShotConfig()
	return &ShotConfig{
		FieldWidth:          ptrFloat64(e.GetFieldWidth()),
		FieldLength:         ptrFloat64(e.GetFieldLength()),
		Gravity:             ptrFloat64(e.GetGravity()),
		AirDensity:          ptrFloat64(e.GetAirDensity()),
		NoteDiameter:        ptrFloat64(e.GetNoteDiameter()),
		NoteWidth:           ptrFloat64(e.GetNoteWidth()),
		NoteMass:            ptrFloat64(e.GetNoteMass()),
		DragCoeffBase:       ptrFloat64(e.GetDragCoeffBase()),
		DragCoeffAngle:      ptrFloat64(e.GetDragCoeffAngle()),
		LiftCoeffBase:       ptrFloat64(e.GetLiftCoeffBase()),
		LiftCoeffAngle:      ptrFloat64(e.GetLiftCoeffAngle()),
		SpeakerLowEdge:      ptrFloat64(e.GetSpeakerLowEdge()),
		SpeakerTopEdge:      ptrFloat64(e.GetSpeakerTopEdge()),
		SpeakerInclineDeg:   ptrFloat64(e.GetSpeakerInclineDeg()),
		SpeakerWidth:        ptrFloat64(e.GetSpeakerWidth()),
		SpeakerDepth:        ptrFloat64(e.GetSpeakerDepth()),
		SpeakerWindowHeight: ptrFloat64(e.GetSpeakerWindowHeight()),
		TargetX:             ptrFloat64(e.GetTargetX()),
		TargetY:             ptrFloat64(e.GetTargetY()),
		TargetZ:             ptrFloat64(e.GetTargetZ()),
		TargetRadius:        ptrFloat64(e.GetTargetRadius()),
		ShooterHeight:       ptrFloat64(e.GetShooterHeight()),
		MaxLaunchVelocity:   ptrFloat64(e.GetMaxLaunchVelocity()),
		MinLaunchAngle:      ptrFloat64(e.GetMinLaunchAngle()),
		MaxLaunchAngle:      ptrFloat64(e.GetMaxLaunchAngle()),
		KnotCount:           ptrInt(e.GetKnotCount()),
		SolverMethod:        ptrString(e.GetSolverMethod()),
		MaxOuterIterations:  ptrInt(e.GetMaxOuterIterations()),
		MaxInnerIterations:  ptrInt(e.GetMaxInnerIterations()),
		SolveTimeout:        ptrString(e.GetSolveTimeout().String()),
		ConstraintTolerance: ptrFloat64(e.GetConstraintTolerance()),
		StrictMargin:        ptrFloat64(e.GetStrictMargin()),
		InitialPenalty:      ptrFloat64(e.GetInitialPenalty()),
		PenaltyGrowth:       ptrFloat64(e.GetPenaltyGrowth()),
		MaxPenalty:          ptrFloat64(e.GetMaxPenalty()),
		ClearanceSmoothing:  ptrFloat64(e.GetClearanceSmoothing()),
		SweepWorkers:        ptrInt(e.GetSweepWorkers()),
	}
}

// LoadShotConfig loads a ShotConfig from a JSON file on disk.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadShotConfig(path string) (*ShotConfig, error) {
	return LoadShotConfigFrom(fsutil.OSFileSystem{}, path)
}

// LoadShotConfigFrom loads a ShotConfig through fsys. The file must have a
// .json extension and be at most 1MB.
func LoadShotConfigFrom(fsys fsutil.FileSystem, path string) (*ShotConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := fsys.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 << 20
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := fsys.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyShotConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *ShotConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadShotConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *ShotConfig) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"field_width", c.GetFieldWidth()},
		{"field_length", c.GetFieldLength()},
		{"gravity", c.GetGravity()},
		{"note_diameter", c.GetNoteDiameter()},
		{"note_width", c.GetNoteWidth()},
		{"note_mass", c.GetNoteMass()},
		{"speaker_width", c.GetSpeakerWidth()},
		{"speaker_depth", c.GetSpeakerDepth()},
		{"speaker_window_height", c.GetSpeakerWindowHeight()},
		{"max_launch_velocity", c.GetMaxLaunchVelocity()},
		{"constraint_tolerance", c.GetConstraintTolerance()},
		{"initial_penalty", c.GetInitialPenalty()},
		{"clearance_smoothing", c.GetClearanceSmoothing()},
	}
	for _, p := range positive {
		if !(p.value > 0) || math.IsInf(p.value, 0) {
			return fmt.Errorf("%s must be positive, got %f", p.name, p.value)
		}
	}

	if c.GetAirDensity() < 0 {
		return fmt.Errorf("air_density must be non-negative, got %f", c.GetAirDensity())
	}
	if c.GetNoteWidth() >= c.GetNoteDiameter() {
		return fmt.Errorf("note_width (%f) must be smaller than note_diameter (%f)", c.GetNoteWidth(), c.GetNoteDiameter())
	}
	if c.GetSpeakerWidth() <= c.GetNoteDiameter() || c.GetSpeakerWindowHeight() <= c.GetNoteWidth() {
		return fmt.Errorf("speaker opening %fx%f leaves no room for a %fx%f note",
			c.GetSpeakerWidth(), c.GetSpeakerWindowHeight(), c.GetNoteDiameter(), c.GetNoteWidth())
	}
	if inc := c.GetSpeakerInclineDeg(); inc < 0 || inc >= 90 {
		return fmt.Errorf("speaker_incline_deg must be in [0, 90), got %f", inc)
	}
	if c.GetMinLaunchAngle() >= c.GetMaxLaunchAngle() {
		return fmt.Errorf("min_launch_angle (%f) must be less than max_launch_angle (%f)", c.GetMinLaunchAngle(), c.GetMaxLaunchAngle())
	}
	if c.GetKnotCount() < 2 {
		return fmt.Errorf("knot_count must be at least 2, got %d", c.GetKnotCount())
	}
	switch c.GetSolverMethod() {
	case MethodHybrid, MethodShooting, MethodCollocation:
	default:
		return fmt.Errorf("solver_method must be one of %q, %q, %q, got %q",
			MethodHybrid, MethodShooting, MethodCollocation, c.GetSolverMethod())
	}
	if c.GetMaxOuterIterations() < 1 || c.GetMaxInnerIterations() < 1 {
		return fmt.Errorf("solver iteration limits must be at least 1, got outer=%d inner=%d",
			c.GetMaxOuterIterations(), c.GetMaxInnerIterations())
	}
	if c.SolveTimeout != nil && *c.SolveTimeout != "" {
		if _, err := time.ParseDuration(*c.SolveTimeout); err != nil {
			return fmt.Errorf("invalid solve_timeout '%s': %w", *c.SolveTimeout, err)
		}
	}
	if c.GetPenaltyGrowth() <= 1 {
		return fmt.Errorf("penalty_growth must be greater than 1, got %f", c.GetPenaltyGrowth())
	}
	if c.GetMaxPenalty() < c.GetInitialPenalty() {
		return fmt.Errorf("max_penalty (%f) must be at least initial_penalty (%f)", c.GetMaxPenalty(), c.GetInitialPenalty())
	}
	if c.GetStrictMargin() < 0 {
		return fmt.Errorf("strict_margin must be non-negative, got %f", c.GetStrictMargin())
	}
	if c.GetSweepWorkers() < 0 {
		return fmt.Errorf("sweep_workers must be non-negative, got %d", c.GetSweepWorkers())
	}

	return nil
}

func getFloat(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func getInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

// GetFieldWidth returns the field_width value or the default (27 ft).
func (c *ShotConfig) GetFieldWidth() float64 { return getFloat(c.FieldWidth, 8.2296) }

// GetFieldLength returns the field_length value or the default (54 ft).
func (c *ShotConfig) GetFieldLength() float64 { return getFloat(c.FieldLength, 16.4592) }

// GetGravity returns the gravity value or the default.
func (c *ShotConfig) GetGravity() float64 { return getFloat(c.Gravity, 9.806) }

// GetAirDensity returns the air_density value or the default.
func (c *ShotConfig) GetAirDensity() float64 { return getFloat(c.AirDensity, 1.204) }

func (c *ShotConfig) GetNoteDiameter() float64 { return getFloat(c.NoteDiameter, 0.356) }
func (c *ShotConfig) GetNoteWidth() float64    { return getFloat(c.NoteWidth, 0.0508) }
func (c *ShotConfig) GetNoteMass() float64     { return getFloat(c.NoteMass, 0.235301) }

func (c *ShotConfig) GetDragCoeffBase() float64  { return getFloat(c.DragCoeffBase, 0.08) }
func (c *ShotConfig) GetDragCoeffAngle() float64 { return getFloat(c.DragCoeffAngle, 2.72) }
func (c *ShotConfig) GetLiftCoeffBase() float64  { return getFloat(c.LiftCoeffBase, 0.15) }
func (c *ShotConfig) GetLiftCoeffAngle() float64 { return getFloat(c.LiftCoeffAngle, 1.4) }

func (c *ShotConfig) GetSpeakerLowEdge() float64      { return getFloat(c.SpeakerLowEdge, 2.002) }
func (c *ShotConfig) GetSpeakerTopEdge() float64      { return getFloat(c.SpeakerTopEdge, 2.124) }
func (c *ShotConfig) GetSpeakerInclineDeg() float64   { return getFloat(c.SpeakerInclineDeg, 14) }
func (c *ShotConfig) GetSpeakerWidth() float64        { return getFloat(c.SpeakerWidth, 1.051) }
func (c *ShotConfig) GetSpeakerDepth() float64        { return getFloat(c.SpeakerDepth, 0.451) }
func (c *ShotConfig) GetSpeakerWindowHeight() float64 { return getFloat(c.SpeakerWindowHeight, 0.516) }

func (c *ShotConfig) GetTargetX() float64 { return getFloat(c.TargetX, 0) }

// GetTargetY returns the target_y value, or the field midline when unset.
func (c *ShotConfig) GetTargetY() float64 { return getFloat(c.TargetY, c.GetFieldWidth()/2) }

func (c *ShotConfig) GetTargetZ() float64       { return getFloat(c.TargetZ, 2) }
func (c *ShotConfig) GetTargetRadius() float64  { return getFloat(c.TargetRadius, 0.61) }
func (c *ShotConfig) GetShooterHeight() float64 { return getFloat(c.ShooterHeight, 0.635) }

// GetMaxLaunchVelocity returns the max_launch_velocity value or the default.
func (c *ShotConfig) GetMaxLaunchVelocity() float64 { return getFloat(c.MaxLaunchVelocity, 7) }

func (c *ShotConfig) GetMinLaunchAngle() float64 { return getFloat(c.MinLaunchAngle, 0) }
func (c *ShotConfig) GetMaxLaunchAngle() float64 { return getFloat(c.MaxLaunchAngle, 1.1) }

// GetKnotCount returns the knot_count value or the default.
func (c *ShotConfig) GetKnotCount() int { return getInt(c.KnotCount, 20) }

// GetSolverMethod returns the solver_method value or the default.
func (c *ShotConfig) GetSolverMethod() string {
	if c.SolverMethod == nil || *c.SolverMethod == "" {
		return MethodShooting
	}
	return *c.SolverMethod
}

func (c *ShotConfig) GetMaxOuterIterations() int { return getInt(c.MaxOuterIterations, 40) }
func (c *ShotConfig) GetMaxInnerIterations() int { return getInt(c.MaxInnerIterations, 300) }

// GetSolveTimeout parses and returns the SolveTimeout as a time.Duration.
func (c *ShotConfig) GetSolveTimeout() time.Duration {
	if c.SolveTimeout == nil || *c.SolveTimeout == "" {
		return 30 * time.Second // default
	}
	d, err := time.ParseDuration(*c.SolveTimeout)
	if err != nil {
		return 30 * time.Second // default on parse error
	}
	return d
}

func (c *ShotConfig) GetConstraintTolerance() float64 { return getFloat(c.ConstraintTolerance, 1e-4) }
func (c *ShotConfig) GetStrictMargin() float64        { return getFloat(c.StrictMargin, 1e-3) }
func (c *ShotConfig) GetInitialPenalty() float64      { return getFloat(c.InitialPenalty, 10) }
func (c *ShotConfig) GetPenaltyGrowth() float64       { return getFloat(c.PenaltyGrowth, 4) }
func (c *ShotConfig) GetMaxPenalty() float64          { return getFloat(c.MaxPenalty, 1e7) }
func (c *ShotConfig) GetClearanceSmoothing() float64  { return getFloat(c.ClearanceSmoothing, 0.005) }

// GetSweepWorkers returns the sweep_workers value or the default.
// Zero means one worker per CPU.
func (c *ShotConfig) GetSweepWorkers() int { return getInt(c.SweepWorkers, 0) }
