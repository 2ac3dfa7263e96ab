// Package sweep solves launch settings over a grid of shooter positions and
// summarises the results.
package sweep

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RangeSpec is an inclusive coordinate range in metres.
type RangeSpec struct {
	Min  float64
	Max  float64
	Step float64
}

// Position is a shooter ground position in field metres.
type Position struct {
	X, Y float64
}

// Cap on expanded ranges and grid size.
const maxValues = 10000

// ParseRangeSpec parses "min:max:step". The step must be positive.
func ParseRangeSpec(s string) (RangeSpec, error) {
	fields := strings.Split(s, ":")
	if len(fields) != 3 {
		return RangeSpec{}, fmt.Errorf("invalid range format %q: expected min:max:step", s)
	}
	var vals [3]float64
	for i, name := range [...]string{"min", "max", "step"} {
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
		if err != nil {
			return RangeSpec{}, fmt.Errorf("invalid %s value %q: %w", name, fields[i], err)
		}
		vals[i] = v
	}
	r := RangeSpec{Min: vals[0], Max: vals[1], Step: vals[2]}
	if !(r.Step > 0) {
		return RangeSpec{}, fmt.Errorf("step must be positive, got %g", r.Step)
	}
	return r, nil
}

// Values expands the range; see GenerateRange.
func (r RangeSpec) Values() []float64 {
	return GenerateRange(r.Min, r.Max, r.Step)
}

// GenerateRange returns min, min+step, ... up to and including max, each
// rounded to the millimetre. It returns nil for an empty or oversized range.
func GenerateRange(min, max, step float64) []float64 {
	if !(step > 0) || min > max {
		return nil
	}
	// one extra index absorbs (max-min)/step landing just below an integer
	last := int((max-min)/step) + 1
	if last > maxValues || last < 0 {
		return nil
	}
	var out []float64
	for i := 0; i <= last && len(out) < maxValues; i++ {
		v := math.Round((min+float64(i)*step)*1000) / 1000
		if v > max {
			break
		}
		out = append(out, v)
	}
	return out
}

// ParseCSVFloat64s parses comma-separated floats, skipping empty items.
func ParseCSVFloat64s(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	var out []float64
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		v, err := strconv.ParseFloat(item, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float %q: %w", item, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// ParseParamList accepts either a "min:max:step" range or a comma-separated
// list.
func ParseParamList(s string) ([]float64, error) {
	if !strings.Contains(s, ":") {
		return ParseCSVFloat64s(s)
	}
	r, err := ParseRangeSpec(s)
	if err != nil {
		return nil, err
	}
	return r.Values(), nil
}

// Grid expands x and y specs (each "min:max:step" or a comma-separated list)
// into their cartesian product, x-major.
func Grid(xSpec, ySpec string) ([]Position, error) {
	xs, err := ParseParamList(xSpec)
	if err != nil {
		return nil, fmt.Errorf("parsing x spec %q: %w", xSpec, err)
	}
	ys, err := ParseParamList(ySpec)
	if err != nil {
		return nil, fmt.Errorf("parsing y spec %q: %w", ySpec, err)
	}
	if len(xs) == 0 || len(ys) == 0 {
		return nil, fmt.Errorf("grid %q x %q is empty", xSpec, ySpec)
	}

	total := int64(len(xs)) * int64(len(ys))
	if total > maxValues {
		return nil, fmt.Errorf("grid of %d positions would exceed safe limit of %d", total, maxValues)
	}

	out := make([]Position, 0, total)
	for _, x := range xs {
		for _, y := range ys {
			out = append(out, Position{X: x, Y: y})
		}
	}
	return out, nil
}
