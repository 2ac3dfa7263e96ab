package sweep

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/sciborgs1155/aion/internal/trajopt"
	"github.com/sciborgs1155/aion/internal/version"
)

// Summary aggregates a sweep.
type Summary struct {
	Version string
	GitSHA  string

	Positions int
	Solved    int
	// Failed counts positions without settings, including invalid requests.
	Failed   int
	ByStatus map[trajopt.Status]int
	Invalid  int

	MeanSpeed, StddevSpeed float64 // m/s over solved positions
	MeanAngle, StddevAngle float64 // radians over solved positions
}

// MeanStddev calculates the mean and sample standard deviation of a slice.
// Returns (0, 0) for empty slices and a zero deviation for one value.
func MeanStddev(xs []float64) (mean float64, stddev float64) {
	switch len(xs) {
	case 0:
		return 0, 0
	case 1:
		return xs[0], 0
	}
	return stat.MeanStdDev(xs, nil)
}

// Summarize counts outcomes by status and computes speed and angle
// statistics over the solved positions.
func Summarize(outcomes []Outcome) Summary {
	s := Summary{
		Version:   version.Version,
		GitSHA:    version.GitSHA,
		Positions: len(outcomes),
		ByStatus:  make(map[trajopt.Status]int),
	}
	var speeds, angles []float64
	for _, o := range outcomes {
		if o.Err != nil {
			s.Invalid++
			s.Failed++
			continue
		}
		s.ByStatus[o.Result.Status]++
		if !o.Solved() {
			s.Failed++
			continue
		}
		s.Solved++
		speeds = append(speeds, o.Settings.Speed)
		angles = append(angles, o.Settings.Angle)
	}
	s.MeanSpeed, s.StddevSpeed = MeanStddev(speeds)
	s.MeanAngle, s.StddevAngle = MeanStddev(angles)
	return s
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// WriteCSV writes one row per outcome, preceded by a header and a comment
// line carrying the build version.
func WriteCSV(w io.Writer, outcomes []Outcome) error {
	if _, err := fmt.Fprintf(w, "# aion %s (%s)\n", version.Version, version.GitSHA); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	header := []string{"x", "y", "status", "speed_mps", "angle_deg", "objective", "max_violation", "outer_iterations", "run_id"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, o := range outcomes {
		status := string(o.Result.Status)
		if o.Err != nil {
			status = "invalid"
		}
		row := []string{
			formatFloat(o.Position.X),
			formatFloat(o.Position.Y),
			status,
			"",
			"",
			formatFloat(o.Result.Objective),
			strconv.FormatFloat(o.Result.MaxViolation, 'e', 2, 64),
			strconv.Itoa(o.Result.OuterIterations),
			o.Result.RunID,
		}
		if o.Solved() {
			row[3] = formatFloat(o.Settings.Speed)
			row[4] = formatFloat(o.Settings.AngleDegrees())
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
