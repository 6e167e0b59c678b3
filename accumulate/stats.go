package accumulate

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FieldStats summarizes the scalar field held by a volume after a time
// step's samples have been deposited.
type FieldStats struct {
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
}

func (s FieldStats) String() string {
	return fmt.Sprintf("min %g, max %g, mean %g, stddev %g", s.Min, s.Max, s.Mean, s.StdDev)
}

// Stats computes summary statistics over every voxel of the accumulator's
// volume.  An empty (degenerate) volume yields the zero FieldStats.
func (a *Accumulator) Stats() FieldStats {
	data := a.vol.Data()
	if len(data) == 0 {
		return FieldStats{}
	}
	wide := make([]float64, len(data))
	for i, v := range data {
		wide[i] = float64(v)
	}
	mean, stddev := stat.MeanStdDev(wide, nil)
	if len(wide) == 1 {
		stddev = 0
	}
	return FieldStats{
		Min:    floats.Min(wide),
		Max:    floats.Max(wide),
		Mean:   mean,
		StdDev: stddev,
	}
}
