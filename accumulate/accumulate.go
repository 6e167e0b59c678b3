/*
	Package accumulate deposits per-event simulation samples into a voxel
	volume, one time step at a time.
*/
package accumulate

import (
	"github.com/emviz/emvol/emvol"
	"github.com/emviz/emvol/volume"
)

// Sample is one scalar simulation value at a physical-space position.
type Sample struct {
	Pos   emvol.Vector3
	Value float32
}

// Accumulator bins point samples into the voxels of a Volume.  It holds a
// reference to the volume's buffer for the volume's lifetime and follows
// the same single-writer-per-step contract.
type Accumulator struct {
	vol *volume.Volume

	// Deposited and Skipped count samples since the last Reset.  Samples
	// whose position falls outside the grid are skipped, not clamped.
	Deposited uint64
	Skipped   uint64
}

// New returns an Accumulator depositing into vol.
func New(vol *volume.Volume) *Accumulator {
	return &Accumulator{vol: vol}
}

// Reset zeroes the volume and the sample counters, preparing for the next
// time step.
func (a *Accumulator) Reset() {
	a.vol.Clear(0)
	a.Deposited = 0
	a.Skipped = 0
}

// Add deposits the samples into the volume, summing values that fall into
// the same voxel.
func (a *Accumulator) Add(samples []Sample) {
	origin := a.vol.Origin()
	voxelSize := a.vol.VoxelSize()
	size := a.vol.Size()
	data := a.vol.Data()
	for _, s := range samples {
		rel := s.Pos.Sub(origin).Div(voxelSize)
		// Bounds must be checked in float space: converting an
		// out-of-int32-range or NaN coordinate first would yield an
		// implementation-specific int32 that slips past integer checks.
		// NaN fails every comparison below and is skipped too.
		if !(rel[0] >= 0 && rel[0] < float32(size[0]) &&
			rel[1] >= 0 && rel[1] < float32(size[1]) &&
			rel[2] >= 0 && rel[2] < float32(size[2])) {
			a.Skipped++
			continue
		}
		x, y, z := int32(rel[0]), int32(rel[1]), int32(rel[2])
		data[a.vol.Index(x, y, z)] += s.Value
		a.Deposited++
	}
}
