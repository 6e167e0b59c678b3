/*
	Package volume implements a dense, axis-aligned 3d scalar field sampled
	on a regular voxel grid, and its serialization to the raw+info and
	MetaImage file pairs consumed by downstream volume viewers.
*/
package volume

import (
	"github.com/dustin/go-humanize"

	"github.com/emviz/emvol/emvol"
)

// Volume owns a flat float32 buffer addressed by row-major 3d index with
// x fastest-varying, then y, then z.  The grid geometry is derived once at
// construction and is immutable afterwards.
//
// A Volume is single-threaded by caller contract: at most one writer
// populates the buffer per time step, and serialization calls must not be
// issued concurrently with population or with each other on the same
// instance.
type Volume struct {
	voxelSize emvol.Vector3
	size      emvol.Size3
	origin    emvol.Vector3
	data      []float32
	log       emvol.Logger
}

// Option modifies construction of a Volume.
type Option func(*Volume)

// WithLogger directs the construction notice and per-write notices to the
// given logger instead of the package-level one.
func WithLogger(l emvol.Logger) Option {
	return func(v *Volume) {
		v.log = l
	}
}

// New derives the grid geometry from a physical bounding box, a symmetric
// padding extent, and a per-axis voxel size, and allocates the zero-filled
// voxel buffer.
//
// Each grid dimension is the padded bounding box extent divided by the
// voxel size, rounded half-up on the positive quotient.  The origin is the
// bounding box minimum pulled back by half the padding, centering the grid
// on the box.  A degenerate (zero-extent) axis yields a zero-size axis and
// an empty volume; this is not an error.
//
// Preconditions the caller must uphold: voxelSize components are positive,
// padding components are non-negative, and bbox.Min <= bbox.Max per axis.
// A malformed box (min > max) is not validated and silently participates
// in the rounding arithmetic.
func New(voxelSize, padding emvol.Vector3, bbox emvol.AABB, opts ...Option) *Volume {
	ext := bbox.Extent()
	var size emvol.Size3
	for axis := 0; axis < 3; axis++ {
		size[axis] = int32((ext[axis]+padding[axis])/voxelSize[axis] + 0.5)
	}
	v := &Volume{
		voxelSize: voxelSize,
		size:      size,
		origin:    bbox.Min.Sub(padding.Scale(0.5)),
		data:      make([]float32, size.Prod()),
		log:       emvol.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.log.Infof("Volume size is [%d %d %d] (%s buffer)\n",
		size[0], size[1], size[2], humanize.Bytes(size.Prod()*4))
	return v
}

// Clear sets every voxel to the given value.  The fill is a typed
// per-element assignment: a byte-replicating fill is only correct for the
// bit pattern of 0.0 and would corrupt any other value.
func (v *Volume) Clear(value float32) {
	for i := range v.data {
		v.data[i] = value
	}
}

// Size returns the number of voxels along each axis.
func (v *Volume) Size() emvol.Size3 {
	return v.size
}

// Origin returns the physical-space coordinate of the grid's minimum corner.
func (v *Volume) Origin() emvol.Vector3 {
	return v.origin
}

// VoxelSize returns the physical size of one voxel along each axis.
func (v *Volume) VoxelSize() emvol.Vector3 {
	return v.voxelSize
}

// NumVoxels returns the total number of voxels in the grid.
func (v *Volume) NumVoxels() uint64 {
	return v.size.Prod()
}

// Data returns a direct view into the owned buffer.  Callers populate it
// using the row-major x-fastest mapping given by Index.
func (v *Volume) Data() []float32 {
	return v.data
}

// Index returns the flat buffer index for the voxel coordinate (x,y,z).
// Coordinates must lie within [0, Size()) per axis; no bounds check is
// performed.
func (v *Volume) Index(x, y, z int32) uint64 {
	return (uint64(z)*uint64(v.size[1])+uint64(y))*uint64(v.size[0]) + uint64(x)
}
