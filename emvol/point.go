package emvol

import (
	"fmt"
	"strconv"
	"strings"
)

// Notes:
//   Whenever the units of a type are different, e.g., a physical-space
//   coordinate versus a voxel count, we make a separate type to reinforce
//   the distinct natures of the values.  Physical coordinates are float32
//   vectors; voxel counts are int32 vectors.

// Vector3 is an (X,Y,Z) position or extent in physical space.  The base
// unit (e.g., micron) is fixed by the caller and only echoed in metadata.
type Vector3 [3]float32

func (v Vector3) Add(x Vector3) (result Vector3) {
	result[0] = v[0] + x[0]
	result[1] = v[1] + x[1]
	result[2] = v[2] + x[2]
	return
}

func (v Vector3) Sub(x Vector3) (result Vector3) {
	result[0] = v[0] - x[0]
	result[1] = v[1] - x[1]
	result[2] = v[2] - x[2]
	return
}

// Mul returns the component-wise product of two vectors.
func (v Vector3) Mul(x Vector3) (result Vector3) {
	result[0] = v[0] * x[0]
	result[1] = v[1] * x[1]
	result[2] = v[2] * x[2]
	return
}

// Div returns the component-wise quotient of the receiver by x.
func (v Vector3) Div(x Vector3) (result Vector3) {
	result[0] = v[0] / x[0]
	result[1] = v[1] / x[1]
	result[2] = v[2] / x[2]
	return
}

// Scale returns the vector scaled by s.
func (v Vector3) Scale(s float32) (result Vector3) {
	result[0] = v[0] * s
	result[1] = v[1] * s
	result[2] = v[2] * s
	return
}

// Min returns a Vector3 where each element is the minimum of the two
// vectors' elements.
func (v Vector3) Min(x Vector3) (result Vector3) {
	result = v
	if x[0] < v[0] {
		result[0] = x[0]
	}
	if x[1] < v[1] {
		result[1] = x[1]
	}
	if x[2] < v[2] {
		result[2] = x[2]
	}
	return
}

// Max returns a Vector3 where each element is the maximum of the two
// vectors' elements.
func (v Vector3) Max(x Vector3) (result Vector3) {
	result = v
	if x[0] > v[0] {
		result[0] = x[0]
	}
	if x[1] > v[1] {
		result[1] = x[1]
	}
	if x[2] > v[2] {
		result[2] = x[2]
	}
	return
}

func (v Vector3) String() string {
	return fmt.Sprintf("(%g,%g,%g)", v[0], v[1], v[2])
}

// StringToVector3 converts a string of three separated numbers, e.g.,
// "0.5,0.5,1.0", into a Vector3.
func StringToVector3(str, separator string) (v Vector3, err error) {
	elems := strings.Split(str, separator)
	if len(elems) != 3 {
		err = fmt.Errorf("cannot convert %q into a 3d vector", str)
		return
	}
	for i, elem := range elems {
		var f float64
		f, err = strconv.ParseFloat(strings.TrimSpace(elem), 32)
		if err != nil {
			return
		}
		v[i] = float32(f)
	}
	return
}

// Size3 is the (X,Y,Z) number of voxels along each axis of a grid.
type Size3 [3]int32

// Prod returns the total number of voxels in a grid of this size.  Each
// dimension is widened before multiplying so the product cannot overflow
// 32-bit arithmetic even when a single dimension approaches the int32 range.
func (s Size3) Prod() uint64 {
	return uint64(s[0]) * uint64(s[1]) * uint64(s[2])
}

func (s Size3) String() string {
	return fmt.Sprintf("(%d,%d,%d)", s[0], s[1], s[2])
}

// AABB is an axis-aligned bounding box in physical space.
type AABB struct {
	Min Vector3
	Max Vector3
}

// Extent returns the per-axis length of the box.
func (b AABB) Extent() Vector3 {
	return b.Max.Sub(b.Min)
}

// Extend grows the box to include the given point.  A zero-value AABB
// should first be initialized with NewAABB or an explicit Min/Max, since
// the origin-cornered zero box participates in the min/max like any other.
func (b *AABB) Extend(p Vector3) {
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}

// NewAABB returns a degenerate box holding the single point p, suitable
// as the seed for Extend accumulation.
func NewAABB(p Vector3) AABB {
	return AABB{Min: p, Max: p}
}

func (b AABB) String() string {
	return fmt.Sprintf("%s - %s", b.Min, b.Max)
}
