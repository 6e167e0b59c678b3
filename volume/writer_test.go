package volume

import (
	"encoding/binary"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emviz/emvol/emvol"
)

// newTestVolume returns a 2x2x2 volume with voxels filled 0..7 in
// row-major order.
func newTestVolume(t *testing.T) *Volume {
	t.Helper()
	bbox := emvol.AABB{Min: emvol.Vector3{0, 0, 0}, Max: emvol.Vector3{2, 2, 2}}
	v := New(emvol.Vector3{1, 1, 1}, emvol.Vector3{0, 0, 0}, bbox)
	require.Equal(t, emvol.Size3{2, 2, 2}, v.Size())
	for i := range v.Data() {
		v.Data()[i] = float32(i)
	}
	return v
}

func TestTimeStepSuffix(t *testing.T) {
	require.Equal(t, "00000.000", TimeStepSuffix(0))
	require.Equal(t, "00012.500", TimeStepSuffix(12.5))
	require.Equal(t, "00001.250", TimeStepSuffix(1.25))

	// Fixed nine-character width within the documented [0, 100000)
	// range, so per-step files sort lexicographically by time.
	require.Len(t, TimeStepSuffix(999.875), 9)
	require.Len(t, TimeStepSuffix(0.125), 9)
	require.Len(t, TimeStepSuffix(99999.5), 9)
}

func TestRawRoundTrip(t *testing.T) {
	v := newTestVolume(t)
	prefix := t.TempDir() + "/out"
	require.NoError(t, v.WriteRawInfo(12.5, 0.1, "nA", prefix, "/sim/BlueConfig", "voltages", "mc2_Column"))

	raw, err := os.ReadFile(prefix + "_volume_floats_00012.500.raw")
	require.NoError(t, err)
	require.Len(t, raw, 8*4)

	for i := 0; i < 8; i++ {
		bits := binary.LittleEndian.Uint32(raw[4*i:])
		require.Equal(t, float32(i), math.Float32frombits(bits), "voxel %d", i)
	}
}

func TestInfoFile(t *testing.T) {
	v := newTestVolume(t)
	prefix := t.TempDir() + "/out"
	require.NoError(t, v.WriteRawInfo(1.25, 0.1, "nA", prefix, "/sim/BlueConfig", "voltages", "mc2_Column"))

	info, err := os.ReadFile(prefix + "_volume_info_00001.250.txt")
	require.NoError(t, err)

	want := strings.Join([]string{
		"# File generated by the emvol tool:",
		"# - BlueConfig: /sim/BlueConfig",
		"# - Target: mc2_Column",
		"# - Report: voltages",
		"# - Time step: 0.1",
		"# - Units: nV",
		"# - SizeInVoxels: 2 2 2",
		"# - SizeInMicrons: 2 2 2",
		"#",
		"",
	}, "\n")
	require.Equal(t, want, string(info))
}

func TestUnitRelabeling(t *testing.T) {
	v := newTestVolume(t)
	prefix := t.TempDir() + "/out"
	require.NoError(t, v.WriteRawInfo(0, 0.025, "mA", prefix, "bc", "currents", "all"))

	info, err := os.ReadFile(prefix + "_volume_info_00000.000.txt")
	require.NoError(t, err)
	require.Contains(t, string(info), "# - Units: mV\n")
	require.NotContains(t, string(info), "mA")
}

func TestMhdHeader(t *testing.T) {
	bbox := emvol.AABB{Min: emvol.Vector3{0, 0, 0}, Max: emvol.Vector3{1, 1, 1}}
	v := New(emvol.Vector3{0.5, 0.5, 0.5}, emvol.Vector3{0, 0, 0}, bbox)
	require.Equal(t, emvol.Size3{2, 2, 2}, v.Size())

	prefix := t.TempDir() + "/run1"
	require.NoError(t, v.WriteMhd(12.5, "nA", prefix))

	mhd, err := os.ReadFile(prefix + "_volume_floats_00012.500.mhd")
	require.NoError(t, err)

	want := strings.Join([]string{
		"ObjectType = Image",
		"NDims = 3",
		"BinaryData = True",
		"BinaryDataByteOrderMSB = False",
		"CompressedData = False",
		"TransformMatrix = 1 0 0 0 1 0 0 0 1",
		"Offset = 0 0 0",
		"CenterOfRotation = 0 0 0",
		"AnatomicalOrientation = 0 0 0",
		"ElementSpacing = 0.5 0.5 0.5",
		"DimSize = 2 2 2",
		"ElementType = MET_FLOAT",
		"ElementDataFile = run1_volume_floats_00012.500.raw",
		"",
	}, "\n")
	require.Equal(t, want, string(mhd))

	// The header's raw dump shares the raw+info writer's file name, so
	// one dump can serve both sidecars.
	_, err = os.Stat(RawFileName(prefix, 12.5))
	require.NoError(t, err)
}

func TestSuffixCorrelation(t *testing.T) {
	v := newTestVolume(t)
	prefix := t.TempDir() + "/out"
	require.NoError(t, v.WriteRawInfo(3.375, 0.1, "nA", prefix, "bc", "r", "t"))
	require.NoError(t, v.WriteMhd(3.375, "nA", prefix))

	suffix := TimeStepSuffix(3.375)
	for _, name := range []string{
		prefix + "_volume_floats_" + suffix + ".raw",
		prefix + "_volume_info_" + suffix + ".txt",
		prefix + "_volume_floats_" + suffix + ".mhd",
	} {
		_, err := os.Stat(name)
		require.NoErrorf(t, err, "expected %s to exist", name)
	}
}

func TestWriteErrors(t *testing.T) {
	v := newTestVolume(t)
	prefix := t.TempDir() + "/no/such/dir/out"

	err := v.WriteRawInfo(0, 0.1, "nA", prefix, "bc", "r", "t")
	require.Error(t, err)
	require.Contains(t, err.Error(), "raw volume file")

	err = v.WriteMhd(0, "nA", prefix)
	require.Error(t, err)
}
