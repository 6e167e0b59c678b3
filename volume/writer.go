package volume

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// rawChunkVoxels is the number of voxels encoded per write when dumping
// the buffer, bounding the scratch allocation for very large grids.
const rawChunkVoxels = 1 << 16

// TimeStepSuffix returns the canonical zero-padded encoding of a
// simulation time value.  Both serialization routines use it, so the
// files belonging to one time step are always name-correlated.  Times in
// [0, 100000) keep a fixed nine-character width and sort
// lexicographically by time; larger values grow the suffix and lose that
// alignment.
func TimeStepSuffix(time float32) string {
	return fmt.Sprintf("%09.3f", time)
}

// RawFileName returns the raw volume file name for the given output prefix
// and time.  The same name is used by WriteRawInfo and WriteMhd.
func RawFileName(outputPrefix string, time float32) string {
	return outputPrefix + "_volume_floats_" + TimeStepSuffix(time) + ".raw"
}

// WriteRawInfo writes the buffer as a flat little-endian float32 dump to
// <outputPrefix>_volume_floats_<suffix>.raw and a human-readable metadata
// sidecar to <outputPrefix>_volume_info_<suffix>.txt.  The two files are
// correlated by the shared time-step suffix.
//
// dataUnit is a current-unit label (e.g. "nA"); the sidecar echoes it with
// every ampere symbol replaced by the volt symbol, a textual relabeling
// convention rather than a numeric conversion.  blueconfig, report and
// target are pass-through metadata describing the simulation source.
func (v *Volume) WriteRawInfo(time, timeStep float32, dataUnit, outputPrefix,
	blueconfig, report, target string) error {

	if err := v.writeRaw(RawFileName(outputPrefix, time)); err != nil {
		return err
	}

	voltUnit := strings.ReplaceAll(dataUnit, "A", "V")
	var sizeMicrons [3]float32
	for axis := 0; axis < 3; axis++ {
		sizeMicrons[axis] = float32(v.size[axis]) * v.voxelSize[axis]
	}

	infoName := outputPrefix + "_volume_info_" + TimeStepSuffix(time) + ".txt"
	f, err := os.Create(infoName)
	if err != nil {
		return fmt.Errorf("unable to create volume info file %q: %w", infoName, err)
	}
	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "# File generated by the emvol tool:\n")
	fmt.Fprintf(w, "# - BlueConfig: %s\n", blueconfig)
	fmt.Fprintf(w, "# - Target: %s\n", target)
	fmt.Fprintf(w, "# - Report: %s\n", report)
	fmt.Fprintf(w, "# - Time step: %s\n", formatFloat(timeStep))
	fmt.Fprintf(w, "# - Units: %s\n", voltUnit)
	fmt.Fprintf(w, "# - SizeInVoxels: %d %d %d\n", v.size[0], v.size[1], v.size[2])
	fmt.Fprintf(w, "# - SizeInMicrons: %s %s %s\n",
		formatFloat(sizeMicrons[0]), formatFloat(sizeMicrons[1]), formatFloat(sizeMicrons[2]))
	fmt.Fprintf(w, "#\n")
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("unable to write volume info file %q: %w", infoName, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("unable to close volume info file %q: %w", infoName, err)
	}

	v.log.Infof("Volume for time %s written to disk.\n", TimeStepSuffix(time))
	return nil
}

// writeRaw dumps the buffer as little-endian float32 binary with no
// header, length = NumVoxels() * 4 bytes.
func (v *Volume) writeRaw(name string) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("unable to create raw volume file %q: %w", name, err)
	}
	w := bufio.NewWriter(f)
	chunk := make([]byte, 4*rawChunkVoxels)
	for off := 0; off < len(v.data); off += rawChunkVoxels {
		end := off + rawChunkVoxels
		if end > len(v.data) {
			end = len(v.data)
		}
		b := chunk[:4*(end-off)]
		for i, val := range v.data[off:end] {
			binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(val))
		}
		if _, err := w.Write(b); err != nil {
			f.Close()
			return fmt.Errorf("unable to write raw volume file %q: %w", name, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("unable to write raw volume file %q: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("unable to close raw volume file %q: %w", name, err)
	}
	return nil
}

// formatFloat renders a float32 the way metadata consumers expect: the
// shortest decimal string that round-trips at 32-bit precision.
func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}
