package volume

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// WriteMhd writes the raw volume dump together with a MetaImage (.mhd)
// header so third-party volume viewers can load it.  The raw file uses the
// same name as WriteRawInfo's, so one dump can serve both a sidecar and a
// header for the same time step.
//
// The header's field names and ordering follow the MetaImage convention
// and must not be reordered.  ElementDataFile holds the raw file's base
// name; viewers resolve it relative to the header's directory.
func (v *Volume) WriteMhd(time float32, dataUnit, outputPrefix string) error {
	rawName := RawFileName(outputPrefix, time)
	if err := v.writeRaw(rawName); err != nil {
		return err
	}

	mhdName := outputPrefix + "_volume_floats_" + TimeStepSuffix(time) + ".mhd"
	f, err := os.Create(mhdName)
	if err != nil {
		return fmt.Errorf("unable to create mhd header file %q: %w", mhdName, err)
	}
	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "ObjectType = Image\n")
	fmt.Fprintf(w, "NDims = 3\n")
	fmt.Fprintf(w, "BinaryData = True\n")
	fmt.Fprintf(w, "BinaryDataByteOrderMSB = False\n")
	fmt.Fprintf(w, "CompressedData = False\n")
	fmt.Fprintf(w, "TransformMatrix = 1 0 0 0 1 0 0 0 1\n")
	fmt.Fprintf(w, "Offset = 0 0 0\n")
	fmt.Fprintf(w, "CenterOfRotation = 0 0 0\n")
	fmt.Fprintf(w, "AnatomicalOrientation = 0 0 0\n")
	fmt.Fprintf(w, "ElementSpacing = %s %s %s\n",
		formatFloat(v.voxelSize[0]), formatFloat(v.voxelSize[1]), formatFloat(v.voxelSize[2]))
	fmt.Fprintf(w, "DimSize = %d %d %d\n", v.size[0], v.size[1], v.size[2])
	fmt.Fprintf(w, "ElementType = MET_FLOAT\n")
	fmt.Fprintf(w, "ElementDataFile = %s\n", filepath.Base(rawName))
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("unable to write mhd header file %q: %w", mhdName, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("unable to close mhd header file %q: %w", mhdName, err)
	}

	v.log.Infof("Volume .mhd for time %s written to disk.\n", TimeStepSuffix(time))
	return nil
}
