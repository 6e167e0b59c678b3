// Command-line front end for computing dense voxel volumes from simulation
// samples and writing them to disk once per time step.

package main

import (
	"bufio"
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/emviz/emvol/accumulate"
	"github.com/emviz/emvol/emvol"
	"github.com/emviz/emvol/manifest"
	"github.com/emviz/emvol/volume"
)

var (
	// Display usage if true.
	showHelp = flag.Bool("help", false, "")

	// Run in verbose mode if true.
	runVerbose = flag.Bool("verbose", false, "")
)

const helpMessage = `
emvol computes a dense voxel volume per simulation time step and writes it
to disk as raw+info and/or MetaImage file pairs.

Usage: emvol [options] <config.toml>

  -verbose    (flag)    Run in verbose mode.
  -h, -help   (flag)    Show help message

The config file sets the grid geometry (voxel_size, padding, bbox_min,
bbox_max), the samples file, the output prefix and formats ("raw", "mhd"),
and pass-through report metadata.  The samples file holds little-endian
binary time steps: a float32 time and uint32 record count, followed by
that many (x, y, z, value) float32 records.
`

var usage = func() {
	fmt.Printf(helpMessage)
}

func main() {
	flag.BoolVar(showHelp, "h", false, "Show help message")
	flag.Usage = usage
	flag.Parse()

	if *runVerbose {
		emvol.Verbose = true
		emvol.SetLogMode(emvol.DebugMode)
	}
	if *showHelp || flag.NArg() != 1 {
		flag.Usage()
		os.Exit(0)
	}

	config, err := loadConfig(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
	config.Log.SetLogger()
	defer emvol.DefaultLogger().Shutdown()

	if err := run(config); err != nil {
		emvol.Criticalf("%s\n", err)
		os.Exit(1)
	}
}

func run(config *tomlConfig) error {
	vol := volume.New(config.VoxelSize, config.Padding,
		emvol.AABB{Min: config.BBoxMin, Max: config.BBoxMax})
	acc := accumulate.New(vol)

	var db *manifest.DB
	var runID string
	if config.Manifest != "" {
		var err error
		if db, err = manifest.Open(config.Manifest); err != nil {
			return err
		}
		defer db.Close()
		size := vol.Size()
		if runID, err = db.BeginRun(config.OutputPrefix, size[0], size[1], size[2]); err != nil {
			return err
		}
	}

	f, err := os.Open(config.Samples)
	if err != nil {
		return fmt.Errorf("unable to open samples file %q: %w", config.Samples, err)
	}
	defer f.Close()
	r := bufio.NewReader(f)

	steps := 0
	for {
		stepTime, samples, err := readStep(r)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("samples file %q, step %d: %w", config.Samples, steps, err)
		}

		tlog := emvol.NewTimeLog()
		acc.Reset()
		acc.Add(samples)
		if emvol.Verbose {
			emvol.Debugf("Step %s: deposited %d samples, skipped %d, field %s\n",
				volume.TimeStepSuffix(stepTime), acc.Deposited, acc.Skipped, acc.Stats())
		}

		for _, format := range config.Formats {
			var sidecar string
			switch format {
			case "raw":
				if err := vol.WriteRawInfo(stepTime, config.TimeStep, config.DataUnit,
					config.OutputPrefix, config.BlueConfig, config.Report, config.Target); err != nil {
					return err
				}
				sidecar = config.OutputPrefix + "_volume_info_" + volume.TimeStepSuffix(stepTime) + ".txt"
			case "mhd":
				if err := vol.WriteMhd(stepTime, config.DataUnit, config.OutputPrefix); err != nil {
					return err
				}
				sidecar = config.OutputPrefix + "_volume_floats_" + volume.TimeStepSuffix(stepTime) + ".mhd"
			}
			if db != nil {
				rawFile := volume.RawFileName(config.OutputPrefix, stepTime)
				rawBytes := int64(vol.NumVoxels() * 4)
				if err := db.RecordStep(runID, float64(stepTime),
					volume.TimeStepSuffix(stepTime), rawFile, rawBytes, sidecar); err != nil {
					return err
				}
			}
		}
		tlog.Infof("Processed time step %s", volume.TimeStepSuffix(stepTime))
		steps++
	}

	emvol.Infof("Wrote %d time steps to %s*\n", steps, config.OutputPrefix)
	return nil
}

// maxStepSamples bounds the per-step record count read from a samples
// file.  A corrupt header must not turn one untrusted 4-byte field into a
// multi-gigabyte allocation or a wrapped buffer length.
const maxStepSamples = 1 << 26 // 1 GiB of 16-byte records

// readStep reads one time step from the samples stream: a float32 time and
// uint32 sample count, then count (x, y, z, value) float32 records, all
// little-endian.  io.EOF at a step boundary signals a clean end of input.
func readStep(r io.Reader) (float32, []accumulate.Sample, error) {
	var header [8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil, io.EOF
		}
		return 0, nil, fmt.Errorf("unable to read step header: %w", err)
	}
	stepTime := math.Float32frombits(binary.LittleEndian.Uint32(header[0:]))
	count := binary.LittleEndian.Uint32(header[4:])
	if count > maxStepSamples {
		return 0, nil, fmt.Errorf("implausible sample count %d in step header", count)
	}

	buf := make([]byte, 16*int64(count))
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, nil, fmt.Errorf("unable to read %d sample records: %w", count, err)
	}
	samples := make([]accumulate.Sample, count)
	for i := range samples {
		b := buf[16*i:]
		samples[i] = accumulate.Sample{
			Pos: emvol.Vector3{
				math.Float32frombits(binary.LittleEndian.Uint32(b[0:])),
				math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
				math.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
			},
			Value: math.Float32frombits(binary.LittleEndian.Uint32(b[12:])),
		}
	}
	return stepTime, samples, nil
}
