package main

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/emviz/emvol/emvol"
)

// tomlConfig describes one volume run: the grid geometry, the sample
// source, and the outputs to produce per time step.
type tomlConfig struct {
	// Grid geometry, physical units (typically microns).
	VoxelSize emvol.Vector3 `toml:"voxel_size"`
	Padding   emvol.Vector3 `toml:"padding"`
	BBoxMin   emvol.Vector3 `toml:"bbox_min"`
	BBoxMax   emvol.Vector3 `toml:"bbox_max"`

	// Per-step sample records, little-endian binary (see readStep).
	Samples string `toml:"samples"`

	// Output file pairs: any of "raw" (raw + info sidecar) and "mhd"
	// (raw + MetaImage header).
	OutputPrefix string   `toml:"output_prefix"`
	Formats      []string `toml:"formats"`

	// Pass-through metadata echoed into the info sidecar.
	DataUnit   string  `toml:"data_unit"`
	TimeStep   float32 `toml:"time_step"`
	BlueConfig string  `toml:"blueconfig"`
	Report     string  `toml:"report"`
	Target     string  `toml:"target"`

	// Optional SQLite manifest of written steps.
	Manifest string `toml:"manifest"`

	Log emvol.LogConfig `toml:"log"`
}

func loadConfig(path string) (*tomlConfig, error) {
	var c tomlConfig
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return nil, fmt.Errorf("unable to load config file %q: %w", path, err)
	}
	if c.Samples == "" {
		return nil, fmt.Errorf("config %q does not name a samples file", path)
	}
	if c.OutputPrefix == "" {
		return nil, fmt.Errorf("config %q does not name an output prefix", path)
	}
	for axis := 0; axis < 3; axis++ {
		if c.VoxelSize[axis] <= 0 {
			return nil, fmt.Errorf("voxel_size must be positive per axis, got %s", c.VoxelSize)
		}
		if c.Padding[axis] < 0 {
			return nil, fmt.Errorf("padding must be non-negative per axis, got %s", c.Padding)
		}
		if c.BBoxMin[axis] > c.BBoxMax[axis] {
			return nil, fmt.Errorf("bounding box min %s exceeds max %s", c.BBoxMin, c.BBoxMax)
		}
	}
	if len(c.Formats) == 0 {
		c.Formats = []string{"raw"}
	}
	for _, f := range c.Formats {
		if f != "raw" && f != "mhd" {
			return nil, fmt.Errorf("unknown output format %q (want raw or mhd)", f)
		}
	}
	return &c, nil
}
