package main

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emviz/emvol/accumulate"
	"github.com/emviz/emvol/emvol"
)

func writeStep(buf *bytes.Buffer, stepTime float32, samples []accumulate.Sample) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(stepTime))
	buf.Write(b[:])
	binary.LittleEndian.PutUint32(b[:], uint32(len(samples)))
	buf.Write(b[:])
	for _, s := range samples {
		for _, f := range []float32{s.Pos[0], s.Pos[1], s.Pos[2], s.Value} {
			binary.LittleEndian.PutUint32(b[:], math.Float32bits(f))
			buf.Write(b[:])
		}
	}
}

func TestReadStepRoundTrip(t *testing.T) {
	want := []accumulate.Sample{
		{Pos: emvol.Vector3{1, 2, 3}, Value: 0.5},
		{Pos: emvol.Vector3{-4, 0.25, 10}, Value: -2},
	}
	var buf bytes.Buffer
	writeStep(&buf, 12.5, want)
	writeStep(&buf, 12.6, nil)

	stepTime, samples, err := readStep(&buf)
	require.NoError(t, err)
	require.Equal(t, float32(12.5), stepTime)
	require.Equal(t, want, samples)

	stepTime, samples, err = readStep(&buf)
	require.NoError(t, err)
	require.Equal(t, float32(12.6), stepTime)
	require.Empty(t, samples)

	_, _, err = readStep(&buf)
	require.ErrorIs(t, err, io.EOF)
}

func TestReadStepRejectsImplausibleCount(t *testing.T) {
	// A corrupt header whose count would wrap a 32-bit byte-length
	// multiply (2^28+1 records) must fail, not fabricate samples from a
	// truncated read.
	var header [8]byte
	binary.LittleEndian.PutUint32(header[0:], math.Float32bits(1.0))
	binary.LittleEndian.PutUint32(header[4:], 1<<28+1)

	_, _, err := readStep(bytes.NewReader(header[:]))
	require.Error(t, err)
	require.Contains(t, err.Error(), "implausible sample count")
}

func TestReadStepTruncatedPayload(t *testing.T) {
	var buf bytes.Buffer
	writeStep(&buf, 0.5, []accumulate.Sample{{Pos: emvol.Vector3{1, 1, 1}, Value: 1}})
	truncated := buf.Bytes()[:buf.Len()-4]

	_, _, err := readStep(bytes.NewReader(truncated))
	require.Error(t, err)
	require.NotErrorIs(t, err, io.EOF)
}
