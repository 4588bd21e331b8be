package raster

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
)

// gobGrid mirrors Grid's exported fields for encoding/gob, which cannot
// serialize unexported fields but Grid has none — this indirection exists
// only to keep the wire type decoupled from behavior methods.
type gobGrid struct {
	Width, Height int
	Transform     Transform
	NoData        float64
	Data          []float64
}

// Encode serializes a grid with encoding/gob. The pack carries no GeoTIFF
// codec, so this stands in for the real on-disk raster format (flood maps
// and the population raster are read back with Decode).
func Encode(g *Grid) ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(gobGrid{Width: g.Width, Height: g.Height, Transform: g.Transform, NoData: g.NoData, Data: g.Data}); err != nil {
		return nil, fmt.Errorf("raster: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode reads a grid previously written by Encode.
func Decode(r io.Reader) (*Grid, error) {
	var gg gobGrid
	if err := gob.NewDecoder(r).Decode(&gg); err != nil {
		return nil, fmt.Errorf("raster: decode: %w", err)
	}
	return &Grid{Width: gg.Width, Height: gg.Height, Transform: gg.Transform, NoData: gg.NoData, Data: gg.Data}, nil
}
