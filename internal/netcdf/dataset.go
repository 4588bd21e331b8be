// Package netcdf wraps github.com/fhs/go-netcdf for reading the GloFAS-style
// ensemble discharge cubes the ingest stage slices per country. The
// upstream source ships one file per ensemble member, each holding lat/lon
// coordinate variables plus a (lead_time, lat, lon) discharge variable.
package netcdf

import (
	"fmt"

	"github.com/fhs/go-netcdf/netcdf"
)

// Cube is one ensemble member's discharge field across every lead time.
type Cube struct {
	Lat       []float64
	Lon       []float64
	LeadTimes int
	NLat      int
	NLon      int
	// Data is laid out [lead_time][lat][lon] row-major.
	Data []float64
}

// At returns the discharge value at one lead time and grid cell. leadTime
// is 0-indexed here; callers translate from the spec's 1..L convention.
func (c Cube) At(leadTime, latIdx, lonIdx int) float64 {
	return c.Data[leadTime*c.NLat*c.NLon+latIdx*c.NLon+lonIdx]
}

// OpenCube opens one ensemble member's discharge file and reads its
// coordinate and data variables fully into memory. varName is the
// discharge variable, e.g. "dis24".
func OpenCube(path, varName string) (Cube, error) {
	ds, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return Cube{}, fmt.Errorf("netcdf: open %s: %w", path, err)
	}
	defer ds.Close()

	lat, nLat, err := readFloats1D(ds, "lat")
	if err != nil {
		return Cube{}, err
	}
	lon, nLon, err := readFloats1D(ds, "lon")
	if err != nil {
		return Cube{}, err
	}

	v, err := ds.Var(varName)
	if err != nil {
		return Cube{}, fmt.Errorf("netcdf: variable %s: %w", varName, err)
	}
	dims, err := v.Dims()
	if err != nil {
		return Cube{}, fmt.Errorf("netcdf: dims of %s: %w", varName, err)
	}
	if len(dims) != 3 {
		return Cube{}, fmt.Errorf("netcdf: expected 3 dims (lead_time,lat,lon) for %s, got %d", varName, len(dims))
	}
	nLead, err := dims[0].Len()
	if err != nil {
		return Cube{}, fmt.Errorf("netcdf: lead_time dim length: %w", err)
	}

	data := make([]float64, int(nLead)*nLat*nLon)
	if err := v.ReadFloat64s(data); err != nil {
		return Cube{}, fmt.Errorf("netcdf: read %s: %w", varName, err)
	}

	return Cube{
		Lat:       lat,
		Lon:       lon,
		LeadTimes: int(nLead),
		NLat:      nLat,
		NLon:      nLon,
		Data:      data,
	}, nil
}

func readFloats1D(ds netcdf.Dataset, name string) ([]float64, int, error) {
	v, err := ds.Var(name)
	if err != nil {
		return nil, 0, fmt.Errorf("netcdf: variable %s: %w", name, err)
	}
	dims, err := v.Dims()
	if err != nil {
		return nil, 0, fmt.Errorf("netcdf: dims of %s: %w", name, err)
	}
	if len(dims) != 1 {
		return nil, 0, fmt.Errorf("netcdf: expected 1 dim for %s, got %d", name, len(dims))
	}
	n, err := dims[0].Len()
	if err != nil {
		return nil, 0, fmt.Errorf("netcdf: dim length of %s: %w", name, err)
	}
	out := make([]float64, n)
	if err := v.ReadFloat64s(out); err != nil {
		return nil, 0, fmt.Errorf("netcdf: read %s: %w", name, err)
	}
	return out, int(n), nil
}

// SliceBBox returns the lat/lon index ranges [latLo,latHi) and [lonLo,lonHi)
// covering a bounding box, for cropping a cube to one country before
// reduction. lat may be ascending or descending; both orientations are
// searched linearly rather than assumed.
func SliceBBox(lat, lon []float64, minLon, minLat, maxLon, maxLat float64) (latLo, latHi, lonLo, lonHi int) {
	latLo, latHi = indexRange(lat, minLat, maxLat)
	lonLo, lonHi = indexRange(lon, minLon, maxLon)
	return
}

func indexRange(coords []float64, lo, hi float64) (int, int) {
	start, end := -1, -1
	for i, v := range coords {
		inRange := v >= lo && v <= hi
		if inRange && start == -1 {
			start = i
		}
		if inRange {
			end = i + 1
		}
	}
	if start == -1 {
		return 0, 0
	}
	return start, end
}

// LatDescending reports whether the coordinate axis runs from high to low,
// the orientation GloFAS ships lat in. SliceBBox does not depend on it, since
// it scans each axis for in-range values in either orientation.
func LatDescending(lat []float64) bool {
	return len(lat) >= 2 && lat[0] > lat[len(lat)-1]
}
