// Package geo defines the 3-D coordinate type used for mowing geometry and
// the codec that converts coordinates to and from their stored text form.
//
// Coordinates are persisted as decimal strings rather than a database float
// column so that the stored value is engine-independent and survives an
// insert/read round trip bit-for-bit.  The encoding uses the shortest
// decimal representation that parses back to the identical float64.
package geo

import (
	"fmt"
	"strconv"
)

// Point is a single 3-D coordinate.  For mower geometry X and Z carry the
// horizontal position (latitude/longitude) and Y the height.
type Point struct {
	X float64
	Y float64
	Z float64
}

// EncodeCoord renders a coordinate component as its stored text form.
// FormatFloat with precision -1 emits the fewest digits that still parse
// back to exactly the same float64.
func EncodeCoord(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// DecodeCoord parses a stored coordinate component back into a float64.
func DecodeCoord(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("decode coord %q: %w", s, err)
	}
	return v, nil
}

// EncodePoint returns the stored text form of each component of p.
func EncodePoint(p Point) (x, y, z string) {
	return EncodeCoord(p.X), EncodeCoord(p.Y), EncodeCoord(p.Z)
}

// DecodePoint rebuilds a Point from its stored text components.
func DecodePoint(x, y, z string) (Point, error) {
	px, err := DecodeCoord(x)
	if err != nil {
		return Point{}, err
	}
	py, err := DecodeCoord(y)
	if err != nil {
		return Point{}, err
	}
	pz, err := DecodeCoord(z)
	if err != nil {
		return Point{}, err
	}
	return Point{X: px, Y: py, Z: pz}, nil
}
