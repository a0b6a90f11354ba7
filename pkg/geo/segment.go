package geo

import (
	"fmt"
	"math"

	"github.com/lintang-b-s/transitmatch/pkg/util"
)

// Segment is a directed line segment of a stop path. length in meter, heading in degree.
type Segment struct {
	from    Coordinate
	to      Coordinate
	length  float64
	heading float64
}

func NewSegment(from, to Coordinate) Segment {
	return Segment{
		from:    from,
		to:      to,
		length:  greatCircleDistance(from, to),
		heading: BearingTo(from.Lat, from.Lon, to.Lat, to.Lon),
	}
}

// NewSegments. build the directed segments of a polyline.
func NewSegments(points []Coordinate) []Segment {
	if len(points) < 2 {
		return []Segment{}
	}
	segments := make([]Segment, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		segments = append(segments, NewSegment(points[i-1], points[i]))
	}
	return segments
}

func (s Segment) From() Coordinate {
	return s.from
}

func (s Segment) To() Coordinate {
	return s.to
}

func (s Segment) Length() float64 {
	return s.length
}

func (s Segment) Heading() float64 {
	return s.heading
}

// DistanceTo. distance in meter from p to the segment. perpendicular distance when the projection
// falls inside the segment, distance to the nearest endpoint otherwise.
func (s Segment) DistanceTo(p Coordinate) float64 {
	return PointLinePerpendicularDistance(s.from, s.to, p)
}

// DistanceAlongSegment. how far along the segment the projection of p is, clamped to [0, length].
func (s Segment) DistanceAlongSegment(p Coordinate) float64 {
	return util.Clamp(distanceAlongEdge(s.from, s.to, p), 0, s.length)
}

// HeadingOK. undefined (NaN) heading is always acceptable.
func (s Segment) HeadingOK(heading, maxHeadingOffset float64) bool {
	if math.IsNaN(heading) {
		return true
	}
	return HeadingDifference(heading, s.heading) <= maxHeadingOffset
}

func (s Segment) String() string {
	return fmt.Sprintf("Segment[from=(%.6f,%.6f) to=(%.6f,%.6f) length=%s heading=%.1f]",
		s.from.Lat, s.from.Lon, s.to.Lat, s.to.Lon, util.DistanceFormat(s.length), s.heading)
}
