package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ~1111.95 meter long segment on the equator heading east
func eastSegment() Segment {
	return NewSegment(NewCoordinate(0, 0), NewCoordinate(0, 0.01))
}

func TestSegmentLengthAndHeading(t *testing.T) {
	seg := eastSegment()

	assert.InDelta(t, 1111.95, seg.Length(), 0.1)
	assert.InDelta(t, 90.0, seg.Heading(), 1e-9)

	north := NewSegment(NewCoordinate(0, 0), NewCoordinate(0.01, 0))
	assert.InDelta(t, 0.0, north.Heading(), 1e-9)
}

func TestSegmentDistanceTo(t *testing.T) {
	seg := eastSegment()

	testCases := []struct {
		name      string
		point     Coordinate
		wantDist  float64
		wantAlong float64
	}{
		{
			name:      "on midpoint",
			point:     NewCoordinate(0, 0.005),
			wantDist:  0,
			wantAlong: seg.Length() / 2,
		},
		{
			name:      "perpendicular offset",
			point:     NewCoordinate(0.001, 0.005),
			wantDist:  111.19,
			wantAlong: seg.Length() / 2,
		},
		{
			name:      "before start is clamped to start",
			point:     NewCoordinate(0, -0.005),
			wantDist:  seg.Length() / 2,
			wantAlong: 0,
		},
		{
			name:      "past end is clamped to end",
			point:     NewCoordinate(0, 0.015),
			wantDist:  seg.Length() / 2,
			wantAlong: seg.Length(),
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.wantDist, seg.DistanceTo(tt.point), 0.1)
			along := seg.DistanceAlongSegment(tt.point)
			assert.InDelta(t, tt.wantAlong, along, 0.1)
			assert.GreaterOrEqual(t, along, 0.0)
			assert.LessOrEqual(t, along, seg.Length())
		})
	}
}

func TestSegmentHeadingOK(t *testing.T) {
	east := eastSegment()
	north := NewSegment(NewCoordinate(0, 0), NewCoordinate(0.01, 0))

	testCases := []struct {
		name      string
		seg       Segment
		heading   float64
		maxOffset float64
		want      bool
	}{
		{name: "undefined heading", seg: east, heading: math.NaN(), maxOffset: 0, want: true},
		{name: "within offset", seg: east, heading: 100, maxOffset: 30, want: true},
		{name: "exactly at offset", seg: east, heading: 120, maxOffset: 30, want: true},
		{name: "opposite direction", seg: east, heading: 270, maxOffset: 30, want: false},
		{name: "wraparound", seg: north, heading: 350, maxOffset: 15, want: true},
		{name: "wraparound too far", seg: north, heading: 300, maxOffset: 15, want: false},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.seg.HeadingOK(tt.heading, tt.maxOffset))
		})
	}
}

func TestHeadingDifference(t *testing.T) {
	assert.InDelta(t, 20.0, HeadingDifference(350, 10), 1e-9)
	assert.InDelta(t, 20.0, HeadingDifference(10, 350), 1e-9)
	assert.InDelta(t, 180.0, HeadingDifference(0, 180), 1e-9)
	assert.InDelta(t, 0.0, HeadingDifference(720, 0), 1e-9)
}

func TestNewSegments(t *testing.T) {
	require.Empty(t, NewSegments([]Coordinate{NewCoordinate(0, 0)}))

	segs := NewSegments([]Coordinate{
		NewCoordinate(0, 0),
		NewCoordinate(0, 0.01),
		NewCoordinate(0.01, 0.01),
	})
	require.Len(t, segs, 2)
	assert.Equal(t, segs[0].To(), segs[1].From())
	assert.InDelta(t, 0.0, segs[1].Heading(), 1e-6)
}

func TestSegmentDeterministic(t *testing.T) {
	seg := eastSegment()
	p := NewCoordinate(0.0003, 0.0071)
	assert.Equal(t, seg.DistanceTo(p), seg.DistanceTo(p))
	assert.Equal(t, seg.DistanceAlongSegment(p), seg.DistanceAlongSegment(p))
}

func TestProjectPointToLineCoord(t *testing.T) {
	a, b := NewCoordinate(0, 0), NewCoordinate(0, 0.01)

	testCases := []struct {
		name    string
		point   Coordinate
		wantLat float64
		wantLon float64
	}{
		{name: "north of the middle", point: NewCoordinate(0.002, 0.004), wantLat: 0, wantLon: 0.004},
		{name: "south of the middle", point: NewCoordinate(-0.001, 0.007), wantLat: 0, wantLon: 0.007},
		{name: "before the start", point: NewCoordinate(0.001, -0.003), wantLat: 0, wantLon: 0},
		{name: "past the end", point: NewCoordinate(0, 0.02), wantLat: 0, wantLon: 0.01},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got := ProjectPointToLineCoord(a, b, tt.point)
			assert.InDelta(t, tt.wantLat, got.Lat, 1e-7)
			assert.InDelta(t, tt.wantLon, got.Lon, 1e-7)
		})
	}
}
