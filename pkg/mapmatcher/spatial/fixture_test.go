package spatial

import (
	"math"
	"testing"
	"time"

	"github.com/lintang-b-s/transitmatch/pkg/datastructure"
	"github.com/lintang-b-s/transitmatch/pkg/geo"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	headingEast = 90.0
	headingWest = 270.0
)

var baseTime = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func line(lat float64, lons ...float64) []geo.Coordinate {
	points := make([]geo.Coordinate, 0, len(lons))
	for _, lon := range lons {
		points = append(points, geo.NewCoordinate(lat, lon))
	}
	return points
}

func newTestStopPath(t *testing.T, id string, points []geo.Coordinate, layover bool) *datastructure.StopPath {
	t.Helper()
	sp, err := datastructure.NewStopPath(id, id+"-stop", points, layover)
	require.NoError(t, err)
	return sp
}

func newTestPattern(t *testing.T, id string, stopPaths ...*datastructure.StopPath) *datastructure.TripPattern {
	t.Helper()
	pattern, err := datastructure.NewTripPattern(id, stopPaths)
	require.NoError(t, err)
	return pattern
}

/*
buildTestBlock. block b1 along the equator, every segment is 0.001 degree (~111m) long.

	out: sp0 layover 0.000->0.001, sp1 0.001->0.004 (3 segments), sp2 0.004->0.006 (2 segments), heading east
	in:  the same path driven back west, layover at 0.006->0.005

trips t1(out) t2(in) t3(out) t4(in).
*/
func buildTestBlock(t *testing.T) *datastructure.Block {
	t.Helper()
	out := newTestPattern(t, "out",
		newTestStopPath(t, "out-0", line(0, 0.000, 0.001), true),
		newTestStopPath(t, "out-1", line(0, 0.001, 0.002, 0.003, 0.004), false),
		newTestStopPath(t, "out-2", line(0, 0.004, 0.005, 0.006), false),
	)
	in := newTestPattern(t, "in",
		newTestStopPath(t, "in-0", line(0, 0.006, 0.005), true),
		newTestStopPath(t, "in-1", line(0, 0.005, 0.004, 0.003, 0.002), false),
		newTestStopPath(t, "in-2", line(0, 0.002, 0.001, 0.000), false),
	)
	route := datastructure.NewRoute("r1", math.NaN())

	block, err := datastructure.NewBlock("b1", []*datastructure.Trip{
		datastructure.NewTrip("t1", route, out),
		datastructure.NewTrip("t2", route, in),
		datastructure.NewTrip("t3", route, out),
		datastructure.NewTrip("t4", route, in),
	})
	require.NoError(t, err)
	return block
}

func newTestMatcher() *SpatialMatcher {
	return NewSpatialMatcher(DefaultConfig(), zap.NewNop())
}

func report(lat, lon float64, offset time.Duration, heading float64) *datastructure.GPSPoint {
	return datastructure.NewGPSPoint("v1", lat, lon, baseTime.Add(offset), math.NaN(), heading)
}

type fakeVehicleState struct {
	avlReport               *datastructure.GPSPoint
	previousAvlReport       *datastructure.GPSPoint
	previousSuccessfulMatch *datastructure.GPSPoint
	match                   *SpatialMatch
}

func (f *fakeVehicleState) GetVehicleId() string {
	return "v1"
}

func (f *fakeVehicleState) GetAvlReport() *datastructure.GPSPoint {
	return f.avlReport
}

func (f *fakeVehicleState) GetPreviousAvlReport(minDistance float64) *datastructure.GPSPoint {
	if f.previousAvlReport == nil || f.avlReport == nil ||
		f.previousAvlReport.DistanceTo(f.avlReport) < minDistance {
		return nil
	}
	return f.previousAvlReport
}

func (f *fakeVehicleState) GetPreviousAvlReportFromSuccessfulMatch() *datastructure.GPSPoint {
	return f.previousSuccessfulMatch
}

func (f *fakeVehicleState) GetMatch() *SpatialMatch {
	return f.match
}

func nonLayover(matches []*SpatialMatch) []*SpatialMatch {
	result := make([]*SpatialMatch, 0, len(matches))
	for _, m := range matches {
		if !m.IsLayover() {
			result = append(result, m)
		}
	}
	return result
}
