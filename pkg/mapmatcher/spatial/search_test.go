package spatial

import (
	"math"
	"testing"
	"time"

	"github.com/lintang-b-s/transitmatch/pkg/datastructure"
	"github.com/lintang-b-s/transitmatch/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSpatialMatchesForTripMidpoint(t *testing.T) {
	block := buildTestBlock(t)
	sm := newTestMatcher()

	// ~11m north of the middle of out-1 segment 1
	matches := sm.GetSpatialMatchesForTrip(report(0.0001, 0.0025, 0, headingEast), block, block.GetTrip(0))

	require.Len(t, matches, 2)
	assert.True(t, matches[0].IsLayover())

	onPath := nonLayover(matches)
	require.Len(t, onPath, 1)
	match := onPath[0]
	assert.Equal(t, 0, match.GetTripIndex())
	assert.Equal(t, 1, match.GetStopPathIndex())
	assert.Equal(t, 1, match.GetSegmentIndex())
	assert.InDelta(t, 11.12, match.GetDistanceToSegment(), 0.1)
	segmentLength := match.GetIndices().GetSegment().Length()
	assert.InDelta(t, segmentLength/2, match.GetDistanceAlongSegment(), 0.5)
}

func TestGetSpatialMatchesForTripWrongDirection(t *testing.T) {
	block := buildTestBlock(t)
	sm := newTestMatcher()

	matches := sm.GetSpatialMatchesForTrip(report(0.0001, 0.0025, 0, headingWest), block, block.GetTrip(0))

	assert.Empty(t, nonLayover(matches))
}

func TestGetSpatialMatchesForTripLayoverOnly(t *testing.T) {
	block := buildTestBlock(t)
	sm := newTestMatcher()

	// ~556m north of the layover stop path, far from every segment
	matches := sm.GetSpatialMatchesForTrip(report(0.005, 0.0005, 0, headingEast), block, block.GetTrip(0))

	require.Len(t, matches, 1)
	match := matches[0]
	assert.True(t, match.IsLayover())
	assert.Equal(t, 0, match.GetStopPathIndex())
	assert.InDelta(t, 556.0, match.GetDistanceToSegment(), 1)
	assert.Equal(t, match.GetIndices().GetSegment().Length(), match.GetDistanceAlongSegment())
}

func TestGetSpatialMatchesForTripTripEndsWhileImproving(t *testing.T) {
	block := buildTestBlock(t)
	sm := newTestMatcher()

	// near the last segment of t1, distance still improving when the trip ends
	matches := sm.GetSpatialMatchesForTrip(report(0.0001, 0.0058, 0, headingEast), block, block.GetTrip(0))

	onPath := nonLayover(matches)
	require.Len(t, onPath, 1)
	assert.Equal(t, 2, onPath[0].GetStopPathIndex())
	assert.Equal(t, 1, onPath[0].GetSegmentIndex())
}

func TestGetSpatialMatchesForTripOrdered(t *testing.T) {
	block := buildTestBlock(t)
	sm := newTestMatcher()

	reports := []*datastructure.GPSPoint{
		report(0.0001, 0.0025, 0, headingEast),
		report(0.0001, 0.0025, 0, math.NaN()),
		report(-0.0002, 0.0041, 0, headingWest),
		report(0.0003, 0.0005, 0, math.NaN()),
		report(0.0000, 0.0060, 0, headingEast),
		report(0.002, 0.003, 0, headingEast),
	}

	for _, r := range reports {
		for _, trip := range block.GetTrips() {
			matches := sm.GetSpatialMatchesForTrip(r, block, trip)
			require.NotNil(t, matches)
			for i := 1; i < len(matches); i++ {
				prev, cur := matches[i-1], matches[i]
				assert.True(t, prev.LessThanOrEqualTo(cur), "%v before %v", prev, cur)
				if !prev.IsLayover() && !cur.IsLayover() {
					assert.False(t, prev.GetIndices().Equal(cur.GetIndices()), "%v and %v", prev, cur)
				}
			}
			for _, m := range matches {
				if m.IsLayover() {
					assert.Equal(t, m.GetIndices().GetSegment().Length(), m.GetDistanceAlongSegment())
				}
			}
		}
	}
}

func TestGetSpatialMatchesForTripLayoverAfterPendingMatch(t *testing.T) {
	pattern := newTestPattern(t, "detour",
		newTestStopPath(t, "detour-0", line(0, 0.000, 0.001), false),
		// closer to the report than detour-0 but driven in the opposite direction
		newTestStopPath(t, "detour-1", line(0.00005, 0.001, 0.0005), true),
		newTestStopPath(t, "detour-2", []geo.Coordinate{
			geo.NewCoordinate(0.00005, 0.0005), geo.NewCoordinate(0.002, 0.0005),
		}, false),
	)
	block, err := datastructure.NewBlock("b3", []*datastructure.Trip{
		datastructure.NewTrip("detour", datastructure.NewRoute("r", math.NaN()), pattern),
	})
	require.NoError(t, err)
	sm := newTestMatcher()

	matches := sm.GetSpatialMatchesForTrip(report(0.0001, 0.0008, 0, headingEast), block, block.GetTrip(0))

	require.Len(t, matches, 2)
	for i := 1; i < len(matches); i++ {
		assert.True(t, matches[i-1].LessThanOrEqualTo(matches[i]), "%v before %v", matches[i-1], matches[i])
	}
	assert.Equal(t, 0, matches[0].GetStopPathIndex())
	assert.False(t, matches[0].IsLayover())
	assert.True(t, matches[1].IsLayover())
}

func TestGetSpatialMatchesForTripIdempotent(t *testing.T) {
	block := buildTestBlock(t)
	sm := newTestMatcher()
	r := report(0.0001, 0.0025, 0, headingEast)

	first := sm.GetSpatialMatchesForTrip(r, block, block.GetTrip(2))
	second := sm.GetSpatialMatchesForTrip(r, block, block.GetTrip(2))

	assert.Equal(t, first, second)
}

func TestGetSpatialMatchesForTripUnknownTrip(t *testing.T) {
	block := buildTestBlock(t)
	other := datastructure.NewTrip("other", datastructure.NewRoute("r", math.NaN()), block.GetTrip(0).GetTripPattern())

	matches := newTestMatcher().GetSpatialMatchesForTrip(report(0.0001, 0.0025, 0, headingEast), block, other)

	assert.NotNil(t, matches)
	assert.Empty(t, matches)
}

func TestGetSpatialMatchesFromPreviousMatchNotBeforeStart(t *testing.T) {
	block := buildTestBlock(t)
	sm := newTestMatcher()
	previousMatch := NewSpatialMatch("v1", block, 0, 1, 1, 0, 80)
	vs := &fakeVehicleState{
		avlReport:               report(0.0001, 0.00227, 10*time.Second, headingEast),
		previousSuccessfulMatch: report(0, 0.00272, 0, headingEast),
		match:                   previousMatch,
	}

	matches := sm.GetSpatialMatchesFromPreviousMatch(vs)

	require.NotEmpty(t, matches)
	for _, m := range matches {
		assert.True(t, previousMatch.LessThanOrEqualTo(m), "%v is before %v", m, previousMatch)
	}
	first := nonLayover(matches)[0]
	assert.True(t, first.GetIndices().Equal(previousMatch.GetIndices()))
	assert.Equal(t, 80.0, first.GetDistanceAlongSegment())
	assert.Equal(t, 0.0, first.GetDistanceToSegment())
}

func TestGetSpatialMatchesFromPreviousMatchBudget(t *testing.T) {
	block := buildTestBlock(t)
	sm := newTestMatcher()
	previousMatch := NewSpatialMatch("v1", block, 0, 1, 1, 0, 80)

	scanned := func(elapsed time.Duration) int {
		vs := &fakeVehicleState{
			avlReport:               report(0.0001, 0.0035, elapsed, headingEast),
			previousSuccessfulMatch: report(0, 0.00272, 0, headingEast),
			match:                   previousMatch,
		}
		_, n := sm.getSpatialMatchesFromPreviousMatch(vs)
		return n
	}

	// 200m margin, starting 80m into a ~111m segment
	assert.Equal(t, 3, scanned(0))
	// 31.3*1.2*10+200 = 575.6m
	assert.Equal(t, 6, scanned(10*time.Second))

	previous := 0
	for _, elapsed := range []time.Duration{0, time.Second, 5 * time.Second, 10 * time.Second,
		30 * time.Second, time.Minute, 10 * time.Minute} {
		n := scanned(elapsed)
		assert.GreaterOrEqual(t, n, previous, "elapsed %v", elapsed)
		previous = n
	}
	// whole rest of the block
	assert.Equal(t, 22, previous)
}

func TestGetSpatialMatchesFromPreviousMatchEndOfBlock(t *testing.T) {
	block := buildTestBlock(t)
	sm := newTestMatcher()
	// t4 in-2 segment 0, ~172m before the end of the block
	previousMatch := NewSpatialMatch("v1", block, 3, 2, 0, 3, 50)
	vs := &fakeVehicleState{
		avlReport:               report(0.01, 0.0, 20*time.Second, headingWest),
		previousSuccessfulMatch: report(0, 0.0015, 0, headingWest),
		match:                   previousMatch,
	}

	matches := sm.GetSpatialMatchesFromPreviousMatch(vs)

	require.Len(t, matches, 1)
	match := matches[0]
	assert.Equal(t, 3, match.GetTripIndex())
	assert.Equal(t, 2, match.GetStopPathIndex())
	assert.Equal(t, 1, match.GetSegmentIndex())
	assert.True(t, math.IsNaN(match.GetDistanceToSegment()))
	assert.Equal(t, match.GetIndices().GetSegment().Length(), match.GetDistanceAlongSegment())
}

func TestGetSpatialMatchesFromPreviousMatchNotNearEnd(t *testing.T) {
	block := buildTestBlock(t)
	sm := newTestMatcher()
	previousMatch := NewSpatialMatch("v1", block, 3, 1, 0, 3, 50)
	vs := &fakeVehicleState{
		avlReport:               report(0.01, 0.0, 20*time.Second, headingWest),
		previousSuccessfulMatch: report(0, 0.0045, 0, headingWest),
		match:                   previousMatch,
	}

	matches := sm.GetSpatialMatchesFromPreviousMatch(vs)

	assert.NotNil(t, matches)
	assert.Empty(t, matches)
}

func TestGetSpatialMatchesFromPreviousMatchNoMatch(t *testing.T) {
	vs := &fakeVehicleState{avlReport: report(0, 0, 0, headingEast)}

	matches := newTestMatcher().GetSpatialMatchesFromPreviousMatch(vs)

	assert.NotNil(t, matches)
	assert.Empty(t, matches)
}
