package spatial

import (
	"fmt"
	"strings"

	"github.com/lintang-b-s/transitmatch/pkg/datastructure"
	"github.com/lintang-b-s/transitmatch/pkg/geo"
)

// Indices is a position in the block -> trip -> stop path -> segment hierarchy.
type Indices struct {
	block         *datastructure.Block
	tripIndex     int
	stopPathIndex int
	segmentIndex  int
}

func NewIndices(block *datastructure.Block, tripIndex, stopPathIndex, segmentIndex int) Indices {
	return Indices{
		block:         block,
		tripIndex:     tripIndex,
		stopPathIndex: stopPathIndex,
		segmentIndex:  segmentIndex,
	}
}

// NewIndicesFromMatch. indices at the exact position of the match
func NewIndicesFromMatch(match *SpatialMatch) Indices {
	return match.GetIndices()
}

func (i Indices) GetBlock() *datastructure.Block {
	return i.block
}

func (i Indices) GetTripIndex() int {
	return i.tripIndex
}

func (i Indices) GetStopPathIndex() int {
	return i.stopPathIndex
}

func (i Indices) GetSegmentIndex() int {
	return i.segmentIndex
}

func (i Indices) GetTrip() *datastructure.Trip {
	return i.block.GetTrip(i.tripIndex)
}

func (i Indices) GetRoute() *datastructure.Route {
	return i.GetTrip().GetRoute()
}

func (i Indices) GetStopPath() *datastructure.StopPath {
	return i.GetTrip().GetStopPath(i.stopPathIndex)
}

func (i Indices) GetSegment() geo.Segment {
	return i.GetStopPath().GetSegment(i.segmentIndex)
}

// Increment. next segment, rolling over into the next stop path and then into the next trip.
// incrementing past the last segment of the block gives indices for which PastEndOfBlock is true.
func (i Indices) Increment() Indices {
	if i.PastEndOfBlock() {
		return i
	}
	next := i
	next.segmentIndex++
	if next.segmentIndex < i.GetStopPath().NumberSegments() {
		return next
	}

	next.segmentIndex = 0
	next.stopPathIndex++
	if next.stopPathIndex < i.GetTrip().NumberStopPaths() {
		return next
	}

	next.stopPathIndex = 0
	next.tripIndex++
	return next
}

// IsLayover. the stop path is a layover, vehicle is allowed to be away from the path there.
func (i Indices) IsLayover() bool {
	return i.GetStopPath().IsLayoverStop()
}

func (i Indices) AtBeginningOfTrip() bool {
	return i.stopPathIndex == 0 && i.segmentIndex == 0
}

func (i Indices) PastEndOfBlock() bool {
	return i.tripIndex >= i.block.NumberTrips()
}

func (i Indices) IsLastTripOfBlock() bool {
	return i.block.IsLastTrip(i.tripIndex)
}

// Compare. -1 if i is before other, 0 if equal, +1 if after. ordered by block, trip, stop path,
// then segment.
func (i Indices) Compare(other Indices) int {
	if c := strings.Compare(i.block.GetId(), other.block.GetId()); c != 0 {
		return c
	}
	if c := compareInt(i.tripIndex, other.tripIndex); c != 0 {
		return c
	}
	if c := compareInt(i.stopPathIndex, other.stopPathIndex); c != 0 {
		return c
	}
	return compareInt(i.segmentIndex, other.segmentIndex)
}

func (i Indices) LessThan(other Indices) bool {
	return i.Compare(other) < 0
}

func (i Indices) Equal(other Indices) bool {
	return i.Compare(other) == 0
}

func (i Indices) String() string {
	return fmt.Sprintf("Indices[blockId=%s tripIndex=%d stopPathIndex=%d segmentIndex=%d]",
		i.block.GetId(), i.tripIndex, i.stopPathIndex, i.segmentIndex)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
