package datastructure

import (
	"errors"
	"fmt"
	"math"

	"github.com/lintang-b-s/transitmatch/pkg/geo"
)

var (
	ErrEmptyBlock         = errors.New("block has no trips")
	ErrInvalidStopPath    = errors.New("stop path needs at least two points")
	ErrEmptyTripPattern   = errors.New("trip pattern has no stop paths")
	ErrUnknownRoute       = errors.New("unknown route")
	ErrUnknownTripPattern = errors.New("unknown trip pattern")
)

// Route. maxDistanceFromSegment is NaN when the route doesn't override the global max distance.
type Route struct {
	id                     string
	maxDistanceFromSegment float64
}

func NewRoute(id string, maxDistanceFromSegment float64) *Route {
	return &Route{
		id:                     id,
		maxDistanceFromSegment: maxDistanceFromSegment,
	}
}

func (r *Route) GetId() string {
	return r.id
}

func (r *Route) GetMaxAllowableDistanceFromSegment() float64 {
	return r.maxDistanceFromSegment
}

func (r *Route) HasMaxAllowableDistanceFromSegment() bool {
	return !math.IsNaN(r.maxDistanceFromSegment)
}

// StopPath is the path from the previous stop to stopId. a layover stop path is the one where
// the vehicle is allowed to wait off the path geometry.
type StopPath struct {
	id          string
	stopId      string
	layoverStop bool
	segments    []geo.Segment
	length      float64
}

func NewStopPath(id, stopId string, points []geo.Coordinate, layoverStop bool) (*StopPath, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("stop path %s: %w", id, ErrInvalidStopPath)
	}
	segments := geo.NewSegments(points)
	length := 0.0
	for _, seg := range segments {
		length += seg.Length()
	}
	return &StopPath{
		id:          id,
		stopId:      stopId,
		layoverStop: layoverStop,
		segments:    segments,
		length:      length,
	}, nil
}

func (sp *StopPath) GetId() string {
	return sp.id
}

func (sp *StopPath) GetStopId() string {
	return sp.stopId
}

func (sp *StopPath) IsLayoverStop() bool {
	return sp.layoverStop
}

func (sp *StopPath) NumberSegments() int {
	return len(sp.segments)
}

func (sp *StopPath) GetSegment(i int) geo.Segment {
	return sp.segments[i]
}

func (sp *StopPath) GetLength() float64 {
	return sp.length
}

// TripPattern is shared by every trip that follows exactly the same stop paths.
type TripPattern struct {
	id        string
	stopPaths []*StopPath
}

func NewTripPattern(id string, stopPaths []*StopPath) (*TripPattern, error) {
	if len(stopPaths) == 0 {
		return nil, fmt.Errorf("trip pattern %s: %w", id, ErrEmptyTripPattern)
	}
	return &TripPattern{
		id:        id,
		stopPaths: stopPaths,
	}, nil
}

func (tp *TripPattern) GetId() string {
	return tp.id
}

func (tp *TripPattern) NumberStopPaths() int {
	return len(tp.stopPaths)
}

func (tp *TripPattern) GetStopPath(i int) *StopPath {
	return tp.stopPaths[i]
}

// HasLayoverStop. some stop path of the pattern is a layover.
func (tp *TripPattern) HasLayoverStop() bool {
	for _, sp := range tp.stopPaths {
		if sp.IsLayoverStop() {
			return true
		}
	}
	return false
}

func (tp *TripPattern) GetLength() float64 {
	length := 0.0
	for _, sp := range tp.stopPaths {
		length += sp.GetLength()
	}
	return length
}

type Trip struct {
	id      string
	route   *Route
	pattern *TripPattern
}

func NewTrip(id string, route *Route, pattern *TripPattern) *Trip {
	return &Trip{
		id:      id,
		route:   route,
		pattern: pattern,
	}
}

func (t *Trip) GetId() string {
	return t.id
}

func (t *Trip) GetRoute() *Route {
	return t.route
}

func (t *Trip) GetTripPattern() *TripPattern {
	return t.pattern
}

func (t *Trip) NumberStopPaths() int {
	return t.pattern.NumberStopPaths()
}

func (t *Trip) GetStopPath(i int) *StopPath {
	return t.pattern.GetStopPath(i)
}

// Block is the ordered sequence of trips a vehicle serves. read-only once built, safe to share
// between goroutines.
type Block struct {
	id        string
	trips     []*Trip
	tripIndex map[string]int
}

func NewBlock(id string, trips []*Trip) (*Block, error) {
	if len(trips) == 0 {
		return nil, fmt.Errorf("block %s: %w", id, ErrEmptyBlock)
	}
	tripIndex := make(map[string]int, len(trips))
	for i, trip := range trips {
		tripIndex[trip.GetId()] = i
	}
	return &Block{
		id:        id,
		trips:     trips,
		tripIndex: tripIndex,
	}, nil
}

func (b *Block) GetId() string {
	return b.id
}

func (b *Block) NumberTrips() int {
	return len(b.trips)
}

func (b *Block) GetTrip(i int) *Trip {
	return b.trips[i]
}

func (b *Block) GetTrips() []*Trip {
	return b.trips
}

// GetTripIndex. -1 if trip is not part of the block
func (b *Block) GetTripIndex(trip *Trip) int {
	idx, ok := b.tripIndex[trip.GetId()]
	if !ok {
		return -1
	}
	return idx
}

func (b *Block) IsLastTrip(tripIndex int) bool {
	return tripIndex == len(b.trips)-1
}

// DistanceToEndOfTrip. remaining path length in meter from the position to the last stop of the trip.
func (b *Block) DistanceToEndOfTrip(tripIndex, stopPathIndex, segmentIndex int,
	distanceAlongSegment float64) float64 {
	trip := b.trips[tripIndex]
	stopPath := trip.GetStopPath(stopPathIndex)

	remaining := stopPath.GetSegment(segmentIndex).Length() - distanceAlongSegment
	for i := segmentIndex + 1; i < stopPath.NumberSegments(); i++ {
		remaining += stopPath.GetSegment(i).Length()
	}
	for i := stopPathIndex + 1; i < trip.NumberStopPaths(); i++ {
		remaining += trip.GetStopPath(i).GetLength()
	}
	return remaining
}

// NearEndOfBlock. true if the position is on the last trip of the block and less than distance
// meters away from its last stop.
func (b *Block) NearEndOfBlock(tripIndex, stopPathIndex, segmentIndex int,
	distanceAlongSegment, distance float64) bool {
	if !b.IsLastTrip(tripIndex) {
		return false
	}
	return b.DistanceToEndOfTrip(tripIndex, stopPathIndex, segmentIndex, distanceAlongSegment) < distance
}
