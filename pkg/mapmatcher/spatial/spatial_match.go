package spatial

import (
	"fmt"

	"github.com/lintang-b-s/transitmatch/pkg/datastructure"
	"github.com/lintang-b-s/transitmatch/pkg/util"
)

// SpatialMatch is a candidate position of a vehicle on its block. immutable.
// distanceToSegment is NaN for the synthesized end of block match.
type SpatialMatch struct {
	vehicleId            string
	indices              Indices
	distanceToSegment    float64
	distanceAlongSegment float64
	atLayover            bool
}

func NewSpatialMatch(vehicleId string, block *datastructure.Block, tripIndex, stopPathIndex,
	segmentIndex int, distanceToSegment, distanceAlongSegment float64) *SpatialMatch {
	indices := NewIndices(block, tripIndex, stopPathIndex, segmentIndex)
	return &SpatialMatch{
		vehicleId:            vehicleId,
		indices:              indices,
		distanceToSegment:    distanceToSegment,
		distanceAlongSegment: distanceAlongSegment,
		atLayover:            indices.IsLayover(),
	}
}

// CloneForTrip. same position but on another trip of the block with the same trip pattern.
func (m *SpatialMatch) CloneForTrip(trip *datastructure.Trip) *SpatialMatch {
	block := m.indices.GetBlock()
	return NewSpatialMatch(m.vehicleId, block, block.GetTripIndex(trip),
		m.indices.GetStopPathIndex(), m.indices.GetSegmentIndex(),
		m.distanceToSegment, m.distanceAlongSegment)
}

func (m *SpatialMatch) GetVehicleId() string {
	return m.vehicleId
}

func (m *SpatialMatch) GetIndices() Indices {
	return m.indices
}

func (m *SpatialMatch) GetBlock() *datastructure.Block {
	return m.indices.GetBlock()
}

func (m *SpatialMatch) GetTripIndex() int {
	return m.indices.GetTripIndex()
}

func (m *SpatialMatch) GetTrip() *datastructure.Trip {
	return m.indices.GetTrip()
}

func (m *SpatialMatch) GetStopPathIndex() int {
	return m.indices.GetStopPathIndex()
}

func (m *SpatialMatch) GetStopPath() *datastructure.StopPath {
	return m.indices.GetStopPath()
}

func (m *SpatialMatch) GetSegmentIndex() int {
	return m.indices.GetSegmentIndex()
}

func (m *SpatialMatch) GetDistanceToSegment() float64 {
	return m.distanceToSegment
}

func (m *SpatialMatch) GetDistanceAlongSegment() float64 {
	return m.distanceAlongSegment
}

func (m *SpatialMatch) IsLayover() bool {
	return m.atLayover
}

func (m *SpatialMatch) IsLastTripOfBlock() bool {
	return m.indices.IsLastTripOfBlock()
}

// DistanceToEndOfTrip. meter left along the path until the last stop of the trip
func (m *SpatialMatch) DistanceToEndOfTrip() float64 {
	return m.GetBlock().DistanceToEndOfTrip(m.GetTripIndex(), m.GetStopPathIndex(),
		m.GetSegmentIndex(), m.distanceAlongSegment)
}

func (m *SpatialMatch) WithinDistanceOfEndOfTrip(distance float64) bool {
	return m.DistanceToEndOfTrip() < distance
}

// NearEndOfBlock. on the last trip of the block and within distance of its last stop
func (m *SpatialMatch) NearEndOfBlock(distance float64) bool {
	return m.GetBlock().NearEndOfBlock(m.GetTripIndex(), m.GetStopPathIndex(),
		m.GetSegmentIndex(), m.distanceAlongSegment, distance)
}

// LessThanOrEqualTo. m is not further along the block than other.
func (m *SpatialMatch) LessThanOrEqualTo(other *SpatialMatch) bool {
	c := m.indices.Compare(other.indices)
	if c != 0 {
		return c < 0
	}
	return m.distanceAlongSegment <= other.distanceAlongSegment
}

func (m *SpatialMatch) String() string {
	return fmt.Sprintf("SpatialMatch[vehicleId=%s blockId=%s tripId=%s tripIndex=%d stopPathIndex=%d "+
		"segmentIndex=%d distanceToSegment=%s distanceAlongSegment=%s atLayover=%t]",
		m.vehicleId, m.GetBlock().GetId(), m.GetTrip().GetId(), m.GetTripIndex(), m.GetStopPathIndex(),
		m.GetSegmentIndex(), util.DistanceFormat(m.distanceToSegment),
		util.DistanceFormat(m.distanceAlongSegment), m.atLayover)
}
