package spatialindex

import (
	"math"

	"github.com/lintang-b-s/transitmatch/pkg/datastructure"
	"github.com/lintang-b-s/transitmatch/pkg/geo"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"
)

type Rtree struct {
	tr *rtree.RTreeG[patternRef]
}

// trips of a block that share a trip pattern share its geometry, so a segment is indexed once
// per (block, trip pattern).
type patternRef struct {
	block         *datastructure.Block
	tripPatternId string
}

// TripCandidate is a trip of a block that passes near a report.
type TripCandidate struct {
	Block *datastructure.Block
	Trip  *datastructure.Trip
}

func NewRtree() *Rtree {
	var tr rtree.RTreeG[patternRef]
	return &Rtree{
		tr: &tr,
	}
}

// Build. index every segment of every block, each leaf bounding box is padded by boundingBoxRadius (in km).
func (rt *Rtree) Build(blocks []*datastructure.Block, boundingBoxRadius float64, log *zap.Logger) {
	log.Info("Building R-tree spatial index...", zap.Int("numberOfBlocks", len(blocks)))
	numberOfSegments := 0
	for _, block := range blocks {
		indexed := make(map[string]struct{})
		for _, trip := range block.GetTrips() {
			pattern := trip.GetTripPattern()
			if _, ok := indexed[pattern.GetId()]; ok {
				continue
			}
			indexed[pattern.GetId()] = struct{}{}

			ref := patternRef{block: block, tripPatternId: pattern.GetId()}
			for i := 0; i < pattern.NumberStopPaths(); i++ {
				stopPath := pattern.GetStopPath(i)
				for j := 0; j < stopPath.NumberSegments(); j++ {
					segment := stopPath.GetSegment(j)
					min, max := paddedBounds(segment.From(), segment.To(), boundingBoxRadius)
					rt.tr.Insert(min, max, ref)
					numberOfSegments++
				}
			}
		}
	}

	log.Info("R-tree spatial index built.", zap.Int("numberOfSegments", numberOfSegments))
}

func paddedBounds(from, to geo.Coordinate, radius float64) ([2]float64, [2]float64) {
	lowerFromLat, lowerFromLon := geo.GetDestinationPoint(from.Lat, from.Lon, 225, radius)
	upperFromLat, upperFromLon := geo.GetDestinationPoint(from.Lat, from.Lon, 45, radius)

	lowerToLat, lowerToLon := geo.GetDestinationPoint(to.Lat, to.Lon, 225, radius)
	upperToLat, upperToLon := geo.GetDestinationPoint(to.Lat, to.Lon, 45, radius)

	minLat := math.Min(lowerFromLat, lowerToLat)
	minLon := math.Min(lowerFromLon, lowerToLon)
	maxLat := math.Max(upperFromLat, upperToLat)
	maxLon := math.Max(upperFromLon, upperToLon)
	return [2]float64{minLon, minLat}, [2]float64{maxLon, maxLat}
}

// SearchTripsWithinRadius. trips with a segment within radius (in km) of (qLat, qLon), in block order.
func (rt *Rtree) SearchTripsWithinRadius(qLat, qLon, radius float64) []TripCandidate {
	lowerLat, lowerLon := geo.GetDestinationPoint(qLat, qLon, 225, radius)
	upperLat, upperLon := geo.GetDestinationPoint(qLat, qLon, 45, radius)

	seen := make(map[patternRef]struct{})
	blocks := make([]*datastructure.Block, 0)
	patternsOfBlock := make(map[*datastructure.Block]map[string]struct{})
	rt.tr.Search([2]float64{lowerLon, lowerLat}, [2]float64{upperLon, upperLat},
		func(min, max [2]float64, data patternRef) bool {
			if _, ok := seen[data]; ok {
				return true
			}
			seen[data] = struct{}{}
			if _, ok := patternsOfBlock[data.block]; !ok {
				patternsOfBlock[data.block] = make(map[string]struct{})
				blocks = append(blocks, data.block)
			}
			patternsOfBlock[data.block][data.tripPatternId] = struct{}{}
			return true
		})

	results := make([]TripCandidate, 0, len(seen))
	for _, block := range blocks {
		for _, trip := range block.GetTrips() {
			if _, ok := patternsOfBlock[block][trip.GetTripPattern().GetId()]; ok {
				results = append(results, TripCandidate{Block: block, Trip: trip})
			}
		}
	}
	return results
}

// SearchTripsOfBlockWithinRadius. like SearchTripsWithinRadius but only the trips of blockId.
func (rt *Rtree) SearchTripsOfBlockWithinRadius(blockId string, qLat, qLon, radius float64) []*datastructure.Trip {
	trips := make([]*datastructure.Trip, 0)
	for _, candidate := range rt.SearchTripsWithinRadius(qLat, qLon, radius) {
		if candidate.Block.GetId() == blockId {
			trips = append(trips, candidate.Trip)
		}
	}
	return trips
}
