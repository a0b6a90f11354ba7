package spatial

import (
	"math"

	"github.com/lintang-b-s/transitmatch/pkg/datastructure"
	"github.com/lintang-b-s/transitmatch/pkg/util"
	"go.uber.org/zap"
)

// GetSpatialMatchesForTrip. scan every segment of trip once, starting at its first segment. never returns nil.
func (sm *SpatialMatcher) GetSpatialMatchesForTrip(avlReport *datastructure.GPSPoint, block *datastructure.Block,
	trip *datastructure.Trip) []*SpatialMatch {
	tripIndex := block.GetTripIndex(trip)
	if tripIndex < 0 {
		sm.log.Error("trip is not part of the block",
			zap.String("vehicleId", avlReport.VehicleId()),
			zap.String("tripId", trip.GetId()),
			zap.String("blockId", block.GetId()))
		return make([]*SpatialMatch, 0)
	}

	sc := newScanContext(nil)
	indices := NewIndices(block, tripIndex, 0, 0)
	for {
		sm.processPossiblePotentialMatch(sc, avlReport, indices)

		indices = indices.Increment()
		if indices.PastEndOfBlock() || indices.AtBeginningOfTrip() {
			break
		}
	}

	// trip ended while distances were still improving
	sc.commitPotentialMatch()

	return sc.spatialMatches
}

// GetSpatialMatchesFromPreviousMatch. search forward along the block from the last match of the vehicle,
// as far as the vehicle could have plausibly traveled since then. never returns nil.
func (sm *SpatialMatcher) GetSpatialMatchesFromPreviousMatch(vehicleState VehicleState) []*SpatialMatch {
	matches, _ := sm.getSpatialMatchesFromPreviousMatch(vehicleState)
	return matches
}

func (sm *SpatialMatcher) getSpatialMatchesFromPreviousMatch(vehicleState VehicleState) ([]*SpatialMatch, int) {
	previousMatch := vehicleState.GetMatch()
	avlReport := vehicleState.GetAvlReport()
	if previousMatch == nil || avlReport == nil {
		sm.log.Error("no previous match to search forward from",
			zap.String("vehicleId", vehicleState.GetVehicleId()))
		return make([]*SpatialMatch, 0), 0
	}

	distanceAlongPathToSearch := sm.searchDistance(avlReport, vehicleState.GetPreviousAvlReportFromSuccessfulMatch())

	// already traveled part of the starting segment
	distanceSearched := -previousMatch.GetDistanceAlongSegment()

	sc := newScanContext(previousMatch)
	indices := NewIndicesFromMatch(previousMatch)
	for !indices.PastEndOfBlock() && distanceSearched < distanceAlongPathToSearch {
		sm.processPossiblePotentialMatch(sc, avlReport, indices)

		distanceSearched += indices.GetSegment().Length()

		indices = indices.Increment()
	}

	sc.commitPotentialMatch()

	if len(sc.spatialMatches) > 0 {
		sm.log.Debug("match with the best distance",
			zap.String("vehicleId", vehicleState.GetVehicleId()),
			zap.Stringer("smallestDistanceSpatialMatch", sc.smallestDistanceSpatialMatch))
	} else if sc.smallestDistanceSpatialMatch != nil {
		sm.log.Warn("found no spatial matches within allowable distance of segments",
			zap.String("vehicleId", vehicleState.GetVehicleId()),
			zap.String("bestDistance", util.DistanceFormat(sc.smallestDistanceSpatialMatch.GetDistanceToSegment())),
			zap.Stringer("smallestDistanceSpatialMatch", sc.smallestDistanceSpatialMatch))
	} else {
		sm.log.Warn("found no spatial matches, no segment was examined",
			zap.String("vehicleId", vehicleState.GetVehicleId()),
			zap.Float64("distanceAlongPathToSearch", distanceAlongPathToSearch))
	}

	// a report may never land right at the last stop of the block, and there is no layover after it
	if previousMatch.IsLastTripOfBlock() &&
		previousMatch.WithinDistanceOfEndOfTrip(sm.cfg.DistanceFromLastStopForEndMatching) {
		matchAtEndOfBlock := endOfBlockMatch(vehicleState.GetVehicleId(), previousMatch)
		sm.log.Debug("within distance of end of trip, adding the very end of the block as a potential spatial match",
			zap.String("vehicleId", vehicleState.GetVehicleId()),
			zap.Stringer("matchAtEndOfBlock", matchAtEndOfBlock))
		sc.spatialMatches = append(sc.spatialMatches, matchAtEndOfBlock)
	}

	return sc.spatialMatches, sc.segmentsExamined
}

// searchDistance. meters the vehicle could have traveled between the two reports at a bit more than
// the max speed, plus a margin.
func (sm *SpatialMatcher) searchDistance(avlReport, previousAvlReport *datastructure.GPSPoint) float64 {
	elapsedSec := 0.0
	if previousAvlReport != nil {
		elapsedSec = math.Max(0, avlReport.Time().Sub(previousAvlReport.Time()).Seconds())
	}
	return sm.cfg.MaxAvlSpeed*SEARCH_DISTANCE_SPEED_FACTOR*elapsedSec + SEARCH_DISTANCE_MARGIN
}

// endOfBlockMatch. match at the end of the last segment of the last stop path of the trip of previousMatch.
func endOfBlockMatch(vehicleId string, previousMatch *SpatialMatch) *SpatialMatch {
	trip := previousMatch.GetTrip()
	lastStopPathIndex := trip.NumberStopPaths() - 1
	lastStopPath := trip.GetStopPath(lastStopPathIndex)
	lastSegmentIndex := lastStopPath.NumberSegments() - 1
	segmentLength := lastStopPath.GetSegment(lastSegmentIndex).Length()
	return NewSpatialMatch(vehicleId, previousMatch.GetBlock(), previousMatch.GetTripIndex(),
		lastStopPathIndex, lastSegmentIndex, math.NaN(), segmentLength)
}
