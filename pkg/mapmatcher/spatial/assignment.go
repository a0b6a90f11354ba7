package spatial

import (
	"context"

	"github.com/lintang-b-s/transitmatch/pkg/datastructure"
	"github.com/lintang-b-s/transitmatch/pkg/util"
	"go.uber.org/zap"
)

type tripPatternMatches struct {
	matches  []*SpatialMatch
	accepted bool
}

/*
GetSpatialMatches. spatial matches of the current avl report of the vehicle on each trip in trips, used when
first assigning a vehicle to block. trips with the same trip pattern are scanned once, the matches are cloned
for the other trips. matches near the end of the block are dropped so that a vehicle that just finished
its block is not assigned to it again.

ctx is checked between trips. if it is done, the matches found so far are returned together with ctx.Err().
*/
func (sm *SpatialMatcher) GetSpatialMatches(ctx context.Context, vehicleState VehicleState,
	trips []*datastructure.Trip, block *datastructure.Block) ([]*SpatialMatch, error) {
	avlReport := vehicleState.GetAvlReport()
	if avlReport == nil {
		return make([]*SpatialMatch, 0), util.WrapErrorf(ErrNoAvlReport, util.ErrBadParamInput,
			"vehicle %s", vehicleState.GetVehicleId())
	}

	spatialMatchesForAllTrips := make([]*SpatialMatch, 0)
	tripPatternsCovered := make(map[string]tripPatternMatches)

	var err error
	for _, trip := range trips {
		if util.StopConcurrentOperation(ctx) {
			err = ctx.Err()
			sm.log.Warn("spatial matching cancelled",
				zap.String("vehicleId", vehicleState.GetVehicleId()),
				zap.String("blockId", block.GetId()),
				zap.Error(err))
			break
		}

		if block.GetTripIndex(trip) < 0 {
			sm.log.Error("trip to investigate is not part of the block",
				zap.String("vehicleId", vehicleState.GetVehicleId()),
				zap.String("tripId", trip.GetId()),
				zap.String("blockId", block.GetId()))
			continue
		}

		tripPatternId := trip.GetTripPattern().GetId()
		if covered, ok := tripPatternsCovered[tripPatternId]; ok {
			if !covered.accepted {
				continue
			}
			for _, match := range covered.matches {
				spatialMatchesForAllTrips = append(spatialMatchesForAllTrips, match.CloneForTrip(trip))
			}
			continue
		}

		spatialMatchesForTrip := sm.GetSpatialMatchesForTrip(avlReport, block, trip)

		// without a heading the report can match a trip going the other direction
		headingInProperDirection := sm.vehicleHeadingInDirectionOfTrip(spatialMatchesForTrip, vehicleState, block, trip)
		tripPatternsCovered[tripPatternId] = tripPatternMatches{
			matches:  spatialMatchesForTrip,
			accepted: headingInProperDirection,
		}
		if headingInProperDirection {
			spatialMatchesForAllTrips = append(spatialMatchesForAllTrips, spatialMatchesForTrip...)
		} else {
			sm.log.Debug("vehicle not heading in direction of trip, not using its spatial matches",
				zap.String("vehicleId", vehicleState.GetVehicleId()),
				zap.String("tripId", trip.GetId()))
		}
	}

	filtered := make([]*SpatialMatch, 0, len(spatialMatchesForAllTrips))
	for _, match := range spatialMatchesForAllTrips {
		if match.NearEndOfBlock(sm.cfg.DistanceFromEndOfBlockForInitialMatching) {
			sm.log.Debug("match is too close to the end of the block, not using it",
				zap.String("vehicleId", match.GetVehicleId()),
				zap.Float64("distanceFromEndOfBlock", sm.cfg.DistanceFromEndOfBlockForInitialMatching),
				zap.Stringer("spatialMatch", match))
			continue
		}
		filtered = append(filtered, match)
	}

	sm.log.Debug("finished determining spatial matches",
		zap.String("vehicleId", vehicleState.GetVehicleId()),
		zap.Stringer("avlReport", avlReport),
		zap.String("blockId", block.GetId()),
		zap.Int("numberSpatialMatches", len(filtered)))

	return filtered, err
}

// vehicleHeadingInDirectionOfTrip. when the report has no heading, the previous report far enough away must
// match the trip no later than the current one. missing data is not evidence against the trip.
func (sm *SpatialMatcher) vehicleHeadingInDirectionOfTrip(spatialMatchesForTrip []*SpatialMatch,
	vehicleState VehicleState, block *datastructure.Block, trip *datastructure.Trip) bool {
	avlReport := vehicleState.GetAvlReport()
	if len(spatialMatchesForTrip) == 0 || avlReport.HasValidHeading() {
		return true
	}

	currentNonLayoverSpatialMatch := firstNonLayoverSpatialMatch(spatialMatchesForTrip)
	if currentNonLayoverSpatialMatch == nil {
		return true
	}

	previousAvlReport := vehicleState.GetPreviousAvlReport(sm.cfg.DistanceBetweenAvlsForInitialMatchingWithoutHeading)
	if previousAvlReport == nil {
		return true
	}

	spatialMatchesForPreviousReport := sm.GetSpatialMatchesForTrip(previousAvlReport, block, trip)
	previousNonLayoverSpatialMatch := firstNonLayoverSpatialMatch(spatialMatchesForPreviousReport)
	if previousNonLayoverSpatialMatch == nil {
		return true
	}

	return previousNonLayoverSpatialMatch.LessThanOrEqualTo(currentNonLayoverSpatialMatch)
}

func firstNonLayoverSpatialMatch(spatialMatches []*SpatialMatch) *SpatialMatch {
	for _, match := range spatialMatches {
		if !match.IsLayover() {
			return match
		}
	}
	return nil
}
