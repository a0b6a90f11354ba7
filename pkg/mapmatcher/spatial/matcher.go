package spatial

import (
	"math"

	"github.com/lintang-b-s/transitmatch/pkg/datastructure"
	"go.uber.org/zap"
)

/*
SpatialMatcher. finds the spatial matches of an avl report on a block. a spatial match is a segment
where the report is within the allowable distance of the segment, the heading is ok and the distance
to the segment is a local minimum along the path. layovers are always matches since the vehicle is
allowed to be off the path there.

SpatialMatcher only holds read-only config, every scan keeps its own scanContext so one matcher can
be shared by goroutines matching different vehicles.
*/
type SpatialMatcher struct {
	cfg Config
	log *zap.Logger
}

func NewSpatialMatcher(cfg Config, log *zap.Logger) *SpatialMatcher {
	return &SpatialMatcher{
		cfg: cfg,
		log: log,
	}
}

// scanContext is the mutable state of one scan over a trip or one bounded forward search.
type scanContext struct {
	// matches before this one are not allowed, nil for a full trip scan
	startSearchSpatialMatch *SpatialMatch

	spatialMatches []*SpatialMatch

	previousDistanceToSegment float64

	// last candidate with acceptable heading and distance while the distance was still improving
	previousPotentialSpatialMatch *SpatialMatch

	// best match by distance even if not acceptable, only for logging
	smallestDistanceSpatialMatch *SpatialMatch

	segmentsExamined int
}

func newScanContext(startSearchSpatialMatch *SpatialMatch) *scanContext {
	return &scanContext{
		startSearchSpatialMatch:   startSearchSpatialMatch,
		spatialMatches:            make([]*SpatialMatch, 0),
		previousDistanceToSegment: math.Inf(1),
	}
}

// addSpatialMatch. keeps spatialMatches ordered by position. a pending match is committed only once
// the scan has moved past it, so it may belong before a layover match recorded in between.
func (sc *scanContext) addSpatialMatch(match *SpatialMatch) {
	pos := len(sc.spatialMatches)
	for pos > 0 && match.LessThanOrEqualTo(sc.spatialMatches[pos-1]) &&
		!sc.spatialMatches[pos-1].LessThanOrEqualTo(match) {
		pos--
	}
	sc.spatialMatches = append(sc.spatialMatches, nil)
	copy(sc.spatialMatches[pos+1:], sc.spatialMatches[pos:])
	sc.spatialMatches[pos] = match
}

// commitPotentialMatch. a layover candidate was already recorded when it was examined.
func (sc *scanContext) commitPotentialMatch() *SpatialMatch {
	committed := sc.previousPotentialSpatialMatch
	sc.previousPotentialSpatialMatch = nil
	if committed == nil || committed.IsLayover() {
		return committed
	}
	sc.addSpatialMatch(committed)
	return committed
}

// getMaxAllowableDistanceFromSegment. route specific max distance if set, otherwise the global one.
func (sm *SpatialMatcher) getMaxAllowableDistanceFromSegment(indices Indices) float64 {
	route := indices.GetRoute()
	if route != nil && route.HasMaxAllowableDistanceFromSegment() {
		return route.GetMaxAllowableDistanceFromSegment()
	}
	return sm.cfg.MaxDistanceFromSegment
}

// processPossiblePotentialMatch. examine one segment of the scan. a match is recorded once the
// distance to the segments starts increasing again after having been acceptable.
func (sm *SpatialMatcher) processPossiblePotentialMatch(sc *scanContext, avlReport *datastructure.GPSPoint,
	potentialMatchIndices Indices) {
	segment := potentialMatchIndices.GetSegment()
	location := avlReport.Location()
	distanceToSegment := segment.DistanceTo(location)
	distanceAlongSegment := segment.DistanceAlongSegment(location)
	atLayover := potentialMatchIndices.IsLayover()
	sc.segmentsExamined++

	if start := sc.startSearchSpatialMatch; start != nil {
		startIndices := start.GetIndices()
		if potentialMatchIndices.LessThan(startIndices) {
			sm.log.Error("looking at segment that is before the segment of the previous match",
				zap.String("vehicleId", avlReport.VehicleId()),
				zap.Stringer("potentialMatchIndices", potentialMatchIndices),
				zap.Stringer("startSearchSpatialMatch", start))
			return
		}

		if potentialMatchIndices.Equal(startIndices) &&
			distanceAlongSegment < start.GetDistanceAlongSegment() {
			sm.log.Debug("spatial match was before the starting previous match so using the previous match",
				zap.String("vehicleId", avlReport.VehicleId()),
				zap.Float64("distanceAlongSegment", distanceAlongSegment),
				zap.Stringer("startSearchSpatialMatch", start))
			distanceAlongSegment = start.GetDistanceAlongSegment()
			distanceToSegment = start.GetDistanceToSegment()
		}
	}

	// layover match is the stop itself
	if atLayover {
		distanceAlongSegment = segment.Length()
	}

	spatialMatch := NewSpatialMatch(avlReport.VehicleId(), potentialMatchIndices.GetBlock(),
		potentialMatchIndices.GetTripIndex(), potentialMatchIndices.GetStopPathIndex(),
		potentialMatchIndices.GetSegmentIndex(), distanceToSegment, distanceAlongSegment)

	if distanceToSegment <= sc.previousDistanceToSegment {
		headingOK := segment.HeadingOK(avlReport.Heading(), sm.cfg.MaxHeadingOffsetFromSegment)
		distanceOK := distanceToSegment < sm.getMaxAllowableDistanceFromSegment(potentialMatchIndices)
		if headingOK && distanceOK {
			sc.previousPotentialSpatialMatch = spatialMatch
			sm.log.Debug("distance to segment is better and heading and distance are ok, keeping it as potential match",
				zap.String("vehicleId", avlReport.VehicleId()),
				zap.Float64("distanceToSegment", distanceToSegment))
		} else {
			sm.log.Debug("distance to segment is better but heading or distance not ok",
				zap.String("vehicleId", avlReport.VehicleId()),
				zap.Float64("distanceToSegment", distanceToSegment),
				zap.Float64("previousDistanceToSegment", sc.previousDistanceToSegment),
				zap.Bool("headingOK", headingOK), zap.Bool("distanceOK", distanceOK))
		}
	} else if committed := sc.commitPotentialMatch(); committed != nil {
		sm.log.Debug("moving away from a local minimum, adding the previous potential match",
			zap.String("vehicleId", avlReport.VehicleId()),
			zap.Float64("distanceToSegment", distanceToSegment),
			zap.Float64("previousDistanceToSegment", sc.previousDistanceToSegment),
			zap.Stringer("spatialMatch", committed))
	}

	sc.previousDistanceToSegment = distanceToSegment

	if atLayover {
		sm.log.Debug("segment is at a layover so adding it to the spatial matches",
			zap.String("vehicleId", avlReport.VehicleId()),
			zap.Stringer("spatialMatch", spatialMatch))
		sc.addSpatialMatch(spatialMatch)
	}

	if sc.smallestDistanceSpatialMatch == nil ||
		distanceToSegment < sc.smallestDistanceSpatialMatch.GetDistanceToSegment() {
		sc.smallestDistanceSpatialMatch = spatialMatch
	}
}
