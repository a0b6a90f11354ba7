package usecases

import (
	"context"
	"errors"
	"math"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lintang-b-s/transitmatch/pkg/datastructure"
	"github.com/lintang-b-s/transitmatch/pkg/mapmatcher/spatial"
	"github.com/lintang-b-s/transitmatch/pkg/metrics"
	"github.com/lintang-b-s/transitmatch/pkg/util"
	"github.com/lintang-b-s/transitmatch/pkg/vehicle"
	"go.uber.org/zap"
)

var (
	ErrBlockNotFound   = errors.New("block not found")
	ErrVehicleNotFound = errors.New("vehicle not found")
)

// candidate trip lookups are cached per block and ~100m grid cell
const CANDIDATE_CELL_SIZE_DEG = 0.001

type candidateKey struct {
	blockId string
	latCell int64
	lonCell int64
}

// MatchResult. every candidate match of a report and the one recorded as the vehicle's position.
type MatchResult struct {
	VehicleId string
	BlockId   string
	Scan      string
	Matches   []*spatial.SpatialMatch
	Best      *spatial.SpatialMatch
}

type MapMatcherService struct {
	log          *zap.Logger
	matcher      SpatialMatcher
	schedule     Schedule
	spatialIndex SpatialIndex
	vehicles     *vehicle.Store
	metrics      *metrics.Collector

	searchRadius    float64 // km
	candidatesCache *lru.Cache[candidateKey, []*datastructure.Trip]
}

func NewMapMatcherService(log *zap.Logger, matcher SpatialMatcher, schedule Schedule, spatialIndex SpatialIndex,
	vehicles *vehicle.Store, collector *metrics.Collector, searchRadius float64, cacheSize int) (*MapMatcherService, error) {
	candidatesCache, err := lru.New[candidateKey, []*datastructure.Trip](cacheSize)
	if err != nil {
		return nil, err
	}
	return &MapMatcherService{
		log:             log,
		matcher:         matcher,
		schedule:        schedule,
		spatialIndex:    spatialIndex,
		vehicles:        vehicles,
		metrics:         collector,
		searchRadius:    searchRadius,
		candidatesCache: candidatesCache,
	}, nil
}

/*
ProcessReport. match report of a vehicle to blockId.

a vehicle already matched on the block is searched forward from its previous match. a new vehicle, a vehicle
that changed block, or a vehicle whose forward search found nothing is matched against the trips of the block
near the report. the best match (closest non layover match, otherwise the first layover match) becomes the
vehicle's match.
*/
func (ms *MapMatcherService) ProcessReport(ctx context.Context, report *datastructure.GPSPoint,
	blockId string) (MatchResult, error) {
	block, ok := ms.schedule.GetBlock(blockId)
	if !ok {
		return MatchResult{}, util.WrapErrorf(ErrBlockNotFound, util.ErrNotFound, "block %s", blockId)
	}

	result := MatchResult{
		VehicleId: report.VehicleId(),
		BlockId:   blockId,
	}
	err := ms.vehicles.Update(report.VehicleId(), func(vs *vehicle.VehicleState) error {
		vs.SetAvlReport(report)

		if vs.IsMatchedToBlock(blockId) {
			start := time.Now()
			result.Scan = metrics.SCAN_FORWARD
			result.Matches = ms.matcher.GetSpatialMatchesFromPreviousMatch(vs)
			ms.metrics.ObserveScan(result.Scan, len(result.Matches), time.Since(start))
			if len(result.Matches) > 0 {
				result.Best = bestSpatialMatch(result.Matches)
				vs.SetMatch(result.Best)
				return nil
			}
			ms.log.Info("no spatial match ahead of the previous match, matching the vehicle to the block again",
				zap.String("vehicleId", report.VehicleId()),
				zap.String("blockId", blockId))
		}
		vs.ClearMatch()

		start := time.Now()
		result.Scan = metrics.SCAN_INITIAL_ASSIGNMENT
		trips := ms.candidateTrips(block, report)
		matches, err := ms.matcher.GetSpatialMatches(ctx, vs, trips, block)
		ms.metrics.ObserveScan(result.Scan, len(matches), time.Since(start))
		if err != nil {
			return util.WrapErrorf(err, util.ErrInternalServerError, "matching vehicle %s to block %s",
				report.VehicleId(), blockId)
		}
		result.Matches = matches
		result.Best = bestSpatialMatch(matches)
		if result.Best != nil {
			vs.SetMatch(result.Best)
		}
		return nil
	})
	ms.metrics.TrackedVehicles.Set(float64(ms.vehicles.Len()))
	if err != nil {
		return MatchResult{}, err
	}

	if result.Best != nil && result.Best.IsLayover() {
		ms.metrics.LayoverMatches.Inc()
	}
	ms.log.Debug("processed avl report",
		zap.String("vehicleId", report.VehicleId()),
		zap.String("scan", result.Scan),
		zap.Int("numberOfMatches", len(result.Matches)))
	return result, nil
}

// candidateTrips. trips of the block near the report, plus every trip with a layover stop path since a
// layover matches however far the vehicle is from it. block order is kept.
func (ms *MapMatcherService) candidateTrips(block *datastructure.Block, report *datastructure.GPSPoint) []*datastructure.Trip {
	key := candidateKey{
		blockId: block.GetId(),
		latCell: int64(math.Floor(report.Lat() / CANDIDATE_CELL_SIZE_DEG)),
		lonCell: int64(math.Floor(report.Lon() / CANDIDATE_CELL_SIZE_DEG)),
	}
	if trips, ok := ms.candidatesCache.Get(key); ok {
		return trips
	}
	// radius is widened by a cell diagonal so every report in the cell gets the same candidates
	radius := ms.searchRadius + CANDIDATE_CELL_SIZE_DEG*111.2*math.Sqrt2
	nearby := make(map[string]struct{})
	for _, trip := range ms.spatialIndex.SearchTripsOfBlockWithinRadius(block.GetId(), report.Lat(), report.Lon(), radius) {
		nearby[trip.GetId()] = struct{}{}
	}

	trips := make([]*datastructure.Trip, 0, block.NumberTrips())
	for _, trip := range block.GetTrips() {
		if _, ok := nearby[trip.GetId()]; ok || trip.GetTripPattern().HasLayoverStop() {
			trips = append(trips, trip)
		}
	}
	ms.candidatesCache.Add(key, trips)
	return trips
}

// bestSpatialMatch. closest non layover match, a match without a distance only if there is no other.
// the first layover match when all are layovers.
func bestSpatialMatch(matches []*spatial.SpatialMatch) *spatial.SpatialMatch {
	var best *spatial.SpatialMatch
	bestDistance := math.Inf(1)
	for _, match := range matches {
		if match.IsLayover() {
			continue
		}
		distance := match.GetDistanceToSegment()
		if math.IsNaN(distance) {
			distance = math.Inf(1)
		}
		if best == nil || distance < bestDistance {
			best = match
			bestDistance = distance
		}
	}
	if best != nil {
		return best
	}
	for _, match := range matches {
		if match.IsLayover() {
			return match
		}
	}
	return nil
}

func (ms *MapMatcherService) GetVehicle(vehicleId string) (vehicle.Summary, error) {
	summary, ok := ms.vehicles.Get(vehicleId)
	if !ok {
		return vehicle.Summary{}, util.WrapErrorf(ErrVehicleNotFound, util.ErrNotFound, "vehicle %s", vehicleId)
	}
	return summary, nil
}

// ResetVehicle. forget the vehicle, its next report is matched like a new vehicle.
func (ms *MapMatcherService) ResetVehicle(vehicleId string) error {
	if !ms.vehicles.Delete(vehicleId) {
		return util.WrapErrorf(ErrVehicleNotFound, util.ErrNotFound, "vehicle %s", vehicleId)
	}
	ms.metrics.TrackedVehicles.Set(float64(ms.vehicles.Len()))
	return nil
}

// PruneStaleVehicles. forget vehicles that stopped reporting.
func (ms *MapMatcherService) PruneStaleVehicles() int {
	pruned := ms.vehicles.PruneStale()
	if len(pruned) > 0 {
		ms.log.Info("pruned stale vehicles", zap.Strings("vehicleIds", pruned))
	}
	ms.metrics.TrackedVehicles.Set(float64(ms.vehicles.Len()))
	return len(pruned)
}
