package usecases

import (
	"context"

	"github.com/lintang-b-s/transitmatch/pkg/datastructure"
	"github.com/lintang-b-s/transitmatch/pkg/mapmatcher/spatial"
)

type SpatialMatcher interface {
	GetSpatialMatches(ctx context.Context, vehicleState spatial.VehicleState, trips []*datastructure.Trip,
		block *datastructure.Block) ([]*spatial.SpatialMatch, error)
	GetSpatialMatchesFromPreviousMatch(vehicleState spatial.VehicleState) []*spatial.SpatialMatch
}

type Schedule interface {
	GetBlock(id string) (*datastructure.Block, bool)
}

type SpatialIndex interface {
	SearchTripsOfBlockWithinRadius(blockId string, qLat, qLon, radius float64) []*datastructure.Trip
}
