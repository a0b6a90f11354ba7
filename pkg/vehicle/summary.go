package vehicle

import "github.com/lintang-b-s/transitmatch/pkg/mapmatcher/spatial"

// Summary is a read-only copy of what is known about a vehicle.
type Summary struct {
	VehicleId     string
	BlockId       string
	NumberReports int
	Match         *spatial.SpatialMatch
}

func newSummary(vs *VehicleState) Summary {
	return Summary{
		VehicleId:     vs.vehicleId,
		BlockId:       vs.blockId,
		NumberReports: len(vs.avlReports),
		Match:         vs.match,
	}
}
