package vehicle

import (
	"github.com/lintang-b-s/transitmatch/pkg/datastructure"
	"github.com/lintang-b-s/transitmatch/pkg/mapmatcher/spatial"
)

const MAX_AVL_HISTORY = 20

// VehicleState is the tracking state of one vehicle. not safe for concurrent use, Store serializes
// access per vehicle.
type VehicleState struct {
	vehicleId string
	blockId   string

	// oldest first, the last one is the report being matched
	avlReports []*datastructure.GPSPoint

	match                                *spatial.SpatialMatch
	previousAvlReportFromSuccessfulMatch *datastructure.GPSPoint
}

func NewVehicleState(vehicleId string) *VehicleState {
	return &VehicleState{
		vehicleId:  vehicleId,
		avlReports: make([]*datastructure.GPSPoint, 0, MAX_AVL_HISTORY),
	}
}

func (vs *VehicleState) GetVehicleId() string {
	return vs.vehicleId
}

func (vs *VehicleState) GetBlockId() string {
	return vs.blockId
}

// SetAvlReport. report becomes the current one, the previous reports are kept as history.
func (vs *VehicleState) SetAvlReport(report *datastructure.GPSPoint) {
	if len(vs.avlReports) == MAX_AVL_HISTORY {
		copy(vs.avlReports, vs.avlReports[1:])
		vs.avlReports = vs.avlReports[:MAX_AVL_HISTORY-1]
	}
	vs.avlReports = append(vs.avlReports, report)
}

func (vs *VehicleState) GetAvlReport() *datastructure.GPSPoint {
	if len(vs.avlReports) == 0 {
		return nil
	}
	return vs.avlReports[len(vs.avlReports)-1]
}

// GetPreviousAvlReport. most recent earlier report at least minDistance meters away from the current one.
func (vs *VehicleState) GetPreviousAvlReport(minDistance float64) *datastructure.GPSPoint {
	current := vs.GetAvlReport()
	if current == nil {
		return nil
	}
	for i := len(vs.avlReports) - 2; i >= 0; i-- {
		if vs.avlReports[i].DistanceTo(current) >= minDistance {
			return vs.avlReports[i]
		}
	}
	return nil
}

func (vs *VehicleState) GetPreviousAvlReportFromSuccessfulMatch() *datastructure.GPSPoint {
	return vs.previousAvlReportFromSuccessfulMatch
}

func (vs *VehicleState) GetMatch() *spatial.SpatialMatch {
	return vs.match
}

// SetMatch. match of the current report, the current report becomes the last successfully matched one.
func (vs *VehicleState) SetMatch(match *spatial.SpatialMatch) {
	vs.match = match
	vs.blockId = match.GetBlock().GetId()
	vs.previousAvlReportFromSuccessfulMatch = vs.GetAvlReport()
}

// ClearMatch. the vehicle is no longer assigned to a block, history is kept.
func (vs *VehicleState) ClearMatch() {
	vs.match = nil
	vs.blockId = ""
	vs.previousAvlReportFromSuccessfulMatch = nil
}

// IsMatchedToBlock. the vehicle has a match on blockId.
func (vs *VehicleState) IsMatchedToBlock(blockId string) bool {
	return vs.match != nil && vs.blockId == blockId
}
