package spatial

import "github.com/lintang-b-s/transitmatch/pkg/datastructure"

// VehicleState is the part of the vehicle tracking state the spatial matcher reads.
type VehicleState interface {
	GetVehicleId() string
	// GetAvlReport. the report being matched
	GetAvlReport() *datastructure.GPSPoint
	// GetPreviousAvlReport. most recent earlier report at least minDistance meters away
	// from the current one, nil if there is none
	GetPreviousAvlReport(minDistance float64) *datastructure.GPSPoint
	GetPreviousAvlReportFromSuccessfulMatch() *datastructure.GPSPoint
	// GetMatch. last confirmed match, nil if the vehicle is not matched yet
	GetMatch() *SpatialMatch
}
