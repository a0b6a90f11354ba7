package controllers

import (
	"context"

	"github.com/lintang-b-s/transitmatch/pkg/datastructure"
	"github.com/lintang-b-s/transitmatch/pkg/http/usecases"
	"github.com/lintang-b-s/transitmatch/pkg/vehicle"
)

type MapMatcherService interface {
	ProcessReport(ctx context.Context, report *datastructure.GPSPoint, blockId string) (usecases.MatchResult, error)
	GetVehicle(vehicleId string) (vehicle.Summary, error)
	ResetVehicle(vehicleId string) error
}
