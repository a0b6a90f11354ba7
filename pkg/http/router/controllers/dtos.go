package controllers

import (
	"math"
	"time"

	"github.com/lintang-b-s/transitmatch/pkg/datastructure"
	"github.com/lintang-b-s/transitmatch/pkg/http/usecases"
	"github.com/lintang-b-s/transitmatch/pkg/mapmatcher/spatial"
	"github.com/lintang-b-s/transitmatch/pkg/vehicle"
)

type spatialMatchRequest struct {
	VehicleId string   `json:"vehicle_id" validate:"required"`
	BlockId   string   `json:"block_id" validate:"required"`
	Lat       float64  `json:"lat" validate:"min=-90,max=90"`
	Lon       float64  `json:"lon" validate:"min=-180,max=180"`
	Time      int64    `json:"time" validate:"required,gt=0"` // unix epoch milliseconds
	Heading   *float64 `json:"heading,omitempty" validate:"omitempty,min=0,max=360"`
	Speed     *float64 `json:"speed,omitempty" validate:"omitempty,min=0"`
}

// ToGPSPoint. missing heading or speed becomes NaN.
func (r spatialMatchRequest) ToGPSPoint() *datastructure.GPSPoint {
	heading, speed := math.NaN(), math.NaN()
	if r.Heading != nil {
		heading = *r.Heading
	}
	if r.Speed != nil {
		speed = *r.Speed
	}
	return datastructure.NewGPSPoint(r.VehicleId, r.Lat, r.Lon, time.UnixMilli(r.Time).UTC(), speed, heading)
}

type spatialMatchResponse struct {
	TripId               string   `json:"trip_id"`
	TripIndex            int      `json:"trip_index"`
	StopPathId           string   `json:"stop_path_id"`
	StopId               string   `json:"stop_id"`
	StopPathIndex        int      `json:"stop_path_index"`
	SegmentIndex         int      `json:"segment_index"`
	DistanceToSegment    *float64 `json:"distance_to_segment"` // null for the end of block match
	DistanceAlongSegment float64  `json:"distance_along_segment"`
	Layover              bool     `json:"layover"`
}

func NewSpatialMatchResponse(match *spatial.SpatialMatch) *spatialMatchResponse {
	if match == nil {
		return nil
	}
	var distanceToSegment *float64
	if d := match.GetDistanceToSegment(); !math.IsNaN(d) {
		distanceToSegment = &d
	}
	return &spatialMatchResponse{
		TripId:               match.GetTrip().GetId(),
		TripIndex:            match.GetTripIndex(),
		StopPathId:           match.GetStopPath().GetId(),
		StopId:               match.GetStopPath().GetStopId(),
		StopPathIndex:        match.GetStopPathIndex(),
		SegmentIndex:         match.GetSegmentIndex(),
		DistanceToSegment:    distanceToSegment,
		DistanceAlongSegment: match.GetDistanceAlongSegment(),
		Layover:              match.IsLayover(),
	}
}

type spatialMatchesResponse struct {
	VehicleId string                  `json:"vehicle_id"`
	BlockId   string                  `json:"block_id"`
	Scan      string                  `json:"scan"`
	Matches   []*spatialMatchResponse `json:"matches"`
	Best      *spatialMatchResponse   `json:"best"`
}

func NewSpatialMatchesResponse(result usecases.MatchResult) spatialMatchesResponse {
	matches := make([]*spatialMatchResponse, 0, len(result.Matches))
	for _, m := range result.Matches {
		matches = append(matches, NewSpatialMatchResponse(m))
	}
	return spatialMatchesResponse{
		VehicleId: result.VehicleId,
		BlockId:   result.BlockId,
		Scan:      result.Scan,
		Matches:   matches,
		Best:      NewSpatialMatchResponse(result.Best),
	}
}

type vehicleResponse struct {
	VehicleId     string                `json:"vehicle_id"`
	BlockId       string                `json:"block_id,omitempty"`
	NumberReports int                   `json:"number_reports"`
	Match         *spatialMatchResponse `json:"match"`
}

func NewVehicleResponse(summary vehicle.Summary) vehicleResponse {
	return vehicleResponse{
		VehicleId:     summary.VehicleId,
		BlockId:       summary.BlockId,
		NumberReports: summary.NumberReports,
		Match:         NewSpatialMatchResponse(summary.Match),
	}
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
