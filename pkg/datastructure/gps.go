package datastructure

import (
	"fmt"
	"math"
	"time"

	"github.com/lintang-b-s/transitmatch/pkg/geo"
)

// GPSPoint is one AVL report of a vehicle. heading is in degree, NaN when the device doesn't report it.
type GPSPoint struct {
	vehicleId string
	lon       float64
	lat       float64
	time      time.Time
	speed     float64 // meter/second, NaN if unknown
	heading   float64
}

func NewGPSPoint(vehicleId string, lat, lon float64, t time.Time, speed, heading float64) *GPSPoint {
	return &GPSPoint{
		vehicleId: vehicleId,
		lon:       lon,
		lat:       lat,
		time:      t,
		speed:     speed,
		heading:   heading,
	}
}

func (gp *GPSPoint) VehicleId() string {
	return gp.vehicleId
}

func (gp *GPSPoint) Lon() float64 {
	return gp.lon
}

func (gp *GPSPoint) Lat() float64 {
	return gp.lat
}

func (gp *GPSPoint) Time() time.Time {
	return gp.time
}

func (gp *GPSPoint) Speed() float64 {
	return gp.speed
}

func (gp *GPSPoint) Heading() float64 {
	return gp.heading
}

func (gp *GPSPoint) HasValidHeading() bool {
	return !math.IsNaN(gp.heading)
}

func (gp *GPSPoint) Location() geo.Coordinate {
	return geo.NewCoordinate(gp.lat, gp.lon)
}

// DistanceTo. distance in meter between two reports
func (gp *GPSPoint) DistanceTo(other *GPSPoint) float64 {
	return geo.DistanceInMeters(gp.Location(), other.Location())
}

func (gp *GPSPoint) String() string {
	return fmt.Sprintf("GPSPoint[vehicleId=%s lat=%.6f lon=%.6f time=%s heading=%.1f speed=%.1f]",
		gp.vehicleId, gp.lat, gp.lon, gp.time.Format(time.RFC3339), gp.heading, gp.speed)
}
