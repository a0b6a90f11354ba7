package geo

import (
	"math"

	"github.com/lintang-b-s/transitmatch/pkg/util"
)

/*
BearingTo. menghitung sudut initial bearing untuk segment (p1,p2), in degree [0,360).
https://www.movable-type.co.uk/scripts/latlong.html
*/
func BearingTo(p1Lat, p1Lon, p2Lat, p2Lon float64) float64 {

	dLon := util.DegreeToRadians(p2Lon - p1Lon)

	lat1 := util.DegreeToRadians(p1Lat)
	lat2 := util.DegreeToRadians(p2Lat)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) -
		math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	brng := math.Mod(util.RadiansToDegree(math.Atan2(y, x))+360, 360.0)

	return brng
}

// HeadingDifference. smallest angle between two headings in degree, handles the wraparound at 360.
// result is in [0,180]
func HeadingDifference(h1, h2 float64) float64 {
	diff := math.Mod(math.Abs(h1-h2), 360.0)
	if diff > 180.0 {
		diff = 360.0 - diff
	}
	return diff
}
