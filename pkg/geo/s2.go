package geo

import (
	"github.com/golang/geo/s2"
)

func toS2Point(c Coordinate) s2.Point {
	return s2.PointFromLatLng(s2.LatLngFromDegrees(c.Lat, c.Lon))
}

// ProjectPointToLineCoord. closest point to snap on the edge (pointA, pointB), clamped to the endpoints.
func ProjectPointToLineCoord(pointA Coordinate, pointB Coordinate,
	snap Coordinate) Coordinate {
	projection := s2.Project(toS2Point(snap), toS2Point(pointA), toS2Point(pointB))
	projectLatLng := s2.LatLngFromPoint(projection)
	return NewCoordinate(projectLatLng.Lat.Degrees(), projectLatLng.Lng.Degrees())
}

// PointLinePerpendicularDistance. return in meter
func PointLinePerpendicularDistance(pointA Coordinate, pointB Coordinate,
	snap Coordinate) float64 {
	angle := s2.DistanceFromSegment(toS2Point(snap), toS2Point(pointA), toS2Point(pointB))
	return angle.Radians() * earthRadiusM
}

// distanceAlongEdge. distance in meter from pointA to the projection of snap onto edge (pointA, pointB)
func distanceAlongEdge(pointA Coordinate, pointB Coordinate, snap Coordinate) float64 {
	return greatCircleDistance(pointA, ProjectPointToLineCoord(pointA, pointB, snap))
}

// greatCircleDistance. return in meter
func greatCircleDistance(pointA, pointB Coordinate) float64 {
	return toS2Point(pointA).Distance(toS2Point(pointB)).Radians() * earthRadiusM
}
