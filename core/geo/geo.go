package geo

import "math"

// EarthRadiusKm is the mean earth radius used for great-circle math.
const EarthRadiusKm = 6371

// Haversine returns the great-circle distance in kilometres between two
// coordinates expressed in decimal degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dlat := radians(lat2 - lat1)
	dlon := radians(lon2 - lon1)
	a := math.Pow(math.Sin(dlat/2), 2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Pow(math.Sin(dlon/2), 2)
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(a))
}

// PointToSegment returns the shortest distance in kilometres from a point to
// the segment (aLat,aLon)-(bLat,bLon), together with the closest point on the
// segment. The projection is done in degree space, the distance itself via
// Haversine.
func PointToSegment(lat, lon, aLat, aLon, bLat, bLon float64) (float64, float64, float64) {
	vx := bLon - aLon
	vy := bLat - aLat
	lenSq := vx*vx + vy*vy
	if lenSq == 0 {
		return Haversine(lat, lon, aLat, aLon), aLat, aLon
	}
	t := ((lon-aLon)*vx + (lat-aLat)*vy) / lenSq
	t = math.Max(0, math.Min(1, t))
	closestLat := aLat + t*vy
	closestLon := aLon + t*vx
	return Haversine(lat, lon, closestLat, closestLon), closestLat, closestLon
}

// Lerp linearly interpolates between two coordinates. frac must be in [0,1].
func Lerp(lat1, lon1, lat2, lon2, frac float64) (float64, float64) {
	return lat1 + (lat2-lat1)*frac, lon1 + (lon2-lon1)*frac
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
