// Package geo provides great-circle distance, polygon containment, and the
// proximity scores built on them. Polygons use GeoJSON (lon, lat) ordering.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used by DistanceKm.
const EarthRadiusKm = 6371.0

const (
	// DefaultMaxDistanceKm is the distance at which LocationScore drops to zero.
	DefaultMaxDistanceKm = 50.0
	// DefaultProximityThresholdKm is the distance at which LocationProximity drops to zero.
	DefaultProximityThresholdKm = 50.0
)

// Point is a WGS-84 coordinate in degrees.
type Point struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// Valid reports whether p is a finite coordinate inside the WGS-84 ranges.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// String formats p as "lat,lng".
func (p Point) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng)
}

// Polygon is a list of linear rings, each a list of [lon, lat] positions.
// Only the first (exterior) ring takes part in containment and centroid math.
type Polygon [][][]float64

// exterior returns the exterior ring as (x=lon, y=lat) pairs. ok is false when the
// polygon has no ring, a ring with fewer than three positions, or a short position.
func (p Polygon) exterior() (ring [][2]float64, ok bool) {
	if len(p) == 0 || len(p[0]) < 3 {
		return nil, false
	}
	ring = make([][2]float64, 0, len(p[0]))
	for _, pos := range p[0] {
		if len(pos) < 2 {
			return nil, false
		}
		ring = append(ring, [2]float64{pos[0], pos[1]})
	}
	// Drop the closing position so every vertex is counted once.
	if n := len(ring); n > 1 && ring[0] == ring[n-1] {
		ring = ring[:n-1]
	}
	if len(ring) < 3 {
		return nil, false
	}
	return ring, true
}

// Valid reports whether the exterior ring is usable.
func (p Polygon) Valid() bool {
	_, ok := p.exterior()
	return ok
}

// DistanceKm returns the haversine great-circle distance between a and b.
func DistanceKm(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// PointInPolygon reports whether pt lies inside the exterior ring of poly using
// ray casting. Holes are ignored. Malformed polygons yield false.
func PointInPolygon(pt Point, poly Polygon) bool {
	ring, ok := poly.exterior()
	if !ok {
		return false
	}
	x, y := pt.Lng, pt.Lat
	inside := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// Centroid returns the planar area-weighted centroid of the exterior ring in
// (lon, lat) space. Degenerate rings with zero area fall back to the vertex mean.
func Centroid(poly Polygon) (Point, bool) {
	ring, ok := poly.exterior()
	if !ok {
		return Point{}, false
	}
	// Work relative to the first vertex to keep the shoelace sums well conditioned.
	ox, oy := ring[0][0], ring[0][1]
	var area2, cx, cy float64
	for i := range ring {
		next := ring[(i+1)%len(ring)]
		x0, y0 := ring[i][0]-ox, ring[i][1]-oy
		x1, y1 := next[0]-ox, next[1]-oy
		cross := x0*y1 - x1*y0
		area2 += cross
		cx += (x0 + x1) * cross
		cy += (y0 + y1) * cross
	}
	if math.Abs(area2) < 1e-15 {
		var sx, sy float64
		for _, v := range ring {
			sx += v[0]
			sy += v[1]
		}
		n := float64(len(ring))
		return Point{Lat: sy / n, Lng: sx / n}, true
	}
	return Point{Lat: oy + cy/(3*area2), Lng: ox + cx/(3*area2)}, true
}

// LocationScore scores how well pt fits a disaster zone: 100 inside the polygon,
// otherwise a linear decay from 100 to 50 over the distance to the polygon centroid,
// and 0 beyond maxDistanceKm. A polygon that cannot be evaluated yields a neutral 50.
// The centroid distance overstates the gap for large or irregular zones.
func LocationScore(pt Point, poly Polygon, maxDistanceKm float64) (float64, string) {
	if maxDistanceKm <= 0 {
		maxDistanceKm = DefaultMaxDistanceKm
	}
	if PointInPolygon(pt, poly) {
		return 100, "Location is within the disaster zone"
	}
	center, ok := Centroid(poly)
	if !ok {
		return 50, "Unable to verify location proximity"
	}
	d := DistanceKm(pt, center)
	if d <= maxDistanceKm {
		score := math.Max(0, 100-(d/maxDistanceKm)*50)
		return score, fmt.Sprintf("Location is %.1fkm from disaster zone (within %.1fkm threshold)", d, maxDistanceKm)
	}
	return 0, fmt.Sprintf("Location is %.1fkm from disaster zone (exceeds %.1fkm threshold)", d, maxDistanceKm)
}

// LocationProximity scores two points with quadratic decay: 100 at distance 0,
// 0 once the distance reaches thresholdKm.
func LocationProximity(a, b Point, thresholdKm float64) (float64, string) {
	if thresholdKm <= 0 {
		thresholdKm = DefaultProximityThresholdKm
	}
	d := DistanceKm(a, b)
	if d >= thresholdKm {
		return 0, fmt.Sprintf("Locations are %.1fkm apart (exceeds %.1fkm threshold)", d, thresholdKm)
	}
	ratio := d / thresholdKm
	return 100 * (1 - ratio*ratio), fmt.Sprintf("Locations are %.1fkm apart", d)
}
