package fleet

import "math"

const earthRadiusMeters = 6371000.0

// DefaultClusterMeters is the grouping distance used by the map.
const DefaultClusterMeters = 150.0

// DistanceMeters returns the great-circle distance between two points.
func DistanceMeters(a, b Point) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + sinLng*sinLng*math.Cos(lat1)*math.Cos(lat2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Cluster groups vehicles in a single greedy pass: each vehicle not yet
// grouped seeds a cluster and absorbs every later ungrouped vehicle within
// thresholdMeters of the seed. Distance is measured to the seed only, never
// to other members or a centroid, so the result depends on input order and
// is not transitive. A chain a-b-c spaced just under the threshold, with a
// and c beyond it, yields {a,b},{c} when a comes first rather than one
// group; single-linkage merging would join all three.
func Cluster(vehicles []LiveVehicle, thresholdMeters float64) [][]LiveVehicle {
	clusters := make([][]LiveVehicle, 0, len(vehicles))
	used := make([]bool, len(vehicles))

	for i, seed := range vehicles {
		if used[i] {
			continue
		}
		used[i] = true
		group := []LiveVehicle{seed}

		for j := i + 1; j < len(vehicles); j++ {
			if used[j] {
				continue
			}
			if DistanceMeters(seed.Position(), vehicles[j].Position()) <= thresholdMeters {
				group = append(group, vehicles[j])
				used[j] = true
			}
		}
		clusters = append(clusters, group)
	}
	return clusters
}

// Singletons wraps each vehicle in its own cluster, for maps with
// clustering turned off.
func Singletons(vehicles []LiveVehicle) [][]LiveVehicle {
	clusters := make([][]LiveVehicle, len(vehicles))
	for i, v := range vehicles {
		clusters[i] = []LiveVehicle{v}
	}
	return clusters
}

// Center returns the arithmetic mean coordinate of the vehicles.
func Center(vehicles []LiveVehicle) Point {
	if len(vehicles) == 0 {
		return Point{}
	}
	var lat, lng float64
	for _, v := range vehicles {
		lat += v.Lat
		lng += v.Lng
	}
	n := float64(len(vehicles))
	return Point{Lat: lat / n, Lng: lng / n}
}
