// Package geo provides the plane-geometry primitives shared by the mobility
// core, the edge network, and the placement controller.
package geo

import "math"

// Point is a position in the simulated plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Hypot(dx, dy)
}

// WeightedSample is one observation contributed to a centroid computation.
type WeightedSample struct {
	Point  Point
	Weight float64
}

// WeightedCentroid returns the weighted mean position of samples and true,
// or the zero Point and false if samples is empty or all weights are zero.
func WeightedCentroid(samples []WeightedSample) (Point, bool) {
	var sumW, sumX, sumY float64
	for _, s := range samples {
		sumW += s.Weight
		sumX += s.Point.X * s.Weight
		sumY += s.Point.Y * s.Weight
	}
	if sumW <= 0 {
		return Point{}, false
	}
	return Point{X: sumX / sumW, Y: sumY / sumW}, true
}

// Nearest returns the index of the point in candidates closest to target.
// Returns -1 if candidates is empty.
func Nearest(target Point, candidates []Point) int {
	best := -1
	var bestDist float64
	for i, c := range candidates {
		d := Distance(target, c)
		if best == -1 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// WrapTorus applies the torus wrap rule over [-bound, +bound] mandated for
// user position stepping: values leaving one edge reappear at the other.
func WrapTorus(v, bound float64) float64 {
	if bound <= 0 {
		return v
	}
	span := 2 * bound
	wrapped := math.Mod(v+bound, span)
	if wrapped < 0 {
		wrapped += span
	}
	return wrapped - bound
}

// NormalizeAngle clamps a into [-pi, pi], wrapping around the circle.
func NormalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
