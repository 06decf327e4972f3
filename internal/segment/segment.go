// Package segment partitions buyers into behavioral clusters with a
// seeded k-means over the numeric fields of their profiles. The seed is
// fixed so reruns over identical input produce the identical partition.
package segment

import (
	"fmt"
	"math"
	"math/rand"

	"salespipe/internal/aggregate"
)

// clusterSeed fixes centroid initialization for reproducible partitions.
const clusterSeed = 42

const maxIterations = 100

// Assignment maps one buyer to a cluster.
type Assignment struct {
	Key      string    `json:"key"`
	Cluster  int       `json:"cluster"`
	Features []float64 `json:"features"`
}

// Result is one clustering run. Centroids are expressed in the original
// feature space (cents and counts), not the standardized one, so they
// read as an "average buyer" per cluster.
type Result struct {
	K           int          `json:"k"`
	Assignments []Assignment `json:"assignments"`
	Centroids   [][]float64  `json:"centroids"`
	Inertia     float64      `json:"inertia"`
}

// Features builds the 9-dimensional vector for one profile: spend, item
// count and order count for each dataset.
func Features(p aggregate.BuyerProfile) []float64 {
	return []float64{
		float64(p.Tickets.SpendCents),
		float64(p.Merch.SpendCents),
		float64(p.Party.SpendCents),
		float64(p.Tickets.Items),
		float64(p.Merch.Items),
		float64(p.Party.Items),
		float64(p.Tickets.Orders),
		float64(p.Merch.Orders),
		float64(p.Party.Orders),
	}
}

// Segment clusters the profiles into at most k groups. Profiles whose
// feature vector is all zero carry no signal and are excluded from both
// the fit and the output. k is clamped to the number of usable profiles;
// k < 1 is an error. Features are standardized per dimension before
// fitting.
func Segment(profiles []aggregate.BuyerProfile, k int) (Result, error) {
	if k < 1 {
		return Result{}, fmt.Errorf("segment: k must be >= 1, got %d", k)
	}

	keys, raw := usableFeatures(profiles)
	n := len(raw)
	if n == 0 {
		return Result{}, nil
	}
	if k > n {
		k = n
	}

	means, stds := moments(raw)
	points := standardize(raw, means, stds)

	centroids := initCentroids(points, k)
	labels := make([]int, n)
	for iter := 0; iter < maxIterations; iter++ {
		changed := assign(points, centroids, labels)
		recompute(points, labels, centroids)
		fillEmptyClusters(points, labels, centroids)
		if !changed && iter > 0 {
			break
		}
	}

	res := Result{K: k, Assignments: make([]Assignment, n)}
	for i := range raw {
		res.Assignments[i] = Assignment{Key: keys[i], Cluster: labels[i], Features: raw[i]}
		res.Inertia += sqDist(points[i], centroids[labels[i]])
	}
	res.Centroids = make([][]float64, k)
	for c := range centroids {
		orig := make([]float64, len(centroids[c]))
		for j, v := range centroids[c] {
			orig[j] = v*stds[j] + means[j]
		}
		res.Centroids[c] = orig
	}
	return res, nil
}

// ChooseK runs the elbow method for real: it fits k=1..maxK and picks
// the k with the sharpest bend (largest second difference of inertia).
func ChooseK(profiles []aggregate.BuyerProfile, maxK int) (int, error) {
	_, raw := usableFeatures(profiles)
	if len(raw) == 0 {
		return 0, nil
	}
	if maxK > len(raw) {
		maxK = len(raw)
	}
	if maxK < 1 {
		return 0, fmt.Errorf("segment: maxK must be >= 1, got %d", maxK)
	}
	inertia := make([]float64, maxK+1)
	for k := 1; k <= maxK; k++ {
		res, err := Segment(profiles, k)
		if err != nil {
			return 0, err
		}
		inertia[k] = res.Inertia
	}
	if maxK <= 2 {
		return maxK, nil
	}
	best, bestDrop := 2, math.Inf(-1)
	for k := 2; k < maxK; k++ {
		drop := inertia[k-1] - 2*inertia[k] + inertia[k+1]
		if drop > bestDrop {
			best, bestDrop = k, drop
		}
	}
	return best, nil
}

func usableFeatures(profiles []aggregate.BuyerProfile) ([]string, [][]float64) {
	var keys []string
	var raw [][]float64
	for _, p := range profiles {
		f := Features(p)
		if allZero(f) {
			continue
		}
		keys = append(keys, p.Key)
		raw = append(raw, f)
	}
	return keys, raw
}

func allZero(f []float64) bool {
	for _, v := range f {
		if v != 0 {
			return false
		}
	}
	return true
}

func moments(raw [][]float64) (means, stds []float64) {
	dims := len(raw[0])
	means = make([]float64, dims)
	stds = make([]float64, dims)
	for _, row := range raw {
		for j, v := range row {
			means[j] += v
		}
	}
	for j := range means {
		means[j] /= float64(len(raw))
	}
	for _, row := range raw {
		for j, v := range row {
			d := v - means[j]
			stds[j] += d * d
		}
	}
	for j := range stds {
		stds[j] = math.Sqrt(stds[j] / float64(len(raw)))
	}
	return means, stds
}

func standardize(raw [][]float64, means, stds []float64) [][]float64 {
	points := make([][]float64, len(raw))
	for i, row := range raw {
		p := make([]float64, len(row))
		for j, v := range row {
			if stds[j] > 0 {
				p[j] = (v - means[j]) / stds[j]
			}
		}
		points[i] = p
	}
	return points
}

// initCentroids seeds the first centroid from the fixed RNG and then
// greedily takes the point farthest from the chosen set (maximin), which
// is deterministic given the seed and input order.
func initCentroids(points [][]float64, k int) [][]float64 {
	rng := rand.New(rand.NewSource(clusterSeed))
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clone(points[rng.Intn(len(points))]))
	for len(centroids) < k {
		bestIdx, bestDist := 0, -1.0
		for i, p := range points {
			d := math.Inf(1)
			for _, c := range centroids {
				if v := sqDist(p, c); v < d {
					d = v
				}
			}
			if d > bestDist {
				bestIdx, bestDist = i, d
			}
		}
		centroids = append(centroids, clone(points[bestIdx]))
	}
	return centroids
}

func assign(points, centroids [][]float64, labels []int) bool {
	changed := false
	for i, p := range points {
		best, bestDist := 0, math.Inf(1)
		for c := range centroids {
			if d := sqDist(p, centroids[c]); d < bestDist {
				best, bestDist = c, d
			}
		}
		if labels[i] != best {
			labels[i] = best
			changed = true
		}
	}
	return changed
}

func recompute(points [][]float64, labels []int, centroids [][]float64) {
	dims := len(points[0])
	counts := make([]int, len(centroids))
	for c := range centroids {
		centroids[c] = make([]float64, dims)
	}
	for i, p := range points {
		c := labels[i]
		counts[c]++
		for j, v := range p {
			centroids[c][j] += v
		}
	}
	for c := range centroids {
		if counts[c] == 0 {
			continue
		}
		for j := range centroids[c] {
			centroids[c][j] /= float64(counts[c])
		}
	}
}

// fillEmptyClusters steals the globally farthest point for any cluster
// that lost all members, so every label in 0..K-1 stays populated.
func fillEmptyClusters(points [][]float64, labels []int, centroids [][]float64) {
	counts := make([]int, len(centroids))
	for _, l := range labels {
		counts[l]++
	}
	for c := range centroids {
		if counts[c] > 0 {
			continue
		}
		farIdx, farDist := -1, -1.0
		for i, p := range points {
			if counts[labels[i]] <= 1 {
				continue
			}
			if d := sqDist(p, centroids[labels[i]]); d > farDist {
				farIdx, farDist = i, d
			}
		}
		if farIdx < 0 {
			continue
		}
		counts[labels[farIdx]]--
		labels[farIdx] = c
		counts[c]++
		centroids[c] = clone(points[farIdx])
	}
}

func sqDist(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}

func clone(p []float64) []float64 {
	c := make([]float64, len(p))
	copy(c, p)
	return c
}
