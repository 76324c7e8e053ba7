package meshopt

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Overdraw optimization splits a cache-optimized index buffer into
// clusters at cache-flush boundaries and sorts the clusters so that
// geometry facing away from the mesh center is drawn first. threshold
// in (0, 1] trades cluster granularity for cache locality: lower values
// merge more clusters and keep the input order mostly intact.

type overdrawCluster struct {
	first, count int // triangles
	sortKey      float64
}

// clusterHard returns triangle indices that start a new cluster: the
// first triangle and every triangle that hits no vertex of the simulated
// FIFO cache.
func clusterHard(indices []uint32, vertexCount int) []int {
	cacheTime := make([]int32, vertexCount)
	time := int32(vertexCacheSize + 1)

	boundaries := []int{0}
	for t := 0; t*3 < len(indices); t++ {
		hits := 0
		for i := 0; i < 3; i++ {
			v := indices[t*3+i]
			if time-cacheTime[v] <= vertexCacheSize {
				hits++
			}
		}
		if hits == 0 && t != 0 {
			boundaries = append(boundaries, t)
		}
		for i := 0; i < 3; i++ {
			v := indices[t*3+i]
			if time-cacheTime[v] > vertexCacheSize {
				cacheTime[v] = time
				time++
			}
		}
	}
	return boundaries
}

// OptimizeOverdraw reorders triangles of an already cache-optimized index
// buffer to reduce overdraw and writes the result to destination.
// destination may alias indices. The triangle set is preserved exactly.
func OptimizeOverdraw(destination, indices []uint32, vertexPositions []float32,
	vertexCount int, vertexStrideBytes int, threshold float32) {

	if len(indices)%3 != 0 || len(destination) < len(indices) || len(indices) == 0 {
		return
	}
	positions, err := decodePositions(vertexPositions, vertexCount, vertexStrideBytes)
	if err != nil {
		return
	}
	for _, index := range indices {
		if int(index) >= vertexCount {
			return
		}
	}
	if threshold <= 0 || threshold > 1 {
		threshold = 1
	}

	boundaries := clusterHard(indices, vertexCount)

	// merge down to a threshold-scaled cluster count to limit how far the
	// sort is allowed to disturb the cache-friendly order
	wantClusters := int(float64(len(boundaries)) * float64(threshold))
	if wantClusters < 1 {
		wantClusters = 1
	}
	for len(boundaries) > wantClusters {
		merged := make([]int, 0, (len(boundaries)+1)/2)
		for i := 0; i < len(boundaries); i += 2 {
			merged = append(merged, boundaries[i])
		}
		boundaries = merged
	}

	meshCenter := mgl64.Vec3{}
	for _, p := range positions {
		meshCenter = meshCenter.Add(p)
	}
	if len(positions) > 0 {
		meshCenter = meshCenter.Mul(1 / float64(len(positions)))
	}

	triangleCount := len(indices) / 3
	clusters := make([]overdrawCluster, len(boundaries))
	for c := range boundaries {
		first := boundaries[c]
		last := triangleCount
		if c+1 < len(boundaries) {
			last = boundaries[c+1]
		}

		centroid := mgl64.Vec3{}
		normal := mgl64.Vec3{}
		for t := first; t < last; t++ {
			p0 := positions[indices[t*3]]
			p1 := positions[indices[t*3+1]]
			p2 := positions[indices[t*3+2]]
			centroid = centroid.Add(p0).Add(p1).Add(p2)
			normal = normal.Add(p1.Sub(p0).Cross(p2.Sub(p0)))
		}
		centroid = centroid.Mul(1 / float64(3*(last-first)))

		// outward-facing clusters occlude the most, draw them first
		key := 0.0
		if normal.Len() > 0 {
			key = normal.Normalize().Dot(centroid.Sub(meshCenter))
		}
		clusters[c] = overdrawCluster{first: first, count: last - first, sortKey: -key}
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].sortKey < clusters[j].sortKey
	})

	output := make([]uint32, 0, len(indices))
	for _, cluster := range clusters {
		output = append(output, indices[cluster.first*3:(cluster.first+cluster.count)*3]...)
	}
	copy(destination, output)
}
