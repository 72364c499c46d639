package utils

import "math"

// CreateRankList returns 1-based ranks for count already sorted results.
// Ranks past math.MaxUint16 saturate instead of wrapping.
func CreateRankList(count int) []uint16 {
	if count <= 0 {
		return []uint16{}
	}
	ranks := make([]uint16, count)
	for i := range count {
		ranks[i] = uint16(min(i+1, math.MaxUint16))
	}
	return ranks
}
