package domain

import (
	"math"
	"sort"
)

// ModeBucketMS is the fixed bucket width for mode detection. Raw durations
// almost never repeat exactly, so the mode is computed over half-hour buckets
// and reported as the winning bucket's midpoint.
const ModeBucketMS = 30 * 60 * 1000

// Statistics is a descriptive summary of a duration set. Mode is nil when no
// bucket holds more than one value, i.e. every value is unique at half-hour
// resolution. Empty input yields the zero summary, never an error.
type Statistics struct {
	Count    int
	Sum      float64
	Mean     float64
	Median   float64
	Mode     *float64
	Variance float64
	StdDev   float64
	Min      float64
	Max      float64
}

func CalculateStatistics(values []float64) Statistics {
	if len(values) == 0 {
		return Statistics{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	stats := Statistics{
		Count: len(sorted),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
	}
	for _, v := range sorted {
		stats.Sum += v
	}
	stats.Mean = stats.Sum / float64(stats.Count)

	mid := stats.Count / 2
	if stats.Count%2 == 1 {
		stats.Median = sorted[mid]
	} else {
		stats.Median = (sorted[mid-1] + sorted[mid]) / 2
	}

	stats.Mode = bucketedMode(sorted)

	// Sample variance, n-1 denominator.
	if stats.Count > 1 {
		var sumSq float64
		for _, v := range sorted {
			diff := v - stats.Mean
			sumSq += diff * diff
		}
		stats.Variance = sumSq / float64(stats.Count-1)
		stats.StdDev = math.Sqrt(stats.Variance)
	}
	return stats
}

func bucketedMode(values []float64) *float64 {
	freq := make(map[int]int)
	for _, v := range values {
		freq[int(math.Floor(v/ModeBucketMS))]++
	}
	bestBucket, bestCount := 0, 0
	for bucket, count := range freq {
		if count > bestCount || (count == bestCount && bucket < bestBucket) {
			bestBucket, bestCount = bucket, count
		}
	}
	if bestCount <= 1 {
		return nil
	}
	midpoint := (float64(bestBucket) + 0.5) * ModeBucketMS
	return &midpoint
}

// ZScores returns each value's distance from the mean in standard deviations,
// in input order. A zero-variance set maps to all zeros rather than NaN.
func ZScores(values []float64) []float64 {
	stats := CalculateStatistics(values)
	scores := make([]float64, len(values))
	if stats.StdDev == 0 {
		return scores
	}
	for i, v := range values {
		scores[i] = (v - stats.Mean) / stats.StdDev
	}
	return scores
}

// Bucket is one histogram bin over [Lower, Upper).
type Bucket struct {
	Lower float64
	Upper float64
	Count int
}

// Histogram splits values into bucketCount equal-width bins spanning
// [min, max]. Identical values collapse into a single full bin, and rounding
// overflow lands in the last bin so no index ever exceeds bucketCount-1.
func Histogram(values []float64, bucketCount int) []Bucket {
	if len(values) == 0 || bucketCount < 1 {
		return nil
	}
	min, max := values[0], values[0]
	for _, v := range values {
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	if min == max {
		return []Bucket{{Lower: min, Upper: max, Count: len(values)}}
	}

	width := (max - min) / float64(bucketCount)
	buckets := make([]Bucket, bucketCount)
	for i := range buckets {
		buckets[i].Lower = min + float64(i)*width
		buckets[i].Upper = min + float64(i+1)*width
	}
	buckets[bucketCount-1].Upper = max
	for _, v := range values {
		idx := int((v - min) / width)
		if idx >= bucketCount {
			idx = bucketCount - 1
		}
		buckets[idx].Count++
	}
	return buckets
}

// PercentileOfValue reports what share of set, in percent, is less than or
// equal to the query value.
func PercentileOfValue(set []float64, query float64) float64 {
	if len(set) == 0 {
		return 0
	}
	atOrBelow := 0
	for _, v := range set {
		if v <= query {
			atOrBelow++
		}
	}
	return 100 * float64(atOrBelow) / float64(len(set))
}
