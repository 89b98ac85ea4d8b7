package domain

import (
	"math"
	"testing"

	"pgregory.net/rapid"
)

func TestCalculateStatisticsEmpty(t *testing.T) {
	t.Parallel()
	stats := CalculateStatistics(nil)
	if stats.Count != 0 || stats.Sum != 0 || stats.Mean != 0 || stats.Median != 0 ||
		stats.Variance != 0 || stats.StdDev != 0 || stats.Min != 0 || stats.Max != 0 {
		t.Errorf("empty input = %+v, want zero summary", stats)
	}
	if stats.Mode != nil {
		t.Errorf("mode = %v, want nil", *stats.Mode)
	}
}

func TestCalculateStatisticsSingleValue(t *testing.T) {
	t.Parallel()
	stats := CalculateStatistics([]float64{42})
	if stats.Count != 1 || stats.Mean != 42 || stats.Median != 42 || stats.Variance != 0 {
		t.Errorf("single value = %+v", stats)
	}
	if stats.Mode != nil {
		t.Error("single value cannot have a mode")
	}
}

func TestCalculateStatisticsKnownSet(t *testing.T) {
	t.Parallel()
	stats := CalculateStatistics([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if stats.Mean != 5 {
		t.Errorf("mean = %v, want 5", stats.Mean)
	}
	if stats.Median != 4.5 {
		t.Errorf("median = %v, want 4.5", stats.Median)
	}
	// Sample variance of this set is 32/7.
	if want := 32.0 / 7.0; math.Abs(stats.Variance-want) > 1e-12 {
		t.Errorf("variance = %v, want %v", stats.Variance, want)
	}
	if stats.Min != 2 || stats.Max != 9 || stats.Sum != 40 {
		t.Errorf("min/max/sum = %v/%v/%v", stats.Min, stats.Max, stats.Sum)
	}
}

func TestEvenCountMedianAveragesMiddles(t *testing.T) {
	t.Parallel()
	stats := CalculateStatistics([]float64{10, 20, 30, 40})
	if stats.Median != 25 {
		t.Errorf("median = %v, want 25", stats.Median)
	}
}

func TestModeUsesHalfHourBuckets(t *testing.T) {
	t.Parallel()
	// Two values in the [30m, 60m) bucket, one elsewhere.
	values := []float64{31 * 60 * 1000, 55 * 60 * 1000, 3 * 60 * 60 * 1000}
	stats := CalculateStatistics(values)
	if stats.Mode == nil {
		t.Fatal("expected a mode")
	}
	if want := 45 * 60 * 1000.0; *stats.Mode != want {
		t.Errorf("mode = %v, want bucket midpoint %v", *stats.Mode, want)
	}
}

func TestModeNilWhenAllBucketsUnique(t *testing.T) {
	t.Parallel()
	values := []float64{10 * 60 * 1000, 70 * 60 * 1000, 140 * 60 * 1000}
	if stats := CalculateStatistics(values); stats.Mode != nil {
		t.Errorf("mode = %v, want nil for unique buckets", *stats.Mode)
	}
}

func TestZScoresZeroVariance(t *testing.T) {
	t.Parallel()
	scores := ZScores([]float64{5, 5, 5, 5})
	for i, z := range scores {
		if z != 0 {
			t.Errorf("z[%d] = %v, want 0", i, z)
		}
	}
}

func TestHistogramLastBucketAbsorbsOverflow(t *testing.T) {
	t.Parallel()
	buckets := Histogram([]float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 3)
	if len(buckets) != 3 {
		t.Fatalf("buckets = %d, want 3", len(buckets))
	}
	total := 0
	for _, b := range buckets {
		total += b.Count
	}
	if total != 11 {
		t.Errorf("counts sum to %d, want 11", total)
	}
	// max lands exactly on the upper edge; it must fall into the last bucket.
	if buckets[2].Count == 0 {
		t.Error("last bucket empty, overflow not absorbed")
	}
}

func TestHistogramIdenticalValuesCollapse(t *testing.T) {
	t.Parallel()
	buckets := Histogram([]float64{7, 7, 7}, 5)
	if len(buckets) != 1 || buckets[0].Count != 3 {
		t.Errorf("buckets = %+v, want single full bucket", buckets)
	}
}

func TestHistogramEmpty(t *testing.T) {
	t.Parallel()
	if buckets := Histogram(nil, 4); buckets != nil {
		t.Errorf("buckets = %+v, want nil", buckets)
	}
}

func TestPercentileOfValue(t *testing.T) {
	t.Parallel()
	set := []float64{10, 20, 30, 40}
	tests := []struct {
		query float64
		want  float64
	}{
		{5, 0},
		{10, 25},
		{25, 50},
		{40, 100},
		{100, 100},
	}
	for _, tt := range tests {
		if got := PercentileOfValue(set, tt.query); got != tt.want {
			t.Errorf("PercentileOfValue(%v) = %v, want %v", tt.query, got, tt.want)
		}
	}
	if got := PercentileOfValue(nil, 5); got != 0 {
		t.Errorf("empty set percentile = %v, want 0", got)
	}
}

func TestStatisticsProperties(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		values := rapid.SliceOfN(rapid.Float64Range(0, 1e9), 1, 200).Draw(t, "values")
		stats := CalculateStatistics(values)

		if stats.Mean < stats.Min || stats.Mean > stats.Max {
			t.Errorf("mean %v outside [%v, %v]", stats.Mean, stats.Min, stats.Max)
		}
		if stats.Median < stats.Min || stats.Median > stats.Max {
			t.Errorf("median %v outside [%v, %v]", stats.Median, stats.Min, stats.Max)
		}
		if stats.Variance < 0 {
			t.Errorf("variance %v negative", stats.Variance)
		}
		if stats.Count != len(values) {
			t.Errorf("count %d, want %d", stats.Count, len(values))
		}
	})
}

func TestZScoresProperties(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		values := rapid.SliceOfN(rapid.Float64Range(0, 1e9), 1, 200).Draw(t, "values")
		scores := ZScores(values)
		if len(scores) != len(values) {
			t.Fatalf("scores = %d, want %d", len(scores), len(values))
		}
		for i, z := range scores {
			if math.IsNaN(z) || math.IsInf(z, 0) {
				t.Errorf("z[%d] = %v", i, z)
			}
		}
	})
}

func TestHistogramProperties(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		values := rapid.SliceOfN(rapid.Float64Range(-100, 100), 1, 200).Draw(t, "values")
		bucketCount := rapid.IntRange(1, 20).Draw(t, "buckets")
		buckets := Histogram(values, bucketCount)

		if len(buckets) > bucketCount {
			t.Fatalf("got %d buckets, asked for %d", len(buckets), bucketCount)
		}
		total := 0
		for _, b := range buckets {
			total += b.Count
		}
		if total != len(values) {
			t.Errorf("counts sum to %d, want %d", total, len(values))
		}
	})
}
