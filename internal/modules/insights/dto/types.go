package dto

type ReportInput struct {
	TagName         string
	MinPercentile   float64
	ExcludeOutliers bool
	Buckets         int
}

type DayEntry struct {
	Day        string
	TotalMS    float64
	ZScore     float64
	Percentile float64
}

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

type HistogramBucket struct {
	Lower float64
	Upper float64
	Count int
}

type TagReport struct {
	TagName         string
	Days            []DayEntry
	Stats           Statistics
	Histogram       []HistogramBucket
	DaysTracked     int // days with any activity for this tag, before filters
	FilteredDays    int // dropped by the completeness filter
	RemovedOutliers int
}
