package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseTimestamp converts a DD/MM/YYYY date and HH:MM:SS time into Unix epoch
// milliseconds in the given location. The wire format carries no timezone
// field, so the location choice decides how timestamps travel between
// machines; it comes from settings rather than the ambient process zone.
func ParseTimestamp(dateStr, timeStr string, loc *time.Location) (int64, error) {
	dateParts := strings.Split(dateStr, "/")
	if len(dateParts) != 3 {
		return 0, fmt.Errorf("date %q: want DD/MM/YYYY", dateStr)
	}
	day, err := strconv.Atoi(dateParts[0])
	if err != nil {
		return 0, fmt.Errorf("date %q: day is not an integer", dateStr)
	}
	month, err := strconv.Atoi(dateParts[1])
	if err != nil {
		return 0, fmt.Errorf("date %q: month is not an integer", dateStr)
	}
	year, err := strconv.Atoi(dateParts[2])
	if err != nil {
		return 0, fmt.Errorf("date %q: year is not an integer", dateStr)
	}

	timeParts := strings.Split(timeStr, ":")
	if len(timeParts) != 3 {
		return 0, fmt.Errorf("time %q: want HH:MM:SS", timeStr)
	}
	hour, err := strconv.Atoi(timeParts[0])
	if err != nil {
		return 0, fmt.Errorf("time %q: hours are not an integer", timeStr)
	}
	minute, err := strconv.Atoi(timeParts[1])
	if err != nil {
		return 0, fmt.Errorf("time %q: minutes are not an integer", timeStr)
	}
	second, err := strconv.Atoi(timeParts[2])
	if err != nil {
		return 0, fmt.Errorf("time %q: seconds are not an integer", timeStr)
	}

	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, loc)
	// time.Date normalizes out-of-range components (31/02 becomes 02/03 or
	// 03/03), so a round trip detects both impossible dates and overflowing
	// time fields.
	if t.Year() != year || int(t.Month()) != month || t.Day() != day ||
		t.Hour() != hour || t.Minute() != minute || t.Second() != second {
		return 0, fmt.Errorf("%s %s is not a valid calendar instant", dateStr, timeStr)
	}
	return t.UnixMilli(), nil
}

// FormatTimestamp is the inverse of ParseTimestamp for export.
func FormatTimestamp(epochMS int64, loc *time.Location) (date, clock string) {
	t := time.UnixMilli(epochMS).In(loc)
	return t.Format("02/01/2006"), t.Format("15:04:05")
}
