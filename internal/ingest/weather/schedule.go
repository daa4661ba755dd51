// Package weather computes HRRR model cycle availability and downloads the
// resulting GRIB2 index, grounded on odin_hrrr/src/schedule.rs.
package weather

import "time"

// Schedule holds the forecast-hour counts for regular vs. extended HRRR
// cycles, mirroring HrrrSchedules.reg/ext.
type Schedule struct {
	Regular  []int // forecast hours published at every cycle
	Extended []int // forecast hours published only at 00/06/12/18 UTC
}

// DefaultSchedule approximates HRRR's published cadence: 18-hour forecasts
// every cycle, 48-hour forecasts at the four synoptic hours.
func DefaultSchedule() Schedule {
	reg := make([]int, 19)
	for i := range reg {
		reg[i] = i
	}
	ext := make([]int, 49)
	for i := range ext {
		ext[i] = i
	}
	return Schedule{Regular: reg, Extended: ext}
}

// IsExtendedCycle reports whether cycleHour is one of HRRR's four synoptic
// hours that publish the 48-hour extended forecast.
func IsExtendedCycle(cycleHour int) bool {
	switch cycleHour % 24 {
	case 0, 6, 12, 18:
		return true
	default:
		return false
	}
}

// ForecastHoursFor returns the forecast-hour set published for a cycle
// starting at dt.
func (s Schedule) ForecastHoursFor(dt time.Time) []int {
	if IsExtendedCycle(dt.Hour()) {
		return s.Extended
	}
	return s.Regular
}

// NextAvailable computes the next wall-clock time a cycle starting at
// cycleHour (today, UTC) is expected to finish publishing, given a
// generation delay (HRRR typically lags its nominal cycle hour by 1-2h).
func NextAvailable(now time.Time, cycleHour int, delay time.Duration) time.Time {
	now = now.UTC()
	cycle := time.Date(now.Year(), now.Month(), now.Day(), cycleHour, 0, 0, 0, time.UTC)
	avail := cycle.Add(delay)
	if avail.Before(now) {
		avail = avail.Add(24 * time.Hour)
	}
	return avail
}
