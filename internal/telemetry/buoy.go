package telemetry

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/tsunami-risk-service/internal/domain"
)

const (
	// BuoySource is the provenance name of NDBC readings.
	BuoySource = "NOAA NDBC"
	// DefaultWaveHeight replaces the NDBC missing-data token, in meters.
	DefaultWaveHeight = 1.0

	buoyHeaderLines = 2
	buoyMissing     = "MM"
)

// NDBC realtime2 standard meteorological column positions.
const (
	colYear = iota
	colMonth
	colDay
	colHour
	colMinute
	colWaveHeight = 8
)

// ParseBuoy decodes an NDBC realtime2 standard meteorological file. The two
// header lines are skipped and at most domain.MaxReadings rows after them are
// examined. The feed is newest-first; readings are returned chronological.
func ParseBuoy(text string) ([]domain.Reading, error) {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) <= buoyHeaderLines {
		return nil, fmt.Errorf("buoy feed: no data rows: %w", domain.ErrInsufficientData)
	}

	rows := lines[buoyHeaderLines:]
	if len(rows) > domain.MaxReadings {
		rows = rows[:domain.MaxReadings]
	}

	var readings []domain.Reading
	for _, line := range rows {
		if r, ok := parseBuoyRow(line); ok {
			readings = append(readings, r)
		}
	}

	if len(readings) < domain.MinReadings {
		return nil, fmt.Errorf("buoy feed: %d rows decoded: %w", len(readings), domain.ErrInsufficientData)
	}
	slices.Reverse(readings)
	return readings, nil
}

func parseBuoyRow(line string) (domain.Reading, bool) {
	f := strings.Fields(line)
	if len(f) <= colWaveHeight {
		return domain.Reading{}, false
	}

	var date [5]int
	for i, col := range []int{colYear, colMonth, colDay, colHour, colMinute} {
		n, err := strconv.Atoi(f[col])
		if err != nil {
			return domain.Reading{}, false
		}
		date[i] = n
	}

	value := DefaultWaveHeight
	if f[colWaveHeight] != buoyMissing {
		v, ok := parseFinite(f[colWaveHeight])
		if !ok {
			return domain.Reading{}, false
		}
		value = v
	}

	return domain.Reading{
		Timestamp: time.Date(date[0], time.Month(date[1]), date[2], date[3], date[4], 0, 0, time.UTC),
		Value:     value,
		Quality:   domain.QualityMeasured,
	}, true
}
