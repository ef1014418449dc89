package telemetry

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/tsunami-risk-service/internal/domain"
)

const (
	// SeaLevelSource is the provenance name of IOC readings.
	SeaLevelSource = "IOC Sea Level Monitoring"
	// DisplayOffset lifts sea-level values so they render above zero.
	DisplayOffset = 5.0
)

var (
	timeMarkers  = []string{"time"}
	levelMarkers = []string{"level", "slevel", "prs", "rad"}

	timestampLayouts = []string{
		"2006-01-02 15:04:05",
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04",
	}
)

// ParseSeaLevel decodes an IOC CSV export. Rows after the header are
// "timestamp,value_cm[,...]"; malformed rows are skipped. Values are converted
// to meters plus DisplayOffset. At least domain.MinReadings rows must decode;
// only the most recent domain.MaxReadings are kept.
func ParseSeaLevel(text string) ([]domain.Reading, error) {
	lines := strings.Split(text, "\n")

	start := 0
	for i, line := range lines {
		if isHeader(line) {
			start = i + 1
			break
		}
	}

	var readings []domain.Reading
	for _, line := range lines[start:] {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		r, ok := parseSeaLevelRow(line)
		if !ok {
			continue
		}
		readings = append(readings, r)
	}

	if len(readings) < domain.MinReadings {
		return nil, fmt.Errorf("sea level feed: %d rows decoded: %w", len(readings), domain.ErrInsufficientData)
	}
	return domain.MostRecent(readings, domain.MaxReadings), nil
}

func isHeader(line string) bool {
	line = strings.ToLower(strings.TrimSpace(line))
	if line == "" || strings.HasPrefix(line, "#") {
		return false
	}
	return containsAny(line, timeMarkers) && containsAny(line, levelMarkers)
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func parseSeaLevelRow(line string) (domain.Reading, bool) {
	fields := strings.Split(line, ",")
	if len(fields) < 2 {
		return domain.Reading{}, false
	}
	ts, ok := parseTimestamp(strings.TrimSpace(fields[0]))
	if !ok {
		return domain.Reading{}, false
	}
	raw, ok := parseFinite(strings.TrimSpace(fields[1]))
	if !ok {
		return domain.Reading{}, false
	}
	return domain.Reading{
		Timestamp: ts,
		Value:     raw/100 + DisplayOffset,
		Quality:   domain.QualityVerified,
	}, true
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// parseFinite parses a feed value. NaN and infinities are rejected like any
// other non-numeric token.
func parseFinite(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
