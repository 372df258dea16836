package dataset

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
	"01/02/2006 15:04:05",
	"01/02/2006",
	"1/2/06 15:04",
}

// ParseTime parses a timestamp cell. Numeric values are treated as Excel
// serial dates (1900 date system); everything else is tried against the
// known text layouts in UTC.
func ParseTime(s string) (time.Time, bool) {
	s = clean(s)
	if s == "" {
		return time.Time{}, false
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return t.UTC(), true
	}

	s = strings.TrimSuffix(s, " UTC")
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
