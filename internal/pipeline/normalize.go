package pipeline

import (
	"strings"
	"time"
)

const (
	dateOutput     = "02.01.2006"
	dateTimeOutput = "02.01.2006 15:04:05"
)

// Layouts tried for values containing a 'T' separator. Fractional seconds
// are accepted by time.Parse after the seconds field without a layout entry.
var dateTimeLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// NormalizeValue converts booleans to ja/nein and ISO dates to German notation.
// Times are printed as written; offsets are not converted.
func NormalizeValue(v string) string {
	switch {
	case strings.EqualFold(v, "true"):
		return "ja"
	case strings.EqualFold(v, "false"):
		return "nein"
	}
	if !strings.Contains(v, "-") {
		return v
	}

	s := strings.TrimSpace(v)
	if strings.Contains(s, "T") {
		for _, layout := range dateTimeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format(dateTimeOutput)
			}
		}
		return v
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(dateOutput)
		}
	}
	return v
}
