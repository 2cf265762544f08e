package variant

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// timeKeywordFormats maps the named presets from SPEC_FULL.md §6's
// time-format mini-language onto Go reference-time layouts.
var timeKeywordFormats = map[string]string{
	"atom":    "2006-01-02T15:04:05Z07:00",
	"cookie":  "Monday, 02-Jan-2006 15:04:05 MST",
	"iso8601": "2006-01-02T15:04:05Z07:00",
	"rfc822":  "02 Jan 06 15:04 MST",
	"rfc850":  "Monday, 02-Jan-06 15:04:05 MST",
	"rfc1123": "Mon, 02 Jan 2006 15:04:05 MST",
	"rfc2822": "Mon, 02 Jan 2006 15:04:05 -0700",
	"rfc3339": "2006-01-02T15:04:05Z07:00",
	"rss":     "Mon, 02 Jan 2006 15:04:05 -0700",
	"w3c":     "2006-01-02T15:04:05Z07:00",
}

// FormatTime implements the HVML time-format mini-language: either one
// of the named keywords above, or a strftime-style pattern built from
// "%"-directives. There is no runtime strftime in the Go standard
// library, so the directive table below is hand-rolled against
// time.Time field accessors.
func FormatTime(t time.Time, format string) (string, error) {
	if layout, ok := timeKeywordFormats[format]; ok {
		return t.Format(layout), nil
	}
	var sb strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i == len(format)-1 {
			sb.WriteByte(c)
			continue
		}
		i++
		dir := format[i]
		piece, err := strftimeDirective(t, dir)
		if err != nil {
			return "", err
		}
		sb.WriteString(piece)
	}
	return sb.String(), nil
}

func strftimeDirective(t time.Time, dir byte) (string, error) {
	switch dir {
	case 'Y':
		return strconv.Itoa(t.Year()), nil
	case 'y':
		return fmt.Sprintf("%02d", t.Year()%100), nil
	case 'm':
		return fmt.Sprintf("%02d", int(t.Month())), nil
	case 'd':
		return fmt.Sprintf("%02d", t.Day()), nil
	case 'H':
		return fmt.Sprintf("%02d", t.Hour()), nil
	case 'I':
		h := t.Hour() % 12
		if h == 0 {
			h = 12
		}
		return fmt.Sprintf("%02d", h), nil
	case 'M':
		return fmt.Sprintf("%02d", t.Minute()), nil
	case 'S':
		return fmt.Sprintf("%02d", t.Second()), nil
	case 'p':
		if t.Hour() < 12 {
			return "AM", nil
		}
		return "PM", nil
	case 'a':
		return t.Weekday().String()[:3], nil
	case 'A':
		return t.Weekday().String(), nil
	case 'b', 'h':
		return t.Month().String()[:3], nil
	case 'B':
		return t.Month().String(), nil
	case 'j':
		return fmt.Sprintf("%03d", t.YearDay()), nil
	case 'z':
		return t.Format("-0700"), nil
	case 'Z':
		name, _ := t.Zone()
		return name, nil
	case 'e':
		return fmt.Sprintf("%2d", t.Day()), nil
	case 'n':
		return "\n", nil
	case 't':
		return "\t", nil
	case '%':
		return "%", nil
	default:
		return "", fmt.Errorf("variant: unknown time directive %%%c", dir)
	}
}
