package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Precision records how much of a Date/DateTime/Time literal was actually
// specified, since FHIRPath dates may be partial (spec §4.1: "@YYYY[-MM[-DD
// ...]]]").
type Precision int

const (
	PrecisionYear Precision = iota
	PrecisionMonth
	PrecisionDay
	PrecisionHour
	PrecisionMinute
	PrecisionSecond
	PrecisionMillis
)

// Date is a calendar date with possibly-partial precision.
type Date struct {
	Year, Month, Day int
	Prec             Precision
}

func (Date) Kind() Kind { return KindDate }
func (d Date) String() string {
	switch d.Prec {
	case PrecisionYear:
		return fmt.Sprintf("%04d", d.Year)
	case PrecisionMonth:
		return fmt.Sprintf("%04d-%02d", d.Year, d.Month)
	default:
		return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
	}
}

// Time is a time-of-day with possibly-partial precision and no date part.
type Time struct {
	Hour, Minute, Second, Millis int
	Prec                         Precision
	HasZone                      bool
	ZoneOffsetMinutes            int
}

func (Time) Kind() Kind { return KindTime }
func (t Time) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%02d", t.Hour)
	if t.Prec >= PrecisionMinute {
		fmt.Fprintf(&sb, ":%02d", t.Minute)
	}
	if t.Prec >= PrecisionSecond {
		fmt.Fprintf(&sb, ":%02d", t.Second)
	}
	if t.Prec >= PrecisionMillis {
		fmt.Fprintf(&sb, ".%03d", t.Millis)
	}
	writeZone(&sb, t.HasZone, t.ZoneOffsetMinutes)
	return sb.String()
}

// DateTime combines Date and a possibly-partial time-of-day.
type DateTime struct {
	Date              Date
	Time              Time
	HasTime           bool
}

func (DateTime) Kind() Kind { return KindDateTime }
func (dt DateTime) String() string {
	if !dt.HasTime {
		return dt.Date.String()
	}
	return dt.Date.String() + "T" + dt.Time.String()
}

func writeZone(sb *strings.Builder, hasZone bool, offsetMinutes int) {
	if !hasZone {
		return
	}
	if offsetMinutes == 0 {
		sb.WriteString("Z")
		return
	}
	sign := "+"
	off := offsetMinutes
	if off < 0 {
		sign = "-"
		off = -off
	}
	fmt.Fprintf(sb, "%s%02d:%02d", sign, off/60, off%60)
}

// ParseDate parses a lexer DATE lexeme of the form "@YYYY[-MM[-DD]]".
func ParseDate(lexeme string) (Date, error) {
	body := strings.TrimPrefix(lexeme, "@")
	parts := strings.Split(body, "-")
	d := Date{Prec: PrecisionYear}
	var err error
	if d.Year, err = strconv.Atoi(parts[0]); err != nil {
		return Date{}, fmt.Errorf("invalid year in date literal %q: %w", lexeme, err)
	}
	d.Month, d.Day = 1, 1
	if len(parts) >= 2 {
		if d.Month, err = strconv.Atoi(parts[1]); err != nil {
			return Date{}, fmt.Errorf("invalid month in date literal %q: %w", lexeme, err)
		}
		d.Prec = PrecisionMonth
	}
	if len(parts) >= 3 {
		if d.Day, err = strconv.Atoi(parts[2]); err != nil {
			return Date{}, fmt.Errorf("invalid day in date literal %q: %w", lexeme, err)
		}
		d.Prec = PrecisionDay
	}
	return d, nil
}

// ParseDateTime parses a lexer DATETIME lexeme "@YYYY[-MM[-DD]]THH:MM[...]".
func ParseDateTime(lexeme string) (DateTime, error) {
	body := strings.TrimPrefix(lexeme, "@")
	datePart, timePart, found := strings.Cut(body, "T")
	d, err := ParseDate("@" + datePart)
	if err != nil {
		return DateTime{}, err
	}
	if !found || timePart == "" {
		return DateTime{Date: d}, nil
	}
	t, err := parseTimeBody(timePart)
	if err != nil {
		return DateTime{}, err
	}
	return DateTime{Date: d, Time: t, HasTime: true}, nil
}

// ParseTime parses a lexer TIME lexeme "@THH:MM[...]".
func ParseTime(lexeme string) (Time, error) {
	body := strings.TrimPrefix(lexeme, "@T")
	return parseTimeBody(body)
}

func parseTimeBody(body string) (Time, error) {
	zoneIdx := -1
	zoneIsZ := false
	for i, c := range body {
		if c == 'Z' {
			zoneIdx = i
			zoneIsZ = true
			break
		}
		if i > 0 && (c == '+' || c == '-') {
			zoneIdx = i
			break
		}
	}
	clock := body
	zone := ""
	if zoneIdx >= 0 {
		clock = body[:zoneIdx]
		zone = body[zoneIdx:]
	}

	t := Time{Prec: PrecisionHour}
	clockParts := strings.Split(clock, ":")
	var err error
	if t.Hour, err = strconv.Atoi(clockParts[0]); err != nil {
		return Time{}, fmt.Errorf("invalid hour in time literal: %w", err)
	}
	if len(clockParts) >= 2 {
		if t.Minute, err = strconv.Atoi(clockParts[1]); err != nil {
			return Time{}, fmt.Errorf("invalid minute in time literal: %w", err)
		}
		t.Prec = PrecisionMinute
	}
	if len(clockParts) >= 3 {
		secStr := clockParts[2]
		secPart, fracPart, hasFrac := strings.Cut(secStr, ".")
		if t.Second, err = strconv.Atoi(secPart); err != nil {
			return Time{}, fmt.Errorf("invalid second in time literal: %w", err)
		}
		t.Prec = PrecisionSecond
		if hasFrac {
			msStr := (fracPart + "000")[:3]
			if t.Millis, err = strconv.Atoi(msStr); err != nil {
				return Time{}, fmt.Errorf("invalid fraction in time literal: %w", err)
			}
			t.Prec = PrecisionMillis
		}
	}
	if zone != "" {
		t.HasZone = true
		if zoneIsZ {
			t.ZoneOffsetMinutes = 0
		} else {
			sign := 1
			if zone[0] == '-' {
				sign = -1
			}
			zoneParts := strings.Split(zone[1:], ":")
			zh, _ := strconv.Atoi(zoneParts[0])
			zm := 0
			if len(zoneParts) > 1 {
				zm, _ = strconv.Atoi(zoneParts[1])
			}
			t.ZoneOffsetMinutes = sign * (zh*60 + zm)
		}
	}
	return t, nil
}
