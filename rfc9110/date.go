package rfc9110

import (
	"strings"
	"time"
)

// §  5.6.7.  Date/Time Formats
// §
// §       HTTP-date    = IMF-fixdate / obs-date
// §
// §     An example of the preferred format is
// §
// §       Sun, 06 Nov 1994 08:49:37 GMT    ; IMF-fixdate
// §
// §     Examples of the two obsolete formats are
// §
// §       Sunday, 06-Nov-94 08:49:37 GMT   ; obsolete RFC 850 format
// §       Sun Nov  6 08:49:37 1994         ; ANSI C's asctime() format
// §
// §     A recipient that parses a timestamp value in an HTTP field MUST
// §     accept all three HTTP-date formats.
const imfDateLayout = "Mon, 02 Jan 2006 15:04:05 MST"

// Date parses an HTTP-date in any of the three accepted formats.
// obsolete reports whether one of the two obsolete formats was used,
// so callers can flag senders that still generate them.
func Date(dateStr string) (date time.Time, obsolete bool, err error) {
	if date, err = imfDate(dateStr); err == nil {
		return date, false, nil
	}
	if date, err = obsDate(dateStr); err == nil {
		return date, true, nil
	}
	return time.Time{}, false, err
}

func imfDate(dateStr string) (time.Time, error) {
	return time.Parse(imfDateLayout, normalizeZone(dateStr))
}

// §     Recipients of a timestamp value in rfc850-date format, which uses a
// §     two-digit year, MUST interpret a timestamp that appears to be more
// §     than 50 years in the future as representing the most recent year in
// §     the past that had the same last two digits.
func obsDate(dateStr string) (time.Time, error) {
	if date, err := time.Parse(time.RFC850, dateStr); err == nil {
		if date.After(time.Now().AddDate(50, 0, 0)) {
			date = date.AddDate(-100, 0, 0)
		}
		return date, nil
	}
	return time.Parse(time.ANSIC, dateStr)
}

// §  1.2.2. Delta Seconds (RFC 9111)
// §
// §      delta-seconds  = 1*DIGIT
// §
// §  If a cache receives a delta-seconds value greater than the greatest
// §  integer it can represent, or if any of its subsequent calculations
// §  overflows, the cache MUST consider the value to be 2147483648 (2^31)
// §  or the greatest positive integer it can conveniently represent.
const deltaSecondsMax = 2147483648

// DeltaSeconds parses a non-negative integer number of seconds.
// ok is false for anything that is not 1*DIGIT.
func DeltaSeconds(s string) (seconds int64, ok bool) {
	if s == "" {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		seconds = seconds*10 + int64(c-'0')
		if seconds > deltaSecondsMax {
			return deltaSecondsMax, true
		}
	}
	return seconds, true
}

// strings.ToUpper would also fold the month/day names, which time.Parse
// needs in their canonical case, so only the zone is normalized here.
func normalizeZone(dateStr string) string {
	if strings.HasSuffix(dateStr, "UTC") {
		return strings.TrimSuffix(dateStr, "UTC") + "GMT"
	}
	return dateStr
}
