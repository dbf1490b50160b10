package udf

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/s0up4200/goudf/internal/ostastring"
)

// Label returns the volume identifier recorded in the Logical Volume
// Descriptor (spec.md §4.11 Label & UUID, C11: "decoded dstring of
// lvd.logical_vol_ident").
func (v *Volume) Label() (string, error) {
	s, err := ostastring.DecodeDString(v.LVD.LogicalVolumeIdentifier[:], len(v.LVD.LogicalVolumeIdentifier))
	if err != nil {
		return "", fmt.Errorf("%w: volume label: %v", ErrInvalidString, err)
	}
	return s, nil
}

// UUID derives a stable volume identifier from the PVD's VolumeSetIdentifier
// dstring, per spec.md §4.11: decode up to 16 leading characters, then let n
// be the count of leading lowercase-hex characters among them. n >= 16 uses
// those 16 characters directly (lowercased); otherwise the field isn't
// clean hex text, so the UUID instead hex-encodes the first 8 raw bytes of
// VolumeSetIdentifier. A decoded identifier shorter than 8 characters has
// no UUID.
func (v *Volume) UUID() (string, bool) {
	raw := v.PVD.VolumeSetIdentifier[:]
	decoded, err := ostastring.DecodeDString(raw, len(raw))
	if err != nil || len(decoded) < 8 {
		return "", false
	}

	chars := decoded
	if len(chars) > 16 {
		chars = chars[:16]
	}
	n := 0
	for n < len(chars) && isLowerHexDigit(chars[n]) {
		n++
	}

	if n >= 16 {
		return strings.ToLower(chars[:16]), true
	}
	return hex.EncodeToString(raw[:8]), true
}

func isLowerHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
}

// decodeTimestamp converts a UDF Timestamp (ECMA-167 §1.7.3) to a Unix
// epoch, honoring the signed 12-bit timezone offset in minutes. ok is false
// when the date is all zero or Type (top 4 bits of TypeAndTimezone) is not 1
// ("local time"), matching the convention that zeroed/absent timestamps
// should not be reported as 1970-01-01. An offset outside +/-1440 minutes,
// including the -2047 "not specified" value, is treated as UTC.
func decodeTimestamp(ts Timestamp) (int64, bool) {
	if ts.Year == 0 && ts.Month == 0 && ts.Day == 0 {
		return 0, false
	}
	if ts.TypeAndTimezone>>12 != 1 {
		return 0, false
	}

	tz := int16(ts.TypeAndTimezone << 4) >> 4 // sign-extend low 12 bits
	if tz < -1440 || tz > 1440 {
		tz = 0 // "not specified"; treat as UTC
	}

	days := daysFromCivil(int(ts.Year), int(ts.Month), int(ts.Day))
	secs := days*86400 + int64(ts.Hour)*3600 + int64(ts.Minute)*60 + int64(ts.Second)
	secs -= int64(tz) * 60
	return secs, true
}

// daysFromCivil converts a y/m/d civil date to days since the Unix epoch
// using Howard Hinnant's proleptic Gregorian algorithm, avoiding a
// time.Date round-trip for dates UDF allows but Go's time package treats
// specially (e.g. year 1).
func daysFromCivil(y, m, d int) int64 {
	if m <= 2 {
		y--
	}
	era := y
	if y < 0 {
		era -= 399
	}
	era /= 400
	yoe := y - era*400
	var mp int
	if m > 2 {
		mp = m - 3
	} else {
		mp = m + 9
	}
	doy := (153*mp+2)/5 + d - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return int64(era)*146097 + int64(doe) - 719468
}
