package util

import (
	"fmt"
	"strings"
	"time"
)

// TokenFields is the number of underscore-separated fields in a filename token.
const TokenFields = 6

const (
	minTokenYear = 0
	maxTokenYear = 9999

	tokenLayout = "2006-01-02 15:04:05"
	isoLayout   = "2006-01-02T15:04:05"
)

var tokenReplacer = strings.NewReplacer("-", "_", ":", "_", " ", "_")

// Timestamp is a point in time that can be reduced to minute resolution.
// The set of implementations is closed: NativeDateTime, ExternalTimestamp
// and MinuteTimestamp.
type Timestamp interface {
	ToMinute() MinuteTimestamp
	timestamp()
}

// NativeDateTime wraps a Go time value. Zones are converted to UTC.
type NativeDateTime struct {
	Time time.Time
}

// ExternalTimestamp is a count of nanoseconds since the Unix epoch, the
// representation dataframe libraries use for their timestamp columns.
type ExternalTimestamp int64

// MinuteTimestamp is a count of whole minutes since the Unix epoch (UTC).
type MinuteTimestamp int64

func (NativeDateTime) timestamp()    {}
func (ExternalTimestamp) timestamp() {}
func (MinuteTimestamp) timestamp()   {}

// ToMinute truncates the wrapped time to the start of its minute.
func (n NativeDateTime) ToMinute() MinuteTimestamp {
	return MinuteTimestamp(floorDiv(n.Time.Unix(), 60))
}

// ToMinute truncates the nanosecond count to the start of its minute.
func (e ExternalTimestamp) ToMinute() MinuteTimestamp {
	return MinuteTimestamp(floorDiv(int64(e), int64(time.Minute)))
}

func (m MinuteTimestamp) ToMinute() MinuteTimestamp {
	return m
}

// Time returns the minute as a UTC time value.
func (m MinuteTimestamp) Time() time.Time {
	return time.Unix(int64(m)*60, 0).UTC()
}

func (m MinuteTimestamp) String() string {
	return m.Time().Format(isoLayout)
}

// FromValue resolves an arbitrary value into one of the Timestamp variants.
// Anything other than a time.Time, *time.Time or an existing variant fails
// with ErrUnsupportedType.
func FromValue(v any) (Timestamp, error) {
	switch t := v.(type) {
	case time.Time:
		return NativeDateTime{Time: t}, nil
	case *time.Time:
		if t == nil {
			break
		}
		return NativeDateTime{Time: *t}, nil
	case NativeDateTime:
		return t, nil
	case ExternalTimestamp:
		return t, nil
	case MinuteTimestamp:
		return t, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
}

// Encode formats ts as a filename token, e.g. "2024_03_05_14_07_00".
// Seconds and anything finer are truncated, so the last field is always "00".
// Only years 0000 through 9999 have a token; other instants fail with
// ErrUnsupportedType.
func Encode(ts Timestamp) (string, error) {
	if ts == nil {
		return "", fmt.Errorf("%w: <nil>", ErrUnsupportedType)
	}
	t := ts.ToMinute().Time()
	if y := t.Year(); y < minTokenYear || y > maxTokenYear {
		return "", fmt.Errorf("%w: year %d outside %04d..%04d", ErrUnsupportedType, y, minTokenYear, maxTokenYear)
	}
	return tokenReplacer.Replace(t.Format(tokenLayout)), nil
}

// EncodeValue is FromValue followed by Encode.
func EncodeValue(v any) (string, error) {
	ts, err := FromValue(v)
	if err != nil {
		return "", err
	}
	return Encode(ts)
}

// Decode parses a filename token produced by Encode.
func Decode(token string) (MinuteTimestamp, error) {
	fields := strings.Split(token, "_")
	if len(fields) != TokenFields {
		return 0, fmt.Errorf("%w: %q has %d fields, want %d", ErrMalformedToken, token, len(fields), TokenFields)
	}
	iso := fmt.Sprintf("%s-%s-%sT%s:%s:%s", fields[0], fields[1], fields[2], fields[3], fields[4], fields[5])
	t, err := time.Parse(isoLayout, iso)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrMalformedToken, token, err)
	}
	return NativeDateTime{Time: t}.ToMinute(), nil
}

// floorDiv divides rounding toward negative infinity so instants before the
// epoch truncate to the start of their minute.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
