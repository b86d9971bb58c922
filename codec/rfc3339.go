package codec

import (
	"fmt"
	"time"
)

// TimeRFC3339 returns a TextCodec that converts between RFC3339 strings and time.Time.
func TimeRFC3339() TextCodec { return rfc3339Codec{} }

type rfc3339Codec struct{}

func (rfc3339Codec) Decode(s string) (any, error) {
	t, err := parseRFC3339(s)
	if err != nil {
		return nil, fmt.Errorf("codec: invalid RFC3339 time %q: %w", s, err)
	}
	return t, nil
}

func (rfc3339Codec) Encode(v any) (string, error) {
	switch t := v.(type) {
	case time.Time:
		return formatRFC3339Canonical(t), nil
	case *time.Time:
		if t == nil {
			return "", fmt.Errorf("codec: nil time")
		}
		return formatRFC3339Canonical(*t), nil
	}
	return "", fmt.Errorf("codec: expected time.Time, got %T", v)
}

func (rfc3339Codec) Format() string { return "date-time" }

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

func formatRFC3339Canonical(t time.Time) string {
	// Normalize to UTC and format using RFC3339Nano (Go trims trailing zeros)
	return t.UTC().Format(time.RFC3339Nano)
}
