// Package timefmt converts heterogeneous stored timestamp representations
// into canonical time.Time values. Documents written by older clients carry
// timestamps as RFC3339 strings, epoch milliseconds, or raw
// {seconds, nanoseconds} objects; everything is normalized here at fetch
// time so in-memory dates are always a single type.
package timefmt

import (
	"encoding/json/v2"
	"fmt"
	"strconv"
	"time"
)

// Timer is implemented by timestamp wrappers that expose their underlying time.
type Timer interface {
	ToTime() time.Time
}

// Normalize converts an arbitrary stored timestamp representation into a
// canonical *time.Time. Supported inputs:
//
//   - nil                          → nil (never an error)
//   - time.Time / *time.Time      → as-is (zero time → nil)
//   - Timer                        → ToTime()
//   - string                       → RFC3339, RFC3339Nano, or epoch millis
//   - int64 / float64              → epoch milliseconds
//   - map with "seconds"/"nanoseconds" keys → seconds+nanos epoch
//
// Anything unrecognized returns an error; callers treat that as a corrupt
// document field, not a crash.
func Normalize(v any) (*time.Time, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return nonZero(t), nil
	case *time.Time:
		if t == nil {
			return nil, nil
		}
		return nonZero(*t), nil
	case Timer:
		return nonZero(t.ToTime()), nil
	case string:
		return parseString(t)
	case int64:
		return nonZero(time.UnixMilli(t)), nil
	case float64:
		return nonZero(time.UnixMilli(int64(t))), nil
	case map[string]any:
		return parseSecondsNanos(t)
	}
	return nil, fmt.Errorf("cannot normalize timestamp of type %T", v)
}

func parseString(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return nonZero(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return nonZero(t), nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return nonZero(time.UnixMilli(ms)), nil
	}
	return nil, fmt.Errorf("cannot parse time string: %s", s)
}

// parseSecondsNanos handles the raw {seconds, nanoseconds} shape some
// document-store SDKs persist for timestamps.
func parseSecondsNanos(m map[string]any) (*time.Time, error) {
	secs, ok := numberField(m, "seconds")
	if !ok {
		return nil, fmt.Errorf("timestamp object missing seconds field")
	}
	nanos, _ := numberField(m, "nanoseconds")
	return nonZero(time.Unix(secs, nanos)), nil
}

func numberField(m map[string]any, key string) (int64, bool) {
	switch n := m[key].(type) {
	case int64:
		return n, true
	case float64:
		return int64(n), true
	case int:
		return int64(n), true
	case string:
		v, err := strconv.ParseInt(n, 10, 64)
		return v, err == nil
	}
	return 0, false
}

func nonZero(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// FlexTime is a time type that can unmarshal from either:
// - RFC3339 string: "2024-01-15T10:30:00Z"
// - Epoch milliseconds (number): 1705314600000
// - Epoch milliseconds (string): "1705314600000"
// - Raw object: {"seconds": 1705314600, "nanoseconds": 0}
//
// It always marshals to RFC3339 format for consistency.
type FlexTime struct {
	time.Time
}

// UnmarshalJSON handles flexible time parsing from JSON.
func (ft *FlexTime) UnmarshalJSON(data []byte) error {
	// Try to unmarshal as string first
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		t, err := parseString(s)
		if err != nil {
			return err
		}
		if t != nil {
			ft.Time = *t
		}
		return nil
	}

	// Try as number (epoch milliseconds)
	var ms int64
	if err := json.Unmarshal(data, &ms); err == nil {
		ft.Time = time.UnixMilli(ms)
		return nil
	}

	// Try as float (some JSON encoders use float for large numbers)
	var msFloat float64
	if err := json.Unmarshal(data, &msFloat); err == nil {
		ft.Time = time.UnixMilli(int64(msFloat))
		return nil
	}

	// Try as raw seconds/nanoseconds object
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err == nil {
		t, err := parseSecondsNanos(obj)
		if err != nil {
			return err
		}
		if t != nil {
			ft.Time = *t
		}
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into FlexTime", string(data))
}

// MarshalJSON outputs time in RFC3339 format.
func (ft FlexTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(ft.Format(time.RFC3339))
}

// ToTime returns the underlying time.Time value.
func (ft FlexTime) ToTime() time.Time {
	return ft.Time
}
