package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
)

// Duration is a film running time. It is written to JSON as an integer
// number of seconds and read back from either that form or an ISO-8601
// duration string such as "PT2H" or "PT1H30M".
type Duration time.Duration

// MaxDurationSeconds is the largest number of seconds a Duration can hold.
const MaxDurationSeconds = math.MaxInt64 / int64(time.Second)

var errDurationRange = fmt.Errorf("duration must not exceed %d seconds", MaxDurationSeconds)

// DurationOf converts a standard library duration.
func DurationOf(d time.Duration) Duration { return Duration(d) }

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Seconds returns the whole number of seconds.
func (d Duration) Seconds() int64 { return int64(time.Duration(d) / time.Second) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(d.Seconds(), 10)), nil
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		parsed, err := ParseISODuration(s)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
		return nil
	}
	secs, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("duration must be an integer number of seconds or an ISO-8601 string")
	}
	if secs > MaxDurationSeconds || secs < -MaxDurationSeconds {
		return errDurationRange
	}
	*d = Duration(time.Duration(secs) * time.Second)
	return nil
}

var isoDuration = regexp.MustCompile(`^(-)?P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseISODuration parses the day/time subset of ISO-8601 durations
// (PnDTnHnMnS). Years, months and weeks are rejected since their length
// is calendar dependent.
func ParseISODuration(s string) (time.Duration, error) {
	m := isoDuration.FindStringSubmatch(s)
	if m == nil || s == "P" || s == "-P" || (len(s) > 0 && s[len(s)-1] == 'T') {
		return 0, fmt.Errorf("invalid ISO-8601 duration %q", s)
	}
	units := []time.Duration{24 * time.Hour, time.Hour, time.Minute, time.Second}
	var total time.Duration
	for i, unit := range units {
		part := m[i+2]
		if part == "" {
			continue
		}
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil || n > int64(math.MaxInt64/unit) {
			return 0, errors.New("duration component out of range")
		}
		add := time.Duration(n) * unit
		if total > math.MaxInt64-add {
			return 0, errDurationRange
		}
		total += add
	}
	if m[1] == "-" {
		total = -total
	}
	return total, nil
}
