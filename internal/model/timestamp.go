package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Timestamp wraps the submission time of an order and records whether the
// source value carried an explicit UTC offset. The forms historically
// wrote a mix of RFC3339 values and naive local ones; downstream KPI
// bucketing treats mixing the two in one batch as a precondition
// violation, so the distinction must survive parsing.
type Timestamp struct {
	Time  time.Time
	Zoned bool
}

const naiveLayout = "2006-01-02 15:04:05"

// timestampLayouts are tried in order. Zoned layouts carry an offset.
var timestampLayouts = []struct {
	layout string
	zoned  bool
}{
	{time.RFC3339Nano, true},
	{time.RFC3339, true},
	{"2006-01-02T15:04:05.999999", false}, // isoformat() without offset
	{naiveLayout, false},
	{"02/01/2006 15:04:05", false}, // the party form's strftime
	{"2006-01-02", false},
}

// ParseTimestamp parses s against the known form layouts. Naive values
// are parsed in UTC as a placeholder wall clock; callers that bucket by
// day/hour re-anchor them in the reference location.
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}, nil
	}
	for _, l := range timestampLayouts {
		if t, err := time.Parse(l.layout, s); err == nil {
			return Timestamp{Time: t, Zoned: l.zoned}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func (t Timestamp) IsZero() bool { return t.Time.IsZero() }

// After reports whether t is later than u on the raw wall clock.
func (t Timestamp) After(u Timestamp) bool { return t.Time.After(u.Time) }

// String renders the value in the layout family it was parsed from, so a
// store round trip preserves zonedness.
func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	if t.Zoned {
		return t.Time.Format(time.RFC3339Nano)
	}
	return t.Time.Format(naiveLayout)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	ts, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = ts
	return nil
}
