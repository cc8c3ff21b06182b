package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Month is the x-axis key of every monthly series. The API sends it either
// as a month number (1..12) or as a label such as "2025-03"; both decode to
// the same canonical string.
type Month string

// UnmarshalJSON accepts a JSON number or string
func (m *Month) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = Month(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("month must be a number or string: %w", err)
	}
	if i, err := n.Int64(); err == nil {
		*m = Month(strconv.FormatInt(i, 10))
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("invalid month %s: %w", string(data), err)
	}
	*m = Month(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// MarshalJSON emits numeric months as numbers so the round trip keeps the API's shape
func (m Month) MarshalJSON() ([]byte, error) {
	if n, err := strconv.Atoi(string(m)); err == nil {
		return []byte(strconv.Itoa(n)), nil
	}
	return json.Marshal(string(m))
}

// Less orders months numerically when both are numbers, lexically otherwise.
// Labels like "2025-03" sort correctly as strings.
func (m Month) Less(other Month) bool {
	a, errA := strconv.Atoi(string(m))
	b, errB := strconv.Atoi(string(other))
	switch {
	case errA == nil && errB == nil:
		return a < b
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return string(m) < string(other)
	}
}
