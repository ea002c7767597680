package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Seconds is a non-negative whole number of seconds. The backend may encode
// it as a JSON number, a numeric string, or null; all of them decode here.
// Anything that is not numeric decodes as zero, and negative or fractional
// values are clamped down to a whole non-negative count.
type Seconds int

// Int returns s as a plain int.
func (s Seconds) Int() int { return int(s) }

// UnmarshalJSON implements json.Unmarshaler.
func (s *Seconds) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = 0
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			*s = 0
			return nil
		}
		raw = strings.TrimSpace(str)
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		*s = 0
		return nil
	}
	*s = Seconds(math.Floor(f))
	return nil
}
