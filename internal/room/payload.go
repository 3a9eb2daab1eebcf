package room

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// maxDelta bounds decoded movement deltas; anything larger is clamped by
// the room anyway.
const maxDelta = math.MaxInt32

// intLike decodes an integer-like JSON value. Integers are used as-is,
// floats are truncated toward zero, numeric strings are parsed after
// trimming and booleans count as 1 or 0. Everything else yields 0.
func intLike(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return 0
	}

	switch val := v.(type) {
	case json.Number:
		return numberLike(val.String())
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return 0
		}
		return saturate(n)
	case bool:
		if val {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func numberLike(s string) int {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return saturate(n)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	f = math.Trunc(f)
	if f > maxDelta {
		return maxDelta
	}
	if f < -maxDelta {
		return -maxDelta
	}
	return int(f)
}

func saturate(n int64) int {
	if n > maxDelta {
		return maxDelta
	}
	if n < -maxDelta {
		return -maxDelta
	}
	return int(n)
}

// textLike coerces a JSON value to chat text. Strings are returned as-is,
// null or missing values are empty, and any other value is kept in its JSON
// form.
func textLike(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	return string(trimmed)
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
