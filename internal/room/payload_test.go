package room

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntLike(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{raw: ``, want: 0},
		{raw: `5`, want: 5},
		{raw: `-12`, want: -12},
		{raw: `3.9`, want: 3},
		{raw: `-3.9`, want: -3},
		{raw: `1e3`, want: 1000},
		{raw: `"7"`, want: 7},
		{raw: `" -4 "`, want: -4},
		{raw: `"4.5"`, want: 0},
		{raw: `"left"`, want: 0},
		{raw: `true`, want: 1},
		{raw: `false`, want: 0},
		{raw: `null`, want: 0},
		{raw: `{"x":1}`, want: 0},
		{raw: `[1]`, want: 0},
		{raw: `99999999999999999999`, want: maxDelta},
		{raw: `-1e300`, want: -maxDelta},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, intLike(json.RawMessage(tt.raw)))
		})
	}
}

func TestTextLike(t *testing.T) {
	assert.Equal(t, "", textLike(nil))
	assert.Equal(t, "", textLike(json.RawMessage(`null`)))
	assert.Equal(t, "hi there", textLike(json.RawMessage(`"hi there"`)))
	assert.Equal(t, "42", textLike(json.RawMessage(`42`)))
	assert.Equal(t, "true", textLike(json.RawMessage(`true`)))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abc", 5))
	assert.Equal(t, "ab", truncateRunes("abc", 2))
	assert.Equal(t, "日本", truncateRunes("日本語", 2))
	assert.Equal(t, strings.Repeat("a", 300), truncateRunes(strings.Repeat("a", 400), 300))
}
