package fdsnws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstraints_RepeatedKeyMergesWithComma(t *testing.T) {
	c := newConstraints()
	c.Set("channel", "BHZ")
	c.Set("network", "IU")
	c.Set("channel", "BHN")

	v, ok := c.Get("channel")
	require.True(t, ok)
	assert.Equal(t, "BHZ,BHN", v)
	assert.Equal(t, []string{"channel", "network"}, c.Keys())
	assert.Equal(t, "channel=BHZ%2CBHN&network=IU", c.Build())
}

func TestConstraints_EmptyBuildsEmptyString(t *testing.T) {
	assert.Equal(t, "", newConstraints().Build())
}

func TestConstraints_EmptyValueIsOmittedAndOverwritten(t *testing.T) {
	c := newConstraints()
	c.Set("location", "")
	assert.Equal(t, "", c.Build())

	c.Set("location", "00")
	c.Set("station", "ANMO")
	assert.Equal(t, "location=00&station=ANMO", c.Build())
}

func TestConstraints_WildcardsPassThrough(t *testing.T) {
	c := newConstraints()
	c.Set("station", "VIL?")
	c.Set("channel", "H*")
	assert.Equal(t, "station=VIL%3F&channel=H*", c.Build())
}

func TestEscapeComponent(t *testing.T) {
	cases := map[string]string{
		"abc-_.!~*'()": "abc-_.!~*'()",
		"a b":          "a%20b",
		"a&b=c":        "a%26b%3Dc",
		"2019-01-01T00:00:00": "2019-01-01T00%3A00%3A00",
		"São":          "S%C3%A3o",
	}
	for in, want := range cases {
		assert.Equal(t, want, escapeComponent(in), "input %q", in)
	}
}

type code string

func (c code) String() string { return "code:" + string(c) }

func TestFormatValue(t *testing.T) {
	ts := time.Date(2019, 1, 2, 3, 4, 5, 0, time.UTC)
	frac := time.Date(2019, 1, 2, 3, 4, 5, 250_000_000, time.FixedZone("X", 3600))

	assert.Equal(t, "2019-01-01", FormatValue("2019-01-01"))
	assert.Equal(t, "2019-01-02T03:04:05", FormatValue(ts))
	assert.Equal(t, "2019-01-02T02:04:05.25", FormatValue(frac))
	assert.Equal(t, "2019-01-02T03:04:05", FormatValue(&ts))
	assert.Equal(t, "34.945", FormatValue(34.945))
	assert.Equal(t, "-106", FormatValue(-106.0))
	assert.Equal(t, "100", FormatValue(100))
	assert.Equal(t, "true", FormatValue(true))
	assert.Equal(t, "code:X", FormatValue(code("X")))
	assert.Equal(t, "", FormatValue(nil))
}
