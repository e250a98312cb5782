package durationfmt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tally/internal/platform/durationfmt"
)

func TestFormat(t *testing.T) {
	t.Parallel()
	cases := map[int64]string{
		0:     "0m",
		59:    "0m",
		60:    "1m",
		3599:  "59m",
		3600:  "1h 0m",
		3661:  "1h 1m",
		90061: "25h 1m",
		-5:    "0m",
	}
	for in, want := range cases {
		assert.Equal(t, want, durationfmt.Format(in), "seconds=%d", in)
	}
}

func TestFormatSecondsFloors(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "0m", durationfmt.FormatSeconds(59.999))
	assert.Equal(t, "1h 0m", durationfmt.FormatSeconds(3600.7))
}

func TestFormatClock(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "00:00:00", durationfmt.FormatClock(0))
	assert.Equal(t, "01:01:01", durationfmt.FormatClock(3661))
	assert.Equal(t, "00:00:00", durationfmt.FormatClock(-1))
}
