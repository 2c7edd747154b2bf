package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2025-10-02 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.October, 2, 0, 0, 0, 0, time.UTC), d)
	assert.Equal(t, "2025-10-02", FormatDate(d))

	for _, in := range []string{"", "2025/10/02", "02-10-2025", "2025-02-30", "2025-13-01", "mañana"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseDate(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDate))
		})
	}
}

func TestNightsBetween(t *testing.T) {
	in := time.Date(2025, time.October, 20, 23, 0, 0, 0, time.UTC)
	out := time.Date(2025, time.October, 25, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, 5, NightsBetween(in, out))
}

func TestNightsBetween_LongRange(t *testing.T) {
	in := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	out := time.Date(2400, time.January, 1, 0, 0, 0, 0, time.UTC)
	// 400年のグレゴリオ暦周期は146097日
	assert.Equal(t, 146097, NightsBetween(in, out))
	assert.Equal(t, -146097, NightsBetween(out, in))
}
