package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeIgnoresHostZone(t *testing.T) {
	t.Parallel()

	utc := time.Date(2024, 3, 10, 9, 0, 30, 0, time.UTC)
	tokyo := utc.In(time.FixedZone("JST", 9*60*60))

	for _, instant := range []time.Time{utc, tokyo} {
		now := Normalize(instant)
		assert.Equal(t, "2024-03-10", now.Date)
		assert.Equal(t, "14:00", now.Time)
		assert.Equal(t, "2024-03-10 14:00", now.DateTime())
	}
}

func TestNormalizeCrossesMidnight(t *testing.T) {
	t.Parallel()

	now := Normalize(time.Date(2024, 3, 10, 20, 15, 0, 0, time.UTC))
	assert.Equal(t, "2024-03-11", now.Date)
	assert.Equal(t, "01:15", now.Time)
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, Zone), now.StartOfDay())
}

func TestParseAndFormat(t *testing.T) {
	t.Parallel()

	parsed, err := Parse("2024-03-11 09:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-11 04:00", parsed.UTC().Format(DateTimeLayout))
	assert.Equal(t, "2024-03-11 09:00", Format(parsed.UTC()))

	_, err = Parse("2024-03-11T09:00")
	assert.Error(t, err)
}
