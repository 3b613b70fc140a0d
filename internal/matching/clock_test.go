package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockTodayUsesMatchTimezone(t *testing.T) {
	// 23:30 UTC is already the next day in Stockholm (CEST, UTC+2).
	clock := testClock(t, "2025-06-14T23:30:00Z")
	assert.Equal(t, "2025-06-15", clock.Today())

	// 22:30 UTC in winter (CET, UTC+1) is still 23:30 the same day.
	clock = testClock(t, "2025-01-14T22:30:00Z")
	assert.Equal(t, "2025-01-14", clock.Today())
}

func TestClockNextResetIsLocalMidnight(t *testing.T) {
	clock := testClock(t, "2025-06-14T10:00:00Z")
	reset := clock.NextReset()

	loc, err := time.LoadLocation("Europe/Stockholm")
	require.NoError(t, err)
	local := reset.In(loc)
	assert.Equal(t, 0, local.Hour())
	assert.Equal(t, 0, local.Minute())
	assert.Equal(t, "2025-06-15", local.Format("2006-01-02"))
}

func TestClockNextAtUsesMatchTimezoneNotHostZone(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	stockholm, err := time.LoadLocation("Europe/Stockholm")
	require.NoError(t, err)

	// 19:00 in Chicago on June 13 is already 02:00 on June 14 in
	// Stockholm. A midnight run hour must mean Stockholm midnight,
	// 22 hours away, not Chicago midnight in 5 hours.
	now := time.Date(2025, 6, 13, 19, 0, 0, 0, chicago)
	clock, err := NewClockAt("Europe/Stockholm", now)
	require.NoError(t, err)

	next := clock.NextAt(0, 0)
	assert.Equal(t, 22*time.Hour, next.Sub(now))

	local := next.In(stockholm)
	assert.Equal(t, 0, local.Hour())
	assert.Equal(t, "2025-06-15", local.Format("2006-01-02"))
}

func TestClockNextAtLaterSameDay(t *testing.T) {
	// 10:00 in Stockholm; a 21:30 run is still ahead today.
	clock := testClock(t, "2025-06-14T08:00:00Z")

	next := clock.NextAt(21, 30)
	assert.Equal(t, 11*time.Hour+30*time.Minute, next.Sub(clock.Now()))

	// A run hour already past today rolls to tomorrow.
	next = clock.NextAt(2, 0)
	assert.Equal(t, 16*time.Hour, next.Sub(clock.Now()))
}

func TestClockTimeRemainingAcrossDSTSpringForward(t *testing.T) {
	// Europe/Stockholm springs forward on 2025-03-30: 02:00 becomes
	// 03:00, so the day is only 23 absolute hours long.
	clock := testClock(t, "2025-03-29T23:30:00Z")
	// 00:30 local on the 30th; midnight of the 31st is 22.5h away, not 23.5h.
	assert.Equal(t, "2025-03-30", clock.Today())
	assert.Equal(t, "22h 30m", clock.TimeRemaining())
}

func TestClockTimeRemainingAcrossDSTFallBack(t *testing.T) {
	// Fall back on 2025-10-26 gives a 25-hour day.
	clock := testClock(t, "2025-10-25T23:30:00Z")
	// 01:30 CEST on the 26th; 22.5 wall-clock hours to midnight plus
	// the repeated hour.
	assert.Equal(t, "2025-10-26", clock.Today())
	assert.Equal(t, "23h 30m", clock.TimeRemaining())
}

func TestClockDateOf(t *testing.T) {
	clock := testClock(t, "2025-06-14T12:00:00Z")
	instant := time.Date(2025, 12, 31, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-01-01", clock.DateOf(instant))
}

func TestFormatRemaining(t *testing.T) {
	assert.Equal(t, "5h 45m", FormatRemaining(5*time.Hour+45*time.Minute))
	assert.Equal(t, "0h 0m", FormatRemaining(0))
	assert.Equal(t, "0h 0m", FormatRemaining(-time.Minute))
	assert.Equal(t, "0h 59m", FormatRemaining(59*time.Minute+59*time.Second))
	assert.Equal(t, "24h 0m", FormatRemaining(24*time.Hour))
}
