package split

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindow(t *testing.T) {
	// A Wednesday, mid-afternoon.
	now := time.Date(2025, 3, 19, 15, 4, 5, 0, time.UTC)

	tests := []struct {
		unit     Unit
		wantFrom time.Time
		wantTo   time.Time
	}{
		{
			UnitDay,
			time.Date(2025, 3, 19, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond),
		},
		{
			UnitWeek,
			time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC), // Monday
			time.Date(2025, 3, 24, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond),
		},
		{
			UnitMonth,
			time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond),
		},
		{
			UnitYear,
			time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond),
		},
	}
	for _, tt := range tests {
		from, to, err := Window(now, tt.unit)
		require.NoError(t, err, "unit %s", tt.unit)
		assert.True(t, from.Equal(tt.wantFrom), "unit %s: from = %s, want %s", tt.unit, from, tt.wantFrom)
		assert.True(t, to.Equal(tt.wantTo), "unit %s: to = %s, want %s", tt.unit, to, tt.wantTo)
	}
}

func TestWindow_SundayBelongsToPreviousMonday(t *testing.T) {
	sunday := time.Date(2025, 3, 23, 8, 0, 0, 0, time.UTC)
	from, _, err := Window(sunday, UnitWeek)
	require.NoError(t, err)
	assert.True(t, from.Equal(time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)))
}

func TestWindow_UnknownUnit(t *testing.T) {
	_, _, err := Window(time.Now(), Unit("fortnight"))
	assert.Error(t, err)
}
