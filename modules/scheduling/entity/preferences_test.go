package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TimeOfDay
		wantErr bool
	}{
		{name: "morning", input: "09:00", want: TimeOfDay{Hour: 9}},
		{name: "afternoon", input: "17:30", want: TimeOfDay{Hour: 17, Minute: 30}},
		{name: "midnight", input: "00:00", want: TimeOfDay{}},
		{name: "hour out of range", input: "24:00", wantErr: true},
		{name: "minute out of range", input: "10:60", wantErr: true},
		{name: "garbage", input: "soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeOfDayOn(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	day := time.Date(2024, 1, 15, 23, 45, 0, 0, time.UTC)
	got := TimeOfDay{Hour: 9, Minute: 30}.On(day, loc)

	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, time.January, got.Month())
	assert.Equal(t, 15, got.Day())
	assert.Equal(t, 9, got.Hour())
	assert.Equal(t, 30, got.Minute())
	assert.Equal(t, loc, got.Location())
}

func TestResolveAppliesDefaults(t *testing.T) {
	resolved, appErr := UserPreferences{}.Resolve()
	require.Nil(t, appErr)

	assert.Equal(t, 60, resolved.PreferredDurationMinutes)
	assert.Equal(t, "09:00", resolved.WorkStart.String())
	assert.Equal(t, "17:00", resolved.WorkEnd.String())
	assert.Equal(t, "UTC", resolved.Timezone)
	assert.Equal(t, 8, resolved.MaxMeetingsPerDay)
	assert.Equal(t, "google", resolved.PreferredProvider)
	assert.Equal(t, time.UTC, resolved.Location)
}

func TestResolveKeepsExplicitValues(t *testing.T) {
	prefs := UserPreferences{
		PreferredDurationMinutes: 45,
		WorkStart:                TimeOfDay{Hour: 8},
		WorkEnd:                  TimeOfDay{Hour: 16},
		Timezone:                 "Europe/Berlin",
		BufferMinutes:            0,
		MaxMeetingsPerDay:        3,
		PreferredProvider:        "outlook",
	}

	resolved, appErr := prefs.Resolve()
	require.Nil(t, appErr)

	assert.Equal(t, 45, resolved.PreferredDurationMinutes)
	assert.Equal(t, 0, resolved.BufferMinutes, "explicit zero buffer survives")
	assert.Equal(t, "outlook", resolved.PreferredProvider)
	assert.Equal(t, "Europe/Berlin", resolved.Location.String())
}

func TestResolveRejectsInvertedWorkHours(t *testing.T) {
	prefs := UserPreferences{
		WorkStart: TimeOfDay{Hour: 17},
		WorkEnd:   TimeOfDay{Hour: 9},
	}
	_, appErr := prefs.Resolve()
	require.NotNil(t, appErr)
}

func TestResolveRejectsUnknownTimezone(t *testing.T) {
	_, appErr := UserPreferences{Timezone: "Mars/Olympus"}.Resolve()
	require.NotNil(t, appErr)
}

func TestNewTimeSlot(t *testing.T) {
	start := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

	slot, appErr := NewTimeSlot(start, start.Add(time.Hour))
	require.Nil(t, appErr)
	assert.Equal(t, time.Hour, slot.Duration())

	_, appErr = NewTimeSlot(start, start)
	assert.NotNil(t, appErr)

	_, appErr = NewTimeSlot(start, start.Add(-time.Minute))
	assert.NotNil(t, appErr)
}

func TestBusyIntervalBlocks(t *testing.T) {
	assert.True(t, BusyInterval{Status: StatusScheduled}.Blocks())
	assert.True(t, BusyInterval{Status: StatusCompleted}.Blocks())
	assert.False(t, BusyInterval{Status: StatusCancelled}.Blocks())
}
