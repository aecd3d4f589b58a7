package stats_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/church-dashboard/internal/models"
	"github.com/magabrotheeeer/church-dashboard/internal/stats"
)

func TestAbsentees(t *testing.T) {
	sunday := time.Date(2024, 6, 9, 10, 0, 0, 0, time.UTC)
	records := []models.AttendanceRecord{
		member("1", sunday, models.SundayService, "A"),
		member("2", sunday.Add(30*time.Minute), models.SundayService, "B"),
		member("3", sunday.Add(time.Hour), models.SundayService, "C"),
		member("4", sunday.Add(6*time.Hour), models.BibleStudy, "A"),
		visitor("5", sunday, models.SundayService),
	}

	got, err := stats.Absentees(records, 10, daysBefore(30), now)
	require.NoError(t, err)
	assert.Equal(t, stats.Absence{
		Services:   2,
		Possible:   20,
		Present:    4,
		Count:      16,
		Percentage: 80,
	}, got)
}

func TestAbsentees_TimeOfDayStripped(t *testing.T) {
	morning := time.Date(2024, 6, 9, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 6, 9, 19, 0, 0, 0, time.UTC)
	records := []models.AttendanceRecord{
		member("1", morning, models.PrayerMeeting, "A"),
		member("2", evening, models.PrayerMeeting, "B"),
	}

	got, err := stats.Absentees(records, 4, daysBefore(30), now)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Services)
	assert.Equal(t, 2, got.Count)
	assert.Equal(t, 50, got.Percentage)
}

func TestAbsentees_DuplicateDoesNotChangeCount(t *testing.T) {
	day := daysBefore(3)
	records := []models.AttendanceRecord{
		member("1", day, models.SundayService, "A"),
		member("2", day, models.SundayService, "B"),
	}
	before, err := stats.Absentees(records, 5, daysBefore(30), now)
	require.NoError(t, err)

	records = append(records, member("3", day, models.SundayService, "A"))
	after, err := stats.Absentees(records, 5, daysBefore(30), now)
	require.NoError(t, err)

	assert.Equal(t, before.Count, after.Count)
	assert.Equal(t, before.Percentage, after.Percentage)
}

func TestAbsentees_ClampedAtZero(t *testing.T) {
	day := daysBefore(3)
	records := []models.AttendanceRecord{
		member("1", day, models.SundayService, "A"),
		member("2", day, models.SundayService, "B"),
		member("3", day, models.SundayService, "C"),
	}

	got, err := stats.Absentees(records, 1, daysBefore(30), now)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Possible)
	assert.Equal(t, 3, got.Present)
	assert.Equal(t, 0, got.Count)
	assert.Equal(t, 0, got.Percentage)
}

func TestAbsentees_NoPossibleAttendances(t *testing.T) {
	tests := []struct {
		name    string
		records []models.AttendanceRecord
		members int
	}{
		{name: "no services held", members: 10},
		{
			name:    "no members",
			records: []models.AttendanceRecord{member("1", daysBefore(1), models.SundayService, "A")},
			members: 0,
		},
		{
			name:    "visitors only",
			records: []models.AttendanceRecord{visitor("1", daysBefore(1), models.SundayService)},
			members: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := stats.Absentees(tt.records, tt.members, daysBefore(30), now)
			require.NoError(t, err)
			assert.Equal(t, 0, got.Possible)
			assert.Equal(t, 0, got.Count)
			assert.Equal(t, 0, got.Percentage)
		})
	}
}

func TestAbsenteeRates_TwoWindows(t *testing.T) {
	records := []models.AttendanceRecord{
		member("1", daysBefore(2), models.SundayService, "A"),
		member("2", daysBefore(35), models.SundayService, "A"),
		member("3", daysBefore(35), models.SundayService, "B"),
	}

	got, err := stats.AbsenteeRates(records, models.MemberCount{CurrentTotal: 4, PreviousTotal: 2}, now)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Current.Count)
	assert.Equal(t, 75, got.Current.Percentage)
	assert.Equal(t, 0, got.Previous.Count)
	assert.Equal(t, 0, got.Previous.Percentage)
}
