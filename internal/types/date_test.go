package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var est = time.FixedZone("EST", -5*60*60)

func TestNextFriday(t *testing.T) {
	tests := []struct {
		name string
		ref  time.Time
		want time.Time
	}{
		{
			name: "tuesday rolls to same week friday",
			ref:  time.Date(2026, time.February, 24, 10, 30, 0, 0, time.UTC),
			want: time.Date(2026, time.February, 27, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "friday rolls a full week",
			ref:  time.Date(2026, time.February, 27, 0, 0, 0, 0, time.UTC),
			want: time.Date(2026, time.March, 6, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "friday late in the day still rolls a full week",
			ref:  time.Date(2026, time.February, 27, 23, 59, 59, 0, time.UTC),
			want: time.Date(2026, time.March, 6, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "saturday",
			ref:  time.Date(2026, time.February, 28, 8, 0, 0, 0, time.UTC),
			want: time.Date(2026, time.March, 6, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "thursday",
			ref:  time.Date(2026, time.February, 26, 23, 0, 0, 0, time.UTC),
			want: time.Date(2026, time.February, 27, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "keeps location",
			ref:  time.Date(2026, time.February, 24, 10, 0, 0, 0, est),
			want: time.Date(2026, time.February, 27, 0, 0, 0, 0, est),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextFriday(tt.ref)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
			assert.Equal(t, time.Friday, got.Weekday())
			assert.True(t, got.After(tt.ref))
		})
	}
}

func TestNextFridayEOM(t *testing.T) {
	tests := []struct {
		name string
		ref  time.Time
		want time.Time
	}{
		{
			name: "early in month",
			ref:  time.Date(2026, time.February, 10, 12, 0, 0, 0, time.UTC),
			want: time.Date(2026, time.February, 27, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "on the last friday",
			ref:  time.Date(2026, time.February, 27, 15, 0, 0, 0, time.UTC),
			want: time.Date(2026, time.February, 27, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "after the last friday rolls to next month",
			ref:  time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC),
			want: time.Date(2026, time.March, 27, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "year boundary",
			ref:  time.Date(2025, time.December, 30, 0, 0, 0, 0, time.UTC),
			want: time.Date(2026, time.January, 30, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextFridayEOM(tt.ref)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
			assert.Equal(t, time.Friday, got.Weekday())
		})
	}
}

func TestAddClampedDate(t *testing.T) {
	tests := []struct {
		name   string
		start  time.Time
		months int
		want   time.Time
	}{
		{
			name:   "mid month",
			start:  time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC),
			months: 1,
			want:   time.Date(2026, time.April, 15, 9, 0, 0, 0, time.UTC),
		},
		{
			name:   "clamps to leap february",
			start:  time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC),
			months: 1,
			want:   time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "clamps to non leap february",
			start:  time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC),
			months: 1,
			want:   time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "year rollover",
			start:  time.Date(2025, time.December, 20, 0, 0, 0, 0, time.UTC),
			months: 1,
			want:   time.Date(2026, time.January, 20, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AddClampedDate(tt.start, 0, tt.months, 0)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestDaysBetween(t *testing.T) {
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysBetween(start, start))
	assert.Equal(t, 0, DaysBetween(start, start.Add(23*time.Hour)))
	assert.Equal(t, 30, DaysBetween(start, start.Add(30*24*time.Hour+23*time.Hour)))
	assert.Equal(t, 0, DaysBetween(start, start.Add(-72*time.Hour)))
}
