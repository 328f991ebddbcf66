package dateutil

import (
	"testing"
	"time"
)

func TestStartOfDay(t *testing.T) {
	input := time.Date(2024, 3, 15, 14, 30, 45, 123456789, time.UTC)
	expected := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	result := StartOfDay(input)

	if !result.Equal(expected) {
		t.Errorf("StartOfDay(%v) = %v, want %v", input, result, expected)
	}
}

func TestIsWeekend(t *testing.T) {
	tests := []struct {
		name  string
		input time.Time
		want  bool
	}{
		{"Saturday is weekend", time.Date(2024, 12, 21, 0, 0, 0, 0, time.UTC), true},
		{"Sunday is weekend", time.Date(2024, 12, 22, 0, 0, 0, 0, time.UTC), true},
		{"Monday is not weekend", time.Date(2024, 12, 23, 0, 0, 0, 0, time.UTC), false},
		{"Friday is not weekend", time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsWeekend(tt.input)

			if result != tt.want {
				t.Errorf("IsWeekend(%v) = %v, want %v",
					tt.input.Format("2006-01-02 Mon"), result, tt.want)
			}
		})
	}
}

func TestIsSameDay(t *testing.T) {
	tests := []struct {
		name  string
		date1 time.Time
		date2 time.Time
		want  bool
	}{
		{
			"Same date different time",
			time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC),
			true,
		},
		{
			"Different date",
			time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 16, 10, 0, 0, 0, time.UTC),
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsSameDay(tt.date1, tt.date2)

			if result != tt.want {
				t.Errorf("IsSameDay(%v, %v) = %v, want %v",
					tt.date1, tt.date2, result, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			"ISO format YYYY-MM-DD",
			"2024-12-23",
			time.Date(2024, 12, 23, 0, 0, 0, 0, time.UTC),
			false,
		},
		{
			"German format DD.MM.YYYY",
			"23.12.2024",
			time.Date(2024, 12, 23, 0, 0, 0, 0, time.UTC),
			false,
		},
		{
			"Garbage input",
			"not-a-date",
			time.Time{},
			true,
		},
		{
			"Empty input",
			"",
			time.Time{},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseDate(tt.input)

			if (err != nil) != tt.wantErr {
				t.Errorf("ParseDate(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}

			if !tt.wantErr && !result.Equal(tt.want) {
				t.Errorf("ParseDate(%v) = %v, want %v", tt.input, result, tt.want)
			}
		})
	}
}

func TestParseClockTime(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"Valid time", "09:30", "09:30", false},
		{"Midnight", "00:00", "00:00", false},
		{"Out of range", "25:00", "", true},
		{"Garbage", "morning", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseClockTime(tt.input)

			if (err != nil) != tt.wantErr {
				t.Errorf("ParseClockTime(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}

			if result != tt.want {
				t.Errorf("ParseClockTime(%v) = %v, want %v", tt.input, result, tt.want)
			}
		})
	}
}
