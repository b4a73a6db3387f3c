package services

import (
	"testing"
	"time"
)

func TestCalendarService_IsBusinessDay(t *testing.T) {
	svc := NewCalendarService()

	tests := []struct {
		date    time.Time
		country string
		want    bool
	}{
		// 2024-03-01 is a Friday, 2024-03-02 a Saturday.
		{time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "US", true},
		{time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), "US", false},
		{time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), "US", false},
		// Independence Day 2024 falls on a Thursday.
		{time.Date(2024, 7, 4, 0, 0, 0, 0, time.UTC), "US", false},
		{time.Date(2024, 7, 4, 0, 0, 0, 0, time.UTC), "DE", true},
		// Christmas is a holiday in every supported calendar.
		{time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC), "GB", false},
		{time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC), "JP", true},
	}
	for _, tt := range tests {
		if got := svc.IsBusinessDay(tt.date, tt.country); got != tt.want {
			t.Errorf("IsBusinessDay(%s, %s) = %v, expected %v",
				tt.date.Format("2006-01-02"), tt.country, got, tt.want)
		}
	}
}

func TestCalendarService_UnknownCountryFallsBackToWeekdays(t *testing.T) {
	svc := NewCalendarService()

	friday := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	saturday := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	if !svc.IsBusinessDay(friday, "XX") {
		t.Error("weekday should be a business day for unknown country")
	}
	if svc.IsBusinessDay(saturday, "XX") {
		t.Error("weekend should not be a business day for unknown country")
	}
}

func TestCalendarService_SupportedCountries(t *testing.T) {
	svc := NewCalendarService()
	countries := svc.SupportedCountries()

	if len(countries) != 10 {
		t.Errorf("got %d countries, expected 10", len(countries))
	}
	found := map[string]bool{}
	for _, c := range countries {
		found[c] = true
	}
	for _, want := range []string{"US", "GB", "DE", "JP"} {
		if !found[want] {
			t.Errorf("country %s missing", want)
		}
	}
}
