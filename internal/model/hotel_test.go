package model

import (
	"testing"
	"time"
)

func TestHotelInputApplyTo(t *testing.T) {
	t.Parallel()

	base := Hotel{
		ID:           "1",
		Name:         "Old Name",
		Location:     "Old Town",
		Price:        100,
		Availability: true,
		OperatorID:   "op-1",
	}

	name := "New Name"
	price := 150.0
	avail := false

	tests := []struct {
		name  string
		input HotelInput
		check func(t *testing.T, h Hotel)
	}{
		{
			name:  "empty input changes nothing",
			input: HotelInput{},
			check: func(t *testing.T, h Hotel) {
				if h != base {
					t.Errorf("expected unchanged hotel, got %+v", h)
				}
			},
		},
		{
			name:  "name only",
			input: HotelInput{Name: &name},
			check: func(t *testing.T, h Hotel) {
				if h.Name != "New Name" || h.Location != "Old Town" {
					t.Errorf("unexpected merge result: %+v", h)
				}
			},
		},
		{
			name:  "price and availability",
			input: HotelInput{Price: &price, Availability: &avail},
			check: func(t *testing.T, h Hotel) {
				if h.Price != 150 || h.Availability {
					t.Errorf("unexpected merge result: %+v", h)
				}
			},
		},
		{
			name: "details replaced as a whole",
			input: HotelInput{Details: &HotelDetails{
				Amenities:   []string{"wifi"},
				Description: "nice",
			}},
			check: func(t *testing.T, h Hotel) {
				if h.Details == nil || h.Details.Description != "nice" {
					t.Errorf("expected details replaced, got %+v", h.Details)
				}
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := base
			tt.input.ApplyTo(&h)
			tt.check(t, h)
		})
	}
}

func TestHotelDetailsTimestamps(t *testing.T) {
	t.Parallel()

	checkIn := time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)
	in := HotelInput{Details: &HotelDetails{CheckIn: &checkIn}}

	var h Hotel
	in.ApplyTo(&h)

	if h.Details.CheckIn == nil || !h.Details.CheckIn.Equal(checkIn) {
		t.Errorf("expected check-in %v, got %+v", checkIn, h.Details.CheckIn)
	}
}
