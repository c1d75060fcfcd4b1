package model

import "time"

// Hotel represents a hotel listing persisted in the flat-file store.
// OperatorID references the user that created the listing.
type Hotel struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Location     string        `json:"location"`
	Price        float64       `json:"price"`
	Availability bool          `json:"availability"`
	OperatorID   string        `json:"operator"`
	Details      *HotelDetails `json:"details,omitempty"`
}

// HotelDetails holds optional descriptive attributes of a listing.
type HotelDetails struct {
	Amenities   []string   `json:"amenities,omitempty"`
	CheckIn     *time.Time `json:"checkIn,omitempty"`
	CheckOut    *time.Time `json:"checkOut,omitempty"`
	Description string     `json:"description,omitempty"`
}

// HotelInput is the request payload for creating or updating a hotel.
// Pointer fields distinguish absent fields from zero values so updates
// merge only what the client supplied.
type HotelInput struct {
	Name         *string       `json:"name"`
	Location     *string       `json:"location"`
	Price        *float64      `json:"price"`
	Availability *bool         `json:"availability"`
	Details      *HotelDetails `json:"details"`
}

// ApplyTo shallow-merges the supplied fields onto an existing hotel.
// Details is replaced as a whole, matching the original shallow-merge
// semantics.
func (in *HotelInput) ApplyTo(h *Hotel) {
	if in.Name != nil {
		h.Name = *in.Name
	}

	if in.Location != nil {
		h.Location = *in.Location
	}

	if in.Price != nil {
		h.Price = *in.Price
	}

	if in.Availability != nil {
		h.Availability = *in.Availability
	}

	if in.Details != nil {
		h.Details = in.Details
	}
}
