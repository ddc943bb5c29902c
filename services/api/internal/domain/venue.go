package domain

import "time"

// VenueType classifies a venue for search bucketing.
type VenueType string

const (
	VenueArena           VenueType = "arena"
	VenueStadium         VenueType = "stadium"
	VenueTheater         VenueType = "theater"
	VenueClub            VenueType = "club"
	VenueAmphitheater    VenueType = "amphitheater"
	VenueFestivalGrounds VenueType = "festival_grounds"
	VenueConcertHall     VenueType = "concert_hall"
	VenueBallroom        VenueType = "ballroom"
	VenueWarehouse       VenueType = "warehouse"
	VenueOutdoorPark     VenueType = "outdoor_park"
)

// ParseVenueType validates a venue type received over the wire.
func ParseVenueType(s string) (VenueType, error) {
	switch VenueType(s) {
	case VenueArena, VenueStadium, VenueTheater, VenueClub, VenueAmphitheater,
		VenueFestivalGrounds, VenueConcertHall, VenueBallroom, VenueWarehouse,
		VenueOutdoorPark:
		return VenueType(s), nil
	}
	return "", ErrInvalidVenueType
}

// Venue is a place events are held. Identity fields are immutable after
// registration; only the status flags mutate.
type Venue struct {
	ID             uint32
	Name           string
	City           string
	Type           VenueType
	Capacity       uint32
	AcousticRating uint8 // 0-10
	Verified       bool
	Active         bool
	CreatedAt      time.Time
}
