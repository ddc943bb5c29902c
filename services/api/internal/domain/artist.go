package domain

import "time"

// Artist is a performer or team whose events are sold on the marketplace.
// Name and genre are fixed at registration; only the status flags mutate.
type Artist struct {
	ID        uint32
	Name      string
	Genre     string
	HomeCity  string
	Verified  bool
	Active    bool
	CreatedAt time.Time
}

// Performance tracks an artist's or team's season record. The win percentage
// drives the demand multiplier for events with dynamic pricing enabled.
type Performance struct {
	ArtistID      uint32
	Wins          uint32
	Losses        uint32
	WinPercentBps uint32 // 10000 = 100%
	UpdatedAt     time.Time
}
