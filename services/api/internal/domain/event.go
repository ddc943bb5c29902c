package domain

import (
	"time"

	"github.com/stagepass/ticket-ledger/services/api/internal/money"
)

// EventType classifies the kind of show for search bucketing.
type EventType string

const (
	EventConcert          EventType = "concert"
	EventFestivalDay      EventType = "festival_day"
	EventMeetAndGreet     EventType = "meet_and_greet"
	EventSoundCheck       EventType = "sound_check"
	EventAlbumLaunch      EventType = "album_launch"
	EventAcousticSession  EventType = "acoustic_session"
	EventVirtualConcert   EventType = "virtual_concert"
	EventPrivateEvent     EventType = "private_event"
	EventMasterclass      EventType = "masterclass"
	EventListeningParty   EventType = "listening_party"
	EventUnpluggedSession EventType = "unplugged_session"
	EventCharityBenefit   EventType = "charity_benefit"
	EventTributeConcert   EventType = "tribute_concert"
	EventResidencyShow    EventType = "residency_show"
	EventPopupPerformance EventType = "popup_performance"
)

// ParseEventType validates an event type received over the wire.
func ParseEventType(s string) (EventType, error) {
	switch EventType(s) {
	case EventConcert, EventFestivalDay, EventMeetAndGreet, EventSoundCheck,
		EventAlbumLaunch, EventAcousticSession, EventVirtualConcert,
		EventPrivateEvent, EventMasterclass, EventListeningParty,
		EventUnpluggedSession, EventCharityBenefit, EventTributeConcert,
		EventResidencyShow, EventPopupPerformance:
		return EventType(s), nil
	}
	return "", ErrInvalidEventType
}

// Event is a sellable show. The schedule, capacity and price fields are
// immutable after creation; SoldTickets, RevenueGenerated and Active mutate
// as tickets sell.
//
// Schedule invariant: Date ≤ DoorsOpen < ShowStart < EstimatedEnd.
type Event struct {
	ID                uint32
	Name              string
	ArtistID          uint32
	VenueID           uint32
	SupportingArtists []uint32
	Type              EventType
	Date              time.Time
	DoorsOpen         time.Time
	ShowStart         time.Time
	EstimatedEnd      time.Time
	Capacity          uint32
	SoldTickets       uint32
	BasePrice         money.Amount
	PurchaseCap       uint32 // 0 means the platform default applies
	DynamicPricing    bool
	Active            bool
	RevenueGenerated  money.Amount
	CreatedAt         time.Time
	LastUpdated       time.Time
}

// ValidSchedule reports whether the event's time ordering invariant holds.
func (e Event) ValidSchedule() bool {
	return !e.Date.After(e.DoorsOpen) &&
		e.DoorsOpen.Before(e.ShowStart) &&
		e.ShowStart.Before(e.EstimatedEnd)
}
