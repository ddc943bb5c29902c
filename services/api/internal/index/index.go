// Package index derives the secondary-index buckets that make catalog
// entities discoverable. The storage layer owns the actual (key, id) lists;
// this package owns the bucket math and the stable ordinal tables.
package index

import (
	"time"

	"github.com/stagepass/ticket-ledger/services/api/internal/domain"
)

// Index names. Each is an independent mapping of key -> ordered id list.
const (
	EventsByArtist = "events_by_artist"
	EventsByVenue  = "events_by_venue"
	EventsByType   = "events_by_type"
	EventsByDate   = "events_by_date"
	VenuesByType   = "venues_by_type"
)

const dayMillis = 86_400_000

// DateBucket folds a timestamp to day granularity (milliseconds / 86_400_000).
func DateBucket(t time.Time) uint64 {
	ms := t.UnixMilli()
	if ms < 0 {
		return 0
	}
	return uint64(ms) / dayMillis
}

// Ordinal tables are versioned by hand: entries are only ever appended, so
// an existing category never silently changes bucket when new ones arrive.
// These replace any derivation from declaration order.
var eventTypeBuckets = map[domain.EventType]uint64{
	domain.EventConcert:          1,
	domain.EventFestivalDay:      2,
	domain.EventMeetAndGreet:     3,
	domain.EventSoundCheck:       4,
	domain.EventAlbumLaunch:      5,
	domain.EventAcousticSession:  6,
	domain.EventVirtualConcert:   7,
	domain.EventPrivateEvent:     8,
	domain.EventMasterclass:      9,
	domain.EventListeningParty:   10,
	domain.EventUnpluggedSession: 11,
	domain.EventCharityBenefit:   12,
	domain.EventTributeConcert:   13,
	domain.EventResidencyShow:    14,
	domain.EventPopupPerformance: 15,
}

var venueTypeBuckets = map[domain.VenueType]uint64{
	domain.VenueArena:           1,
	domain.VenueStadium:         2,
	domain.VenueTheater:         3,
	domain.VenueClub:            4,
	domain.VenueAmphitheater:    5,
	domain.VenueFestivalGrounds: 6,
	domain.VenueConcertHall:     7,
	domain.VenueBallroom:        8,
	domain.VenueWarehouse:       9,
	domain.VenueOutdoorPark:     10,
}

// EventTypeBucket returns the stable bucket key for an event type.
func EventTypeBucket(et domain.EventType) (uint64, error) {
	b, ok := eventTypeBuckets[et]
	if !ok {
		return 0, domain.ErrInvalidEventType
	}
	return b, nil
}

// VenueTypeBucket returns the stable bucket key for a venue type.
func VenueTypeBucket(vt domain.VenueType) (uint64, error) {
	b, ok := venueTypeBuckets[vt]
	if !ok {
		return 0, domain.ErrInvalidVenueType
	}
	return b, nil
}

// Entry names one (index, key) bucket an entity belongs to.
type Entry struct {
	Index string
	Key   uint64
}

// EventEntries lists every bucket a new event must be inserted into. The
// list may contain duplicates (a supporting artist repeated, or equal to the
// headliner); the storage upsert is idempotent, so duplicates collapse.
func EventEntries(e domain.Event) ([]Entry, error) {
	typeKey, err := EventTypeBucket(e.Type)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, 4+len(e.SupportingArtists))
	entries = append(entries,
		Entry{Index: EventsByArtist, Key: uint64(e.ArtistID)},
		Entry{Index: EventsByVenue, Key: uint64(e.VenueID)},
		Entry{Index: EventsByType, Key: typeKey},
		Entry{Index: EventsByDate, Key: DateBucket(e.Date)},
	)
	for _, id := range e.SupportingArtists {
		entries = append(entries, Entry{Index: EventsByArtist, Key: uint64(id)})
	}
	return entries, nil
}
