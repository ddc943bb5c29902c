package domain

// SeatType classifies the kind of seat a ticket grants.
type SeatType string

const (
	SeatGeneralAdmission SeatType = "general_admission"
	SeatReserved         SeatType = "reserved"
	SeatPremiumReserved  SeatType = "premium_reserved"
	SeatVIP              SeatType = "vip"
	SeatFrontRow         SeatType = "front_row"
	SeatBalcony          SeatType = "balcony"
	SeatFloor            SeatType = "floor"
	SeatBox              SeatType = "box"
	SeatStandingRoom     SeatType = "standing_room"
	SeatAccessible       SeatType = "accessible"
)

// ParseSeatType validates a seat type received over the wire.
func ParseSeatType(s string) (SeatType, error) {
	switch SeatType(s) {
	case SeatGeneralAdmission, SeatReserved, SeatPremiumReserved, SeatVIP,
		SeatFrontRow, SeatBalcony, SeatFloor, SeatBox, SeatStandingRoom,
		SeatAccessible:
		return SeatType(s), nil
	}
	return "", ErrInvalidSeatType
}

// AccessLevel is the venue access a ticket grants, derived from the seat type.
type AccessLevel string

const (
	AccessStandard  AccessLevel = "standard"
	AccessPremium   AccessLevel = "premium"
	AccessVIP       AccessLevel = "vip"
	AccessAllAccess AccessLevel = "all_access"
)
