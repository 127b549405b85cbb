// Package hand implements the Landlord hand classifier and comparator: the
// 15 legal hand shapes, their power computation, and the free-play /
// follow-play beat rule.
package hand

// Type is one of the 15 legal hand shapes. The ordinal values match the
// original wire protocol's CARD_ORDER_TYPE enum (1-indexed) so the optional
// client-side two-digit type-code annotation of spec §4.6 lines up with
// Type(n) without a translation table.
type Type int

const (
	Invalid Type = iota
	Single
	Pair
	Triple
	TripleDouble
	TripleSingle
	TriplePair
	FourSingle
	FourTwo
	FourTwoPair
	Straight
	StraightPair
	Airplane
	AirplaneWithPair
	Bomb
	Rocket
)

// lengthSensitive is the set of types where candidate and reference must
// also have matching card counts to compare (spec §4.3).
var lengthSensitive = map[Type]bool{
	Straight:         true,
	StraightPair:     true,
	Airplane:         true,
	AirplaneWithPair: true,
}

func (t Type) String() string {
	switch t {
	case Single:
		return "Single"
	case Pair:
		return "Pair"
	case Triple:
		return "Triple"
	case TripleDouble:
		return "TripleDouble"
	case TripleSingle:
		return "TripleSingle"
	case TriplePair:
		return "TriplePair"
	case FourSingle:
		return "FourSingle"
	case FourTwo:
		return "FourTwo"
	case FourTwoPair:
		return "FourTwoPair"
	case Straight:
		return "Straight"
	case StraightPair:
		return "StraightPair"
	case Airplane:
		return "Airplane"
	case AirplaneWithPair:
		return "AirplaneWithPair"
	case Bomb:
		return "Bomb"
	case Rocket:
		return "Rocket"
	default:
		return "Invalid"
	}
}
