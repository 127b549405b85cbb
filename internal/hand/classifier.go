package hand

import (
	"fmt"
	"sort"

	"landlord/internal/card"
)

// ErrInvalid is wrapped by every classification failure; callers that need
// to distinguish "not a legal shape" from a malformed token use errors.Is.
var ErrInvalid = fmt.Errorf("hand: not a legal shape")

// counts is the per-classification scratch space built once from the input
// multiset: countOf maps a card's power to how many copies were played,
// byCount maps a cardinality to the sorted list of powers that occur that
// many times — the same two maps the original server keys every rule off.
type counts struct {
	countOf map[int]int
	byCount map[int][]int
	cards   []card.Card
}

func buildCounts(cards []card.Card) counts {
	countOf := make(map[int]int)
	for _, c := range cards {
		countOf[c.Power]++
	}
	byCount := make(map[int][]int)
	for power, n := range countOf {
		byCount[n] = append(byCount[n], power)
	}
	for _, powers := range byCount {
		sort.Ints(powers)
	}
	return counts{countOf: countOf, byCount: byCount, cards: cards}
}

// distinctCounts is how many different cardinalities appear (e.g. a pure
// pair has one: {2: [power]}; a triple-plus-single has two: {3:[x],1:[y]}).
func (c counts) distinctCounts() int {
	return len(c.byCount)
}

// isContinuous reports whether a sorted list of powers forms a run of
// consecutive integers. 2 (power 20) and the jokers (99/100) can never
// satisfy this alongside the 3..A range because of the deliberate power
// gap, so no separate exclusion check is needed.
func isContinuous(powers []int) bool {
	for i := 1; i < len(powers); i++ {
		if powers[i] != powers[i-1]+1 {
			return false
		}
	}
	return true
}

// Classify decides which of the 15 legal shapes the given multiset of
// cards forms, or returns an error wrapping ErrInvalid if none match. The
// checks are tried in the same priority order as the original
// CardOrder.check_card_type dispatch so the documented tie-breaks (notably
// the overlapping airplane interpretations) resolve the same way.
func Classify(cards []card.Card) (Hand, error) {
	if len(cards) == 0 {
		return Hand{}, fmt.Errorf("%w: empty play", ErrInvalid)
	}

	hand := make([]card.Card, len(cards))
	copy(hand, cards)
	card.Sort(hand)
	c := buildCounts(hand)

	type rule struct {
		typ   Type
		check func() (bool, int)
	}
	rules := []rule{
		{Single, c.checkSingle},
		{Pair, c.checkPair},
		{Triple, c.checkTriple},
		{TripleDouble, c.checkTripleDouble},
		{TripleSingle, c.checkTripleSingle},
		{TriplePair, c.checkTriplePair},
		{FourSingle, c.checkFourSingle},
		{FourTwo, c.checkFourTwo},
		{FourTwoPair, c.checkFourTwoPair},
		{Straight, c.checkStraight},
		{StraightPair, c.checkStraightPair},
		{Airplane, c.checkAirplane},
		{AirplaneWithPair, c.checkAirplaneWithPair},
		{Bomb, c.checkBomb},
		{Rocket, c.checkRocket},
	}

	for _, r := range rules {
		if ok, power := r.check(); ok {
			return Hand{Cards: hand, Type: r.typ, Power: power}, nil
		}
	}
	return Hand{}, fmt.Errorf("%w: %d cards do not form a legal hand", ErrInvalid, len(cards))
}

func (c counts) checkSingle() (bool, int) {
	if len(c.cards) != 1 {
		return false, 0
	}
	return true, c.cards[0].Power
}

func (c counts) checkPair() (bool, int) {
	ok := c.distinctCounts() == 1 && len(c.byCount[2]) == 1 && len(c.cards) == 2
	if !ok {
		return false, 0
	}
	return true, c.byCount[2][0]
}

func (c counts) checkTriple() (bool, int) {
	ok := c.distinctCounts() == 1 && len(c.byCount[3]) == 1 && len(c.cards) == 3
	if !ok {
		return false, 0
	}
	return true, c.byCount[3][0]
}

// checkTripleDouble is "双三张": exactly two distinct triples, nothing else.
// Adjacency is not required — that is what separates it from Airplane.
func (c counts) checkTripleDouble() (bool, int) {
	ok := c.distinctCounts() == 1 && len(c.byCount[3]) == 2
	if !ok {
		return false, 0
	}
	return true, c.byCount[3][0]
}

func (c counts) checkTripleSingle() (bool, int) {
	ok := c.distinctCounts() == 2 && len(c.byCount[3]) == 1 && len(c.byCount[1]) == 1
	if !ok {
		return false, 0
	}
	return true, c.byCount[3][0]
}

func (c counts) checkTriplePair() (bool, int) {
	ok := c.distinctCounts() == 2 && len(c.byCount[3]) == 1 && len(c.byCount[2]) == 1
	if !ok {
		return false, 0
	}
	return true, c.byCount[3][0]
}

func (c counts) checkFourSingle() (bool, int) {
	ok := c.distinctCounts() == 2 && len(c.byCount[4]) == 1 && len(c.byCount[1]) == 1
	if !ok {
		return false, 0
	}
	return true, c.byCount[4][0]
}

// checkFourTwo is "四带二": one quadruple plus exactly two extra cards of
// any shape (two singles, or a pair) — the original checks only the total
// card count, not the extras' own cardinality.
func (c counts) checkFourTwo() (bool, int) {
	ok := len(c.byCount[4]) == 1 && len(c.cards)-4 == 2
	if !ok {
		return false, 0
	}
	return true, c.byCount[4][0]
}

func (c counts) checkFourTwoPair() (bool, int) {
	ok := c.distinctCounts() == 2 && len(c.byCount[4]) == 1 && len(c.byCount[2]) == 2
	if !ok {
		return false, 0
	}
	return true, c.byCount[4][0]
}

func (c counts) checkStraight() (bool, int) {
	ok := c.distinctCounts() == 1 && len(c.byCount[1]) >= 5 && isContinuous(c.byCount[1])
	if !ok {
		return false, 0
	}
	return true, c.byCount[1][0]
}

func (c counts) checkStraightPair() (bool, int) {
	ok := c.distinctCounts() == 1 && len(c.byCount[2]) >= 3 && isContinuous(c.byCount[2])
	if !ok {
		return false, 0
	}
	return true, c.byCount[2][0]
}

// checkAirplane is "飞机": N>=2 consecutive triples with exactly N extra
// cards of any shape; a bare run of three triples with no extra cards
// matches neither reading below. When a play has N>=3 triples and the extra-card
// count is exactly 3 short of matching (one triple's copies were spent as
// three singleton attachments instead), the original falls back to a
// surplus-triple reading: drop the lowest triple if the rest is still
// consecutive, else drop the highest.
func (c counts) checkAirplane() (bool, int) {
	triples := c.byCount[3]
	if len(triples) >= 2 && len(triples) == len(c.cards)-len(triples)*3 && isContinuous(triples) {
		return true, triples[0]
	}
	if len(triples) >= 3 && len(triples)-1 == len(c.cards)-len(triples)*3+3 {
		rest := append([]int(nil), triples...)
		sort.Ints(rest)
		if isContinuous(rest[1:]) {
			return true, rest[1]
		}
		if isContinuous(rest[:len(rest)-1]) {
			return true, rest[0]
		}
	}
	return false, 0
}

// checkAirplaneWithPair is "飞机带对子": N>=2 consecutive triples each
// carrying one attached pair, with the same surplus-triple special case as
// Airplane but for pair attachments (two flights carrying a four-of-a-kind
// split into two pairs).
func (c counts) checkAirplaneWithPair() (bool, int) {
	triples := c.byCount[3]
	if c.distinctCounts() == 2 && len(triples) >= 2 && len(c.byCount[2]) == len(triples) && isContinuous(triples) {
		return true, triples[0]
	}
	if len(triples) >= 2 && len(c.byCount[1]) == 0 && (len(c.cards)-len(triples)*3)%2 == 0 &&
		(len(c.cards)-len(triples)*3)/2 == len(triples) && isContinuous(triples) {
		return true, triples[0]
	}
	return false, 0
}

func (c counts) checkBomb() (bool, int) {
	ok := c.distinctCounts() == 1 && len(c.byCount[4]) == 1 && len(c.cards) == 4
	if !ok {
		return false, 0
	}
	return true, c.byCount[4][0]
}

func (c counts) checkRocket() (bool, int) {
	bigPower, _ := card.Power(card.BigJoker)
	smallPower, _ := card.Power(card.SmallJoker)
	singles := c.byCount[1]
	ok := c.distinctCounts() == 1 && len(singles) == 2 &&
		containsInt(singles, bigPower) && containsInt(singles, smallPower)
	if !ok {
		return false, 0
	}
	return true, bigPower
}

func containsInt(xs []int, want int) bool {
	for _, x := range xs {
		if x == want {
			return true
		}
	}
	return false
}
