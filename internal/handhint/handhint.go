// Package handhint implements the optional client-side pre-classifier of
// SPEC_FULL §4.6: given the same multiset of cards a player is about to
// play, it returns the classifier's own two-digit HandType ordinal so a
// client can append it to the command in the later wire revision's
// `<tokens> <2-digit-type-code>` shape. The server never trusts this
// value — it always re-classifies the raw tokens itself — so this package
// exists purely as a convenience for the reference client (C10).
package handhint

import (
	"fmt"
	"strings"

	"landlord/internal/card"
	"landlord/internal/hand"
)

// Annotate parses tokens, classifies them, and returns the command string
// with the two-digit type code appended, matching the later protocol
// revision's wire shape. It returns an error if tokens don't form a
// legal hand shape, since there is no sensible code to attach otherwise.
func Annotate(tokens []string) (string, error) {
	code, err := TypeCode(tokens)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %02d", strings.Join(tokens, " "), code), nil
}

// TypeCode parses tokens and returns the classifier's HandType ordinal,
// the same number the server's own hand.Classify would compute.
func TypeCode(tokens []string) (int, error) {
	cards, err := card.ParseAll(tokens)
	if err != nil {
		return 0, fmt.Errorf("handhint: %w", err)
	}
	h, err := hand.Classify(cards)
	if err != nil {
		return 0, fmt.Errorf("handhint: %w", err)
	}
	return int(h.Type), nil
}
