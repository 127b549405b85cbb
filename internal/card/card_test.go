package card_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landlord/internal/card"
)

func TestNewRejectsUnknownRank(t *testing.T) {
	_, err := card.New("1", card.Hearts)
	assert.Error(t, err)
}

func TestNewRejectsSuitedJoker(t *testing.T) {
	_, err := card.New(card.BigJoker, card.Spades)
	assert.Error(t, err)
}

func TestPowerOrdering(t *testing.T) {
	two, err := card.New("2", card.Hearts)
	require.NoError(t, err)
	ace, err := card.New("A", card.Spades)
	require.NoError(t, err)
	small := card.MustNew(card.SmallJoker, card.SuitNone)
	big := card.MustNew(card.BigJoker, card.SuitNone)

	assert.True(t, card.Less(ace, two))
	assert.True(t, card.Less(two, small))
	assert.True(t, card.Less(small, big))
}

func TestLessSuitTieBreak(t *testing.T) {
	hearts3 := card.MustNew("3", card.Hearts)
	spades3 := card.MustNew("3", card.Spades)
	assert.True(t, card.Less(hearts3, spades3))
	assert.False(t, card.Less(spades3, hearts3))
}

func TestParseRoundTrip(t *testing.T) {
	for _, token := range []string{"♥3", "♠10", "♣A", "小王", "大王"} {
		c, err := card.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, token, c.String())
	}
}

func TestRemoveAllErrorsOnMissingCard(t *testing.T) {
	hand, err := card.ParseAll([]string{"♥3", "♠3"})
	require.NoError(t, err)
	want, err := card.ParseAll([]string{"♥4"})
	require.NoError(t, err)

	_, err = card.RemoveAll(hand, want)
	assert.Error(t, err)
}

func TestRemoveAllSortsDescending(t *testing.T) {
	hand, err := card.ParseAll([]string{"♥3", "♠3", "♥4", "◆2"})
	require.NoError(t, err)
	take, err := card.ParseAll([]string{"♠3"})
	require.NoError(t, err)

	remaining, err := card.RemoveAll(hand, take)
	require.NoError(t, err)
	require.Len(t, remaining, 3)
	assert.Equal(t, "◆2", remaining[0].String())
	assert.Equal(t, "♥4", remaining[1].String())
	assert.Equal(t, "♥3", remaining[2].String())
}

func TestDeckDealAndKitty(t *testing.T) {
	d := card.NewDeck()
	hands, err := d.Deal(3, card.HandSize)
	require.NoError(t, err)
	require.Len(t, hands, 3)
	for _, h := range hands {
		assert.Len(t, h, card.HandSize)
	}
	kitty := d.Kitty()
	assert.Len(t, kitty, card.KittySize)
	assert.Equal(t, 0, d.Remaining())
}

func TestDeckDealUnderflow(t *testing.T) {
	d := card.NewDeck()
	_, err := d.Deal(3, 30)
	assert.Error(t, err)
}
