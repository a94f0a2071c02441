package mau

import "math/rand"

// Deck holds the two ordered piles of a game: the face-down draw pile and the
// face-up discard pile whose last card is the current top. The multiset union
// of draw pile, discard pile and every hand always equals the configured
// composition.
type Deck struct {
	draw    []Card // drawn from the end
	discard []Card // top is the last element
	rng     *rand.Rand
}

// NewDeck creates a deck from the given composition and shuffles the draw
// pile with the injected RNG. Tests pass a seeded source for determinism.
func NewDeck(cards []Card, rng *rand.Rand) *Deck {
	d := &Deck{
		draw:    make([]Card, len(cards)),
		discard: make([]Card, 0, 8),
		rng:     rng,
	}
	copy(d.draw, cards)
	d.Shuffle()
	return d
}

// Shuffle randomizes the order of the draw pile.
func (d *Deck) Shuffle() {
	d.rng.Shuffle(len(d.draw), func(i, j int) {
		d.draw[i], d.draw[j] = d.draw[j], d.draw[i]
	})
}

// reshuffle folds the discard pile, minus its top, back into the draw pile.
// Triggered lazily when a draw cannot be satisfied.
func (d *Deck) reshuffle() {
	if len(d.discard) < 2 {
		return
	}
	top := d.discard[len(d.discard)-1]
	d.draw = append(d.draw, d.discard[:len(d.discard)-1]...)
	d.discard = append(d.discard[:0], top)
	d.Shuffle()
}

// Take removes and returns n cards from the draw pile. The call is atomic:
// when even a reshuffle from the discard cannot produce n cards it fails with
// ErrDeckEmpty and consumes nothing.
func (d *Deck) Take(n int) ([]Card, error) {
	if len(d.draw) < n {
		d.reshuffle()
	}
	if len(d.draw) < n {
		return nil, ErrDeckEmpty
	}
	cards := make([]Card, n)
	for i := 0; i < n; i++ {
		cards[i] = d.draw[len(d.draw)-1]
		d.draw = d.draw[:len(d.draw)-1]
	}
	return cards, nil
}

// TakeOne draws a single card.
func (d *Deck) TakeOne() (Card, error) {
	cards, err := d.Take(1)
	if err != nil {
		return Card{}, err
	}
	return cards[0], nil
}

// Put places a card face-up on top of the discard pile.
func (d *Deck) Put(c Card) {
	d.discard = append(d.discard, c)
}

// PutUnder slides a card under the discard pile without disturbing the top.
// Used when a leaving player's hand is returned to the game.
func (d *Deck) PutUnder(c Card) {
	d.discard = append([]Card{c}, d.discard...)
}

// putBottomDraw returns a card to the bottom of the draw pile. Used while
// searching for a number card to open the game with.
func (d *Deck) putBottomDraw(c Card) {
	d.draw = append([]Card{c}, d.draw...)
}

// Top returns the current top card of the discard pile.
func (d *Deck) Top() (Card, bool) {
	if len(d.discard) == 0 {
		return Card{}, false
	}
	return d.discard[len(d.discard)-1], true
}

// PaintTop recolors the top card. Only meaningful for wild cards after a
// color has been chosen.
func (d *Deck) PaintTop(color Color) {
	if len(d.discard) == 0 {
		return
	}
	d.discard[len(d.discard)-1].Color = color
}

// CountUntilCover scans the draw pile from the next drawn card until one that
// covers the current top is seen, and returns the count including that card.
// When nothing in the pile covers, the whole pile is the count. Drives the
// take_until_cover rule.
func (d *Deck) CountUntilCover(g *Game) int {
	top, ok := d.Top()
	if !ok {
		return 1
	}
	for i := 0; i < len(d.draw); i++ {
		c := d.draw[len(d.draw)-1-i]
		if c.CanCover(top, g) {
			return i + 1
		}
	}
	return len(d.draw)
}

// DrawCount returns the number of cards left in the draw pile.
func (d *Deck) DrawCount() int { return len(d.draw) }

// DiscardCount returns the number of cards in the discard pile.
func (d *Deck) DiscardCount() int { return len(d.discard) }

// Cards returns a copy of every card in the deck, draw pile first. Used by
// conservation checks in tests.
func (d *Deck) Cards() []Card {
	out := make([]Card, 0, len(d.draw)+len(d.discard))
	out = append(out, d.draw...)
	out = append(out, d.discard...)
	return out
}
