package mau

import (
	"math/rand"
	"testing"
)

func countCards(cards []Card) map[Card]int {
	counts := make(map[Card]int)
	for _, c := range cards {
		counts[c]++
	}
	return counts
}

func TestClassicComposition(t *testing.T) {
	cards, err := Composition(DeckClassic, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(cards) != 108 {
		t.Fatalf("classic deck has %d cards, want 108", len(cards))
	}
	counts := countCards(cards)
	if got := counts[Card{Kind: KindNumber, Color: ColorRed, Value: 0}]; got != 1 {
		t.Errorf("red zero count = %d, want 1", got)
	}
	if got := counts[Card{Kind: KindNumber, Color: ColorRed, Value: 5}]; got != 2 {
		t.Errorf("red five count = %d, want 2", got)
	}
	if got := counts[Card{Kind: KindSkip, Color: ColorGreen}]; got != 2 {
		t.Errorf("green skip count = %d, want 2", got)
	}
	if got := counts[Card{Kind: KindTakeFour, Color: ColorWild}]; got != 4 {
		t.Errorf("take four count = %d, want 4", got)
	}
	if got := counts[Card{Kind: KindChoose, Color: ColorWild}]; got != 4 {
		t.Errorf("chooser count = %d, want 4", got)
	}
}

func TestSmallComposition(t *testing.T) {
	cards, err := Composition(DeckSmall, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(cards) != 56 {
		t.Fatalf("small deck has %d cards, want 56", len(cards))
	}
}

func TestWildComposition(t *testing.T) {
	cards, err := Composition(DeckWild, nil)
	if err != nil {
		t.Fatal(err)
	}
	counts := countCards(cards)
	if got := counts[Card{Kind: KindTakeFour, Color: ColorWild}]; got != 8 {
		t.Errorf("take four count = %d, want 8", got)
	}
}

func TestCustomComposition(t *testing.T) {
	custom := []Card{{Kind: KindNumber, Color: ColorRed, Value: 1}}
	cards, err := Composition(DeckCustom, custom)
	if err != nil {
		t.Fatal(err)
	}
	if len(cards) != 1 {
		t.Fatalf("custom deck has %d cards, want 1", len(cards))
	}
	if _, err := Composition(DeckCustom, nil); err == nil {
		t.Error("empty custom composition must be rejected")
	}
	if _, err := Composition(DeckPreset("bogus"), nil); err == nil {
		t.Error("unknown preset must be rejected")
	}
}

func TestDeckConservation(t *testing.T) {
	composition, _ := Composition(DeckClassic, nil)
	want := countCards(composition)

	rng := rand.New(rand.NewSource(7))
	d := NewDeck(composition, rng)

	var held []Card
	for i := 0; i < 40; i++ {
		c, err := d.TakeOne()
		if err != nil {
			t.Fatal(err)
		}
		if i%3 == 0 {
			d.Put(c)
		} else {
			held = append(held, c)
		}
	}
	for _, c := range held[:10] {
		d.PutUnder(c)
	}
	held = held[10:]

	got := countCards(append(d.Cards(), held...))
	if len(got) != len(want) {
		t.Fatalf("card identity count changed: got %d, want %d", len(got), len(want))
	}
	for card, n := range want {
		if got[card] != n {
			t.Errorf("card %s count = %d, want %d", card, got[card], n)
		}
	}
}

func TestDeckReshuffleKeepsTop(t *testing.T) {
	composition, _ := Composition(DeckSmall, nil)
	rng := rand.New(rand.NewSource(3))
	d := NewDeck(composition, rng)

	// Move everything except one card to the discard pile.
	for d.DrawCount() > 0 {
		c, err := d.TakeOne()
		if err != nil {
			t.Fatal(err)
		}
		d.Put(c)
	}
	top, _ := d.Top()
	before := d.DiscardCount()

	if _, err := d.TakeOne(); err != nil {
		t.Fatalf("draw after reshuffle: %v", err)
	}
	if newTop, _ := d.Top(); newTop != top {
		t.Errorf("top changed across reshuffle: got %s, want %s", newTop, top)
	}
	if d.DiscardCount() != 1 {
		t.Errorf("discard count after reshuffle = %d, want 1", d.DiscardCount())
	}
	if d.DrawCount() != before-1-1 {
		t.Errorf("draw count after reshuffle = %d, want %d", d.DrawCount(), before-2)
	}
}

func TestDeckTakeAtomic(t *testing.T) {
	composition := []Card{
		{Kind: KindNumber, Color: ColorRed, Value: 1},
		{Kind: KindNumber, Color: ColorRed, Value: 2},
		{Kind: KindNumber, Color: ColorRed, Value: 3},
	}
	rng := rand.New(rand.NewSource(1))
	d := NewDeck(composition, rng)

	if _, err := d.Take(5); err != ErrDeckEmpty {
		t.Fatalf("oversized take: got %v, want ErrDeckEmpty", err)
	}
	if d.DrawCount() != 3 {
		t.Errorf("failed take consumed cards: draw count %d, want 3", d.DrawCount())
	}
	cards, err := d.Take(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(cards) != 3 {
		t.Fatalf("got %d cards, want 3", len(cards))
	}
	if _, err := d.TakeOne(); err != ErrDeckEmpty {
		t.Errorf("empty deck draw: got %v, want ErrDeckEmpty", err)
	}
}

func TestPaintTop(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	d := NewDeck([]Card{{Kind: KindNumber, Color: ColorRed, Value: 1}}, rng)
	c, _ := d.TakeOne()
	d.Put(c)
	d.Put(Card{Kind: KindChoose, Color: ColorWild})
	d.PaintTop(ColorGreen)
	top, ok := d.Top()
	if !ok {
		t.Fatal("no top card")
	}
	if top.Color != ColorGreen || top.Kind != KindChoose {
		t.Errorf("painted top = %s, want gc", top)
	}
}

func TestCountUntilCover(t *testing.T) {
	g := &Game{rules: NewRules()}
	d := &Deck{rng: rand.New(rand.NewSource(1))}
	g.deck = d
	d.Put(Card{Kind: KindNumber, Color: ColorRed, Value: 5})

	// Draw order is from the end of the slice.
	d.draw = []Card{
		{Kind: KindNumber, Color: ColorRed, Value: 1}, // third drawn, covers
		{Kind: KindNumber, Color: ColorBlue, Value: 2},
		{Kind: KindNumber, Color: ColorGreen, Value: 3},
	}
	if got := d.CountUntilCover(g); got != 3 {
		t.Errorf("CountUntilCover = %d, want 3", got)
	}

	d.draw = []Card{
		{Kind: KindNumber, Color: ColorBlue, Value: 2},
		{Kind: KindNumber, Color: ColorGreen, Value: 3},
	}
	if got := d.CountUntilCover(g); got != 2 {
		t.Errorf("no cover in pile: CountUntilCover = %d, want whole pile 2", got)
	}

	d.draw = []Card{{Kind: KindNumber, Color: ColorRed, Value: 9}}
	if got := d.CountUntilCover(g); got != 1 {
		t.Errorf("immediate cover: CountUntilCover = %d, want 1", got)
	}
}
