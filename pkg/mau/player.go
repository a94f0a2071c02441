package mau

import "sort"

// User is the adapter-supplied identity a player is created from.
type User struct {
	ID   string
	Name string
}

// Player is one seat in a game. Players are owned by their game: every
// mutation happens under the game lock, and adapters read player state
// through Game methods. The engine itself addresses players by index into
// Game.players, never through back-references.
type Player struct {
	User User

	hand           []Card
	bluffing       bool // held a color match when the last TakeFour was played
	tookCard       bool // consumed on turn transition
	shotgunCurrent int  // per-player chamber, 0..7
	antiCheat      int  // monotonic inline-query revision
}

// SortedCards splits a hand into the cards that cover the current top and
// those that do not.
type SortedCards struct {
	Cover   []Card
	Uncover []Card
}

// HandSize returns the number of cards in hand.
func (p *Player) HandSize() int { return len(p.hand) }

// Hand returns a copy of the hand in stable sorted order.
func (p *Player) Hand() []Card {
	out := make([]Card, len(p.hand))
	copy(out, p.hand)
	sortCards(out)
	return out
}

// HandCost returns the score value of the remaining hand.
func (p *Player) HandCost() int {
	total := 0
	for _, c := range p.hand {
		total += c.Cost()
	}
	return total
}

// TookCard reports whether the player already drew this turn.
func (p *Player) TookCard() bool { return p.tookCard }

// ShotgunCurrent returns the player's chamber counter.
func (p *Player) ShotgunCurrent() int { return p.shotgunCurrent }

// AntiCheat returns the current inline-query revision.
func (p *Player) AntiCheat() int { return p.antiCheat }

// BumpAntiCheat advances and returns the inline-query revision. Adapters call
// it whenever they re-render the hand, so stale query results can be
// rejected.
func (p *Player) BumpAntiCheat() int {
	p.antiCheat++
	return p.antiCheat
}

// addCards appends drawn cards to the hand.
func (p *Player) addCards(cards []Card) {
	p.hand = append(p.hand, cards...)
}

// removeAt pops the card at the given hand index.
func (p *Player) removeAt(index int) (Card, bool) {
	if index < 0 || index >= len(p.hand) {
		return Card{}, false
	}
	card := p.hand[index]
	p.hand = append(p.hand[:index], p.hand[index+1:]...)
	return card, true
}

// holdsColor reports whether the hand contains a non-wild card of the given
// color. This is the bluff predicate for TakeFour challenges.
func (p *Player) holdsColor(color Color) bool {
	for _, c := range p.hand {
		if !c.IsWild() && c.Color == color {
			return true
		}
	}
	return false
}

// mostFrequentColor returns the dominant concrete color of the hand, used by
// the auto_choose_color rule. Ties resolve in declared color order; an empty
// or all-wild hand falls back to a random pick.
func (p *Player) mostFrequentColor(g *Game) Color {
	counts := make(map[Color]int, 4)
	for _, c := range p.hand {
		if !c.IsWild() {
			counts[c.Color]++
		}
	}
	best, bestCount := ColorWild, 0
	for _, color := range chooseableColors {
		if counts[color] > bestCount {
			best, bestCount = color, counts[color]
		}
	}
	if best == ColorWild {
		return chooseableColors[g.rng.Intn(len(chooseableColors))]
	}
	return best
}

// coverCards splits the hand against the current top under the take counter
// and rule set. Side effect: recomputes the bluffing flag as "holds a cover
// card matching the top color", which the challenge mechanism reads when a
// TakeFour lands on top of this split.
func (p *Player) coverCards(g *Game) SortedCards {
	top, ok := g.deck.Top()
	sorted := SortedCards{}
	p.bluffing = false
	if !ok {
		sorted.Uncover = p.Hand()
		return sorted
	}
	if top.Kind == KindTakeFour && g.takeCounter > 0 {
		// Nothing covers a pending +4: the player stacks another TakeFour
		// through CanCover at play time, takes, or challenges.
		for _, c := range p.hand {
			if c.CanCover(top, g) {
				sorted.Cover = append(sorted.Cover, c)
			} else {
				sorted.Uncover = append(sorted.Uncover, c)
			}
		}
	} else {
		for _, c := range p.hand {
			if !c.CanCover(top, g) {
				sorted.Uncover = append(sorted.Uncover, c)
				continue
			}
			sorted.Cover = append(sorted.Cover, c)
			p.bluffing = p.bluffing || (!c.IsWild() && c.Color == top.Color)
		}
	}
	sortCards(sorted.Cover)
	sortCards(sorted.Uncover)
	return sorted
}

// sortCards orders cards by color, kind, value for stable UI rendering.
func sortCards(cards []Card) {
	sort.Slice(cards, func(i, j int) bool {
		a, b := cards[i], cards[j]
		if a.Color != b.Color {
			return a.Color < b.Color
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Value < b.Value
	})
}

// debugHand is the deterministic opening hand dealt under the debug_cards
// rule.
func debugHand() []Card {
	return []Card{
		{Kind: KindTakeFour, Color: ColorWild},
		{Kind: KindTakeFour, Color: ColorWild},
		{Kind: KindTake, Color: ColorRed},
		{Kind: KindTake, Color: ColorYellow},
		{Kind: KindTake, Color: ColorGreen},
		{Kind: KindTake, Color: ColorBlue},
		{Kind: KindNumber, Color: ColorRed, Value: 8},
		{Kind: KindNumber, Color: ColorYellow, Value: 8},
		{Kind: KindNumber, Color: ColorGreen, Value: 8},
		{Kind: KindNumber, Color: ColorBlue, Value: 8},
	}
}
