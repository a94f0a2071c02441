package mau

import "fmt"

// Color represents a card color. Wild cards are created with ColorWild and
// are painted with a concrete color once one is chosen.
type Color byte

const (
	ColorRed Color = iota
	ColorYellow
	ColorGreen
	ColorBlue
	ColorWild
)

// chooseableColors are the colors a player may pick after a wild.
var chooseableColors = []Color{ColorRed, ColorYellow, ColorGreen, ColorBlue}

// String returns the compact one-letter color code used in card identity
// strings.
func (c Color) String() string {
	switch c {
	case ColorRed:
		return "r"
	case ColorYellow:
		return "y"
	case ColorGreen:
		return "g"
	case ColorBlue:
		return "b"
	case ColorWild:
		return "w"
	default:
		return "?"
	}
}

// parseColor converts a one-letter color code back to a Color.
func parseColor(b byte) (Color, bool) {
	switch b {
	case 'r':
		return ColorRed, true
	case 'y':
		return ColorYellow, true
	case 'g':
		return ColorGreen, true
	case 'b':
		return ColorBlue, true
	case 'w':
		return ColorWild, true
	default:
		return 0, false
	}
}

// Kind represents a card kind. The set is closed: card behaviour is
// dispatched through the behaviors table, one entry per kind.
type Kind byte

const (
	// KindNumber is a plain number card, value 0..9.
	KindNumber Kind = iota
	// KindSkip skips the next player.
	KindSkip
	// KindTurn reverses the play direction.
	KindTurn
	// KindTake forces the next player to draw two unless covered.
	KindTake
	// KindChoose is the wild color chooser.
	KindChoose
	// KindTakeFour is the wild +4; playing it while holding a color match is
	// a bluff and may be challenged.
	KindTakeFour
)

// String returns the compact one-letter kind code used in card identity
// strings.
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "n"
	case KindSkip:
		return "s"
	case KindTurn:
		return "r"
	case KindTake:
		return "t"
	case KindChoose:
		return "c"
	case KindTakeFour:
		return "f"
	default:
		return "?"
	}
}

// parseKind converts a one-letter kind code back to a Kind.
func parseKind(b byte) (Kind, bool) {
	switch b {
	case 'n':
		return KindNumber, true
	case 's':
		return KindSkip, true
	case 'r':
		return KindTurn, true
	case 't':
		return KindTake, true
	case 'c':
		return KindChoose, true
	case 'f':
		return KindTakeFour, true
	default:
		return 0, false
	}
}

// Card is a single game card. Cards are plain values; a wild card's Color
// changes when the chooser paints it.
type Card struct {
	Kind  Kind
	Color Color
	Value int // meaningful for KindNumber only
}

// Cost returns the score value of the card: numbers count their face value,
// action cards 20, wilds 50.
func (c Card) Cost() int {
	switch c.Kind {
	case KindNumber:
		return c.Value
	case KindSkip, KindTurn, KindTake:
		return 20
	default:
		return 50
	}
}

// IsWild reports whether the card is one of the wild kinds, regardless of the
// color it is currently painted with.
func (c Card) IsWild() bool {
	return c.Kind == KindChoose || c.Kind == KindTakeFour
}

// String returns the stable compact identity of the card: color code, kind
// code and, for numbers, the face value. Examples: "rn7", "gs", "wf", "bc".
func (c Card) String() string {
	if c.Kind == KindNumber {
		return fmt.Sprintf("%s%s%d", c.Color, c.Kind, c.Value)
	}
	return c.Color.String() + c.Kind.String()
}

// ParseCard parses a compact card identity produced by Card.String.
func ParseCard(s string) (Card, error) {
	if len(s) < 2 {
		return Card{}, fmt.Errorf("mau: bad card id %q", s)
	}
	color, ok := parseColor(s[0])
	if !ok {
		return Card{}, fmt.Errorf("mau: bad card color in %q", s)
	}
	kind, ok := parseKind(s[1])
	if !ok {
		return Card{}, fmt.Errorf("mau: bad card kind in %q", s)
	}
	card := Card{Kind: kind, Color: color}
	if kind == KindNumber {
		if len(s) != 3 || s[2] < '0' || s[2] > '9' {
			return Card{}, fmt.Errorf("mau: bad card value in %q", s)
		}
		card.Value = int(s[2] - '0')
		return card, nil
	}
	if len(s) != 2 {
		return Card{}, fmt.Errorf("mau: bad card id %q", s)
	}
	return card, nil
}

// behavior bundles the two contracts every card kind implements: whether it
// may be placed on the given top card, and the state change it applies when
// played.
type behavior struct {
	canCover func(c, top Card, g *Game) bool
	play     func(g *Game, p *Player, c Card)
}

var behaviors = map[Kind]behavior{
	KindNumber: {
		canCover: func(c, top Card, g *Game) bool {
			return c.Color == top.Color ||
				(top.Kind == KindNumber && top.Value == c.Value)
		},
		play: func(g *Game, p *Player, c Card) {},
	},
	KindSkip: {
		canCover: func(c, top Card, g *Game) bool {
			return c.Color == top.Color || top.Kind == KindSkip
		},
		play: func(g *Game, p *Player, c Card) {
			g.pendingAdvance = 2
		},
	},
	KindTurn: {
		canCover: func(c, top Card, g *Game) bool {
			return c.Color == top.Color || top.Kind == KindTurn
		},
		play: func(g *Game, p *Player, c Card) {
			// With two players a reversal hands the turn straight back, so it
			// is applied as a skip.
			if len(g.players) == 2 {
				g.pendingAdvance = 2
				return
			}
			g.direction = -g.direction
		},
	},
	KindTake: {
		canCover: func(c, top Card, g *Game) bool {
			return c.Color == top.Color || top.Kind == KindTake
		},
		play: func(g *Game, p *Player, c Card) {
			g.takeCounter += 2
		},
	},
	KindChoose: {
		canCover: func(c, top Card, g *Game) bool {
			return true
		},
		play: func(g *Game, p *Player, c Card) {
			g.enterChooseColor(p)
		},
	},
	KindTakeFour: {
		canCover: func(c, top Card, g *Game) bool {
			return true
		},
		play: func(g *Game, p *Player, c Card) {
			g.takeCounter += 4
			g.bluffPlayer = p
			g.enterChooseColor(p)
		},
	},
}

// CanCover reports whether the card may legally be placed on top under the
// current take counter and rule set. A pending counter narrows the choice to
// stacking take cards; the intervention rule forbids answering a Take with a
// TakeFour. Note that a TakeFour is placeable even while its player holds a
// color match: that is the bluff, resolved by a challenge, not here.
func (c Card) CanCover(top Card, g *Game) bool {
	if g != nil && g.takeCounter > 0 {
		switch top.Kind {
		case KindTake:
			if c.Kind == KindTake {
				return true
			}
			return c.Kind == KindTakeFour && !g.rules.Active(RuleIntervention)
		case KindTakeFour:
			return c.Kind == KindTakeFour
		}
		return false
	}
	return behaviors[c.Kind].canCover(c, top, g)
}
