package mau

import "fmt"

// DeckPreset selects the initial deck composition of a game.
type DeckPreset string

const (
	// DeckClassic is the official 108-card distribution.
	DeckClassic DeckPreset = "classic"
	// DeckSmall is a 56-card half deck for short games.
	DeckSmall DeckPreset = "small"
	// DeckWild keeps the classic colored cards but doubles the wilds.
	DeckWild DeckPreset = "wild"
	// DeckCustom uses a caller-supplied composition.
	DeckCustom DeckPreset = "custom"
)

// coloredSet builds the colored part of a deck: per color one zero, perNumber
// copies of 1..9 and perAction copies of each action card.
func coloredSet(perNumber, perAction int) []Card {
	cards := make([]Card, 0, 108)
	for _, color := range chooseableColors {
		cards = append(cards, Card{Kind: KindNumber, Color: color, Value: 0})
		for v := 1; v <= 9; v++ {
			for i := 0; i < perNumber; i++ {
				cards = append(cards, Card{Kind: KindNumber, Color: color, Value: v})
			}
		}
		for i := 0; i < perAction; i++ {
			cards = append(cards,
				Card{Kind: KindSkip, Color: color},
				Card{Kind: KindTurn, Color: color},
				Card{Kind: KindTake, Color: color},
			)
		}
	}
	return cards
}

// wildSet builds n copies each of the two wild kinds.
func wildSet(n int) []Card {
	cards := make([]Card, 0, 2*n)
	for i := 0; i < n; i++ {
		cards = append(cards,
			Card{Kind: KindChoose, Color: ColorWild},
			Card{Kind: KindTakeFour, Color: ColorWild},
		)
	}
	return cards
}

// Composition returns the initial card multiset for a preset. DeckCustom
// takes the caller-supplied cards verbatim.
func Composition(preset DeckPreset, custom []Card) ([]Card, error) {
	switch preset {
	case DeckClassic:
		return append(coloredSet(2, 2), wildSet(4)...), nil
	case DeckSmall:
		return append(coloredSet(1, 1), wildSet(2)...), nil
	case DeckWild:
		return append(coloredSet(2, 2), wildSet(8)...), nil
	case DeckCustom:
		if len(custom) == 0 {
			return nil, fmt.Errorf("mau: custom preset needs cards: %w", ErrDeckEmpty)
		}
		out := make([]Card, len(custom))
		copy(out, custom)
		return out, nil
	default:
		return nil, fmt.Errorf("mau: unknown deck preset %q", preset)
	}
}
