package mau

// RuleKey names a rule variant. Keys are stable strings used for settings
// persistence and UI rendering.
type RuleKey string

const (
	// RuleWildColor gates the choose-color window after a wild. Off, a played
	// wild keeps the previous top color.
	RuleWildColor RuleKey = "wild_color"
	// RuleRandomColor picks the color after a wild uniformly at random.
	RuleRandomColor RuleKey = "random_color"
	// RuleAutoChooseColor picks the most frequent color in the player's hand.
	RuleAutoChooseColor RuleKey = "auto_choose_color"
	// RuleChooseRandomColor pre-selects a random color but leaves the window
	// open for the player to override.
	RuleChooseRandomColor RuleKey = "choose_random_color"
	// RuleRotateCards rotates all hands by one seat when a zero is played.
	RuleRotateCards RuleKey = "rotate_cards"
	// RuleTwistHand lets the player of a seven swap hands with a chosen target.
	RuleTwistHand RuleKey = "twist_hand"
	// RuleShotgun offers a per-player russian-roulette opt-out of forced draws.
	RuleShotgun RuleKey = "shotgun"
	// RuleSingleShotgun is the shared-chamber shotgun variant.
	RuleSingleShotgun RuleKey = "single_shotgun"
	// RuleIntervention restricts covering a Take to another Take.
	RuleIntervention RuleKey = "intervention"
	// RuleAheadOfCurve lets any player absorb the take counter for the
	// current one.
	RuleAheadOfCurve RuleKey = "ahead_of_curve"
	// RuleTakeUntilCover makes drawing take until a coverable card appears.
	RuleTakeUntilCover RuleKey = "take_until_cover"
	// RuleDebugCards deals a fixed opening hand, for tests.
	RuleDebugCards RuleKey = "debug_cards"
)

// ruleOrder is the stable declared order rules iterate in for UI rendering.
var ruleOrder = []RuleKey{
	RuleWildColor,
	RuleRandomColor,
	RuleAutoChooseColor,
	RuleChooseRandomColor,
	RuleRotateCards,
	RuleTwistHand,
	RuleShotgun,
	RuleSingleShotgun,
	RuleIntervention,
	RuleAheadOfCurve,
	RuleTakeUntilCover,
	RuleDebugCards,
}

// Rule is one settings entry, a key with its activation flag.
type Rule struct {
	Key    RuleKey
	Active bool
}

// Rules holds the variant matrix of one game: the boolean flags plus the
// deck_preset enum payload. Rules are settable before start; mid-game toggles
// take effect at the next transition that consults the flag.
type Rules struct {
	active map[RuleKey]bool
	preset DeckPreset
}

// NewRules returns the default rule set: wild_color active, everything else
// inactive, classic deck.
func NewRules() *Rules {
	return &Rules{
		active: map[RuleKey]bool{RuleWildColor: true},
		preset: DeckClassic,
	}
}

// Active reports whether a rule is on.
func (r *Rules) Active(key RuleKey) bool {
	return r.active[key]
}

// Set toggles a rule. Unknown keys are rejected.
func (r *Rules) Set(key RuleKey, active bool) error {
	if !knownRule(key) {
		return ErrUnknownRule
	}
	r.active[key] = active
	return nil
}

// Preset returns the selected deck composition preset.
func (r *Rules) Preset() DeckPreset { return r.preset }

// SetPreset selects the deck composition preset.
func (r *Rules) SetPreset(p DeckPreset) error {
	switch p {
	case DeckClassic, DeckSmall, DeckWild, DeckCustom:
		r.preset = p
		return nil
	default:
		return ErrUnknownRule
	}
}

// List returns every rule in the stable declared order.
func (r *Rules) List() []Rule {
	out := make([]Rule, 0, len(ruleOrder))
	for _, key := range ruleOrder {
		out = append(out, Rule{Key: key, Active: r.active[key]})
	}
	return out
}

// Snapshot exports the flags as a flat key to value map for persistence.
func (r *Rules) Snapshot() map[RuleKey]bool {
	out := make(map[RuleKey]bool, len(r.active))
	for key, active := range r.active {
		out[key] = active
	}
	return out
}

// Restore loads a flat key to value map. Unknown keys are rejected before any
// flag changes; missing keys default to inactive.
func (r *Rules) Restore(flags map[RuleKey]bool) error {
	for key := range flags {
		if !knownRule(key) {
			return ErrUnknownRule
		}
	}
	r.active = make(map[RuleKey]bool, len(flags))
	for key, active := range flags {
		r.active[key] = active
	}
	return nil
}

func knownRule(key RuleKey) bool {
	for _, k := range ruleOrder {
		if k == key {
			return true
		}
	}
	return false
}
