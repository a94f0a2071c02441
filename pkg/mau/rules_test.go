package mau

import "testing"

func TestRuleDefaults(t *testing.T) {
	r := NewRules()
	if !r.Active(RuleWildColor) {
		t.Error("wild_color must default to active")
	}
	for _, rule := range r.List() {
		if rule.Key != RuleWildColor && rule.Active {
			t.Errorf("rule %s must default to inactive", rule.Key)
		}
	}
	if r.Preset() != DeckClassic {
		t.Errorf("default preset = %s, want classic", r.Preset())
	}
}

func TestRuleSet(t *testing.T) {
	r := NewRules()
	if err := r.Set(RuleShotgun, true); err != nil {
		t.Fatal(err)
	}
	if !r.Active(RuleShotgun) {
		t.Error("shotgun not active after Set")
	}
	if err := r.Set(RuleKey("bogus"), true); err != ErrUnknownRule {
		t.Errorf("unknown rule: got %v, want ErrUnknownRule", err)
	}
	if err := r.SetPreset(DeckPreset("bogus")); err != ErrUnknownRule {
		t.Errorf("unknown preset: got %v, want ErrUnknownRule", err)
	}
}

func TestRuleListOrderStable(t *testing.T) {
	r := NewRules()
	first := r.List()
	r.Set(RuleTwistHand, true)
	second := r.List()
	if len(first) != len(second) {
		t.Fatalf("list length changed: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Key != second[i].Key {
			t.Errorf("rule order changed at %d: %s vs %s", i, first[i].Key, second[i].Key)
		}
	}
}

func TestRuleSnapshotRestore(t *testing.T) {
	r := NewRules()
	r.Set(RuleIntervention, true)
	r.Set(RuleWildColor, false)
	snap := r.Snapshot()

	fresh := NewRules()
	if err := fresh.Restore(snap); err != nil {
		t.Fatal(err)
	}
	if !fresh.Active(RuleIntervention) || fresh.Active(RuleWildColor) {
		t.Error("restored flags do not match snapshot")
	}

	if err := fresh.Restore(map[RuleKey]bool{"bogus": true}); err != ErrUnknownRule {
		t.Errorf("restore with unknown key: got %v, want ErrUnknownRule", err)
	}
	if !fresh.Active(RuleIntervention) {
		t.Error("failed restore must not change flags")
	}
}
