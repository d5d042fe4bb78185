package normalize

import (
	"math"
	"testing"

	"rugradar/internal/domain"
)

func TestHolders_SortAndPercent(t *testing.T) {
	raw := []RawHolder{
		{Address: "small", Balance: 100},
		{Address: "big", Balance: 500},
		{Address: "mid", Balance: 250},
	}

	set := Holders(raw, 1000, AddressBook{})

	if len(set) != 3 {
		t.Fatalf("expected 3 holders, got %d", len(set))
	}
	if set[0].Address != "big" || set[1].Address != "mid" || set[2].Address != "small" {
		t.Errorf("wrong order: %v", set.Addresses())
	}
	if set[0].Percent != 50 {
		t.Errorf("expected 50%%, got %f", set[0].Percent)
	}
}

func TestHolders_MergeDuplicates(t *testing.T) {
	raw := []RawHolder{
		{Address: "a", Balance: 100},
		{Address: "b", Balance: 150},
		{Address: "a", Balance: 100},
	}

	set := Holders(raw, 1000, AddressBook{})

	if len(set) != 2 {
		t.Fatalf("expected duplicates merged, got %d holders", len(set))
	}
	if set[0].Address != "a" || set[0].Balance != 200 {
		t.Errorf("expected merged holder a=200 first, got %s=%f", set[0].Address, set[0].Balance)
	}
}

func TestHolders_ZeroSupplyCoercesToZero(t *testing.T) {
	raw := []RawHolder{{Address: "a", Balance: 100}}

	for _, supply := range []float64{0, -5, math.NaN()} {
		set := Holders(raw, supply, AddressBook{})
		if set[0].Percent != 0 {
			t.Errorf("supply=%f: expected percent 0, got %f", supply, set[0].Percent)
		}
	}
}

func TestHolders_Classification(t *testing.T) {
	book := AddressBook{
		LP:       map[string]bool{"pool": true},
		Exchange: map[string]bool{"cex": true},
		IsProgramOwned: func(addr string) bool {
			return addr == "pda"
		},
	}
	raw := []RawHolder{
		{Address: "pool", Balance: 400},
		{Address: "cex", Balance: 300},
		{Address: "pda", Balance: 200},
		{Address: "user", Balance: 100},
	}

	set := Holders(raw, 1000, book)

	qualifying := set.Qualifying()
	if len(qualifying) != 1 || qualifying[0].Address != "user" {
		t.Errorf("expected only user to qualify, got %v", qualifying.Addresses())
	}
}

func TestApplyBundleHints(t *testing.T) {
	set := domain.HolderSet{
		{Address: "a"},
		{Address: "b"},
	}

	ApplyBundleHints(set, map[string]bool{"b": true})
	if set[0].IsBundled || !set[1].IsBundled {
		t.Errorf("bundle hints misapplied: %+v", set)
	}

	// Nil hints leave the set untouched (unknown, not clean).
	ApplyBundleHints(set, nil)
	if !set[1].IsBundled {
		t.Error("nil hints must not clear existing flags")
	}
}

func TestMergeSocial_PriorityOrder(t *testing.T) {
	site := "https://example.com"
	tg := "https://t.me/example"
	emptyStr := ""

	primary := domain.SocialLinks{Website: &site}
	secondary := domain.SocialLinks{Website: &emptyStr, Telegram: &tg}

	merged := MergeSocial(primary, secondary)

	if merged.Website == nil || *merged.Website != site {
		t.Error("later empty source overwrote found website")
	}
	if merged.Telegram == nil || *merged.Telegram != tg {
		t.Error("telegram from fallback source not picked up")
	}
	if merged.Twitter != nil {
		t.Error("twitter should remain absent")
	}
}
