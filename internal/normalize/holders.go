package normalize

import (
	"math"
	"sort"

	"rugradar/internal/domain"
)

// RawHolder is one entry of an upstream holder list before normalization.
type RawHolder struct {
	Address string
	Balance float64
}

// AddressBook classifies known addresses so pool and custodial accounts
// can be excluded from concentration math.
type AddressBook struct {
	LP       map[string]bool // liquidity pool accounts
	Exchange map[string]bool // recognized exchange/custodial wallets
	Protocol map[string]bool // bonding curves, vaults, program accounts

	// IsProgramOwned reports whether the address is program-derived
	// (off the ed25519 curve) or held by a program. Nil disables the
	// check.
	IsProgramOwned func(address string) bool
}

// Classify returns the boolean tags for an address.
func (b AddressBook) Classify(address string) (isLP, isExchange, isProtocol bool) {
	isLP = b.LP[address]
	isExchange = b.Exchange[address]
	isProtocol = b.Protocol[address]
	if !isProtocol && b.IsProgramOwned != nil && b.IsProgramOwned(address) {
		isProtocol = true
	}
	return
}

// Holders converts a raw upstream holder list into a HolderSet:
// duplicate addresses are merged (first-seen position wins), the set is
// sorted descending by balance with a stable first-seen tie-break, and
// supply shares are computed with NaN/Inf coerced to 0.
func Holders(raw []RawHolder, supply float64, book AddressBook) domain.HolderSet {
	type merged struct {
		address string
		balance float64
		seen    int
	}

	index := make(map[string]int, len(raw))
	var list []merged
	for _, r := range raw {
		if r.Address == "" || r.Balance < 0 {
			continue
		}
		if i, ok := index[r.Address]; ok {
			list[i].balance += r.Balance
			continue
		}
		index[r.Address] = len(list)
		list = append(list, merged{address: r.Address, balance: r.Balance, seen: len(list)})
	}

	sort.SliceStable(list, func(i, j int) bool {
		if list[i].balance != list[j].balance {
			return list[i].balance > list[j].balance
		}
		return list[i].seen < list[j].seen
	})

	set := make(domain.HolderSet, 0, len(list))
	for _, m := range list {
		rec := domain.HolderRecord{
			Address: m.address,
			Balance: m.balance,
			Percent: sharePercent(m.balance, supply),
		}
		rec.IsLP, rec.IsExchange, rec.IsProtocol = book.Classify(m.address)
		set = append(set, rec)
	}
	return set
}

// ApplyBundleHints flags holders listed in the bundle hint set.
// A nil hint set leaves the HolderSet untouched (timing data unknown).
func ApplyBundleHints(set domain.HolderSet, bundled map[string]bool) {
	if bundled == nil {
		return
	}
	for i := range set {
		if bundled[set[i].Address] {
			set[i].IsBundled = true
		}
	}
}

// sharePercent computes balance/supply*100 clamped to [0,100].
// Zero or invalid supply coerces to 0 instead of propagating NaN/Inf.
func sharePercent(balance, supply float64) float64 {
	if supply <= 0 {
		return 0
	}
	pct := balance / supply * 100
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return 0
	}
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
