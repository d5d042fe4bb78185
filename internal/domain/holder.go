package domain

// HolderRecord represents one token account holder.
type HolderRecord struct {
	Address    string  // base58 owner address
	Balance    float64 // raw balance in UI units
	Percent    float64 // share of total supply, 0..100
	IsLP       bool    // liquidity pool account
	IsExchange bool    // recognized exchange/custodial wallet
	IsProtocol bool    // bonding curve, vault or other program-owned account
	IsBundled  bool    // acquired inside a launch bundle
	IsSniper   bool    // bought within the sniper window after launch
}

// HolderSet is an ordered collection of holders, descending by balance.
// Addresses are unique; percentages across the full set sum to <= 100
// subject to rounding. Built by the normalize package.
type HolderSet []HolderRecord

// Qualifying returns holders that count toward concentration metrics:
// LP, exchange and protocol accounts are excluded. Order is preserved.
func (h HolderSet) Qualifying() HolderSet {
	out := make(HolderSet, 0, len(h))
	for _, r := range h {
		if r.IsLP || r.IsExchange || r.IsProtocol {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Bundled returns holders flagged as bundle participants.
func (h HolderSet) Bundled() HolderSet {
	out := make(HolderSet, 0)
	for _, r := range h {
		if r.IsBundled {
			out = append(out, r)
		}
	}
	return out
}

// Addresses returns all holder addresses in set order.
func (h HolderSet) Addresses() []string {
	out := make([]string, len(h))
	for i, r := range h {
		out[i] = r.Address
	}
	return out
}
