// Package aggregate reconciles line items from all datasets into one
// profile per buyer. Buyers are joined on the canonical email key; the
// join is an outer one, so a buyer seen in a single dataset still gets a
// profile with zero-filled stats for the others. Profiles are rebuilt
// from scratch on every pass.
package aggregate

import (
	"sort"

	"salespipe/internal/identity"
	"salespipe/internal/model"
)

// Stats accumulates one dataset's slice of a buyer's activity.
type Stats struct {
	Orders     int   `json:"orders"`
	Items      int   `json:"items"`
	SpendCents int64 `json:"spendCents"`
}

// BuyerProfile is the cross-dataset view of one buyer. Cluster is -1
// until segmentation assigns one.
type BuyerProfile struct {
	Key         string `json:"key"`
	DisplayName string `json:"displayName"`

	Tickets Stats `json:"tickets"`
	Merch   Stats `json:"merch"`
	Party   Stats `json:"party"`

	TotalItems      int   `json:"totalItems"`
	TotalSpendCents int64 `json:"totalSpendCents"`
	Cluster         int   `json:"cluster"`
}

// Stats returns the per-dataset slice of the profile.
func (p BuyerProfile) Stats(d model.Dataset) Stats {
	switch d {
	case model.Tickets:
		return p.Tickets
	case model.Merchandise:
		return p.Merch
	case model.PartyTickets:
		return p.Party
	}
	return Stats{}
}

type accumulator struct {
	stats     map[model.Dataset]Stats
	orders    map[model.Dataset]map[string]struct{}
	name      string
	nameSeen  model.Timestamp
	hasName   bool
}

// Aggregate groups line items by buyer key and reduces them to one
// profile per buyer. When the same key carries several distinct display
// names (a typo-corrected resubmission, say), the name on the most
// recent submission wins; datasets are scanned in canonical order so the
// result is deterministic for equal timestamps. Output is sorted by
// total spend descending, then key.
func Aggregate(items map[model.Dataset][]model.LineItem) []BuyerProfile {
	accs := make(map[string]*accumulator)

	for _, ds := range model.AllDatasets {
		for _, it := range items[ds] {
			key := identity.CanonEmail(it.BuyerEmail)
			acc := accs[key]
			if acc == nil {
				acc = &accumulator{
					stats:  make(map[model.Dataset]Stats),
					orders: make(map[model.Dataset]map[string]struct{}),
				}
				accs[key] = acc
			}

			st := acc.stats[ds]
			st.Items++
			st.SpendCents += it.PriceCents
			acc.stats[ds] = st

			if acc.orders[ds] == nil {
				acc.orders[ds] = make(map[string]struct{})
			}
			acc.orders[ds][it.OrderID] = struct{}{}

			if it.BuyerName != "" && (!acc.hasName || it.SubmittedAt.After(acc.nameSeen)) {
				acc.name = identity.CanonName(it.BuyerName)
				acc.nameSeen = it.SubmittedAt
				acc.hasName = true
			}
		}
	}

	profiles := make([]BuyerProfile, 0, len(accs))
	for key, acc := range accs {
		p := BuyerProfile{Key: key, DisplayName: acc.name, Cluster: -1}
		for _, ds := range model.AllDatasets {
			st := acc.stats[ds]
			st.Orders = len(acc.orders[ds])
			switch ds {
			case model.Tickets:
				p.Tickets = st
			case model.Merchandise:
				p.Merch = st
			case model.PartyTickets:
				p.Party = st
			}
			p.TotalItems += st.Items
			p.TotalSpendCents += st.SpendCents
		}
		profiles = append(profiles, p)
	}

	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].TotalSpendCents != profiles[j].TotalSpendCents {
			return profiles[i].TotalSpendCents > profiles[j].TotalSpendCents
		}
		return profiles[i].Key < profiles[j].Key
	})
	return profiles
}
