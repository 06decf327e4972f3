// Package store holds raw orders as submitted, one logical table per
// dataset, behind interchangeable backends. Writers deduplicate on
// order ID; a replayed submission overwrites rather than duplicates.
package store

import (
	"context"
	"sort"

	"salespipe/internal/model"
)

// Store reads a full snapshot of raw orders. Listings are deterministic:
// ordered by submission time, then ID.
type Store interface {
	TicketOrders(ctx context.Context) ([]model.TicketOrder, error)
	MerchOrders(ctx context.Context) ([]model.MerchOrder, error)
	PartyOrders(ctx context.Context) ([]model.PartyOrder, error)
}

// Putter ingests raw orders. Put with an existing ID replaces the row.
type Putter interface {
	PutTicketOrder(ctx context.Context, o model.TicketOrder) error
	PutMerchOrder(ctx context.Context, o model.MerchOrder) error
	PutPartyOrder(ctx context.Context, o model.PartyOrder) error
}

func sortTickets(orders []model.TicketOrder) {
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].SubmittedAt.Time.Equal(orders[j].SubmittedAt.Time) {
			return orders[i].SubmittedAt.Time.Before(orders[j].SubmittedAt.Time)
		}
		return orders[i].ID < orders[j].ID
	})
}

func sortMerch(orders []model.MerchOrder) {
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].SubmittedAt.Time.Equal(orders[j].SubmittedAt.Time) {
			return orders[i].SubmittedAt.Time.Before(orders[j].SubmittedAt.Time)
		}
		return orders[i].ID < orders[j].ID
	})
}

func sortParty(orders []model.PartyOrder) {
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].SubmittedAt.Time.Equal(orders[j].SubmittedAt.Time) {
			return orders[i].SubmittedAt.Time.Before(orders[j].SubmittedAt.Time)
		}
		return orders[i].ID < orders[j].ID
	})
}
