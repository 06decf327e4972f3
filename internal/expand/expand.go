// Package expand turns one denormalized order into one LineItem per
// physical item, resolving every packed multi-value field exactly once.
// Later stages only ever see the decoded structs.
package expand

import (
	"strings"

	"salespipe/internal/decode"
	"salespipe/internal/model"
	"salespipe/internal/pricing"
)

const (
	ticketCategory = "Confra"
	cupCategory    = "Copo"
	maxCupName     = 10
)

// Tickets expands an event-ticket order: one line per confra ticket
// followed by one line per personalized cup. The positional child-flag
// list ("Não, Sim") marks free child tickets, which keep their seat and
// name but carry a zero price.
func Tickets(o model.TicketOrder, pr *pricing.Resolver) []model.LineItem {
	ticketQty := clamp(o.TicketQty)
	cupQty := clamp(o.CupQty)
	items := make([]model.LineItem, 0, ticketQty+cupQty)

	for i := 0; i < ticketQty; i++ {
		child := strings.EqualFold(decode.At(o.ChildFlags, i), "sim")
		price := pr.Tickets.PriceFor(ticketCategory)
		if child {
			price = 0
		}
		items = append(items, model.LineItem{
			OrderID:     o.ID,
			Dataset:     model.Tickets,
			Seq:         i,
			Kind:        model.KindTicket,
			Category:    ticketCategory,
			PriceCents:  price,
			Name:        decode.At(o.ParticipantNames, i),
			Document:    decode.At(o.ParticipantDocs, i),
			Child:       child,
			BuyerName:   o.BuyerName,
			BuyerEmail:  o.BuyerEmail,
			SubmittedAt: o.SubmittedAt,
		})
	}
	for j := 0; j < cupQty; j++ {
		items = append(items, model.LineItem{
			OrderID:     o.ID,
			Dataset:     model.Tickets,
			Seq:         ticketQty + j,
			Kind:        model.KindCup,
			Category:    cupCategory,
			PriceCents:  pr.Tickets.PriceFor(cupCategory),
			Name:        cupName(decode.At(o.CupNames, j)),
			BuyerName:   o.BuyerName,
			BuyerEmail:  o.BuyerEmail,
			SubmittedAt: o.SubmittedAt,
		})
	}
	return items
}

// Merch expands a shirt order. The combined "name (category)" field
// yields the print name; category, size and jersey number are positional
// lists aligned by the same sequence index.
func Merch(o model.MerchOrder, pr *pricing.Resolver) []model.LineItem {
	qty := clamp(o.Quantity)
	items := make([]model.LineItem, 0, qty)
	for i := 0; i < qty; i++ {
		category := decode.At(o.Categories, i)
		items = append(items, model.LineItem{
			OrderID:     o.ID,
			Dataset:     model.Merchandise,
			Seq:         i,
			Kind:        model.KindShirt,
			Category:    category,
			PriceCents:  pr.Merch.PriceFor(category),
			Name:        decode.BaseName(decode.At(o.Details, i)),
			Size:        decode.At(o.Sizes, i),
			Number:      decode.At(o.Numbers, i),
			BuyerName:   o.BuyerName,
			BuyerEmail:  o.BuyerEmail,
			SubmittedAt: o.SubmittedAt,
		})
	}
	return items
}

// Party expands a party-ticket order. The whole order sells under one
// price lot, which doubles as the line category.
func Party(o model.PartyOrder, pr *pricing.Resolver) []model.LineItem {
	qty := clamp(o.Quantity)
	items := make([]model.LineItem, 0, qty)
	for i := 0; i < qty; i++ {
		items = append(items, model.LineItem{
			OrderID:     o.ID,
			Dataset:     model.PartyTickets,
			Seq:         i,
			Kind:        model.KindPartyTicket,
			Category:    o.Lot,
			PriceCents:  pr.Party.PriceFor(o.Lot),
			Name:        decode.At(o.Names, i),
			Document:    decode.At(o.Documents, i),
			BuyerEmail:  o.BuyerEmail,
			SubmittedAt: o.SubmittedAt,
		})
	}
	return items
}

// cupName applies the print-shop constraints the form enforced: upper
// case, at most 10 runes.
func cupName(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	r := []rune(s)
	if len(r) > maxCupName {
		r = r[:maxCupName]
	}
	return string(r)
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
