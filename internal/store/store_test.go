package store

import (
	"context"
	"path/filepath"
	"testing"

	"salespipe/internal/model"
)

type backend interface {
	Store
	Putter
}

func ts(t *testing.T, s string) model.Timestamp {
	t.Helper()
	v, err := model.ParseTimestamp(s)
	if err != nil {
		t.Fatalf("ParseTimestamp(%q): %v", s, err)
	}
	return v
}

func seedAndCheck(t *testing.T, b backend) {
	t.Helper()
	ctx := context.Background()

	if err := b.PutTicketOrder(ctx, model.TicketOrder{
		ID: "t2", BuyerName: "Ana", BuyerEmail: "ana@x.com",
		TicketQty: 2, CupQty: 1, ChildFlags: "Não, Não",
		ParticipantNames: "Ana, Bia", AmountCents: 34000,
		SubmittedAt: ts(t, "2025-06-02 10:00:00"),
	}); err != nil {
		t.Fatalf("PutTicketOrder: %v", err)
	}
	if err := b.PutTicketOrder(ctx, model.TicketOrder{
		ID: "t1", BuyerName: "Caio", BuyerEmail: "caio@x.com",
		TicketQty: 1, SubmittedAt: ts(t, "2025-06-01 09:00:00"),
	}); err != nil {
		t.Fatalf("PutTicketOrder: %v", err)
	}
	if err := b.PutMerchOrder(ctx, model.MerchOrder{
		ID: "m1", BuyerName: "Ana", BuyerEmail: "ana@x.com",
		Quantity: 1, Details: "Ana (Jogador)", Sizes: "M",
		SubmittedAt: ts(t, "2025-06-03 12:00:00"),
	}); err != nil {
		t.Fatalf("PutMerchOrder: %v", err)
	}
	if err := b.PutPartyOrder(ctx, model.PartyOrder{
		ID: "p1", BuyerEmail: "caio@x.com", Quantity: 2,
		Names: "Caio, Duda", Lot: "1º LOTE PROMOCIONAL",
		SubmittedAt: ts(t, "2025-06-04 20:30:00"),
	}); err != nil {
		t.Fatalf("PutPartyOrder: %v", err)
	}

	tickets, err := b.TicketOrders(ctx)
	if err != nil {
		t.Fatalf("TicketOrders: %v", err)
	}
	if len(tickets) != 2 {
		t.Fatalf("len(tickets) = %d, want 2", len(tickets))
	}
	if tickets[0].ID != "t1" || tickets[1].ID != "t2" {
		t.Fatalf("ticket order ordering = %s, %s", tickets[0].ID, tickets[1].ID)
	}
	if tickets[1].ParticipantNames != "Ana, Bia" || tickets[1].AmountCents != 34000 {
		t.Fatalf("ticket fields lost: %+v", tickets[1])
	}
	if got := tickets[0].SubmittedAt.Time.Hour(); got != 9 {
		t.Fatalf("t1 hour = %d, want 9", got)
	}

	merch, err := b.MerchOrders(ctx)
	if err != nil {
		t.Fatalf("MerchOrders: %v", err)
	}
	if len(merch) != 1 || merch[0].Details != "Ana (Jogador)" {
		t.Fatalf("merch = %+v", merch)
	}

	party, err := b.PartyOrders(ctx)
	if err != nil {
		t.Fatalf("PartyOrders: %v", err)
	}
	if len(party) != 1 || party[0].Lot != "1º LOTE PROMOCIONAL" {
		t.Fatalf("party = %+v", party)
	}

	// Replayed submission replaces, never duplicates.
	if err := b.PutTicketOrder(ctx, model.TicketOrder{
		ID: "t1", BuyerName: "Caio Silva", BuyerEmail: "caio@x.com",
		TicketQty: 1, SubmittedAt: ts(t, "2025-06-01 09:00:00"),
	}); err != nil {
		t.Fatalf("replay PutTicketOrder: %v", err)
	}
	tickets, err = b.TicketOrders(ctx)
	if err != nil {
		t.Fatalf("TicketOrders: %v", err)
	}
	if len(tickets) != 2 {
		t.Fatalf("replay duplicated: len = %d", len(tickets))
	}
	if tickets[0].BuyerName != "Caio Silva" {
		t.Fatalf("replay did not replace: %q", tickets[0].BuyerName)
	}
}

func TestMemory(t *testing.T) {
	seedAndCheck(t, NewMemory())
}

func TestPebble(t *testing.T) {
	p, err := NewPebble(t.TempDir())
	if err != nil {
		t.Fatalf("NewPebble: %v", err)
	}
	defer p.Close()
	seedAndCheck(t, p)
}

func TestSQLite(t *testing.T) {
	s, err := NewSQLite(filepath.Join(t.TempDir(), "orders.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	defer s.Close()
	seedAndCheck(t, s)
}

func TestPebbleSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	p, err := NewPebble(dir)
	if err != nil {
		t.Fatalf("NewPebble: %v", err)
	}
	err = p.PutPartyOrder(context.Background(), model.PartyOrder{
		ID: "p1", BuyerEmail: "x@y.com", Quantity: 1,
		SubmittedAt: ts(t, "2025-06-04 20:30:00"),
	})
	if err != nil {
		t.Fatalf("PutPartyOrder: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	p, err = NewPebble(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer p.Close()
	party, err := p.PartyOrders(context.Background())
	if err != nil {
		t.Fatalf("PartyOrders: %v", err)
	}
	if len(party) != 1 || party[0].ID != "p1" {
		t.Fatalf("party after reopen = %+v", party)
	}
}

func TestEmptyListings(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	if got, err := m.TicketOrders(ctx); err != nil || len(got) != 0 {
		t.Fatalf("TicketOrders = %v, %v", got, err)
	}
	if got, err := m.MerchOrders(ctx); err != nil || len(got) != 0 {
		t.Fatalf("MerchOrders = %v, %v", got, err)
	}
	if got, err := m.PartyOrders(ctx); err != nil || len(got) != 0 {
		t.Fatalf("PartyOrders = %v, %v", got, err)
	}
}
