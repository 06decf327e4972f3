package store

import (
	"context"
	"sync"

	"salespipe/internal/model"
)

// Memory is a thread-safe in-process store, used by tests and by
// single-node deployments that rebuild from the feed on start.
type Memory struct {
	mu      sync.RWMutex
	tickets map[string]model.TicketOrder
	merch   map[string]model.MerchOrder
	party   map[string]model.PartyOrder
}

func NewMemory() *Memory {
	return &Memory{
		tickets: make(map[string]model.TicketOrder),
		merch:   make(map[string]model.MerchOrder),
		party:   make(map[string]model.PartyOrder),
	}
}

func (m *Memory) PutTicketOrder(_ context.Context, o model.TicketOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickets[o.ID] = o
	return nil
}

func (m *Memory) PutMerchOrder(_ context.Context, o model.MerchOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.merch[o.ID] = o
	return nil
}

func (m *Memory) PutPartyOrder(_ context.Context, o model.PartyOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.party[o.ID] = o
	return nil
}

func (m *Memory) TicketOrders(_ context.Context) ([]model.TicketOrder, error) {
	m.mu.RLock()
	out := make([]model.TicketOrder, 0, len(m.tickets))
	for _, o := range m.tickets {
		out = append(out, o)
	}
	m.mu.RUnlock()
	sortTickets(out)
	return out, nil
}

func (m *Memory) MerchOrders(_ context.Context) ([]model.MerchOrder, error) {
	m.mu.RLock()
	out := make([]model.MerchOrder, 0, len(m.merch))
	for _, o := range m.merch {
		out = append(out, o)
	}
	m.mu.RUnlock()
	sortMerch(out)
	return out, nil
}

func (m *Memory) PartyOrders(_ context.Context) ([]model.PartyOrder, error) {
	m.mu.RLock()
	out := make([]model.PartyOrder, 0, len(m.party))
	for _, o := range m.party {
		out = append(out, o)
	}
	m.mu.RUnlock()
	sortParty(out)
	return out, nil
}
