package store

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/pebble"

	"salespipe/internal/model"
)

// Pebble persists raw orders in a local PebbleDB, keyed
// "<dataset>#<orderID>" with JSON values. It survives restarts without
// replaying the feed from the beginning.
type Pebble struct {
	db *pebble.DB
}

func NewPebble(dir string) (*Pebble, error) {
	opts := &pebble.Options{
		L0CompactionThreshold: 4,
		L0StopWritesThreshold: 8,
		WALBytesPerSync:       1 << 20,
	}
	db, err := pebble.Open(filepath.Clean(dir), opts)
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &Pebble{db: db}, nil
}

func (p *Pebble) Close() error { return p.db.Close() }

func orderKey(d model.Dataset, id string) []byte {
	return []byte(string(d) + "#" + id)
}

func (p *Pebble) put(d model.Dataset, id string, o any) error {
	val, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("encode %s order %s: %w", d, id, err)
	}
	// NoSync is fine here: the feed re-delivers anything lost in a crash.
	if err := p.db.Set(orderKey(d, id), val, pebble.NoSync); err != nil {
		return fmt.Errorf("pebble set: %w", err)
	}
	return nil
}

func (p *Pebble) PutTicketOrder(_ context.Context, o model.TicketOrder) error {
	return p.put(model.Tickets, o.ID, o)
}

func (p *Pebble) PutMerchOrder(_ context.Context, o model.MerchOrder) error {
	return p.put(model.Merchandise, o.ID, o)
}

func (p *Pebble) PutPartyOrder(_ context.Context, o model.PartyOrder) error {
	return p.put(model.PartyTickets, o.ID, o)
}

// scan walks every value under the dataset prefix and hands the raw
// JSON to fn.
func (p *Pebble) scan(d model.Dataset, fn func(val []byte) error) error {
	prefix := []byte(string(d) + "#")
	upper := []byte(string(d) + "$") // '$' follows '#' in byte order
	it, err := p.db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: upper})
	if err != nil {
		return fmt.Errorf("pebble iter: %w", err)
	}
	defer it.Close()
	for it.First(); it.Valid(); it.Next() {
		v := append([]byte(nil), it.Value()...)
		if err := fn(v); err != nil {
			return err
		}
	}
	return it.Error()
}

func (p *Pebble) TicketOrders(_ context.Context) ([]model.TicketOrder, error) {
	var out []model.TicketOrder
	err := p.scan(model.Tickets, func(val []byte) error {
		var o model.TicketOrder
		if err := json.Unmarshal(val, &o); err != nil {
			return fmt.Errorf("decode ticket order: %w", err)
		}
		out = append(out, o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortTickets(out)
	return out, nil
}

func (p *Pebble) MerchOrders(_ context.Context) ([]model.MerchOrder, error) {
	var out []model.MerchOrder
	err := p.scan(model.Merchandise, func(val []byte) error {
		var o model.MerchOrder
		if err := json.Unmarshal(val, &o); err != nil {
			return fmt.Errorf("decode merch order: %w", err)
		}
		out = append(out, o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortMerch(out)
	return out, nil
}

func (p *Pebble) PartyOrders(_ context.Context) ([]model.PartyOrder, error) {
	var out []model.PartyOrder
	err := p.scan(model.PartyTickets, func(val []byte) error {
		var o model.PartyOrder
		if err := json.Unmarshal(val, &o); err != nil {
			return fmt.Errorf("decode party order: %w", err)
		}
		out = append(out, o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortParty(out)
	return out, nil
}
