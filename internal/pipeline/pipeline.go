// Package pipeline ties the stages together: fetch raw orders from the
// store, expand them to line items, aggregate buyers, compute temporal
// KPIs and segment the buyer base into one Report.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"salespipe/internal/aggregate"
	"salespipe/internal/cache"
	"salespipe/internal/decode"
	"salespipe/internal/expand"
	"salespipe/internal/kpi"
	"salespipe/internal/metrics"
	"salespipe/internal/model"
	"salespipe/internal/pricing"
	"salespipe/internal/segment"
	"salespipe/internal/store"
)

type Options struct {
	Prices   *pricing.Resolver
	Location *time.Location
	K        int
	Metrics  *metrics.Registry
}

type Pipeline struct {
	st     store.Store
	prices *pricing.Resolver
	loc    *time.Location
	k      int
	met    *metrics.Registry
}

func New(st store.Store, opts Options) *Pipeline {
	p := &Pipeline{
		st:     st,
		prices: opts.Prices,
		loc:    opts.Location,
		k:      opts.K,
		met:    opts.Metrics,
	}
	if p.prices == nil {
		p.prices = pricing.Default()
	}
	if p.loc == nil {
		p.loc = time.UTC
	}
	if p.k < 1 {
		p.k = 3
	}
	if p.met == nil {
		p.met = metrics.NewRegistry()
	}
	return p
}

// Breakdown is one revenue bucket.
type Breakdown struct {
	Count int   `json:"count"`
	Cents int64 `json:"cents"`
}

// Report is the full analytics output for one snapshot of the stores.
type Report struct {
	ReportID     string                             `json:"reportId"`
	GeneratedAt  time.Time                          `json:"generatedAt"`
	Items        map[model.Dataset][]model.LineItem `json:"items"`
	Profiles     []aggregate.BuyerProfile           `json:"profiles"`
	TotalItems   int                                `json:"totalItems"`
	RevenueCents int64                              `json:"revenueCents"`
	ByCategory   map[string]Breakdown               `json:"byCategory"`
	ByKind       map[model.Kind]Breakdown           `json:"byKind"`
	Daily        []kpi.DayPoint                     `json:"daily"`
	Heat         kpi.Grid                           `json:"heat"`
	Rates        kpi.Rates                          `json:"rates"`
	Segments     segment.Result                     `json:"segments"`
}

// snapshot is one consistent read of all three datasets. Its JSON form
// is the memoization key input.
type snapshot struct {
	Tickets []model.TicketOrder `json:"tickets"`
	Merch   []model.MerchOrder  `json:"merch"`
	Party   []model.PartyOrder  `json:"party"`
}

func (p *Pipeline) fetch(ctx context.Context) (snapshot, error) {
	var snap snapshot
	var err error
	if snap.Tickets, err = p.st.TicketOrders(ctx); err != nil {
		return snapshot{}, fmt.Errorf("fetch tickets: %w", err)
	}
	if snap.Merch, err = p.st.MerchOrders(ctx); err != nil {
		return snapshot{}, fmt.Errorf("fetch merch: %w", err)
	}
	if snap.Party, err = p.st.PartyOrders(ctx); err != nil {
		return snapshot{}, fmt.Errorf("fetch party: %w", err)
	}
	p.met.OrdersFetched.Add(float64(len(snap.Tickets) + len(snap.Merch) + len(snap.Party)))
	return snap, nil
}

// hash fingerprints the snapshot. Store listings are deterministic, so
// equal data always produces the equal hash.
func (s snapshot) hash() (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("hash snapshot: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// Run computes a fresh report, bypassing any memoization.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	snap, err := p.fetch(ctx)
	if err != nil {
		return nil, err
	}
	h, err := snap.hash()
	if err != nil {
		return nil, err
	}
	return p.compute(snap, h)
}

func (p *Pipeline) compute(snap snapshot, hash string) (*Report, error) {
	start := time.Now()
	items := map[model.Dataset][]model.LineItem{
		model.Tickets:      {},
		model.Merchandise:  {},
		model.PartyTickets: {},
	}
	for _, o := range snap.Tickets {
		p.checkCounts(o.TicketQty, o.ParticipantNames, o.ParticipantDocs, o.ChildFlags)
		p.checkCounts(o.CupQty, o.CupNames)
		lines := expand.Tickets(o, p.prices)
		if len(lines) == 0 {
			p.met.OrdersSkipped.Inc()
			continue
		}
		items[model.Tickets] = append(items[model.Tickets], lines...)
	}
	for _, o := range snap.Merch {
		p.checkCounts(o.Quantity, o.Details, o.Sizes, o.Categories)
		lines := expand.Merch(o, p.prices)
		if len(lines) == 0 {
			p.met.OrdersSkipped.Inc()
			continue
		}
		items[model.Merchandise] = append(items[model.Merchandise], lines...)
	}
	for _, o := range snap.Party {
		p.checkCounts(o.Quantity, o.Names, o.Documents)
		lines := expand.Party(o, p.prices)
		if len(lines) == 0 {
			p.met.OrdersSkipped.Inc()
			continue
		}
		items[model.PartyTickets] = append(items[model.PartyTickets], lines...)
	}

	rep := &Report{
		ReportID:    hash[:12],
		GeneratedAt: time.Now().In(p.loc),
		Items:       items,
		ByCategory:  map[string]Breakdown{},
		ByKind:      map[model.Kind]Breakdown{},
	}
	var events []kpi.Event
	for _, d := range model.AllDatasets {
		for _, it := range items[d] {
			rep.TotalItems++
			rep.RevenueCents += it.PriceCents
			bc := rep.ByCategory[it.Category]
			bc.Count++
			bc.Cents += it.PriceCents
			rep.ByCategory[it.Category] = bc
			bk := rep.ByKind[it.Kind]
			bk.Count++
			bk.Cents += it.PriceCents
			rep.ByKind[it.Kind] = bk
			if it.PriceCents == 0 && !it.Child {
				p.met.UnknownCategories.Inc()
			}
			events = append(events, kpi.Event{At: it.SubmittedAt, Cents: it.PriceCents})
		}
	}
	p.met.ItemsExpanded.Add(float64(rep.TotalItems))

	rep.Profiles = aggregate.Aggregate(items)

	var err error
	if rep.Daily, err = kpi.CumulativeByDay(events, p.loc); err != nil {
		return nil, fmt.Errorf("daily series: %w", err)
	}
	if rep.Heat, err = kpi.WeekdayHourGrid(events, p.loc); err != nil {
		return nil, fmt.Errorf("weekday grid: %w", err)
	}
	rep.Rates = kpi.DailyRates(rep.Daily)

	if rep.Segments, err = segment.Segment(rep.Profiles, p.k); err != nil {
		return nil, fmt.Errorf("segment buyers: %w", err)
	}
	clusterByKey := make(map[string]int, len(rep.Segments.Assignments))
	for _, a := range rep.Segments.Assignments {
		clusterByKey[a.Key] = a.Cluster
	}
	for i := range rep.Profiles {
		if c, ok := clusterByKey[rep.Profiles[i].Key]; ok {
			rep.Profiles[i].Cluster = c
		}
	}

	p.met.PipelineRuns.Inc()
	p.met.PipelineSec.Observe(time.Since(start).Seconds())
	return rep, nil
}

// checkCounts flags multi-value fields that carry fewer parts than the
// declared quantity. Expansion still proceeds via last-part fallback.
func (p *Pipeline) checkCounts(qty int, fields ...string) {
	if qty <= 1 {
		return
	}
	for _, f := range fields {
		if f == "" {
			continue
		}
		if decode.Count(f) < qty {
			p.met.MalformedFields.Inc()
		}
	}
}

// Runner memoizes reports by snapshot hash so repeated reads of an
// unchanged store cost one fetch and a cache hit.
type Runner struct {
	p     *Pipeline
	cache *cache.TTL[*Report]
}

func NewRunner(p *Pipeline, size int, ttl time.Duration) *Runner {
	if size < 1 {
		size = 8
	}
	return &Runner{p: p, cache: cache.New[*Report](size, ttl)}
}

// Report returns the memoized report when the snapshot hash matches a
// fresh cache entry, recomputing otherwise.
func (r *Runner) Report(ctx context.Context) (*Report, error) {
	snap, err := r.p.fetch(ctx)
	if err != nil {
		return nil, err
	}
	h, err := snap.hash()
	if err != nil {
		return nil, err
	}
	if rep, ok := r.cache.Get(h); ok {
		r.p.met.CacheHits.Inc()
		return rep, nil
	}
	r.p.met.CacheMisses.Inc()
	rep, err := r.p.compute(snap, h)
	if err != nil {
		return nil, err
	}
	r.cache.Add(h, rep)
	return rep, nil
}
