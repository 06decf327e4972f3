package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"salespipe/internal/model"
	"salespipe/internal/store"
)

func main() {
	var (
		count     int
		seed      int64
		sqliteDSN string
		jsonlDir  string
	)
	flag.IntVar(&count, "count", 100, "number of orders per dataset")
	flag.Int64Var(&seed, "seed", 1, "rng seed")
	flag.StringVar(&sqliteDSN, "sqlite-dsn", "./orders.db", "sqlite database path")
	flag.StringVar(&jsonlDir, "jsonl-dir", "", "write <dataset>.jsonl files here instead of sqlite")
	flag.Parse()

	sink, closeSink, err := openSink(sqliteDSN, jsonlDir)
	if err != nil {
		log.Fatalf("open sink: %v", err)
	}
	if err := generate(sink, count, seed); err != nil {
		closeSink()
		log.Fatalf("generation failed: %v", err)
	}
	if err := closeSink(); err != nil {
		log.Fatalf("close sink: %v", err)
	}
}

func openSink(sqliteDSN, jsonlDir string) (store.Putter, func() error, error) {
	if jsonlDir != "" {
		return newJSONLSink(jsonlDir)
	}
	st, err := store.NewSQLite(sqliteDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("init sqlite: %w", err)
	}
	return st, st.Close, nil
}

// jsonlSink writes one <dataset>.jsonl file per dataset, the same
// payloads the intake topics carry.
type jsonlSink struct {
	files map[model.Dataset]*os.File
	encs  map[model.Dataset]*json.Encoder
}

func newJSONLSink(dir string) (*jsonlSink, func() error, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("mkdir: %w", err)
	}
	s := &jsonlSink{
		files: make(map[model.Dataset]*os.File),
		encs:  make(map[model.Dataset]*json.Encoder),
	}
	for _, d := range model.AllDatasets {
		f, err := os.Create(filepath.Join(dir, string(d)+".jsonl"))
		if err != nil {
			return nil, nil, fmt.Errorf("create %s: %w", d, err)
		}
		s.files[d] = f
		s.encs[d] = json.NewEncoder(f)
	}
	return s, s.close, nil
}

func (s *jsonlSink) close() error {
	var firstErr error
	for _, f := range s.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *jsonlSink) PutTicketOrder(_ context.Context, o model.TicketOrder) error {
	return s.encs[model.Tickets].Encode(&o)
}

func (s *jsonlSink) PutMerchOrder(_ context.Context, o model.MerchOrder) error {
	return s.encs[model.Merchandise].Encode(&o)
}

func (s *jsonlSink) PutPartyOrder(_ context.Context, o model.PartyOrder) error {
	return s.encs[model.PartyTickets].Encode(&o)
}

var firstNames = []string{"Ana", "Bruno", "Caio", "Duda", "Enzo", "Flávia", "Gabriel", "Helena", "Igor", "Júlia"}
var lastNames = []string{"Silva", "Souza", "Oliveira", "Santos", "Pereira", "Costa", "Lima", "Almeida"}
var shirtCats = []string{"Jogador", "Torcedor"}
var sizes = []string{"P", "M", "G", "GG"}
var lots = []string{"1º LOTE PROMOCIONAL", "2º LOTE"}

func generate(st store.Putter, count int, seed int64) error {
	rng := rand.New(rand.NewSource(seed))
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	ctx := context.Background()

	person := func() (string, string) {
		first := firstNames[rng.Intn(len(firstNames))]
		last := lastNames[rng.Intn(len(lastNames))]
		name := first + " " + last
		email := strings.ToLower(first) + "." + strings.ToLower(last) + "@example.com"
		return name, email
	}
	submitted := func(i int) model.Timestamp {
		t := base.Add(time.Duration(i) * 37 * time.Minute).Add(time.Duration(rng.Intn(3600)) * time.Second)
		return model.Timestamp{Time: t.In(time.UTC)}
	}

	for i := 0; i < count; i++ {
		name, email := person()
		qty := 1 + rng.Intn(3)
		var parts, flags []string
		for j := 0; j < qty; j++ {
			p, _ := person()
			parts = append(parts, p)
			if rng.Intn(5) == 0 {
				flags = append(flags, "Sim")
			} else {
				flags = append(flags, "Não")
			}
		}
		cupQty := rng.Intn(3)
		var cups []string
		for j := 0; j < cupQty; j++ {
			cups = append(cups, strings.ToUpper(firstNames[rng.Intn(len(firstNames))]))
		}
		o := model.TicketOrder{
			ID:               fmt.Sprintf("t%d", i+1),
			BuyerName:        name,
			BuyerEmail:       email,
			TicketQty:        qty,
			CupQty:           cupQty,
			ChildFlags:       strings.Join(flags, ", "),
			ParticipantNames: strings.Join(parts, ", "),
			CupNames:         strings.Join(cups, ", "),
			SubmittedAt:      submitted(i),
		}
		if err := st.PutTicketOrder(ctx, o); err != nil {
			return fmt.Errorf("put ticket order %d: %w", i+1, err)
		}
	}

	for i := 0; i < count; i++ {
		name, email := person()
		qty := 1 + rng.Intn(2)
		var details, szs, cats, nums []string
		for j := 0; j < qty; j++ {
			p, _ := person()
			cat := shirtCats[rng.Intn(len(shirtCats))]
			details = append(details, fmt.Sprintf("%s (%s)", p, cat))
			cats = append(cats, cat)
			szs = append(szs, sizes[rng.Intn(len(sizes))])
			nums = append(nums, fmt.Sprintf("%d", 1+rng.Intn(99)))
		}
		o := model.MerchOrder{
			ID:          fmt.Sprintf("m%d", i+1),
			BuyerName:   name,
			BuyerEmail:  email,
			Quantity:    qty,
			Details:     strings.Join(details, ", "),
			Sizes:       strings.Join(szs, ", "),
			Categories:  strings.Join(cats, ", "),
			Numbers:     strings.Join(nums, ", "),
			SubmittedAt: submitted(i + count),
		}
		if err := st.PutMerchOrder(ctx, o); err != nil {
			return fmt.Errorf("put merch order %d: %w", i+1, err)
		}
	}

	for i := 0; i < count; i++ {
		_, email := person()
		qty := 1 + rng.Intn(4)
		var names, docs []string
		for j := 0; j < qty; j++ {
			p, _ := person()
			names = append(names, p)
			docs = append(docs, fmt.Sprintf("%011d", rng.Int63n(99999999999)))
		}
		o := model.PartyOrder{
			ID:          fmt.Sprintf("p%d", i+1),
			BuyerEmail:  email,
			Quantity:    qty,
			Names:       strings.Join(names, ", "),
			Documents:   strings.Join(docs, ", "),
			Lot:         lots[rng.Intn(len(lots))],
			SubmittedAt: submitted(i + 2*count),
		}
		if err := st.PutPartyOrder(ctx, o); err != nil {
			return fmt.Errorf("put party order %d: %w", i+1, err)
		}
	}

	log.Printf("generated %d orders per dataset", count)
	return nil
}
