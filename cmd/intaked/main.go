package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"salespipe/internal/metrics"
	"salespipe/internal/model"
	"salespipe/internal/store"

	ck "github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// Config holds CLI flags for the intake daemon.
type Config struct {
	Bootstrap    string
	GroupID      string
	TopicTickets string
	TopicMerch   string
	TopicParty   string
	StoreBackend string // sqlite|pebble|memory
	SQLiteDSN    string
	PebbleDir    string
	Listen       string
}

func main() {
	cfg := readFlags()
	if err := run(cfg); err != nil {
		log.Fatalf("intaked failed: %v", err)
	}
}

func readFlags() Config {
	var cfg Config
	flag.StringVar(&cfg.Bootstrap, "bootstrap", envOr("SALESPIPE_KAFKA_BOOTSTRAP", "localhost:9092"), "kafka bootstrap servers")
	flag.StringVar(&cfg.GroupID, "group-id", "intaked", "consumer group id")
	flag.StringVar(&cfg.TopicTickets, "topic-tickets", "forms.compra_confra", "ticket order topic")
	flag.StringVar(&cfg.TopicMerch, "topic-merch", "forms.compra_camisas", "merch order topic")
	flag.StringVar(&cfg.TopicParty, "topic-party", "forms.compra_festa", "party order topic")
	flag.StringVar(&cfg.StoreBackend, "store", "sqlite", "order store backend: memory|sqlite|pebble")
	flag.StringVar(&cfg.SQLiteDSN, "sqlite-dsn", "./orders.db", "sqlite database path")
	flag.StringVar(&cfg.PebbleDir, "pebble-dir", "./data/orders", "pebble data directory")
	flag.StringVar(&cfg.Listen, "listen", ":8081", "http listen address for metrics")
	flag.Parse()
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func openSink(cfg Config) (store.Putter, func() error, error) {
	switch cfg.StoreBackend {
	case "memory":
		return store.NewMemory(), func() error { return nil }, nil
	case "sqlite":
		s, err := store.NewSQLite(cfg.SQLiteDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("init sqlite: %w", err)
		}
		return s, s.Close, nil
	case "pebble":
		p, err := store.NewPebble(cfg.PebbleDir)
		if err != nil {
			return nil, nil, fmt.Errorf("init pebble: %w", err)
		}
		return p, p.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

func run(cfg Config) error {
	sink, closeSink, err := openSink(cfg)
	if err != nil {
		return err
	}
	defer closeSink()

	datasetByTopic := map[string]model.Dataset{
		cfg.TopicTickets: model.Tickets,
		cfg.TopicMerch:   model.Merchandise,
		cfg.TopicParty:   model.PartyTickets,
	}

	c, err := ck.NewConsumer(&ck.ConfigMap{
		"bootstrap.servers":  cfg.Bootstrap,
		"group.id":           cfg.GroupID,
		"enable.auto.commit": false,
		"auto.offset.reset":  "earliest",
	})
	if err != nil {
		return fmt.Errorf("consumer: %w", err)
	}
	defer c.Close()
	if err := c.SubscribeTopics([]string{cfg.TopicTickets, cfg.TopicMerch, cfg.TopicParty}, nil); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	mreg := metrics.NewRegistry()
	go func() {
		http.Handle("/metrics", mreg.Handler())
		http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
		})
		_ = http.ListenAndServe(cfg.Listen, nil)
	}()

	log.Printf("intaked started bootstrap=%s store=%s topics=[%s %s %s]",
		cfg.Bootstrap, cfg.StoreBackend, cfg.TopicTickets, cfg.TopicMerch, cfg.TopicParty)

	ctx := context.Background()
	for {
		msg, err := c.ReadMessage(10 * time.Second)
		if err != nil {
			// timeout or transient broker error; keep polling
			continue
		}
		topic := ""
		if msg.TopicPartition.Topic != nil {
			topic = *msg.TopicPartition.Topic
		}
		d, ok := datasetByTopic[topic]
		if !ok {
			log.Printf("intaked: unexpected topic %q, skipping", topic)
			mreg.IntakeFailed.Inc()
			if _, err := c.CommitMessage(msg); err != nil {
				return fmt.Errorf("commit: %w", err)
			}
			continue
		}
		put, err := decodeOrder(d, msg.Value)
		if err != nil {
			// Malformed payloads are committed so the partition keeps moving.
			mreg.IntakeFailed.Inc()
			log.Printf("intaked: %s offset=%v skipping malformed record: %v", d, msg.TopicPartition.Offset, err)
			if _, err := c.CommitMessage(msg); err != nil {
				return fmt.Errorf("commit: %w", err)
			}
			continue
		}
		if err := put(ctx, sink); err != nil {
			// Store failures stay uncommitted, so the record redelivers.
			mreg.IntakeFailed.Inc()
			log.Printf("intaked: %s offset=%v store rejected record: %v", d, msg.TopicPartition.Offset, err)
			continue
		}
		mreg.IntakeConsumed.Inc()
		if _, err := c.CommitMessage(msg); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
	}
}

func decodeOrder(d model.Dataset, payload []byte) (func(context.Context, store.Putter) error, error) {
	switch d {
	case model.Tickets:
		var o model.TicketOrder
		if err := json.Unmarshal(payload, &o); err != nil {
			return nil, err
		}
		return func(ctx context.Context, sink store.Putter) error { return sink.PutTicketOrder(ctx, o) }, nil
	case model.Merchandise:
		var o model.MerchOrder
		if err := json.Unmarshal(payload, &o); err != nil {
			return nil, err
		}
		return func(ctx context.Context, sink store.Putter) error { return sink.PutMerchOrder(ctx, o) }, nil
	case model.PartyTickets:
		var o model.PartyOrder
		if err := json.Unmarshal(payload, &o); err != nil {
			return nil, err
		}
		return func(ctx context.Context, sink store.Putter) error { return sink.PutPartyOrder(ctx, o) }, nil
	}
	return nil, fmt.Errorf("unknown dataset %q", d)
}
