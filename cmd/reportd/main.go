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

	"salespipe/internal/export"
	"salespipe/internal/metrics"
	"salespipe/internal/pipeline"
	"salespipe/internal/pricing"
	"salespipe/internal/store"
)

// Config holds CLI flags for the report daemon.
type Config struct {
	Listen       string
	StoreBackend string // memory|sqlite|pebble
	SQLiteDSN    string
	PebbleDir    string
	PricesFile   string
	Timezone     string
	K            int
	CacheTTL     time.Duration
	Once         bool
	ReportDir    string
	// Latest-summary sinks
	PublishLatest  string // file|kafka|both
	KafkaBootstrap string
	TopicLatest    string
}

func main() {
	cfg := readFlags()
	if err := run(cfg); err != nil {
		log.Fatalf("reportd failed: %v", err)
	}
}

func readFlags() Config {
	var cfg Config
	flag.StringVar(&cfg.Listen, "listen", ":8080", "http listen address")
	flag.StringVar(&cfg.StoreBackend, "store", "sqlite", "order store backend: memory|sqlite|pebble")
	flag.StringVar(&cfg.SQLiteDSN, "sqlite-dsn", "./orders.db", "sqlite database path")
	flag.StringVar(&cfg.PebbleDir, "pebble-dir", "./data/orders", "pebble data directory")
	flag.StringVar(&cfg.PricesFile, "prices", "", "price table yaml (defaults when empty)")
	flag.StringVar(&cfg.Timezone, "tz", "America/Sao_Paulo", "reference timezone for temporal series")
	flag.IntVar(&cfg.K, "k", 3, "buyer segment count")
	flag.DurationVar(&cfg.CacheTTL, "cache-ttl", time.Minute, "report memoization ttl")
	flag.BoolVar(&cfg.Once, "once", false, "compute one report, publish it and exit")
	flag.StringVar(&cfg.ReportDir, "report-dir", "./reports", "directory for report bodies and latest.json")
	flag.StringVar(&cfg.PublishLatest, "publish-latest", "file", "latest summary sink: file|kafka|both")
	flag.StringVar(&cfg.KafkaBootstrap, "kafka-bootstrap", envOr("SALESPIPE_KAFKA_BOOTSTRAP", ""), "kafka bootstrap servers, e.g. localhost:9092")
	flag.StringVar(&cfg.TopicLatest, "topic-latest", "salespipe.report-latest", "kafka topic for the latest summary (compacted)")
	flag.Parse()
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func openStore(cfg Config) (store.Store, func() error, error) {
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
	log.Printf("starting reportd store=%s tz=%s k=%d cache-ttl=%s", cfg.StoreBackend, cfg.Timezone, cfg.K, cfg.CacheTTL)

	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	prices := pricing.Default()
	if cfg.PricesFile != "" {
		if prices, err = pricing.LoadFile(cfg.PricesFile); err != nil {
			return fmt.Errorf("load prices: %w", err)
		}
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	mreg := metrics.NewRegistry()
	pipe := pipeline.New(st, pipeline.Options{
		Prices:   prices,
		Location: loc,
		K:        cfg.K,
		Metrics:  mreg,
	})
	runner := pipeline.NewRunner(pipe, 8, cfg.CacheTTL)

	fsExport := export.NewFilesystemExport(cfg.ReportDir)
	var latest export.Publisher = fsExport
	if (cfg.PublishLatest == "kafka" || cfg.PublishLatest == "both") && cfg.KafkaBootstrap != "" {
		k := export.NewKafkaExport(cfg.KafkaBootstrap, cfg.TopicLatest, "salespipe-report-latest")
		if cfg.PublishLatest == "kafka" {
			latest = k
		} else {
			latest = export.MultiPublisher(fsExport, k)
		}
	}

	publish := func(rep *pipeline.Report) error {
		if err := fsExport.WriteReport(rep.ReportID, rep); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		s := export.Summary{
			ReportID:     rep.ReportID,
			GeneratedAt:  rep.GeneratedAt.Unix(),
			TotalItems:   rep.TotalItems,
			RevenueCents: rep.RevenueCents,
			Buyers:       len(rep.Profiles),
		}
		if err := latest.PublishLatest(s); err != nil {
			return fmt.Errorf("publish latest: %w", err)
		}
		return nil
	}

	if cfg.Once {
		rep, err := pipe.Run(context.Background())
		if err != nil {
			return err
		}
		if err := publish(rep); err != nil {
			return err
		}
		log.Printf("report %s published: items=%d revenue=%d buyers=%d", rep.ReportID, rep.TotalItems, rep.RevenueCents, len(rep.Profiles))
		return nil
	}

	http.Handle("/metrics", mreg.Handler())
	http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
	})
	http.HandleFunc("/report", func(w http.ResponseWriter, r *http.Request) {
		rep, err := runner.Report(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if err := publish(rep); err != nil {
			log.Printf("publish report %s: %v", rep.ReportID, err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rep)
	})
	http.HandleFunc("/report/latest", func(w http.ResponseWriter, r *http.Request) {
		s, err := fsExport.ReadLatest()
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s)
	})

	log.Printf("listening on %s", cfg.Listen)
	return http.ListenAndServe(cfg.Listen, nil)
}
