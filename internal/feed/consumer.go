// Package feed consumes raw order submissions from Kafka, one topic per
// dataset, and lands them in a store. Malformed records are counted,
// committed and skipped; a single bad submission must never stall the
// partition.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/segmentio/kafka-go"

	"salespipe/internal/metrics"
	"salespipe/internal/model"
	"salespipe/internal/store"
)

// messageFetcher abstracts kafka.Reader for testability.
type messageFetcher interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer pulls one dataset's topic into the store.
type Consumer struct {
	dataset model.Dataset
	fetcher messageFetcher
	sink    store.Putter
	met     *metrics.Registry
}

func NewConsumer(brokers []string, topic, groupID string, d model.Dataset, sink store.Putter, met *metrics.Registry) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return NewConsumerWith(r, d, sink, met)
}

// NewConsumerWith injects the fetcher, used by tests.
func NewConsumerWith(f messageFetcher, d model.Dataset, sink store.Putter, met *metrics.Registry) *Consumer {
	return &Consumer{dataset: d, fetcher: f, sink: sink, met: met}
}

func (c *Consumer) Close() error { return c.fetcher.Close() }

// Run fetches until the context is canceled. Records are committed only
// after the store accepted them; store failures leave the offset
// uncommitted for redelivery. Garbage payloads are committed so the
// partition keeps moving.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.fetcher.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("fetch %s: %w", c.dataset, err)
		}
		put, err := c.decode(msg)
		if err != nil {
			log.Printf("feed: %s offset=%d skipping malformed record: %v", c.dataset, msg.Offset, err)
			c.met.IntakeFailed.Inc()
		} else if err := put(ctx); err != nil {
			c.met.IntakeFailed.Inc()
			log.Printf("feed: %s offset=%d store rejected record: %v", c.dataset, msg.Offset, err)
			continue
		} else {
			c.met.IntakeConsumed.Inc()
		}
		if err := c.fetcher.CommitMessages(ctx, msg); err != nil {
			return fmt.Errorf("commit %s: %w", c.dataset, err)
		}
	}
}

// decode parses the payload into the dataset's order type. Records with
// no ID fall back to a partition/offset synthetic ID so replays stay
// idempotent.
func (c *Consumer) decode(msg kafka.Message) (func(context.Context) error, error) {
	fallback := fmt.Sprintf("%s-%d-%d", c.dataset, msg.Partition, msg.Offset)
	switch c.dataset {
	case model.Tickets:
		var o model.TicketOrder
		if err := json.Unmarshal(msg.Value, &o); err != nil {
			return nil, err
		}
		if o.ID == "" {
			o.ID = fallback
		}
		return func(ctx context.Context) error { return c.sink.PutTicketOrder(ctx, o) }, nil
	case model.Merchandise:
		var o model.MerchOrder
		if err := json.Unmarshal(msg.Value, &o); err != nil {
			return nil, err
		}
		if o.ID == "" {
			o.ID = fallback
		}
		return func(ctx context.Context) error { return c.sink.PutMerchOrder(ctx, o) }, nil
	case model.PartyTickets:
		var o model.PartyOrder
		if err := json.Unmarshal(msg.Value, &o); err != nil {
			return nil, err
		}
		if o.ID == "" {
			o.ID = fallback
		}
		return func(ctx context.Context) error { return c.sink.PutPartyOrder(ctx, o) }, nil
	}
	return nil, fmt.Errorf("unknown dataset %q", c.dataset)
}

// SplitBrokers parses a comma-separated bootstrap list.
func SplitBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
