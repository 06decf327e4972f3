// Package export publishes finished reports: the full report body to a
// directory tree, and a small "latest" summary record other systems can
// poll from a file or a compacted Kafka topic.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/segmentio/kafka-go"

	"salespipe/internal/feed"
)

// Summary is the pointer record for the most recent report.
type Summary struct {
	ReportID     string `json:"reportId"`
	GeneratedAt  int64  `json:"generatedAt"`
	TotalItems   int    `json:"totalItems"`
	RevenueCents int64  `json:"revenueCents"`
	Buyers       int    `json:"buyers"`
}

type Publisher interface {
	PublishLatest(s Summary) error
}

// MultiPublisherImpl writes to multiple publishers sequentially.
type MultiPublisherImpl struct {
	pubs []Publisher
}

func MultiPublisher(pubs ...Publisher) Publisher {
	return &MultiPublisherImpl{pubs: pubs}
}

func (m *MultiPublisherImpl) PublishLatest(s Summary) error {
	for _, p := range m.pubs {
		if err := p.PublishLatest(s); err != nil {
			return err
		}
	}
	return nil
}

type FilesystemExport struct {
	baseDir string
}

func NewFilesystemExport(baseDir string) *FilesystemExport {
	return &FilesystemExport{baseDir: baseDir}
}

// WriteReport persists the full report body under <baseDir>/<id>/report.json.
func (f *FilesystemExport) WriteReport(id string, report any) error {
	dir := filepath.Join(f.baseDir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	out, err := os.Create(filepath.Join(dir, "report.json"))
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	defer out.Close()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

func (f *FilesystemExport) PublishLatest(s Summary) error {
	if err := os.MkdirAll(f.baseDir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	out, err := os.Create(filepath.Join(f.baseDir, "latest.json"))
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	defer out.Close()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&s); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func (f *FilesystemExport) ReadLatest() (Summary, error) {
	data, err := os.ReadFile(filepath.Join(f.baseDir, "latest.json"))
	if err != nil {
		return Summary{}, fmt.Errorf("read latest: %w", err)
	}
	var s Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return Summary{}, fmt.Errorf("unmarshal latest: %w", err)
	}
	return s, nil
}

// KafkaExport publishes the latest summary as a compacted Kafka record.
type KafkaExport struct {
	writer kafkaMessageWriter
	key    []byte
}

// kafkaMessageWriter abstracts kafka.Writer for testability.
type kafkaMessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// NewKafkaExport creates a Kafka summary publisher. bootstrap can be
// comma-separated brokers. key is typically "salespipe-report-latest".
func NewKafkaExport(bootstrap string, topic string, key string) *KafkaExport {
	return &KafkaExport{writer: &kafka.Writer{
		Addr:         kafka.TCP(feed.SplitBrokers(bootstrap)...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
	}, key: []byte(key)}
}

// NewKafkaExportWith is only for tests to inject a fake writer.
func NewKafkaExportWith(w kafkaMessageWriter, key string) *KafkaExport {
	return &KafkaExport{writer: w, key: []byte(key)}
}

func (k *KafkaExport) PublishLatest(s Summary) error {
	b, err := json.Marshal(&s)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return k.writer.WriteMessages(context.Background(), kafka.Message{Key: k.key, Value: b})
}
