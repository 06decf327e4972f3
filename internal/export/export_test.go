package export

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/segmentio/kafka-go"
)

func TestPublishAndReadLatest(t *testing.T) {
	dir := t.TempDir()
	e := NewFilesystemExport(dir)
	s := Summary{ReportID: "r-123", GeneratedAt: 1750000000, TotalItems: 7, RevenueCents: 120500, Buyers: 3}
	if err := e.PublishLatest(s); err != nil {
		t.Fatalf("PublishLatest error: %v", err)
	}
	got, err := e.ReadLatest()
	if err != nil {
		t.Fatalf("ReadLatest error: %v", err)
	}
	if got != s {
		t.Fatalf("latest = %+v, want %+v", got, s)
	}
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	e := NewFilesystemExport(dir)
	body := map[string]int{"totalItems": 7}
	if err := e.WriteReport("r-123", body); err != nil {
		t.Fatalf("WriteReport error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "r-123", "report.json"))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var got map[string]int
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal report: %v", err)
	}
	if got["totalItems"] != 7 {
		t.Fatalf("report body = %v", got)
	}
}

func TestMultiPublisher(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()
	a, b := NewFilesystemExport(dirA), NewFilesystemExport(dirB)
	pub := MultiPublisher(a, b)
	if err := pub.PublishLatest(Summary{ReportID: "r-9"}); err != nil {
		t.Fatalf("PublishLatest error: %v", err)
	}
	for _, e := range []*FilesystemExport{a, b} {
		got, err := e.ReadLatest()
		if err != nil {
			t.Fatalf("ReadLatest error: %v", err)
		}
		if got.ReportID != "r-9" {
			t.Fatalf("latest = %+v", got)
		}
	}
}

// fakeKafkaWriter implements kafkaMessageWriter for tests
type fakeKafkaWriter struct {
	msgs []kafka.Message
	fail bool
}

func (f *fakeKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.fail {
		return errors.New("fail")
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func TestKafkaExport_PublishLatest_Success(t *testing.T) {
	fk := &fakeKafkaWriter{}
	ke := NewKafkaExportWith(fk, "salespipe-report-latest")
	if err := ke.PublishLatest(Summary{ReportID: "r-abc", TotalItems: 2}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(fk.msgs) != 1 {
		t.Fatalf("want 1 msg, got %d", len(fk.msgs))
	}
	if string(fk.msgs[0].Key) != "salespipe-report-latest" {
		t.Fatalf("bad key: %s", string(fk.msgs[0].Key))
	}
	var got Summary
	if err := json.Unmarshal(fk.msgs[0].Value, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ReportID != "r-abc" || got.TotalItems != 2 {
		t.Fatalf("summary = %+v", got)
	}
}

func TestKafkaExport_PublishLatest_Fail(t *testing.T) {
	fk := &fakeKafkaWriter{fail: true}
	ke := NewKafkaExportWith(fk, "salespipe-report-latest")
	if err := ke.PublishLatest(Summary{ReportID: "r-abc"}); err == nil {
		t.Fatalf("expected error")
	}
}
