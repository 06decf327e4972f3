package pricing

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPriceFor_KnownAndUnknown(t *testing.T) {
	r := Default()
	if got := r.Merch.PriceFor("Jogador"); got != 15000 {
		t.Fatalf("Jogador: got=%d", got)
	}
	if got := r.Merch.PriceFor(" Torcedor "); got != 11500 {
		t.Fatalf("trimmed lookup: got=%d", got)
	}
	if got := r.Merch.PriceFor("Goleiro"); got != 0 {
		t.Fatalf("unknown category should be 0: got=%d", got)
	}
	if got := r.Tickets.PriceFor(""); got != 0 {
		t.Fatalf("empty category should be 0: got=%d", got)
	}
	var nilTable Table
	if got := nilTable.PriceFor("Confra"); got != 0 {
		t.Fatalf("nil table should be 0: got=%d", got)
	}
}

func TestLoadFile_MissingUsesDefaults(t *testing.T) {
	r, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if r.Tickets.PriceFor("Confra") != 7500 {
		t.Fatalf("defaults not applied: %+v", r)
	}
}

func TestLoadFile_OverridesTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prices.yaml")
	body := "merch:\n  Jogador: 16000\n  Torcedor: 12000\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	r, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got := r.Merch.PriceFor("Jogador"); got != 16000 {
		t.Fatalf("override not applied: got=%d", got)
	}
	// Untouched tables keep their defaults.
	if got := r.Tickets.PriceFor("Copo"); got != 4000 {
		t.Fatalf("tickets table should keep defaults: got=%d", got)
	}
}
