package recordstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"montage/internal/record"
	"montage/internal/services"
)

const sampleJSON = `{
  "guitar_acoustic_010-060-050": {"pitch": 60, "velocity": 50, "instrument_family_str": "guitar", "qualities_str": ["bright"]},
  "bass_synthetic_033-022-100": {"pitch": 22, "velocity": 100.0, "instrument_family_str": "bass", "qualities_str": []}
}`

const sampleYAML = `
guitar_acoustic_010-060-050:
  pitch: 60
  velocity: 50
  instrument_family_str: guitar
  qualities_str: [bright]
bass_synthetic_033-022-100:
  pitch: 22
  velocity: 100.0
  instrument_family_str: bass
  qualities_str: []
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestDetectKind(t *testing.T) {
	tests := []struct {
		location string
		want     Kind
		wantErr  bool
	}{
		{location: "examples.json", want: KindJSON},
		{location: "meta.YAML", want: KindYAML},
		{location: "meta.yml", want: KindYAML},
		{location: "cache.db", want: KindSQLite},
		{location: "cache.sqlite", want: KindSQLite},
		{location: "postgres://user@localhost/montage", want: KindPostgres},
		{location: "postgresql://localhost/montage", want: KindPostgres},
		{location: "records.csv", wantErr: true},
		{location: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := DetectKind(tt.location)
		if tt.wantErr {
			if !errors.Is(err, ErrUnsupportedStore) {
				t.Fatalf("DetectKind(%q) err = %v, want ErrUnsupportedStore", tt.location, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("DetectKind(%q) = %q, %v; want %q", tt.location, got, err, tt.want)
		}
	}
}

func assertSample(t *testing.T, records []record.Record) {
	t.Helper()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Key != "bass_synthetic_033-022-100" || records[1].Key != "guitar_acoustic_010-060-050" {
		t.Fatalf("records not in key order: %v", record.Keys(records))
	}
	velocity, ok := records[0].Field("velocity")
	if !ok || velocity.Kind() != record.KindNumber || velocity.Text() != "100.0" {
		t.Fatalf("velocity = %q (%s), want literal 100.0", velocity.Text(), velocity.Kind())
	}
	family, _ := records[1].Field("instrument_family_str")
	if family.Kind() != record.KindString || family.Text() != "guitar" {
		t.Fatalf("family = %q (%s)", family.Text(), family.Kind())
	}
	qualities, _ := records[1].Field("qualities_str")
	if qualities.Kind() != record.KindList || !qualities.Contains("bright") {
		t.Fatalf("qualities = %v", qualities.Items())
	}
	empty, _ := records[0].Field("qualities_str")
	if empty.Kind() != record.KindList || len(empty.Items()) != 0 {
		t.Fatalf("expected empty list, got %v (%s)", empty.Items(), empty.Kind())
	}
}

func TestLoadJSON(t *testing.T) {
	records, err := Load(context.Background(), writeFile(t, "examples.json", sampleJSON))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertSample(t, records)
}

func TestLoadYAMLPreservesNumberLiterals(t *testing.T) {
	records, err := Load(context.Background(), writeFile(t, "examples.yaml", sampleYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertSample(t, records)
}

func TestLoadMissingFileIsNotFound(t *testing.T) {
	for _, name := range []string{"missing.json", "missing.yaml", "missing.db", "missing.sqlite"} {
		t.Run(name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "nested")
			path := filepath.Join(dir, name)
			_, err := Load(context.Background(), path)
			if !errors.Is(err, services.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			if _, statErr := os.Stat(dir); !os.IsNotExist(statErr) {
				t.Fatalf("loading must not create %s (stat err %v)", dir, statErr)
			}
		})
	}
}

func TestLoadRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{name: "json array", file: "a.json", body: `[1, 2]`},
		{name: "json null field", file: "b.json", body: `{"k": {"pitch": null}}`},
		{name: "json nested list", file: "c.json", body: `{"k": {"q": [[1]]}}`},
		{name: "json trailing", file: "d.json", body: `{"k": {}} {}`},
		{name: "yaml sequence root", file: "e.yaml", body: "- a\n- b\n"},
		{name: "yaml mapping field", file: "f.yaml", body: "k:\n  meta:\n    a: 1\n"},
		{name: "yaml duplicate key", file: "g.yaml", body: "k:\n  a: 1\nk:\n  a: 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(context.Background(), writeFile(t, tt.file, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !services.IsConfiguration(err) {
				t.Fatalf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestOpenImporterRejectsFileStores(t *testing.T) {
	_, err := OpenImporter(context.Background(), "examples.json")
	if !services.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestSQLiteImportReplacesContents(t *testing.T) {
	ctx := context.Background()
	source, err := Load(ctx, writeFile(t, "examples.json", sampleJSON))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	path := filepath.Join(t.TempDir(), "cache", "records.db")
	store, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := store.Import(ctx, source); err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n, err := store.Count(ctx); err != nil || n != 2 {
		t.Fatalf("Count = %d, %v; want 2", n, err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	records, err := Load(ctx, path)
	if err != nil {
		t.Fatalf("Load sqlite: %v", err)
	}
	assertSample(t, records)

	store, err = OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()
	if err := store.Import(ctx, source[:1]); err != nil {
		t.Fatalf("reimport: %v", err)
	}
	if n, _ := store.Count(ctx); n != 1 {
		t.Fatalf("Count after reimport = %d, want 1", n)
	}
}

func TestSQLiteSchemaMismatch(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "records.db")
	store, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if _, err := store.db.ExecContext(ctx, "UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = store.Close()

	_, err = OpenSQLite(ctx, path)
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
