package jobs

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadRegistryYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "streets-gazdagret.overpassql"), "[out:csv(::id, name)];way;out;")
	file := filepath.Join(dir, "jobs.yaml")
	writeFile(t, file, `
jobs:
  - id: streets-gazdagret
    name: Gazdagrét streets
    query_file: streets-gazdagret.overpassql
    output: streets-gazdagret.csv
    refresh_interval_seconds: 600
  - id: housenumbers-gazdagret
    query_file: housenumbers.overpassql
    output: street-housenumbers-gazdagret.csv
    enabled: false
`)

	reg, err := LoadRegistry(file)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if len(reg.All()) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(reg.All()))
	}
	enabled := reg.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "streets-gazdagret" {
		t.Fatalf("unexpected enabled jobs %#v", enabled)
	}

	job, ok := reg.ByID("streets-gazdagret")
	if !ok {
		t.Fatalf("expected job to be indexed")
	}
	if job.RefreshInterval() != 10*time.Minute {
		t.Fatalf("unexpected refresh interval %v", job.RefreshInterval())
	}
	query, err := job.ReadQuery()
	if err != nil {
		t.Fatalf("ReadQuery: %v", err)
	}
	if query != "[out:csv(::id, name)];way;out;" {
		t.Fatalf("unexpected query %q", query)
	}

	other, _ := reg.ByID("housenumbers-gazdagret")
	if other.Name != "housenumbers-gazdagret" {
		t.Fatalf("name should default to id, got %q", other.Name)
	}
	if other.RefreshInterval() != time.Hour {
		t.Fatalf("unexpected default refresh interval %v", other.RefreshInterval())
	}
}

func TestLoadRegistryJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "jobs.json")
	writeFile(t, file, `{"jobs":[{"id":"a","query_file":"/abs/a.txt","output":"a.csv"}]}`)

	reg, err := LoadRegistry(file)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	job, _ := reg.ByID("a")
	if job.QueryFile != "/abs/a.txt" {
		t.Fatalf("absolute query file should be kept, got %q", job.QueryFile)
	}
}

func TestLoadRegistryDuplicateID(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "jobs.yaml")
	writeFile(t, file, `
jobs:
  - id: dup
    query_file: a
    output: a.csv
  - id: dup
    query_file: b
    output: b.csv
`)
	if _, err := LoadRegistry(file); err == nil {
		t.Fatalf("expected duplicate job error, got nil")
	}
}

func TestLoadRegistryRejectsEscapingOutput(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "jobs.yaml")
	writeFile(t, file, `
jobs:
  - id: bad
    query_file: a
    output: ../../etc/passwd
`)
	if _, err := LoadRegistry(file); err == nil {
		t.Fatalf("expected error for output outside workdir")
	}
}
