package project

import (
	"path/filepath"
	"testing"
)

func TestNewNormalizesName(t *testing.T) {
	p := New("  coastal soils 2024 ", t.TempDir())
	if p.Name != "coastal_soils_2024" {
		t.Fatalf("name = %q", p.Name)
	}
	if p.LogFile != "coastal_soils_2024_analysis_log.csv" {
		t.Fatalf("log file = %q", p.LogFile)
	}
	if p.ID == "" {
		t.Fatal("missing id")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "demo")
	p := New("demo", dir)
	p.AddSource("raw_20240614.csv")
	p.AddSource("raw_20240614.csv") // dedup
	p.AddSource("raw_20240620.csv")
	if err := p.Save(); err != nil {
		t.Fatal(err)
	}

	got, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != p.ID || got.Name != "demo" || got.LogFile != p.LogFile {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if len(got.Sources) != 2 {
		t.Fatalf("sources = %v", got.Sources)
	}
	if got.RootDir() != dir {
		t.Fatalf("root dir = %q", got.RootDir())
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing project")
	}
}

func TestList(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"alpha", "beta"} {
		p := New(name, filepath.Join(root, name))
		if err := p.Save(); err != nil {
			t.Fatal(err)
		}
	}
	// a stray directory without project.json is not a project
	p := New("stray", filepath.Join(root, "stray"))
	_ = p // never saved

	names, err := List(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "alpha" || names[1] != "beta" {
		t.Fatalf("names = %v", names)
	}

	empty, err := List(filepath.Join(root, "missing"))
	if err != nil || empty != nil {
		t.Fatalf("missing dir: %v %v", empty, err)
	}
}
