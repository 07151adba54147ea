package config

import (
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	// point at a file that does not exist so only defaults apply
	c, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if c.NewDataDir != "rawdata_new" || c.ArchiveDataDir != "rawdata_archive" || c.JunkDataDir != "rawdata_junk" {
		t.Fatalf("raw data dirs = %q %q %q", c.NewDataDir, c.ArchiveDataDir, c.JunkDataDir)
	}
	if c.ExhaustiveLogName != "CN_exhaustive_analysis_log.csv" {
		t.Fatalf("exhaustive log = %q", c.ExhaustiveLogName)
	}
	if c.SaturationMV != 49950.0 {
		t.Fatalf("saturation = %v", c.SaturationMV)
	}
	if c.QtycalFractionN != 0.0952 || c.QtycalFractionC != 0.4082 {
		t.Fatalf("qtycal fractions = %v / %v", c.QtycalFractionN, c.QtycalFractionC)
	}
	if c.MethodDir == "" || c.ProjectsDir == "" || c.ReferenceMaterialsFile == "" {
		t.Fatal("derived paths must be filled in")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	c.MethodDir = "/data/cn"
	c.ProjectsDir = ""
	c.SaturationMV = 48000
	c.BlankNames = []string{"blank", "BLANK"}
	if err := Save(c, path); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.MethodDir != "/data/cn" {
		t.Fatalf("method dir = %q", got.MethodDir)
	}
	if got.SaturationMV != 48000 {
		t.Fatalf("saturation = %v", got.SaturationMV)
	}
	if len(got.BlankNames) != 2 || got.BlankNames[1] != "BLANK" {
		t.Fatalf("blank names = %v", got.BlankNames)
	}
	// projects dir follows the method dir when not set explicitly
	if got.ProjectsDir != filepath.Join("/data/cn", "projects") {
		t.Fatalf("projects dir = %q", got.ProjectsDir)
	}
}
