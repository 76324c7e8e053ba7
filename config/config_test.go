package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "mesh_simplifier_config")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "config.yaml")
	data := []byte("addr: \":9000\"\ndefault_options: \"ratio=0.5 lock_border\"\noverdraw_threshold: 1.05\n")
	if err := ioutil.WriteFile(path, data, 0666); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":9000" {
		t.Errorf("addr %q; expected :9000", cfg.Addr)
	}
	if cfg.DefaultOptions != "ratio=0.5 lock_border" {
		t.Errorf("default_options %q", cfg.DefaultOptions)
	}
	if cfg.OverdrawThreshold != 1.05 {
		t.Errorf("overdraw_threshold %v; expected 1.05", cfg.OverdrawThreshold)
	}
}

func TestLoadFromFilePartial(t *testing.T) {
	dir, err := ioutil.TempDir("", "mesh_simplifier_config")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "config.yaml")
	if err := ioutil.WriteFile(path, []byte("addr: \":7000\"\n"), 0666); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":7000" {
		t.Errorf("addr %q; expected :7000", cfg.Addr)
	}
	// untouched fields keep their defaults
	if cfg.OverdrawThreshold != Default().OverdrawThreshold {
		t.Errorf("overdraw_threshold %v; expected default", cfg.OverdrawThreshold)
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	if _, err := LoadFromFile("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}
