package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindConfigFileExplicitMissing(t *testing.T) {
	if _, err := FindConfigFile("/no/such/file.yml"); err == nil {
		t.Fatalf("expected an error for a missing explicit config file")
	}
}

func TestLoadExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rc.yml")
	contents := "defaultShell: /bin/zsh\nhistoryFile: /tmp/hist\npollIntervalMs: 500\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DefaultShell != "/bin/zsh" {
		t.Fatalf("got %q", cfg.DefaultShell)
	}
	if cfg.PollIntervalMS != 500 {
		t.Fatalf("got %d", cfg.PollIntervalMS)
	}
}

func TestLoadNoFileReturnsDefault(t *testing.T) {
	t.Setenv("USHELL_CONFIG", "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DefaultShell == "" {
		t.Fatalf("expected a default shell to be set")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "rc.yml")

	cfg := Default()
	cfg.DefaultShell = "/bin/fish"
	if err := Save(cfg, path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.DefaultShell != "/bin/fish" {
		t.Fatalf("got %q", loaded.DefaultShell)
	}
}
