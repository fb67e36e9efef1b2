package config

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

// writeTestBundle builds a minimal .zip profile bundle containing an
// rc script, an alias file, and a config.yml, the three well-known
// members LoadProfileBundle looks for.
func writeTestBundle(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "bundle.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	members := map[string]string{
		"rc":         "export TEAM_GREETING=hello\n",
		"aliases":    "alias ll='ls -l'\n",
		"config.yml": "defaultShell: /bin/dash\n",
	}
	for name, contents := range members {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(contents)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadProfileBundleExtractsWellKnownMembers(t *testing.T) {
	dir := t.TempDir()
	archivePath := writeTestBundle(t, dir)
	extractTo := filepath.Join(dir, "extracted")

	bundle, err := LoadProfileBundle(archivePath, extractTo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bundle.RCScript == "" {
		t.Fatal("expected RCScript to be populated")
	}
	if bundle.Aliases == "" {
		t.Fatal("expected Aliases to be populated")
	}
	if bundle.Config == "" {
		t.Fatal("expected Config to be populated")
	}

	data, err := os.ReadFile(bundle.Config)
	if err != nil {
		t.Fatalf("reading extracted config: %v", err)
	}
	if string(data) != "defaultShell: /bin/dash\n" {
		t.Fatalf("unexpected extracted config contents: %q", data)
	}
}

func TestLoadOverlaysProfileBundleOntoConfig(t *testing.T) {
	dir := t.TempDir()
	archivePath := writeTestBundle(t, dir)

	home := filepath.Join(dir, "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HOME", home)

	rcPath := filepath.Join(dir, "rc.yml")
	contents := "profileBundle: " + archivePath + "\n"
	if err := os.WriteFile(rcPath, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(rcPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DefaultShell != "/bin/dash" {
		t.Fatalf("expected the bundled config.yml to override defaultShell, got %q", cfg.DefaultShell)
	}
	if cfg.RCFile == "" {
		t.Fatal("expected RCFile to be populated from the bundle's rc script")
	}
	if cfg.AliasesFile == "" {
		t.Fatal("expected AliasesFile to be populated from the bundle's alias file")
	}
}
