// Package config implements the shell's typed configuration (C): a
// read-mostly record loaded once at startup from an rc-style YAML
// file, grounded on the teacher's WorkspaceConfig load/save pair and
// FindConfigFile search-path walk.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/phillarmonic/ushell/internal/secrets"
)

// CacheSizes holds the bounded LRU cache capacities the expansion
// engine's caches use.
type CacheSizes struct {
	ArgSplit   int `yaml:"argSplit"`
	ExecResolve int `yaml:"execResolve"`
	Arithmetic int `yaml:"arithmetic"`
}

// Config is the shell's typed, read-mostly configuration record.
type Config struct {
	DefaultShell     string     `yaml:"defaultShell"`
	HistoryFile      string     `yaml:"historyFile"`
	SandboxAllow     []string   `yaml:"sandboxAllow"`
	SubstitutionMode string     `yaml:"substitutionMode"`
	PollIntervalMS   int        `yaml:"pollIntervalMs"`
	CacheSizes       CacheSizes `yaml:"cacheSizes"`
	RCFile           string     `yaml:"rcFile"`
	AliasesFile      string     `yaml:"aliasesFile"`
	ProfileBundle    string     `yaml:"profileBundle"`
}

// defaultLocations returns the home-directory rc path
// (~/.ushellrc.yml), the last step of FindConfigFile's search order
// after an explicit path and $USHELL_CONFIG.
func defaultLocations() []string {
	var locs []string
	if home, err := os.UserHomeDir(); err == nil {
		locs = append(locs, filepath.Join(home, ".ushellrc.yml"))
	}
	return locs
}

// Default returns the configuration used when no rc file is found.
func Default() *Config {
	return &Config{
		DefaultShell:     "/bin/sh",
		HistoryFile:      "~/.ushell_history",
		SubstitutionMode: "sandboxed",
		PollIntervalMS:   1000,
		CacheSizes: CacheSizes{
			ArgSplit:    200,
			ExecResolve: 500,
			Arithmetic:  500,
		},
	}
}

// FindConfigFile resolves which rc file to load: an explicit path,
// then $USHELL_CONFIG, then ~/.ushellrc.yml, matching the teacher's
// "workspace file not found -> try defaults -> error" order. Returning
// ("", nil) is not an error: the caller falls back to Default().
func FindConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("specified config file %q not found", explicit)
		}
		return explicit, nil
	}

	if envPath := os.Getenv("USHELL_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("$USHELL_CONFIG file %q not found", envPath)
		}
		return envPath, nil
	}

	for _, loc := range defaultLocations() {
		if info, err := os.Stat(loc); err == nil && !info.IsDir() {
			return loc, nil
		}
	}
	return "", nil
}

// Load reads and parses the rc file at path, resolving any
// `secret:<namespace>/<key>` values against the OS keychain via
// internal/secrets before returning. A missing explicit path is an
// error; no path found at all is not (the caller should use Default()).
func Load(explicit string) (*Config, error) {
	path, err := FindConfigFile(explicit)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %q: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %q: %w", path, err)
	}

	if err := resolveSecrets(cfg); err != nil {
		return nil, err
	}

	if cfg.ProfileBundle != "" {
		if err := applyProfileBundle(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// applyProfileBundle extracts cfg.ProfileBundle (a `.tar.gz`/`.zip`
// archive distributed as a team's rc bundle) and overlays what it
// contains onto cfg: an included config.yml overrides fields it sets,
// and an included rc script/alias file become cfg.RCFile/AliasesFile
// when the loaded config didn't already name one of its own, so a
// caller that only set `profileBundle:` still ends up with a runnable
// RCFile/AliasesFile without repeating them in its own rc file.
func applyProfileBundle(cfg *Config) error {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	extractTo := filepath.Join(home, ".ushell", "profile-bundle")

	bundle, err := LoadProfileBundle(cfg.ProfileBundle, extractTo)
	if err != nil {
		return fmt.Errorf("loading profile bundle %q: %w", cfg.ProfileBundle, err)
	}

	if bundle.Config != "" {
		data, err := os.ReadFile(bundle.Config)
		if err != nil {
			return fmt.Errorf("reading profile bundle config %q: %w", bundle.Config, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parsing profile bundle config %q: %w", bundle.Config, err)
		}
	}
	if bundle.RCScript != "" && cfg.RCFile == "" {
		cfg.RCFile = bundle.RCScript
	}
	if bundle.Aliases != "" && cfg.AliasesFile == "" {
		cfg.AliasesFile = bundle.Aliases
	}
	return nil
}

// Save writes cfg back to path as YAML, mirroring saveWorkspaceConfig.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory %q: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file %q: %w", path, err)
	}
	return nil
}

// resolveSecrets rewrites every `secret:<namespace>/<key>` value
// reachable from cfg's string fields in place, fetching each one from
// the OS keychain (or its headless fallback) through secrets.Manager.
func resolveSecrets(cfg *Config) error {
	fields := []*string{&cfg.DefaultShell, &cfg.HistoryFile, &cfg.RCFile, &cfg.AliasesFile, &cfg.ProfileBundle}
	needsResolve := false
	for _, f := range fields {
		if strings.HasPrefix(*f, "secret:") {
			needsResolve = true
			break
		}
	}
	if !needsResolve {
		return nil
	}

	mgr, err := secrets.NewManager()
	if err != nil {
		return fmt.Errorf("initializing secret manager: %w", err)
	}

	for _, f := range fields {
		if !strings.HasPrefix(*f, "secret:") {
			continue
		}
		resolved, err := resolveSecretRef(mgr, *f)
		if err != nil {
			return err
		}
		*f = resolved
	}
	return nil
}

func resolveSecretRef(mgr secrets.Manager, ref string) (string, error) {
	path := strings.TrimPrefix(ref, "secret:")
	namespace, key, ok := strings.Cut(path, "/")
	if !ok {
		return "", fmt.Errorf("invalid secret reference %q: expected secret:<namespace>/<key>", ref)
	}
	value, err := mgr.Get(namespace, key)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", ref, err)
	}
	return value, nil
}
