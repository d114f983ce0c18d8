package project

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultMaxDiagnostics caps the diagnostic bag when neither the manifest nor
// the command line sets a limit.
const DefaultMaxDiagnostics = 100

var (
	// ErrPackageSectionMissing indicates that [package] is missing.
	ErrPackageSectionMissing = errors.New("missing [package]")
	// ErrPackageNameMissing indicates that [package].name is missing.
	ErrPackageNameMissing = errors.New("missing [package].name")
	// ErrMainMissing indicates that [build].main is missing.
	ErrMainMissing = errors.New("missing [build].main")
)

// Config mirrors quill.toml.
type Config struct {
	Package PackageConfig `toml:"package"`
	Build   BuildConfig   `toml:"build"`
}

type PackageConfig struct {
	Name string `toml:"name"`
}

type BuildConfig struct {
	Main           string `toml:"main"`
	Legacy         bool   `toml:"legacy"`
	MaxDiagnostics int    `toml:"max_diagnostics"`
}

// Manifest is a loaded quill.toml together with its location.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// MainPath returns the absolute path of the entry file.
func (m *Manifest) MainPath() string {
	main := filepath.FromSlash(m.Config.Build.Main)
	if filepath.IsAbs(main) {
		return main
	}
	return filepath.Join(m.Root, main)
}

// LoadManifest walks up from startDir and decodes the first quill.toml found.
// ok is false when there is no manifest at all.
func LoadManifest(startDir string) (manifest *Manifest, ok bool, err error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, true, nil
}

// LoadConfig decodes and validates the manifest at path.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if err := validate(meta, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// DecodeConfig is LoadConfig over an in-memory document.
func DecodeConfig(data string) (Config, error) {
	var cfg Config
	meta, err := toml.Decode(data, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if err := validate(meta, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(meta toml.MetaData, cfg *Config) error {
	if !meta.IsDefined("package") {
		return ErrPackageSectionMissing
	}
	cfg.Package.Name = strings.TrimSpace(cfg.Package.Name)
	if cfg.Package.Name == "" {
		return ErrPackageNameMissing
	}
	cfg.Build.Main = strings.TrimSpace(cfg.Build.Main)
	if !meta.IsDefined("build", "main") || cfg.Build.Main == "" {
		return ErrMainMissing
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	switch {
	case cfg.Build.MaxDiagnostics < 0:
		return fmt.Errorf("invalid [build].max_diagnostics %d", cfg.Build.MaxDiagnostics)
	case cfg.Build.MaxDiagnostics == 0:
		cfg.Build.MaxDiagnostics = DefaultMaxDiagnostics
	}
	return nil
}

// Skeleton renders the quill.toml written by `quill init`.
func Skeleton(name, main string) ([]byte, error) {
	cfg := Config{
		Package: PackageConfig{Name: name},
		Build:   BuildConfig{Main: main, MaxDiagnostics: DefaultMaxDiagnostics},
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
