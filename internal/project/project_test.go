package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDecodeConfig(t *testing.T) {
	cfg, err := DecodeConfig(`
[package]
name = " demo "

[build]
main = "src/main.qs"
legacy = true
`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Package.Name != "demo" || cfg.Build.Main != "src/main.qs" || !cfg.Build.Legacy {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Build.MaxDiagnostics != DefaultMaxDiagnostics {
		t.Fatalf("max diagnostics = %d, want default", cfg.Build.MaxDiagnostics)
	}
}

func TestDecodeConfigErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want error
	}{
		{"no package", "[build]\nmain = \"a.qs\"\n", ErrPackageSectionMissing},
		{"no name", "[package]\n[build]\nmain = \"a.qs\"\n", ErrPackageNameMissing},
		{"no main", "[package]\nname = \"x\"\n", ErrMainMissing},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeConfig(tc.doc)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
	if _, err := DecodeConfig("[package]\nname = \"x\"\n[build]\nmain = \"a.qs\"\njobs = 4\n"); err == nil {
		t.Fatalf("expected unknown key error")
	}
	if _, err := DecodeConfig("[package]\nname = \"x\"\n[build]\nmain = \"a.qs\"\nmax_diagnostics = -1\n"); err == nil {
		t.Fatalf("expected max_diagnostics error")
	}
}

func TestSkeletonRoundTrip(t *testing.T) {
	data, err := Skeleton("demo", "main.qs")
	if err != nil {
		t.Fatalf("skeleton: %v", err)
	}
	cfg, err := DecodeConfig(string(data))
	if err != nil {
		t.Fatalf("decode skeleton: %v\n%s", err, data)
	}
	if cfg.Package.Name != "demo" || cfg.Build.Main != "main.qs" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadManifestWalksUp(t *testing.T) {
	root := t.TempDir()
	data, err := Skeleton("demo", "src/main.qs")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, ManifestName), data, 0o600); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "src", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	m, ok, err := LoadManifest(nested)
	if err != nil || !ok {
		t.Fatalf("LoadManifest: ok=%v err=%v", ok, err)
	}
	if want := filepath.Join(root, "src", "main.qs"); m.MainPath() != want {
		t.Fatalf("MainPath = %q, want %q", m.MainPath(), want)
	}
	if got, ok, _ := FindProjectRoot(nested); !ok || got != root {
		t.Fatalf("FindProjectRoot = %q, %v", got, ok)
	}
}

func TestResolveImport(t *testing.T) {
	from := filepath.Join(string(filepath.Separator), "p", "src", "main.qs")
	got, err := ResolveImport(from, "lib/util")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(string(filepath.Separator), "p", "src", "lib", "util.qs"); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	got, _ = ResolveImport(from, "../core.qs")
	if want := filepath.Join(string(filepath.Separator), "p", "core.qs"); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if _, err := ResolveImport(from, "  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestDigests(t *testing.T) {
	a := Digest{1}
	b := Digest{2}
	if Combine(a, b) == Combine(b, a) {
		t.Fatalf("Combine must depend on order")
	}
	if Combine(a, b) != Combine(a, b) {
		t.Fatalf("Combine must be deterministic")
	}
	if !ContentDigest().IsZero() {
		t.Fatalf("empty content digest must be zero")
	}
	if ContentDigest([32]byte(a)) != Combine(a) {
		t.Fatalf("single-file digest mismatch")
	}
}
