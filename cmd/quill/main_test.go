package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"quill/internal/driver"
	"quill/internal/project"
)

func newTestCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "quill-test"}
	cmd.PersistentFlags().Int("max-diagnostics", 0, "")
	cmd.Flags().Bool("legacy", false, "")
	cmd.Flags().Int("jobs", 0, "")
	return cmd
}

func TestReadUIMode(t *testing.T) {
	cases := map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, " on ": uiModeOn, "off": uiModeOff}
	for in, want := range cases {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Fatalf("readUIMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Fatalf("expected error for invalid mode")
	}
}

func TestDriverOptionsLayering(t *testing.T) {
	manifest := &project.Manifest{Config: project.Config{
		Build: project.BuildConfig{Main: "main.qs", Legacy: true, MaxDiagnostics: 7},
	}}

	cmd := newTestCmd()
	opts, err := driverOptions(cmd, manifest)
	if err != nil {
		t.Fatalf("driverOptions: %v", err)
	}
	if !opts.Legacy || opts.MaxDiagnostics != 7 {
		t.Fatalf("manifest values not applied: %+v", opts)
	}

	cmd = newTestCmd()
	if err := cmd.Flags().Set("legacy", "false"); err != nil {
		t.Fatal(err)
	}
	if err := cmd.PersistentFlags().Set("max-diagnostics", "3"); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("jobs", "2"); err != nil {
		t.Fatal(err)
	}
	opts, err = driverOptions(cmd, manifest)
	if err != nil {
		t.Fatalf("driverOptions: %v", err)
	}
	if opts.Legacy || opts.MaxDiagnostics != 3 || opts.Jobs != 2 {
		t.Fatalf("flags must override the manifest: %+v", opts)
	}
}

func TestInitWritesCheckableProject(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "demo")
	cmd := newTestCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := runInit(cmd, []string{dir}); err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(out.String(), project.ManifestName) {
		t.Fatalf("unexpected output %q", out.String())
	}
	cfg, err := project.LoadConfig(filepath.Join(dir, project.ManifestName))
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	if cfg.Package.Name != "demo" || cfg.Build.Main != defaultMain {
		t.Fatalf("unexpected manifest %+v", cfg)
	}
	if err := runInit(cmd, []string{dir}); err == nil {
		t.Fatalf("second init must fail")
	}

	res, err := driver.NewSession(driver.Options{}).Check(context.Background(), filepath.Join(dir, defaultMain))
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.HasErrors() {
		t.Fatalf("generated project has errors: %+v", res.Bag.Items())
	}
}

func TestRenderResults(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.qs")
	if err := os.WriteFile(bad, []byte("int x = missing;\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	good := filepath.Join(dir, "good.qs")
	if err := os.WriteFile(good, []byte("int y = 1;\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	results, err := checkAll(context.Background(), driver.NewSession(driver.Options{}), []string{bad, good})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d", len(results))
	}

	var out, errOut bytes.Buffer
	failed, err := renderResults(&out, &errOut, results, diagSettings{format: "short", timings: true})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !failed {
		t.Fatalf("bad.qs must fail the run")
	}
	if !strings.Contains(out.String(), "bad.qs:1:") || !strings.Contains(out.String(), "error") {
		t.Fatalf("unexpected diagnostics %q", out.String())
	}
	if strings.Count(errOut.String(), "total") != 2 {
		t.Fatalf("expected one timing summary per program, got %q", errOut.String())
	}
}
