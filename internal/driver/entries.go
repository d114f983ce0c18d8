package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"quill/internal/project"
)

// ErrNoManifest is returned by Entries when no argument is given and no
// quill.toml is found.
var ErrNoManifest = errors.New("no " + project.ManifestName + " found")

// Entries expands command-line arguments into entry files. Without
// arguments the manifest main file is used. A directory holding quill.toml
// contributes its main file, any other directory every .qs file below it.
// The first manifest seen is returned so callers can apply its settings.
func Entries(args []string) ([]string, *project.Manifest, error) {
	if len(args) == 0 {
		m, ok, err := project.LoadManifest(".")
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return nil, nil, ErrNoManifest
		}
		return []string{m.MainPath()}, m, nil
	}

	var (
		out      []string
		manifest *project.Manifest
	)
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, nil, err
		}
		if !info.IsDir() {
			out = append(out, arg)
			continue
		}
		mpath := filepath.Join(arg, project.ManifestName)
		if _, err := os.Stat(mpath); err == nil {
			cfg, err := project.LoadConfig(mpath)
			if err != nil {
				return nil, nil, err
			}
			abs, err := filepath.Abs(arg)
			if err != nil {
				return nil, nil, err
			}
			m := &project.Manifest{Path: mpath, Root: abs, Config: cfg}
			if manifest == nil {
				manifest = m
			}
			out = append(out, m.MainPath())
			continue
		}
		files, err := listQSFiles(arg)
		if err != nil {
			return nil, nil, fmt.Errorf("list %s: %w", arg, err)
		}
		out = append(out, files...)
	}
	return out, manifest, nil
}
