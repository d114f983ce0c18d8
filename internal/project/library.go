package project

import (
	"errors"
	"path/filepath"
	"strings"

	"quill/internal/source"
)

// ImportMeta is one `#import` or `#include` with its resolved path.
type ImportMeta struct {
	Path string
	Span source.Span
}

// LibraryMeta describes one library as seen by the loader: the file carrying
// the `#library` directive plus everything it includes.
type LibraryMeta struct {
	Name    string
	Path    string       // путь к файлу с #library
	Span    source.Span  // span директивы #library
	Imports []ImportMeta // #import, в порядке исходника
	Files   []string     // сам файл и все #include, в порядке загрузки
	// ContentHash covers the library's own files; LibraryHash also covers
	// the LibraryHash of every import.
	ContentHash Digest
	LibraryHash Digest
}

// ContentDigest combines per-file hashes in load order.
func ContentDigest(files ...[32]byte) Digest {
	if len(files) == 0 {
		return Digest{}
	}
	deps := make([]Digest, 0, len(files)-1)
	for _, f := range files[1:] {
		deps = append(deps, Digest(f))
	}
	return Combine(Digest(files[0]), deps...)
}

var errEmptyPath = errors.New("empty import path")

// ResolveImport resolves a directive path relative to the directory of the
// file containing it. Paths without an extension get ".qs".
func ResolveImport(fromFile, target string) (string, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", errEmptyPath
	}
	target = filepath.FromSlash(target)
	if filepath.Ext(target) == "" {
		target += source.Extension
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(fromFile), target)
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}
