package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"fortio.org/safecast"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/parser"
	"quill/internal/project"
	"quill/internal/source"
)

// LoadedFile is one source file reached from an entry point.
type LoadedFile struct {
	Path string // абсолютный, очищенный путь
	File *source.File
	AST  *ast.File
	Bag  *diag.Bag // диагностики лексера и парсера
	Err  error     // ошибка чтения файла
}

// reference is the first directive naming a file.
type reference struct {
	from *LoadedFile
	dir  ast.Directive
}

// listQSFiles возвращает отсортированный список всех *.qs файлов в директории
func listQSFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, source.Extension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// loadAll reads and parses entry and every file reachable through #import
// and #include. Files are processed in waves; each wave is parsed in
// parallel, then its directives make up the next wave.
func (s *Session) loadAll(ctx context.Context, entry string, opts *Options) (map[string]*LoadedFile, map[string]reference, error) {
	files := make(map[string]*LoadedFile)
	refs := make(map[string]reference)
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	pending := []string{entry}
	for len(pending) > 0 {
		results := make([]*LoadedFile, len(pending))
		for _, path := range pending {
			emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusQueued})
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(min(jobs, len(pending)))
		for i, path := range pending {
			g.Go(func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				// индекс i уникален для горутины, мьютекс не нужен
				results[i] = s.loadFile(path, opts)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return files, refs, err
		}

		var next []string
		for _, lf := range results {
			files[lf.Path] = lf
			if lf.Err != nil {
				if lf.Path == entry {
					return files, refs, fmt.Errorf("load %s: %w", entry, lf.Err)
				}
				reportLoadError(lf, refs[lf.Path])
				continue
			}
			s.logger(opts).Debug("parsed", zap.String("file", lf.Path), zap.Int("diagnostics", lf.Bag.Len()))
			for _, d := range directives(lf.AST) {
				target, err := project.ResolveImport(lf.Path, d.Value)
				if err != nil {
					diag.ReportError(&diag.BagReporter{Bag: lf.Bag}, diag.SynBadDirective, d.Span,
						fmt.Sprintf("invalid #%s path %q: %v", d.Kind, d.Value, err)).Emit()
					continue
				}
				if _, seen := refs[target]; seen || target == entry {
					continue
				}
				refs[target] = reference{from: lf, dir: d}
				next = append(next, target)
			}
		}
		sort.Strings(next)
		pending = next
	}
	return files, refs, nil
}

func directives(f *ast.File) []ast.Directive {
	out := make([]ast.Directive, 0, len(f.Imports)+len(f.Includes))
	out = append(out, f.Imports...)
	out = append(out, f.Includes...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Span.Start < out[j].Span.Start })
	return out
}

func (s *Session) loadFile(path string, opts *Options) *LoadedFile {
	start := time.Now()
	lf := &LoadedFile{Path: path, Bag: diag.NewBag(opts.MaxDiagnostics)}
	emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusWorking})
	id, err := s.fs.Load(path)
	if err != nil {
		lf.Err = err
		emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusError, Err: err, Elapsed: time.Since(start)})
		return lf
	}
	lf.File = s.fs.Get(id)
	emit(opts.Progress, Event{File: path, Stage: StageParse, Status: StatusWorking})

	maxErrors, err := safecast.Conv[uint](max(opts.MaxDiagnostics, 0))
	if err != nil {
		panic(fmt.Errorf("maxDiagnostics overflow: %w", err))
	}
	res := parser.ParseFile(lf.File, parser.Options{
		Reporter:  &diag.BagReporter{Bag: lf.Bag},
		MaxErrors: maxErrors,
	})
	lf.AST = res.File
	status := StatusDone
	if lf.Bag.HasErrors() {
		status = StatusError
	}
	emit(opts.Progress, Event{File: path, Stage: StageParse, Status: status, Elapsed: time.Since(start)})
	return lf
}

func reportLoadError(lf *LoadedFile, ref reference) {
	if ref.from == nil {
		return
	}
	msg := fmt.Sprintf("cannot load %q: %v", ref.dir.Value, lf.Err)
	if errors.Is(lf.Err, os.ErrNotExist) {
		msg = fmt.Sprintf("%s file %q not found", ref.dir.Kind, ref.dir.Value)
	}
	diag.ReportError(&diag.BagReporter{Bag: ref.from.Bag}, diag.IOImportNotFound, ref.dir.Span, msg).Emit()
}
