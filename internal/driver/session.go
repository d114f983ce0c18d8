package driver

import (
	"context"
	"crypto/sha256"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"quill/internal/diag"
	"quill/internal/observ"
	"quill/internal/project"
	"quill/internal/project/dag"
	"quill/internal/sema"
	"quill/internal/source"
	"quill/internal/symbols"
	"quill/internal/trace"
)

// Options configure the checks of a session.
type Options struct {
	MaxDiagnostics int
	// Legacy enables the legacy shadowing check of non-strict namespaces.
	Legacy bool
	// Jobs limits parallel loading; <= 0 means GOMAXPROCS.
	Jobs      int
	Logger    *zap.Logger
	Progress  ProgressSink
	DiskCache *DiskCache
}

// Result is the outcome of checking one entry file.
type Result struct {
	Entry    string
	FileSet  *source.FileSet
	Universe *symbols.Universe
	Main     *symbols.Library
	// Libraries lists every library of the program, imports before their
	// importers, Main last.
	Libraries []*symbols.Library
	Files     map[string]*LoadedFile
	Bag       *diag.Bag
	Stats     sema.Stats
	Timer     *observ.Timer
	// Digest covers every file of the program and the options.
	Digest project.Digest
	// Reused counts libraries taken from the library cache.
	Reused        int
	FromDiskCache bool
}

// HasErrors reports whether the check produced an error diagnostic.
func (r *Result) HasErrors() bool {
	return r != nil && r.Bag != nil && r.Bag.HasErrors()
}

// Session checks entry files one after another over a shared universe, so
// libraries imported by several entries are resolved once.
type Session struct {
	mu    sync.Mutex
	opts  Options
	fs    *source.FileSet
	u     *symbols.Universe
	cache *LibraryCache
}

// NewSession creates a session with an empty universe.
func NewSession(opts Options) *Session {
	if opts.MaxDiagnostics == 0 {
		opts.MaxDiagnostics = project.DefaultMaxDiagnostics
	}
	return &Session{
		opts:  opts,
		fs:    source.NewFileSet(),
		u:     symbols.NewUniverse(nil),
		cache: NewLibraryCache(16),
	}
}

// FileSet returns the file set shared by all checks.
func (s *Session) FileSet() *source.FileSet { return s.fs }

// Cache returns the session library cache.
func (s *Session) Cache() *LibraryCache { return s.cache }

func (s *Session) logger(opts *Options) *zap.Logger {
	if opts.Logger == nil {
		return zap.NewNop()
	}
	return opts.Logger
}

// reset drops the universe after a failed resolution left it half-built.
func (s *Session) reset() {
	s.u = symbols.NewUniverse(s.u.Strings)
	s.cache.Reset()
}

// Check loads, parses and resolves the program rooted at entry. Source
// errors end up in Result.Bag; the returned error is reserved for failures
// outside the program (unreadable entry, cancellation).
func (s *Session) Check(ctx context.Context, entry string) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	opts := s.opts
	log := s.logger(&opts)

	abs, err := filepath.Abs(entry)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", entry, err)
	}
	abs = filepath.Clean(abs)

	span, ctx := trace.Start(ctx, trace.ScopeDriver, "check")
	span.WithExtra("entry", abs)
	defer span.End("")

	res := &Result{
		Entry:   abs,
		FileSet: s.fs,
		Bag:     diag.NewBag(opts.MaxDiagnostics),
		Timer:   observ.NewTimer(),
	}

	phase := res.Timer.Begin("load")
	files, _, err := s.loadAll(ctx, abs, &opts)
	res.Timer.End(phase, fmt.Sprintf("%d files", len(files)))
	res.Files = files
	if err != nil {
		return res, err
	}

	phase = res.Timer.Begin("graph")
	order, digest := s.graph(abs, files, res.Bag, opts.Legacy)
	res.Timer.End(phase, fmt.Sprintf("%d libraries", len(order)))
	res.Digest = digest
	res.Bag.Sort()
	if res.Bag.HasErrors() || len(order) == 0 {
		log.Debug("front-end errors, skipping resolution", zap.String("entry", abs), zap.Int("diagnostics", res.Bag.Len()))
		return res, nil
	}

	if opts.DiskCache != nil {
		var payload DiskPayload
		ok, err := opts.DiskCache.Get(digest, &payload)
		if err != nil {
			log.Warn("disk cache read failed", zap.Error(err))
		} else if ok && payload.Schema == diskCacheSchemaVersion && !payload.Broken {
			log.Debug("disk cache hit", zap.String("entry", abs))
			res.FromDiskCache = true
			for _, u := range order {
				emit(opts.Progress, Event{File: u.meta.Path, Stage: StageResolve, Status: StatusCached})
			}
			return res, nil
		}
	}

	if err := s.resolve(ctx, res, order, &opts); err != nil {
		return res, err
	}
	res.Bag.Sort()
	res.Bag.Dedup()

	if opts.DiskCache != nil {
		if err := opts.DiskCache.Put(digest, resultToDiskPayload(res)); err != nil {
			log.Warn("disk cache write failed", zap.Error(err))
		}
	}
	return res, nil
}

// graph assembles libraries, reports import graph problems and returns the
// libraries in resolution order (imports first, entry library last)
// together with the program digest.
func (s *Session) graph(entry string, files map[string]*LoadedFile, bag *diag.Bag, legacy bool) ([]*libraryUnit, project.Digest) {
	rep := &diag.BagReporter{Bag: bag}
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	for _, p := range paths {
		bag.Merge(files[p].Bag)
	}

	units := assemble(entry, files, rep)
	if len(units) == 0 {
		return nil, project.Digest{}
	}
	metas := make([]project.LibraryMeta, len(units))
	nodes := make([]dag.Node, len(units))
	byPath := make(map[string]*libraryUnit, len(units))
	for i, u := range units {
		metas[i] = u.meta
		broken, first := u.broken()
		nodes[i] = dag.Node{Meta: u.meta, Broken: broken, FirstErr: first}
		byPath[u.meta.Path] = u
	}
	idx := dag.BuildIndex(metas)
	g, slots := dag.BuildGraph(idx, nodes, rep)
	topo := dag.ToposortKahn(g)
	dag.ReportCycles(slots, topo, rep)
	dag.ReportBrokenDeps(idx, slots, rep)
	ComputeLibraryHashes(idx, slots, topo)
	if topo.Cyclic {
		return nil, project.Digest{}
	}

	main := byPath[entry]
	order := make([]*libraryUnit, 0, len(units))
	for _, id := range topo.Order {
		slot := slots[int(id)]
		u := byPath[slot.Meta.Path]
		if u == nil {
			continue
		}
		u.meta.LibraryHash = slot.Meta.LibraryHash
		if u != main {
			order = append(order, u)
		}
	}
	order = append(order, main)
	return order, optionsDigest(main.meta.LibraryHash, legacy)
}

func optionsDigest(d project.Digest, legacy bool) project.Digest {
	if !legacy {
		return d
	}
	return project.Combine(d, sha256.Sum256([]byte("legacy")))
}

// resolve reuses cached libraries, detaches everything else from the
// universe and resolves the remaining libraries.
func (s *Session) resolve(ctx context.Context, res *Result, order []*libraryUnit, opts *Options) error {
	log := s.logger(opts)
	keep := make(map[*symbols.Library]bool)
	byPath := make(map[string]*symbols.Library, len(order))
	var fresh []*libraryUnit
	last := len(order) - 1
	for i, u := range order {
		if i < last {
			if lib, ok := s.cache.Get(u.meta.Path, u.meta.LibraryHash); ok {
				log.Debug("library cache hit", zap.String("library", u.meta.Name))
				keep[lib] = true
				byPath[u.meta.Path] = lib
				res.Libraries = append(res.Libraries, lib)
				res.Reused++
				emit(opts.Progress, Event{File: u.meta.Path, Stage: StageResolve, Status: StatusCached})
				continue
			}
		}
		lib := &symbols.Library{
			Title:      u.meta.Name,
			Path:       u.meta.Path,
			Importable: i < last,
			Digest:     u.meta.LibraryHash,
		}
		byPath[u.meta.Path] = lib
		res.Libraries = append(res.Libraries, lib)
		fresh = append(fresh, u)
	}
	for _, lib := range slices.Clone(s.u.Libraries) {
		if !keep[lib] {
			s.u.Detach(lib)
			s.cache.Drop(lib.Path)
		}
	}
	for _, u := range order {
		lib := byPath[u.meta.Path]
		for _, imp := range u.meta.Imports {
			if dep := byPath[imp.Path]; dep != nil {
				lib.Imports = append(lib.Imports, dep)
			}
		}
	}
	res.Main = res.Libraries[len(res.Libraries)-1]
	res.Universe = s.u

	checker := sema.New(s.u, sema.Options{
		Reporter: diag.NewDedupReporter(&diag.BagReporter{Bag: res.Bag}),
		Legacy:   opts.Legacy,
	})
	err := res.Timer.Time("collect", func() (string, error) {
		for _, u := range fresh {
			if err := checker.Collect(byPath[u.meta.Path], u.asts()); err != nil {
				return "", err
			}
		}
		return fmt.Sprintf("%d libraries", len(fresh)), nil
	})
	if err == nil {
		err = s.runPasses(ctx, checker, res, fresh, opts)
	}
	if err != nil {
		s.reset()
		if sema.IsBail(err) {
			log.Debug("resolution failed", zap.Error(err))
			return nil
		}
		return err
	}

	for _, u := range fresh[:len(fresh)-1] {
		s.cache.Put(byPath[u.meta.Path], u.meta.LibraryHash)
	}
	hits, misses := s.cache.Stats()
	log.Debug("resolved",
		zap.String("entry", res.Entry),
		zap.Int("repetitions", res.Stats.Repetitions),
		zap.Int("resolved", res.Stats.Resolved),
		zap.Int("reused", res.Reused),
		zap.Int("cache_hits", hits),
		zap.Int("cache_misses", misses))
	return nil
}

func (s *Session) runPasses(ctx context.Context, checker *sema.Checker, res *Result, fresh []*libraryUnit, opts *Options) error {
	progress := func(stage Stage, status Status, err error, start time.Time) {
		for _, u := range fresh {
			emit(opts.Progress, Event{File: u.meta.Path, Stage: stage, Status: status, Err: err, Elapsed: time.Since(start)})
		}
	}
	start := time.Now()
	progress(StageResolve, StatusWorking, nil, start)
	err := res.Timer.Time("fixpoint", func() (string, error) {
		stats, err := checker.Fixpoint(ctx)
		res.Stats = stats
		return fmt.Sprintf("%d repetitions, %d resolved", stats.Repetitions, stats.Resolved), err
	})
	if err != nil {
		progress(StageResolve, StatusError, err, start)
		return err
	}
	progress(StageResolve, StatusDone, nil, start)

	start = time.Now()
	progress(StageCheck, StatusWorking, nil, start)
	err = res.Timer.Time("bodies", func() (string, error) {
		return "", checker.CheckBodies(ctx)
	})
	if err != nil {
		progress(StageCheck, StatusError, err, start)
		return err
	}
	progress(StageCheck, StatusDone, nil, start)
	return nil
}
