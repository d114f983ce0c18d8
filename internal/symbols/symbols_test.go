package symbols

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"quill/internal/source"
)

func newVar(u *Universe, name string) *Variable {
	v := &Variable{}
	v.Name = u.Strings.Intern(name)
	return v
}

func mustNamespace(t *testing.T, u *Universe, parent *Namespace, segs ...string) *Namespace {
	t.Helper()
	ns, err := u.Namespace(parent, segs, source.Span{}, nil)
	if err != nil {
		t.Fatalf("namespace %v: %v", segs, err)
	}
	return ns
}

type slotState struct {
	present bool
	obj     Object
	depth   int
	global  Object
}

type slotKey struct {
	ns    *Namespace
	table Table
	id    source.StringID
}

func snapshot(spaces []*Namespace, ids []source.StringID) map[slotKey]slotState {
	out := make(map[slotKey]slotState)
	for _, ns := range spaces {
		for table := TableObjects; table < tableCount; table++ {
			for _, id := range ids {
				st := slotState{}
				if n := ns.Entry(table, id); n != nil {
					st = slotState{present: true, obj: n.Object, depth: n.Depth, global: n.Global}
				}
				out[slotKey{ns, table, id}] = st
			}
		}
	}
	return out
}

func diffSnapshots(a, b map[slotKey]slotState) string {
	for k, va := range a {
		if vb := b[k]; va != vb {
			return fmt.Sprintf("%s/%s/%d: before %+v, after %+v", k.ns.Path, k.table, k.id, va, vb)
		}
	}
	return ""
}

func TestScopeUndoRandomized(t *testing.T) {
	for seed := uint64(1); seed <= 50; seed++ {
		u := NewUniverse(nil)
		strict := mustNamespace(t, u, u.Root, "strict")
		spaces := []*Namespace{u.Root, strict}

		var ids []source.StringID
		for i := range 6 {
			ids = append(ids, u.Strings.Intern(fmt.Sprintf("n%d", i)))
		}
		s := NewScopeStack(seed%2 == 0)
		// несколько глобальных имён
		for _, ns := range spaces {
			_ = s.Bind(ns, TableObjects, ids[0], newVar(u, "n0"))
			_ = s.Bind(ns, TableStructs, ids[1], newVar(u, "n1"))
		}

		r := rand.New(rand.NewPCG(seed, seed*7+1))
		before := snapshot(spaces, ids)
		type pushed struct {
			root bool
			snap map[slotKey]slotState
		}
		var frames []pushed

		for step := 0; step < 400; step++ {
			switch op := r.IntN(10); {
			case op < 3 || len(frames) == 0:
				root := len(frames) == 0 || r.IntN(3) == 0
				frames = append(frames, pushed{root: root, snap: snapshot(spaces, ids)})
				s.Push(spaces[r.IntN(len(spaces))], root)
			case op < 8:
				ns := spaces[r.IntN(len(spaces))]
				table := Table(r.IntN(int(tableCount)))
				id := ids[r.IntN(len(ids))]
				_ = s.Bind(ns, table, id, newVar(u, "x"))
			default:
				top := frames[len(frames)-1]
				frames = frames[:len(frames)-1]
				s.Pop()
				if top.root || len(frames) == 0 {
					if d := diffSnapshots(top.snap, snapshot(spaces, ids)); d != "" {
						t.Fatalf("seed %d step %d: scope not restored: %s", seed, step, d)
					}
				}
			}
		}
		for len(frames) > 0 {
			frames = frames[:len(frames)-1]
			s.Pop()
		}
		if d := diffSnapshots(before, snapshot(spaces, ids)); d != "" {
			t.Fatalf("seed %d: bindings leaked after unwinding: %s", seed, d)
		}
		if s.Depth() != 0 {
			t.Fatalf("seed %d: depth %d after unwinding", seed, s.Depth())
		}
	}
}

func TestBindDisciplines(t *testing.T) {
	u := NewUniverse(nil)
	strict := mustNamespace(t, u, u.Root, "s")
	x := u.Strings.Intern("x")
	s := NewScopeStack(false)

	// strict: блочная видимость
	s.Push(strict, true)
	if err := s.Bind(strict, TableObjects, x, newVar(u, "x")); err != nil {
		t.Fatalf("bind: %v", err)
	}
	s.Push(strict, false)
	if err := s.Bind(strict, TableObjects, x, newVar(u, "x")); err != nil {
		t.Fatalf("strict inner block may shadow: %v", err)
	}
	if err := s.Bind(strict, TableObjects, x, newVar(u, "x")); err == nil {
		t.Fatalf("same-depth rebinding must fail")
	}
	s.Pop()
	s.Pop()
	if strict.Entry(TableObjects, x) != nil {
		t.Fatalf("strict bindings leaked")
	}

	// non-strict: видимость до конца функции
	s.Push(u.Root, true)
	s.Push(u.Root, false)
	first := newVar(u, "x")
	if err := s.Bind(u.Root, TableObjects, x, first); err != nil {
		t.Fatalf("bind: %v", err)
	}
	s.Pop()
	if got := u.Root.Entry(TableObjects, x); got == nil || got.Object != first {
		t.Fatalf("non-strict binding must survive the inner block")
	}
	s.Push(u.Root, false)
	err := s.Bind(u.Root, TableObjects, x, newVar(u, "x"))
	var dup *DuplicateError
	if !errors.As(err, &dup) || dup.Existing != first {
		t.Fatalf("expected duplicate against function-scope binding, got %v", err)
	}
	s.Pop()
	s.Pop()
	if u.Root.Entry(TableObjects, x) != nil {
		t.Fatalf("non-strict binding leaked after function root pop")
	}
}

func TestNamespaceLookupSeesThroughLocals(t *testing.T) {
	u := NewUniverse(nil)
	n := mustNamespace(t, u, u.Root, "n")
	x := u.Strings.Intern("x")
	s := NewScopeStack(false)

	global := newVar(u, "x")
	if err := s.Bind(n, TableObjects, x, global); err != nil {
		t.Fatalf("bind: %v", err)
	}
	u.Root.AddLink(n, source.Span{})

	s.Push(n, true)
	local := newVar(u, "x")
	if err := s.Bind(n, TableObjects, x, local); err != nil {
		t.Fatalf("bind local: %v", err)
	}
	if got, _ := Search(n, TableObjects, x); got != local {
		t.Fatalf("unqualified lookup must see the local, got %v", got)
	}
	if got := n.Object(TableObjects, x); got != global {
		t.Fatalf("namespace-scope binding hidden by a local: %v", got)
	}
	if got, err := SearchPath(n, TableObjects, []source.StringID{n.Name, x}, false); err != nil || got != global {
		t.Fatalf("n::x = %v, %v", got, err)
	}
	// через using-ссылку корня
	if got, err := SearchPath(n, TableObjects, []source.StringID{x}, true); err != nil || got != global {
		t.Fatalf("upmost::x through link = %v, %v", got, err)
	}
	s.Pop()

	if got := n.Entry(TableObjects, x); got == nil || got.Object != global || got.Global != global {
		t.Fatalf("binding not restored: %+v", got)
	}
}

func TestLegacyRejectsShadowingGlobals(t *testing.T) {
	u := NewUniverse(nil)
	g := u.Strings.Intern("g")
	for _, legacy := range []bool{false, true} {
		s := NewScopeStack(legacy)
		global := newVar(u, "g")
		ns := NewNamespace(nil, source.NoStringID, "", false)
		if err := s.Bind(ns, TableObjects, g, global); err != nil {
			t.Fatalf("bind global: %v", err)
		}
		s.Push(ns, true)
		err := s.Bind(ns, TableObjects, g, newVar(u, "g"))
		s.Pop()
		if legacy && err == nil {
			t.Fatalf("legacy mode must reject shadowing a global")
		}
		if !legacy && err != nil {
			t.Fatalf("shadowing a global is allowed by default: %v", err)
		}
		if ns.Object(TableObjects, g) != global {
			t.Fatalf("global binding not restored")
		}
	}
}

func TestSweepsSpanSeveralBatches(t *testing.T) {
	u := NewUniverse(nil)
	ns := mustNamespace(t, u, u.Root, "big")
	s := NewScopeStack(false)
	s.Push(ns, true)
	for i := range sweepBatch*3 + 1 {
		id := u.Strings.Intern(fmt.Sprintf("v%d", i))
		if err := s.Bind(ns, TableObjects, id, newVar(u, "v")); err != nil {
			t.Fatalf("bind %d: %v", i, err)
		}
	}
	if n := len(s.frames[0].sweeps); n != 4 {
		t.Fatalf("expected 4 sweeps, got %d", n)
	}
	s.Pop()
	if len(s.pool.free) != 4 {
		t.Fatalf("sweeps not returned to the pool: %d", len(s.pool.free))
	}
	for i := range sweepBatch*3 + 1 {
		if ns.Entry(TableObjects, u.Strings.Intern(fmt.Sprintf("v%d", i))) != nil {
			t.Fatalf("v%d leaked", i)
		}
	}
}

func TestAmbiguityAndQualifiedLookup(t *testing.T) {
	u := NewUniverse(nil)
	s := NewScopeStack(false)
	ns1 := mustNamespace(t, u, u.Root, "ns1")
	ns2 := mustNamespace(t, u, u.Root, "ns2")
	user := mustNamespace(t, u, u.Root, "user")
	x := u.Strings.Intern("x")
	x1, x2 := newVar(u, "x"), newVar(u, "x")
	if err := s.Bind(ns1, TableObjects, x, x1); err != nil {
		t.Fatal(err)
	}
	if err := s.Bind(ns2, TableObjects, x, x2); err != nil {
		t.Fatal(err)
	}

	s.Push(user, true)
	user.AddLink(ns1, source.Span{})
	user.AddLink(ns2, source.Span{})

	_, err := Search(user, TableObjects, x)
	var amb *AmbiguityError
	if !errors.As(err, &amb) || len(amb.Matches) != 2 || amb.Matches[0] != x1 || amb.Matches[1] != x2 {
		t.Fatalf("expected ambiguity listing both matches, got %v", err)
	}

	got, err := SearchPath(user, TableObjects, []source.StringID{u.Strings.Intern("ns1"), x}, false)
	if err != nil || got != x1 {
		t.Fatalf("ns1::x = %v, %v", got, err)
	}
	s.Pop()
	if len(user.Links()) != 0 {
		t.Fatalf("links not restored on pop")
	}
	if obj, err := Search(user, TableObjects, x); obj != nil || err != nil {
		t.Fatalf("x visible after links were dropped: %v %v", obj, err)
	}
}

func TestSameTargetThroughTwoLinksIsNotAmbiguous(t *testing.T) {
	u := NewUniverse(nil)
	s := NewScopeStack(false)
	a := mustNamespace(t, u, u.Root, "a")
	b := mustNamespace(t, u, u.Root, "b")
	x := u.Strings.Intern("x")
	target := newVar(u, "x")
	if err := s.Bind(a, TableObjects, x, target); err != nil {
		t.Fatal(err)
	}
	alias := &Alias{Target: target}
	alias.Name = x
	if err := ImportSelective(s, b, TableObjects, x, alias); err != nil {
		t.Fatal(err)
	}
	u.Root.AddLink(a, source.Span{})
	u.Root.AddLink(b, source.Span{})
	defer u.Root.ResetLinks(0)
	got, err := Search(u.Root, TableObjects, x)
	if err != nil || got != target {
		t.Fatalf("expected the shared target, got %v %v", got, err)
	}
}

func TestImportSelectiveRules(t *testing.T) {
	u := NewUniverse(nil)
	s := NewScopeStack(false)
	lib := mustNamespace(t, u, u.Root, "lib")
	x, y := u.Strings.Intern("x"), u.Strings.Intern("y")
	vx, vy := newVar(u, "x"), newVar(u, "y")
	_ = s.Bind(lib, TableObjects, x, vx)
	_ = s.Bind(lib, TableObjects, y, vy)

	mk := func(target Object) *Alias {
		a := &Alias{Target: target}
		a.Name = x
		return a
	}
	if err := ImportSelective(s, u.Root, TableObjects, x, mk(vx)); err != nil {
		t.Fatalf("first import: %v", err)
	}
	if err := ImportSelective(s, u.Root, TableObjects, x, mk(vx)); err != nil {
		t.Fatalf("same-target re-import must be allowed: %v", err)
	}
	err := ImportSelective(s, u.Root, TableObjects, x, mk(vy))
	var dup *DuplicateError
	if !errors.As(err, &dup) || !dup.ViaAlias {
		t.Fatalf("different target must be a duplicate via alias, got %v", err)
	}
}

func TestUpmostPathAndLookupErrors(t *testing.T) {
	u := NewUniverse(nil)
	s := NewScopeStack(false)
	inner := mustNamespace(t, u, u.Root, "a", "b")
	v := newVar(u, "v")
	vid := u.Strings.Intern("v")
	_ = s.Bind(inner, TableObjects, vid, v)
	shadow := mustNamespace(t, u, inner, "a")

	a, b := u.Strings.Intern("a"), u.Strings.Intern("b")
	got, err := SearchPath(shadow, TableObjects, []source.StringID{a, b, vid}, true)
	if err != nil || got != v {
		t.Fatalf("upmost::a::b::v = %v, %v", got, err)
	}
	// без upmost первый сегмент находит a::b::a
	_, err = SearchPath(shadow, TableObjects, []source.StringID{a, b, vid}, false)
	var le *LookupError
	if !errors.As(err, &le) || le.Failure != NotInNamespace || le.Segment != 1 {
		t.Fatalf("expected not-in-namespace at segment 1, got %v", err)
	}
	_, err = SearchPath(u.Root, TableObjects, []source.StringID{a, b, vid, vid}, false)
	if !errors.As(err, &le) || le.Failure != NotNamespace || le.Segment != 2 {
		t.Fatalf("expected not-a-namespace at segment 2, got %v", err)
	}
	_, err = SearchPath(u.Root, TableObjects, []source.StringID{u.Strings.Intern("missing")}, false)
	if !errors.As(err, &le) || le.Failure != NotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	// последний сегмент не ищется в родителях
	_, err = SearchPath(u.Root, TableObjects, []source.StringID{a, vid}, false)
	if !errors.As(err, &le) || le.Failure != NotInNamespace {
		t.Fatalf("final segment must not walk to parents, got %v", err)
	}
}

func TestExposePrivatesRetracts(t *testing.T) {
	u := NewUniverse(nil)
	s := NewScopeStack(false)
	id := u.Strings.Intern("helper")
	public := newVar(u, "helper")
	_ = s.Bind(u.Root, TableObjects, id, public)
	hidden := newVar(u, "helper")
	other := newVar(u, "only")
	lib := &Library{Privates: []PrivateBinding{
		{NS: u.Root, Table: TableObjects, Object: hidden},
		{NS: u.Root, Table: TableObjects, Object: other},
	}}

	func() {
		retract := lib.ExposePrivates()
		defer retract()
		if got, _ := Search(u.Root, TableObjects, id); got != hidden {
			t.Fatalf("private object not visible during its library pass")
		}
	}()
	if got, _ := Search(u.Root, TableObjects, id); got != public {
		t.Fatalf("private object leaked after retraction")
	}
	if u.Root.Entry(TableObjects, other.Name) != nil {
		t.Fatalf("slot created for a private object was not dropped")
	}
}

func TestNamespaceFragmentsMerge(t *testing.T) {
	u := NewUniverse(nil)
	first := mustNamespace(t, u, u.Root, "a", "b")
	second := mustNamespace(t, u, u.Root, "a", "b")
	if first != second || first.Path != "a::b" || !first.Strict {
		t.Fatalf("fragments did not merge: %p %p %q", first, second, first.Path)
	}
	s := NewScopeStack(false)
	clash := u.Strings.Intern("c")
	_ = s.Bind(first, TableObjects, clash, newVar(u, "c"))
	_, err := u.Namespace(u.Root, []string{"a", "b", "c"}, source.Span{}, nil)
	var dup *DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("namespace over a variable must be a duplicate, got %v", err)
	}
}
