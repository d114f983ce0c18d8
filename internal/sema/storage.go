package sema

import (
	"quill/internal/diag"
	"quill/internal/symbols"
	"quill/internal/types"
)

// Index limits of the numbered storage tiers.
const (
	maxWorldIndex  = 256
	maxGlobalIndex = 64
)

type storageIndex struct {
	used    map[symbols.Storage]map[int]*symbols.Variable
	nextMap map[*symbols.Library]int
}

func newStorageIndex() storageIndex {
	return storageIndex{
		used: map[symbols.Storage]map[int]*symbols.Variable{
			symbols.StorageWorld:  {},
			symbols.StorageGlobal: {},
		},
		nextMap: make(map[*symbols.Library]int),
	}
}

// reserveCached records the world and global indices held by cached
// libraries so freshly resolved variables never reuse them.
func (s storageIndex) reserveCached(u *symbols.Universe) {
	for _, lib := range u.Libraries {
		if !lib.Cached {
			continue
		}
		for _, obj := range lib.Objects {
			v, ok := obj.(*symbols.Variable)
			if !ok || v.Index < 0 {
				continue
			}
			if used, ok := s.used[v.Storage]; ok {
				used[v.Index] = v
			}
		}
	}
}

func tierLimit(s symbols.Storage) int {
	if s == symbols.StorageWorld {
		return maxWorldIndex
	}
	return maxGlobalIndex
}

// storageIndex folds an explicit `N:` index.
func (c *Checker) storageIndex(v *symbols.Variable) (int, error) {
	e := v.Declarator.Index
	val, t, err := c.fold(v.NS, e)
	if err != nil {
		return 0, err
	}
	if s := arith(t); s != types.SpecInt && s != types.SpecRaw {
		return 0, c.fail(diag.SemaStorageIndex, e.Span(), "storage index must be an integer, found %s", types.Present(t))
	}
	if v.Storage != symbols.StorageWorld && v.Storage != symbols.StorageGlobal {
		return 0, c.fail(diag.SemaStorageIndex, e.Span(), "only world and global variables take an index")
	}
	if limit := tierLimit(v.Storage); val.Int < 0 || int(val.Int) >= limit {
		return 0, c.fail(diag.SemaStorageIndex, e.Span(), "%s index %d out of range 0..%d", v.Storage, val.Int, limit-1)
	}
	return int(val.Int), nil
}

// reserveIndex records an explicit world or global index.
func (c *Checker) reserveIndex(v *symbols.Variable, index int) error {
	used := c.storage.used[v.Storage]
	if prev, ok := used[index]; ok && prev != v {
		return c.bail(diag.ReportError(c.reporter, diag.SemaStorageIndex, v.Declarator.Index.Span(),
			v.Storage.String()+" index already in use").
			WithNote(prev.Span, "'"+c.name(prev)+"' uses it"))
	}
	used[index] = v
	v.Index = index
	return nil
}

// assignIndices runs once every explicit index is known: map variables
// are numbered per library in declaration order, world and global
// variables without an index take the lowest free one of their tier.
func (c *Checker) assignIndices() error {
	for _, lib := range c.u.Libraries {
		if lib.Cached {
			continue
		}
		for _, obj := range lib.Objects {
			v, ok := obj.(*symbols.Variable)
			if !ok || v.Index >= 0 {
				continue
			}
			switch v.Storage {
			case symbols.StorageMap:
				v.Index = c.storage.nextMap[lib]
				c.storage.nextMap[lib]++
			case symbols.StorageWorld, symbols.StorageGlobal:
				used := c.storage.used[v.Storage]
				index := 0
				for ; index < tierLimit(v.Storage); index++ {
					if used[index] == nil {
						break
					}
				}
				if index == tierLimit(v.Storage) {
					return c.fail(diag.SemaStorageIndex, v.Span, "no free %s index left for '%s'", v.Storage, c.name(v))
				}
				used[index] = v
				v.Index = index
			}
		}
	}
	return nil
}
