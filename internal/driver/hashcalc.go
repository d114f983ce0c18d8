package driver

import (
	"sort"

	"quill/internal/project"
	"quill/internal/project/dag"
)

// ComputeLibraryHashes вычисляет LibraryHash в порядке топосортировки:
// зависимости раньше импортёров. Для циклического графа ничего не делает.
func ComputeLibraryHashes(idx dag.Index, slots []dag.Slot, topo *dag.Topo) {
	if topo == nil || topo.Cyclic {
		return
	}
	for _, id := range topo.Order {
		slot := &slots[int(id)]
		if !slot.Present {
			continue
		}
		paths := make([]string, 0, len(slot.Meta.Imports))
		for _, imp := range slot.Meta.Imports {
			paths = append(paths, imp.Path)
		}
		sort.Strings(paths)
		deps := make([]project.Digest, 0, len(paths))
		for _, p := range paths {
			to, ok := idx.PathToID[p]
			if !ok || !slots[int(to)].Present {
				continue
			}
			deps = append(deps, slots[int(to)].Meta.LibraryHash)
		}
		slot.Meta.LibraryHash = project.Combine(slot.Meta.ContentHash, deps...)
	}
}
