package dag

import (
	"sort"

	"quill/internal/project"
)

type LibraryID uint32

type Index struct {
	PathToID map[string]LibraryID
	IDToPath []string
}

// собрать уникальные пути, sort.Strings, раздать ID по порядку
func BuildIndex(metas []project.LibraryMeta) Index {
	uniq := make(map[string]struct{}, len(metas))
	for _, meta := range metas {
		if meta.Path != "" {
			uniq[meta.Path] = struct{}{}
		}
		for _, dep := range meta.Imports {
			if dep.Path == "" {
				continue
			}
			uniq[dep.Path] = struct{}{}
		}
	}

	paths := make([]string, 0, len(uniq))
	for path := range uniq {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	pathToID := make(map[string]LibraryID, len(paths))
	for i, path := range paths {
		pathToID[path] = LibraryID(i)
	}

	return Index{
		PathToID: pathToID,
		IDToPath: paths,
	}
}
