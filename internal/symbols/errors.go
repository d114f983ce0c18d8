package symbols

import (
	"fmt"

	"quill/internal/source"
)

// DuplicateError reports a binding that collides with an existing one.
// ViaAlias is set when the existing binding came from a `using` import.
type DuplicateError struct {
	Table    Table
	Name     source.StringID
	Existing Object
	New      Object
	ViaAlias bool
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s name (existing %s)", e.Table, e.Existing.Kind())
}

// AmbiguityError reports an unqualified lookup matched through several
// linked namespaces. Matches are listed in link order.
type AmbiguityError struct {
	Name    source.StringID
	Matches []Object
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("ambiguous name: %d matches", len(e.Matches))
}

type LookupFailure uint8

const (
	// NotFound: the first segment is visible nowhere.
	NotFound LookupFailure = iota + 1
	// NotInNamespace: a later segment is missing from its namespace.
	NotInNamespace
	// NotNamespace: an intermediate segment is not a namespace.
	NotNamespace
)

// LookupError reports a failed path lookup. Segment indexes the failing
// path segment; In is the namespace that was searched.
type LookupError struct {
	Failure LookupFailure
	Segment int
	In      *Namespace
	Found   Object
}

func (e *LookupError) Error() string {
	switch e.Failure {
	case NotInNamespace:
		return fmt.Sprintf("segment %d not found in namespace %q", e.Segment, e.In.Path)
	case NotNamespace:
		return fmt.Sprintf("segment %d is a %s, not a namespace", e.Segment, e.Found.Kind())
	}
	return "name not found"
}
