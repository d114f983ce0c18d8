package sema

import (
	"errors"
	"fmt"

	"quill/internal/diag"
	"quill/internal/source"
	"quill/internal/symbols"
	"quill/internal/types"
)

// errDeferred means a dependency is not resolved yet; the fixpoint retries.
var errDeferred = errors.New("deferred")

// BailError aborts the current resolution attempt. The diagnostic has
// already been reported.
type BailError struct {
	Diagnostic diag.Diagnostic
}

func (e *BailError) Error() string {
	return fmt.Sprintf("%s: %s", e.Diagnostic.Code.ID(), e.Diagnostic.Message)
}

// IsBail reports whether err aborted resolution.
func IsBail(err error) bool {
	var b *BailError
	return errors.As(err, &b)
}

// bail emits b and returns the abort error.
func (c *Checker) bail(b *diag.ReportBuilder) error {
	d := b.Diagnostic()
	b.Emit()
	return &BailError{Diagnostic: d}
}

func (c *Checker) fail(code diag.Code, sp source.Span, format string, args ...any) error {
	return c.bail(diag.ReportError(c.reporter, code, sp, fmt.Sprintf(format, args...)))
}

// deferOr defers while errors are disabled and fails otherwise.
func (c *Checker) deferOr(code diag.Code, sp source.Span, format string, args ...any) error {
	if !c.errors {
		return errDeferred
	}
	return c.fail(code, sp, format, args...)
}

func (c *Checker) warn(code diag.Code, sp source.Span, format string, args ...any) {
	diag.ReportWarning(c.reporter, code, sp, fmt.Sprintf(format, args...)).Emit()
}

func (c *Checker) name(obj symbols.Object) string {
	return c.u.Name(obj.Base().Name)
}

// duplicate reports a name collision with a note at the existing binding.
func (c *Checker) duplicate(dup *symbols.DuplicateError, sp source.Span) error {
	name := c.u.Name(dup.Name)
	b := diag.ReportError(c.reporter, diag.SemaDuplicateName, sp,
		fmt.Sprintf("duplicate %s name '%s'", dup.Table, name))
	existing := dup.Existing
	if dup.ViaAlias {
		b.WithNote(existing.Base().Span, fmt.Sprintf("'%s' was imported here by a using directive", name))
		if target := symbols.Unalias(existing); target != existing {
			b.WithNote(target.Base().Span, "imported object declared here")
		}
	} else {
		b.WithNote(existing.Base().Span, fmt.Sprintf("%s '%s' found here", existing.Kind(), name))
	}
	return c.bail(b)
}

// ambiguous reports every match of an ambiguous lookup.
func (c *Checker) ambiguous(amb *symbols.AmbiguityError, sp source.Span) error {
	name := c.u.Name(amb.Name)
	b := diag.ReportError(c.reporter, diag.SemaAmbiguousName, sp,
		fmt.Sprintf("reference to '%s' is ambiguous", name))
	for _, m := range amb.Matches {
		b.WithNote(m.Base().Span, fmt.Sprintf("%s '%s' found here", m.Kind(), name))
	}
	return c.bail(b)
}

func (c *Checker) mismatch(sp source.Span, what string, want, got types.Type) error {
	return c.fail(diag.SemaTypeMismatch, sp, "%s: expected %s, found %s", what, types.Present(want), types.Present(got))
}

// bindErr turns a binding failure into a diagnostic.
func (c *Checker) bindErr(err error, sp source.Span) error {
	var dup *symbols.DuplicateError
	if errors.As(err, &dup) {
		return c.duplicate(dup, sp)
	}
	return err
}
