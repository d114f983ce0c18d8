// Package types is the type model of quill values.
//
// A Type is a scalar specifier, an optional enumeration or structure
// identity, an optional reference chain (outermost first) and an optional
// list of undecayed array dimensions. Arrays, structures and functions are
// "primitive plus implicit reference": evaluating such a value decays it into
// a reference, so one comparison (Same) and one classification (Describe)
// serve every operator.
package types
