package dump

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"quill/internal/driver"
	"quill/internal/symbols"
	"quill/internal/types"
)

// Format selects the serialization of a Document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat converts a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown dump format %q (expected json|yaml)", s)
}

// Document is the resolved program as consumed by the code generator.
type Document struct {
	Entry     string    `json:"entry" yaml:"entry"`
	Libraries []Library `json:"libraries" yaml:"libraries"`
}

type Library struct {
	Name    string   `json:"name" yaml:"name"`
	Path    string   `json:"path" yaml:"path"`
	Digest  string   `json:"digest,omitempty" yaml:"digest,omitempty"`
	Imports []string `json:"imports,omitempty" yaml:"imports,omitempty"`
	Decls   []Decl   `json:"decls" yaml:"decls"`
}

// Decl is one namespace-scope object.
type Decl struct {
	Name        string       `json:"name" yaml:"name"`
	Kind        string       `json:"kind" yaml:"kind"`
	Private     bool         `json:"private,omitempty" yaml:"private,omitempty"`
	Type        string       `json:"type,omitempty" yaml:"type,omitempty"`
	Storage     string       `json:"storage,omitempty" yaml:"storage,omitempty"`
	Index       *int         `json:"index,omitempty" yaml:"index,omitempty"`
	Size        int          `json:"size,omitempty" yaml:"size,omitempty"`
	Value       string       `json:"value,omitempty" yaml:"value,omitempty"`
	Init        []Slot       `json:"init,omitempty" yaml:"init,omitempty"`
	Return      string       `json:"return,omitempty" yaml:"return,omitempty"`
	Params      []Field      `json:"params,omitempty" yaml:"params,omitempty"`
	MsgBuild    bool         `json:"msgbuild,omitempty" yaml:"msgbuild,omitempty"`
	Members     []Field      `json:"members,omitempty" yaml:"members,omitempty"`
	Enumerators []Enumerator `json:"enumerators,omitempty" yaml:"enumerators,omitempty"`
}

// Slot is one initialized storage slot. Runtime slots are computed by
// generated code.
type Slot struct {
	Offset  int    `json:"offset" yaml:"offset"`
	Value   string `json:"value,omitempty" yaml:"value,omitempty"`
	Runtime bool   `json:"runtime,omitempty" yaml:"runtime,omitempty"`
}

type Field struct {
	Name   string `json:"name" yaml:"name"`
	Type   string `json:"type" yaml:"type"`
	Offset int    `json:"offset,omitempty" yaml:"offset,omitempty"`
}

type Enumerator struct {
	Name  string `json:"name" yaml:"name"`
	Value int32  `json:"value" yaml:"value"`
}

// Build exports every library of a clean check result, dependencies first.
func Build(res *driver.Result) (*Document, error) {
	if res == nil || res.Universe == nil {
		return nil, fmt.Errorf("dump: no resolved program")
	}
	if res.HasErrors() {
		return nil, fmt.Errorf("dump: program has errors")
	}
	doc := &Document{Entry: res.Entry}
	for _, lib := range res.Libraries {
		doc.Libraries = append(doc.Libraries, library(res.Universe, lib))
	}
	return doc, nil
}

func library(u *symbols.Universe, lib *symbols.Library) Library {
	out := Library{
		Name:  lib.Title,
		Path:  lib.Path,
		Decls: []Decl{},
	}
	if lib.Digest != ([32]byte{}) {
		out.Digest = hex.EncodeToString(lib.Digest[:])
	}
	for _, imp := range lib.Imports {
		out.Imports = append(out.Imports, imp.Title)
	}
	for _, obj := range lib.Objects {
		if d, ok := decl(u, obj); ok {
			out.Decls = append(out.Decls, d)
		}
	}
	return out
}

func decl(u *symbols.Universe, obj symbols.Object) (Decl, bool) {
	b := obj.Base()
	if b.Depth != 0 {
		return Decl{}, false
	}
	d := Decl{
		Name:    driver.Qualified(u, obj),
		Kind:    obj.Kind().String(),
		Private: b.Private,
	}
	switch o := obj.(type) {
	case *symbols.Constant:
		d.Type = types.Present(o.Type)
		d.Value = value(o.Value)
	case *symbols.Variable:
		d.Type = types.Present(o.Type)
		d.Storage = o.Storage.String()
		idx := o.Index
		d.Index = &idx
		d.Size = o.Size
		for _, iv := range o.Values {
			slot := Slot{Offset: iv.Offset}
			if iv.Value != nil {
				slot.Value = value(*iv.Value)
			} else {
				slot.Runtime = true
			}
			d.Init = append(d.Init, slot)
		}
	case *symbols.Function:
		d.Return = types.Present(o.Return)
		d.Params = params(u, o.Params)
		d.MsgBuild = o.MsgBuild
	case *symbols.Script:
		d.Params = params(u, o.Params)
	case *symbols.Structure:
		if o.Title == "" {
			return Decl{}, false
		}
		d.Size = o.Size
		for _, m := range o.Members {
			d.Members = append(d.Members, Field{Name: u.Name(m.Name), Type: types.Present(m.Type), Offset: m.Offset})
		}
	case *symbols.Enumeration:
		if o.Title == "" {
			return Decl{}, false
		}
		for _, e := range o.Enumerators {
			d.Enumerators = append(d.Enumerators, Enumerator{Name: u.Name(e.Name), Value: e.Value})
		}
	case *symbols.TypeAlias:
		d.Type = types.Present(o.Type)
	default:
		return Decl{}, false
	}
	return d, true
}

func params(u *symbols.Universe, ps []*symbols.Param) []Field {
	out := make([]Field, 0, len(ps))
	for _, p := range ps {
		out = append(out, Field{Name: u.Name(p.Name), Type: types.Present(p.Type)})
	}
	return out
}

// value renders a folded constant; fixed values are 16.16.
func value(v symbols.Value) string {
	switch v.Spec {
	case types.SpecStr:
		return strconv.Quote(v.Str)
	case types.SpecFixed:
		return strconv.FormatFloat(float64(v.Int)/(1<<16), 'f', -1, 64)
	case types.SpecBool:
		return strconv.FormatBool(v.Int != 0)
	}
	return strconv.FormatInt(int64(v.Int), 10)
}

// Write serializes doc in the requested format.
func Write(w io.Writer, doc *Document, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("dump: encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("dump: encode json: %w", err)
		}
		return nil
	}
	return fmt.Errorf("dump: unknown format %q", format)
}
