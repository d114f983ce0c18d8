package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Лексические
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004

	// Синтаксические
	SynInfo               Code = 2000
	SynUnexpectedToken    Code = 2001
	SynExpectSemicolon    Code = 2002
	SynExpectIdentifier   Code = 2003
	SynExpectType         Code = 2004
	SynExpectExpression   Code = 2005
	SynUnclosedDelimiter  Code = 2006
	SynBadDirective       Code = 2007
	SynPrivateNotAllowed  Code = 2008
	SynExpectString       Code = 2009
	SynUnexpectedTopLevel Code = 2010

	// Семантические
	SemaInfo             Code = 3000
	SemaNameNotFound     Code = 3001
	SemaNotInNamespace   Code = 3002
	SemaNotAType         Code = 3003
	SemaDuplicateName    Code = 3004
	SemaAmbiguousName    Code = 3005
	SemaTypeMismatch     Code = 3006
	SemaInvalidRefTarget Code = 3007
	SemaStructByValue    Code = 3008
	SemaInfiniteSize     Code = 3009
	SemaEnumOverflow     Code = 3010
	SemaNotConstant      Code = 3011
	SemaBadDimension     Code = 3012
	SemaUninitializedRef Code = 3013
	SemaDuplicateLink    Code = 3014
	SemaNotANamespace    Code = 3015
	SemaUnresolved       Code = 3016
	SemaArity            Code = 3017
	SemaNotCallable      Code = 3018
	SemaInvalidOperands  Code = 3019
	SemaMisplacedJump    Code = 3020
	SemaNotAssignable    Code = 3021
	SemaNoMember         Code = 3022
	SemaBadInitializer   Code = 3023
	SemaVoidValue        Code = 3024
	SemaNotAValue        Code = 3025
	SemaStorageIndex     Code = 3026

	// I/O
	IOLoadFileError  Code = 4001
	IOImportNotFound Code = 4002

	// Проектные
	ProjManifestError    Code = 5001
	ProjImportCycle      Code = 5002
	ProjNotLibrary       Code = 5003
	ProjDuplicateLibrary Code = 5004
	ProjDependencyFailed Code = 5005
	ProjIncludedLibrary  Code = 5006
	ProjSharedFile       Code = 5007

	// Наблюдаемость
	ObsTimings Code = 6001
)

var codeDescription = map[Code]string{
	UnknownCode:                 "Unknown error",
	LexInfo:                     "Lexical information",
	LexUnknownChar:              "Unknown character",
	LexUnterminatedString:       "Unterminated string literal",
	LexUnterminatedBlockComment: "Unterminated block comment",
	LexBadNumber:                "Malformed number literal",

	SynInfo:               "Syntax information",
	SynUnexpectedToken:    "Unexpected token",
	SynExpectSemicolon:    "Expected ';'",
	SynExpectIdentifier:   "Expected identifier",
	SynExpectType:         "Expected type specifier",
	SynExpectExpression:   "Expected expression",
	SynUnclosedDelimiter:  "Unclosed delimiter",
	SynBadDirective:       "Malformed directive",
	SynPrivateNotAllowed:  "'private' is not allowed here",
	SynExpectString:       "Expected string literal",
	SynUnexpectedTopLevel: "Unexpected item at namespace scope",

	SemaInfo:             "Semantic information",
	SemaNameNotFound:     "Name not found",
	SemaNotInNamespace:   "Object not found in namespace",
	SemaNotAType:         "Object is not a valid type",
	SemaDuplicateName:    "Duplicate name",
	SemaAmbiguousName:    "Ambiguous name",
	SemaTypeMismatch:     "Incompatible types",
	SemaInvalidRefTarget: "Invalid reference target",
	SemaStructByValue:    "Structure used by value",
	SemaInfiniteSize:     "Structure has infinite size",
	SemaEnumOverflow:     "Enumerator value overflow",
	SemaNotConstant:      "Expression is not constant",
	SemaBadDimension:     "Invalid array dimension",
	SemaUninitializedRef: "Reference left uninitialized",
	SemaDuplicateLink:    "Namespace linked twice",
	SemaNotANamespace:    "Object is not a namespace",
	SemaUnresolved:       "Unable to resolve declaration",
	SemaArity:            "Wrong number of arguments",
	SemaNotCallable:      "Object is not callable",
	SemaInvalidOperands:  "Invalid operands",
	SemaMisplacedJump:    "Jump statement outside of loop",
	SemaNotAssignable:    "Expression is not assignable",
	SemaNoMember:         "No such structure member",
	SemaBadInitializer:   "Malformed initializer",
	SemaVoidValue:        "Void value used",
	SemaNotAValue:        "Object is not a value",
	SemaStorageIndex:     "Invalid storage index",

	IOLoadFileError:  "Failed to load file",
	IOImportNotFound: "Imported file not found",

	ProjManifestError:    "Invalid project manifest",
	ProjImportCycle:      "Import cycle",
	ProjNotLibrary:       "Imported file is not a library",
	ProjDuplicateLibrary: "Duplicate library name",
	ProjDependencyFailed: "Imported library has errors",
	ProjIncludedLibrary:  "Included file starts a library",
	ProjSharedFile:       "File belongs to two libraries",

	ObsTimings: "Timings",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
