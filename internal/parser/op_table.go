package parser

import "quill/internal/token"

type prec uint8

const (
	precLowest prec = iota
	precOrOr
	precAndAnd
	precPipe
	precCaret
	precAmp
	precEquality
	precCompare
	precShift
	precAdditive
	precMultiplicative
)

var binaryPrec = map[token.Kind]prec{
	token.OrOr:    precOrOr,
	token.AndAnd:  precAndAnd,
	token.Pipe:    precPipe,
	token.Caret:   precCaret,
	token.Amp:     precAmp,
	token.EqEq:    precEquality,
	token.BangEq:  precEquality,
	token.Lt:      precCompare,
	token.LtEq:    precCompare,
	token.Gt:      precCompare,
	token.GtEq:    precCompare,
	token.Shl:     precShift,
	token.Shr:     precShift,
	token.Plus:    precAdditive,
	token.Minus:   precAdditive,
	token.Star:    precMultiplicative,
	token.Slash:   precMultiplicative,
	token.Percent: precMultiplicative,
}
