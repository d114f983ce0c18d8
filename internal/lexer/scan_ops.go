package lexer

import (
	"fmt"

	"quill/internal/diag"
	"quill/internal/token"
)

// двухсимвольные операторы, жадно
var twoByteOps = map[[2]byte]token.Kind{
	{'+', '='}: token.PlusAssign,
	{'-', '='}: token.MinusAssign,
	{'*', '='}: token.StarAssign,
	{'/', '='}: token.SlashAssign,
	{'%', '='}: token.PercentAssign,
	{'=', '='}: token.EqEq,
	{'!', '='}: token.BangEq,
	{'<', '='}: token.LtEq,
	{'>', '='}: token.GtEq,
	{'<', '<'}: token.Shl,
	{'>', '>'}: token.Shr,
	{'&', '&'}: token.AndAnd,
	{'|', '|'}: token.OrOr,
	{':', ':'}: token.ColonColon,
}

var oneByteOps = map[byte]token.Kind{
	'+': token.Plus, '-': token.Minus, '*': token.Star, '/': token.Slash, '%': token.Percent,
	'=': token.Assign, '!': token.Bang, '<': token.Lt, '>': token.Gt,
	'&': token.Amp, '|': token.Pipe, '^': token.Caret, '~': token.Tilde,
	'?': token.Question, ':': token.Colon, ';': token.Semicolon, ',': token.Comma,
	'.': token.Dot, '(': token.LParen, ')': token.RParen, '{': token.LBrace,
	'}': token.RBrace, '[': token.LBracket, ']': token.RBracket, '#': token.Hash,
}

func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	b0, b1 := lx.cursor.Peek(), lx.cursor.PeekAt(1)

	if k, ok := twoByteOps[[2]byte{b0, b1}]; ok {
		lx.cursor.Bump()
		lx.cursor.Bump()
		sp := lx.cursor.SpanFrom(start)
		return token.Token{Kind: k, Span: sp, Text: lx.text(sp)}
	}
	if k, ok := oneByteOps[b0]; ok {
		lx.cursor.Bump()
		sp := lx.cursor.SpanFrom(start)
		return token.Token{Kind: k, Span: sp, Text: lx.text(sp)}
	}

	// неизвестный символ: съедаем руну целиком
	r, sz := lx.peekRune()
	if sz == 0 {
		lx.cursor.Bump()
	} else {
		lx.bumpRune()
	}
	sp := lx.cursor.SpanFrom(start)
	lx.report(diag.LexUnknownChar, sp, fmt.Sprintf("unknown character %q", r))
	return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
}
