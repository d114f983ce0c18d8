package lexer

import (
	"quill/internal/diag"
	"quill/internal/token"
)

// Поддержка: 0, 123, 0x1F, 1.5. Экспоненты нет: fixed хранится как 16.16.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	kind := token.IntLit

	if lx.cursor.Peek() == '0' && (lx.cursor.PeekAt(1) == 'x' || lx.cursor.PeekAt(1) == 'X') {
		lx.cursor.Bump()
		lx.cursor.Bump()
		digits := 0
		for isHex(lx.cursor.Peek()) && !lx.cursor.EOF() {
			lx.cursor.Bump()
			digits++
		}
		sp := lx.cursor.SpanFrom(start)
		if digits == 0 {
			lx.report(diag.LexBadNumber, sp, "expected hex digit after '0x'")
			return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
		}
		return lx.finishNumber(start, kind)
	}

	for isDec(lx.cursor.Peek()) && !lx.cursor.EOF() {
		lx.cursor.Bump()
	}
	if lx.cursor.Peek() == '.' && isDec(lx.cursor.PeekAt(1)) {
		kind = token.FixedLit
		lx.cursor.Bump()
		for isDec(lx.cursor.Peek()) && !lx.cursor.EOF() {
			lx.cursor.Bump()
		}
	}
	return lx.finishNumber(start, kind)
}

// finishNumber rejects literals glued to identifier characters ("12ab").
func (lx *Lexer) finishNumber(start Mark, kind token.Kind) token.Token {
	if b := lx.cursor.Peek(); isIdentStartByte(b) && !lx.cursor.EOF() {
		for isIdentContinueByte(lx.cursor.Peek()) && !lx.cursor.EOF() {
			lx.cursor.Bump()
		}
		sp := lx.cursor.SpanFrom(start)
		lx.report(diag.LexBadNumber, sp, "malformed number literal '"+lx.text(sp)+"'")
		return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: kind, Span: sp, Text: lx.text(sp)}
}
