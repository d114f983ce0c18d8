// Package token defines the lexical token kinds of quill sources.
// Invariants:
//   - Token.Span matches the source bytes of the token exactly.
//   - Token.Text is the source text, except for identifiers, which are
//     NFC-normalized so that equal names intern to one id.
//   - Comments and whitespace never reach the token stream.
//   - Directives are lexed as Hash + Ident ("#library" is two tokens).
package token
