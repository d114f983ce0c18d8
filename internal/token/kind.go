package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	Ident
	IntLit   // 42, 0x2a
	FixedLit // 1.5
	StringLit

	keywordBegin
	KwNamespace // namespace
	KwUsing     // using
	KwPrivate   // private
	KwEnum      // enum
	KwStruct    // struct
	KwTypedef   // typedef
	KwConst     // const
	KwWorld     // world
	KwGlobal    // global
	KwFunction  // function
	KwMsgbuild  // msgbuild
	KwScript    // script
	KwUpmost    // upmost
	KwRaw       // raw
	KwInt       // int
	KwFixed     // fixed
	KwBool      // bool
	KwStr       // str
	KwVoid      // void
	KwIf        // if
	KwElse      // else
	KwWhile     // while
	KwReturn    // return
	KwBreak     // break
	KwContinue  // continue
	KwTrue      // true
	KwFalse     // false
	KwNull      // null
	keywordEnd

	Plus          // +
	Minus         // -
	Star          // *
	Slash         // /
	Percent       // %
	Assign        // =
	PlusAssign    // +=
	MinusAssign   // -=
	StarAssign    // *=
	SlashAssign   // /=
	PercentAssign // %=
	EqEq          // ==
	Bang          // !
	BangEq        // !=
	Lt            // <
	LtEq          // <=
	Gt            // >
	GtEq          // >=
	Shl           // <<
	Shr           // >>
	Amp           // &
	Pipe          // |
	Caret         // ^
	Tilde         // ~
	AndAnd        // &&
	OrOr          // ||
	Question      // ?
	Colon         // :
	ColonColon    // ::
	Semicolon     // ;
	Comma         // ,
	Dot           // .
	LParen        // (
	RParen        // )
	LBrace        // {
	RBrace        // }
	LBracket      // [
	RBracket      // ]
	Hash          // #
)

var kindNames = [...]string{
	Invalid:   "invalid",
	EOF:       "end of file",
	Ident:     "identifier",
	IntLit:    "integer literal",
	FixedLit:  "fixed literal",
	StringLit: "string literal",

	Plus: "+", Minus: "-", Star: "*", Slash: "/", Percent: "%",
	Assign: "=", PlusAssign: "+=", MinusAssign: "-=", StarAssign: "*=",
	SlashAssign: "/=", PercentAssign: "%=",
	EqEq: "==", Bang: "!", BangEq: "!=", Lt: "<", LtEq: "<=", Gt: ">", GtEq: ">=",
	Shl: "<<", Shr: ">>", Amp: "&", Pipe: "|", Caret: "^", Tilde: "~",
	AndAnd: "&&", OrOr: "||", Question: "?", Colon: ":", ColonColon: "::",
	Semicolon: ";", Comma: ",", Dot: ".",
	LParen: "(", RParen: ")", LBrace: "{", RBrace: "}", LBracket: "[", RBracket: "]",
	Hash: "#",
}

func (k Kind) String() string {
	if k.IsKeyword() {
		return keywordText[k]
	}
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// IsKeyword reports whether k is a reserved word.
func (k Kind) IsKeyword() bool {
	return k > keywordBegin && k < keywordEnd
}

// IsTypeKeyword reports whether k names a scalar specifier.
func (k Kind) IsTypeKeyword() bool {
	switch k {
	case KwRaw, KwInt, KwFixed, KwBool, KwStr, KwVoid:
		return true
	}
	return false
}

// IsAssign reports plain and compound assignment operators.
func (k Kind) IsAssign() bool {
	switch k {
	case Assign, PlusAssign, MinusAssign, StarAssign, SlashAssign, PercentAssign:
		return true
	}
	return false
}
