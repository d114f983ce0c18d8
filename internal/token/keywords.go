package token

var keywords = map[string]Kind{
	"namespace": KwNamespace,
	"using":     KwUsing,
	"private":   KwPrivate,
	"enum":      KwEnum,
	"struct":    KwStruct,
	"typedef":   KwTypedef,
	"const":     KwConst,
	"world":     KwWorld,
	"global":    KwGlobal,
	"function":  KwFunction,
	"msgbuild":  KwMsgbuild,
	"script":    KwScript,
	"upmost":    KwUpmost,
	"raw":       KwRaw,
	"int":       KwInt,
	"fixed":     KwFixed,
	"bool":      KwBool,
	"str":       KwStr,
	"void":      KwVoid,
	"if":        KwIf,
	"else":      KwElse,
	"while":     KwWhile,
	"return":    KwReturn,
	"break":     KwBreak,
	"continue":  KwContinue,
	"true":      KwTrue,
	"false":     KwFalse,
	"null":      KwNull,
}

var keywordText = func() map[Kind]string {
	m := make(map[Kind]string, len(keywords))
	for text, k := range keywords {
		m[k] = text
	}
	return m
}()

// LookupKeyword возвращает тип и bool если это ключевое слово.
// Ключевые слова регистрозависимые.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
