// Package fuzztests houses Go fuzz harnesses for the quill front-end
// (source -> lexer -> parser -> resolver). They guard against panics and
// hangs on arbitrary input.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
package fuzztests
