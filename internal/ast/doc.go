// Package ast holds the trees produced by the parser and consumed by the
// resolver. Declarations, statements and expressions are closed sets of node
// types behind the Decl, Stmt and Expr interfaces.
//
// Nothing here is resolved: type specifiers keep the path or keyword as
// written, and the resolver attaches its results to its own objects.
package ast
