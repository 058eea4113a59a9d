package calc

import (
	"fmt"
	"strings"

	"github.com/dhamidi/oak/source"
)

// Node is an element of the typed calc syntax tree.
type Node interface {
	Span() source.Span
}

type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression. String renders it in prefix notation, e.g.
// (+ 1 (* 2 3)).
type Expr interface {
	Node
	fmt.Stringer
	exprNode()
}

type Program struct {
	Statements []Stmt
	span       source.Span
}

func (p *Program) Span() source.Span { return p.span }

type LetStmt struct {
	Name  string
	Value Expr
	span  source.Span
}

type FnDecl struct {
	Name   string
	Params []string
	Body   *Block
	span   source.Span
}

type Block struct {
	Statements []Stmt
	span       source.Span
}

type IfStmt struct {
	Cond Expr
	Then *Block
	// Else is an *IfStmt, a *Block or nil.
	Else Stmt
	span source.Span
}

type WhileStmt struct {
	Cond Expr
	Body *Block
	span source.Span
}

type ReturnStmt struct {
	Value Expr
	span  source.Span
}

type ExprStmt struct {
	X    Expr
	span source.Span
}

// BadStmt stands for a region the parser could not make sense of.
type BadStmt struct {
	span source.Span
}

func (s *LetStmt) Span() source.Span    { return s.span }
func (s *FnDecl) Span() source.Span     { return s.span }
func (s *Block) Span() source.Span      { return s.span }
func (s *IfStmt) Span() source.Span     { return s.span }
func (s *WhileStmt) Span() source.Span  { return s.span }
func (s *ReturnStmt) Span() source.Span { return s.span }
func (s *ExprStmt) Span() source.Span   { return s.span }
func (s *BadStmt) Span() source.Span    { return s.span }

func (*LetStmt) stmtNode()    {}
func (*FnDecl) stmtNode()     {}
func (*Block) stmtNode()      {}
func (*IfStmt) stmtNode()     {}
func (*WhileStmt) stmtNode()  {}
func (*ReturnStmt) stmtNode() {}
func (*ExprStmt) stmtNode()   {}
func (*BadStmt) stmtNode()    {}

type Ident struct {
	Name string
	span source.Span
}

// Literal is a number, string or boolean; Value is its source text.
type Literal struct {
	Kind  TokenKind
	Value string
	span  source.Span
}

type UnaryExpr struct {
	Op   TokenKind
	X    Expr
	span source.Span
}

type BinaryExpr struct {
	Op          TokenKind
	Left, Right Expr
	span        source.Span
}

type CallExpr struct {
	Fn   Expr
	Args []Expr
	span source.Span
}

type IndexExpr struct {
	X, Index Expr
	span     source.Span
}

type MemberExpr struct {
	X    Expr
	Name string
	span source.Span
}

type ParenExpr struct {
	X    Expr
	span source.Span
}

type ArrayExpr struct {
	Elements []Expr
	span     source.Span
}

// BadExpr stands for a missing or malformed expression.
type BadExpr struct {
	span source.Span
}

func (e *Ident) Span() source.Span      { return e.span }
func (e *Literal) Span() source.Span    { return e.span }
func (e *UnaryExpr) Span() source.Span  { return e.span }
func (e *BinaryExpr) Span() source.Span { return e.span }
func (e *CallExpr) Span() source.Span   { return e.span }
func (e *IndexExpr) Span() source.Span  { return e.span }
func (e *MemberExpr) Span() source.Span { return e.span }
func (e *ParenExpr) Span() source.Span  { return e.span }
func (e *ArrayExpr) Span() source.Span  { return e.span }
func (e *BadExpr) Span() source.Span    { return e.span }

func (*Ident) exprNode()      {}
func (*Literal) exprNode()    {}
func (*UnaryExpr) exprNode()  {}
func (*BinaryExpr) exprNode() {}
func (*CallExpr) exprNode()   {}
func (*IndexExpr) exprNode()  {}
func (*MemberExpr) exprNode() {}
func (*ParenExpr) exprNode()  {}
func (*ArrayExpr) exprNode()  {}
func (*BadExpr) exprNode()    {}

// opText strips the quotes from an operator kind's name.
func opText(k TokenKind) string {
	return strings.Trim(k.String(), "'")
}

func exprString(e Expr) string {
	if e == nil {
		return "<nil>"
	}
	return e.String()
}

func joinExprs(head string, exprs []Expr) string {
	parts := []string{head}
	for _, e := range exprs {
		parts = append(parts, exprString(e))
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func (e *Ident) String() string   { return e.Name }
func (e *Literal) String() string { return e.Value }
func (e *BadExpr) String() string { return "<error>" }

func (e *UnaryExpr) String() string {
	return fmt.Sprintf("(%s %s)", opText(e.Op), exprString(e.X))
}

func (e *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", opText(e.Op), exprString(e.Left), exprString(e.Right))
}

func (e *CallExpr) String() string {
	return joinExprs("call "+exprString(e.Fn), e.Args)
}

func (e *IndexExpr) String() string {
	return fmt.Sprintf("(index %s %s)", exprString(e.X), exprString(e.Index))
}

func (e *MemberExpr) String() string {
	return fmt.Sprintf("(. %s %s)", exprString(e.X), e.Name)
}

func (e *ParenExpr) String() string {
	return exprString(e.X)
}

func (e *ArrayExpr) String() string {
	return joinExprs("array", e.Elements)
}
