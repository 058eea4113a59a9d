package calc

import (
	"github.com/dhamidi/oak/diag"
	"github.com/dhamidi/oak/parser"
	"github.com/dhamidi/oak/source"
	"github.com/dhamidi/oak/syntax"
)

// Build parses src and converts the tree into a *Program. Regions that did
// not parse become BadStmt and BadExpr nodes; the diagnostics are those of
// the parse.
func (l *Language) Build(src source.Source, edits []source.TextEdit, cache parser.Cache[TokenKind, NodeKind]) diag.Result[*Program] {
	res := l.Parse(src, edits, cache)
	b := &builder{src: src}
	prog := &Program{span: source.Span{Start: 0, End: src.Len()}}
	prog.Statements = b.statements(syntax.NewRoot(res.Value))
	return diag.Result[*Program]{Value: prog, Err: res.Err, Diagnostics: res.Diagnostics}
}

type builder struct {
	src source.Source
}

func nodes(n RedNode) []RedNode {
	var out []RedNode
	for _, c := range n.Children() {
		if cn, ok := c.Node(); ok {
			out = append(out, cn)
		}
	}
	return out
}

func firstNode(n RedNode, kinds ...NodeKind) (RedNode, bool) {
	for _, cn := range nodes(n) {
		for _, k := range kinds {
			if cn.Kind() == k {
				return cn, true
			}
		}
	}
	return RedNode{}, false
}

// token returns the text of the first direct token of the given kind.
func (b *builder) token(n RedNode, kind TokenKind) string {
	for _, c := range n.Children() {
		if leaf, ok := c.Leaf(); ok && leaf.Kind == kind {
			return b.src.TextIn(leaf.Span)
		}
	}
	return ""
}

func isExpr(k NodeKind) bool {
	return k != KindArgList && (k >= KindBinaryExpr || k == KindError)
}

// exprs converts the direct expression children of n.
func (b *builder) exprs(n RedNode) []Expr {
	var out []Expr
	for _, cn := range nodes(n) {
		if isExpr(cn.Kind()) {
			out = append(out, b.expr(cn))
		}
	}
	return out
}

// firstExpr converts the first direct expression child of n, or returns
// nil when there is none.
func (b *builder) firstExpr(n RedNode) Expr {
	if exprs := b.exprs(n); len(exprs) > 0 {
		return exprs[0]
	}
	return nil
}

func (b *builder) statements(n RedNode) []Stmt {
	var out []Stmt
	for _, cn := range nodes(n) {
		out = append(out, b.stmt(cn))
	}
	return out
}

func (b *builder) block(n RedNode) *Block {
	return &Block{Statements: b.statements(n), span: n.Span()}
}

func (b *builder) optionalBlock(n RedNode) *Block {
	if cn, ok := firstNode(n, KindBlock); ok {
		return b.block(cn)
	}
	return nil
}

func (b *builder) stmt(n RedNode) Stmt {
	span := n.Span()
	switch n.Kind() {
	case KindLetStmt:
		return &LetStmt{Name: b.token(n, TokenIdent), Value: b.firstExpr(n), span: span}
	case KindFnDecl:
		fn := &FnDecl{Name: b.token(n, TokenIdent), Body: b.optionalBlock(n), span: span}
		if params, ok := firstNode(n, KindParamList); ok {
			for _, p := range nodes(params) {
				if p.Kind() == KindParam {
					fn.Params = append(fn.Params, b.token(p, TokenIdent))
				}
			}
		}
		return fn
	case KindBlock:
		return b.block(n)
	case KindIfStmt:
		s := &IfStmt{Cond: b.firstExpr(n), Then: b.optionalBlock(n), span: span}
		if clause, ok := firstNode(n, KindElseClause); ok {
			if cn, ok := firstNode(clause, KindIfStmt, KindBlock); ok {
				s.Else = b.stmt(cn)
			}
		}
		return s
	case KindWhileStmt:
		return &WhileStmt{Cond: b.firstExpr(n), Body: b.optionalBlock(n), span: span}
	case KindReturnStmt:
		return &ReturnStmt{Value: b.firstExpr(n), span: span}
	case KindExprStmt:
		return &ExprStmt{X: b.firstExpr(n), span: span}
	}
	return &BadStmt{span: span}
}

func (b *builder) expr(n RedNode) Expr {
	span := n.Span()
	switch n.Kind() {
	case KindNameExpr:
		return &Ident{Name: b.token(n, TokenIdent), span: span}
	case KindLiteral:
		for _, c := range n.Children() {
			if leaf, ok := c.Leaf(); ok && !leaf.Kind.Role().IsTrivia() {
				return &Literal{Kind: leaf.Kind, Value: b.src.TextIn(leaf.Span), span: span}
			}
		}
	case KindUnaryExpr:
		return &UnaryExpr{Op: operatorOf(n.Green), X: b.firstExpr(n), span: span}
	case KindBinaryExpr:
		e := &BinaryExpr{Op: operatorOf(n.Green), span: span}
		if operands := b.exprs(n); len(operands) == 2 {
			e.Left, e.Right = operands[0], operands[1]
		} else if len(operands) == 1 {
			e.Left = operands[0]
		}
		return e
	case KindParenExpr:
		return &ParenExpr{X: b.firstExpr(n), span: span}
	case KindArrayExpr:
		return &ArrayExpr{Elements: b.exprs(n), span: span}
	case KindCallExpr:
		e := &CallExpr{Fn: b.firstExpr(n), span: span}
		if args, ok := firstNode(n, KindArgList); ok {
			e.Args = b.exprs(args)
		}
		return e
	case KindIndexExpr:
		e := &IndexExpr{span: span}
		if operands := b.exprs(n); len(operands) == 2 {
			e.X, e.Index = operands[0], operands[1]
		} else if len(operands) == 1 {
			e.X = operands[0]
		}
		return e
	case KindMemberExpr:
		return &MemberExpr{X: b.firstExpr(n), Name: b.token(n, TokenIdent), span: span}
	}
	return &BadExpr{span: span}
}
