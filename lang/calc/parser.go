package calc

import (
	"github.com/dhamidi/oak/diag"
	"github.com/dhamidi/oak/lexer"
	"github.com/dhamidi/oak/parser"
	"github.com/dhamidi/oak/source"
)

type pstate = parser.State[TokenKind, NodeKind]

var parseKinds = parser.Kinds[TokenKind, NodeKind]{EOF: TokenEOF, Error: KindError}

// Parse lexes and parses src. With a cache holding the previous parse and
// the edits that led to src, unchanged tokens and statements are reused.
func (l *Language) Parse(src source.Source, edits []source.TextEdit, cache parser.Cache[TokenKind, NodeKind]) diag.Result[*GreenNode] {
	var lc lexer.Cache[TokenKind]
	if cache != nil {
		lc = cache
	}
	lexed := l.lex(src, edits, lc).Finish()

	var opts []parser.Option
	if l.stepBudget > 0 {
		opts = append(opts, parser.WithStepBudget(l.stepBudget))
	}
	st := parser.NewState(src, lexed.Value, parseKinds, opts...)
	if cache != nil {
		st.Incremental(cache, edits)
		cache.SetLexOutput(lexed.Value, lexed.Diagnostics)
	}
	res := st.Run(KindProgram, program)
	res.Diagnostics = diag.Merge(lexed.Diagnostics, res.Diagnostics)
	return res
}

// statementStart are the tokens that begin a statement other than an
// expression statement.
var statementStart = []TokenKind{TokenLet, TokenFn, TokenIf, TokenWhile, TokenReturn, TokenLBrace}

func program(st *pstate) {
	for st.NotAtEnd() {
		progress := st.MustProgress()
		statement(st)
		progress()
	}
}

func statement(st *pstate) {
	switch st.Peek() {
	case TokenLet:
		st.IncrementalNode(KindLetStmt, func() { letStmt(st) })
	case TokenFn:
		st.IncrementalNode(KindFnDecl, func() { fnDecl(st) })
	case TokenIf:
		ifStmt(st)
	case TokenWhile:
		st.IncrementalNode(KindWhileStmt, func() { whileStmt(st) })
	case TokenReturn:
		st.IncrementalNode(KindReturnStmt, func() { returnStmt(st) })
	case TokenLBrace:
		block(st)
	default:
		if !startsExpression(st.Peek()) {
			sync := append([]TokenKind{TokenSemicolon, TokenRBrace}, statementStart...)
			st.ErrorNode("expected statement, found "+st.Peek().String(), sync...)
			st.Eat(TokenSemicolon)
			return
		}
		st.IncrementalNode(KindExprStmt, func() {
			expression(st)
			st.Expect(TokenSemicolon)
		})
	}
}

func letStmt(st *pstate) {
	st.Bump()
	st.Expect(TokenIdent)
	if st.Eat(TokenAssign) {
		expression(st)
	}
	st.Expect(TokenSemicolon)
}

func fnDecl(st *pstate) {
	st.Bump()
	st.Expect(TokenIdent)
	paramList(st)
	block(st)
}

func paramList(st *pstate) {
	if !st.At(TokenLParen) {
		st.Unexpected(TokenLParen.String())
		return
	}
	cp := st.Checkpoint()
	st.Bump()
	for !st.At(TokenRParen) && st.NotAtEnd() {
		if st.At(TokenIdent) {
			param := st.Checkpoint()
			st.Bump()
			st.FinishAt(param, KindParam)
		} else {
			st.ErrorNode("expected parameter name", TokenComma, TokenRParen, TokenLBrace)
		}
		if !st.Eat(TokenComma) {
			break
		}
	}
	st.Expect(TokenRParen)
	st.FinishAt(cp, KindParamList)
}

// block parses a braced statement list. Without an opening brace it only
// records the problem, so the statements that follow stay at their level.
func block(st *pstate) {
	if !st.At(TokenLBrace) {
		st.Unexpected(TokenLBrace.String())
		return
	}
	st.IncrementalNode(KindBlock, func() {
		st.Bump()
		for !st.At(TokenRBrace) && st.NotAtEnd() {
			progress := st.MustProgress()
			statement(st)
			progress()
		}
		st.Expect(TokenRBrace)
	})
}

func condition(st *pstate) {
	st.Expect(TokenLParen)
	expression(st)
	st.Expect(TokenRParen)
}

func ifStmt(st *pstate) {
	st.IncrementalNode(KindIfStmt, func() {
		st.Bump()
		condition(st)
		block(st)
		if st.At(TokenElse) {
			cp := st.Checkpoint()
			st.Bump()
			switch {
			case st.At(TokenIf):
				ifStmt(st)
			case st.At(TokenLBrace):
				block(st)
			default:
				st.Unexpected("'if' or '{'")
			}
			st.FinishAt(cp, KindElseClause)
		}
	})
}

func whileStmt(st *pstate) {
	st.Bump()
	condition(st)
	block(st)
}

func returnStmt(st *pstate) {
	st.Bump()
	if startsExpression(st.Peek()) {
		expression(st)
	}
	st.Expect(TokenSemicolon)
}

func startsExpression(kind TokenKind) bool {
	switch kind {
	case TokenIdent, TokenNumber, TokenString, TokenTrue, TokenFalse,
		TokenLParen, TokenLBracket, TokenMinus, TokenBang:
		return true
	}
	return false
}

func expression(st *pstate) *GreenNode {
	return parser.Parse(st, 0, exprGrammar{})
}

const (
	precUnary   = 8
	precPostfix = 9
)

var infixOperators = map[TokenKind]parser.OperatorInfo{
	TokenAssign:  parser.Right(1),
	TokenOrOr:    parser.Left(2),
	TokenAndAnd:  parser.Left(3),
	TokenEqEq:    parser.NonAssoc(4),
	TokenNotEq:   parser.NonAssoc(4),
	TokenLt:      parser.NonAssoc(5),
	TokenLtEq:    parser.NonAssoc(5),
	TokenGt:      parser.NonAssoc(5),
	TokenGtEq:    parser.NonAssoc(5),
	TokenPlus:    parser.Left(6),
	TokenMinus:   parser.Left(6),
	TokenStar:    parser.Left(7),
	TokenSlash:   parser.Left(7),
	TokenPercent: parser.Left(7),
}

type exprGrammar struct{}

func (g exprGrammar) Prefix(st *pstate) *GreenNode {
	if st.AtAny(TokenMinus, TokenBang) {
		return parser.Unary(st, precUnary, KindUnaryExpr, g)
	}
	return g.Primary(st)
}

func (g exprGrammar) Primary(st *pstate) *GreenNode {
	switch st.Peek() {
	case TokenNumber, TokenString, TokenTrue, TokenFalse:
		cp := st.Checkpoint()
		st.Bump()
		return st.FinishAt(cp, KindLiteral)
	case TokenIdent:
		cp := st.Checkpoint()
		st.Bump()
		return st.FinishAt(cp, KindNameExpr)
	case TokenLParen:
		cp := st.Checkpoint()
		st.Bump()
		expression(st)
		st.Expect(TokenRParen)
		return st.FinishAt(cp, KindParenExpr)
	case TokenLBracket:
		cp := st.Checkpoint()
		st.Bump()
		g.list(st, TokenRBracket)
		st.Expect(TokenRBracket)
		return st.FinishAt(cp, KindArrayExpr)
	}
	if isTerminator(st.Peek()) {
		// Leave the token to the enclosing rule.
		cp := st.Checkpoint()
		st.Unexpected("expression")
		return st.FinishAt(cp, KindError)
	}
	return st.ErrorNode("expected expression, found " + st.Peek().String())
}

// isTerminator reports whether kind closes or separates the construct
// around an expression.
func isTerminator(kind TokenKind) bool {
	switch kind {
	case TokenEOF, TokenSemicolon, TokenComma, TokenRParen, TokenRBrace, TokenRBracket,
		TokenLet, TokenFn, TokenIf, TokenElse, TokenWhile, TokenReturn, TokenLBrace:
		return true
	}
	return false
}

// list parses comma separated expressions up to close, allowing a
// trailing comma.
func (g exprGrammar) list(st *pstate, close TokenKind) {
	for !st.At(close) && st.NotAtEnd() {
		expression(st)
		if !st.Eat(TokenComma) {
			break
		}
	}
}

func (g exprGrammar) Infix(st *pstate, left *GreenNode, minPrec int) *GreenNode {
	if precPostfix >= minPrec {
		switch st.Peek() {
		case TokenLParen:
			cp := st.CheckpointBefore(left)
			args := st.Checkpoint()
			st.Bump()
			g.list(st, TokenRParen)
			st.Expect(TokenRParen)
			st.FinishAt(args, KindArgList)
			return st.FinishAt(cp, KindCallExpr)
		case TokenLBracket:
			cp := st.CheckpointBefore(left)
			st.Bump()
			expression(st)
			st.Expect(TokenRBracket)
			return st.FinishAt(cp, KindIndexExpr)
		case TokenDot:
			cp := st.CheckpointBefore(left)
			st.Bump()
			st.Expect(TokenIdent)
			return st.FinishAt(cp, KindMemberExpr)
		}
	}

	op, ok := infixOperators[st.Peek()]
	if !ok || op.Precedence < minPrec {
		return nil
	}
	if op.Assoc == parser.AssocNone && left.Kind() == KindBinaryExpr {
		if prev, ok := infixOperators[operatorOf(left)]; ok && prev.Precedence == op.Precedence {
			st.Error("comparison operators cannot be chained")
		}
	}
	return parser.Binary(st, left, op, KindBinaryExpr, g)
}

// operatorOf returns the operator token of a unary or binary expression.
func operatorOf(n *GreenNode) TokenKind {
	for _, c := range n.Children() {
		if !c.IsNode() && !c.Leaf.Kind.Role().IsTrivia() {
			return c.Leaf.Kind
		}
	}
	return TokenError
}
