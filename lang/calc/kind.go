package calc

import "github.com/dhamidi/oak/syntax"

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenError
	TokenWhitespace
	TokenLineComment
	TokenBlockComment

	TokenIdent
	TokenNumber
	TokenString

	// Keywords
	TokenLet
	TokenFn
	TokenIf
	TokenElse
	TokenWhile
	TokenReturn
	TokenTrue
	TokenFalse

	// Punctuation
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenRBracket
	TokenComma
	TokenSemicolon
	TokenDot

	// Operators
	TokenAssign
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenPercent
	TokenBang
	TokenEqEq
	TokenNotEq
	TokenLt
	TokenLtEq
	TokenGt
	TokenGtEq
	TokenAndAnd
	TokenOrOr
)

var tokenKindNames = map[TokenKind]string{
	TokenEOF:          "EOF",
	TokenError:        "Error",
	TokenWhitespace:   "Whitespace",
	TokenLineComment:  "LineComment",
	TokenBlockComment: "BlockComment",
	TokenIdent:        "Ident",
	TokenNumber:       "Number",
	TokenString:       "String",
	TokenLet:          "'let'",
	TokenFn:           "'fn'",
	TokenIf:           "'if'",
	TokenElse:         "'else'",
	TokenWhile:        "'while'",
	TokenReturn:       "'return'",
	TokenTrue:         "'true'",
	TokenFalse:        "'false'",
	TokenLParen:       "'('",
	TokenRParen:       "')'",
	TokenLBrace:       "'{'",
	TokenRBrace:       "'}'",
	TokenLBracket:     "'['",
	TokenRBracket:     "']'",
	TokenComma:        "','",
	TokenSemicolon:    "';'",
	TokenDot:          "'.'",
	TokenAssign:       "'='",
	TokenPlus:         "'+'",
	TokenMinus:        "'-'",
	TokenStar:         "'*'",
	TokenSlash:        "'/'",
	TokenPercent:      "'%'",
	TokenBang:         "'!'",
	TokenEqEq:         "'=='",
	TokenNotEq:        "'!='",
	TokenLt:           "'<'",
	TokenLtEq:         "'<='",
	TokenGt:           "'>'",
	TokenGtEq:         "'>='",
	TokenAndAnd:       "'&&'",
	TokenOrOr:         "'||'",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

func (k TokenKind) Role() syntax.TokenRole {
	switch {
	case k == TokenEOF:
		return syntax.TokenRoleEOF
	case k == TokenError:
		return syntax.TokenRoleError
	case k == TokenWhitespace:
		return syntax.TokenRoleWhitespace
	case k == TokenLineComment, k == TokenBlockComment:
		return syntax.TokenRoleComment
	case k == TokenIdent:
		return syntax.TokenRoleName
	case k == TokenNumber, k == TokenString, k == TokenTrue, k == TokenFalse:
		return syntax.TokenRoleLiteral
	case k >= TokenLet && k <= TokenReturn:
		return syntax.TokenRoleKeyword
	case k >= TokenLParen && k <= TokenDot:
		return syntax.TokenRolePunctuation
	default:
		return syntax.TokenRoleOperator
	}
}

var keywords = map[string]TokenKind{
	"let":    TokenLet,
	"fn":     TokenFn,
	"if":     TokenIf,
	"else":   TokenElse,
	"while":  TokenWhile,
	"return": TokenReturn,
	"true":   TokenTrue,
	"false":  TokenFalse,
}

type NodeKind int

const (
	KindError NodeKind = iota
	KindProgram

	// Statements
	KindLetStmt
	KindFnDecl
	KindParamList
	KindParam
	KindBlock
	KindIfStmt
	KindElseClause
	KindWhileStmt
	KindReturnStmt
	KindExprStmt

	// Expressions
	KindBinaryExpr
	KindUnaryExpr
	KindCallExpr
	KindArgList
	KindIndexExpr
	KindMemberExpr
	KindParenExpr
	KindArrayExpr
	KindNameExpr
	KindLiteral
)

var nodeKindNames = map[NodeKind]string{
	KindError:      "Error",
	KindProgram:    "Program",
	KindLetStmt:    "LetStmt",
	KindFnDecl:     "FnDecl",
	KindParamList:  "ParamList",
	KindParam:      "Param",
	KindBlock:      "Block",
	KindIfStmt:     "IfStmt",
	KindElseClause: "ElseClause",
	KindWhileStmt:  "WhileStmt",
	KindReturnStmt: "ReturnStmt",
	KindExprStmt:   "ExprStmt",
	KindBinaryExpr: "BinaryExpr",
	KindUnaryExpr:  "UnaryExpr",
	KindCallExpr:   "CallExpr",
	KindArgList:    "ArgList",
	KindIndexExpr:  "IndexExpr",
	KindMemberExpr: "MemberExpr",
	KindParenExpr:  "ParenExpr",
	KindArrayExpr:  "ArrayExpr",
	KindNameExpr:   "NameExpr",
	KindLiteral:    "Literal",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

func (k NodeKind) Role() syntax.ElementRole {
	switch k {
	case KindError:
		return syntax.ElementRoleError
	case KindProgram:
		return syntax.ElementRoleRoot
	case KindLetStmt, KindFnDecl:
		return syntax.ElementRoleDefinition
	case KindParam:
		return syntax.ElementRoleBinding
	case KindBlock:
		return syntax.ElementRoleContainer
	case KindIfStmt, KindWhileStmt, KindReturnStmt, KindExprStmt:
		return syntax.ElementRoleStatement
	case KindCallExpr:
		return syntax.ElementRoleCall
	case KindNameExpr:
		return syntax.ElementRoleReference
	case KindLiteral, KindArrayExpr:
		return syntax.ElementRoleValue
	case KindBinaryExpr, KindUnaryExpr, KindIndexExpr, KindMemberExpr, KindParenExpr:
		return syntax.ElementRoleExpression
	default:
		return syntax.ElementRoleNone
	}
}

// Tree aliases for the calc kinds.
type (
	Token     = syntax.Token[TokenKind]
	GreenNode = syntax.GreenNode[TokenKind, NodeKind]
	RedNode   = syntax.RedNode[TokenKind, NodeKind]
)
