package json

import "github.com/dhamidi/oak/syntax"

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenError
	TokenWhitespace
	TokenComment
	TokenString
	TokenNumber
	TokenTrue
	TokenFalse
	TokenNull
	TokenBareKey
	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenRBracket
	TokenComma
	TokenColon
)

var tokenKindNames = map[TokenKind]string{
	TokenEOF:        "EOF",
	TokenError:      "Error",
	TokenWhitespace: "Whitespace",
	TokenComment:    "Comment",
	TokenString:     "String",
	TokenNumber:     "Number",
	TokenTrue:       "'true'",
	TokenFalse:      "'false'",
	TokenNull:       "'null'",
	TokenBareKey:    "BareKey",
	TokenLBrace:     "'{'",
	TokenRBrace:     "'}'",
	TokenLBracket:   "'['",
	TokenRBracket:   "']'",
	TokenComma:      "','",
	TokenColon:      "':'",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

func (k TokenKind) Role() syntax.TokenRole {
	switch k {
	case TokenEOF:
		return syntax.TokenRoleEOF
	case TokenError:
		return syntax.TokenRoleError
	case TokenWhitespace:
		return syntax.TokenRoleWhitespace
	case TokenComment:
		return syntax.TokenRoleComment
	case TokenString, TokenNumber:
		return syntax.TokenRoleLiteral
	case TokenTrue, TokenFalse, TokenNull:
		return syntax.TokenRoleKeyword
	case TokenBareKey:
		return syntax.TokenRoleName
	default:
		return syntax.TokenRolePunctuation
	}
}

type NodeKind int

const (
	KindError NodeKind = iota
	KindDocument
	KindObject
	KindArray
	KindEntry
	KindKey
	KindString
	KindNumber
	KindBoolean
	KindNull
)

var nodeKindNames = map[NodeKind]string{
	KindError:    "Error",
	KindDocument: "Document",
	KindObject:   "Object",
	KindArray:    "Array",
	KindEntry:    "Entry",
	KindKey:      "Key",
	KindString:   "String",
	KindNumber:   "Number",
	KindBoolean:  "Boolean",
	KindNull:     "Null",
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
	case KindDocument:
		return syntax.ElementRoleRoot
	case KindObject, KindArray:
		return syntax.ElementRoleContainer
	case KindEntry:
		return syntax.ElementRoleDefinition
	case KindKey:
		return syntax.ElementRoleName
	default:
		return syntax.ElementRoleValue
	}
}

type (
	Token     = syntax.Token[TokenKind]
	GreenNode = syntax.GreenNode[TokenKind, NodeKind]
	RedNode   = syntax.RedNode[TokenKind, NodeKind]
)
