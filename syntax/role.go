// Package syntax provides the language-independent syntax tree: an
// immutable, position-free green tree that can be shared between parses,
// and a red view that adds absolute offsets on demand.
//
// Languages supply their own token and element kinds. Each kind maps to a
// generic role so that tooling can work on any language without knowing its
// kinds.
package syntax

import "fmt"

// TokenRole classifies a token kind for language-independent tooling.
type TokenRole int

const (
	TokenRoleNone TokenRole = iota
	TokenRoleKeyword
	TokenRoleName
	TokenRoleLiteral
	TokenRoleEscape
	TokenRoleOperator
	TokenRolePunctuation
	TokenRoleComment
	TokenRoleWhitespace
	TokenRoleError
	TokenRoleEOF
)

var tokenRoleNames = map[TokenRole]string{
	TokenRoleNone:        "None",
	TokenRoleKeyword:     "Keyword",
	TokenRoleName:        "Name",
	TokenRoleLiteral:     "Literal",
	TokenRoleEscape:      "Escape",
	TokenRoleOperator:    "Operator",
	TokenRolePunctuation: "Punctuation",
	TokenRoleComment:     "Comment",
	TokenRoleWhitespace:  "Whitespace",
	TokenRoleError:       "Error",
	TokenRoleEOF:         "EOF",
}

func (r TokenRole) String() string {
	if name, ok := tokenRoleNames[r]; ok {
		return name
	}
	return "Unknown"
}

// IsTrivia reports whether tokens with this role are skipped by parsers.
func (r TokenRole) IsTrivia() bool {
	return r == TokenRoleWhitespace || r == TokenRoleComment
}

// ElementRole classifies an element kind for language-independent tooling.
type ElementRole int

const (
	ElementRoleNone ElementRole = iota
	ElementRoleRoot
	ElementRoleContainer
	ElementRoleDefinition
	ElementRoleBinding
	ElementRoleReference
	ElementRoleName
	ElementRoleStatement
	ElementRoleExpression
	ElementRoleCall
	ElementRoleValue
	ElementRoleError
)

var elementRoleNames = map[ElementRole]string{
	ElementRoleNone:       "None",
	ElementRoleRoot:       "Root",
	ElementRoleContainer:  "Container",
	ElementRoleDefinition: "Definition",
	ElementRoleBinding:    "Binding",
	ElementRoleReference:  "Reference",
	ElementRoleName:       "Name",
	ElementRoleStatement:  "Statement",
	ElementRoleExpression: "Expression",
	ElementRoleCall:       "Call",
	ElementRoleValue:      "Value",
	ElementRoleError:      "Error",
}

func (r ElementRole) String() string {
	if name, ok := elementRoleNames[r]; ok {
		return name
	}
	return "Unknown"
}

// TokenKind is implemented by a language's token kind enum.
type TokenKind interface {
	comparable
	fmt.Stringer
	Role() TokenRole
}

// ElementKind is implemented by a language's element kind enum.
type ElementKind interface {
	comparable
	fmt.Stringer
	Role() ElementRole
}
