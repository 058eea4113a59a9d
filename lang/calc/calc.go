// Package calc is a small C-like language of statements and expressions:
// let bindings, functions, if/else, while loops and returns over numbers,
// strings, booleans and arrays.
//
// It exercises every part of the engine: scanner configurations, the Pratt
// expression driver, statement-level subtree reuse and a typed syntax tree
// built on top of the green tree.
package calc

import "github.com/dhamidi/oak/lang"

// Language is the calc language.
type Language struct {
	stepBudget int
}

type Option func(*Language)

// WithStepBudget bounds the lexer and parser loops; zero means unbounded.
func WithStepBudget(steps int) Option {
	return func(l *Language) {
		l.stepBudget = steps
	}
}

func New(opts ...Option) *Language {
	l := &Language{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Language) Info() lang.Info {
	return lang.Info{
		Name:              "calc",
		Extensions:        []string{".calc"},
		Keywords:          []string{"let", "fn", "if", "else", "while", "return", "true", "false"},
		TriggerCharacters: []string{"."},
		Grammar:           Grammar,
		Start:             "Program",
		Terminals:         map[string]string{"ident": "Ident", "number": "Number", "string": "String"},
	}
}

// Grammar is the reference grammar of calc in EBNF. Operator precedence,
// from loosest to tightest: assignment (right associative), ||, &&,
// equality and relational operators (non-associative), additive,
// multiplicative, prefix - and !, then calls, indexing and member access.
const Grammar = `
Program    = { Statement } .
Statement  = LetStmt | FnDecl | IfStmt | WhileStmt | ReturnStmt | Block | ExprStmt .
LetStmt    = "let" ident [ "=" Expression ] ";" .
FnDecl     = "fn" ident ParamList Block .
ParamList  = "(" [ ident { "," ident } [ "," ] ] ")" .
Block      = "{" { Statement } "}" .
IfStmt     = "if" "(" Expression ")" Block [ "else" ( IfStmt | Block ) ] .
WhileStmt  = "while" "(" Expression ")" Block .
ReturnStmt = "return" [ Expression ] ";" .
ExprStmt   = Expression ";" .

Expression = Unary { BinaryOp Unary } .
BinaryOp   = "=" | "||" | "&&" | "==" | "!=" | "<" | "<=" | ">" | ">=" | "+" | "-" | "*" | "/" | "%" .
Unary      = { "-" | "!" } Postfix .
Postfix    = Primary { Arguments | Index | Member } .
Arguments  = "(" [ Expression { "," Expression } [ "," ] ] ")" .
Index      = "[" Expression "]" .
Member     = "." ident .
Primary    = ident | number | string | "true" | "false" | "(" Expression ")" | Array .
Array      = "[" [ Expression { "," Expression } [ "," ] ] "]" .

ident      = letter { letter | digit } .
number     = digit { digit } [ "." digit { digit } ] [ exponent ] .
exponent   = ( "e" | "E" ) [ "+" | "-" ] digit { digit } .
string     = "\"" { char } "\"" .
letter     = "a" … "z" | "A" … "Z" | "_" .
digit      = "0" … "9" .
char       = " " … "~" .
`
