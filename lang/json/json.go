// Package json is JSON with opt-in extensions: comments, trailing commas,
// single-quoted strings and bare object keys.
package json

import "github.com/dhamidi/oak/lang"

// Options selects the extensions to standard JSON the language accepts.
type Options struct {
	Comments       bool
	TrailingCommas bool
	SingleQuotes   bool
	BareKeys       bool
	// StepBudget bounds the lexer and parser loops; zero means unbounded.
	StepBudget int
}

// Language is JSON configured by Options.
type Language struct {
	opts Options
}

func New(opts Options) *Language {
	return &Language{opts: opts}
}

func (l *Language) Options() Options {
	return l.opts
}

func (l *Language) Info() lang.Info {
	return lang.Info{
		Name:              "json",
		Aliases:           []string{"jsonc", "json5", "JSON with Comments"},
		Extensions:        []string{".json", ".jsonc"},
		Keywords:          []string{"true", "false", "null"},
		TriggerCharacters: []string{`"`},
		Grammar:           Grammar,
		Start:             "Document",
		Terminals:         map[string]string{"string": "String", "number": "Number"},
	}
}

// Grammar is the reference grammar of standard JSON in EBNF.
const Grammar = `
Document = Value .
Value    = Object | Array | string | number | "true" | "false" | "null" .
Object   = "{" [ Entry { "," Entry } ] "}" .
Entry    = Key ":" Value .
Key      = string .
Array    = "[" [ Value { "," Value } ] "]" .

string   = "\"" { char | escape } "\"" .
escape   = "\\" ( "\"" | "\\" | "/" | "b" | "f" | "n" | "r" | "t" | "u" hex hex hex hex ) .
hex      = digit | "a" … "f" | "A" … "F" .
number   = [ "-" ] int [ frac ] [ exp ] .
int      = "0" | onenine { digit } .
frac     = "." digit { digit } .
exp      = ( "e" | "E" ) [ "+" | "-" ] digit { digit } .
digit    = "0" … "9" .
onenine  = "1" … "9" .
char     = " " … "!" | "#" … "[" | "]" … "~" .
`
