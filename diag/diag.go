// Package diag defines the syntax error taxonomy shared by lexers, parsers
// and builders, and the Result wrapper every entry point returns.
package diag

import (
	"fmt"
	"sort"

	"github.com/dhamidi/oak/source"
)

type Kind int

const (
	KindSyntax Kind = iota
	KindUnexpectedToken
	KindUnexpectedEOF
	KindUnexpectedCharacter
	KindCustom
)

var kindNames = map[Kind]string{
	KindSyntax:              "SyntaxError",
	KindUnexpectedToken:     "UnexpectedToken",
	KindUnexpectedEOF:       "UnexpectedEOF",
	KindUnexpectedCharacter: "UnexpectedCharacter",
	KindCustom:              "CustomError",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Error is a single diagnostic. Line and Column are 1-based; Column counts
// characters.
type Error struct {
	Kind     Kind
	Message  string
	Offset   int
	Line     int
	Column   int
	Origin   string
	Expected string
	Found    string
}

func (e *Error) Error() string {
	if e.Origin != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.Origin, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// Locator resolves offsets for diagnostics. *source.Text implements it.
type Locator interface {
	Origin() string
	Location(offset int) source.Location
}

func newError(src Locator, kind Kind, offset int, msg string) *Error {
	loc := src.Location(offset)
	return &Error{
		Kind:    kind,
		Message: msg,
		Offset:  offset,
		Line:    loc.Line,
		Column:  loc.Column,
		Origin:  src.Origin(),
	}
}

func Syntax(src Locator, offset int, msg string) *Error {
	return newError(src, KindSyntax, offset, msg)
}

func UnexpectedToken(src Locator, offset int, found, expected string) *Error {
	var msg string
	if expected != "" {
		msg = fmt.Sprintf("unexpected %s, expected %s", found, expected)
	} else {
		msg = fmt.Sprintf("unexpected %s", found)
	}
	e := newError(src, KindUnexpectedToken, offset, msg)
	e.Found = found
	e.Expected = expected
	return e
}

func UnexpectedEOF(src Locator, offset int, expected string) *Error {
	msg := "unexpected end of input"
	if expected != "" {
		msg += ", expected " + expected
	}
	e := newError(src, KindUnexpectedEOF, offset, msg)
	e.Expected = expected
	return e
}

func UnexpectedCharacter(src Locator, offset int, ch rune) *Error {
	e := newError(src, KindUnexpectedCharacter, offset, fmt.Sprintf("unexpected character %q", ch))
	e.Found = string(ch)
	return e
}

func Custom(src Locator, offset int, msg string) *Error {
	return newError(src, KindCustom, offset, msg)
}

// Sort orders diagnostics by offset, keeping the order of equal offsets.
func Sort(diags []*Error) {
	sort.SliceStable(diags, func(i, j int) bool {
		return diags[i].Offset < diags[j].Offset
	})
}

// Merge returns a new slice holding both lists ordered by offset.
func Merge(a, b []*Error) []*Error {
	out := make([]*Error, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	Sort(out)
	return out
}

// Result carries a value, an unrecoverable error if one occurred, and the
// diagnostics collected while producing the value.
type Result[T any] struct {
	Value       T
	Err         error
	Diagnostics []*Error
}

func Ok[T any](value T, diags []*Error) Result[T] {
	return Result[T]{Value: value, Diagnostics: diags}
}

func Fail[T any](err error, diags []*Error) Result[T] {
	return Result[T]{Err: err, Diagnostics: diags}
}

// HasErrors reports whether the result carries an error or any diagnostic.
func (r Result[T]) HasErrors() bool {
	return r.Err != nil || len(r.Diagnostics) > 0
}
