package parser

import "github.com/dhamidi/oak/syntax"

type Assoc int

const (
	AssocLeft Assoc = iota
	AssocRight
	AssocNone
)

// OperatorInfo is the binding power of an infix operator.
type OperatorInfo struct {
	Precedence int
	Assoc      Assoc
}

func Left(prec int) OperatorInfo {
	return OperatorInfo{Precedence: prec, Assoc: AssocLeft}
}

func Right(prec int) OperatorInfo {
	return OperatorInfo{Precedence: prec, Assoc: AssocRight}
}

func NonAssoc(prec int) OperatorInfo {
	return OperatorInfo{Precedence: prec, Assoc: AssocNone}
}

// next returns the minimum precedence for the right operand.
func (o OperatorInfo) next() int {
	if o.Assoc == AssocRight {
		return o.Precedence
	}
	return o.Precedence + 1
}

// Pratt is implemented by a language's expression grammar.
//
// Primary parses an operand. Infix looks at the next token and either
// extends left into a larger expression, returning the new node, or
// returns nil when the token is not an operator binding at least as
// tightly as minPrec.
type Pratt[T syntax.TokenKind, E syntax.ElementKind] interface {
	Primary(st *State[T, E]) *syntax.GreenNode[T, E]
	Infix(st *State[T, E], left *syntax.GreenNode[T, E], minPrec int) *syntax.GreenNode[T, E]
}

// Prefixer is implemented by grammars with prefix operators. Without it
// Parse starts every expression with Primary.
type Prefixer[T syntax.TokenKind, E syntax.ElementKind] interface {
	Prefix(st *State[T, E]) *syntax.GreenNode[T, E]
}

// Parse parses an expression whose operators bind at least as tightly as
// minPrec.
func Parse[T syntax.TokenKind, E syntax.ElementKind](st *State[T, E], minPrec int, g Pratt[T, E]) *syntax.GreenNode[T, E] {
	var left *syntax.GreenNode[T, E]
	if p, ok := g.(Prefixer[T, E]); ok {
		left = p.Prefix(st)
	} else {
		left = g.Primary(st)
	}
	if left == nil {
		return nil
	}
	for {
		before := st.pos
		next := g.Infix(st, left, minPrec)
		if next == nil || st.pos == before {
			return left
		}
		left = next
	}
}

// Binary wraps left, the operator token and a right operand into a node.
func Binary[T syntax.TokenKind, E syntax.ElementKind](st *State[T, E], left *syntax.GreenNode[T, E], op OperatorInfo, kind E, g Pratt[T, E]) *syntax.GreenNode[T, E] {
	cp := st.CheckpointBefore(left)
	st.Bump()
	Parse(st, op.next(), g)
	return st.FinishAt(cp, kind)
}

// Unary wraps a prefix operator and its operand into a node.
func Unary[T syntax.TokenKind, E syntax.ElementKind](st *State[T, E], prec int, kind E, g Pratt[T, E]) *syntax.GreenNode[T, E] {
	cp := st.Checkpoint()
	st.Bump()
	Parse(st, prec, g)
	return st.FinishAt(cp, kind)
}

// Postfix wraps left and a postfix operator token into a node.
func Postfix[T syntax.TokenKind, E syntax.ElementKind](st *State[T, E], left *syntax.GreenNode[T, E], kind E) *syntax.GreenNode[T, E] {
	cp := st.CheckpointBefore(left)
	st.Bump()
	return st.FinishAt(cp, kind)
}
