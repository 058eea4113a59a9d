package lang

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/oak/diag"
	"github.com/dhamidi/oak/ebnf/parse"
	"github.com/dhamidi/oak/source"
)

// VerifyGrammar parses the language's reference grammar and checks that
// every production is defined and reachable from the start production.
func VerifyGrammar(info Info) (ebnf.Grammar, error) {
	if info.Grammar == "" {
		return nil, fmt.Errorf("%s: no reference grammar", info.Name)
	}
	grammar, err := ebnf.Parse(info.Name+".ebnf", strings.NewReader(info.Grammar))
	if err != nil {
		return nil, fmt.Errorf("parse %s grammar: %w", info.Name, err)
	}
	if err := ebnf.Verify(grammar, info.Start); err != nil {
		return nil, fmt.Errorf("verify %s grammar: %w", info.Name, err)
	}
	return grammar, nil
}

// CheckGrammar runs the tokens of text through the language's reference
// grammar. It returns the first place where they leave the grammar, or nil
// when the whole text conforms. The error is for grammars that cannot be
// checked.
func CheckGrammar(svc Service, uri, text string) (*diag.Error, error) {
	info := svc.Info()
	grammar, err := VerifyGrammar(info)
	if err != nil {
		return nil, err
	}
	recognizer, err := parse.Compile(grammar, info.Start, info.Terminals)
	if err != nil {
		return nil, fmt.Errorf("compile %s grammar: %w", info.Name, err)
	}

	nodes, _ := svc.Tokens(uri, text)
	tokens := make([]parse.Token, 0, len(nodes))
	for _, n := range nodes {
		if n.Trivia {
			continue
		}
		tokens = append(tokens, parse.Token{Kind: n.Kind, Text: n.Text, Span: n.Span})
	}

	err = recognizer.Recognize(tokens)
	var serr *parse.SyntaxError
	if !errors.As(err, &serr) {
		return nil, err
	}
	src := source.NewWithOrigin(uri, text)
	expected := strings.Join(serr.Expected, " or ")
	if serr.AtEnd {
		return diag.UnexpectedEOF(src, serr.Offset, expected), nil
	}
	return diag.UnexpectedToken(src, serr.Offset, strconv.Quote(serr.Found), expected), nil
}
