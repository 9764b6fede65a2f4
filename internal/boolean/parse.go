package boolean

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/custodia-labs/telemachus/internal/core/domain"
)

var errMalformed = errors.New("malformed query")

type tokenKind int

const (
	tokWord tokenKind = iota
	tokPhrase
	tokAnd
	tokOr
	tokNot
	tokOpen
	tokClose
)

type token struct {
	kind tokenKind
	text string
}

// Parse parses a query into an expression tree.
// Returns domain.ErrInvalidInput for a blank query. Malformed input never
// fails: it becomes a single Literal holding the trimmed query.
func Parse(query string) (Expr, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, fmt.Errorf("parse query: %w", domain.ErrInvalidInput)
	}

	tokens, err := lex(trimmed)
	if err != nil {
		return Literal{Text: trimmed}, nil
	}

	p := &parser{tokens: tokens}
	e, err := p.parseOr()
	if err != nil || p.pos != len(p.tokens) {
		return Literal{Text: trimmed}, nil
	}
	return e, nil
}

func lex(s string) ([]token, error) {
	var tokens []token
	runes := []rune(s)

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			tokens = append(tokens, token{kind: tokOpen})
			i++
		case r == ')':
			tokens = append(tokens, token{kind: tokClose})
			i++
		case r == '"':
			end := i + 1
			for end < len(runes) && runes[end] != '"' {
				end++
			}
			if end == len(runes) {
				return nil, errMalformed
			}
			phrase := strings.TrimSpace(string(runes[i+1 : end]))
			if phrase == "" {
				return nil, errMalformed
			}
			tokens = append(tokens, token{kind: tokPhrase, text: phrase})
			i = end + 1
		default:
			end := i
			for end < len(runes) && !unicode.IsSpace(runes[end]) && !strings.ContainsRune(`()"`, runes[end]) {
				end++
			}
			word := string(runes[i:end])
			tokens = append(tokens, wordToken(word))
			i = end
		}
	}
	return tokens, nil
}

func wordToken(word string) token {
	switch strings.ToUpper(word) {
	case "AND":
		return token{kind: tokAnd}
	case "OR":
		return token{kind: tokOr}
	case "NOT":
		return token{kind: tokNot}
	}
	return token{kind: tokWord, text: word}
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) accept(kind tokenKind) bool {
	if t, ok := p.peek(); ok && t.kind == kind {
		p.pos++
		return true
	}
	return false
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.accept(tokOr) {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = Or{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.accept(tokAnd):
			right, err := p.parseNot()
			if err != nil {
				return nil, err
			}
			left = And{Left: left, Right: right}
		case p.accept(tokNot):
			// "a NOT b" excludes b from a.
			operand, err := p.parseNot()
			if err != nil {
				return nil, err
			}
			left = And{Left: left, Right: Not{Operand: operand}}
		default:
			return left, nil
		}
	}
}

func (p *parser) parseNot() (Expr, error) {
	if p.accept(tokNot) {
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return Not{Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	t, ok := p.peek()
	if !ok {
		return nil, errMalformed
	}

	switch t.kind {
	case tokOpen:
		p.pos++
		e, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.accept(tokClose) {
			return nil, errMalformed
		}
		return e, nil
	case tokPhrase:
		p.pos++
		return Literal{Text: t.text, Quoted: true}, nil
	case tokWord:
		words := []string{t.text}
		p.pos++
		for {
			next, ok := p.peek()
			if !ok || next.kind != tokWord {
				break
			}
			words = append(words, next.text)
			p.pos++
		}
		return Literal{Text: strings.Join(words, " ")}, nil
	}
	return nil, errMalformed
}
