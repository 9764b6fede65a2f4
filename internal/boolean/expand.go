package boolean

import "strings"

// Term is one independently searchable operand of a query.
type Term struct {
	// Tag is the text records matched by this term are tagged with.
	Tag string

	// Expr is the operand to evaluate.
	Expr Expr
}

// Expand decomposes a top-level OR into its operands, in query order.
// Any other expression yields a single term. Operands with the same tag
// (case-insensitive) are kept once.
func Expand(e Expr) []Term {
	var operands []Expr
	if _, ok := e.(Or); ok {
		operands = flattenOr(e, nil)
	} else {
		operands = []Expr{e}
	}

	seen := make(map[string]bool, len(operands))
	terms := make([]Term, 0, len(operands))
	for _, op := range operands {
		tag := op.String()
		if lit, ok := op.(Literal); ok {
			tag = lit.Text
		}
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		terms = append(terms, Term{Tag: tag, Expr: op})
	}
	return terms
}

func flattenOr(e Expr, acc []Expr) []Expr {
	if o, ok := e.(Or); ok {
		acc = flattenOr(o.Left, acc)
		return flattenOr(o.Right, acc)
	}
	return append(acc, e)
}

// IsLiteral reports whether e is a single literal and returns it.
func IsLiteral(e Expr) (Literal, bool) {
	lit, ok := e.(Literal)
	return lit, ok
}

// FirstPositiveLiteral returns the leftmost literal not under a NOT.
// It is the term sent upstream when an expression must be searched live.
func FirstPositiveLiteral(e Expr) (Literal, bool) {
	switch v := e.(type) {
	case Literal:
		return v, true
	case And:
		if lit, ok := FirstPositiveLiteral(v.Left); ok {
			return lit, true
		}
		return FirstPositiveLiteral(v.Right)
	case Or:
		if lit, ok := FirstPositiveLiteral(v.Left); ok {
			return lit, true
		}
		return FirstPositiveLiteral(v.Right)
	}
	return Literal{}, false
}
