package boolean

import "strings"

// Expr is a parsed query expression. Expressions are immutable.
type Expr interface {
	// Match reports whether candidate satisfies the expression.
	// Literals match by case-insensitive substring containment.
	Match(candidate string) bool

	// String returns the canonical query text of the expression.
	String() string

	expr()
}

// Literal is a word or phrase. Phrase literals keep their internal whitespace.
type Literal struct {
	Text   string
	Quoted bool
}

// And matches when both operands match.
type And struct {
	Left, Right Expr
}

// Or matches when either operand matches.
type Or struct {
	Left, Right Expr
}

// Not matches when its operand does not.
type Not struct {
	Operand Expr
}

func (Literal) expr() {}
func (And) expr()     {}
func (Or) expr()      {}
func (Not) expr()     {}

// Match implements Expr.
func (l Literal) Match(candidate string) bool {
	return strings.Contains(strings.ToLower(candidate), strings.ToLower(l.Text))
}

// Match implements Expr.
func (a And) Match(candidate string) bool {
	return a.Left.Match(candidate) && a.Right.Match(candidate)
}

// Match implements Expr.
func (o Or) Match(candidate string) bool {
	return o.Left.Match(candidate) || o.Right.Match(candidate)
}

// Match implements Expr.
func (n Not) Match(candidate string) bool {
	return !n.Operand.Match(candidate)
}

// String implements Expr.
func (l Literal) String() string {
	if l.Quoted {
		return `"` + l.Text + `"`
	}
	return l.Text
}

// String implements Expr.
func (a And) String() string {
	return group(a.Left) + " AND " + group(a.Right)
}

// String implements Expr.
func (o Or) String() string {
	return o.Left.String() + " OR " + o.Right.String()
}

// String implements Expr.
func (n Not) String() string {
	switch n.Operand.(type) {
	case And, Or:
		return "NOT (" + n.Operand.String() + ")"
	}
	return "NOT " + n.Operand.String()
}

// group parenthesises OR operands inside an AND.
func group(e Expr) string {
	if _, ok := e.(Or); ok {
		return "(" + e.String() + ")"
	}
	return e.String()
}
