// Package boolean parses name queries such as `shell OR bp`,
// `meta NOT facebook` or `"british petroleum" OR (shell AND uk)` into an
// expression tree.
//
// The tree is consumed two ways: Match evaluates it against one candidate
// name, and Expand decomposes a top-level OR into independent terms so each
// term can be searched separately and its matches tagged.
//
// NOT binds tighter than AND, which binds tighter than OR. Operators are
// case-insensitive, and `a NOT b` reads as `a AND NOT b`. Adjacent bare
// words form one phrase. Input that does not parse (unbalanced quotes or
// parentheses, dangling operators) is treated as a single literal phrase.
package boolean
