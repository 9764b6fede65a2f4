// Package normalisers provides implementations of the RowNormaliser
// interface. Each normaliser maps the rows of one register, whatever their
// column names, onto the common NormalizedRecord shape.
//
// Normalisers are registered with the NormaliserRegistry at startup.
package normalisers
