// Package record models schema-less records returned by a data provider.
//
// A Record is an ordered mapping from field name to a dynamically-typed Value.
// Field order follows the order keys appear in the source document so that
// guessed list columns are stable across renders.
package record
