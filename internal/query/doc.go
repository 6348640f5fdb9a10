// Package query evaluates filter predicates and multi-key sort specifications
// against metadata records.
//
// Predicates are written as "field=value", "field=<value", or "field=>value".
// Equality against a list field becomes a membership test. When both the stored
// value and the operand parse as numbers the comparison is numeric, otherwise
// it is a byte-wise string comparison; the decision is made once per pair so
// both sides always agree.
//
// Sort keys are written as "field=asc" or "field=desc". The first listed key is
// the primary ordering and ties keep their relative input order.
//
// Query.Run canonicalizes input by record key before filtering so results never
// depend on the order a store handed records over.
package query
