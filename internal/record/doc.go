// Package record models one sample's metadata entry.
//
// A Record pairs the store key with a map of field values. Each Value is a
// tagged variant holding a string, a number, or an ordered list of strings;
// the query engine pattern-matches on Kind instead of inspecting dynamic types.
// Numbers keep their literal text so string comparisons and JSON output see
// exactly what the corpus contained.
package record
