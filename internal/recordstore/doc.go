// Package recordstore reads metadata records from JSON, YAML, SQLite, or
// Postgres and writes them into the database-backed stores.
//
// Every backend holds the same shape: a record key mapped to an object of
// field values. JSON and YAML files are the NSynth examples.json layout. The
// SQLite store is a local cache built by `montage import`; the Postgres backend
// lives in the postgres subpackage.
//
// Records are always read whole and returned in canonical key order.
package recordstore
