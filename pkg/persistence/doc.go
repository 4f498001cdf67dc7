// Package persistence saves and restores forest snapshots.
//
// Snapshots are written as indented JSON by default. A file whose name ends
// in ".cbor" is written in the canonical CBOR encoding of package wire, which
// is smaller and preserves integer property values exactly.
package persistence
