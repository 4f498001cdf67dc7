// Package wire defines the CBOR encoding of tree events and snapshots.
//
// Events use CBOR (RFC 8949) maps with integer keys for compactness:
//
//	1: event type (uint8, see reducer.EventType)
//	2: target URI (text, omitted when empty)
//	3: node payload (map, omitted for listening events)
//	4: sequence number (uint, omitted when zero)
//
// Nodes, owners and properties are encoded with their text field names so
// snapshots stay readable with generic CBOR tools.
//
// # Determinism
//
// Encoding is canonical (sorted keys, definite lengths), so the same event
// always produces the same bytes. Decoding is lenient: duplicate keys keep
// the last value and unknown keys are ignored. Maps inside property values
// decode to map[string]any.
package wire
