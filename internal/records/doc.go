// Package records defines the bibliographic record model shared across the
// store, the parsers, the merge engine, and the connector, together with the
// codecs for its textual payloads: the extras map (a flat JSON object of
// arbitrary string keys) and the semicolon-joined attachment list.
package records
