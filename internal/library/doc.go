// Package library owns bibliographic persistence: the record table, the
// collection namespace, and the record/collection membership relation, all
// backed by SQLite. Collections are plain path strings; hierarchy is implicit
// string-prefix containment, and rename/delete cascade to descendants inside
// a single transaction.
package library
