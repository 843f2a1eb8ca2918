// Package importers turns import files into stored records. It owns the
// shared ingestion service: every record, whether from a bulk file import or
// the browser connector, passes through the same guarded lookup-merge-write
// sequence so match keys stay unique across concurrent sources.
package importers
