// Package types holds the data model shared by the browsing engine and the
// backend client: listing entries and pages, operation descriptors with
// their parameter schemas, tags, tasks, and the error taxonomy.
//
// Wire-facing structs carry the JSON names used by the FileFlex backend, so
// they decode straight out of the response envelope.
package types
