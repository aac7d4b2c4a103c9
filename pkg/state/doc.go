// Package state persists asset metadata snapshots.
//
// FileStore keeps one JSON document per asset under a metadata directory,
// named after the asset id:
//
//	<dir>/<id>.meta
//
// Lookups by id open that file directly. When it is missing, the directory
// is scanned for a file whose name contains the id, which covers metadata
// written by older tooling (for example "wood.png.<id>.meta"). Documents
// using the legacy key layout (Id, Type, Name, FilePath, Propertis) are
// normalised on read.
//
// MemoryStore implements the same id-based contract in memory for tests and
// examples. Both satisfy assets.MetadataStore.
package state
