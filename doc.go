// Package cellar is an embedded, single-file object store.
//
// A Cellar persists opaque, variable-length binary payloads in one data
// file, each addressed by a stable 64-bit id minted by the engine itself.
// The file survives process restart: Open rebuilds every in-memory
// structure — the free-space map, the index-slot pool, the id index — by
// scanning the file alone.
//
// The engine is not internally synchronized (see package safe for a
// coarse-mutex decorator) and does not inspect payload bytes (see package
// codec for serialization helpers that plug into Write/Read).
package cellar
