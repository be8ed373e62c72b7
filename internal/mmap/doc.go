// Package mmap loads tile blobs read-only into memory.
//
// The local blob store opens tiles through this package so the extractor can
// decode a tile straight from the page cache without an intermediate copy.
// Files below MinMapSize are read onto the heap instead of mapped:
//
//	m, err := mmap.Open("tiles/000003/r4c7-21.tile")
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes() // valid until Close
//
// Unix systems use mmap(2) through golang.org/x/sys/unix, Windows uses
// CreateFileMapping/MapViewOfFile through golang.org/x/sys/windows.
//
// Close is idempotent for both kinds. Callers must not touch the slice returned by Bytes
// after Close returns.
package mmap
