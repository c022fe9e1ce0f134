// Package vfscore implements the shared directory-cache core of a pluggable
// virtual filesystem: an in-memory inode/entry graph, two path-resolution
// strategies (a fully-populated tree for archive-like backends and a flat,
// lazily-loaded root for remote-session-like backends), a reference-counted
// superblock registry, a POSIX-shaped file-handle layer, and the cache
// invalidation protocol that ties them together.
//
// Concrete backends (archive readers, remote session protocols) plug in by
// implementing the Class hooks in class.go; vfscore never talks to a wire
// protocol or an archive format directly.
package vfscore
