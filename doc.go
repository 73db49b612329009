// Package vcs is a minimal content-addressable version-control storage engine.
//
// Everything vcs stores is an _object_:
// a blob (raw file contents),
// a tree (one directory level: a list of mode, name, and address triples),
// or a commit (a root tree, an optional parent commit, authorship, and a message).
// An object is stored framed as "<kind> <length>\0<payload>",
// and the sha1 hash of exactly those bytes is the object's _address_,
// which doubles as its storage key.
// Since the key is computed from the content,
// storing the same object twice is a no-op,
// and objects can never change once written.
//
// Between commits,
// the files staged for the next snapshot live in the _index_
// (see the index subpackage),
// a packed binary list of file-metadata records that preserves the order in which paths were first staged.
// A commit decodes the index,
// rebuilds its flat path list into a directory hierarchy,
// and writes one tree object per directory, bottom-up
// (see the tree subpackage),
// before writing the commit object itself
// (see the commit subpackage).
//
// The on-disk layout is a subset of Git's:
// loose objects are zlib-compressed under objects/<xx>/<38 more hex digits>,
// the index uses the "DIRC" version 2 record format,
// and refs are plain text files.
// The repo subpackage ties all of this together,
// and cmd/vcs is a command-line interface to it.
package vcs
