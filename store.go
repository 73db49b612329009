package vcs

import (
	"context"
	"errors"
)

// Getter is a read-only Store (qv).
type Getter interface {
	// Get gets an object by its address,
	// returning its kind and its payload (without the framing header).
	Get(context.Context, Addr) (Kind, []byte, error)

	// ListAddrs calls a function for each object address in the store in lexicographic order,
	// beginning with the first address _after_ the specified one.
	//
	// If the callback function returns an error,
	// ListAddrs exits with that error.
	ListAddrs(context.Context, Addr, func(Addr) error) error
}

// Store is an object store.
// Every object is stored framed as "<kind> <length>\0<payload>",
// and its address is the hash of exactly those bytes.
// Objects are immutable:
// putting an object that is already present is a successful no-op.
type Store interface {
	Getter

	// Put adds an object to the store if it was not already present.
	// It returns the object's address and a boolean that is true iff the object had to be added.
	Put(ctx context.Context, kind Kind, payload []byte) (addr Addr, added bool, err error)
}

var (
	// ErrNotFound is the error returned
	// when a Getter tries to access a non-existent address.
	ErrNotFound = errors.New("not found")

	// ErrCorruptObject is the error returned when stored object bytes
	// cannot be decompressed,
	// have a malformed header,
	// or do not hash to their address.
	ErrCorruptObject = errors.New("corrupt object")
)
