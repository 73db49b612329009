package vcs

import (
	"bytes"
	"crypto/sha1"
	"database/sql/driver"
	"encoding/hex"
	"fmt"

	"github.com/pkg/errors"
)

type (
	// Addr is the address of an object: the sha1 hash of its framed bytes.
	Addr [sha1.Size]byte

	// Kind is the kind of an object.
	Kind string
)

// The three object kinds.
const (
	Blob   Kind = "blob"
	Tree   Kind = "tree"
	Commit Kind = "commit"
)

// Valid tells whether k is one of the known object kinds.
func (k Kind) Valid() bool {
	switch k {
	case Blob, Tree, Commit:
		return true
	}
	return false
}

// Zero is the zero value of an Addr.
var Zero Addr

func (a Addr) String() string {
	return hex.EncodeToString(a[:])
}

// IsZero tells whether a is the zero Addr.
func (a Addr) IsZero() bool {
	return a == Zero
}

func (a Addr) Less(other Addr) bool {
	return bytes.Compare(a[:], other[:]) < 0
}

// FromHex sets a from its 40-character hex representation.
func (a *Addr) FromHex(s string) error {
	if len(s) != 2*sha1.Size {
		return fmt.Errorf("wrong length %d for hex address", len(s))
	}
	_, err := hex.Decode(a[:], []byte(s))
	return errors.Wrapf(err, "decoding hex address %s", s)
}

// Scan implements sql.Scanner.
func (a *Addr) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into an address", src)
	}
	if len(b) != sha1.Size {
		return fmt.Errorf("cannot scan %d bytes into an address", len(b))
	}
	copy(a[:], b)
	return nil
}

// Value implements driver.Valuer.
func (a Addr) Value() (driver.Value, error) {
	return a[:], nil
}

func AddrFromBytes(b []byte) Addr {
	var out Addr
	copy(out[:], b)
	return out
}

func AddrFromHex(s string) (Addr, error) {
	var out Addr
	err := out.FromHex(s)
	return out, err
}

// Hash computes the address of some framed object bytes.
func Hash(framed []byte) Addr {
	return sha1.Sum(framed)
}

// AddrOf computes the address that an object of the given kind and payload has,
// without storing it anywhere.
func AddrOf(kind Kind, payload []byte) Addr {
	return Hash(Frame(kind, payload))
}
