// Package gcs implements an object store on Google Cloud Storage.
package gcs

import (
	"context"
	stderrs "errors"
	"io"
	"net/http"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/bobg/vcs"
	"github.com/bobg/vcs/store"
)

var _ vcs.Store = &Store{}

// Store is a Google Cloud Storage-based implementation of an object store.
// Each object is a bucket object named "o:<hex address>"
// holding the same compressed, framed bytes the file store writes.
type Store struct {
	bucket *storage.BucketHandle
}

// New produces a new Store.
func New(bucket *storage.BucketHandle) *Store {
	return &Store{bucket: bucket}
}

const objPrefix = "o:"

// Get gets the object with address `addr`.
func (s *Store) Get(ctx context.Context, addr vcs.Addr) (vcs.Kind, []byte, error) {
	name := objName(addr)
	r, err := s.bucket.Object(name).NewReader(ctx)
	if stderrs.Is(err, storage.ErrObjectNotExist) {
		return "", nil, vcs.ErrNotFound
	}
	if err != nil {
		return "", nil, errors.Wrapf(err, "reading info of object %s", name)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return "", nil, errors.Wrapf(err, "reading contents of object %s", name)
	}

	got, kind, payload, err := vcs.DecodeObject(data)
	if err != nil {
		return "", nil, errors.Wrapf(err, "decoding object %s", name)
	}
	if got != addr {
		return "", nil, errors.Wrapf(vcs.ErrCorruptObject, "object %s hashes to %s", name, got)
	}
	return kind, payload, nil
}

// Put adds an object to the store if it wasn't already present.
func (s *Store) Put(ctx context.Context, kind vcs.Kind, payload []byte) (vcs.Addr, bool, error) {
	addr, data, err := vcs.EncodeObject(kind, payload)
	if err != nil {
		return vcs.Zero, false, err
	}

	var (
		name = objName(addr)
		obj  = s.bucket.Object(name).If(storage.Conditions{DoesNotExist: true})
		w    = obj.NewWriter(ctx)
	)

	_, err = w.Write(data)
	if err == nil { // sic
		err = w.Close()
	} else {
		w.Close()
	}

	var e *googleapi.Error
	if stderrs.As(err, &e) && e.Code == http.StatusPreconditionFailed {
		return addr, false, nil
	}
	if err != nil {
		return vcs.Zero, false, errors.Wrapf(err, "writing object %s", name)
	}
	return addr, true, nil
}

// ListAddrs produces all object addresses in the store, in lexicographic order.
func (s *Store) ListAddrs(ctx context.Context, start vcs.Addr, f func(vcs.Addr) error) error {
	if start.IsZero() {
		return s.listAddrs(ctx, "", start, f)
	}

	// Google Cloud Storage iterators have no API for starting in the middle of a bucket.
	// But they can filter by object-name prefix.
	// So we take (the hex encoding of) `start` and repeatedly compute prefixes for the objects we want.
	// If `start` is e67a, for example, the sequence of generated prefixes is:
	//   e67b e67c e67d e67e e67f
	//   e68 e69 e6a e6b e6c e6d e6e e6f
	//   e7 e8 e9 ea eb ec ed ee ef
	//   f
	return eachHexPrefix(start.String(), false, func(prefix string) error {
		return s.listAddrs(ctx, prefix, start, f)
	})
}

func (s *Store) listAddrs(ctx context.Context, prefix string, start vcs.Addr, f func(vcs.Addr) error) error {
	iter := s.bucket.Objects(ctx, &storage.Query{Prefix: objPrefix + prefix})
	for {
		attrs, err := iter.Next()
		if stderrs.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "iterating over objects")
		}
		addr, err := addrFromObjName(attrs.Name)
		if err != nil {
			continue
		}
		if !start.Less(addr) {
			continue
		}
		if err = f(addr); err != nil {
			return err
		}
	}
}

func eachHexPrefix(prefix string, incl bool, f func(string) error) error {
	prefix = strings.ToLower(prefix)
	for len(prefix) > 0 {
		end := hexval(prefix[len(prefix)-1:][0])
		if !incl {
			end++
		}
		prefix = prefix[:len(prefix)-1]
		for c := end; c < 16; c++ {
			err := f(prefix + string(hexdigit(c)))
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func hexval(b byte) int {
	switch {
	case '0' <= b && b <= '9':
		return int(b - '0')
	case 'a' <= b && b <= 'f':
		return int(10 + b - 'a')
	case 'A' <= b && b <= 'F':
		return int(10 + b - 'A')
	}
	return 0
}

func hexdigit(n int) byte {
	if n < 10 {
		return byte(n + '0')
	}
	return byte(n - 10 + 'a')
}

func objName(addr vcs.Addr) string {
	return objPrefix + addr.String()
}

func addrFromObjName(name string) (vcs.Addr, error) {
	if !strings.HasPrefix(name, objPrefix) {
		return vcs.Zero, errors.New("not an object name")
	}
	return vcs.AddrFromHex(name[len(objPrefix):])
}

func init() {
	store.Register("gcs", func(ctx context.Context, conf map[string]interface{}) (vcs.Store, error) {
		var options []option.ClientOption
		creds, ok := conf["creds"].(string)
		if !ok {
			return nil, errors.New(`missing "creds" parameter`)
		}
		bucketName, ok := conf["bucket"].(string)
		if !ok {
			return nil, errors.New(`missing "bucket" parameter`)
		}
		options = append(options, option.WithCredentialsFile(creds))
		c, err := storage.NewClient(ctx, options...)
		if err != nil {
			return nil, errors.Wrap(err, "creating cloud storage client")
		}
		return New(c.Bucket(bucketName)), nil
	})
}
