// Package pg implements an object store in a Postgresql database.
package pg

import (
	"context"
	"database/sql"
	stderrs "errors"

	"github.com/bobg/sqlutil"
	_ "github.com/lib/pq" // register the postgres type for sql.Open
	"github.com/pkg/errors"

	"github.com/bobg/vcs"
	"github.com/bobg/vcs/store"
)

var _ vcs.Store = &Store{}

// Store is a Postgresql-based object store.
type Store struct {
	db *sql.DB
}

// Schema is the SQL that New executes.
// It creates the `objects` table if it does not exist.
// (If it does exist, it must have the columns and constraints described here.)
const Schema = `
CREATE TABLE IF NOT EXISTS objects (
  addr BYTEA PRIMARY KEY NOT NULL,
  data BYTEA NOT NULL
);
`

// New produces a new Store using `db` for storage.
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	_, err := db.ExecContext(ctx, Schema)
	return &Store{db: db}, errors.Wrap(err, "creating schema")
}

// Get gets the object with address `addr`.
func (s *Store) Get(ctx context.Context, addr vcs.Addr) (vcs.Kind, []byte, error) {
	const q = `SELECT data FROM objects WHERE addr = $1`

	var data []byte
	err := s.db.QueryRowContext(ctx, q, addr).Scan(&data)
	if stderrs.Is(err, sql.ErrNoRows) {
		return "", nil, vcs.ErrNotFound
	}
	if err != nil {
		return "", nil, errors.Wrapf(err, "querying object %s", addr)
	}

	got, kind, payload, err := vcs.DecodeObject(data)
	if err != nil {
		return "", nil, errors.Wrapf(err, "decoding object %s", addr)
	}
	if got != addr {
		return "", nil, errors.Wrapf(vcs.ErrCorruptObject, "object %s hashes to %s", addr, got)
	}
	return kind, payload, nil
}

// Put adds an object to the store if it wasn't already present.
func (s *Store) Put(ctx context.Context, kind vcs.Kind, payload []byte) (vcs.Addr, bool, error) {
	const q = `INSERT INTO objects (addr, data) VALUES ($1, $2) ON CONFLICT DO NOTHING`

	addr, data, err := vcs.EncodeObject(kind, payload)
	if err != nil {
		return vcs.Zero, false, err
	}

	res, err := s.db.ExecContext(ctx, q, addr, data)
	if err != nil {
		return vcs.Zero, false, errors.Wrap(err, "inserting object")
	}

	aff, err := res.RowsAffected()
	return addr, aff > 0, errors.Wrap(err, "counting affected rows")
}

// ListAddrs produces all object addresses in the store, in lexicographic order.
func (s *Store) ListAddrs(ctx context.Context, start vcs.Addr, f func(vcs.Addr) error) error {
	const q = `SELECT addr FROM objects WHERE addr > $1 ORDER BY addr`

	var addrs []vcs.Addr
	err := sqlutil.ForQueryRows(ctx, s.db, q, start, func(addr vcs.Addr) {
		addrs = append(addrs, addr)
	})
	if err != nil {
		return errors.Wrap(err, "listing objects")
	}
	for _, addr := range addrs {
		if err = f(addr); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	store.Register("pg", func(ctx context.Context, conf map[string]interface{}) (vcs.Store, error) {
		conn, ok := conf["conn"].(string)
		if !ok {
			return nil, errors.New(`missing "conn" parameter`)
		}
		db, err := sql.Open("postgres", conn)
		if err != nil {
			return nil, errors.Wrap(err, "opening db")
		}
		return New(ctx, db)
	})
}
