package repository

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/wormhole-url/wormhole/shortcode"
	"github.com/wormhole-url/wormhole/wormhole"
)

// BadgerStore is a durable Store backed by an embedded Badger database. It
// implements exactly Get/Exists/Insert/Delete — the read-path core only
// ever consumes the read half (ReadStore), but the writer path needs the
// other two, so both are provided here for completeness.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens (creating if necessary) a Badger database at dir.
func OpenBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, newErr(KindUnavailable, "open", err)
	}
	return &BadgerStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func storeKey(code shortcode.ShortCode) []byte {
	return []byte(code.AsStr())
}

// Get returns the record for code, or (nil, nil) if absent.
func (s *BadgerStore) Get(_ context.Context, code shortcode.ShortCode) (*wormhole.UrlRecord, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(storeKey(code))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			data = append([]byte(nil), val...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, newErr(KindQuery, "get", err)
	}
	record, err := wormhole.Unmarshal(data)
	if err != nil {
		return nil, newErr(KindInvalidData, "get", err)
	}
	return &record, nil
}

// Exists reports whether code is present.
func (s *BadgerStore) Exists(_ context.Context, code shortcode.ShortCode) (bool, error) {
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(storeKey(code))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, newErr(KindQuery, "exists", err)
	}
	return found, nil
}

// Insert adds a new record under code. Returns a Conflict error if code
// already exists.
func (s *BadgerStore) Insert(_ context.Context, code shortcode.ShortCode, record wormhole.UrlRecord) error {
	data, err := record.Marshal()
	if err != nil {
		return newErr(KindInvalidData, "insert", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(storeKey(code)); err == nil {
			return errAlreadyExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(storeKey(code), data)
	})
	if errors.Is(err, errAlreadyExists) {
		return newErr(KindConflict, "insert", err)
	}
	if err != nil {
		return newErr(KindQuery, "insert", err)
	}
	return nil
}

// Delete removes the record for code. Returns whether it existed.
func (s *BadgerStore) Delete(_ context.Context, code shortcode.ShortCode) (bool, error) {
	existed := false
	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(storeKey(code))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		existed = true
		return txn.Delete(storeKey(code))
	})
	if err != nil {
		return false, newErr(KindQuery, "delete", err)
	}
	return existed, nil
}

var errAlreadyExists = errors.New("short code already exists")

var _ Store = (*BadgerStore)(nil)
