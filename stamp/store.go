// Package stamp implements the "stamping/GC subsystem" spec §1 treats as
// an external collaborator: "the core only calls stamp_create, rmstamp".
// It is grounded on rclone's backend/cache/storage_persistent.go, which
// wraps a go.etcd.io/bbolt database keyed by path with dedicated buckets
// for timestamps (RootTsBucket, DataTsBucket) — repurposed here as a
// single "stamps" bucket storing the last-touched time of each named
// superblock.
//
// vfscore.Class never reaches into this package directly; it only calls
// the narrow vfscore.Stamper interface, which Store satisfies.
package stamp

import (
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var stampsBucket = []byte("stamps")

// Store is a bbolt-backed Stamper. Every StampCreate/RMStamp call records
// or clears a per-superblock-name timestamp; an external ager (not part of
// this module, per spec §1) reads Stale to decide what to garbage collect.
type Store struct {
	db *bolt.DB
}

// Open creates or opens a stamp database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "open stamp db %q", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(stampsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "init stamp db buckets")
	}
	return &Store{db: db}, nil
}

// Close releases the underlying bbolt handle.
func (s *Store) Close() error { return s.db.Close() }

// StampCreate records "now" against superName, per spec §4.G "every time
// fd_usage reaches zero the core calls stamp_create".
func (s *Store) StampCreate(superName string) {
	_ = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(stampsBucket)
		now, err := time.Now().MarshalBinary()
		if err != nil {
			return err
		}
		return b.Put([]byte(superName), now)
	})
}

// RMStamp clears superName's stamp, per spec §4.G "any open resets via
// rmstamp".
func (s *Store) RMStamp(superName string) {
	_ = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(stampsBucket).Delete([]byte(superName))
	})
}

// Stale reports whether superName has a stamp older than maxAge — the
// query an external ager runs before calling Class.FreeSuperblock. A
// superblock with no stamp (currently open) is never stale.
func (s *Store) Stale(superName string, maxAge time.Duration) (bool, error) {
	var stale bool
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(stampsBucket).Get([]byte(superName))
		if raw == nil {
			return nil
		}
		var t time.Time
		if err := t.UnmarshalBinary(raw); err != nil {
			return err
		}
		stale = time.Since(t) > maxAge
		return nil
	})
	return stale, errors.Wrapf(err, "check stamp for %q", superName)
}
