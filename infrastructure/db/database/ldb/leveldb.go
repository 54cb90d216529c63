package ldb

import (
	"github.com/cellnetwork/celld/infrastructure/db/database"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	ldbErrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

// LevelDB defines a thin wrapper around leveldb.
type LevelDB struct {
	ldb *leveldb.DB
}

// NewLevelDB opens a leveldb instance defined by the given path.
func NewLevelDB(path string) (*LevelDB, error) {
	// Open leveldb. If it doesn't exist, create it.
	ldb, err := leveldb.OpenFile(path, Options())

	// If the database is corrupted, attempt to recover.
	var corruptedErr *ldbErrors.ErrCorrupted
	if errors.As(err, &corruptedErr) {
		log.Warnf("LevelDB corruption detected for path %s: %s",
			path, err)
		ldb, err = leveldb.RecoverFile(path, nil)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		log.Warnf("LevelDB recovered from corruption for path %s",
			path)
	}

	// If the database cannot be opened for any other
	// reason, return the error as-is.
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &LevelDB{ldb: ldb}, nil
}

// NewInMemoryLevelDB opens a leveldb instance that lives only in memory.
func NewInMemoryLevelDB() (*LevelDB, error) {
	ldb, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &LevelDB{ldb: ldb}, nil
}

// Close closes the leveldb instance.
func (db *LevelDB) Close() error {
	return errors.WithStack(db.ldb.Close())
}

// Put sets the value for the given key. It overwrites
// any previous value for that key.
func (db *LevelDB) Put(key *database.Key, value []byte) error {
	return errors.WithStack(db.ldb.Put(key.Bytes(), value, nil))
}

// Get gets the value for the given key. It returns
// database.ErrNotFound if the given key does not exist.
func (db *LevelDB) Get(key *database.Key) ([]byte, error) {
	data, err := db.ldb.Get(key.Bytes(), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, errors.Wrapf(database.ErrNotFound,
				"key %s not found", key)
		}
		return nil, errors.WithStack(err)
	}
	return data, nil
}

// Has returns true if the database does contains the
// given key.
func (db *LevelDB) Has(key *database.Key) (bool, error) {
	exists, err := db.ldb.Has(key.Bytes(), nil)
	return exists, errors.WithStack(err)
}

// Delete deletes the value for the given key. Will not
// return an error if the key doesn't exist.
func (db *LevelDB) Delete(key *database.Key) error {
	return errors.WithStack(db.ldb.Delete(key.Bytes(), nil))
}

// Write applies the batch atomically.
func (db *LevelDB) Write(batch *Batch) error {
	return errors.WithStack(db.ldb.Write(batch.batch, nil))
}

// Snapshot returns a consistent point-in-time view of the database. The
// caller must Release it.
func (db *LevelDB) Snapshot() (*Snapshot, error) {
	snapshot, err := db.ldb.GetSnapshot()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &Snapshot{snapshot: snapshot}, nil
}

// Batch collects writes to be applied atomically.
type Batch struct {
	batch *leveldb.Batch
}

// NewBatch returns an empty batch.
func NewBatch() *Batch {
	return &Batch{batch: new(leveldb.Batch)}
}

// Put queues setting the value for the given key.
func (b *Batch) Put(key *database.Key, value []byte) {
	b.batch.Put(key.Bytes(), value)
}

// Delete queues deleting the given key.
func (b *Batch) Delete(key *database.Key) {
	b.batch.Delete(key.Bytes())
}

// Len returns the number of queued writes.
func (b *Batch) Len() int {
	return b.batch.Len()
}

// Snapshot is a read-only point-in-time view of a LevelDB.
type Snapshot struct {
	snapshot *leveldb.Snapshot
}

// Get gets the value for the given key as of the snapshot.
func (s *Snapshot) Get(key *database.Key) ([]byte, error) {
	data, err := s.snapshot.Get(key.Bytes(), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, errors.Wrapf(database.ErrNotFound,
				"key %s not found", key)
		}
		return nil, errors.WithStack(err)
	}
	return data, nil
}

// Has returns whether the key existed when the snapshot was taken.
func (s *Snapshot) Has(key *database.Key) (bool, error) {
	exists, err := s.snapshot.Has(key.Bytes(), nil)
	return exists, errors.WithStack(err)
}

// Release releases the snapshot. It must not be used afterwards.
func (s *Snapshot) Release() {
	s.snapshot.Release()
}

var _ database.DataAccessor = (*LevelDB)(nil)
var _ database.DataAccessor = (*Snapshot)(nil)
