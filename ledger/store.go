package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hyperledger/fabric/common/flogging"
	cache "github.com/patrickmn/go-cache"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

var logger = flogging.MustGetLogger("globalpatents.ledger")

var (
	ErrTxInUse  = errors.New("ledger transaction already in use")
	ErrTxClosed = errors.New("ledger transaction already committed or aborted")
	ErrEmptyKey = errors.New("ledger key cannot be empty")
)

// Store is a local key-value ledger. Writes only reach the database through a
// committed Tx, and at most one Tx is open at a time.
type Store struct {
	sync.Mutex
	inUse bool
	db    *leveldb.DB
}

// Open opens (creating if needed) a ledger database in the directory at path.
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database at '%s': %w", path, err)
	}
	logger.Debugf("Opened ledger database at '%s'", path)
	return &Store{db: db}, nil
}

// OpenMemory opens a ledger held entirely in memory.
func OpenMemory() (*Store, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory ledger: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Begin starts a transaction. It fails with ErrTxInUse while another is open.
func (s *Store) Begin() (*Tx, error) {
	s.Lock()
	defer s.Unlock()

	if s.inUse {
		return nil, ErrTxInUse
	}
	s.inUse = true
	return &Tx{
		store:  s,
		batch:  new(leveldb.Batch),
		writes: cache.New(cache.NoExpiration, 0),
	}, nil
}

// Update runs fn inside a transaction, committing if fn succeeds and aborting
// otherwise, including when fn panics. The error from fn is returned unchanged.
func (s *Store) Update(fn func(State) error) error {
	tx, err := s.Begin()
	if err != nil {
		return err
	}
	defer tx.Abort()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) release() {
	s.Lock()
	defer s.Unlock()
	s.inUse = false
}

// Tx buffers writes in a leveldb batch. Its own reads see its uncommitted writes.
type Tx struct {
	store  *Store
	batch  *leveldb.Batch
	writes *cache.Cache
	closed bool
}

var _ State = (*Tx)(nil)

func (t *Tx) GetState(key string) ([]byte, error) {
	if t.closed {
		return nil, ErrTxClosed
	}
	if obj, found := t.writes.Get(key); found {
		return copyBytes(obj.([]byte)), nil
	}
	val, err := t.store.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key '%s': %w", key, err)
	}
	return val, nil
}

func (t *Tx) PutState(key string, value []byte) error {
	if t.closed {
		return ErrTxClosed
	}
	if key == "" {
		return ErrEmptyKey
	}
	v := copyBytes(value)
	t.writes.Set(key, v, cache.NoExpiration)
	t.batch.Put([]byte(key), v)
	return nil
}

// Len returns the number of writes buffered so far.
func (t *Tx) Len() int {
	return t.batch.Len()
}

// Commit writes every buffered write atomically and closes the transaction.
func (t *Tx) Commit() error {
	if t.closed {
		return ErrTxClosed
	}
	defer t.finish()
	if err := t.store.db.Write(t.batch, &opt.WriteOptions{Sync: true}); err != nil {
		return fmt.Errorf("failed to commit %d ledger writes: %w", t.batch.Len(), err)
	}
	return nil
}

// Abort discards every buffered write. Aborting a closed transaction is a no-op.
func (t *Tx) Abort() {
	if t.closed {
		return
	}
	if n := t.batch.Len(); n > 0 {
		logger.Debugf("Aborting ledger transaction, discarding %d writes", n)
	}
	t.finish()
}

func (t *Tx) finish() {
	t.closed = true
	t.batch.Reset()
	t.writes.Flush()
	t.store.release()
}

func copyBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
