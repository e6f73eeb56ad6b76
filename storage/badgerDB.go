package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"
)

// Storage is the key-value surface the repositories are written against.
type Storage interface {
	Put(key string, value []byte) error
	Get(key string) ([]byte, error)
	Delete(key string) error
	GetByPrefix(prefix string) (map[string][]byte, error)
	KeysByPrefix(prefix string) ([]string, error)
	DeleteByPrefix(prefix string) error
	PutObject(key string, obj interface{}) error
	GetObject(key string, obj interface{}) error

	Close() error
	RunGC() error
}

type DBMetrics struct {
	PutCount         int64
	GetCount         int64
	DeleteCount      int64
	GetByPrefixCount int64
	Errors           int64
}

// DBStorage represents a persistent storage using BadgerDB
type DBStorage struct {
	db      *badger.DB
	mu      sync.Mutex
	config  BadgerDBConfig
	metrics DBMetrics
	stopGC  chan struct{}
}

// Open opens the ledger database under config.DataDir/badgerdb/name.
// InMemory configs ignore the path.
func Open(config BadgerDBConfig, name string) (*DBStorage, error) {
	dbPath := ""
	if !config.InMemory {
		dbPath = filepath.Join(config.DataDir, "badgerdb", name)
	}
	opts := badger.DefaultOptions(dbPath)
	if config.DisableLogging {
		opts.Logger = nil
	}
	opts.InMemory = config.InMemory
	opts.SyncWrites = config.SyncWrites

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB: %v", err)
	}

	s := &DBStorage{db: db, config: config, stopGC: make(chan struct{})}
	if config.GCInterval > 0 && !config.InMemory {
		go s.startGCRoutine(time.Duration(config.GCInterval) * time.Second)
	}
	return s, nil
}

func (s *DBStorage) startGCRoutine(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.RunGC(); err != nil && err != badger.ErrNoRewrite {
				log.Printf("BadgerDB GC failed: %v", err)
			}
		case <-s.stopGC:
			return
		}
	}
}

// Metrics returns a snapshot of operation counters.
func (s *DBStorage) Metrics() DBMetrics {
	return DBMetrics{
		PutCount:         atomic.LoadInt64(&s.metrics.PutCount),
		GetCount:         atomic.LoadInt64(&s.metrics.GetCount),
		DeleteCount:      atomic.LoadInt64(&s.metrics.DeleteCount),
		GetByPrefixCount: atomic.LoadInt64(&s.metrics.GetByPrefixCount),
		Errors:           atomic.LoadInt64(&s.metrics.Errors),
	}
}

func (s *DBStorage) record(counter *int64, op, key string, err error) {
	atomic.AddInt64(counter, 1)
	if err != nil {
		log.Printf("BadgerDB %s operation failed for key %s: %v", op, key, err)
		atomic.AddInt64(&s.metrics.Errors, 1)
	}
}

// Close stops GC and closes the database
func (s *DBStorage) Close() error {
	select {
	case <-s.stopGC:
	default:
		close(s.stopGC)
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Put stores a key-value pair in the database
func (s *DBStorage) Put(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	s.record(&s.metrics.PutCount, "put", key, err)
	return err
}

// Get retrieves a value by key. A missing key returns nil, nil.
func (s *DBStorage) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var valCopy []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}
		valCopy, err = item.ValueCopy(nil)
		return err
	})
	s.record(&s.metrics.GetCount, "get", key, err)
	if err != nil {
		return nil, fmt.Errorf("failed to get value: %v", err)
	}
	return valCopy, nil
}

// Delete removes a key-value pair from the database
func (s *DBStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	s.record(&s.metrics.DeleteCount, "delete", key, err)
	return err
}

// GetByPrefix retrieves all key-value pairs with a given prefix
func (s *DBStorage) GetByPrefix(prefix string) (map[string][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make(map[string][]byte)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			result[string(item.KeyCopy(nil))] = val
		}
		return nil
	})
	s.record(&s.metrics.GetByPrefixCount, "get-by-prefix", prefix, err)
	if err != nil {
		return nil, fmt.Errorf("failed to get values by prefix: %v", err)
	}
	return result, nil
}

// KeysByPrefix lists matching keys in ascending order.
func (s *DBStorage) KeysByPrefix(prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keys []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	s.record(&s.metrics.GetByPrefixCount, "keys-by-prefix", prefix, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys by prefix: %v", err)
	}
	return keys, nil
}

// DeleteByPrefix deletes all key-value pairs with a given prefix
func (s *DBStorage) DeleteByPrefix(prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keysToDelete := [][]byte{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			keysToDelete = append(keysToDelete, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to collect keys for deletion: %v", err)
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range keysToDelete {
		if err := wb.Delete(key); err != nil {
			return fmt.Errorf("failed to delete key: %v", err)
		}
	}
	err = wb.Flush()
	s.record(&s.metrics.DeleteCount, "delete-by-prefix", prefix, err)
	return err
}

// PutObject serializes and stores an object in the database
func (s *DBStorage) PutObject(key string, obj interface{}) error {
	data, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("failed to marshal object: %v", err)
	}
	return s.Put(key, data)
}

// GetObject retrieves and deserializes an object from the database
func (s *DBStorage) GetObject(key string, obj interface{}) error {
	data, err := s.Get(key)
	if err != nil {
		return err
	}
	if data == nil {
		return fmt.Errorf("key not found: %s", key)
	}
	if err := json.Unmarshal(data, obj); err != nil {
		return fmt.Errorf("failed to unmarshal object: %v", err)
	}
	return nil
}

// RunGC runs garbage collection on the database
func (s *DBStorage) RunGC() error {
	if s.config.InMemory {
		return nil
	}
	return s.db.RunValueLogGC(0.5)
}
