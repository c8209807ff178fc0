package storage

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

const (
	lastBucket    = "last"
	historyBucket = "history"

	lastTargetKey   = "target"
	lastArgumentKey = "argument"
)

// BoltStorage persists last-used state and per-target history in a BoltDB file
type BoltStorage struct {
	db     *bbolt.DB
	logger *zap.Logger
}

// StorageConfig holds configuration for BoltStorage initialization
type StorageConfig struct {
	DBPath  string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewBoltStorage opens (or creates) the database and its buckets
func NewBoltStorage(config StorageConfig) (*BoltStorage, error) {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = time.Second
	}

	db, err := bbolt.Open(config.DBPath, 0600, &bbolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{lastBucket, historyBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("BoltStorage initialized", zap.String("db_path", config.DBPath))

	return &BoltStorage{db: db, logger: logger}, nil
}

// LoadLast returns the last executed target and argument, or empty strings if none was saved
func (s *BoltStorage) LoadLast() (string, string, error) {
	var target, argument string
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(lastBucket))
		target = string(b.Get([]byte(lastTargetKey)))
		argument = string(b.Get([]byte(lastArgumentKey)))
		return nil
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to load last used: %w", err)
	}
	return target, argument, nil
}

// SaveLast stores the last executed target and argument
func (s *BoltStorage) SaveLast(target, argument string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(lastBucket))
		if err := b.Put([]byte(lastTargetKey), []byte(target)); err != nil {
			return err
		}
		return b.Put([]byte(lastArgumentKey), []byte(argument))
	})
	if err != nil {
		return fmt.Errorf("failed to save last used: %w", err)
	}
	s.logger.Debug("Saved last used", zap.String("target", target))
	return nil
}

// LoadHistory returns the stored history for target, most recent first.
// A target without history yields an empty list.
func (s *BoltStorage) LoadHistory(target string) ([]string, error) {
	var entries []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(historyBucket)).Get(historyKey(target))
		if v == nil {
			return nil
		}
		return json.Unmarshal(v, &entries)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load history for %q: %w", target, err)
	}
	if entries == nil {
		entries = []string{}
	}
	return entries, nil
}

// SaveHistory replaces the stored history for target
func (s *BoltStorage) SaveHistory(target string, entries []string) error {
	encoded, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(historyBucket)).Put(historyKey(target), encoded)
	})
	if err != nil {
		return fmt.Errorf("failed to save history for %q: %w", target, err)
	}
	s.logger.Debug("Saved history",
		zap.String("target", target),
		zap.Int("entries", len(entries)))
	return nil
}

// ClearHistory removes the stored history for target
func (s *BoltStorage) ClearHistory(target string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(historyBucket)).Delete(historyKey(target))
	})
}

// HistoryTargets lists the (lower-cased) target names that have stored history
func (s *BoltStorage) HistoryTargets() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(historyBucket)).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Close closes the database connection
func (s *BoltStorage) Close() error {
	return s.db.Close()
}

// Target names are case-insensitive, so keys are folded
func historyKey(target string) []byte {
	return []byte(strings.ToLower(strings.TrimSpace(target)))
}
