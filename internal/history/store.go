package history

import (
	"strings"
	"sync"

	"go.uber.org/zap"
)

// DefaultLimit is the number of arguments kept per target
const DefaultLimit = 100

// Backend loads and saves per-target argument lists
type Backend interface {
	LoadHistory(target string) ([]string, error)
	SaveHistory(target string, entries []string) error
}

// Store keeps a bounded, most-recent-first argument history per target.
// Entries are unique under case-insensitive comparison.
type Store struct {
	mu      sync.Mutex
	backend Backend
	limit   int
	logger  *zap.Logger
	lists   map[string][]string
}

// NewStore creates a history store persisting through backend
func NewStore(backend Backend, limit int, logger *zap.Logger) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		backend: backend,
		limit:   limit,
		logger:  logger,
		lists:   make(map[string][]string),
	}
}

// Load returns a copy of the history for target. Backend errors are logged and
// yield an empty history.
func (s *Store) Load(target string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.load(target))
}

// RecordUse moves argument to the front of target's history and persists the list.
// Blank arguments are ignored.
func (s *Store) RecordUse(target, argument string) error {
	argument = strings.TrimSpace(argument)
	if argument == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := Record(s.load(target), argument, s.limit)
	s.lists[key(target)] = list

	return s.backend.SaveHistory(target, clone(list))
}

func (s *Store) load(target string) []string {
	k := key(target)
	if list, ok := s.lists[k]; ok {
		return list
	}
	list, err := s.backend.LoadHistory(target)
	if err != nil {
		s.logger.Warn("Failed to load history", zap.String("target", target), zap.Error(err))
		list = nil
	}
	if len(list) > s.limit {
		list = list[:s.limit]
	}
	s.lists[k] = list
	return list
}

// Record returns list with argument prepended, case-insensitive duplicates
// removed and the result truncated to limit. list is not modified.
func Record(list []string, argument string, limit int) []string {
	out := make([]string, 0, len(list)+1)
	out = append(out, argument)
	for _, entry := range list {
		if strings.EqualFold(entry, argument) {
			continue
		}
		out = append(out, entry)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func key(target string) string {
	return strings.ToLower(strings.TrimSpace(target))
}

func clone(list []string) []string {
	out := make([]string, len(list))
	copy(out, list)
	return out
}
