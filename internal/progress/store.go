// Package progress tracks which cards have been read, on top of a small
// key/value backend.
package progress

import (
	"encoding/json"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// Storage keys.
const (
	KeyLastRead  = "mindsnack_last_read"
	KeyReadCards = "mindsnack_read_cards"
)

// Snapshot is a point-in-time copy of the stored progress.
type Snapshot struct {
	ReadCards []string
	LastRead  string
}

// Store is the read-progress store. Storage is the source of truth: every
// query reads the backend, and missing or corrupt entries count as empty.
// Failed writes are logged and dropped.
type Store struct {
	mu      sync.Mutex
	backend Backend
	logger  *zap.Logger
	seen    string

	subsMu  sync.Mutex
	subs    map[int]func()
	nextSub int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for storage diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore wraps backend.
func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		logger:  zap.NewNop(),
		subs:    map[int]func(){},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.seen = s.rawReadCards()
	return s
}

// MarkRead records id as the last read card and adds it to the read set.
// Subscribers are notified, after the write completed, only when id was not
// read before. It reports whether id was newly added.
func (s *Store) MarkRead(id string) bool {
	s.mu.Lock()
	if err := s.backend.Set(KeyLastRead, id); err != nil {
		s.logger.Warn("persist last read failed", zap.String("card", id), zap.Error(err))
	}
	cards := s.readCardsLocked()
	if slices.Contains(cards, id) {
		s.mu.Unlock()
		return false
	}
	cards = append(cards, id)
	raw, err := json.Marshal(cards)
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn("encode read cards failed", zap.Error(err))
		return false
	}
	if err := s.backend.Set(KeyReadCards, string(raw)); err != nil {
		s.mu.Unlock()
		s.logger.Warn("persist read cards failed", zap.String("card", id), zap.Error(err))
		return false
	}
	s.seen = string(raw)
	s.mu.Unlock()

	s.logger.Debug("card marked read", zap.String("card", id), zap.Int("read", len(cards)))
	s.notify()
	return true
}

// IsRead reports whether id is in the read set.
func (s *Store) IsRead(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.readCardsLocked(), id)
}

// WasLastRead reports whether id is the most recently opened card.
func (s *Store) WasLastRead(id string) bool {
	last, ok := s.LastRead()
	return ok && last == id
}

// LastRead returns the most recently opened card, if any.
func (s *Store) LastRead() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok, err := s.backend.Get(KeyLastRead)
	if err != nil {
		s.logger.Warn("read last read failed", zap.Error(err))
		return "", false
	}
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// CountRead returns how many entries of ids are in the read set. Ids outside
// ids are never counted.
func (s *Store) CountRead(ids []string) int {
	s.mu.Lock()
	cards := s.readCardsLocked()
	s.mu.Unlock()

	read := make(map[string]struct{}, len(cards))
	for _, id := range cards {
		read[id] = struct{}{}
	}
	count := 0
	for _, id := range ids {
		if _, ok := read[id]; ok {
			count++
		}
	}
	return count
}

// Snapshot returns the stored progress.
func (s *Store) Snapshot() Snapshot {
	last, _ := s.LastRead()
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{ReadCards: s.readCardsLocked(), LastRead: last}
}

// Subscribe registers fn to run after every change of the read set. The
// returned function removes the subscription.
func (s *Store) Subscribe(fn func()) (cancel func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		delete(s.subs, id)
	}
}

// Refresh re-reads the read set and notifies subscribers when it was changed
// by another writer since the last observation.
func (s *Store) Refresh() bool {
	s.mu.Lock()
	raw := s.rawReadCards()
	changed := raw != s.seen
	s.seen = raw
	s.mu.Unlock()
	if changed {
		s.logger.Debug("read cards changed externally")
		s.notify()
	}
	return changed
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) notify() {
	s.subsMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (s *Store) rawReadCards() string {
	v, ok, err := s.backend.Get(KeyReadCards)
	if err != nil {
		s.logger.Warn("read cards unavailable", zap.Error(err))
		return ""
	}
	if !ok {
		return ""
	}
	return v
}

func (s *Store) readCardsLocked() []string {
	raw := s.rawReadCards()
	if raw == "" {
		return []string{}
	}
	var cards []string
	if err := json.Unmarshal([]byte(raw), &cards); err != nil {
		s.logger.Warn("read cards corrupted, treating as empty", zap.Error(err))
		return []string{}
	}
	if cards == nil {
		return []string{}
	}
	return cards
}
