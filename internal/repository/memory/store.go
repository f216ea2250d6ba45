package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"netscan/internal/domain"
	"netscan/internal/repository"
)

var _ repository.Repository = (*Store)(nil)

// Store is an in-memory implementation of the repository interfaces.
type Store struct {
	mu sync.RWMutex

	now     func() time.Time
	aliases map[string]domain.AliasEntry // key: ip
	seen    map[string]time.Time         // key: ip
	presets []domain.Preset
	nextID  int64
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		now:     time.Now,
		aliases: make(map[string]domain.AliasEntry),
		seen:    make(map[string]time.Time),
	}
}

// SetClock overrides the time source used for timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Close() error { return nil }

func (s *Store) GetAlias(ctx context.Context, ip string) (*domain.AliasEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	alias, ok := s.aliases[ip]
	if !ok {
		return nil, nil
	}
	return &alias, nil
}

func (s *Store) UpsertAlias(ctx context.Context, ip, name, notes string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.aliases[ip] = domain.AliasEntry{
		KeyType:   domain.AliasKeyIP,
		IP:        ip,
		Name:      name,
		Notes:     strings.TrimSpace(notes),
		UpdatedAt: s.now().UTC(),
	}
	return nil
}

func (s *Store) DeleteAlias(ctx context.Context, ip string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.aliases, ip)
	return nil
}

func (s *Store) GetLastSeen(ctx context.Context, ip string) (*time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.seen[ip]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (s *Store) MarkSeen(ctx context.Context, ip string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[ip] = s.now().UTC()
	return nil
}

// SeenCount returns how many addresses have ever been marked seen.
func (s *Store) SeenCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}

func (s *Store) ListPresets(ctx context.Context) ([]domain.Preset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	presets := make([]domain.Preset, len(s.presets))
	copy(presets, s.presets)
	return presets, nil
}

func (s *Store) ReplacePresets(ctx context.Context, presets []domain.Preset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.presets = make([]domain.Preset, 0, len(presets))
	for i, p := range presets {
		s.nextID++
		s.presets = append(s.presets, domain.Preset{
			ID:        s.nextID,
			Name:      p.Name,
			Range:     p.Range,
			SortOrder: i,
		})
	}
	return nil
}
