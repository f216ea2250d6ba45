package repository

import (
	"context"
	"time"

	"netscan/internal/domain"
)

// IdentityStore persists operator aliases and last-seen timestamps per IP.
// Implementations must be safe for concurrent use.
type IdentityStore interface {
	// GetAlias returns the alias for ip, or nil when none is set
	GetAlias(ctx context.Context, ip string) (*domain.AliasEntry, error)

	// UpsertAlias creates or replaces the alias for ip.
	// A blank name is ignored without error.
	UpsertAlias(ctx context.Context, ip, name, notes string) error

	// DeleteAlias removes the alias for ip; a missing alias is not an error
	DeleteAlias(ctx context.Context, ip string) error

	// GetLastSeen returns when ip was last observed up, or nil if never
	GetLastSeen(ctx context.Context, ip string) (*time.Time, error)

	// MarkSeen records ip as observed up now
	MarkSeen(ctx context.Context, ip string) error
}

// PresetStore persists the ordered list of scan presets
type PresetStore interface {
	ListPresets(ctx context.Context) ([]domain.Preset, error)

	// ReplacePresets atomically replaces the whole list, keeping slice order
	ReplacePresets(ctx context.Context, presets []domain.Preset) error
}

// Repository is the full store used by the server
type Repository interface {
	IdentityStore
	PresetStore

	// Close releases resources
	Close() error
}
