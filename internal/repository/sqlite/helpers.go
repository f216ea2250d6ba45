package sqlite

import (
	"fmt"
	"time"

	"netscan/internal/domain"
)

// ============================================================================
// Timestamp Helpers
// ============================================================================

// legacyTimeLayout is SQLite's datetime('now') format
const legacyTimeLayout = "2006-01-02 15:04:05"

// formatTime renders t for storage in a TEXT column
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime reads a stored timestamp, accepting datetime('now') text as UTC
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(legacyTimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

// ============================================================================
// Row Types
// ============================================================================

// aliasRow maps the aliases table
type aliasRow struct {
	KeyType   string `db:"key_type"`
	KeyValue  string `db:"key_value"`
	AliasName string `db:"alias_name"`
	Notes     string `db:"notes"`
	UpdatedAt string `db:"updated_at"`
}

func (r *aliasRow) toDomain() (*domain.AliasEntry, error) {
	updated, err := parseTime(r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &domain.AliasEntry{
		KeyType:   r.KeyType,
		IP:        r.KeyValue,
		Name:      r.AliasName,
		Notes:     r.Notes,
		UpdatedAt: updated,
	}, nil
}

// presetRow maps the presets table
type presetRow struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	IPRange   string `db:"ip_range"`
	SortOrder int    `db:"sort_order"`
}

func (r *presetRow) toDomain() domain.Preset {
	return domain.Preset{
		ID:        r.ID,
		Name:      r.Name,
		Range:     r.IPRange,
		SortOrder: r.SortOrder,
	}
}
