package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"netscan/internal/domain"
	"netscan/internal/repository"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

var _ repository.Repository = (*Repository)(nil)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db   *sqlx.DB
	now  func() time.Time
	seed []domain.Preset
}

// Option configures a Repository
type Option func(*Repository)

// WithClock overrides the time source used for timestamps
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

// WithSeedPresets sets the presets written when the presets table is empty
func WithSeedPresets(presets []domain.Preset) Option {
	return func(r *Repository) {
		r.seed = presets
	}
}

// New opens the database at dbPath, migrates it and seeds default presets
func New(dbPath string, opts ...Option) (*Repository, error) {
	if dbPath != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection serializes writers and keeps :memory: a single database
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db, now: time.Now}
	for _, opt := range opts {
		opt(repo)
	}

	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := repo.seedPresets(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed presets: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	return goose.Up(r.db.DB, "migrations")
}

// seedPresets writes the seed list once, only while the table is empty
func (r *Repository) seedPresets(ctx context.Context) error {
	if len(r.seed) == 0 {
		return nil
	}

	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		var count int
		if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM presets`); err != nil {
			return fmt.Errorf("failed to count presets: %w", err)
		}
		if count > 0 {
			return nil
		}

		if err := insertPresets(ctx, tx, r.seed); err != nil {
			return err
		}
		log.Info("Seeded default presets", "count", len(r.seed))
		return nil
	})
}

// GetAlias returns the alias for ip, or nil when none is set
func (r *Repository) GetAlias(ctx context.Context, ip string) (*domain.AliasEntry, error) {
	var row aliasRow
	err := r.db.GetContext(ctx, &row, `
		SELECT key_type, key_value, alias_name, notes, updated_at
		FROM aliases WHERE key_type = ? AND key_value = ?
	`, domain.AliasKeyIP, ip)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query alias: %w", err)
	}

	return row.toDomain()
}

// UpsertAlias looks up the alias by key and updates it in place or inserts it,
// inside one transaction
func (r *Repository) UpsertAlias(ctx context.Context, ip, name, notes string) error {
	name = strings.TrimSpace(name)
	notes = strings.TrimSpace(notes)
	if name == "" {
		return nil
	}

	updatedAt := formatTime(r.now())

	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		var id int64
		err := tx.GetContext(ctx, &id, `
			SELECT id FROM aliases WHERE key_type = ? AND key_value = ?
		`, domain.AliasKeyIP, ip)

		switch {
		case errors.Is(err, sql.ErrNoRows):
			_, err = tx.ExecContext(ctx, `
				INSERT INTO aliases (key_type, key_value, alias_name, notes, updated_at)
				VALUES (?, ?, ?, ?, ?)
			`, domain.AliasKeyIP, ip, name, notes, updatedAt)
			if err != nil {
				return fmt.Errorf("failed to insert alias: %w", err)
			}
		case err != nil:
			return fmt.Errorf("failed to query alias: %w", err)
		default:
			_, err = tx.ExecContext(ctx, `
				UPDATE aliases SET alias_name = ?, notes = ?, updated_at = ?
				WHERE id = ?
			`, name, notes, updatedAt, id)
			if err != nil {
				return fmt.Errorf("failed to update alias: %w", err)
			}
		}
		return nil
	})
}

// DeleteAlias removes the alias for ip
func (r *Repository) DeleteAlias(ctx context.Context, ip string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM aliases WHERE key_type = ? AND key_value = ?
	`, domain.AliasKeyIP, ip)
	if err != nil {
		return fmt.Errorf("failed to delete alias: %w", err)
	}
	return nil
}

// GetLastSeen returns when ip was last observed up, or nil if never
func (r *Repository) GetLastSeen(ctx context.Context, ip string) (*time.Time, error) {
	var lastSeen string
	err := r.db.GetContext(ctx, &lastSeen, `SELECT last_seen FROM seen WHERE ip = ?`, ip)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query last seen: %w", err)
	}

	t, err := parseTime(lastSeen)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// MarkSeen inserts or refreshes the seen timestamp for ip
func (r *Repository) MarkSeen(ctx context.Context, ip string) error {
	now := formatTime(r.now())

	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		var id int64
		err := tx.GetContext(ctx, &id, `SELECT id FROM seen WHERE ip = ?`, ip)

		switch {
		case errors.Is(err, sql.ErrNoRows):
			if _, err := tx.ExecContext(ctx, `INSERT INTO seen (ip, last_seen) VALUES (?, ?)`, ip, now); err != nil {
				return fmt.Errorf("failed to insert seen: %w", err)
			}
		case err != nil:
			return fmt.Errorf("failed to query seen: %w", err)
		default:
			if _, err := tx.ExecContext(ctx, `UPDATE seen SET last_seen = ? WHERE id = ?`, now, id); err != nil {
				return fmt.Errorf("failed to update seen: %w", err)
			}
		}
		return nil
	})
}

// ListPresets returns presets ordered by sort order, then insertion
func (r *Repository) ListPresets(ctx context.Context) ([]domain.Preset, error) {
	var rows []presetRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, name, ip_range, sort_order
		FROM presets ORDER BY sort_order ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query presets: %w", err)
	}

	presets := make([]domain.Preset, 0, len(rows))
	for i := range rows {
		presets = append(presets, rows[i].toDomain())
	}
	return presets, nil
}

// ReplacePresets deletes all presets and writes the given list in order
func (r *Repository) ReplacePresets(ctx context.Context, presets []domain.Preset) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM presets`); err != nil {
			return fmt.Errorf("failed to clear presets: %w", err)
		}
		return insertPresets(ctx, tx, presets)
	})
}

func insertPresets(ctx context.Context, tx *sqlx.Tx, presets []domain.Preset) error {
	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO presets (name, ip_range, sort_order) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare preset statement: %w", err)
	}
	defer stmt.Close()

	for i, p := range presets {
		if _, err := stmt.ExecContext(ctx, p.Name, p.Range, i); err != nil {
			return fmt.Errorf("failed to insert preset %s: %w", p.Name, err)
		}
	}
	return nil
}

// withTx runs fn in a transaction, committing only when fn succeeds
func (r *Repository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
