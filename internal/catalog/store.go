// Package catalog stores wholesale catalog data and hands the pricing engine
// read-only snapshots of it.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/Simplici0/o.frames/internal/pricing"
)

// ErrNotFound reports an unknown catalog key.
var ErrNotFound = errors.New("catalog item not found")

const snapshotKey = "snapshot"

// Frame is a moulding and the ways a vendor sells it.
type Frame struct {
	Key          string                   `json:"key" yaml:"key"`
	Name         string                   `json:"name" yaml:"name"`
	Vendor       string                   `json:"vendor,omitempty" yaml:"vendor,omitempty"`
	PricePerFoot float64                  `json:"price_per_foot" yaml:"price_per_foot"`
	Disabled     bool                     `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Options      []pricing.PurchaseOption `json:"options,omitempty" yaml:"options,omitempty"`
}

// Validate checks the frame before it is stored.
func (f Frame) Validate() error {
	if strings.TrimSpace(f.Key) == "" {
		return fmt.Errorf("%w: frame key is required", pricing.ErrInvalidCatalogEntry)
	}
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("%w: frame %q name is required", pricing.ErrInvalidCatalogEntry, f.Key)
	}
	if _, err := f.item().Rate(); err != nil {
		return err
	}
	for i, o := range f.Options {
		if err := o.Validate(); err != nil {
			return fmt.Errorf("frame %q option %d: %w", f.Key, i+1, err)
		}
	}
	return nil
}

func (f Frame) item() pricing.FrameItem {
	return pricing.FrameItem{
		Key:          f.Key,
		Name:         f.Name,
		Vendor:       f.Vendor,
		PricePerFoot: f.PricePerFoot,
		Options:      f.Options,
	}
}

// Sheet is box-priced sheet stock: matboard, glass or backing.
type Sheet struct {
	Key      string               `json:"key" yaml:"key"`
	Material pricing.Material     `json:"material" yaml:"material"`
	Name     string               `json:"name" yaml:"name"`
	Entry    pricing.CatalogEntry `json:"entry" yaml:"entry"`
	Disabled bool                 `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// Validate checks the sheet before it is stored.
func (s Sheet) Validate() error {
	if strings.TrimSpace(s.Key) == "" {
		return fmt.Errorf("%w: sheet key is required", pricing.ErrInvalidCatalogEntry)
	}
	switch s.Material {
	case pricing.MaterialMat, pricing.MaterialGlass, pricing.MaterialBacking:
	default:
		return fmt.Errorf("%w: sheet %q has unsupported material %q", pricing.ErrInvalidCatalogEntry, s.Key, s.Material)
	}
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: sheet %q name is required", pricing.ErrInvalidCatalogEntry, s.Key)
	}
	if err := s.Entry.Validate(); err != nil {
		return fmt.Errorf("sheet %q: %w", s.Key, err)
	}
	return nil
}

// Stats counts rows written by an import.
type Stats struct {
	Frames int
	Sheets int
}

// Store reads and writes the catalog tables. Snapshots are cached for ttl
// and dropped on every write.
type Store struct {
	db    *sql.DB
	cache *cache.Cache
	ttl   time.Duration

	// mu guards gen, which counts invalidations. A snapshot is only cached
	// when no write landed while it was being read.
	mu  sync.Mutex
	gen uint64
}

// NewStore returns a Store. A ttl of zero disables snapshot caching.
func NewStore(db *sql.DB, ttl time.Duration) *Store {
	cleanup := 2 * ttl
	if cleanup <= 0 {
		cleanup = time.Minute
	}
	return &Store{
		db:    db,
		cache: cache.New(ttl, cleanup),
		ttl:   ttl,
	}
}

// Invalidate drops the cached snapshot.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.cache.Delete(snapshotKey)
}

func (s *Store) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// cacheSnapshot stores snap unless the catalog was invalidated after gen
// was read. It reports whether snap was cached.
func (s *Store) cacheSnapshot(gen uint64, snap pricing.Snapshot) bool {
	if s.ttl <= 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return false
	}
	s.cache.Set(snapshotKey, snap, cache.DefaultExpiration)
	return true
}

// Snapshot returns every active catalog item. Callers must treat the result
// as read-only; it may be shared with other callers until the cache expires.
func (s *Store) Snapshot(ctx context.Context) (pricing.Snapshot, error) {
	if s.ttl > 0 {
		if cached, ok := s.cache.Get(snapshotKey); ok {
			return cached.(pricing.Snapshot), nil
		}
	}

	gen := s.generation()
	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return pricing.Snapshot{}, err
	}
	s.cacheSnapshot(gen, snap)
	return snap, nil
}

func (s *Store) loadSnapshot(ctx context.Context) (pricing.Snapshot, error) {
	snap := pricing.Snapshot{
		Frames:  map[string]pricing.FrameItem{},
		Mats:    map[string]pricing.MatItem{},
		Glass:   map[string]pricing.GlassItem{},
		Backing: map[string]pricing.BackingItem{},
	}

	frames, err := s.ListFrames(ctx)
	if err != nil {
		return pricing.Snapshot{}, err
	}
	for _, f := range frames {
		if f.Disabled {
			continue
		}
		snap.Frames[f.Key] = f.item()
	}

	sheets, err := s.ListSheets(ctx)
	if err != nil {
		return pricing.Snapshot{}, err
	}
	for _, sh := range sheets {
		if sh.Disabled {
			continue
		}
		switch sh.Material {
		case pricing.MaterialMat:
			snap.Mats[sh.Key] = pricing.MatItem{Key: sh.Key, Name: sh.Name, Entry: sh.Entry}
		case pricing.MaterialGlass:
			snap.Glass[sh.Key] = pricing.GlassItem{Key: sh.Key, Name: sh.Name, Entry: sh.Entry}
		case pricing.MaterialBacking:
			snap.Backing[sh.Key] = pricing.BackingItem{Key: sh.Key, Name: sh.Name, Entry: sh.Entry}
		}
	}

	return snap, nil
}

// ListFrames returns every frame, including disabled ones, with its options.
func (s *Store) ListFrames(ctx context.Context) ([]Frame, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, name, COALESCE(vendor, ''), price_per_foot, active
		FROM frames
		ORDER BY key
	`)
	if err != nil {
		return nil, fmt.Errorf("query frames: %w", err)
	}
	defer rows.Close()

	frames := make([]Frame, 0)
	for rows.Next() {
		var (
			f      Frame
			active bool
		)
		if err := rows.Scan(&f.Key, &f.Name, &f.Vendor, &f.PricePerFoot, &active); err != nil {
			return nil, fmt.Errorf("scan frame: %w", err)
		}
		f.Disabled = !active
		frames = append(frames, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate frames: %w", err)
	}

	options, err := s.allOptions(ctx)
	if err != nil {
		return nil, err
	}
	for i := range frames {
		frames[i].Options = options[frames[i].Key]
	}

	return frames, nil
}

func (s *Store) allOptions(ctx context.Context) (map[string][]pricing.PurchaseOption, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT frame_key, method, price_per_foot, COALESCE(description, ''), box_quantity
		FROM frame_purchase_options
		ORDER BY frame_key, position
	`)
	if err != nil {
		return nil, fmt.Errorf("query purchase options: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]pricing.PurchaseOption)
	for rows.Next() {
		var (
			key string
			o   pricing.PurchaseOption
		)
		if err := rows.Scan(&key, &o.Method, &o.PricePerFoot, &o.Description, &o.BoxQuantity); err != nil {
			return nil, fmt.Errorf("scan purchase option: %w", err)
		}
		out[key] = append(out[key], o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchase options: %w", err)
	}
	return out, nil
}

// Frame returns one frame by key.
func (s *Store) Frame(ctx context.Context, key string) (Frame, error) {
	var (
		f      Frame
		active bool
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT key, name, COALESCE(vendor, ''), price_per_foot, active
		FROM frames
		WHERE key = ?
	`, key).Scan(&f.Key, &f.Name, &f.Vendor, &f.PricePerFoot, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return Frame{}, fmt.Errorf("%w: frame %q", ErrNotFound, key)
	}
	if err != nil {
		return Frame{}, fmt.Errorf("query frame: %w", err)
	}
	f.Disabled = !active

	f.Options, err = s.PurchaseOptions(ctx, key)
	if err != nil {
		return Frame{}, err
	}
	return f, nil
}

// PurchaseOptions returns a frame's purchase options in listed order.
func (s *Store) PurchaseOptions(ctx context.Context, frameKey string) ([]pricing.PurchaseOption, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT method, price_per_foot, COALESCE(description, ''), box_quantity
		FROM frame_purchase_options
		WHERE frame_key = ?
		ORDER BY position
	`, frameKey)
	if err != nil {
		return nil, fmt.Errorf("query purchase options: %w", err)
	}
	defer rows.Close()

	options := make([]pricing.PurchaseOption, 0)
	for rows.Next() {
		var o pricing.PurchaseOption
		if err := rows.Scan(&o.Method, &o.PricePerFoot, &o.Description, &o.BoxQuantity); err != nil {
			return nil, fmt.Errorf("scan purchase option: %w", err)
		}
		options = append(options, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchase options: %w", err)
	}
	return options, nil
}

// ListSheets returns every sheet material, including disabled ones.
func (s *Store) ListSheets(ctx context.Context) ([]Sheet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, material, name, box_price, sheets_per_box, sheet_width, sheet_height, active
		FROM sheet_materials
		ORDER BY material, key
	`)
	if err != nil {
		return nil, fmt.Errorf("query sheet materials: %w", err)
	}
	defer rows.Close()

	sheets := make([]Sheet, 0)
	for rows.Next() {
		var (
			sh     Sheet
			active bool
		)
		if err := rows.Scan(
			&sh.Key,
			&sh.Material,
			&sh.Name,
			&sh.Entry.BoxPrice,
			&sh.Entry.SheetsPerBox,
			&sh.Entry.SheetWidth,
			&sh.Entry.SheetHeight,
			&active,
		); err != nil {
			return nil, fmt.Errorf("scan sheet material: %w", err)
		}
		sh.Disabled = !active
		sheets = append(sheets, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sheet materials: %w", err)
	}
	return sheets, nil
}

// UpsertFrame creates or replaces a frame and its purchase options.
func (s *Store) UpsertFrame(ctx context.Context, f Frame) error {
	if err := f.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin frame transaction: %w", err)
	}
	if err := upsertFrame(ctx, tx, f); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit frame transaction: %w", err)
	}

	s.Invalidate()
	return nil
}

// UpsertSheet creates or replaces a sheet material.
func (s *Store) UpsertSheet(ctx context.Context, sh Sheet) error {
	if err := sh.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin sheet transaction: %w", err)
	}
	if err := upsertSheet(ctx, tx, sh); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit sheet transaction: %w", err)
	}

	s.Invalidate()
	return nil
}

// Import writes every frame and sheet in f in one transaction. Nothing is
// written when any item is invalid.
func (s *Store) Import(ctx context.Context, f File) (Stats, error) {
	for _, fr := range f.Frames {
		if err := fr.Validate(); err != nil {
			return Stats{}, err
		}
	}
	for _, sh := range f.Sheets {
		if err := sh.Validate(); err != nil {
			return Stats{}, err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin import transaction: %w", err)
	}

	stats := Stats{}
	for _, fr := range f.Frames {
		if err := upsertFrame(ctx, tx, fr); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
		stats.Frames++
	}
	for _, sh := range f.Sheets {
		if err := upsertSheet(ctx, tx, sh); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
		stats.Sheets++
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit import transaction: %w", err)
	}

	s.Invalidate()
	return stats, nil
}

func upsertFrame(ctx context.Context, tx *sql.Tx, f Frame) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO frames (key, name, vendor, price_per_foot, active)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			name = excluded.name,
			vendor = excluded.vendor,
			price_per_foot = excluded.price_per_foot,
			active = excluded.active,
			updated_at = CURRENT_TIMESTAMP
	`, f.Key, f.Name, f.Vendor, f.PricePerFoot, !f.Disabled); err != nil {
		return fmt.Errorf("upsert frame %q: %w", f.Key, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM frame_purchase_options WHERE frame_key = ?`, f.Key); err != nil {
		return fmt.Errorf("clear purchase options for %q: %w", f.Key, err)
	}
	for i, o := range f.Options {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO frame_purchase_options (frame_key, position, method, price_per_foot, description, box_quantity)
			VALUES (?, ?, ?, ?, ?, ?)
		`, f.Key, i, string(o.Method), o.PricePerFoot, o.Description, o.BoxQuantity); err != nil {
			return fmt.Errorf("insert purchase option %d for %q: %w", i+1, f.Key, err)
		}
	}
	return nil
}

func upsertSheet(ctx context.Context, tx *sql.Tx, sh Sheet) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sheet_materials (key, material, name, box_price, sheets_per_box, sheet_width, sheet_height, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(material, key) DO UPDATE SET
			name = excluded.name,
			box_price = excluded.box_price,
			sheets_per_box = excluded.sheets_per_box,
			sheet_width = excluded.sheet_width,
			sheet_height = excluded.sheet_height,
			active = excluded.active,
			updated_at = CURRENT_TIMESTAMP
	`, sh.Key, string(sh.Material), sh.Name, sh.Entry.BoxPrice, sh.Entry.SheetsPerBox, sh.Entry.SheetWidth, sh.Entry.SheetHeight, !sh.Disabled); err != nil {
		return fmt.Errorf("upsert sheet %s %q: %w", sh.Material, sh.Key, err)
	}
	return nil
}
