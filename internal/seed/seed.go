package seed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Simplici0/o.frames/internal/pricing"
)

const (
	defaultFrameKey   = "basic-black-1"
	defaultFrameName  = "Basic black 1in"
	defaultMatKey     = "white-core-4ply"
	defaultGlassKey   = "clear-2mm"
	defaultBackingKey = "foam-3-16"
)

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

type starterSheet struct {
	key      string
	material pricing.Material
	name     string
	entry    pricing.CatalogEntry
}

var starterSheets = []starterSheet{
	{defaultMatKey, pricing.MaterialMat, "White core 4-ply", pricing.CatalogEntry{BoxPrice: 87, SheetsPerBox: 25, SheetWidth: 32, SheetHeight: 40}},
	{defaultGlassKey, pricing.MaterialGlass, "Clear 2mm", pricing.CatalogEntry{BoxPrice: 216, SheetsPerBox: 30, SheetWidth: 32, SheetHeight: 40}},
	{defaultBackingKey, pricing.MaterialBacking, "Foam board 3/16", pricing.CatalogEntry{BoxPrice: 320, SheetsPerBox: 25, SheetWidth: 32, SheetHeight: 40}},
}

var starterOptions = []pricing.PurchaseOption{
	{Method: pricing.MethodLength, PricePerFoot: 1.50, Description: "Full lengths, shop cuts"},
	{Method: pricing.MethodStraightCut, PricePerFoot: 1.85, Description: "Cut to straight lengths"},
	{Method: pricing.MethodChop, PricePerFoot: 2.40, Description: "Mitred by vendor"},
	{Method: pricing.MethodJoin, PricePerFoot: 3.10, Description: "Mitred and joined by vendor"},
	{Method: pricing.MethodBox, PricePerFoot: 1.20, Description: "Box of 96 ft", BoxQuantity: 96},
}

// Run inserts a starter catalog in an idempotent way.
func Run(ctx context.Context, db *sql.DB) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := ensureFrame(ctx, tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	for _, sh := range starterSheets {
		if err := ensureSheet(ctx, tx, sh, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureFrame(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM frames WHERE key = ? LIMIT 1)`, defaultFrameKey).Scan(&exists); err != nil {
		return fmt.Errorf("check default frame existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO frames (key, name, vendor, price_per_foot, active)
		VALUES (?, ?, ?, ?, ?)
	`, defaultFrameKey, defaultFrameName, "", 1.50, true); err != nil {
		return fmt.Errorf("insert default frame: %w", err)
	}
	stats.Inserts++

	for i, o := range starterOptions {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO frame_purchase_options (frame_key, position, method, price_per_foot, description, box_quantity)
			VALUES (?, ?, ?, ?, ?, ?)
		`, defaultFrameKey, i, string(o.Method), o.PricePerFoot, o.Description, o.BoxQuantity); err != nil {
			return fmt.Errorf("insert default purchase option %s: %w", o.Method, err)
		}
		stats.Inserts++
	}
	return nil
}

func ensureSheet(ctx context.Context, tx *sql.Tx, sh starterSheet, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1
			FROM sheet_materials
			WHERE material = ? AND key = ?
			LIMIT 1
		)
	`, string(sh.material), sh.key).Scan(&exists); err != nil {
		return fmt.Errorf("check %s existence: %w", sh.material, err)
	}
	if exists {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sheet_materials (key, material, name, box_price, sheets_per_box, sheet_width, sheet_height, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, sh.key, string(sh.material), sh.name, sh.entry.BoxPrice, sh.entry.SheetsPerBox, sh.entry.SheetWidth, sh.entry.SheetHeight, true); err != nil {
		return fmt.Errorf("insert default %s: %w", sh.material, err)
	}
	stats.Inserts++
	return nil
}
