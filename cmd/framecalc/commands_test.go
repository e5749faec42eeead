package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Simplici0/o.frames/internal/catalog"
	"github.com/Simplici0/o.frames/internal/pricing"
)

const delta = 1e-9

const testCatalog = `
frames:
  - key: oak-1
    name: Oak 1in
    price_per_foot: 2.25
    options:
      - {method: length, price_per_foot: 2.25}
      - {method: box, price_per_foot: 1.80, box_quantity: 96}
sheets:
  - key: white-core
    material: mat
    name: White core
    entry: {box_price: 72, sheets_per_box: 10, sheet_width: 32, sheet_height: 40}
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), err
}

func dbArgs(t *testing.T) []string {
	t.Helper()
	return []string{"--db", filepath.Join(t.TempDir(), "framecalc.db"), "--migrations", "../../migrations", "--log-level", "error"}
}

func TestEstimateCmd_ExplicitRates(t *testing.T) {
	out, err := run(t, "estimate",
		"--width", "16", "--height", "20", "--mat", "3",
		"--frame-rate", "1.5", "--mat-rate", "0.02", "--glass-rate", "0.03", "--backing-rate", "0.01",
	)
	require.NoError(t, err)

	var got struct {
		Degraded bool           `yaml:"degraded"`
		Estimate map[string]any `yaml:"estimate"`
		Rates    pricing.Rates  `yaml:"rates"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))

	assert.False(t, got.Degraded)
	assert.Equal(t, 1.5, got.Rates.FramePerFoot)
	assert.InDelta(t, 63.84, got.Estimate["subtotal"], delta)
	assert.InDelta(t, 63.84, got.Estimate["total"], delta)
}

func TestEstimateCmd_RejectsKeysWithRates(t *testing.T) {
	_, err := run(t, "estimate", "--width", "8", "--height", "10", "--frame", "oak-1", "--frame-rate", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be combined")
}

func TestEstimateCmd_InvalidDimension(t *testing.T) {
	_, err := run(t, "estimate", "--width", "0", "--height", "10")
	assert.ErrorIs(t, err, pricing.ErrInvalidDimension)
}

func TestOptimizeCmd(t *testing.T) {
	out, err := run(t, "optimize", "--footage", "12.5", "--option", "length:10", "--option", "box:8:14")
	require.NoError(t, err)

	var res struct {
		Recommended struct {
			Method            string  `yaml:"method"`
			TotalCost         float64 `yaml:"total_cost"`
			SavingsVsNextBest float64 `yaml:"savings_vs_next_best"`
		} `yaml:"recommended"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &res))
	assert.Equal(t, "box", res.Recommended.Method)
	assert.InDelta(t, 112.0, res.Recommended.TotalCost, delta)
	assert.InDelta(t, 13.0, res.Recommended.SavingsVsNextBest, delta)
}

func TestOptimizeCmd_NoOptions(t *testing.T) {
	_, err := run(t, "optimize", "--footage", "10")
	assert.ErrorIs(t, err, pricing.ErrNoOptionsAvailable)
}

func TestParseOption(t *testing.T) {
	o, err := parseOption("box:1.8:96")
	require.NoError(t, err)
	assert.Equal(t, pricing.PurchaseOption{Method: pricing.MethodBox, PricePerFoot: 1.8, BoxQuantity: 96}, o)

	o, err = parseOption(" chop : 2.40 ")
	require.NoError(t, err)
	assert.Equal(t, pricing.MethodChop, o.Method)
	assert.Equal(t, 2.40, o.PricePerFoot)

	for _, raw := range []string{"length", "length:abc", "box:1:x", "rental:1", "join:-1", "a:1:2:3"} {
		_, err := parseOption(raw)
		assert.ErrorIs(t, err, pricing.ErrInvalidCatalogEntry, raw)
	}
}

func TestNormalizeCmd(t *testing.T) {
	out, err := run(t, "normalize", "--box-price", "100", "--sheets", "10", "--width", "32", "--height", "40")
	require.NoError(t, err)

	var got normalizeOutput
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.InDelta(t, 10.0, got.PricePerSheet, delta)
	assert.InDelta(t, 10.0/72, got.PricePerUnitedInch, delta)
	assert.InDelta(t, 10.0/1280, got.PricePerSquareInch, delta)
}

func TestNormalizeCmd_ZeroSheets(t *testing.T) {
	_, err := run(t, "normalize", "--box-price", "100", "--sheets", "0", "--width", "32", "--height", "40")
	assert.ErrorIs(t, err, pricing.ErrInvalidCatalogEntry)
}

func TestCatalogImportThenEstimateAndOptimize(t *testing.T) {
	db := dbArgs(t)
	file := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(file, []byte(testCatalog), 0o600))

	out, err := run(t, append([]string{"catalog", "import", file}, db...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "frames: 1")
	assert.Contains(t, out, "sheets: 1")

	out, err = run(t, append([]string{"estimate", "--width", "16", "--height", "20", "--mat", "3",
		"--frame", "oak-1", "--mat-key", "white-core", "--glass", "missing-glass"}, db...)...)
	require.NoError(t, err)

	var est struct {
		Degraded  bool               `yaml:"degraded"`
		Fallbacks []pricing.Fallback `yaml:"fallbacks"`
		Rates     pricing.Rates      `yaml:"rates"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &est))
	assert.True(t, est.Degraded)
	require.Len(t, est.Fallbacks, 1)
	assert.Equal(t, pricing.MaterialGlass, est.Fallbacks[0].Material)
	assert.Equal(t, 2.25, est.Rates.FramePerFoot)
	assert.InDelta(t, 0.1, est.Rates.MatPerUnitedInch, delta)
	assert.Zero(t, est.Rates.BackingPerSquareInch)

	out, err = run(t, append([]string{"optimize", "--footage", "10", "--frame", "oak-1"}, db...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "method: length")

	out, err = run(t, append([]string{"catalog", "export"}, db...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "key: oak-1")
	assert.Contains(t, out, "key: white-core")
}

func TestCatalogImport_MissingFile(t *testing.T) {
	_, err := run(t, append([]string{"catalog", "import", filepath.Join(t.TempDir(), "nope.yaml")}, dbArgs(t)...)...)
	require.Error(t, err)
}

func TestOptimizeCmd_DisabledFrame(t *testing.T) {
	db := dbArgs(t)
	file := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
frames:
  - key: retired
    name: Retired moulding
    price_per_foot: 3
    disabled: true
    options:
      - {method: length, price_per_foot: 3}
`), 0o600))

	_, err := run(t, append([]string{"catalog", "import", file}, db...)...)
	require.NoError(t, err)

	_, err = run(t, append([]string{"optimize", "--footage", "10", "--frame", "retired"}, db...)...)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}
