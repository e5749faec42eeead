package main

import (
	"github.com/spf13/cobra"

	"github.com/Simplici0/o.frames/internal/pricing"
)

type normalizeOutput struct {
	PricePerSheet      float64 `yaml:"price_per_sheet"`
	PricePerUnitedInch float64 `yaml:"price_per_united_inch"`
	PricePerSquareInch float64 `yaml:"price_per_square_inch"`
}

func newNormalizeCmd() *cobra.Command {
	var entry pricing.CatalogEntry

	cmd := &cobra.Command{
		Use:     "normalize",
		Short:   "Convert vendor box pricing into per-inch rates",
		Example: `  framecalc normalize --box-price 87 --sheets 25 --width 32 --height 40`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				out normalizeOutput
				err error
			)
			if out.PricePerSheet, err = entry.PricePerSheet(); err != nil {
				return err
			}
			if out.PricePerUnitedInch, err = entry.PricePerUnitedInch(); err != nil {
				return err
			}
			if out.PricePerSquareInch, err = entry.PricePerSquareInch(); err != nil {
				return err
			}
			return writeYAML(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().Float64Var(&entry.BoxPrice, "box-price", 0, "Wholesale price of one box")
	cmd.Flags().IntVar(&entry.SheetsPerBox, "sheets", 0, "Sheets in one box")
	cmd.Flags().Float64Var(&entry.SheetWidth, "width", 0, "Sheet width in inches")
	cmd.Flags().Float64Var(&entry.SheetHeight, "height", 0, "Sheet height in inches")

	for _, name := range []string{"box-price", "sheets", "width", "height"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
