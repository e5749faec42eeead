package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Simplici0/o.frames/internal/catalog"
	"github.com/Simplici0/o.frames/internal/pricing"
)

func newOptimizeCmd(g *globals) *cobra.Command {
	var (
		footage  float64
		rawOpts  []string
		frameKey string
	)

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Pick the cheapest way to buy moulding footage",
		Long: `Compare purchase methods for the footage a job needs and recommend the
cheapest. Options are given as method:price_per_foot[:box_feet], or read from a
catalog frame with --frame.`,
		Example: `  framecalc optimize --footage 12.5 --option length:10 --option box:8:14
  framecalc optimize --footage 12.5 --frame basic-black-1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if frameKey != "" && len(rawOpts) > 0 {
				return fmt.Errorf("--frame and --option cannot be combined")
			}

			options := make([]pricing.PurchaseOption, 0, len(rawOpts))
			for _, raw := range rawOpts {
				o, err := parseOption(raw)
				if err != nil {
					return err
				}
				options = append(options, o)
			}

			if frameKey != "" {
				store, database, err := g.openStore(cmd.Context(), g.logger(cmd))
				if err != nil {
					return err
				}
				defer database.Close()

				frame, err := store.Frame(cmd.Context(), frameKey)
				if err != nil {
					return err
				}
				if frame.Disabled {
					return fmt.Errorf("%w: frame %q is disabled", catalog.ErrNotFound, frameKey)
				}
				options = frame.Options
			}

			res, err := pricing.OptimizePurchase(footage, options)
			if err != nil {
				return err
			}
			return writeYAML(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().Float64Var(&footage, "footage", 0, "Linear feet of moulding needed")
	cmd.Flags().StringArrayVar(&rawOpts, "option", nil, "Purchase option as method:price[:box_feet], repeatable")
	cmd.Flags().StringVar(&frameKey, "frame", "", "Use the purchase options stored for this catalog frame")

	_ = cmd.MarkFlagRequired("footage")

	return cmd
}

// parseOption reads method:price_per_foot[:box_feet].
func parseOption(raw string) (pricing.PurchaseOption, error) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return pricing.PurchaseOption{}, fmt.Errorf("%w: option %q must be method:price[:box_feet]", pricing.ErrInvalidCatalogEntry, raw)
	}

	o := pricing.PurchaseOption{Method: pricing.Method(strings.TrimSpace(parts[0]))}

	price, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return pricing.PurchaseOption{}, fmt.Errorf("%w: option %q price: %v", pricing.ErrInvalidCatalogEntry, raw, err)
	}
	o.PricePerFoot = price

	if len(parts) == 3 {
		qty, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			return pricing.PurchaseOption{}, fmt.Errorf("%w: option %q box feet: %v", pricing.ErrInvalidCatalogEntry, raw, err)
		}
		o.BoxQuantity = qty
	}

	if err := o.Validate(); err != nil {
		return pricing.PurchaseOption{}, err
	}
	return o, nil
}
