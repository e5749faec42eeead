package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Simplici0/o.frames/internal/pricing"
)

type estimateOutput struct {
	ID        string                 `yaml:"id"`
	Degraded  bool                   `yaml:"degraded"`
	Fallbacks []pricing.Fallback     `yaml:"fallbacks,omitempty"`
	Rates     pricing.Rates          `yaml:"rates"`
	Estimate  pricing.PricedEstimate `yaml:"estimate"`
}

func newEstimateCmd(g *globals) *cobra.Command {
	var (
		dims          pricing.JobDimensions
		rates         pricing.Rates
		sel           pricing.Selection
		quantity      int
		assembly      bool
		profitability bool
	)

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Price a framing job",
		Long: `Price a framing job from its artwork size and mat borders.

Rates come either from explicit --*-rate flags or from catalog keys. Keys that
are missing from the catalog are priced at a default rate and the estimate is
reported as degraded.`,
		Example: `  # 16x20 print with a 3in mat at explicit rates
  framecalc estimate --width 16 --height 20 --mat 3 \
    --frame-rate 1.5 --mat-rate 0.02 --glass-rate 0.03 --backing-rate 0.01

  # Same job priced from the catalog, three pieces, assembled
  framecalc estimate --width 16 --height 20 --mat 3 \
    --frame basic-black-1 --mat-key white-core-4ply --glass clear-2mm \
    --backing foam-3-16 --quantity 3 --assembly`,
		RunE: func(cmd *cobra.Command, args []string) error {
			useCatalog := sel != (pricing.Selection{})
			explicit := cmd.Flags().Changed("frame-rate") || cmd.Flags().Changed("mat-rate") ||
				cmd.Flags().Changed("glass-rate") || cmd.Flags().Changed("backing-rate")
			if useCatalog && explicit {
				return fmt.Errorf("catalog keys and explicit rates cannot be combined")
			}

			logger := g.logger(cmd)
			out := estimateOutput{ID: uuid.NewString(), Rates: rates}

			if useCatalog {
				store, database, err := g.openStore(cmd.Context(), logger)
				if err != nil {
					return err
				}
				defer database.Close()

				snap, err := store.Snapshot(cmd.Context())
				if err != nil {
					return err
				}
				out.Rates, out.Fallbacks, err = snap.ResolveRates(sel)
				if err != nil {
					return err
				}
			}

			est, err := pricing.Estimate(pricing.EstimateRequest{
				Dimensions:           dims,
				Rates:                out.Rates,
				Quantity:             quantity,
				Assembly:             assembly,
				IncludeProfitability: profitability,
			})
			if err != nil {
				return err
			}

			out.Estimate = est
			out.Degraded = len(out.Fallbacks) > 0
			for _, f := range out.Fallbacks {
				logger.Warn().Str("estimate_id", out.ID).Msg(f.String())
			}

			return writeYAML(cmd.OutOrStdout(), out)
		},
	}

	f := cmd.Flags()
	f.Float64Var(&dims.ArtworkWidth, "width", 0, "Artwork width in inches")
	f.Float64Var(&dims.ArtworkHeight, "height", 0, "Artwork height in inches")
	f.Float64SliceVar(&dims.MatWidths, "mat", nil, "Mat border width in inches, once per layer")
	f.Float64Var(&rates.FramePerFoot, "frame-rate", 0, "Frame wholesale price per foot")
	f.Float64Var(&rates.MatPerUnitedInch, "mat-rate", 0, "Mat wholesale price per united inch")
	f.Float64Var(&rates.GlassPerUnitedInch, "glass-rate", 0, "Glass wholesale price per united inch")
	f.Float64Var(&rates.BackingPerSquareInch, "backing-rate", 0, "Backing wholesale price per square inch")
	f.StringVar(&sel.FrameKey, "frame", "", "Frame catalog key")
	f.StringVar(&sel.MatKey, "mat-key", "", "Mat catalog key")
	f.StringVar(&sel.GlassKey, "glass", "", "Glass catalog key")
	f.StringVar(&sel.BackingKey, "backing", "", "Backing catalog key")
	f.IntVar(&quantity, "quantity", 1, "Number of identical pieces")
	f.BoolVar(&assembly, "assembly", false, "Include the fitting and assembly charge")
	f.BoolVar(&profitability, "profitability", false, "Include the profitability breakdown")

	_ = cmd.MarkFlagRequired("width")
	_ = cmd.MarkFlagRequired("height")

	return cmd
}
