package main

import (
	"github.com/spf13/cobra"

	"github.com/Simplici0/o.frames/internal/catalog"
)

func newCatalogCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the wholesale catalog",
	}

	cmd.AddCommand(newCatalogImportCmd(g))
	cmd.AddCommand(newCatalogExportCmd(g))

	return cmd
}

func newCatalogImportCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Load frames and sheet materials from a YAML file",
		Long: `Load frames and sheet materials from a YAML catalog file. Existing keys are
replaced. The whole file is rejected when any entry is invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := catalog.LoadFile(args[0])
			if err != nil {
				return err
			}

			logger := g.logger(cmd)
			store, database, err := g.openStore(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer database.Close()

			stats, err := store.Import(cmd.Context(), file)
			if err != nil {
				return err
			}

			logger.Info().Int("frames", stats.Frames).Int("sheets", stats.Sheets).Msg("catalog imported")
			return writeYAML(cmd.OutOrStdout(), map[string]int{"frames": stats.Frames, "sheets": stats.Sheets})
		},
	}
}

func newCatalogExportCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print the catalog as YAML accepted by import",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, database, err := g.openStore(cmd.Context(), g.logger(cmd))
			if err != nil {
				return err
			}
			defer database.Close()

			var file catalog.File
			if file.Frames, err = store.ListFrames(cmd.Context()); err != nil {
				return err
			}
			if file.Sheets, err = store.ListSheets(cmd.Context()); err != nil {
				return err
			}
			return writeYAML(cmd.OutOrStdout(), file)
		},
	}
}
