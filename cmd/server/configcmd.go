package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hperssn/buildcalc/internal/catalog"
	"github.com/hperssn/buildcalc/internal/logging"
	"github.com/hperssn/buildcalc/internal/metrics"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Export or replace the pricing catalog",
	}
	cmd.AddCommand(configExportCmd(), configImportCmd())
	return cmd
}

func configExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write the stored catalog as JSON to file or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, metrics.Nop{})
			if err != nil {
				return err
			}
			defer e.store.Close()

			doc, err := e.store.Get(cmd.Context())
			if err != nil {
				return err
			}
			raw, err := catalog.Encode(doc)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				_, err = cmd.OutOrStdout().Write(raw)
				return err
			}
			return os.WriteFile(args[0], raw, 0o644)
		},
	}
}

func configImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the stored catalog with a JSON file (\"-\" reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			doc, err := catalog.Import(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			e, err := setup(cmd, metrics.Nop{})
			if err != nil {
				return err
			}
			defer e.store.Close()
			log := logging.FromContext(cmd.Context())

			if empty := catalog.Unselectable(doc); len(empty) > 0 {
				log.Warn("imported configuration leaves sections without options", "sections", empty)
			}
			if err := e.store.Set(cmd.Context(), doc); err != nil {
				return err
			}
			log.Info("configuration imported", "file", args[0], "bytes", len(raw))
			return nil
		},
	}
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(name)
}
