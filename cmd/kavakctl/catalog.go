package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kavak-agent/internal/model"
	"kavak-agent/internal/repository"
)

func newCatalogCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Catalog file utilities",
	}
	cmd.AddCommand(newCatalogNormalizeCmd(), newCatalogImportCmd(root))
	return cmd
}

func newCatalogNormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <in.csv> <out.csv>",
		Short: "Rewrite a catalog CSV with canonical columns",
		Long:  "Maps column synonyms, coerces numbers, drops invalid rows and duplicate ids, and writes the canonical header.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, dropped, err := repository.LoadCatalogCSV(args[0])
			if err != nil {
				return err
			}
			rows := uniqueByID(items)

			f, err := os.Create(args[1])
			if err != nil {
				return fmt.Errorf("create %s: %w", args[1], err)
			}
			if err := repository.WriteCatalogCSV(f, rows); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s (%d dropped)\n", len(rows), args[1], dropped+len(items)-len(rows))
			return nil
		},
	}
}

func newCatalogImportCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <catalog.csv>",
		Short: "Replace the catalog_items table with a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			items, dropped, err := repository.LoadCatalogCSV(args[0])
			if err != nil {
				return err
			}
			repo, _, err := openRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := repo.Migrate(ctx); err != nil {
				return err
			}
			rows := uniqueByID(items)
			if err := repo.ReplaceCatalog(ctx, rows); err != nil {
				return err
			}
			root.logger().Info("catalog imported", zap.String("path", args[0]), zap.Int("rows", len(rows)))
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d rows (%d dropped)\n", len(rows), dropped+len(items)-len(rows))
			return nil
		},
	}
}

// uniqueByID keeps the first row for each id, in file order.
func uniqueByID(items []model.CatalogItem) []model.CatalogItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]model.CatalogItem, 0, len(items))
	for _, it := range items {
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	return out
}
